// Copyright (C) INFINI Labs & INFINI LIMITED.
//
// INFINI Migrate is offered under the GNU Affero General Public License v3.0
// and as commercial software.
//
// For commercial licensing, contact us at:
//   - Website: infinilabs.com
//   - Email: hello@infini.ltd
//
// Open Source licensed under AGPL V3:
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package util

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	Verb_GET    string = "GET"
	Verb_PUT    string = "PUT"
	Verb_POST   string = "POST"
	Verb_DELETE string = "DELETE"
	Verb_HEAD   string = "HEAD"
)

const ContentTypeJson = "application/json;charset=utf-8"

const userAgent = "Mozilla/5.0 (compatible; INFINI/1.0; +http://infini.sh/)"

type Request struct {
	Method      string
	Url         string
	Body        []byte
	ContentType string
	Context     context.Context

	headers           map[string]string
	basicAuthUsername string
	basicAuthPassword string
}

func NewRequest(method, url string) *Request {
	req := Request{}
	req.Url = url
	req.Method = method
	return &req
}

// NewGetRequest issue a simple http get request
func NewGetRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	if body != nil {
		req.Body = body
	}
	req.Method = Verb_GET
	return &req
}

// NewPostRequest issue a simple http post request
func NewPostRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	req.Method = Verb_POST
	if body != nil {
		req.Body = body
	}
	return &req
}

// NewPutRequest issue a simple http put request
func NewPutRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	req.Method = Verb_PUT
	if body != nil {
		req.Body = body
	}
	return &req
}

// NewDeleteRequest issue a simple http delete request
func NewDeleteRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	if body != nil {
		req.Body = body
	}
	req.Method = Verb_DELETE
	return &req
}

// SetBasicAuth set user and password for request
func (r *Request) SetBasicAuth(username, password string) *Request {
	r.basicAuthUsername = username
	r.basicAuthPassword = password
	return r
}

func (r *Request) SetContentType(contentType string) *Request {
	r.ContentType = contentType
	return r
}

func (r *Request) AddHeader(key, v string) *Request {
	if r.headers == nil {
		r.headers = map[string]string{}
	}
	r.headers[key] = v
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.Context = ctx
	return r
}

// Result is the http request result
type Result struct {
	Url        string
	Headers    map[string][]string
	Body       []byte
	StatusCode int
	Size       uint64
}

var timeout = 60 * time.Second

var t = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: timeout,
	}).DialContext,
	ResponseHeaderTimeout: timeout,
	IdleConnTimeout:       timeout,
	TLSHandshakeTimeout:   timeout,
	ExpectContinueTimeout: timeout,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
}

var defaultClient = &http.Client{
	Transport:     t,
	CheckRedirect: nil,
}

// ExecuteRequest issue a request, calls that may run long should carry a
// deadline on the request's context, the shared client sets no overall timeout.
func ExecuteRequest(req *Request) (result *Result, err error) {
	return ExecuteRequestWithClient(defaultClient, req)
}

func ExecuteRequestWithClient(client *http.Client, req *Request) (result *Result, err error) {
	if client == nil {
		client = defaultClient
	}

	var request *http.Request
	if len(req.Body) > 0 {
		request, err = http.NewRequest(req.Method, req.Url, bytes.NewReader(req.Body))
	} else {
		request, err = http.NewRequest(req.Method, req.Url, nil)
	}
	if err != nil {
		return nil, err
	}

	if req.Context != nil {
		request = request.WithContext(req.Context)
	}

	request.Header.Set("User-Agent", userAgent)

	if req.ContentType != "" {
		request.Header.Set("Content-Type", req.ContentType)
	}

	for k, v := range req.headers {
		request.Header.Set(k, v)
	}

	if req.basicAuthUsername != "" && req.basicAuthPassword != "" {
		request.SetBasicAuth(req.basicAuthUsername, req.basicAuthPassword)
	}

	return execute(client, request)
}

func execute(client *http.Client, req *http.Request) (*Result, error) {
	result := &Result{}
	resp, err := client.Do(req)

	defer func() {
		if resp != nil && resp.Body != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}()

	if err != nil {
		return result, err
	}

	result.StatusCode = resp.StatusCode
	result.Url = resp.Request.URL.String()

	if resp.Header != nil {
		result.Headers = map[string][]string{}
		for k, v := range resp.Header {
			result.Headers[strings.ToLower(k)] = v
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}

	result.Body = body
	result.Size = uint64(len(body))
	return result, nil
}
