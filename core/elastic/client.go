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

package elastic

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/buger/jsonparser"
	log "github.com/cihub/seelog"
	"github.com/pkg/errors"

	"infini.sh/migrate/config"
	"infini.sh/migrate/core/util"
)

var (
	// ErrNotFound marks a 404 from either cluster, callers decide whether
	// absence is an error.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict marks create calls that hit an already existing resource,
	// treated as already-done on re-runs.
	ErrConflict = errors.New("resource already exists")
)

func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

func IsConflict(err error) bool {
	return errors.Cause(err) == ErrConflict
}

// Client implements API over the cluster's HTTP protocol.
type Client struct {
	Config config.ClusterConfig
}

func NewClient(cfg config.ClusterConfig) *Client {
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	return &Client{Config: cfg}
}

func (c *Client) Host() string {
	return c.Config.Endpoint
}

// Request issues one call against the cluster, every call carries the
// configured per-request timeout.
func (c *Client) Request(method, path string, body []byte) (*util.Result, error) {
	url := c.Config.Endpoint + path

	log.Tracef("%v %v %v", method, url, util.SubString(string(body), 0, 3000))

	var req *util.Request
	switch method {
	case util.Verb_GET:
		req = util.NewGetRequest(url, body)
	case util.Verb_PUT:
		req = util.NewPutRequest(url, body)
	case util.Verb_POST:
		req = util.NewPostRequest(url, body)
	case util.Verb_DELETE:
		req = util.NewDeleteRequest(url, body)
	default:
		req = util.NewRequest(method, url)
	}

	req.SetContentType(util.ContentTypeJson)

	if c.Config.BasicAuth != nil {
		req.SetBasicAuth(c.Config.BasicAuth.Username, c.Config.BasicAuth.Password)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Config.RequestTimeout())
	defer cancel()
	req.WithContext(ctx)

	result, err := util.ExecuteRequest(req)
	if err != nil {
		return result, errors.Wrapf(err, "request to [%v] failed", url)
	}
	return result, nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(result *util.Result) error {
	if result.StatusCode >= 200 && result.StatusCode < 300 {
		return nil
	}

	errType, _ := jsonparser.GetString(result.Body, "error", "type")
	reason, _ := jsonparser.GetString(result.Body, "error", "reason")

	if result.StatusCode == 404 {
		return errors.Wrapf(ErrNotFound, "[%v] %v", result.StatusCode, reason)
	}
	if result.StatusCode == 409 || errType == "resource_already_exists_exception" {
		return errors.Wrapf(ErrConflict, "[%v] %v", result.StatusCode, reason)
	}

	return errors.Errorf("elasticsearch error [%v][%v] %v", result.StatusCode, errType, reason)
}

func (c *Client) ClusterVersion() (string, error) {
	result, err := c.Request(util.Verb_GET, "/", nil)
	if err != nil {
		return "", err
	}
	if err := statusError(result); err != nil {
		return "", err
	}
	v := ClusterVersion{}
	if err := util.FromJSONBytes(result.Body, &v); err != nil {
		return "", err
	}
	return v.Version.Number, nil
}

func (c *Client) CatIndices() ([]CatIndexResponse, error) {
	result, err := c.Request(util.Verb_GET, "/_cat/indices?format=json&expand_wildcards=all", nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}
	indices := []CatIndexResponse{}
	if err := util.FromJSONBytes(result.Body, &indices); err != nil {
		return nil, err
	}
	return indices, nil
}

func (c *Client) IndexExists(indexName string) (bool, error) {
	result, err := c.Request(util.Verb_HEAD, "/"+indexName, nil)
	if err != nil {
		return false, err
	}
	if result.StatusCode == 404 {
		return false, nil
	}
	if err := statusError(result); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) CreateIndex(indexName string, body *CreateIndexRequest) error {
	var data []byte
	if body != nil {
		data = util.MustToJSONBytes(body)
	}
	result, err := c.Request(util.Verb_PUT, "/"+indexName, data)
	if err != nil {
		return err
	}
	return statusError(result)
}

func (c *Client) GetIndexSettings(indexName string) (map[string]interface{}, error) {
	result, err := c.Request(util.Verb_GET, "/"+indexName+"/_settings", nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}

	data, _, _, err := jsonparser.Get(result.Body, indexName, "settings", "index")
	if err != nil {
		return nil, errors.Wrapf(err, "unexpected settings response for [%v]", indexName)
	}
	settings := map[string]interface{}{}
	if err := util.FromJSONBytes(data, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (c *Client) Count(indexName string) (int64, error) {
	result, err := c.Request(util.Verb_GET, "/"+indexName+"/_count", nil)
	if err != nil {
		return 0, err
	}
	if err := statusError(result); err != nil {
		return 0, err
	}
	count, err := jsonparser.GetInt(result.Body, "count")
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected count response for [%v]", indexName)
	}
	return count, nil
}

func (c *Client) GetMapping(indexName string) (map[string]interface{}, error) {
	result, err := c.Request(util.Verb_GET, "/"+indexName+"/_mapping", nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}

	data, _, _, err := jsonparser.Get(result.Body, indexName, "mappings")
	if err != nil {
		return nil, errors.Wrapf(err, "unexpected mapping response for [%v]", indexName)
	}
	mappings := map[string]interface{}{}
	if err := util.FromJSONBytes(data, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (c *Client) GetIndexTemplates() ([]NamedIndexTemplate, error) {
	result, err := c.Request(util.Verb_GET, "/_index_template", nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}
	response := IndexTemplatesResponse{}
	if err := util.FromJSONBytes(result.Body, &response); err != nil {
		return nil, err
	}
	return response.IndexTemplates, nil
}

func (c *Client) GetAliases(indexName string) ([]string, error) {
	result, err := c.Request(util.Verb_GET, "/"+indexName+"/_alias", nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}

	names := []string{}
	err = jsonparser.ObjectEach(result.Body, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		return jsonparser.ObjectEach(value, func(alias []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
			names = append(names, string(alias))
			return nil
		}, "aliases")
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unexpected alias response for [%v]", indexName)
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) PutAlias(indexName, aliasName string) error {
	result, err := c.Request(util.Verb_PUT, "/"+indexName+"/_alias/"+aliasName, nil)
	if err != nil {
		return err
	}
	return statusError(result)
}

func (c *Client) DeleteAlias(indexName, aliasName string) error {
	result, err := c.Request(util.Verb_DELETE, "/"+indexName+"/_alias/"+aliasName, nil)
	if err != nil {
		return err
	}
	return statusError(result)
}

func (c *Client) UpdateAliases(req *AliasRequest) error {
	result, err := c.Request(util.Verb_POST, "/_aliases", util.MustToJSONBytes(req))
	if err != nil {
		return err
	}
	return statusError(result)
}

func (c *Client) Reindex(req *ReindexRequest, slices, batchSize int, requestsPerSecond float64) (*ReindexResponse, error) {
	if slices <= 0 {
		slices = 1
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = -1
	}
	if batchSize > 0 {
		req.Source.Size = batchSize
	}

	path := fmt.Sprintf("/_reindex?wait_for_completion=false&slices=%d&requests_per_second=%v",
		slices, requestsPerSecond)
	result, err := c.Request(util.Verb_POST, path, util.MustToJSONBytes(req))
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}

	response := ReindexResponse{}
	if err := util.FromJSONBytes(result.Body, &response); err != nil {
		return nil, err
	}
	if response.Task == "" {
		return nil, errors.Errorf("reindex into [%v] returned no task handle", req.Dest.Index)
	}
	return &response, nil
}

func (c *Client) GetTask(taskId string) (*TaskResponse, error) {
	result, err := c.Request(util.Verb_GET, "/_tasks/"+url.PathEscape(taskId), nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}
	task := TaskResponse{}
	if err := util.FromJSONBytes(result.Body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateSnapshot(repo, name string, indices []string) error {
	body := SnapshotCreateRequest{}
	if len(indices) > 0 {
		body.Indices = strings.Join(indices, ",")
	}
	path := fmt.Sprintf("/_snapshot/%v/%v?wait_for_completion=true", repo, name)
	result, err := c.Request(util.Verb_PUT, path, util.MustToJSONBytes(body))
	if err != nil {
		return err
	}
	return statusError(result)
}

func (c *Client) GetSnapshot(repo, name string) (*SnapshotInfo, error) {
	result, err := c.Request(util.Verb_GET, fmt.Sprintf("/_snapshot/%v/%v", repo, name), nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(result); err != nil {
		return nil, err
	}
	response := GetSnapshotResponse{}
	if err := util.FromJSONBytes(result.Body, &response); err != nil {
		return nil, err
	}
	if len(response.Snapshots) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "snapshot [%v] not found in repository [%v]", name, repo)
	}
	return &response.Snapshots[0], nil
}

func (c *Client) RestoreSnapshot(repo, name string, req *SnapshotRestoreRequest) error {
	path := fmt.Sprintf("/_snapshot/%v/%v/_restore?wait_for_completion=true", repo, name)
	var body []byte
	if req != nil {
		body = util.MustToJSONBytes(req)
	}
	result, err := c.Request(util.Verb_POST, path, body)
	if err != nil {
		return err
	}
	return statusError(result)
}
