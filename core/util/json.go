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
	log "github.com/cihub/seelog"
	"github.com/segmentio/encoding/json"
)

// MustToJSONBytes convert interface to json with byte array
func MustToJSONBytes(v interface{}) []byte {
	b, err := ToJSONBytes(v)
	if err != nil {
		panic(err)
	}
	return b
}

func ToJSONBytes(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// MustFromJSONBytes simply do json unmarshal
func MustFromJSONBytes(b []byte, v interface{}) {
	err := FromJSONBytes(b, v)
	if err != nil {
		log.Error("data:", string(b))
		panic(err)
	}
}

func FromJSONBytes(b []byte, v interface{}) (err error) {
	if len(b) == 0 {
		return
	}
	return json.Unmarshal(b, v)
}

// SubString cut the string without out-of-range panic
func SubString(str string, begin, length int) string {
	rs := []rune(str)
	lth := len(rs)

	if begin < 0 {
		begin = 0
	}
	if begin >= lth {
		begin = lth
	}
	end := begin + length
	if end > lth {
		end = lth
	}

	return string(rs[begin:end])
}
