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

package migration

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func mappingOf(field, kind string) map[string]interface{} {
	return map[string]interface{}{
		"properties": map[string]interface{}{
			field: map[string]interface{}{"type": kind},
		},
	}
}

func TestVerifyBothChecksPass(t *testing.T) {
	source := &fakeAPI{
		count:      func(string) (int64, error) { return 1200, nil },
		getMapping: func(string) (map[string]interface{}, error) { return mappingOf("id", "keyword"), nil },
	}
	target := &fakeAPI{
		count:      func(string) (int64, error) { return 1200, nil },
		getMapping: func(string) (map[string]interface{}, error) { return mappingOf("id", "keyword"), nil },
	}

	result, err := NewValidator(source, target).Verify("orders", "new_orders")

	assert.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Equal(t, int64(1200), result.SourceCount)
	assert.Equal(t, int64(1200), result.TargetCount)
	assert.Empty(t, result.MappingDiff)
}

func TestVerifyDocCountMismatchFailsGate(t *testing.T) {
	source := &fakeAPI{
		count:      func(string) (int64, error) { return 1200, nil },
		getMapping: func(string) (map[string]interface{}, error) { return mappingOf("id", "keyword"), nil },
	}
	target := &fakeAPI{
		count:      func(string) (int64, error) { return 1100, nil },
		getMapping: func(string) (map[string]interface{}, error) { return mappingOf("id", "keyword"), nil },
	}

	result, err := NewValidator(source, target).Verify("orders", "new_orders")

	assert.NoError(t, err)
	assert.False(t, result.Passed())
	assert.False(t, result.DocCountMatch)
	assert.True(t, result.MappingMatch)
}

func TestVerifyMappingMismatchFailsGateDespiteMatchingCounts(t *testing.T) {
	source := &fakeAPI{
		count:      func(string) (int64, error) { return 1200, nil },
		getMapping: func(string) (map[string]interface{}, error) { return mappingOf("id", "keyword"), nil },
	}
	target := &fakeAPI{
		count:      func(string) (int64, error) { return 1200, nil },
		getMapping: func(string) (map[string]interface{}, error) { return mappingOf("id", "text"), nil },
	}

	result, err := NewValidator(source, target).Verify("orders", "new_orders")

	assert.NoError(t, err)
	assert.False(t, result.Passed())
	assert.True(t, result.DocCountMatch)
	assert.False(t, result.MappingMatch)
	assert.NotEmpty(t, result.MappingDiff)
}

func TestVerifyIgnoresMapKeyOrder(t *testing.T) {
	source := &fakeAPI{
		count: func(string) (int64, error) { return 1, nil },
		getMapping: func(string) (map[string]interface{}, error) {
			return map[string]interface{}{
				"properties": map[string]interface{}{
					"a": map[string]interface{}{"type": "keyword"},
					"b": map[string]interface{}{"type": "long"},
				},
			}, nil
		},
	}
	target := &fakeAPI{
		count: func(string) (int64, error) { return 1, nil },
		getMapping: func(string) (map[string]interface{}, error) {
			return map[string]interface{}{
				"properties": map[string]interface{}{
					"b": map[string]interface{}{"type": "long"},
					"a": map[string]interface{}{"type": "keyword"},
				},
			}, nil
		},
	}

	result, err := NewValidator(source, target).Verify("orders", "new_orders")
	assert.NoError(t, err)
	assert.True(t, result.MappingMatch)
}

func TestVerifyCountErrorAborts(t *testing.T) {
	source := &fakeAPI{
		count: func(string) (int64, error) { return 0, errors.New("connection refused") },
	}

	_, err := NewValidator(source, &fakeAPI{}).Verify("orders", "new_orders")
	assert.Error(t, err)
}
