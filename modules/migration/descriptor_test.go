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

	"github.com/stretchr/testify/assert"
)

func TestRenameRule(t *testing.T) {
	rule, err := NewRenameRule(`^(.*)$`, `new_$1`)
	assert.NoError(t, err)
	assert.False(t, rule.IsIdentity())
	assert.Equal(t, "new_orders", rule.Apply("orders"))

	identity, err := NewRenameRule("", "")
	assert.NoError(t, err)
	assert.True(t, identity.IsIdentity())
	assert.Equal(t, "orders", identity.Apply("orders"))
}

func TestRenameRuleInvalidPattern(t *testing.T) {
	_, err := NewRenameRule(`^(`, `new_$1`)
	assert.Error(t, err)
}

func TestIsSystemIndex(t *testing.T) {
	assert.True(t, IsSystemIndex(".kibana"))
	assert.False(t, IsSystemIndex("logs-2024"))
}
