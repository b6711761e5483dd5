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
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const systemIndexPrefix = "."

// IndexDescriptor is the identity unit of one index migration, materialized
// once by discovery and immutable afterwards.
type IndexDescriptor struct {
	Source      string
	Destination string
	IsSystem    bool
}

func IsSystemIndex(name string) bool {
	return strings.HasPrefix(name, systemIndexPrefix)
}

// RenameRule rewrites a source index name into its destination name, the
// zero rule is identity.
type RenameRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewRenameRule compiles a rename rule, both arguments empty yields the
// identity rule. Replacement uses Go regexp group references, e.g. new_$1.
func NewRenameRule(pattern, replacement string) (*RenameRule, error) {
	if pattern == "" {
		return &RenameRule{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid rename pattern [%v]", pattern)
	}
	return &RenameRule{pattern: re, replacement: replacement}, nil
}

func (r *RenameRule) Apply(name string) string {
	if r == nil || r.pattern == nil {
		return name
	}
	return r.pattern.ReplaceAllString(name, r.replacement)
}

// IsIdentity reports whether the rule leaves every name unchanged.
func (r *RenameRule) IsIdentity() bool {
	return r == nil || r.pattern == nil
}

func (r *RenameRule) Pattern() string {
	if r == nil || r.pattern == nil {
		return ""
	}
	return r.pattern.String()
}

func (r *RenameRule) Replacement() string {
	if r == nil {
		return ""
	}
	return r.replacement
}
