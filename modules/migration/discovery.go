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

	log "github.com/cihub/seelog"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"infini.sh/migrate/core/elastic"
)

// Discovery enumerates in-scope indices on the source cluster. System
// indices (leading dot) are always excluded. Catalog read failures are
// reported and yield an empty set, they never escape this boundary.
type Discovery struct {
	source elastic.API
	rename *RenameRule
}

func NewDiscovery(source elastic.API, rename *RenameRule) *Discovery {
	return &Discovery{source: source, rename: rename}
}

func (d *Discovery) describe(names []string) []IndexDescriptor {
	return lo.Map(names, func(name string, _ int) IndexDescriptor {
		return IndexDescriptor{
			Source:      name,
			Destination: d.rename.Apply(name),
			IsSystem:    IsSystemIndex(name),
		}
	})
}

func (d *Discovery) listNames() []string {
	indices, err := d.source.CatIndices()
	if err != nil {
		log.Errorf("error listing indices: %v", err)
		return nil
	}

	// the cat API reports counts as strings
	var totalDocs int64
	names := lo.FilterMap(indices, func(idx elastic.CatIndexResponse, _ int) (string, bool) {
		if IsSystemIndex(idx.Index) {
			return "", false
		}
		totalDocs += cast.ToInt64(idx.DocsCount)
		return idx.Index, true
	})
	log.Debugf("source catalog: %v non-system indices, %v docs", len(names), totalDocs)
	return names
}

// ListAll returns every non-system index on the source cluster.
func (d *Discovery) ListAll() []IndexDescriptor {
	return d.describe(d.listNames())
}

// ListByPattern filters the non-system set by an unanchored regex search
// over the index name.
func (d *Discovery) ListByPattern(pattern string) ([]IndexDescriptor, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	names := lo.Filter(d.listNames(), func(name string, _ int) bool {
		return compiled.MatchString(name)
	})
	return d.describe(names), nil
}

// ListExact returns at most one descriptor, matched by exact name equality.
func (d *Discovery) ListExact(name string) []IndexDescriptor {
	names := lo.Filter(d.listNames(), func(candidate string, _ int) bool {
		return candidate == name
	})
	return d.describe(names)
}
