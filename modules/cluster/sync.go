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

// Package cluster copies cluster-level configuration objects between
// clusters. Each object kind is a stateless enumerate-and-recreate pair
// with no ordering or consistency requirement among kinds.
package cluster

import (
	log "github.com/cihub/seelog"

	"infini.sh/migrate/core/util"
)

// Requester is the narrow client surface the object migrators need.
type Requester interface {
	Request(method, path string, body []byte) (*util.Result, error)
}

// Syncer is one independent migrator unit for a single object kind.
type Syncer struct {
	Name string
	Sync func(source, target Requester) (int, error)
}

// Outcome is one syncer's result, aggregated by the driver.
type Outcome struct {
	Name   string
	Copied int
	Err    error
}

func (o Outcome) Success() bool {
	return o.Err == nil
}

// Syncers is the declared, ordered list of object migrators. Order carries
// no semantic meaning, it only makes runs and logs deterministic.
var Syncers = []Syncer{
	{"component-templates", syncComponentTemplates},
	{"index-templates", syncIndexTemplates},
	{"ingest-pipelines", syncIngestPipelines},
	{"stored-scripts", syncStoredScripts},
	{"ilm-policies", syncILMPolicies},
	{"security-roles", syncRoles},
	{"security-users", syncUsers},
	{"security-role-mappings", syncRoleMappings},
	{"transforms", syncTransforms},
	{"rollup-jobs", syncRollupJobs},
	{"watchers", syncWatchers},
	{"enrich-policies", syncEnrichPolicies},
}

// SyncAll runs every syncer against the cluster pair, a failing kind never
// aborts its siblings.
func SyncAll(source, target Requester) []Outcome {
	outcomes := make([]Outcome, 0, len(Syncers))
	for _, s := range Syncers {
		copied, err := s.Sync(source, target)
		if err != nil {
			log.Errorf("error migrating %v: %v", s.Name, err)
		} else {
			log.Infof("migrated %v %v", copied, s.Name)
		}
		outcomes = append(outcomes, Outcome{Name: s.Name, Copied: copied, Err: err})
	}
	return outcomes
}
