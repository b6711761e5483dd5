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

package cluster

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"infini.sh/migrate/core/util"
)

// fakeCluster answers GETs from a canned path map and records every PUT.
type fakeCluster struct {
	responses map[string]string
	puts      map[string]string
	putStatus map[string]int
}

func newFakeCluster(responses map[string]string) *fakeCluster {
	return &fakeCluster{
		responses: responses,
		puts:      map[string]string{},
		putStatus: map[string]int{},
	}
}

func (f *fakeCluster) Request(method, path string, body []byte) (*util.Result, error) {
	switch method {
	case util.Verb_GET:
		if data, ok := f.responses[path]; ok {
			return &util.Result{StatusCode: 200, Body: []byte(data)}, nil
		}
		return &util.Result{StatusCode: 404, Body: []byte(`{}`)}, nil
	case util.Verb_PUT:
		f.puts[path] = string(body)
		status := f.putStatus[path]
		if status == 0 {
			status = 200
		}
		return &util.Result{StatusCode: status, Body: []byte(`{"acknowledged":true}`)}, nil
	}
	return nil, errors.Errorf("unexpected method %v", method)
}

func TestSyncComponentTemplates(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_component_template": `{"component_templates":[
			{"name":"base-settings","component_template":{"template":{"settings":{"number_of_shards":"1"}}}},
			{"name":"base-mappings","component_template":{"template":{"mappings":{"properties":{}}}}}
		]}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncComponentTemplates(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 2, copied)
	assert.Contains(t, target.puts, "/_component_template/base-settings")
	assert.Contains(t, target.puts["/_component_template/base-settings"], `"number_of_shards"`)
	assert.Contains(t, target.puts, "/_component_template/base-mappings")
}

func TestSyncIngestPipelines(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_ingest/pipeline": `{"timestamps":{"processors":[{"set":{"field":"ts"}}]},"geoip":{"processors":[]}}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncIngestPipelines(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 2, copied)
	assert.Contains(t, target.puts["/_ingest/pipeline/timestamps"], `"processors"`)
}

func TestSyncIngestPipelinesSkipsRejectedEntry(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_ingest/pipeline": `{"good":{"processors":[]},"rejected":{"processors":[]}}`,
	})
	target := newFakeCluster(nil)
	target.putStatus["/_ingest/pipeline/rejected"] = 400

	copied, err := syncIngestPipelines(source, target)

	// the rejected entry is skipped, its sibling still lands
	assert.NoError(t, err)
	assert.Equal(t, 1, copied)
	assert.Contains(t, target.puts, "/_ingest/pipeline/good")
}

func TestSyncStoredScripts(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_cluster/state/metadata?filter_path=metadata.stored_scripts": `{"metadata":{"stored_scripts":{"calc-discount":{"lang":"painless","source":"ctx._source.x"}}}}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncStoredScripts(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 1, copied)
	// the script body must be re-wrapped for the create endpoint
	assert.Equal(t, `{"script":{"lang":"painless","source":"ctx._source.x"}}`, target.puts["/_scripts/calc-discount"])
}

func TestSyncStoredScriptsNoneOnSource(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_cluster/state/metadata?filter_path=metadata.stored_scripts": `{"metadata":{}}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncStoredScripts(source, target)
	assert.NoError(t, err)
	assert.Equal(t, 0, copied)
	assert.Empty(t, target.puts)
}

func TestSyncILMPoliciesUnwrapAndRewrap(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_ilm/policy": `{"hot-warm":{"version":3,"modified_date":"2026-01-01T00:00:00.000Z","policy":{"phases":{"hot":{}}}}}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncILMPolicies(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 1, copied)
	// metadata like version and modified_date never reaches the target
	assert.Equal(t, `{"policy":{"phases":{"hot":{}}}}`, target.puts["/_ilm/policy/hot-warm"])
}

func TestSyncTransformsStripsAssignedFields(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_transform": `{"transforms":[{"id":"daily-rollup","create_time":1700000000,"version":"8.5.0","authorization":{"roles":["admin"]},"source":{"index":["orders"]},"dest":{"index":"orders-daily"}}]}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncTransforms(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 1, copied)
	body := target.puts["/_transform/daily-rollup"]
	assert.Contains(t, body, `"dest"`)
	assert.NotContains(t, body, `"id"`)
	assert.NotContains(t, body, `"create_time"`)
	assert.NotContains(t, body, `"version"`)
	assert.NotContains(t, body, `"authorization"`)
}

func TestSyncRollupJobs(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_rollup/job/_all": `{"jobs":[{"config":{"id":"sensor-hourly","index_pattern":"sensor-*","rollup_index":"sensor_rollup"},"status":{"job_state":"stopped"}}]}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncRollupJobs(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 1, copied)
	body := target.puts["/_rollup/job/sensor-hourly"]
	assert.Contains(t, body, `"index_pattern"`)
	assert.NotContains(t, body, `"id"`)
}

func TestSyncWatchers(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_watcher/_query/watches": `{"count":1,"watches":[{"_id":"cluster-health","watch":{"trigger":{"schedule":{"interval":"10s"}}},"status":{"state":{"active":true}}}]}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncWatchers(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 1, copied)
	// only the watch definition is copied, never the runtime status
	assert.Equal(t, `{"trigger":{"schedule":{"interval":"10s"}}}`, target.puts["/_watcher/watch/cluster-health"])
}

func TestSyncEnrichPolicies(t *testing.T) {
	source := newFakeCluster(map[string]string{
		"/_enrich/policy": `{"policies":[{"config":{"match":{"name":"users-enrich","indices":["users"],"match_field":"email","enrich_fields":["name"]}}}]}`,
	})
	target := newFakeCluster(nil)

	copied, err := syncEnrichPolicies(source, target)

	assert.NoError(t, err)
	assert.Equal(t, 1, copied)
	body := target.puts["/_enrich/policy/users-enrich"]
	assert.Contains(t, body, `"match"`)
	assert.Contains(t, body, `"match_field"`)
	// the name moved into the path
	assert.NotContains(t, body, `"name"`)
}

func TestSyncAllIsolatesFailures(t *testing.T) {
	// only pipelines respond, every other kind fails its GET but the run
	// still visits all of them
	source := newFakeCluster(map[string]string{
		"/_ingest/pipeline": `{"p1":{"processors":[]}}`,
	})
	target := newFakeCluster(nil)

	outcomes := SyncAll(source, target)

	assert.Len(t, outcomes, len(Syncers))
	byName := map[string]Outcome{}
	for _, o := range outcomes {
		byName[o.Name] = o
	}
	assert.True(t, byName["ingest-pipelines"].Success())
	assert.Equal(t, 1, byName["ingest-pipelines"].Copied)
	assert.False(t, byName["security-roles"].Success())
	assert.False(t, byName["transforms"].Success())
}
