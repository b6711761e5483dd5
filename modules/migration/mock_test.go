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
	"github.com/pkg/errors"

	"infini.sh/migrate/core/elastic"
)

// fakeAPI stubs the cluster surface with per-call hooks, unset hooks fail
// loudly so tests only exercise the calls they declare.
type fakeAPI struct {
	catIndices        func() ([]elastic.CatIndexResponse, error)
	indexExists       func(string) (bool, error)
	createIndex       func(string, *elastic.CreateIndexRequest) error
	getIndexSettings  func(string) (map[string]interface{}, error)
	count             func(string) (int64, error)
	getMapping        func(string) (map[string]interface{}, error)
	getIndexTemplates func() ([]elastic.NamedIndexTemplate, error)
	getAliases        func(string) ([]string, error)
	putAlias          func(string, string) error
	deleteAlias       func(string, string) error
	updateAliases     func(*elastic.AliasRequest) error
	reindex           func(*elastic.ReindexRequest, int, int, float64) (*elastic.ReindexResponse, error)
	getTask           func(string) (*elastic.TaskResponse, error)
	createSnapshot    func(string, string, []string) error
	getSnapshot       func(string, string) (*elastic.SnapshotInfo, error)
	restoreSnapshot   func(string, string, *elastic.SnapshotRestoreRequest) error
	clusterVersion    func() (string, error)
}

var errNotStubbed = errors.New("call not stubbed")

func (f *fakeAPI) CatIndices() ([]elastic.CatIndexResponse, error) {
	if f.catIndices == nil {
		return nil, errNotStubbed
	}
	return f.catIndices()
}

func (f *fakeAPI) IndexExists(name string) (bool, error) {
	if f.indexExists == nil {
		return true, nil
	}
	return f.indexExists(name)
}

func (f *fakeAPI) CreateIndex(name string, body *elastic.CreateIndexRequest) error {
	if f.createIndex == nil {
		return errNotStubbed
	}
	return f.createIndex(name, body)
}

func (f *fakeAPI) GetIndexSettings(name string) (map[string]interface{}, error) {
	if f.getIndexSettings == nil {
		return nil, errNotStubbed
	}
	return f.getIndexSettings(name)
}

func (f *fakeAPI) Count(name string) (int64, error) {
	if f.count == nil {
		return 0, errNotStubbed
	}
	return f.count(name)
}

func (f *fakeAPI) GetMapping(name string) (map[string]interface{}, error) {
	if f.getMapping == nil {
		return nil, errNotStubbed
	}
	return f.getMapping(name)
}

func (f *fakeAPI) GetIndexTemplates() ([]elastic.NamedIndexTemplate, error) {
	if f.getIndexTemplates == nil {
		return nil, nil
	}
	return f.getIndexTemplates()
}

func (f *fakeAPI) GetAliases(name string) ([]string, error) {
	if f.getAliases == nil {
		return nil, nil
	}
	return f.getAliases(name)
}

func (f *fakeAPI) PutAlias(index, alias string) error {
	if f.putAlias == nil {
		return errNotStubbed
	}
	return f.putAlias(index, alias)
}

func (f *fakeAPI) DeleteAlias(index, alias string) error {
	if f.deleteAlias == nil {
		return errNotStubbed
	}
	return f.deleteAlias(index, alias)
}

func (f *fakeAPI) UpdateAliases(req *elastic.AliasRequest) error {
	if f.updateAliases == nil {
		return errNotStubbed
	}
	return f.updateAliases(req)
}

func (f *fakeAPI) Reindex(req *elastic.ReindexRequest, slices, batchSize int, rps float64) (*elastic.ReindexResponse, error) {
	if f.reindex == nil {
		return nil, errNotStubbed
	}
	return f.reindex(req, slices, batchSize, rps)
}

func (f *fakeAPI) GetTask(taskId string) (*elastic.TaskResponse, error) {
	if f.getTask == nil {
		return nil, errNotStubbed
	}
	return f.getTask(taskId)
}

func (f *fakeAPI) CreateSnapshot(repo, name string, indices []string) error {
	if f.createSnapshot == nil {
		return errNotStubbed
	}
	return f.createSnapshot(repo, name, indices)
}

func (f *fakeAPI) GetSnapshot(repo, name string) (*elastic.SnapshotInfo, error) {
	if f.getSnapshot == nil {
		return nil, errNotStubbed
	}
	return f.getSnapshot(repo, name)
}

func (f *fakeAPI) RestoreSnapshot(repo, name string, req *elastic.SnapshotRestoreRequest) error {
	if f.restoreSnapshot == nil {
		return errNotStubbed
	}
	return f.restoreSnapshot(repo, name, req)
}

func (f *fakeAPI) ClusterVersion() (string, error) {
	if f.clusterVersion == nil {
		return "8.5.0", nil
	}
	return f.clusterVersion()
}

func (f *fakeAPI) Host() string {
	return "http://source.example:9200"
}
