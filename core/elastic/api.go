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

// API is the cluster surface the migration pipeline consumes. Both clusters
// are accessed through the same contract, components receive the source and
// target handle explicitly at construction.
type API interface {
	CatalogAPI
	MappingAPI
	TemplateAPI
	AliasAPI
	TaskAPI
	SnapshotAPI

	ClusterVersion() (string, error)

	// Host returns the host:port this client talks to, used to build the
	// remote section of a cross-cluster reindex.
	Host() string
}

// CatalogAPI covers index-level catalog reads and writes.
type CatalogAPI interface {
	CatIndices() ([]CatIndexResponse, error)
	IndexExists(indexName string) (bool, error)
	CreateIndex(indexName string, body *CreateIndexRequest) error
	GetIndexSettings(indexName string) (map[string]interface{}, error)
	Count(indexName string) (int64, error)
}

type MappingAPI interface {
	GetMapping(indexName string) (map[string]interface{}, error)
}

type TemplateAPI interface {
	GetIndexTemplates() ([]NamedIndexTemplate, error)
}

type AliasAPI interface {
	GetAliases(indexName string) ([]string, error)
	PutAlias(indexName, aliasName string) error
	DeleteAlias(indexName, aliasName string) error
	UpdateAliases(req *AliasRequest) error
}

// TaskAPI covers the asynchronous bulk-copy service.
type TaskAPI interface {
	Reindex(req *ReindexRequest, slices, batchSize int, requestsPerSecond float64) (*ReindexResponse, error)
	GetTask(taskId string) (*TaskResponse, error)
}

// SnapshotAPI covers the whole-cluster transfer path. Create and restore
// block until the snapshot service reports completion.
type SnapshotAPI interface {
	CreateSnapshot(repo, name string, indices []string) error
	GetSnapshot(repo, name string) (*SnapshotInfo, error)
	RestoreSnapshot(repo, name string, req *SnapshotRestoreRequest) error
}
