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

type ClusterVersion struct {
	Name        string `json:"name,omitempty"`
	ClusterName string `json:"cluster_name,omitempty"`
	Version     struct {
		Number        string `json:"number,omitempty"`
		LuceneVersion string `json:"lucene_version,omitempty"`
	} `json:"version,omitempty"`
}

type CatIndexResponse struct {
	Health       string `json:"health,omitempty"`
	Status       string `json:"status,omitempty"`
	Index        string `json:"index,omitempty"`
	Uuid         string `json:"uuid,omitempty"`
	Pri          string `json:"pri,omitempty"`
	Rep          string `json:"rep,omitempty"`
	DocsCount    string `json:"docs.count,omitempty"`
	DocsDeleted  string `json:"docs.deleted,omitempty"`
	StoreSize    string `json:"store.size,omitempty"`
	PriStoreSize string `json:"pri.store.size,omitempty"`
}

// TemplateSpec is the body an index template applies at creation time.
type TemplateSpec struct {
	Settings map[string]interface{} `json:"settings,omitempty"`
	Mappings map[string]interface{} `json:"mappings,omitempty"`
	Aliases  map[string]interface{} `json:"aliases,omitempty"`
}

type IndexTemplate struct {
	IndexPatterns []string      `json:"index_patterns,omitempty"`
	Template      *TemplateSpec `json:"template,omitempty"`
	Priority      int           `json:"priority,omitempty"`
}

type NamedIndexTemplate struct {
	Name          string         `json:"name"`
	IndexTemplate *IndexTemplate `json:"index_template"`
}

type IndexTemplatesResponse struct {
	IndexTemplates []NamedIndexTemplate `json:"index_templates"`
}

// CreateIndexRequest is the create-index body assembled by the provisioner.
type CreateIndexRequest struct {
	Settings map[string]interface{} `json:"settings,omitempty"`
	Mappings map[string]interface{} `json:"mappings,omitempty"`
	Aliases  map[string]interface{} `json:"aliases,omitempty"`
}

type ReindexRemoteInfo struct {
	Host     string `json:"host"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type ReindexSource struct {
	Remote *ReindexRemoteInfo `json:"remote,omitempty"`
	Index  string             `json:"index"`
	Size   int                `json:"size,omitempty"`
}

type ReindexDest struct {
	Index string `json:"index"`
}

type ReindexRequest struct {
	Source ReindexSource `json:"source"`
	Dest   ReindexDest   `json:"dest"`
}

type ReindexResponse struct {
	Task string `json:"task"`
}

// TaskResponse is the tasks API view over one asynchronous copy operation.
type TaskResponse struct {
	Completed bool `json:"completed"`
	Task      struct {
		Node   string `json:"node,omitempty"`
		Id     int64  `json:"id,omitempty"`
		Action string `json:"action,omitempty"`
		Status struct {
			Total   int64 `json:"total"`
			Created int64 `json:"created"`
			Updated int64 `json:"updated"`
			Deleted int64 `json:"deleted"`
		} `json:"status"`
	} `json:"task"`
	Response struct {
		Failures []TaskFailure `json:"failures,omitempty"`
	} `json:"response,omitempty"`
}

type TaskFailure struct {
	Index  string      `json:"index,omitempty"`
	Id     string      `json:"id,omitempty"`
	Status int         `json:"status,omitempty"`
	Cause  interface{} `json:"cause,omitempty"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// AliasAction is one entry of the update-aliases actions list, exactly one
// field is set per entry.
type AliasAction struct {
	Add    *AliasActionBody `json:"add,omitempty"`
	Remove *AliasActionBody `json:"remove,omitempty"`
}

type AliasActionBody struct {
	Index string `json:"index"`
	Alias string `json:"alias"`
}

type AliasRequest struct {
	Actions []AliasAction `json:"actions"`
}

type SnapshotCreateRequest struct {
	Indices string `json:"indices,omitempty"`
}

type SnapshotInfo struct {
	Snapshot string   `json:"snapshot"`
	State    string   `json:"state,omitempty"`
	Indices  []string `json:"indices,omitempty"`
	Failures []struct {
		Index   string `json:"index,omitempty"`
		ShardId int    `json:"shard_id,omitempty"`
		Reason  string `json:"reason,omitempty"`
	} `json:"failures,omitempty"`
}

type GetSnapshotResponse struct {
	Snapshots []SnapshotInfo `json:"snapshots"`
}

type SnapshotRestoreRequest struct {
	Indices           string `json:"indices,omitempty"`
	RenamePattern     string `json:"rename_pattern,omitempty"`
	RenameReplacement string `json:"rename_replacement,omitempty"`
}

type RestoreResponse struct {
	Snapshot struct {
		Snapshot string   `json:"snapshot"`
		Indices  []string `json:"indices,omitempty"`
		Shards   struct {
			Total      int `json:"total"`
			Failed     int `json:"failed"`
			Successful int `json:"successful"`
		} `json:"shards,omitempty"`
	} `json:"snapshot"`
}
