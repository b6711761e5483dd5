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
	log "github.com/cihub/seelog"
	"github.com/pkg/errors"

	"infini.sh/migrate/config"
	"infini.sh/migrate/core/elastic"
)

// Strategy is the bulk transfer mechanism, chosen once per run.
type Strategy string

const (
	StrategyReindex  Strategy = "remote-reindex"
	StrategySnapshot Strategy = "snapshot-restore"
)

// TransferTask is one in-flight bulk copy. Counters are only ever updated
// from polling reads against the destination cluster and never decrease.
type TransferTask struct {
	TaskId    string
	Strategy  Strategy
	Created   int64
	Total     int64
	Completed bool
	Failures  []elastic.TaskFailure
}

// Reindexer submits asynchronous remote-reindex copies against the target
// cluster, one task per index.
type Reindexer struct {
	source     elastic.API
	target     elastic.API
	sourceAuth *config.BasicAuth
	cfg        config.ReindexConfig
}

func NewReindexer(source, target elastic.API, sourceAuth *config.BasicAuth, cfg config.ReindexConfig) *Reindexer {
	return &Reindexer{
		source:     source,
		target:     target,
		sourceAuth: sourceAuth,
		cfg:        cfg,
	}
}

// Submit starts the copy and returns immediately with the task handle. The
// destination index must already exist, a reindex never creates it.
func (r *Reindexer) Submit(desc IndexDescriptor) (*TransferTask, error) {
	exists, err := r.target.IndexExists(desc.Destination)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check destination index [%v]", desc.Destination)
	}
	if !exists {
		return nil, errors.Errorf("destination index [%v] does not exist, provision it first", desc.Destination)
	}

	req := &elastic.ReindexRequest{
		Source: elastic.ReindexSource{
			Remote: &elastic.ReindexRemoteInfo{Host: r.source.Host()},
			Index:  desc.Source,
		},
		Dest: elastic.ReindexDest{Index: desc.Destination},
	}
	if r.sourceAuth != nil {
		req.Source.Remote.Username = r.sourceAuth.Username
		req.Source.Remote.Password = r.sourceAuth.Password
	}

	response, err := r.target.Reindex(req, r.cfg.Slices, r.cfg.BatchSize, r.cfg.RequestsPerSecond)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to submit reindex [%v] -> [%v]", desc.Source, desc.Destination)
	}

	log.Infof("started reindex task [%v] for [%v] -> [%v]", response.Task, desc.Source, desc.Destination)

	return &TransferTask{
		TaskId:   response.Task,
		Strategy: StrategyReindex,
	}, nil
}
