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
	"strings"

	log "github.com/cihub/seelog"
	"github.com/pkg/errors"
	"github.com/rs/xid"

	"infini.sh/migrate/config"
	"infini.sh/migrate/core/elastic"
)

const snapshotStateSuccess = "SUCCESS"

// SnapshotMigrator moves the whole index set in one shot: a blocking
// cluster snapshot on the source, then a blocking restore on the target
// with an optional uniform name rewrite. Any service-reported error is
// fatal for the entire batch, this strategy has no per-index granularity.
type SnapshotMigrator struct {
	source elastic.API
	target elastic.API
	cfg    config.SnapshotConfig
	rename *RenameRule
}

func NewSnapshotMigrator(source, target elastic.API, cfg config.SnapshotConfig, rename *RenameRule) *SnapshotMigrator {
	return &SnapshotMigrator{source: source, target: target, cfg: cfg, rename: rename}
}

func (m *SnapshotMigrator) snapshotName() string {
	if m.cfg.Name != "" {
		return m.cfg.Name
	}
	return "migrate-" + xid.New().String()
}

// Run snapshots the given indices and restores them on the target. Both
// steps block until the snapshot service reports completion.
func (m *SnapshotMigrator) Run(descriptors []IndexDescriptor) error {
	indices := make([]string, 0, len(descriptors))
	for _, desc := range descriptors {
		indices = append(indices, desc.Source)
	}

	name := m.snapshotName()

	log.Infof("triggering snapshot [%v] in repository [%v] for %v indices", name, m.cfg.Repository, len(indices))
	if err := m.source.CreateSnapshot(m.cfg.Repository, name, indices); err != nil {
		return errors.Wrapf(err, "snapshot [%v] failed", name)
	}

	info, err := m.source.GetSnapshot(m.cfg.Repository, name)
	if err != nil {
		return errors.Wrapf(err, "failed to verify snapshot [%v]", name)
	}
	if info.State != snapshotStateSuccess {
		return errors.Errorf("snapshot [%v] finished in state [%v] with %v shard failures", name, info.State, len(info.Failures))
	}
	log.Infof("snapshot [%v] complete, %v indices captured", name, len(info.Indices))

	req := &elastic.SnapshotRestoreRequest{
		Indices: strings.Join(indices, ","),
	}
	if !m.rename.IsIdentity() {
		req.RenamePattern = m.rename.Pattern()
		req.RenameReplacement = m.rename.Replacement()
	}

	log.Infof("restoring snapshot [%v] on target cluster", name)
	if err := m.target.RestoreSnapshot(m.cfg.Repository, name, req); err != nil {
		return errors.Wrapf(err, "restore of snapshot [%v] failed", name)
	}
	log.Infof("restore of snapshot [%v] complete", name)
	return nil
}
