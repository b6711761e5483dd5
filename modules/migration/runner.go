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
	"sync"

	log "github.com/cihub/seelog"
	version "github.com/hashicorp/go-version"
	"github.com/pkg/errors"

	"infini.sh/migrate/config"
	"infini.sh/migrate/core/elastic"
	"infini.sh/migrate/core/progress"
	"infini.sh/migrate/modules/cluster"
)

// Summary is the operator-facing result of one run, listing exactly which
// indices migrated cleanly and which failed at which stage.
type Summary struct {
	Outcomes []Outcome
	Objects  []cluster.Outcome
}

// Success reports whether discovery found work and every index reached
// validated-and-cut-over.
func (s *Summary) Success() bool {
	if len(s.Outcomes) == 0 {
		return false
	}
	for _, o := range s.Outcomes {
		if !o.Success() {
			return false
		}
	}
	return true
}

func (s *Summary) Failed() []Outcome {
	failed := []Outcome{}
	for _, o := range s.Outcomes {
		if !o.Success() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Report logs the per-index results.
func (s *Summary) Report() {
	migrated := 0
	for _, o := range s.Outcomes {
		if o.Success() {
			migrated++
			log.Infof("  [%v] -> [%v] ok", o.Index, o.Destination)
		} else {
			log.Errorf("  [%v] -> [%v] failed at %v: %v", o.Index, o.Destination, o.Stage, o.Err)
		}
	}
	log.Infof("migrated %v of %v indices", migrated, len(s.Outcomes))
}

// Runner drives a whole migration run against one cluster pair. It holds no
// state of its own beyond configuration, re-running after a crash converges
// by re-deriving status from cluster state.
type Runner struct {
	cfg    *config.Config
	source *elastic.Client
	target *elastic.Client
	rename *RenameRule
}

func NewRunner(cfg *config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rename, err := NewRenameRule(cfg.Rename.Pattern, cfg.Rename.Replacement)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:    cfg,
		source: elastic.NewClient(cfg.Source),
		target: elastic.NewClient(cfg.Target),
		rename: rename,
	}, nil
}

func (r *Runner) discover() ([]IndexDescriptor, error) {
	discovery := NewDiscovery(r.source, r.rename)
	switch {
	case r.cfg.Index != "":
		log.Infof("migrating specific index [%v]", r.cfg.Index)
		return discovery.ListExact(r.cfg.Index), nil
	case r.cfg.Regex != "":
		log.Infof("migrating indices matching regex [%v]", r.cfg.Regex)
		return discovery.ListByPattern(r.cfg.Regex)
	default:
		log.Info("migrating all non-system indices")
		return discovery.ListAll(), nil
	}
}

func checkVersionCompatibility(source, target elastic.API) error {
	srcRaw, err := source.ClusterVersion()
	if err != nil {
		return errors.Wrap(err, "failed to read source cluster version")
	}
	dstRaw, err := target.ClusterVersion()
	if err != nil {
		return errors.Wrap(err, "failed to read target cluster version")
	}

	src, err := version.NewVersion(srcRaw)
	if err != nil {
		return errors.Wrapf(err, "unparseable source version [%v]", srcRaw)
	}
	dst, err := version.NewVersion(dstRaw)
	if err != nil {
		return errors.Wrapf(err, "unparseable target version [%v]", dstRaw)
	}

	ss, ds := src.Segments(), dst.Segments()
	if ss[0] != ds[0] || ss[1] != ds[1] {
		return errors.Errorf("version mismatch: source %v vs target %v", srcRaw, dstRaw)
	}
	log.Infof("version compatibility ok: source %v, target %v", srcRaw, dstRaw)
	return nil
}

// Run executes one full migration. The returned error covers run-level
// aborts (unreachable cluster, nothing to migrate, batch snapshot failure),
// per-index failures land in the summary instead.
func (r *Runner) Run() (*Summary, error) {
	summary := &Summary{}

	if !r.cfg.SkipVersionCheck {
		if err := checkVersionCompatibility(r.source, r.target); err != nil {
			return nil, err
		}
	}

	descriptors, err := r.discover()
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, errors.New("no matching indices found")
	}
	log.Infof("%v indices in scope", len(descriptors))

	if !r.cfg.SkipClusterObjects {
		summary.Objects = cluster.SyncAll(r.source, r.target)
	}

	progress.Enable(r.cfg.ShowProgress)
	progress.Start()
	defer progress.Stop()

	pipeline := NewPipeline(r.source, r.target, r.cfg)

	if r.cfg.Mode == config.ModeSnapshot {
		snapshot := NewSnapshotMigrator(r.source, r.target, r.cfg.Snapshot, r.rename)
		if err := snapshot.Run(descriptors); err != nil {
			// no per-index granularity in this strategy
			return nil, err
		}
		summary.Outcomes = runPool(r.cfg.Workers, descriptors, pipeline.Finalize)
		return summary, nil
	}

	summary.Outcomes = runPool(r.cfg.Workers, descriptors, pipeline.Run)
	return summary, nil
}

// runPool fans descriptors out over a bounded set of workers, each
// descriptor's pipeline is self-contained so workers share nothing.
func runPool(workers int, descriptors []IndexDescriptor, fn func(IndexDescriptor) Outcome) []Outcome {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(descriptors) {
		workers = len(descriptors)
	}

	work := make(chan IndexDescriptor, len(descriptors))
	for _, desc := range descriptors {
		work <- desc
	}
	close(work)

	results := make(chan Outcome, len(descriptors))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for desc := range work {
				log.Debugf("worker %v processing index [%v]", worker, desc.Source)
				results <- fn(desc)
			}
		}(i)
	}
	wg.Wait()
	close(results)

	outcomes := make([]Outcome, 0, len(descriptors))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
