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

type Stage string

const (
	StageProvision Stage = "provision"
	StageTransfer  Stage = "transfer"
	StageTrack     Stage = "track"
	StageValidate  Stage = "validate"
	StageCutover   Stage = "cutover"
)

// Outcome is the per-index result handed back to the batch driver, errors
// never escape a descriptor's pipeline any other way.
type Outcome struct {
	Index       string
	Destination string
	Stage       Stage
	Task        *TransferTask
	Validation  *ValidationResult
	Err         error
}

func (o Outcome) Success() bool {
	return o.Err == nil
}

// Pipeline runs one descriptor through its strictly ordered stages:
// provision, transfer, track, validate, cutover. Descriptors share nothing
// mutable, pipelines may run concurrently.
type Pipeline struct {
	source      elastic.API
	provisioner *Provisioner
	reindexer   *Reindexer
	tracker     *Tracker
	validator   *Validator
	cutover     *Cutover
}

func NewPipeline(source, target elastic.API, cfg *config.Config) *Pipeline {
	return &Pipeline{
		source:      source,
		provisioner: NewProvisioner(source, target),
		reindexer:   NewReindexer(source, target, cfg.Source.BasicAuth, cfg.Reindex),
		tracker:     NewTracker(target, cfg.PollInterval()),
		validator:   NewValidator(source, target),
		cutover:     NewCutover(source, target),
	}
}

func (p *Pipeline) fail(outcome Outcome, stage Stage, err error) Outcome {
	outcome.Stage = stage
	outcome.Err = err
	log.Errorf("index [%v] failed at stage [%v]: %v", outcome.Index, stage, err)
	return outcome
}

// Run executes the full remote-reindex pipeline for one descriptor.
func (p *Pipeline) Run(desc IndexDescriptor) (outcome Outcome) {
	outcome = Outcome{Index: desc.Source, Destination: desc.Destination}

	defer func() {
		if r := recover(); r != nil {
			outcome = p.fail(outcome, outcome.Stage, errors.Errorf("unexpected error: %v", r))
		}
	}()

	outcome.Stage = StageProvision
	if _, err := p.provisioner.Provision(desc); err != nil {
		return p.fail(outcome, StageProvision, err)
	}

	outcome.Stage = StageTransfer
	task, err := p.reindexer.Submit(desc)
	if err != nil {
		return p.fail(outcome, StageTransfer, err)
	}
	outcome.Task = task

	outcome.Stage = StageTrack
	if _, err := p.tracker.Await(desc.Source, task); err != nil {
		return p.fail(outcome, StageTrack, err)
	}

	return p.finalize(outcome, desc)
}

// Finalize validates and cuts over one descriptor whose data already landed
// on the target, the snapshot strategy's per-index tail.
func (p *Pipeline) Finalize(desc IndexDescriptor) (outcome Outcome) {
	outcome = Outcome{Index: desc.Source, Destination: desc.Destination}

	defer func() {
		if r := recover(); r != nil {
			outcome = p.fail(outcome, outcome.Stage, errors.Errorf("unexpected error: %v", r))
		}
	}()

	return p.finalize(outcome, desc)
}

func (p *Pipeline) finalize(outcome Outcome, desc IndexDescriptor) Outcome {
	outcome.Stage = StageValidate
	result, err := p.validator.Verify(desc.Source, desc.Destination)
	if err != nil {
		return p.fail(outcome, StageValidate, err)
	}
	outcome.Validation = result
	if !result.Passed() {
		return p.fail(outcome, StageValidate, validationError(desc, result))
	}

	outcome.Stage = StageCutover
	aliases, err := p.source.GetAliases(desc.Source)
	if err != nil {
		return p.fail(outcome, StageCutover, errors.Wrapf(err, "failed to list aliases of [%v]", desc.Source))
	}
	if err := p.cutover.Run(desc.Source, desc.Destination, aliases); err != nil {
		return p.fail(outcome, StageCutover, err)
	}

	log.Infof("index [%v] migrated to [%v]", desc.Source, desc.Destination)
	return outcome
}

func validationError(desc IndexDescriptor, result *ValidationResult) error {
	if !result.DocCountMatch {
		return errors.Errorf("doc count mismatch for [%v]: source=%v, target=%v",
			desc.Source, result.SourceCount, result.TargetCount)
	}
	return errors.Errorf("mapping structure mismatch for [%v] vs [%v]", desc.Source, desc.Destination)
}
