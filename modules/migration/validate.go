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
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"infini.sh/migrate/core/elastic"
)

// ValidationResult gates the alias cutover, both checks must pass.
type ValidationResult struct {
	DocCountMatch bool
	MappingMatch  bool

	SourceCount int64
	TargetCount int64
	MappingDiff string
}

func (r *ValidationResult) Passed() bool {
	return r.DocCountMatch && r.MappingMatch
}

// Validator compares document counts and mapping structure between the
// source index and its migrated counterpart.
type Validator struct {
	source elastic.API
	target elastic.API
}

func NewValidator(source, target elastic.API) *Validator {
	return &Validator{source: source, target: target}
}

func (v *Validator) Verify(sourceIndex, destIndex string) (*ValidationResult, error) {
	result := &ValidationResult{}

	srcCount, err := v.source.Count(sourceIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count docs in source index [%v]", sourceIndex)
	}
	dstCount, err := v.target.Count(destIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count docs in target index [%v]", destIndex)
	}

	result.SourceCount = srcCount
	result.TargetCount = dstCount
	result.DocCountMatch = srcCount == dstCount
	if result.DocCountMatch {
		log.Infof("doc counts match for [%v]: %v docs", sourceIndex, srcCount)
	} else {
		log.Errorf("doc count mismatch for [%v]: source=%v, target=%v", sourceIndex, srcCount, dstCount)
	}

	srcMapping, err := v.source.GetMapping(sourceIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mapping of source index [%v]", sourceIndex)
	}
	dstMapping, err := v.target.GetMapping(destIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mapping of target index [%v]", destIndex)
	}

	// deep, key-order insensitive comparison
	diff := cmp.Diff(srcMapping, dstMapping)
	result.MappingMatch = diff == ""
	result.MappingDiff = diff
	if result.MappingMatch {
		log.Infof("mappings match for [%v] and [%v]", sourceIndex, destIndex)
	} else {
		log.Errorf("mapping mismatch for [%v] vs [%v]:\n%v", sourceIndex, destIndex, diff)
	}

	return result, nil
}
