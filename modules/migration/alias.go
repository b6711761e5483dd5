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

	"infini.sh/migrate/core/elastic"
)

// Cutover moves aliases from the source index to the migrated index. The
// source-side removals run first and tolerate absent aliases so a re-run
// converges, the destination-side additions go out as one batched aliases
// call which the cluster applies atomically. The destination-side add is
// the authoritative completion signal of the move, the two sides are not
// transactional across clusters.
type Cutover struct {
	source elastic.API
	target elastic.API
}

func NewCutover(source, target elastic.API) *Cutover {
	return &Cutover{source: source, target: target}
}

func (c *Cutover) Run(sourceIndex, destIndex string, aliases []string) error {
	if len(aliases) == 0 {
		log.Debugf("no aliases to cut over for [%v]", sourceIndex)
		return nil
	}

	for _, alias := range aliases {
		err := c.source.DeleteAlias(sourceIndex, alias)
		if err != nil {
			if elastic.IsNotFound(err) {
				log.Debugf("alias [%v] already absent from [%v] on source", alias, sourceIndex)
				continue
			}
			return errors.Wrapf(err, "failed to remove alias [%v] from [%v] on source", alias, sourceIndex)
		}
		log.Infof("removed alias [%v] from [%v] on source", alias, sourceIndex)
	}

	req := &elastic.AliasRequest{}
	for _, alias := range aliases {
		req.Actions = append(req.Actions, elastic.AliasAction{
			Add: &elastic.AliasActionBody{Index: destIndex, Alias: alias},
		})
	}
	if err := c.target.UpdateAliases(req); err != nil {
		return errors.Wrapf(err, "failed to add aliases %v to [%v] on target", aliases, destIndex)
	}

	log.Infof("added aliases %v to [%v] on target", aliases, destIndex)
	return nil
}
