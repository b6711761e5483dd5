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
	"time"

	log "github.com/cihub/seelog"
	"github.com/pkg/errors"

	"infini.sh/migrate/core/elastic"
	"infini.sh/migrate/core/progress"
)

// Tracker polls one asynchronous task until it reaches a terminal state,
// sleeping between polls. It never cancels the task and it puts no cap on
// the task's total runtime, only each poll call carries a timeout.
type Tracker struct {
	target   elastic.API
	interval time.Duration
}

func NewTracker(target elastic.API, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Tracker{target: target, interval: interval}
}

// Await blocks until the task completes and returns it with final counters
// and the failure list. A transport error while polling is returned as-is,
// the task keeps running on the cluster and Await can be re-invoked with
// the same handle.
func (t *Tracker) Await(label string, task *TransferTask) (*TransferTask, error) {
	for {
		status, err := t.target.GetTask(task.TaskId)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to poll task [%v]", task.TaskId)
		}

		// counters move forward only
		if created := status.Task.Status.Created; created > task.Created {
			task.Created = created
		}
		if total := status.Task.Status.Total; total > task.Total {
			task.Total = total
		}
		progress.SetWithTotal("reindex", label, task.Created, task.Total)

		if status.Completed {
			task.Completed = true
			task.Failures = status.Response.Failures
			if len(task.Failures) > 0 {
				log.Warnf("task [%v] for [%v] completed with %v failures", task.TaskId, label, len(task.Failures))
			} else {
				log.Infof("task [%v] for [%v] complete, %v docs", task.TaskId, label, task.Created)
			}
			return task, nil
		}

		log.Debugf("task [%v] for [%v] progress: %v/%v docs", task.TaskId, label, task.Created, task.Total)
		time.Sleep(t.interval)
	}
}
