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

package progress

import (
	"fmt"
	"sync"

	"gopkg.in/cheggaaa/pb.v1"
)

var statsLock sync.Mutex
var barsMap = map[string]*pb.ProgressBar{}
var statsMap = map[string]int64{}
var pool *pb.Pool
var started bool
var enabled bool

// Enable switches terminal progress bars on for this run, off by default so
// piped output stays clean.
func Enable(on bool) {
	statsLock.Lock()
	defer statsLock.Unlock()
	enabled = on
}

func ShowProgress() bool {
	return enabled
}

func RegisterBar(category, key string, total int64) {
	statsKey := fmt.Sprintf("[%v][%v]:", category, key)
	statsLock.Lock()
	defer statsLock.Unlock()

	statsMap[statsKey] = 0
	if enabled {
		bar := pb.New64(total).Prefix(statsKey)
		barsMap[statsKey] = bar
		if started && pool != nil {
			pool.Add(bar)
		}
	}
}

// SetWithTotal moves the bar to an absolute position, counters reported by
// task polling are cumulative so the bar is never advanced by deltas.
func SetWithTotal(category, key string, count, total int64) {
	if total <= 0 {
		return
	}

	statsKey := fmt.Sprintf("[%v][%v]:", category, key)
	statsLock.Lock()
	defer statsLock.Unlock()

	if prev, ok := statsMap[statsKey]; ok && count < prev {
		count = prev
	}
	statsMap[statsKey] = count

	if !enabled {
		return
	}

	bar, ok := barsMap[statsKey]
	if !ok {
		bar = pb.New64(total).Prefix(statsKey)
		barsMap[statsKey] = bar
		if started && pool != nil {
			pool.Add(bar)
		}
	}
	if bar.Total != total {
		bar.SetTotal64(total)
	}
	bar.Set64(count)
	bar.Update()
}

func Start() {
	if !ShowProgress() {
		return
	}

	statsLock.Lock()
	defer statsLock.Unlock()

	if !started {
		bars := []*pb.ProgressBar{}
		for _, v := range barsMap {
			bars = append(bars, v)
		}
		var err error
		pool, err = pb.StartPool(bars...)
		if err != nil {
			panic(err)
		}
		started = true
	}
}

func Stop() {
	if !ShowProgress() {
		return
	}

	statsLock.Lock()
	defer statsLock.Unlock()

	for k, v := range statsMap {
		bar, ok := barsMap[k]
		if !ok {
			continue
		}
		if bar.Total == v && !bar.IsFinished() {
			bar.Finish()
		}
	}
	if pool != nil {
		pool.Stop()
	}
	started = false
}
