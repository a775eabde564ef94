/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package purge implements the last-resort memory release valve: on a
// transition to Critical, drop every buffered row and pane rather than
// let the pipeline run out of memory.
package purge

import (
	"github.com/springql-go/springql/bus"
	"github.com/springql-go/springql/logger"
	"github.com/springql-go/springql/memstate"
)

// Pool is the subset of worker.Pool a Purger needs: the ability to empty
// every queue and pane under the pipeline-update write-lock. Declared here,
// narrowly, rather than importing worker.Pool directly, so a Purger can be
// tested against a fake without pulling in the whole worker package.
type Pool interface {
	Purge() int
}

// Purger subscribes to memory-state transitions and drains the pipeline
// the instant one crosses into Critical.
//
// Grounded on stream/persistence.go's resource-draining Stop/GetStats
// idiom, generalized from "flush buffered state to disk on shutdown" to
// "drop buffered state in place on memory pressure, without shutting
// anything down".
type Purger struct {
	pool Pool
	bus  *bus.Bus
}

// New creates a Purger bound to pool and bus. Call Start to begin
// listening.
func New(pool Pool, b *bus.Bus) *Purger {
	return &Purger{pool: pool, bus: b}
}

// Start subscribes to StateTransitioned. Subscription runs via
// Bus.PublishSync on that topic, so the purge completes before the
// publisher (the Engine's reporting loop) takes its next memory-state
// reading.
func (p *Purger) Start() {
	p.bus.SubscribeStateTransitioned(p.onTransition)
}

func (p *Purger) onTransition(tr memstate.Transition) {
	if tr.To != memstate.Critical {
		return
	}
	dropped := p.pool.Purge()
	logger.Warn("purge: dropped %d buffered rows/panes after transition to Critical (from %s, %.1f%% of upper limit)", dropped, tr.From, tr.PercentUsed)
	p.bus.PublishPurged(bus.PurgedEvent{TriggeredFrom: tr.To})
}
