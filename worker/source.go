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

package worker

import (
	"context"
	"slices"
	"time"

	"github.com/springql-go/springql/taskgraph"
)

// runSourceWorker repeatedly executes source tasks only, kept on separate
// goroutines from pumps/sinks so a blocking foreign read never starves
// internal task work.
func (p *Pool) runSourceWorker(ready <-chan struct{}) {
	p.setupWG.Done()
	<-ready
	defer p.stopWG.Done()

	idx := 0
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		idx = p.sourceCycle(idx)
	}
}

// sourceCycle runs one source task, round-robining across every registered
// source task by index so a pool of several source workers spreads across
// all of them rather than piling onto the first.
func (p *Pool) sourceCycle(idx int) int {
	view := p.currentView()
	if view == nil || view.Graph == nil {
		time.Sleep(p.cfg.SleepNoRow)
		return idx
	}

	sources := view.Graph.TasksOfKind(taskgraph.Source)
	if len(sources) == 0 {
		time.Sleep(p.cfg.SleepNoRow)
		return idx
	}
	slices.Sort(sources)

	id := sources[idx%len(sources)]
	if p.tryAcquire(id) {
		p.executeTask(context.Background(), view, id)
		p.release(id)
	}
	return idx + 1
}
