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

// drainable is satisfied by any Executor that holds state beyond its
// queues — AggregationPumpTask and JoinPumpTask hold pane state a purge
// must also empty, while SourceTask/SimplePumpTask/SinkTask hold none.
type drainable interface {
	Drain() int
}

// Purge empties every queue and every drainable executor's pane state in
// the current view, under the same pipeline-update write-lock
// UpdatePipeline uses, so no worker observes a half-drained view. It
// reports the total rows/panes dropped. A purge.Purger calls this on a
// memstate transition to Critical.
func (p *Pool) Purge() int {
	p.pipelineMu.Lock()
	defer p.pipelineMu.Unlock()

	if p.view == nil {
		return 0
	}

	dropped := 0
	for _, q := range p.view.Queues {
		dropped += q.Drain()
	}
	for _, exec := range p.view.Executors {
		if d, ok := exec.(drainable); ok {
			dropped += d.Drain()
		}
	}
	return dropped
}
