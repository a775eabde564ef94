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

package scheduler

import (
	"github.com/springql-go/springql/metrics"
	"github.com/springql-go/springql/taskgraph"
)

// MemoryReducingScheduler is the worker loop's fallback policy when
// memstate.Machine reports Severe: instead of FlowEfficientScheduler's fair
// weighted pick, it always runs the collector whose task has the
// lowest (most negative) rolling byte gain first — the task series most
// actively shrinking queued memory rather than growing it — using the same
// PerformanceMetrics snapshot FlowEfficientScheduler reads.
type MemoryReducingScheduler struct {
	flowEfficient FlowEfficientScheduler
}

func (s MemoryReducingScheduler) NextTaskSeries(graph *taskgraph.Graph, m *metrics.PerformanceMetrics) []taskgraph.TaskID {
	collectors := s.flowEfficient.collectors(graph)
	if len(collectors) == 0 {
		return nil
	}

	best := collectors[0]
	bestGain, bestOK := m.TaskSnapshot(string(best))
	for _, c := range collectors[1:] {
		ts, ok := m.TaskSnapshot(string(c))
		if !ok {
			continue
		}
		if !bestOK || ts.RollingByteGain < bestGain.RollingByteGain {
			best = c
			bestGain = ts
			bestOK = true
		}
	}
	return collectorToStoppersDFS(best, graph)
}
