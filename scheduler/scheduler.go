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

// Package scheduler picks, for each worker cycle, the next series of tasks
// to run consecutively. Package scheduler never executes a task itself; it
// only returns the series for a worker to hand to task.Executor calls.
package scheduler

import (
	"github.com/springql-go/springql/metrics"
	"github.com/springql-go/springql/taskgraph"
)

// Scheduler decides the next series of tasks a worker should run back to
// back, from a collector task down to the flow stoppers reachable from it.
type Scheduler interface {
	NextTaskSeries(graph *taskgraph.Graph, m *metrics.PerformanceMetrics) []taskgraph.TaskID
}
