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

package bus

import "github.com/springql-go/springql/memstate"

// Topic names one of the event streams a Bus carries. Grounded on spec.md's
// "events (pipeline update, metrics update, memory-state transition, purge)
// are published on an event bus" — the teacher carries one implicit topic
// (sink results); here that is generalized into several named ones.
type Topic string

const (
	// MetricsUpdated carries a metrics.Update after one task execution.
	MetricsUpdated Topic = "metrics_updated"
	// SummaryReported carries a metrics.Summary on the periodic reporting
	// cadence.
	SummaryReported Topic = "summary_reported"
	// StateTransitioned carries a memstate.Transition whenever the memory
	// state machine changes state.
	StateTransitioned Topic = "state_transitioned"
	// PipelineUpdated carries the new pipeline view after a reconfiguration.
	// Its payload type is left to the publisher/subscriber pair (typically
	// *worker.PipelineView) since bus must not import worker.
	PipelineUpdated Topic = "pipeline_updated"
	// Purged carries a PurgedEvent once a purge cycle has emptied all
	// queues and pane state.
	Purged Topic = "purged"
)

// PurgedEvent is the payload of a Purged event: the memory state the purge
// was triggered from, so subscribers resetting their own counters can log
// what prompted the reset.
type PurgedEvent struct {
	TriggeredFrom memstate.State
}
