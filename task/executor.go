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

// Package task implements the three runtime executor kinds (source, pump,
// sink) that a worker repeatedly calls Execute on. Each executor reports
// how many rows it produced, or a classified rterr so the worker can decide
// whether to re-schedule, log-and-continue, or treat the pipeline as dead.
package task

import "context"

// Executor is satisfied by SourceTask, PumpTask and SinkTask.
type Executor interface {
	// Execute runs the task once, returning the number of output rows it
	// produced. A non-nil error is always an *rterr.Error; callers should
	// classify it with rterr.KindOf rather than matching on message text.
	Execute(ctx context.Context) (rowsProcessed int, err error)
}
