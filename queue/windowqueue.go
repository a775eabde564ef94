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

package queue

import (
	"sync"

	"github.com/springql-go/springql/row"
)

// WindowQueue splits into a waiting FIFO of not-yet-dispatched rows and the
// window operator's own pane state (owned separately, by window.AggrWindow
// or window.JoinWindow). The queue itself only tracks the waiting side; the
// task executor dispatches waiting rows into the window operator one at a
// time.
type WindowQueue struct {
	id                 ID
	upstreamTask       string
	downstreamTask     string
	upstreamStreamName string

	mu       sync.Mutex
	waiting  []*row.Row
	numBytes int
}

// NewWindowQueue creates an empty WindowQueue.
func NewWindowQueue(id ID, upstreamTask, downstreamTask, upstreamStreamName string) *WindowQueue {
	return &WindowQueue{
		id:                 id,
		upstreamTask:       upstreamTask,
		downstreamTask:     downstreamTask,
		upstreamStreamName: upstreamStreamName,
	}
}

func (q *WindowQueue) ID() ID                     { return q.id }
func (q *WindowQueue) UpstreamTask() string       { return q.upstreamTask }
func (q *WindowQueue) DownstreamTask() string     { return q.downstreamTask }
func (q *WindowQueue) UpstreamStreamName() string { return q.upstreamStreamName }

// Put appends r to the waiting FIFO.
func (q *WindowQueue) Put(r *row.Row) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waiting = append(q.waiting, r)
	q.numBytes += r.MemSize()
}

// Dispatch removes and returns the row at the head of the waiting FIFO, for
// the task executor to feed into the window operator.
func (q *WindowQueue) Dispatch() (*row.Row, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiting) == 0 {
		return nil, false
	}
	r := q.waiting[0]
	q.waiting = q.waiting[1:]
	q.numBytes -= r.MemSize()
	return r, true
}

// Stats reports the waiting FIFO's current row count and byte footprint.
// It does not include rows already dispatched into pane state; a window
// operator's own NumBuffered* accessors cover that side separately.
func (q *WindowQueue) Stats() (numRows, numBytes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting), q.numBytes
}

// NumRowsWaiting returns how many rows sit in the waiting FIFO (not yet
// dispatched into pane state).
func (q *WindowQueue) NumRowsWaiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// NumBytesWaiting returns the memory footprint of rows still waiting.
func (q *WindowQueue) NumBytesWaiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.numBytes
}

// Drain empties the waiting FIFO and returns how many rows were dropped.
func (q *WindowQueue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.waiting)
	q.waiting = nil
	q.numBytes = 0
	return n
}
