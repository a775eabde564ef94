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

// Package metrics tracks per-task and per-queue counters across task
// executions: rolling execution time and byte gain per task, current size
// per queue. A worker applies one MetricsUpdateByTaskExecution after every
// Executor.Execute call; a separate reporter periodically snapshots the
// whole structure into a summary the memory-state machine consumes.
package metrics

import (
	"sync"
	"time"
)

// TaskStats is one task's rolling performance figures.
type TaskStats struct {
	ExecutionCount  int64
	RollingExecTime time.Duration
	RollingByteGain float64 // bytes emitted - bytes consumed, per second
}

// QueueStats is one queue's current size, reported by a row queue or a
// window queue's waiting FIFO (plus any pane state it has bytes for).
type QueueStats struct {
	NumRows  int64
	NumBytes int64
}

// PerformanceMetrics is a process-wide, sharded counter set. Reads take an
// RLock and return a copied snapshot, so concurrent readers never block each
// other; writes take the write lock, which serializes the Apply calls that
// every worker goroutine makes after its task executions.
//
// This mirrors the teacher's StatsCollector (atomic counters behind no
// lock at all, since it only ever tracked three scalar totals); here the
// counter set is keyed by task/queue id and needs a map, so a RWMutex
// guards the maps instead of atomics guarding individual fields.
type PerformanceMetrics struct {
	mu     sync.RWMutex
	tasks  map[string]*TaskStats
	queues map[string]*QueueStats
}

// New creates an empty PerformanceMetrics.
func New() *PerformanceMetrics {
	return &PerformanceMetrics{
		tasks:  make(map[string]*TaskStats),
		queues: make(map[string]*QueueStats),
	}
}

// QueueDelta describes one queue's observed size right after a task
// execution touched it.
type QueueDelta struct {
	QueueID  string
	NumRows  int64
	NumBytes int64
}

// Update is a MetricsUpdateByTaskExecution record: the worker builds one of
// these after every Executor.Execute call and applies it atomically.
type Update struct {
	TaskID       string
	ExecutionTime time.Duration
	BytesConsumed int64
	BytesEmitted  int64
	InQueues      []QueueDelta
	OutQueues     []QueueDelta
}

// Apply folds one task-execution update into the counters. It is the single
// write path into PerformanceMetrics; each worker goroutine calls it after a
// task execution, and the write lock keeps concurrent Applies from racing.
func (m *PerformanceMetrics) Apply(u Update) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[u.TaskID]
	if !ok {
		t = &TaskStats{}
		m.tasks[u.TaskID] = t
	}
	t.ExecutionCount++
	t.RollingExecTime = rollingAvgDuration(t.RollingExecTime, t.ExecutionCount, u.ExecutionTime)

	if u.ExecutionTime > 0 {
		gain := float64(u.BytesEmitted-u.BytesConsumed) / u.ExecutionTime.Seconds()
		t.RollingByteGain = rollingAvgFloat(t.RollingByteGain, t.ExecutionCount, gain)
	}

	for _, d := range u.InQueues {
		m.setQueue(d)
	}
	for _, d := range u.OutQueues {
		m.setQueue(d)
	}
}

func (m *PerformanceMetrics) setQueue(d QueueDelta) {
	q, ok := m.queues[d.QueueID]
	if !ok {
		q = &QueueStats{}
		m.queues[d.QueueID] = q
	}
	q.NumRows = d.NumRows
	q.NumBytes = d.NumBytes
}

// rollingAvgDuration folds in a new sample using a simple cumulative-average
// update, so no history beyond the running count needs to be retained.
func rollingAvgDuration(prev time.Duration, count int64, sample time.Duration) time.Duration {
	if count <= 1 {
		return sample
	}
	return prev + (sample-prev)/time.Duration(count)
}

func rollingAvgFloat(prev float64, count int64, sample float64) float64 {
	if count <= 1 {
		return sample
	}
	return prev + (sample-prev)/float64(count)
}

// TaskSnapshot returns a copy of one task's stats, or false if no update has
// ever been applied for it.
func (m *PerformanceMetrics) TaskSnapshot(taskID string) (TaskStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return TaskStats{}, false
	}
	return *t, true
}

// QueueSnapshot returns a copy of one queue's stats, or false if never set.
func (m *PerformanceMetrics) QueueSnapshot(queueID string) (QueueStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.queues[queueID]
	if !ok {
		return QueueStats{}, false
	}
	return *q, true
}

// TotalQueueBytes sums NumBytes across every tracked queue — the figure a
// ReportMetricsSummary publishes for the memory-state machine to classify.
func (m *PerformanceMetrics) TotalQueueBytes() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, q := range m.queues {
		total += q.NumBytes
	}
	return total
}

// Summary is the payload of a ReportMetricsSummary event.
type Summary struct {
	QueueTotalBytes int64
}

// Snapshot builds the current Summary.
func (m *PerformanceMetrics) Snapshot() Summary {
	return Summary{QueueTotalBytes: m.TotalQueueBytes()}
}
