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
	"time"

	"github.com/springql-go/springql/metrics"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/taskgraph"
)

// runGenericWorker executes whatever task series the scheduler hands out —
// any non-source task (pump or sink) — until Stop is called.
func (p *Pool) runGenericWorker(ready <-chan struct{}) {
	p.setupWG.Done()
	<-ready
	defer p.stopWG.Done()

	for {
		select {
		case <-p.stop:
			return
		default:
		}
		p.genericCycle()
	}
}

func (p *Pool) genericCycle() {
	view := p.currentView()
	if view == nil || view.Graph == nil {
		time.Sleep(p.cfg.SleepNoRow)
		return
	}

	series := p.currentScheduler().NextTaskSeries(view.Graph, p.metrics)
	if len(series) == 0 {
		time.Sleep(p.cfg.SleepNoRow)
		return
	}

	for _, id := range series {
		if !p.tryAcquire(id) {
			// Another worker already owns this node this instant; the
			// task graph makes a pump a single node, so back off rather
			// than run it concurrently.
			return
		}
		ran := p.executeTask(context.Background(), view, id)
		p.release(id)
		if !ran {
			return
		}
	}
}

// executeTask runs one task's Execute, folds the resulting queue deltas into
// PerformanceMetrics, and reports whether the series should continue to its
// next task.
func (p *Pool) executeTask(ctx context.Context, view *PipelineView, id taskgraph.TaskID) bool {
	exec, ok := view.Executors[id]
	if !ok {
		return false
	}

	inQueues := view.Graph.UpstreamQueues(id)
	outQueues := view.Graph.DownstreamQueues(id)
	beforeIn := snapshot(view, inQueues)
	beforeOut := snapshot(view, outQueues)

	start := time.Now()
	_, err := exec.Execute(ctx)
	elapsed := time.Since(start)

	if err != nil {
		p.reportError(id, err)
		kind := rterr.KindOf(err)
		if rterr.IsTransient(kind) {
			// Covers both InputTimeout from a stalled internal queue and
			// ForeignSourceTimeout from an idle foreign reader: either way
			// this bounds busy-spinning on an idle tick.
			time.Sleep(p.cfg.SleepNoRow)
		}
		return rterr.IsTransient(kind)
	}

	afterIn := snapshot(view, inQueues)
	afterOut := snapshot(view, outQueues)

	update := metrics.Update{
		TaskID:        string(id),
		ExecutionTime: elapsed,
	}
	for qid, before := range beforeIn {
		after := afterIn[qid]
		update.BytesConsumed += int64(before.bytes - after.bytes)
		update.InQueues = append(update.InQueues, metrics.QueueDelta{
			QueueID: string(qid), NumRows: int64(after.rows), NumBytes: int64(after.bytes),
		})
	}
	for qid, before := range beforeOut {
		after := afterOut[qid]
		update.BytesEmitted += int64(after.bytes - before.bytes)
		update.OutQueues = append(update.OutQueues, metrics.QueueDelta{
			QueueID: string(qid), NumRows: int64(after.rows), NumBytes: int64(after.bytes),
		})
	}

	p.metrics.Apply(update)
	return true
}

type queueSize struct{ rows, bytes int }

func snapshot(view *PipelineView, ids []taskgraph.QueueID) map[taskgraph.QueueID]queueSize {
	out := make(map[taskgraph.QueueID]queueSize, len(ids))
	for _, id := range ids {
		q, ok := view.Queues[id]
		if !ok {
			continue
		}
		rows, bytes := q.Stats()
		out[id] = queueSize{rows: rows, bytes: bytes}
	}
	return out
}
