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

// Package worker runs the task graph: generic workers drain any non-source
// task series the scheduler hands out, source workers repeatedly pull from
// foreign readers. A pipeline-update lock lets Pool swap the active task
// graph without tearing down the goroutines reading it.
package worker

import (
	"sync"
	"time"

	"github.com/springql-go/springql/memstate"
	"github.com/springql-go/springql/metrics"
	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/scheduler"
	"github.com/springql-go/springql/task"
	"github.com/springql-go/springql/taskgraph"
)

// PipelineView is the immutable snapshot a worker reads on each cycle: the
// task graph, the executor bound to each task, and the queue handle bound
// to each queue id. Pool swaps this pointer wholesale on reconfiguration
// rather than mutating it in place, so a worker holding an old view never
// observes a half-updated graph.
type PipelineView struct {
	Graph     *taskgraph.Graph
	Executors map[taskgraph.TaskID]task.Executor
	Queues    map[taskgraph.QueueID]queue.Stats
}

// Config holds the worker counts and idle-sleep duration from spec.md §6's
// "worker" table.
type Config struct {
	NumGeneric int
	NumSource  int
	SleepNoRow time.Duration
}

// Pool owns the generic and source worker goroutines. Each worker goroutine
// applies its own task executions to PerformanceMetrics, whose write lock
// serializes those Apply calls. Pool only reads the memory state machine;
// the Engine's reporting loop is what calls memstate.Machine.Update.
type Pool struct {
	cfg Config

	pipelineMu sync.RWMutex
	view       *PipelineView

	metrics  *metrics.PerformanceMetrics
	memstate *memstate.Machine

	flowEfficient  scheduler.FlowEfficientScheduler
	memoryReducing scheduler.MemoryReducingScheduler

	runningMu sync.Mutex
	running   map[taskgraph.TaskID]bool

	setupWG sync.WaitGroup
	stopWG  sync.WaitGroup
	stop    chan struct{}

	onError func(taskgraph.TaskID, error)
}

// New creates a Pool bound to an initial view, metrics owner, and memory
// state machine. onError, if non-nil, is called with every error an
// Executor.Execute call returns (transient or fatal) for logging; it must
// not block.
func New(cfg Config, view *PipelineView, m *metrics.PerformanceMetrics, ms *memstate.Machine, onError func(taskgraph.TaskID, error)) *Pool {
	return &Pool{
		cfg:      cfg,
		view:     view,
		metrics:  m,
		memstate: ms,
		running:  make(map[taskgraph.TaskID]bool),
		onError:  onError,
	}
}

// Start launches every worker goroutine and blocks until all of them have
// registered at the setup barrier — mirroring the teacher's done-channel
// goroutine lifecycle (stream.Stream.Start/Stop), generalized from one
// fixed goroutine to a configurable pool.
func (p *Pool) Start() {
	p.stop = make(chan struct{})
	total := p.cfg.NumGeneric + p.cfg.NumSource
	p.setupWG.Add(total)
	p.stopWG.Add(total)

	ready := make(chan struct{})
	go func() {
		p.setupWG.Wait()
		close(ready)
	}()

	for i := 0; i < p.cfg.NumGeneric; i++ {
		go p.runGenericWorker(ready)
	}
	for i := 0; i < p.cfg.NumSource; i++ {
		go p.runSourceWorker(ready)
	}

	<-ready
}

// Stop signals every worker to return after it finishes the task series (or
// single source task) currently in flight, and blocks until all of them
// have — the stop barrier, guaranteeing no worker is mid-execution once
// Stop returns.
func (p *Pool) Stop() {
	close(p.stop)
	p.stopWG.Wait()
}

// UpdatePipeline takes the pipeline-update write-lock, swaps in the new
// view, drains every queue named in the old view, and clears per-task
// "currently running" bookkeeping so no stale lock from a removed task
// lingers. Workers observe the new view on their next cycle.
func (p *Pool) UpdatePipeline(view *PipelineView) {
	p.pipelineMu.Lock()
	defer p.pipelineMu.Unlock()

	old := p.view
	p.view = view

	if old != nil {
		for _, q := range old.Queues {
			q.Drain()
		}
	}

	p.runningMu.Lock()
	p.running = make(map[taskgraph.TaskID]bool)
	p.runningMu.Unlock()
}

func (p *Pool) currentView() *PipelineView {
	p.pipelineMu.RLock()
	defer p.pipelineMu.RUnlock()
	return p.view
}

// currentScheduler picks MemoryReducingScheduler while the memory state
// machine reports Severe (or worse), else the default FlowEfficientScheduler
// — the worker-loop-level policy switch spec.md §4.6 describes.
func (p *Pool) currentScheduler() scheduler.Scheduler {
	switch p.memstate.State() {
	case memstate.Severe, memstate.Critical:
		return p.memoryReducing
	default:
		return p.flowEfficient
	}
}

// tryAcquire marks task id as currently running, reporting false if some
// other worker already holds it. This is the runtime enforcement behind
// spec.md's "one pump executes on at most one worker at a time": the task
// graph shapes a pump as a single node, but with more than one generic
// worker two of them could otherwise race to run the same node the same
// instant.
func (p *Pool) tryAcquire(id taskgraph.TaskID) bool {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	if p.running[id] {
		return false
	}
	p.running[id] = true
	return true
}

func (p *Pool) release(id taskgraph.TaskID) {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	delete(p.running, id)
}

func (p *Pool) reportError(id taskgraph.TaskID, err error) {
	if p.onError != nil {
		p.onError(id, err)
	}
}
