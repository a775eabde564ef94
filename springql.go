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

// Package springql is the runtime's top-level facade: construct a pipeline
// through Pipeline()'s six commands, Start() to run it, Stop() to tear it
// down. There is no SQL text entry point — the parser that would turn SQL
// into these construction commands is out of scope, so callers already
// holding a compiled pipeline.QueryPlan call Pipeline()'s methods directly.
package springql

import (
	"sync"
	"time"

	"github.com/springql-go/springql/bus"
	"github.com/springql-go/springql/config"
	"github.com/springql-go/springql/logger"
	"github.com/springql-go/springql/memstate"
	"github.com/springql-go/springql/metrics"
	"github.com/springql-go/springql/pipeline"
	"github.com/springql-go/springql/purge"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/taskgraph"
	"github.com/springql-go/springql/worker"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogLevel sets the global default logger's level.
func WithLogLevel(level logger.Level) Option {
	return func(e *Engine) { logger.GetDefault().SetLevel(level) }
}

// WithDiscardLog disables log output entirely.
func WithDiscardLog() Option {
	return func(e *Engine) { logger.SetDefault(logger.NewDiscardLogger()) }
}

// Engine ties every package together into a runnable streaming SQL runtime:
// a Pipeline to build against, a worker.Pool to run the built task graph, a
// metrics owner and memory state machine feeding a purge.Purger through the
// event bus.
type Engine struct {
	cfg config.Config

	pipeline *pipeline.Pipeline
	metrics  *metrics.PerformanceMetrics
	memstate *memstate.Machine
	bus      *bus.Bus
	purger   *purge.Purger
	pool     *worker.Pool

	mu       sync.Mutex
	started  bool
	stopCh   chan struct{}
	loopWG   sync.WaitGroup
}

// New creates an Engine configured by cfg. The pipeline starts empty: call
// Pipeline() to register streams, readers, writers and pumps before Start.
func New(cfg config.Config, options ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		pipeline: pipeline.New(),
		metrics:  metrics.New(),
		bus:      bus.New(0),
	}
	e.memstate = memstate.NewMachine(memstate.Thresholds{
		UpperLimitBytes:  int64(cfg.Memory.UpperLimitBytes),
		ModerateToSevere: float64(cfg.Memory.ModerateToSeverePercent),
		SevereToCritical: float64(cfg.Memory.SevereToCriticalPercent),
		CriticalToSevere: float64(cfg.Memory.CriticalToSeverePercent),
		SevereToModerate: float64(cfg.Memory.SevereToModeratePercent),
	})
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Pipeline returns the Engine's pipeline registry, for the six construction
// commands. Safe to call before Start (to build the initial pipeline) or
// after (to register further streams/pumps, followed by Rebuild).
func (e *Engine) Pipeline() *pipeline.Pipeline {
	return e.pipeline
}

// Bus returns the Engine's event bus, for external subscribers (a web
// console reporter, test assertions, ...) to observe SummaryReported,
// StateTransitioned and Purged events. The Engine does not publish
// MetricsUpdated.
func (e *Engine) Bus() *bus.Bus {
	return e.bus
}

// Start builds the current pipeline registry into a task graph and launches
// the worker pool, the purger, and the periodic memory/metrics reporting
// loops. Start may only be called once per Engine.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return rterr.New(rterr.InvalidOption, "engine already started")
	}

	view, err := e.pipeline.Build()
	if err != nil {
		return err
	}

	e.pool = worker.New(worker.Config{
		NumGeneric: int(e.cfg.Worker.NGenericWorkerThreads),
		NumSource:  int(e.cfg.Worker.NSourceWorkerThreads),
		SleepNoRow: e.cfg.Worker.SleepNoRow(),
	}, view, e.metrics, e.memstate, e.onExecuteError)

	e.purger = purge.New(e.pool, e.bus)
	e.purger.Start()

	e.stopCh = make(chan struct{})
	e.loopWG.Add(1)
	go e.runReportingLoop()

	e.pool.Start()
	e.started = true
	return nil
}

// Rebuild re-assembles the pipeline registry into a fresh task graph and
// swaps it into the running worker pool, for registering new streams/pumps
// after Start without tearing down running workers.
func (e *Engine) Rebuild() error {
	view, err := e.pipeline.Build()
	if err != nil {
		return err
	}
	e.pool.UpdatePipeline(view)
	return nil
}

// Stop halts the reporting loop and every worker goroutine, then closes the
// event bus. Stop blocks until everything has fully quiesced.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	close(e.stopCh)
	e.loopWG.Wait()
	e.pool.Stop()
	e.bus.Close()
	e.started = false
}

// onExecuteError is the worker pool's onError hook: idle-condition timeouts
// log at Trace, transient-but-unhealthy I/O/resource errors log at Warn,
// everything else at Error.
func (e *Engine) onExecuteError(id taskgraph.TaskID, err error) {
	switch rterr.KindOf(err) {
	case rterr.ForeignSourceTimeout, rterr.InputTimeout:
		logger.Trace("task %s: %s", id, err)
	case rterr.ForeignIo, rterr.Unavailable:
		logger.Warn("task %s: %s", id, err)
	default:
		logger.Error("task %s: %s", id, err)
	}
}

// runReportingLoop periodically snapshots queue byte usage into the memory
// state machine (publishing any resulting transition synchronously, so a
// Critical transition's purge completes before the next tick) and reports
// the performance summary, on the intervals spec.md's "memory" config
// section names.
func (e *Engine) runReportingLoop() {
	defer e.loopWG.Done()

	transitionInterval := e.cfg.Memory.TransitionInterval()
	summaryInterval := e.cfg.Memory.SummaryReportInterval()
	if transitionInterval <= 0 {
		transitionInterval = 10 * time.Millisecond
	}
	if summaryInterval <= 0 {
		summaryInterval = 10 * time.Millisecond
	}

	transitionTicker := time.NewTicker(transitionInterval)
	summaryTicker := time.NewTicker(summaryInterval)
	defer transitionTicker.Stop()
	defer summaryTicker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-transitionTicker.C:
			for _, tr := range e.memstate.Update(e.metrics.TotalQueueBytes()) {
				e.bus.PublishStateTransitioned(tr)
			}
		case <-summaryTicker.C:
			e.bus.PublishSummaryReported(e.metrics.Snapshot())
		}
	}
}

// Description summarizes the running pipeline's shape, for inspection
// without reaching into Pipeline()/Bus() internals.
type Description struct {
	Version         int
	MemoryState     memstate.State
	QueueTotalBytes int64
}

// DescribePipeline reports the pipeline's construction version, the current
// memory-pressure state, and total queued bytes across every queue.
func (e *Engine) DescribePipeline() Description {
	return Description{
		Version:         e.pipeline.Version(),
		MemoryState:     e.memstate.State(),
		QueueTotalBytes: e.metrics.TotalQueueBytes(),
	}
}
