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

// Package bus is a small typed publish/subscribe event bus. It generalizes
// the teacher's sink-callback-list-plus-bounded-worker-pool idiom
// (stream.Stream's sinks/syncSinks and sinkWorkerPool) from one implicit
// topic into several named ones, each carrying a specific payload type.
package bus

import (
	"sync"

	"github.com/springql-go/springql/logger"
	"github.com/springql-go/springql/memstate"
	"github.com/springql-go/springql/metrics"
)

// Handler receives one event published on a topic.
type Handler func(event any)

// Bus dispatches published events to every handler subscribed to the same
// topic. Publish dispatches through a bounded worker pool, falling back to
// direct synchronous execution when the pool is full, matching the
// teacher's submitSinkTask degraded-handling path. PublishSync always runs
// handlers synchronously and in order, for subscribers (like a purge
// trigger) that must react before the publisher proceeds.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]Handler

	pool chan func()
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Bus with a worker pool of the given size. A non-positive
// size falls back to 8, matching the teacher's startSinkWorkerPool default.
func New(workerCount int) *Bus {
	if workerCount <= 0 {
		workerCount = 8
	}
	b := &Bus{
		subs: make(map[Topic][]Handler),
		pool: make(chan func(), workerCount*4),
		done: make(chan struct{}),
	}
	b.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go b.runWorker()
	}
	return b
}

func (b *Bus) runWorker() {
	defer b.wg.Done()
	for {
		select {
		case task := <-b.pool:
			task()
		case <-b.done:
			return
		}
	}
}

// Close stops the worker pool and waits for in-flight handlers to return.
func (b *Bus) Close() {
	close(b.done)
	b.wg.Wait()
}

// Subscribe registers h to run whenever an event is published on topic.
// Subscribers accumulate for the lifetime of the Bus; there is no Unsubscribe
// since every subscriber in this runtime (metrics owner, memory state
// machine, purger, pipeline) lives as long as the Bus itself.
func (b *Bus) Subscribe(topic Topic, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

func (b *Bus) handlersFor(topic Topic) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.subs[topic]))
	copy(hs, b.subs[topic])
	return hs
}

// Publish dispatches event to every subscriber of topic, submitting each
// call to the worker pool and recovering any handler panic so one faulty
// subscriber cannot take down the publisher.
func (b *Bus) Publish(topic Topic, event any) {
	for _, h := range b.handlersFor(topic) {
		b.submit(h, event)
	}
}

func (b *Bus) submit(h Handler, event any) {
	task := func() { b.safeCall(h, event) }
	select {
	case b.pool <- task:
	default:
		// Pool is full: run inline rather than drop the event.
		task()
	}
}

// PublishSync dispatches event to every subscriber of topic synchronously,
// in subscription order, each still guarded by panic recovery. Use this for
// topics a downstream action must observe before Publish's caller proceeds —
// StateTransitioned is the primary example, since the purger must see a
// transition to Critical before more rows are admitted.
func (b *Bus) PublishSync(topic Topic, event any) {
	for _, h := range b.handlersFor(topic) {
		b.safeCall(h, event)
	}
}

func (b *Bus) safeCall(h Handler, event any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("bus: handler for event panicked: %v", r)
		}
	}()
	h(event)
}

// The typed Publish*/Subscribe* pairs below save callers a type assertion.
// PipelineUpdated has no typed pair here since its payload (*worker.
// PipelineView) lives in a package that must not be imported by bus.

func (b *Bus) PublishMetricsUpdated(u metrics.Update) { b.Publish(MetricsUpdated, u) }

func (b *Bus) SubscribeMetricsUpdated(h func(metrics.Update)) {
	b.Subscribe(MetricsUpdated, func(e any) { h(e.(metrics.Update)) })
}

func (b *Bus) PublishSummaryReported(s metrics.Summary) { b.Publish(SummaryReported, s) }

func (b *Bus) SubscribeSummaryReported(h func(metrics.Summary)) {
	b.Subscribe(SummaryReported, func(e any) { h(e.(metrics.Summary)) })
}

func (b *Bus) PublishStateTransitioned(t memstate.Transition) {
	b.PublishSync(StateTransitioned, t)
}

func (b *Bus) SubscribeStateTransitioned(h func(memstate.Transition)) {
	b.Subscribe(StateTransitioned, func(e any) { h(e.(memstate.Transition)) })
}

func (b *Bus) PublishPurged(e PurgedEvent) { b.Publish(Purged, e) }

func (b *Bus) SubscribePurged(h func(PurgedEvent)) {
	b.Subscribe(Purged, func(e any) { h(e.(PurgedEvent)) })
}
