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

package ioadapter

import (
	"context"

	"github.com/springql-go/springql/rterr"
)

// InMemoryQueue is a named foreign-world boundary queue: a pipeline pumps
// rows out to it instead of a network sink, and an embedding program reads
// them back with Pop/PopNonBlocking, or pushes rows in as a source without
// going through a network reader.
type InMemoryQueue struct {
	name string
	ch   chan []byte
}

// NewInMemoryQueue creates a named in-memory queue with the given channel
// capacity.
func NewInMemoryQueue(name string, capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &InMemoryQueue{name: name, ch: make(chan []byte, capacity)}
}

// Name returns the queue's declared name.
func (q *InMemoryQueue) Name() string {
	return q.name
}

// Push enqueues a row payload for a pipeline SourceTask to read, or for an
// embedder to Pop after a pipeline SinkTask writes it. Blocks if the queue
// is full.
func (q *InMemoryQueue) Push(ctx context.Context, payload []byte) error {
	select {
	case q.ch <- payload:
		return nil
	case <-ctx.Done():
		return rterr.Wrap(rterr.ForeignSourceTimeout, ctx.Err(), "in-memory queue %q push timed out", q.name)
	}
}

// Pop blocks (bounded by ctx) until a row is available.
func (q *InMemoryQueue) Pop(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-q.ch:
		return payload, nil
	case <-ctx.Done():
		return nil, rterr.Wrap(rterr.ForeignSourceTimeout, ctx.Err(), "in-memory queue %q pop timed out", q.name)
	}
}

// PopNonBlocking returns immediately, reporting false if no row is
// currently queued.
func (q *InMemoryQueue) PopNonBlocking() ([]byte, bool) {
	select {
	case payload := <-q.ch:
		return payload, true
	default:
		return nil, false
	}
}

// Reader adapts the queue to SourceReader.
func (q *InMemoryQueue) Reader() SourceReader { return inMemoryReader{q} }

// Writer adapts the queue to SinkWriter.
func (q *InMemoryQueue) Writer() SinkWriter { return inMemoryWriter{q} }

type inMemoryReader struct{ q *InMemoryQueue }

func (r inMemoryReader) ReadRow(ctx context.Context) ([]byte, error) { return r.q.Pop(ctx) }
func (r inMemoryReader) Close() error                                { return nil }

type inMemoryWriter struct{ q *InMemoryQueue }

func (w inMemoryWriter) WriteRow(ctx context.Context, payload []byte) error {
	return w.q.Push(ctx, payload)
}
func (w inMemoryWriter) Close() error { return nil }
