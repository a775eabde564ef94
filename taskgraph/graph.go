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

// Package taskgraph is the runtime's task/queue dependency graph: which
// task produces into which queue, and which task consumes from it. No
// graph library is used anywhere in the example pack this runtime was
// grounded on, so the graph is a hand-rolled adjacency list.
package taskgraph

import (
	"slices"

	"github.com/springql-go/springql/rterr"
)

// TaskID names a task (source/pump/sink) within a pipeline.
type TaskID string

// Kind classifies a task for scheduling purposes. Source and WindowPump
// tasks are "generators" (they introduce rows into the flow or release them
// from pane state); WindowPump and Sink tasks are "stoppers" (a scheduled
// series cannot flow through them to a further task in the same series).
type Kind int

const (
	Pump Kind = iota
	Source
	WindowPump
	Sink
)

// QueueID names a row or window queue within a pipeline.
type QueueID string

// edge is one queue's producer/consumer binding.
type edge struct {
	id         QueueID
	upstream   TaskID
	downstream TaskID
}

// Graph is the adjacency-list task/queue multigraph: a task may produce
// into several queues (fan-out to multiple downstream pumps/sinks) and a
// pump may consume from several queues (multi-input join).
type Graph struct {
	tasks  map[TaskID]Kind
	queues map[QueueID]edge

	outEdges map[TaskID][]QueueID // queues a task produces into
	inEdges  map[TaskID][]QueueID // queues a task consumes from
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		tasks:    make(map[TaskID]Kind),
		queues:   make(map[QueueID]edge),
		outEdges: make(map[TaskID][]QueueID),
		inEdges:  make(map[TaskID][]QueueID),
	}
}

// AddTask registers a task of the given kind with no edges yet.
func (g *Graph) AddTask(id TaskID, kind Kind) {
	g.tasks[id] = kind
}

// HasTask reports whether id has been registered.
func (g *Graph) HasTask(id TaskID) bool {
	_, ok := g.tasks[id]
	return ok
}

// KindOf returns the registered kind of id.
func (g *Graph) KindOf(id TaskID) (Kind, bool) {
	k, ok := g.tasks[id]
	return k, ok
}

// AddQueue connects an upstream task's output to a downstream task's input
// through queue id. Both tasks must already be registered.
func (g *Graph) AddQueue(id QueueID, upstream, downstream TaskID) error {
	if !g.HasTask(upstream) {
		return rterr.New(rterr.Sql, "unknown upstream task %q", upstream)
	}
	if !g.HasTask(downstream) {
		return rterr.New(rterr.Sql, "unknown downstream task %q", downstream)
	}
	if _, exists := g.queues[id]; exists {
		return rterr.New(rterr.Sql, "queue %q already registered", id)
	}
	g.queues[id] = edge{id: id, upstream: upstream, downstream: downstream}
	g.outEdges[upstream] = append(g.outEdges[upstream], id)
	g.inEdges[downstream] = append(g.inEdges[downstream], id)
	return nil
}

// DownstreamQueues returns the queues task produces into.
func (g *Graph) DownstreamQueues(task TaskID) []QueueID {
	return g.outEdges[task]
}

// UpstreamQueues returns the queues task consumes from.
func (g *Graph) UpstreamQueues(task TaskID) []QueueID {
	return g.inEdges[task]
}

// UpstreamTask returns the task that produces into queue.
func (g *Graph) UpstreamTask(queue QueueID) (TaskID, bool) {
	e, ok := g.queues[queue]
	return e.upstream, ok
}

// DownstreamTask returns the task that consumes from queue.
func (g *Graph) DownstreamTask(queue QueueID) (TaskID, bool) {
	e, ok := g.queues[queue]
	return e.downstream, ok
}

// Tasks returns every registered task id, in no particular order.
func (g *Graph) Tasks() []TaskID {
	out := make([]TaskID, 0, len(g.tasks))
	for id := range g.tasks {
		out = append(out, id)
	}
	return out
}

// TasksOfKind returns every registered task id of kind, in no particular
// order.
func (g *Graph) TasksOfKind(kind Kind) []TaskID {
	var out []TaskID
	for id, k := range g.tasks {
		if k == kind {
			out = append(out, id)
		}
	}
	return out
}

// DownstreamTasks returns the distinct tasks directly downstream of task.
func (g *Graph) DownstreamTasks(task TaskID) []TaskID {
	seen := make(map[TaskID]struct{})
	var out []TaskID
	for _, q := range g.outEdges[task] {
		d := g.queues[q].downstream
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// RemoveTask drops a task and every queue edge touching it. Used when a
// pipeline is reconfigured (pump/stream dropped).
func (g *Graph) RemoveTask(task TaskID) {
	for _, q := range g.outEdges[task] {
		d := g.queues[q].downstream
		g.inEdges[d] = slices.DeleteFunc(g.inEdges[d], func(x QueueID) bool { return x == q })
		delete(g.queues, q)
	}
	for _, q := range g.inEdges[task] {
		u := g.queues[q].upstream
		g.outEdges[u] = slices.DeleteFunc(g.outEdges[u], func(x QueueID) bool { return x == q })
		delete(g.queues, q)
	}
	delete(g.outEdges, task)
	delete(g.inEdges, task)
	delete(g.tasks, task)
}
