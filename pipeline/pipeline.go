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

package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/springql-go/springql/ioadapter"
	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
	"github.com/springql-go/springql/task"
	"github.com/springql-go/springql/taskgraph"
	"github.com/springql-go/springql/window"
	"github.com/springql-go/springql/worker"
)

// Pipeline is the mutable registry the six construction commands populate.
// It carries no task-graph wiring of its own: Build produces a fresh
// worker.PipelineView every time it's called, so a pipeline may be altered
// (new streams, new pumps) and rebuilt without disturbing callers holding an
// older PipelineView, matching the ALTER-free "rebuild and swap" story
// worker.Pool.UpdatePipeline already implements.
type Pipeline struct {
	mu      sync.RWMutex
	version int

	streams map[string]*StreamModel
	pumps   map[string]*PumpModel
	readers map[string]readerBinding // by stream name
	writers map[string][]writerBinding
}

// New creates an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{
		streams: make(map[string]*StreamModel),
		pumps:   make(map[string]*PumpModel),
		readers: make(map[string]readerBinding),
		writers: make(map[string][]writerBinding),
	}
}

// Version reports how many construction commands have successfully
// mutated the pipeline, for DescribePipeline-style reporting.
func (p *Pipeline) Version() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

func (p *Pipeline) addStream(name string, kind StreamKind, shape *row.Shape) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, dup := p.streams[name]; dup {
		return rterr.New(rterr.Sql, "stream %q already exists", name)
	}
	p.streams[name] = &StreamModel{Name: name, Kind: kind, Shape: shape}
	p.version++
	return nil
}

// CreateSourceStream registers a stream that a CreateSourceReader must
// later bind a foreign reader to.
func (p *Pipeline) CreateSourceStream(name string, cols []row.ColumnDef, rowtimeColumn string) error {
	shape, err := row.NewShape(cols, rowtimeColumn)
	if err != nil {
		return err
	}
	return p.addStream(name, SourceStream, shape)
}

// CreateSinkStream registers a stream that one or more CreateSinkWriter
// calls may bind a foreign writer to.
func (p *Pipeline) CreateSinkStream(name string, cols []row.ColumnDef, rowtimeColumn string) error {
	shape, err := row.NewShape(cols, rowtimeColumn)
	if err != nil {
		return err
	}
	return p.addStream(name, SinkStream, shape)
}

// CreateStream registers a stream produced and consumed entirely within the
// pipeline: no foreign reader or writer may bind to it.
func (p *Pipeline) CreateStream(name string, cols []row.ColumnDef, rowtimeColumn string) error {
	shape, err := row.NewShape(cols, rowtimeColumn)
	if err != nil {
		return err
	}
	return p.addStream(name, RegularStream, shape)
}

// CreateSourceReader binds a foreign SourceReader to a previously declared
// SourceStream. Only one reader may be bound per stream.
func (p *Pipeline) CreateSourceReader(name, streamName string, reader ioadapter.SourceReader) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	sm, ok := p.streams[streamName]
	if !ok {
		return rterr.New(rterr.Sql, "source reader %q: stream %q not declared", name, streamName)
	}
	if sm.Kind != SourceStream {
		return rterr.New(rterr.Sql, "source reader %q: stream %q is not a source stream", name, streamName)
	}
	if _, dup := p.readers[streamName]; dup {
		return rterr.New(rterr.Sql, "source stream %q already has a reader bound", streamName)
	}
	p.readers[streamName] = readerBinding{name: name, stream: streamName, reader: reader}
	p.version++
	return nil
}

// CreateSinkWriter binds a foreign SinkWriter to a previously declared
// SinkStream. A sink stream may have more than one writer: every row
// reaching the stream is written out to each.
func (p *Pipeline) CreateSinkWriter(name, streamName string, writer ioadapter.SinkWriter) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	sm, ok := p.streams[streamName]
	if !ok {
		return rterr.New(rterr.Sql, "sink writer %q: stream %q not declared", name, streamName)
	}
	if sm.Kind != SinkStream {
		return rterr.New(rterr.Sql, "sink writer %q: stream %q is not a sink stream", name, streamName)
	}
	p.writers[streamName] = append(p.writers[streamName], writerBinding{name: name, stream: streamName, writer: writer})
	p.version++
	return nil
}

// CreatePump registers a pump: a standing query reading from one or two
// streams and inserting its output into another. insertInto must already be
// declared by CreateStream/CreateSourceStream/CreateSinkStream; every
// stream plan.From names must already be declared too.
func (p *Pipeline) CreatePump(name, insertInto string, plan *QueryPlan) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, dup := p.pumps[name]; dup {
		return rterr.New(rterr.Sql, "pump %q already exists", name)
	}
	if _, ok := p.streams[insertInto]; !ok {
		return rterr.New(rterr.Sql, "pump %q: INSERT INTO stream %q not declared", name, insertInto)
	}
	for _, from := range plan.From {
		if _, ok := p.streams[from]; !ok {
			return rterr.New(rterr.Sql, "pump %q: FROM stream %q not declared", name, from)
		}
	}
	if plan.Join != nil && len(plan.From) != 2 {
		return rterr.New(rterr.Sql, "pump %q: JOIN requires exactly two FROM streams", name)
	}
	if plan.Join == nil && len(plan.From) != 1 {
		return rterr.New(rterr.Sql, "pump %q: non-join pump requires exactly one FROM stream", name)
	}
	if (plan.GroupBy != nil || plan.Join != nil) && plan.Window == nil {
		return rterr.New(rterr.Sql, "pump %q: GROUP BY/JOIN requires a WINDOW clause", name)
	}
	p.pumps[name] = &PumpModel{Name: name, InsertInto: insertInto, Plan: plan}
	p.version++
	return nil
}

// Build assembles every registered stream, reader, writer and pump into a
// fresh worker.PipelineView: one queue per producer/consumer edge (the
// queue-per-edge model — a stream with several consuming pumps fans out
// into one queue per consumer, never a shared broadcast queue), and one
// task.Executor per source/pump/sink.
//
// Build does not mutate the Pipeline and may be called repeatedly (e.g.
// once per ALTER-equivalent round of construction commands); each call's
// PipelineView is independent and safe to hand to a new worker.Pool or to
// worker.Pool.UpdatePipeline.
func (p *Pipeline) Build() (*worker.PipelineView, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	g := taskgraph.New()
	executors := make(map[taskgraph.TaskID]task.Executor)
	queues := make(map[taskgraph.QueueID]queue.Stats)

	// consumersOf[streamName] accumulates one RowSink-producing consumer
	// task per pump reading FROM that stream, so the producing task (a
	// source or another pump) can be wired to fan out to all of them.
	type consumer struct {
		taskID   taskgraph.TaskID
		windowed bool
	}
	consumersOf := make(map[string][]consumer)
	for _, pm := range p.pumps {
		taskID := taskgraph.TaskID("pump:" + pm.Name)
		windowed := pm.Plan.GroupBy != nil || pm.Plan.Join != nil
		for _, from := range pm.Plan.From {
			consumersOf[from] = append(consumersOf[from], consumer{taskID: taskID, windowed: windowed})
		}
	}

	// Register every task node before wiring any queue: AddQueue requires
	// both its upstream and downstream task already registered, and a
	// source's outgoing edges may target a pump this loop hasn't reached
	// yet (map iteration order is unspecified).
	for _, rb := range p.readers {
		g.AddTask(taskgraph.TaskID("source:"+rb.name), taskgraph.Source)
	}
	for _, pm := range p.pumps {
		kind := taskgraph.Pump
		if pm.Plan.GroupBy != nil || pm.Plan.Join != nil {
			kind = taskgraph.WindowPump
		}
		g.AddTask(taskgraph.TaskID("pump:"+pm.Name), kind)
	}
	for _, wbs := range p.writers {
		for _, wb := range wbs {
			sinkTaskID := taskgraph.TaskID("sink:" + wb.name)
			if !g.HasTask(sinkTaskID) {
				g.AddTask(sinkTaskID, taskgraph.Sink)
				executors[sinkTaskID] = &task.SinkTask{Writer: wb.writer, WriteTimeout: 10 * time.Second}
			}
		}
	}

	// edgeQueue builds (and registers) one queue from upstream into
	// downstream for streamName, of the row or window flavor the
	// downstream pump needs.
	edgeCounter := 0
	edgeQueue := func(streamName string, upstream, downstream taskgraph.TaskID, windowed bool) (task.RowSink, error) {
		edgeCounter++
		qid := taskgraph.QueueID(fmt.Sprintf("q:%s:%d", streamName, edgeCounter))
		if err := g.AddQueue(qid, upstream, downstream); err != nil {
			return nil, err
		}
		if windowed {
			wq := queue.NewWindowQueue(qid, string(upstream), string(downstream), streamName)
			queues[qid] = wq
			return wq, nil
		}
		rq := queue.NewRowQueue(qid, string(upstream), string(downstream), streamName)
		queues[qid] = rq
		return rq, nil
	}

	// Sources: one SourceTask per bound reader, fanning into every pump
	// reading FROM its stream.
	for streamName, rb := range p.readers {
		sm := p.streams[streamName]
		taskID := taskgraph.TaskID("source:" + rb.name)

		outgoing := make([]task.RowSink, 0, len(consumersOf[streamName]))
		for _, c := range consumersOf[streamName] {
			sink, err := edgeQueue(streamName, taskID, c.taskID, c.windowed)
			if err != nil {
				return nil, err
			}
			outgoing = append(outgoing, sink)
		}
		executors[taskID] = &task.SourceTask{
			Reader:      rb.reader,
			Shape:       sm.Shape,
			ReadTimeout: 10 * time.Second,
			Outgoing:    outgoing,
		}
	}

	// Pumps.
	for _, pm := range p.pumps {
		taskID := taskgraph.TaskID("pump:" + pm.Name)
		outShape := p.streams[pm.InsertInto].Shape

		outgoing := make([]task.RowSink, 0, len(consumersOf[pm.InsertInto]))
		for _, c := range consumersOf[pm.InsertInto] {
			sink, err := edgeQueue(pm.InsertInto, taskID, c.taskID, c.windowed)
			if err != nil {
				return nil, err
			}
			outgoing = append(outgoing, sink)
		}
		// A pump whose output stream is a sink stream writes to every
		// bound writer's SinkTask too.
		for _, wb := range p.writers[pm.InsertInto] {
			sinkTaskID := taskgraph.TaskID("sink:" + wb.name)
			sink, err := edgeQueue(pm.InsertInto, taskID, sinkTaskID, false)
			if err != nil {
				return nil, err
			}
			rq, ok := sink.(*queue.RowQueue)
			if !ok {
				return nil, rterr.New(rterr.Sql, "sink %q: unexpected windowed edge", wb.name)
			}
			if st, ok := executors[sinkTaskID].(*task.SinkTask); ok {
				st.Incoming = rq
			}
			outgoing = append(outgoing, sink)
		}

		plan := pm.Plan
		projection := make([]task.ProjectionColumn, 0, len(plan.Projection))
		for _, pr := range plan.Projection {
			projection = append(projection, task.ProjectionColumn{Output: pr.Output, Expr: pr.Expr})
		}

		switch {
		case plan.Join != nil:
			jw := window.NewJoinWindow(plan.Window.Length, plan.Window.AllowedDelay, plan.Join.Condition)
			executors[taskID] = &task.JoinPumpTask{
				Window:       jw,
				OutShape:     outShape,
				LeftColumns:  plan.Join.LeftColumns,
				RightColumns: plan.Join.RightColumns,
				Outgoing:     outgoing,
			}
		case plan.GroupBy != nil:
			aw := window.NewAggrWindow(plan.Window.Length, plan.Window.Period, plan.Window.AllowedDelay, plan.GroupBy.Aggregator)
			passThrough := make(map[string]sqltypes.SqlValue, len(plan.GroupBy.PassThrough))
			for k, v := range plan.GroupBy.PassThrough {
				sv, ok := v.(sqltypes.SqlValue)
				if !ok {
					return nil, rterr.New(rterr.Sql, "pump %q: pass-through column %q is not a SqlValue", pm.Name, k)
				}
				passThrough[k] = sv
			}
			executors[taskID] = &task.AggregationPumpTask{
				Window:        aw,
				OutShape:      outShape,
				GroupByColumn: plan.GroupBy.GroupByColumn,
				AggrColumn:    plan.GroupBy.AggrColumn,
				PassThrough:   passThrough,
				Outgoing:      outgoing,
			}
		default:
			executors[taskID] = &task.SimplePumpTask{
				OutShape:   outShape,
				Outgoing:   outgoing,
				Filter:     plan.Filter,
				Projection: projection,
			}
		}
	}

	// Wire each pump's input queue(s) now that every task is registered
	// and every producer has built its outgoing edges. A pump's own
	// Incoming/Left/Right fields are set by walking the graph's inbound
	// queues, since the queue objects were constructed by the upstream
	// producer's edgeQueue call above.
	for _, pm := range p.pumps {
		taskID := taskgraph.TaskID("pump:" + pm.Name)
		inQueues := g.UpstreamQueues(taskID)

		switch exec := executors[taskID].(type) {
		case *task.SimplePumpTask:
			if len(inQueues) != 1 {
				return nil, rterr.New(rterr.Sql, "pump %q: expected exactly one input queue, got %d", pm.Name, len(inQueues))
			}
			rq, ok := queues[inQueues[0]].(*queue.RowQueue)
			if !ok {
				return nil, rterr.New(rterr.Sql, "pump %q: input queue is not a row queue", pm.Name)
			}
			exec.Incoming = rq
		case *task.AggregationPumpTask:
			if len(inQueues) != 1 {
				return nil, rterr.New(rterr.Sql, "pump %q: expected exactly one input queue, got %d", pm.Name, len(inQueues))
			}
			wq, ok := queues[inQueues[0]].(*queue.WindowQueue)
			if !ok {
				return nil, rterr.New(rterr.Sql, "pump %q: input queue is not a window queue", pm.Name)
			}
			exec.Incoming = wq
		case *task.JoinPumpTask:
			if len(inQueues) != 2 {
				return nil, rterr.New(rterr.Sql, "pump %q: expected exactly two input queues, got %d", pm.Name, len(inQueues))
			}
			left, ok := resolveJoinSide(queues, inQueues, pm.Plan.From[0])
			if !ok {
				return nil, rterr.New(rterr.Sql, "pump %q: could not resolve left join input", pm.Name)
			}
			right, ok := resolveJoinSide(queues, inQueues, pm.Plan.From[1])
			if !ok {
				return nil, rterr.New(rterr.Sql, "pump %q: could not resolve right join input", pm.Name)
			}
			exec.Left = left
			exec.Right = right
		}
	}

	return &worker.PipelineView{Graph: g, Executors: executors, Queues: queues}, nil
}

// resolveJoinSide picks, among a join pump's inbound queues, the one whose
// upstream stream name matches streamName.
func resolveJoinSide(queues map[taskgraph.QueueID]queue.Stats, inQueues []taskgraph.QueueID, streamName string) (*queue.WindowQueue, bool) {
	for _, qid := range inQueues {
		wq, ok := queues[qid].(*queue.WindowQueue)
		if !ok {
			continue
		}
		if wq.UpstreamStreamName() == streamName {
			return wq, true
		}
	}
	return nil, false
}
