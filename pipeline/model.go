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

// Package pipeline assembles StreamModel/PumpModel registrations — the six
// construction commands of spec.md §6 — into a runnable worker.PipelineView:
// a taskgraph.Graph, one task.Executor per task, and one queue per edge.
//
// The SQL parser that would normally produce these commands is out of
// scope (spec.md §9): callers build a Pipeline directly through
// CreateSourceStream/CreateSinkStream/CreateStream/CreateSourceReader/
// CreateSinkWriter/CreatePump, supplying an already-compiled QueryPlan per
// pump.
package pipeline

import (
	"time"

	"github.com/springql-go/springql/ioadapter"
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/task"
	"github.com/springql-go/springql/window"
)

// StreamKind distinguishes the three CREATE STREAM variants. All three
// register the same StreamModel shape; the kind only constrains which
// further commands may bind to the stream.
type StreamKind int

const (
	// RegularStream is produced and consumed entirely within the
	// pipeline (a pump's InsertInto feeding another pump's From).
	RegularStream StreamKind = iota
	// SourceStream must have exactly one CreateSourceReader bound to it.
	SourceStream
	// SinkStream must have at least one CreateSinkWriter bound to it.
	SinkStream
)

// StreamModel is the registration produced by CREATE {SOURCE|SINK} STREAM /
// CREATE STREAM: a name and a row shape, nothing more — grounded on
// types/model.go's Config being pure data with no behavior of its own.
type StreamModel struct {
	Name  string
	Kind  StreamKind
	Shape *row.Shape
}

// QueryPlan is the compiled logical plan a CREATE PUMP statement would
// normally produce via the (out of scope) SQL parser. Exactly one of
// GroupBy or Join may be set; when neither is set the pump is a plain
// projecting/filtering pass-through and From must name exactly one stream.
// When GroupBy or Join is set, Window must also be set (spec.md's windowed
// operators always carry one).
type QueryPlan struct {
	// From names the input stream(s): one entry for a simple or
	// aggregating pump, two (left, right) for a join pump.
	From []string

	GroupBy *GroupByPlan
	Join    *JoinPlan
	Window  *WindowPlan

	Filter     task.Predicate // nil: no WHERE clause
	Projection []ProjectionPlan
}

// ProjectionPlan is one SELECT-list entry, reusing task.ValueExpr so a
// caller can supply a compiled expr.ValueExpr directly.
type ProjectionPlan struct {
	Output string
	Expr   task.ValueExpr
}

// GroupByPlan configures a GROUP BY + single-aggregate pump.
type GroupByPlan struct {
	Aggregator    window.Aggregator
	GroupByColumn string
	AggrColumn    string
	// PassThrough supplies additional constant/derived output columns
	// evaluated once per emitted group (e.g. a literal stream name), keyed
	// by output column name. Values are sqltypes.SqlValue; kept as
	// interface{} here so this file doesn't need to import sqltypes.
	PassThrough map[string]interface{}
}

// JoinPlan configures a two-input LEFT OUTER JOIN pump.
type JoinPlan struct {
	Condition                 window.Joiner
	LeftColumns, RightColumns map[string]string // source column -> output column
}

// WindowPlan configures the {FIXED|SLIDING} WINDOW clause shared by
// GroupBy and Join pumps. Length == Period is a FIXED window; Length >
// Period is SLIDING. A Join pump always runs a FIXED window of Length and
// does not read Period.
type WindowPlan struct {
	Length       time.Duration
	Period       time.Duration
	AllowedDelay time.Duration
}

// PumpModel is the registration produced by CREATE PUMP: where its output
// goes and how it's computed.
type PumpModel struct {
	Name       string
	InsertInto string
	Plan       *QueryPlan
}

// readerBinding is the registration produced by CREATE SOURCE READER.
type readerBinding struct {
	name   string
	stream string
	reader ioadapter.SourceReader
}

// writerBinding is the registration produced by CREATE SINK WRITER.
type writerBinding struct {
	name   string
	stream string
	writer ioadapter.SinkWriter
}
