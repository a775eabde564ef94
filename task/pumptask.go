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

package task

import (
	"context"
	"math/rand/v2"

	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
	"github.com/springql-go/springql/window"
)

// ProjectionColumn is one SELECT-list entry: an output column name and the
// expression that computes it. expr.ColumnRef/Literal/FuncCall/General all
// satisfy ValueExpr structurally, so task has no import dependency on expr.
type ProjectionColumn struct {
	Output string
	Expr   ValueExpr
}

// ValueExpr is the minimal surface PumpTask needs from an expr.ValueExpr:
// evaluate against a row.
type ValueExpr interface {
	Eval(r *row.Row) (sqltypes.SqlValue, error)
}

// Predicate is the minimal surface for a WHERE/ON condition.
type Predicate interface {
	Eval(r *row.Row) (sqltypes.SqlValue, error)
}

// projection is SimplePumpTask's query stage: it applies the WHERE filter to
// the collected row and evaluates the SELECT list, yielding a byName column
// map ready for insert.
type projection struct {
	columns []ProjectionColumn
	filter  Predicate // nil means no WHERE clause
}

func (p *projection) apply(r *row.Row) (map[string]sqltypes.SqlValue, bool, error) {
	if p.filter != nil {
		v, err := p.filter.Eval(r)
		if err != nil {
			return nil, false, err
		}
		if v.IsNull() {
			return nil, false, nil
		}
		keep, err := v.Bool()
		if err != nil {
			return nil, false, err
		}
		if !keep {
			return nil, false, nil
		}
	}
	out := make(map[string]sqltypes.SqlValue, len(p.columns))
	for _, c := range p.columns {
		v, err := c.Expr.Eval(r)
		if err != nil {
			return nil, false, err
		}
		out[c.Output] = v
	}
	return out, true, nil
}

// insert builds a Row conforming to outShape from byName and fans it out to
// every downstream queue.
func insert(outShape *row.Shape, byName map[string]sqltypes.SqlValue, outgoing []RowSink) (int, error) {
	cols, err := row.NewColumns(outShape, byName)
	if err != nil {
		return 0, err
	}
	out := row.New(cols, sqltypes.NowTs())
	for _, q := range outgoing {
		q.Put(out)
	}
	return 1, nil
}

// SimplePumpTask is a non-windowed pump: collect one row, optionally filter
// it, project it, insert the result downstream.
type SimplePumpTask struct {
	Incoming   *queue.RowQueue
	OutShape   *row.Shape
	Outgoing   []RowSink
	Filter     Predicate
	Projection []ProjectionColumn
}

func (t *SimplePumpTask) Execute(ctx context.Context) (int, error) {
	r, ok := t.Incoming.Collect()
	if !ok {
		return 0, rterr.New(rterr.InputTimeout, "no row queued for pump")
	}
	p := &projection{columns: t.Projection, filter: t.Filter}
	byName, keep, err := p.apply(r)
	if err != nil {
		return 0, err
	}
	if !keep {
		return 0, nil
	}
	return insert(t.OutShape, byName, t.Outgoing)
}

// AggregationPumpTask is a GROUP BY + single-aggregate windowed pump: the
// collect stage dispatches one waiting row into the window operator; on
// pane close, one output row is inserted per group.
type AggregationPumpTask struct {
	Incoming      *queue.WindowQueue
	Window        *window.AggrWindow
	OutShape      *row.Shape
	Outgoing      []RowSink
	GroupByColumn string
	AggrColumn    string
	// PassThrough supplies any additional constant/derived output columns
	// (e.g. a literal stream name) evaluated once per emitted group, keyed
	// by output column name. May be nil.
	PassThrough map[string]sqltypes.SqlValue
}

func (t *AggregationPumpTask) Execute(ctx context.Context) (int, error) {
	r, ok := t.Incoming.Dispatch()
	if !ok {
		return 0, rterr.New(rterr.InputTimeout, "no row waiting for aggregation window")
	}

	emissions, late, err := t.Window.Dispatch(r)
	if err != nil {
		return 0, err
	}
	if late {
		return 0, nil
	}

	produced := 0
	for _, emission := range emissions {
		for _, group := range emission.Groups {
			byName := map[string]sqltypes.SqlValue{
				t.GroupByColumn: group.GroupKey,
				t.AggrColumn:    group.Avg,
			}
			for k, v := range t.PassThrough {
				byName[k] = v
			}
			n, err := insert(t.OutShape, byName, t.Outgoing)
			if err != nil {
				return produced, err
			}
			produced += n
		}
	}
	return produced, nil
}

// Drain discards this pump's window pane state, for a purge cycle. It
// returns the number of panes dropped.
func (t *AggregationPumpTask) Drain() int {
	return t.Window.Drain()
}

// JoinPumpTask is a two-input LEFT OUTER JOIN windowed pump. Each Execute
// call dispatches one row from whichever side the fairness pick selects,
// and inserts every row any pane close finalizes.
type JoinPumpTask struct {
	Left, Right *queue.WindowQueue
	Window      *window.JoinWindow
	OutShape    *row.Shape

	// LeftColumns/RightColumns name the output column each side's column
	// maps to; the right side's entries are left NULL for an unmatched
	// left row.
	LeftColumns, RightColumns map[string]string // source column -> output column
	Outgoing                  []RowSink
}

func (t *JoinPumpTask) Execute(ctx context.Context) (int, error) {
	side, ok := t.pickSide()
	if !ok {
		return 0, rterr.New(rterr.InputTimeout, "no row waiting on either join input")
	}

	var closed []window.JoinPaneClosed
	var err error
	if side == window.LeftSide {
		r, _ := t.Left.Dispatch()
		closed, _, err = t.Window.DispatchLeft(r)
	} else {
		r, _ := t.Right.Dispatch()
		closed, _, err = t.Window.DispatchRight(r)
	}
	if err != nil {
		return 0, err
	}

	produced := 0
	for _, pane := range closed {
		for _, emission := range pane.Rows {
			byName := make(map[string]sqltypes.SqlValue, len(t.LeftColumns)+len(t.RightColumns))
			for src, out := range t.LeftColumns {
				v, _ := emission.Left.Get(src)
				byName[out] = v
			}
			for src, out := range t.RightColumns {
				if emission.Right == nil {
					byName[out] = sqltypes.Null()
					continue
				}
				v, _ := emission.Right.Get(src)
				byName[out] = v
			}
			n, err := insert(t.OutShape, byName, t.Outgoing)
			if err != nil {
				return produced, err
			}
			produced += n
		}
	}
	return produced, nil
}

// Drain discards this pump's window pane state, for a purge cycle. It
// returns the number of panes dropped.
func (t *JoinPumpTask) Drain() int {
	return t.Window.Drain()
}

// pickSide implements the spec's join-direction fairness: a uniform random
// choice between the two sides when both have a waiting row, with fallback
// to whichever side is non-empty when only one is.
func (t *JoinPumpTask) pickSide() (window.Side, bool) {
	leftReady := t.Left.NumRowsWaiting() > 0
	rightReady := t.Right.NumRowsWaiting() > 0
	switch {
	case leftReady && rightReady:
		if rand.IntN(2) == 0 {
			return window.LeftSide, true
		}
		return window.RightSide, true
	case leftReady:
		return window.LeftSide, true
	case rightReady:
		return window.RightSide, true
	default:
		return window.LeftSide, false
	}
}
