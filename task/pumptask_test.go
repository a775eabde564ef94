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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springql-go/springql/expr"
	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/sqltypes"
	"github.com/springql-go/springql/window"
)

var baseDay = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func tradeShapeIn(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "ts", Type: sqltypes.Timestamp, Nullable: false},
		{Name: "ticker", Type: sqltypes.Text, Nullable: false},
		{Name: "amount", Type: sqltypes.Integer, Nullable: false},
	}, "ts")
	require.NoError(t, err)
	return shape
}

func tradeOutShape(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "ticker", Type: sqltypes.Text, Nullable: false},
		{Name: "doubled", Type: sqltypes.Integer, Nullable: false},
	}, "")
	require.NoError(t, err)
	return shape
}

func putTradeRow(t *testing.T, shape *row.Shape, q *queue.RowQueue, offset time.Duration, ticker string, amount int64) {
	t.Helper()
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts":     sqltypes.NewTimestamp(sqltypes.NewTs(baseDay.Add(offset))),
		"ticker": sqltypes.NewText(ticker),
		"amount": sqltypes.NewInteger(amount),
	})
	require.NoError(t, err)
	q.Put(row.New(cols, sqltypes.NewTs(baseDay.Add(offset))))
}

func putTradeWaiting(t *testing.T, shape *row.Shape, q *queue.WindowQueue, offset time.Duration, ticker string, amount int64) {
	t.Helper()
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts":     sqltypes.NewTimestamp(sqltypes.NewTs(baseDay.Add(offset))),
		"ticker": sqltypes.NewText(ticker),
		"amount": sqltypes.NewInteger(amount),
	})
	require.NoError(t, err)
	q.Put(row.New(cols, sqltypes.NewTs(baseDay.Add(offset))))
}

func TestSimplePumpTaskProjectsAndFilters(t *testing.T) {
	inShape := tradeShapeIn(t)
	outShape := tradeOutShape(t)
	in := queue.NewRowQueue("q1", "src", "pump", "trade")
	out := queue.NewRowQueue("q2", "pump", "sink", "trade")

	putTradeRow(t, inShape, in, 0, "ORCL", 100)

	ge, err := expr.NewGeneral("amount * 2")
	require.NoError(t, err)
	filter, err := expr.NewGeneral("amount > 50")
	require.NoError(t, err)

	pump := &SimplePumpTask{
		Incoming: in,
		OutShape: outShape,
		Outgoing: []RowSink{out},
		Filter:   filter,
		Projection: []ProjectionColumn{
			{Output: "ticker", Expr: expr.ColumnRef{Column: "ticker"}},
			{Output: "doubled", Expr: ge},
		},
	}

	n, err := pump.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Equal(t, 1, out.NumRows())

	r, _ := out.Collect()
	doubled, _ := r.Get("doubled")
	v, _ := doubled.Int64()
	assert.Equal(t, int64(200), v)
}

func TestSimplePumpTaskFilterDropsRow(t *testing.T) {
	inShape := tradeShapeIn(t)
	outShape := tradeOutShape(t)
	in := queue.NewRowQueue("q1", "src", "pump", "trade")
	out := queue.NewRowQueue("q2", "pump", "sink", "trade")

	putTradeRow(t, inShape, in, 0, "ORCL", 10)

	filter, err := expr.NewGeneral("amount > 50")
	require.NoError(t, err)

	pump := &SimplePumpTask{
		Incoming: in,
		OutShape: outShape,
		Outgoing: []RowSink{out},
		Filter:   filter,
		Projection: []ProjectionColumn{
			{Output: "ticker", Expr: expr.ColumnRef{Column: "ticker"}},
			{Output: "doubled", Expr: expr.ColumnRef{Column: "amount"}},
		},
	}

	n, err := pump.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, out.NumRows())
}

type floorAvgAggregator struct {
	bucket time.Duration
}

func (a floorAvgAggregator) GroupKey(r *row.Row) (sqltypes.SqlValue, error) {
	return sqltypes.NewTimestamp(r.Rowtime().Floor(a.bucket)), nil
}

func (a floorAvgAggregator) AggrValue(r *row.Row) (sqltypes.SqlValue, error) {
	v, _ := r.Get("amount")
	return v, nil
}

func aggrOutShape(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "bucket", Type: sqltypes.Timestamp, Nullable: false},
		{Name: "avg_amount", Type: sqltypes.Float, Nullable: true},
	}, "")
	require.NoError(t, err)
	return shape
}

func TestAggregationPumpTaskEmitsOnPaneClose(t *testing.T) {
	inShape := tradeShapeIn(t)
	outShape := aggrOutShape(t)
	in := queue.NewWindowQueue("wq1", "src", "pump", "trade")
	out := queue.NewRowQueue("q2", "pump", "sink", "result")

	aw := window.NewAggrWindow(10*time.Second, 10*time.Second, time.Second, floorAvgAggregator{bucket: 10 * time.Second})
	pump := &AggregationPumpTask{
		Incoming:      in,
		Window:        aw,
		OutShape:      outShape,
		Outgoing:      []RowSink{out},
		GroupByColumn: "bucket",
		AggrColumn:    "avg_amount",
	}

	rows := []struct {
		offset time.Duration
		amount int64
	}{
		{0, 10},
		{9999999999 * time.Nanosecond, 30},
		{10 * time.Second, 50},
		{20 * time.Second, 70},
	}
	for _, rr := range rows {
		putTradeWaiting(t, inShape, in, rr.offset, "ORCL", rr.amount)
	}

	total := 0
	for i := 0; i < len(rows); i++ {
		n, err := pump.Execute(context.Background())
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, 1, total) // only the first pane (0-10s) has closed, on the 4th row (20s): the 1s allowed delay holds the watermark at 9s after the 10s row
}

func tradeShapeTwoSided(t *testing.T, col string) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "ts", Type: sqltypes.Timestamp, Nullable: false},
		{Name: col, Type: sqltypes.Integer, Nullable: false},
	}, "ts")
	require.NoError(t, err)
	return shape
}

type tsEqualityJoiner struct{}

func (tsEqualityJoiner) Matches(left, right *row.Row) (bool, error) {
	return left.Rowtime().Equal(right.Rowtime()), nil
}

func joinOutShape(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "left_amount", Type: sqltypes.Integer, Nullable: true},
		{Name: "right_temp", Type: sqltypes.Integer, Nullable: true},
	}, "")
	require.NoError(t, err)
	return shape
}

func TestJoinPumpTaskLeftOuterJoin(t *testing.T) {
	leftShape := tradeShapeTwoSided(t, "amount")
	rightShape := tradeShapeTwoSided(t, "temp")
	outShape := joinOutShape(t)

	leftQ := queue.NewWindowQueue("lq", "srcL", "pump", "trade")
	rightQ := queue.NewWindowQueue("rq", "srcR", "pump", "weather")
	out := queue.NewRowQueue("oq", "pump", "sink", "joined")

	jw := window.NewJoinWindow(10*time.Second, time.Second, tsEqualityJoiner{})
	pump := &JoinPumpTask{
		Left: leftQ, Right: rightQ, Window: jw, OutShape: outShape,
		LeftColumns:  map[string]string{"amount": "left_amount"},
		RightColumns: map[string]string{"temp": "right_temp"},
		Outgoing:     []RowSink{out},
	}

	mustPutRow(t, leftShape, leftQ, 0, "amount", 100)
	mustPutRow(t, rightShape, rightQ, 0, "temp", 10)
	mustPutRow(t, leftShape, leftQ, 11*time.Second, "amount", 999)

	total := 0
	for i := 0; i < 3; i++ {
		n, err := pump.Execute(context.Background())
		require.NoError(t, err)
		total += n
	}
	// The pane closes once the watermark (driven by the 11s row) passes
	// close_at=10s, finalizing exactly one row for the 0s left row: matched
	// with the 0s right row when that row was dispatched first, or with a
	// NULL right side when the random side pick dispatched the 11s left row
	// first (the right row is then late and dropped).
	assert.Equal(t, 1, total)
}

func mustPutRow(t *testing.T, shape *row.Shape, q *queue.WindowQueue, offset time.Duration, col string, val int64) {
	t.Helper()
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts":  sqltypes.NewTimestamp(sqltypes.NewTs(baseDay.Add(offset))),
		col:   sqltypes.NewInteger(val),
	})
	require.NoError(t, err)
	q.Put(row.New(cols, sqltypes.NewTs(baseDay.Add(offset))))
}
