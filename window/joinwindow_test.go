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

package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/sqltypes"
)

type timeEqualityJoiner struct{}

func (timeEqualityJoiner) Matches(left, right *row.Row) (bool, error) {
	return left.Rowtime().Equal(right.Rowtime()), nil
}

func leftShape(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "ts", Type: sqltypes.Timestamp},
		{Name: "amount", Type: sqltypes.Integer},
	}, "ts")
	require.NoError(t, err)
	return shape
}

func rightShape(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "ts", Type: sqltypes.Timestamp},
		{Name: "temperature", Type: sqltypes.Integer},
	}, "ts")
	require.NoError(t, err)
	return shape
}

func leftRow(t *testing.T, shape *row.Shape, offset time.Duration, amount int32) *row.Row {
	t.Helper()
	ts := sqltypes.NewTs(baseDay.Add(offset))
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts":     sqltypes.NewTimestamp(ts),
		"amount": sqltypes.NewInteger(amount),
	})
	require.NoError(t, err)
	return row.New(cols, ts)
}

func rightRow(t *testing.T, shape *row.Shape, offset time.Duration, temp int32) *row.Row {
	t.Helper()
	ts := sqltypes.NewTs(baseDay.Add(offset))
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts":          sqltypes.NewTimestamp(ts),
		"temperature": sqltypes.NewInteger(temp),
	})
	require.NoError(t, err)
	return row.New(cols, ts)
}

// TestLeftOuterJoinFixedWindow reproduces Scenario D: LEFT OUTER JOIN on
// time equality, fixed 10s window, allowed_delay 1s.
func TestLeftOuterJoinFixedWindow(t *testing.T) {
	ls, rs := leftShape(t), rightShape(t)
	w := NewJoinWindow(10*time.Second, 1*time.Second, timeEqualityJoiner{})

	var closed []JoinPaneClosed

	emit := func(c []JoinPaneClosed) {
		closed = append(closed, c...)
	}

	c, dropped, err := w.DispatchLeft(leftRow(t, ls, 0, 100))
	require.NoError(t, err)
	require.False(t, dropped)
	emit(c)

	c, dropped, err = w.DispatchRight(rightRow(t, rs, 0, 10))
	require.NoError(t, err)
	require.False(t, dropped)
	emit(c)

	c, dropped, err = w.DispatchLeft(leftRow(t, ls, 9*time.Second, 200))
	require.NoError(t, err)
	require.False(t, dropped)
	emit(c)

	c, dropped, err = w.DispatchLeft(leftRow(t, ls, 9999900000*time.Nanosecond, 300))
	require.NoError(t, err)
	require.False(t, dropped)
	emit(c)

	require.Empty(t, closed, "pane must still be open before the watermark passes 00:00:10")

	c, dropped, err = w.DispatchLeft(leftRow(t, ls, 11*time.Second, 600))
	require.NoError(t, err)
	require.False(t, dropped)
	emit(c)

	require.Len(t, closed, 1)
	pane := closed[0]
	require.Len(t, pane.Rows, 3)

	amount := func(r *row.Row) int32 {
		v, _ := r.Get("amount")
		i, _ := v.Int64()
		return int32(i)
	}

	assert.Equal(t, int32(100), amount(pane.Rows[0].Left))
	require.NotNil(t, pane.Rows[0].Right)
	temp, _ := pane.Rows[0].Right.Get("temperature")
	ti, _ := temp.Int64()
	assert.Equal(t, int64(10), ti)

	assert.Equal(t, int32(200), amount(pane.Rows[1].Left))
	assert.Nil(t, pane.Rows[1].Right)

	assert.Equal(t, int32(300), amount(pane.Rows[2].Left))
	assert.Nil(t, pane.Rows[2].Right)
}

func TestLateRightSideDroppedAfterPaneCloses(t *testing.T) {
	ls, rs := leftShape(t), rightShape(t)
	w := NewJoinWindow(10*time.Second, 0, timeEqualityJoiner{})

	_, _, err := w.DispatchLeft(leftRow(t, ls, 0, 100))
	require.NoError(t, err)
	// Advances the watermark past [0,10) and closes it.
	_, _, err = w.DispatchLeft(leftRow(t, ls, 10*time.Second, 999))
	require.NoError(t, err)

	// A right-side row now arriving for the closed pane must be dropped as
	// late, not silently reopen a finalized pane.
	_, dropped, err := w.DispatchRight(rightRow(t, rs, 0, 42))
	require.NoError(t, err)
	assert.True(t, dropped)
}
