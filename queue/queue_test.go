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

package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/sqltypes"
)

func newTestRow(t *testing.T) *row.Row {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "amount", Type: sqltypes.Integer},
	}, "")
	require.NoError(t, err)
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"amount": sqltypes.NewInteger(10),
	})
	require.NoError(t, err)
	return row.New(cols, sqltypes.NowTs())
}

func TestRowQueueFIFOOrder(t *testing.T) {
	q := NewRowQueue("q1", "up", "down", "s")
	r1, r2 := newTestRow(t), newTestRow(t)
	q.Put(r1)
	q.Put(r2)

	got, ok := q.Collect()
	require.True(t, ok)
	assert.Same(t, r1, got)
	assert.Equal(t, 1, q.NumRows())
}

func TestRowQueueCollectEmpty(t *testing.T) {
	q := NewRowQueue("q1", "up", "down", "s")
	_, ok := q.Collect()
	assert.False(t, ok)
}

func TestRowQueueDrain(t *testing.T) {
	q := NewRowQueue("q1", "up", "down", "s")
	q.Put(newTestRow(t))
	q.Put(newTestRow(t))
	n := q.Drain()
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, q.NumRows())
	assert.Equal(t, 0, q.NumBytes())
}

func TestWindowQueueWaitingAndDispatch(t *testing.T) {
	q := NewWindowQueue("q2", "up", "down", "s")
	q.Put(newTestRow(t))
	assert.Equal(t, 1, q.NumRowsWaiting())

	r, ok := q.Dispatch()
	require.True(t, ok)
	assert.NotNil(t, r)
	assert.Equal(t, 0, q.NumRowsWaiting())
}
