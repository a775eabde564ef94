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

package row

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springql-go/springql/sqltypes"
)

func tradeShape(t *testing.T) *Shape {
	t.Helper()
	shape, err := NewShape([]ColumnDef{
		{Name: "ts", Type: sqltypes.Timestamp, Nullable: false},
		{Name: "ticker", Type: sqltypes.Text, Nullable: false},
		{Name: "amount", Type: sqltypes.Integer, Nullable: false},
	}, "ts")
	require.NoError(t, err)
	return shape
}

func TestNewShapeRejectsDuplicateColumns(t *testing.T) {
	_, err := NewShape([]ColumnDef{
		{Name: "a", Type: sqltypes.Integer},
		{Name: "a", Type: sqltypes.Integer},
	}, "")
	assert.Error(t, err)
}

func TestNewShapeRowtimeMustBeTimestamp(t *testing.T) {
	_, err := NewShape([]ColumnDef{
		{Name: "amount", Type: sqltypes.Integer},
	}, "amount")
	assert.Error(t, err)
}

func TestJSONRoundTripPreservesColumns(t *testing.T) {
	shape := tradeShape(t)
	data := []byte(`{"ts":"2021-11-04 23:02:52.123456789","ticker":"ORCL","amount":20}`)
	r, err := FromJSON(shape, data, sqltypes.NowTs())
	require.NoError(t, err)

	assert.True(t, r.RowtimePromoted())

	out, err := r.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"ticker":"ORCL"`)
	assert.Contains(t, string(out), `"amount":20`)
	assert.NotContains(t, string(out), "arrival_rowtime")
}

func TestArrivalRowtimeAddedWhenNoPromotion(t *testing.T) {
	shape, err := NewShape([]ColumnDef{
		{Name: "ticker", Type: sqltypes.Text, Nullable: false},
	}, "")
	require.NoError(t, err)

	r, err := FromJSON(shape, []byte(`{"ticker":"ORCL"}`), sqltypes.NowTs())
	require.NoError(t, err)
	assert.False(t, r.RowtimePromoted())

	out, err := r.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), "arrival_rowtime")
}

func TestRowEqualityNullMakesUnequal(t *testing.T) {
	shape, err := NewShape([]ColumnDef{
		{Name: "a", Type: sqltypes.Integer, Nullable: true},
	}, "")
	require.NoError(t, err)

	colsA, err := NewColumns(shape, map[string]sqltypes.SqlValue{"a": sqltypes.Null()})
	require.NoError(t, err)
	colsB, err := NewColumns(shape, map[string]sqltypes.SqlValue{"a": sqltypes.Null()})
	require.NoError(t, err)

	rowA := New(colsA, sqltypes.NowTs())
	rowB := New(colsB, sqltypes.NowTs())
	assert.False(t, rowA.Equal(rowB))
}

func TestMissingColumnErrors(t *testing.T) {
	shape := tradeShape(t)
	_, err := NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts": sqltypes.NewTimestamp(sqltypes.NowTs()),
	})
	assert.Error(t, err)
}
