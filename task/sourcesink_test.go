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

	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

type fakeReader struct {
	payloads [][]byte
	idx      int
	err      error
}

func (f *fakeReader) ReadRow(ctx context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.payloads) {
		return nil, rterr.New(rterr.ForeignSourceTimeout, "no more rows")
	}
	p := f.payloads[f.idx]
	f.idx++
	return p, nil
}
func (f *fakeReader) Close() error { return nil }

type fakeWriter struct {
	written [][]byte
}

func (w *fakeWriter) WriteRow(ctx context.Context, payload []byte) error {
	w.written = append(w.written, payload)
	return nil
}
func (w *fakeWriter) Close() error { return nil }

func tickerShape(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "ticker", Type: sqltypes.Text, Nullable: false},
		{Name: "amount", Type: sqltypes.Integer, Nullable: false},
	}, "")
	require.NoError(t, err)
	return shape
}

func TestSourceTaskReadsAndFansOut(t *testing.T) {
	shape := tickerShape(t)
	q1 := queue.NewRowQueue("q1", "src", "pump", "trade")
	q2 := queue.NewRowQueue("q2", "src", "pump2", "trade")

	reader := &fakeReader{payloads: [][]byte{[]byte(`{"ticker":"ORCL","amount":100}`)}}
	src := &SourceTask{Reader: reader, Shape: shape, ReadTimeout: time.Second, Outgoing: []RowSink{q1, q2}}

	n, err := src.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, q1.NumRows())
	assert.Equal(t, 1, q2.NumRows())
}

func TestSourceTaskTimeoutClassified(t *testing.T) {
	shape := tickerShape(t)
	src := &SourceTask{Reader: &fakeReader{}, Shape: shape, ReadTimeout: time.Second}

	_, err := src.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, rterr.ForeignSourceTimeout, rterr.KindOf(err))
}

func TestSinkTaskCollectsAndWrites(t *testing.T) {
	shape := tickerShape(t)
	q := queue.NewRowQueue("q1", "pump", "sink", "trade")
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ticker": sqltypes.NewText("ORCL"),
		"amount": sqltypes.NewInteger(100),
	})
	require.NoError(t, err)
	q.Put(row.New(cols, sqltypes.NowTs()))

	writer := &fakeWriter{}
	sink := &SinkTask{Writer: writer, WriteTimeout: time.Second, Incoming: q}

	n, err := sink.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, writer.written, 1)
	assert.Contains(t, string(writer.written[0]), "ORCL")
}

func TestSinkTaskNoRowIsInputTimeout(t *testing.T) {
	q := queue.NewRowQueue("q1", "pump", "sink", "trade")
	sink := &SinkTask{Writer: &fakeWriter{}, Incoming: q}

	_, err := sink.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, rterr.InputTimeout, rterr.KindOf(err))
}
