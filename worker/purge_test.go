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

package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springql-go/springql/memstate"
	"github.com/springql-go/springql/metrics"
	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/sqltypes"
	"github.com/springql-go/springql/task"
	"github.com/springql-go/springql/taskgraph"
	"github.com/springql-go/springql/window"
)

type floorAvgAggregator struct{}

func (floorAvgAggregator) GroupKey(r *row.Row) (sqltypes.SqlValue, error) {
	v, _ := r.Get("ticker")
	return v, nil
}

func (floorAvgAggregator) AggrValue(r *row.Row) (sqltypes.SqlValue, error) {
	v, _ := r.Get("amount")
	return v, nil
}

func purgeTradeShape(t *testing.T) *row.Shape {
	t.Helper()
	shape, err := row.NewShape([]row.ColumnDef{
		{Name: "ts", Type: sqltypes.Timestamp, Nullable: false},
		{Name: "ticker", Type: sqltypes.Text, Nullable: false},
		{Name: "amount", Type: sqltypes.Integer, Nullable: false},
	}, "ts")
	require.NoError(t, err)
	return shape
}

func TestPoolPurgeDrainsQueuesAndWindowPanes(t *testing.T) {
	shape := purgeTradeShape(t)
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	q1 := queue.NewRowQueue("q1", "src", "pump", "trade")
	cols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts":     sqltypes.NewTimestamp(sqltypes.NewTs(base)),
		"ticker": sqltypes.NewText("ORCL"),
		"amount": sqltypes.NewInteger(10),
	})
	require.NoError(t, err)
	q1.Put(row.New(cols, sqltypes.NewTs(base)))

	wq := queue.NewWindowQueue("wq", "src", "pump", "trade")
	wcols, err := row.NewColumns(shape, map[string]sqltypes.SqlValue{
		"ts":     sqltypes.NewTimestamp(sqltypes.NewTs(base)),
		"ticker": sqltypes.NewText("IBM"),
		"amount": sqltypes.NewInteger(20),
	})
	require.NoError(t, err)
	wq.Put(row.New(wcols, sqltypes.NewTs(base)))

	aw := window.NewAggrWindow(10*time.Second, 10*time.Second, time.Second, floorAvgAggregator{})
	_, _, err = aw.Dispatch(row.New(wcols, sqltypes.NewTs(base)))
	require.NoError(t, err)
	require.Equal(t, 1, aw.NumBufferedGroups())

	aggrTask := &task.AggregationPumpTask{
		Incoming:      wq,
		Window:        aw,
		OutShape:      shape,
		GroupByColumn: "ticker",
		AggrColumn:    "amount",
	}

	view := &PipelineView{
		Graph: taskgraph.New(),
		Executors: map[taskgraph.TaskID]task.Executor{
			"aggr": aggrTask,
		},
		Queues: map[taskgraph.QueueID]queue.Stats{
			"q1": q1,
			"wq": wq,
		},
	}

	m := metrics.New()
	ms := memstate.NewMachine(memstate.Thresholds{UpperLimitBytes: 1024, ModerateToSevere: 60, SevereToModerate: 40, SevereToCritical: 95, CriticalToSevere: 80})
	p := New(Config{}, view, m, ms, nil)

	dropped := p.Purge()

	assert.Greater(t, dropped, 0)
	assert.Equal(t, 0, q1.NumRows())
	assert.Equal(t, 0, wq.NumRowsWaiting())
	assert.Equal(t, 0, aw.NumBufferedGroups())
}
