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

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springql-go/springql/metrics"
	"github.com/springql-go/springql/taskgraph"
)

// diamondGraph builds source -> A -> {B->C, D->C} -> sink.
func diamondGraph(t *testing.T) *taskgraph.Graph {
	t.Helper()
	g := taskgraph.New()
	g.AddTask("source", taskgraph.Source)
	g.AddTask("A", taskgraph.Pump)
	g.AddTask("B", taskgraph.Pump)
	g.AddTask("C", taskgraph.Pump)
	g.AddTask("D", taskgraph.Pump)
	g.AddTask("sink", taskgraph.Sink)

	require.NoError(t, g.AddQueue("q.source.a", "source", "A"))
	require.NoError(t, g.AddQueue("q.a.b", "A", "B"))
	require.NoError(t, g.AddQueue("q.a.d", "A", "D"))
	require.NoError(t, g.AddQueue("q.b.c", "B", "C"))
	require.NoError(t, g.AddQueue("q.d.c", "D", "C"))
	require.NoError(t, g.AddQueue("q.c.sink", "C", "sink"))
	return g
}

func TestFlowEfficientSchedulerPicksOnlyCollectorOnDiamond(t *testing.T) {
	g := diamondGraph(t)
	m := metrics.New()

	s := FlowEfficientScheduler{}
	series := s.NextTaskSeries(g, m)

	// A is the sole downstream of the only generator (source), so it is
	// always the collector regardless of the fairness pick; the DFS then
	// visits both branches and ends each at the sink.
	assert.Equal(t, []taskgraph.TaskID{"A", "B", "C", "sink", "D", "C", "sink"}, series)
}

func TestFlowEfficientSchedulerStopsAtWindowTask(t *testing.T) {
	g := taskgraph.New()
	g.AddTask("source", taskgraph.Source)
	g.AddTask("A", taskgraph.Pump)
	g.AddTask("win", taskgraph.WindowPump)
	require.NoError(t, g.AddQueue("q1", "source", "A"))
	require.NoError(t, g.AddQueue("q2", "A", "win"))

	// win is itself a generator (a window task releases rows too), but it
	// has no downstream task registered here, so it contributes no extra
	// collector: source's downstream A remains the sole collector.
	s := FlowEfficientScheduler{}
	series := s.NextTaskSeries(g, metrics.New())

	assert.Equal(t, []taskgraph.TaskID{"A", "win"}, series)
}

func TestFlowEfficientSchedulerNoCollectorsReturnsEmpty(t *testing.T) {
	g := taskgraph.New()
	g.AddTask("solo", taskgraph.Pump)

	s := FlowEfficientScheduler{}
	series := s.NextTaskSeries(g, metrics.New())
	assert.Empty(t, series)
}

func TestFlowEfficientSchedulerWeightsByIncomingRows(t *testing.T) {
	g := taskgraph.New()
	g.AddTask("src1", taskgraph.Source)
	g.AddTask("src2", taskgraph.Source)
	g.AddTask("c1", taskgraph.Sink)
	g.AddTask("c2", taskgraph.Sink)
	require.NoError(t, g.AddQueue("q1", "src1", "c1"))
	require.NoError(t, g.AddQueue("q2", "src2", "c2"))

	m := metrics.New()
	m.Apply(metrics.Update{TaskID: "src1", OutQueues: []metrics.QueueDelta{{QueueID: "q1", NumRows: 100}}})
	m.Apply(metrics.Update{TaskID: "src2", OutQueues: []metrics.QueueDelta{{QueueID: "q2", NumRows: 0}}})

	s := FlowEfficientScheduler{}
	for i := 0; i < 20; i++ {
		series := s.NextTaskSeries(g, m)
		require.Len(t, series, 1)
		// With c2's queue always empty, the weighted pick must always land
		// on c1 (the only collector with positive weight).
		assert.Equal(t, taskgraph.TaskID("c1"), series[0])
	}
}

func TestMemoryReducingSchedulerPicksLowestByteGain(t *testing.T) {
	g := taskgraph.New()
	g.AddTask("src1", taskgraph.Source)
	g.AddTask("src2", taskgraph.Source)
	g.AddTask("c1", taskgraph.Sink)
	g.AddTask("c2", taskgraph.Sink)
	require.NoError(t, g.AddQueue("q1", "src1", "c1"))
	require.NoError(t, g.AddQueue("q2", "src2", "c2"))

	m := metrics.New()
	m.Apply(metrics.Update{TaskID: "c1", ExecutionTime: 1, BytesConsumed: 1000, BytesEmitted: 100})
	m.Apply(metrics.Update{TaskID: "c2", ExecutionTime: 1, BytesConsumed: 100, BytesEmitted: 1000})

	s := MemoryReducingScheduler{}
	series := s.NextTaskSeries(g, m)
	require.Len(t, series, 1)
	assert.Equal(t, taskgraph.TaskID("c1"), series[0])
}
