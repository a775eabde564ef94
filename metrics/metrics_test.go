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

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTracksTaskAndQueueStats(t *testing.T) {
	m := New()

	m.Apply(Update{
		TaskID:        "pump1",
		ExecutionTime: 10 * time.Millisecond,
		BytesConsumed: 100,
		BytesEmitted:  120,
		InQueues:      []QueueDelta{{QueueID: "q1", NumRows: 3, NumBytes: 300}},
		OutQueues:     []QueueDelta{{QueueID: "q2", NumRows: 1, NumBytes: 120}},
	})

	ts, ok := m.TaskSnapshot("pump1")
	require.True(t, ok)
	assert.Equal(t, int64(1), ts.ExecutionCount)
	assert.Equal(t, 10*time.Millisecond, ts.RollingExecTime)
	assert.Greater(t, ts.RollingByteGain, 0.0)

	q1, ok := m.QueueSnapshot("q1")
	require.True(t, ok)
	assert.Equal(t, int64(3), q1.NumRows)
	assert.Equal(t, int64(300), q1.NumBytes)

	q2, ok := m.QueueSnapshot("q2")
	require.True(t, ok)
	assert.Equal(t, int64(120), q2.NumBytes)
}

func TestApplyRollsExecutionTimeAcrossCalls(t *testing.T) {
	m := New()

	m.Apply(Update{TaskID: "t1", ExecutionTime: 10 * time.Millisecond})
	m.Apply(Update{TaskID: "t1", ExecutionTime: 20 * time.Millisecond})

	ts, ok := m.TaskSnapshot("t1")
	require.True(t, ok)
	assert.Equal(t, int64(2), ts.ExecutionCount)
	assert.Equal(t, 15*time.Millisecond, ts.RollingExecTime)
}

func TestQueueSnapshotUnknownIDReportsNotOK(t *testing.T) {
	m := New()
	_, ok := m.QueueSnapshot("missing")
	assert.False(t, ok)
}

func TestTotalQueueBytesSumsAllQueues(t *testing.T) {
	m := New()
	m.Apply(Update{
		TaskID:    "t1",
		InQueues:  []QueueDelta{{QueueID: "q1", NumBytes: 100}},
		OutQueues: []QueueDelta{{QueueID: "q2", NumBytes: 250}},
	})
	assert.Equal(t, int64(350), m.TotalQueueBytes())
}

func TestReporterPublishesOnEachTick(t *testing.T) {
	m := New()
	m.Apply(Update{TaskID: "t1", OutQueues: []QueueDelta{{QueueID: "q1", NumBytes: 500}}})

	received := make(chan Summary, 4)
	r := NewReporter(m, 10*time.Millisecond, func(s Summary) {
		received <- s
	})

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	select {
	case s := <-received:
		assert.Equal(t, int64(500), s.QueueTotalBytes)
	default:
		t.Fatal("expected at least one published summary")
	}
}
