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
	"time"

	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/sqltypes"
)

// Aggregator evaluates the group-by key and the aggregated value for a row
// admitted to an AggrWindow. It is supplied by the task layer, which owns
// expression evaluation; window stays decoupled from the expression
// sub-language.
type Aggregator interface {
	GroupKey(r *row.Row) (sqltypes.SqlValue, error)
	AggrValue(r *row.Row) (sqltypes.SqlValue, error)
}

// aggrGroupAccum is the running AVG accumulator for one group within one
// pane: AVG is carried as sum + count so it folds incrementally instead of
// re-scanning the pane's rows on close.
type aggrGroupAccum struct {
	key   sqltypes.SqlValue
	sum   sqltypes.SqlValue
	count int64
}

type aggrPaneState struct {
	accumByHash map[uint64][]*aggrGroupAccum
}

func newAggrPaneState() *aggrPaneState {
	return &aggrPaneState{accumByHash: make(map[uint64][]*aggrGroupAccum)}
}

func (s *aggrPaneState) accumFor(key sqltypes.SqlValue) *aggrGroupAccum {
	h := key.Hash()
	for _, a := range s.accumByHash[h] {
		if a.key.Equal(key) {
			return a
		}
	}
	a := &aggrGroupAccum{key: key, sum: sqltypes.Null(), count: 0}
	s.accumByHash[h] = append(s.accumByHash[h], a)
	return a
}

// AggrGroup is one group's final AVG result emitted when its pane closes.
type AggrGroup struct {
	GroupKey sqltypes.SqlValue
	Avg      sqltypes.SqlValue
}

// AggrEmission is everything emitted when one pane closes.
type AggrEmission struct {
	OpenAt  sqltypes.Ts
	CloseAt sqltypes.Ts
	Groups  []AggrGroup
}

// AggrWindow is a group-aggregating window operator (FIXED or SLIDING).
type AggrWindow struct {
	panes     *Panes
	watermark *Watermark
	aggr      Aggregator
}

// NewAggrWindow builds an AggrWindow over windows of the given length and
// period (length == period for FIXED, length > period for SLIDING),
// tolerating allowedDelay of lateness before the watermark drops a row.
func NewAggrWindow(length, period, allowedDelay time.Duration, aggr Aggregator) *AggrWindow {
	w := &AggrWindow{watermark: NewWatermark(allowedDelay), aggr: aggr}
	w.panes = NewPanes(length, period, func(openAt, closeAt sqltypes.Ts) *Pane {
		return &Pane{OpenAt: openAt, CloseAt: closeAt, Aggr: newAggrPaneState()}
	})
	return w
}

// Dispatch admits r into every pane it belongs to, advances the watermark,
// and returns every pane closed as a result (each carrying its groups' final
// AVG). If r arrives after the watermark has already passed it, it is
// dropped and dispatched reports so via the second return value.
func (w *AggrWindow) Dispatch(r *row.Row) ([]AggrEmission, bool, error) {
	rowtime := r.Rowtime()
	if w.watermark.IsLate(rowtime) {
		return nil, true, nil
	}

	panes := w.panes.PanesToDispatch(rowtime)
	groupKey, err := w.aggr.GroupKey(r)
	if err != nil {
		return nil, false, err
	}
	aggrValue, err := w.aggr.AggrValue(r)
	if err != nil {
		return nil, false, err
	}
	for _, p := range panes {
		accum := p.Aggr.accumFor(groupKey)
		if accum.count == 0 {
			accum.sum = aggrValue
		} else {
			accum.sum = accum.sum.Add(aggrValue)
		}
		accum.count++
	}

	newWatermark := w.watermark.Update(rowtime)
	closed := w.panes.RemovePanesToClose(newWatermark)

	emissions := make([]AggrEmission, 0, len(closed))
	for _, p := range closed {
		groups := make([]AggrGroup, 0, len(p.Aggr.accumByHash))
		for _, bucket := range p.Aggr.accumByHash {
			for _, a := range bucket {
				groups = append(groups, AggrGroup{GroupKey: a.key, Avg: a.sum.DivInt64(a.count)})
			}
		}
		emissions = append(emissions, AggrEmission{OpenAt: p.OpenAt, CloseAt: p.CloseAt, Groups: groups})
	}
	return emissions, false, nil
}

// NumBufferedGroups returns the total number of group accumulators held
// across every currently-open pane. AVG's accumulator carries only sum+count
// per group, not the original rows, so a group count stands in for a byte
// count here. PerformanceMetrics does not read it: queue metrics come from
// queue.Stats, which covers only a window queue's waiting FIFO.
func (w *AggrWindow) NumBufferedGroups() int {
	n := 0
	for _, p := range w.panes.Snapshot() {
		for _, bucket := range p.Aggr.accumByHash {
			n += len(bucket)
		}
	}
	return n
}

// Drain discards every open pane and resets the watermark, reporting the
// number of panes dropped. A purge cycle calls this to empty pane state
// that would otherwise keep growing memory independent of the row queues
// feeding the window.
func (w *AggrWindow) Drain() int {
	n := w.panes.Drain()
	w.watermark.Reset()
	return n
}
