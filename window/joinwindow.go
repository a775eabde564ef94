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

// Joiner decides whether a left and right row satisfy the join condition.
// Supplied by the task layer, which owns expression evaluation.
type Joiner interface {
	Matches(left, right *row.Row) (bool, error)
}

// Side identifies which upstream of a two-input join a row came from.
type Side int

const (
	LeftSide Side = iota
	RightSide
)

type joinPaneState struct {
	left  []*row.Row
	right []*row.Row
}

// JoinEmission is one output row of a closed join pane: a matched left+right
// pair, or a left row with no match (right fields all NULL, LEFT OUTER
// semantics).
type JoinEmission struct {
	Left  *row.Row
	Right *row.Row // nil when unmatched
}

// JoinPaneClosed is everything emitted when one join pane closes.
type JoinPaneClosed struct {
	OpenAt  sqltypes.Ts
	CloseAt sqltypes.Ts
	Rows    []JoinEmission
}

// JoinWindow is a LEFT OUTER JOIN window operator over two upstreams sharing
// one fixed time window. A pane finalizes on close: every admitted left row
// that never matched a right row emits with a NULL right side; right rows
// admitted after their pane has already closed are dropped, since the join
// cannot retroactively revisit a finalized pane.
type JoinWindow struct {
	panes     *Panes
	watermark *Watermark
	joiner    Joiner
}

// NewJoinWindow builds a JoinWindow over fixed windows of the given length
// (== period for a FIXED window join), tolerating allowedDelay of lateness.
func NewJoinWindow(length, allowedDelay time.Duration, joiner Joiner) *JoinWindow {
	w := &JoinWindow{watermark: NewWatermark(allowedDelay), joiner: joiner}
	w.panes = NewPanes(length, length, func(openAt, closeAt sqltypes.Ts) *Pane {
		return &Pane{OpenAt: openAt, CloseAt: closeAt, Join: &joinPaneState{}}
	})
	return w
}

// DispatchLeft admits a left-side row, advances the watermark, and returns
// any panes closed as a result.
func (w *JoinWindow) DispatchLeft(r *row.Row) ([]JoinPaneClosed, bool, error) {
	return w.dispatch(r, LeftSide)
}

// DispatchRight admits a right-side row. If the row's pane has already
// closed (late right-side arrival), it is silently dropped rather than
// reopening a finalized pane.
func (w *JoinWindow) DispatchRight(r *row.Row) ([]JoinPaneClosed, bool, error) {
	return w.dispatch(r, RightSide)
}

func (w *JoinWindow) dispatch(r *row.Row, side Side) ([]JoinPaneClosed, bool, error) {
	rowtime := r.Rowtime()
	if w.watermark.IsLate(rowtime) {
		return nil, true, nil
	}

	panes := w.panes.PanesToDispatch(rowtime)
	for _, p := range panes {
		if side == LeftSide {
			p.Join.left = append(p.Join.left, r)
		} else {
			p.Join.right = append(p.Join.right, r)
		}
	}

	newWatermark := w.watermark.Update(rowtime)
	closed := w.panes.RemovePanesToClose(newWatermark)

	out := make([]JoinPaneClosed, 0, len(closed))
	for _, p := range closed {
		rows, err := w.finalize(p)
		if err != nil {
			return nil, false, err
		}
		out = append(out, JoinPaneClosed{OpenAt: p.OpenAt, CloseAt: p.CloseAt, Rows: rows})
	}
	return out, false, nil
}

func (w *JoinWindow) finalize(p *Pane) ([]JoinEmission, error) {
	var emissions []JoinEmission
	for _, left := range p.Join.left {
		matched := false
		for _, right := range p.Join.right {
			ok, err := w.joiner.Matches(left, right)
			if err != nil {
				return nil, err
			}
			if ok {
				emissions = append(emissions, JoinEmission{Left: left, Right: right})
				matched = true
			}
		}
		if !matched {
			emissions = append(emissions, JoinEmission{Left: left, Right: nil})
		}
	}
	return emissions, nil
}

// NumBufferedRows returns the total number of left+right rows buffered
// across every currently-open pane. PerformanceMetrics does not read it:
// queue metrics come from queue.Stats, which covers only the waiting FIFO.
func (w *JoinWindow) NumBufferedRows() int {
	n := 0
	for _, p := range w.panes.Snapshot() {
		n += len(p.Join.left) + len(p.Join.right)
	}
	return n
}

// NumBufferedBytes returns the memory footprint of every row buffered
// across every currently-open pane.
func (w *JoinWindow) NumBufferedBytes() int {
	total := 0
	for _, p := range w.panes.Snapshot() {
		for _, r := range p.Join.left {
			total += r.MemSize()
		}
		for _, r := range p.Join.right {
			total += r.MemSize()
		}
	}
	return total
}

// Drain discards every open pane and resets the watermark, reporting the
// number of panes dropped.
func (w *JoinWindow) Drain() int {
	n := w.panes.Drain()
	w.watermark.Reset()
	return n
}
