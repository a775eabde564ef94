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

	"github.com/springql-go/springql/sqltypes"
)

// Panes holds the lazily-generated, open/close lifecycle of every pane
// belonging to one window operator, sorted by OpenAt.
type Panes struct {
	panes []*Pane

	length time.Duration // window length (FIXED: = period; SLIDING: > period)
	period time.Duration // bucket period

	newPane func(openAt, closeAt sqltypes.Ts) *Pane
}

// NewPanes builds an empty Panes for a window with the given length and
// period. newPane constructs a fresh pane's aggregation/join state.
func NewPanes(length, period time.Duration, newPane func(openAt, closeAt sqltypes.Ts) *Pane) *Panes {
	return &Panes{length: length, period: period, newPane: newPane}
}

// PanesToDispatch generates any not-yet-existing panes that rowtime belongs
// to, then returns every existing pane that accepts rowtime. The caller
// must ensure rowtime is not before the watermark.
func (ps *Panes) PanesToDispatch(rowtime sqltypes.Ts) []*Pane {
	ps.generatePanesIfNotExist(rowtime)

	var out []*Pane
	for _, p := range ps.panes {
		if p.IsAcceptable(rowtime) {
			out = append(out, p)
		}
	}
	return out
}

// RemovePanesToClose removes and returns every pane whose CloseAt has been
// passed by watermark.
func (ps *Panes) RemovePanesToClose(watermark sqltypes.Ts) []*Pane {
	var closed []*Pane
	remaining := ps.panes[:0]
	for _, p := range ps.panes {
		if p.ShouldClose(watermark) {
			closed = append(closed, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	ps.panes = remaining
	return closed
}

// Snapshot returns the currently open panes, for metrics reporting. The
// returned slice must not be mutated.
func (ps *Panes) Snapshot() []*Pane {
	return ps.panes
}

// Drain discards every pane, open or not, and reports how many were
// dropped, for a purge cycle's metrics report.
func (ps *Panes) Drain() int {
	n := len(ps.panes)
	ps.panes = nil
	return n
}

// generatePanesIfNotExist runs a sort-merge-like pass over the sorted
// existing panes and the sorted list of valid open_at boundaries for
// rowtime, inserting any pane that does not yet exist.
func (ps *Panes) generatePanesIfNotExist(rowtime sqltypes.Ts) {
	idx := 0
	for _, openAt := range ps.validOpenAtS(rowtime) {
		for {
			if idx < len(ps.panes) {
				switch openAt.Compare(ps.panes[idx].OpenAt) {
				case -1:
					// A valid open_at earlier than any remaining pane means the
					// watermark should already have excluded rowtime from it.
					panic("watermark must have excluded this rowtime")
				case 0:
					goto nextOpenAt
				default:
					idx++
				}
			} else {
				ps.panes = append(ps.panes, ps.generatePane(openAt))
				goto nextOpenAt
			}
		}
	nextOpenAt:
	}
}

// validOpenAtS returns, in ascending order, every pane open_at boundary that
// could contain rowtime: for a FIXED window (length == period) this is a
// single boundary; for a SLIDING window it is every period-aligned boundary
// between the leftmost window containing rowtime and the one aligned to
// rowtime itself.
func (ps *Panes) validOpenAtS(rowtime sqltypes.Ts) []sqltypes.Ts {
	leftmost := rowtime.Add(-ps.length).Ceil(ps.period)
	if leftmost.Equal(rowtime.Add(-ps.length)) {
		leftmost = leftmost.Add(ps.period)
	}
	rightmost := rowtime.Floor(ps.period)

	var out []sqltypes.Ts
	for openAt := leftmost; !openAt.After(rightmost); openAt = openAt.Add(ps.period) {
		out = append(out, openAt)
	}
	return out
}

func (ps *Panes) generatePane(openAt sqltypes.Ts) *Pane {
	closeAt := openAt.Add(ps.length)
	return ps.newPane(openAt, closeAt)
}
