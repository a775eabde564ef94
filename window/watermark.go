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

// Package window implements the watermark, pane store, and the two window
// operators (aggregating, joining) that sit on a WindowQueue.
package window

import (
	"sync"
	"time"

	"github.com/springql-go/springql/sqltypes"
)

// Watermark tracks, per window, the point past which no more rows are
// expected: watermark = max(seen rowtime) - allowed_delay. It advances
// synchronously as rows are dispatched, never on a timer, so the value read
// by any two callers in causal order is always non-decreasing.
type Watermark struct {
	mu           sync.RWMutex
	current      sqltypes.Ts
	maxSeen      sqltypes.Ts
	allowedDelay time.Duration
	seenAny      bool
}

// NewWatermark creates a Watermark with the given allowed delay.
func NewWatermark(allowedDelay time.Duration) *Watermark {
	return &Watermark{allowedDelay: allowedDelay}
}

// Update folds rowtime into the watermark's view of max-seen-rowtime and
// returns the (possibly advanced) current watermark. It is a no-op w.r.t.
// advancing the watermark if rowtime is not past the max seen so far.
func (w *Watermark) Update(rowtime sqltypes.Ts) sqltypes.Ts {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.seenAny || rowtime.After(w.maxSeen) {
		w.maxSeen = rowtime
		w.seenAny = true
		candidate := sqltypes.NewTs(rowtime.Time().Add(-w.allowedDelay))
		if candidate.After(w.current) {
			w.current = candidate
		}
	}
	return w.current
}

// Current returns the current watermark without updating it.
func (w *Watermark) Current() sqltypes.Ts {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// IsLate reports whether rowtime is strictly before the current watermark,
// meaning a row at that time must be dropped rather than admitted to any
// pane.
func (w *Watermark) IsLate(rowtime sqltypes.Ts) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return rowtime.Before(w.current)
}

// Reset returns the watermark to its pre-any-row state, for a purge cycle
// that discards a window operator's pane state and must not leave a stale
// watermark rejecting rows the next, post-purge row would otherwise be
// entitled to open a fresh pane for.
func (w *Watermark) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = sqltypes.Ts{}
	w.maxSeen = sqltypes.Ts{}
	w.seenAny = false
}
