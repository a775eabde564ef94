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

package sqltypes

import (
	"fmt"
	"time"
)

// Ts is a UTC, nanosecond-resolution instant. It is the value type backing
// the Timestamp SqlType and window bucket arithmetic.
type Ts struct {
	t time.Time
}

// NewTs builds a Ts from a time.Time, normalizing it to UTC.
func NewTs(t time.Time) Ts {
	return Ts{t: t.UTC()}
}

// NowTs returns the current instant as a Ts.
func NowTs() Ts {
	return NewTs(time.Now())
}

// Time returns the underlying time.Time, in UTC.
func (t Ts) Time() time.Time {
	return t.t
}

// UnixNano returns nanoseconds since the Unix epoch.
func (t Ts) UnixNano() int64 {
	return t.t.UnixNano()
}

// Before reports whether t is strictly earlier than other.
func (t Ts) Before(other Ts) bool {
	return t.t.Before(other.t)
}

// After reports whether t is strictly later than other.
func (t Ts) After(other Ts) bool {
	return t.t.After(other.t)
}

// Equal reports whether t and other represent the same instant.
func (t Ts) Equal(other Ts) bool {
	return t.t.Equal(other.t)
}

// Compare returns -1, 0 or 1 as t is before, equal to, or after other.
func (t Ts) Compare(other Ts) int {
	switch {
	case t.t.Before(other.t):
		return -1
	case t.t.After(other.t):
		return 1
	default:
		return 0
	}
}

// Add returns t shifted by d.
func (t Ts) Add(d time.Duration) Ts {
	return NewTs(t.t.Add(d))
}

// Sub returns the duration between t and other.
func (t Ts) Sub(other Ts) time.Duration {
	return t.t.Sub(other.t)
}

// Floor rounds t down to the nearest multiple of resolution, measured from
// the Unix epoch.
func (t Ts) Floor(resolution time.Duration) Ts {
	if resolution <= 0 {
		return t
	}
	nano := t.UnixNano()
	res := resolution.Nanoseconds()
	floorNano := (nano / res) * res
	if nano < 0 && nano%res != 0 {
		floorNano -= res
	}
	return NewTs(time.Unix(0, floorNano).UTC())
}

// Ceil rounds t up to the nearest multiple of resolution. If t already lies
// exactly on a boundary, Ceil returns t unchanged (it does not add a full
// resolution).
func (t Ts) Ceil(resolution time.Duration) Ts {
	floor := t.Floor(resolution)
	if floor.Equal(t) {
		return floor
	}
	return floor.Add(resolution)
}

// String renders t in the "2006-01-02 15:04:05.999999999" layout, without a
// time-zone offset.
func (t Ts) String() string {
	return t.t.Format("2006-01-02 15:04:05.999999999")
}

// ParseTs parses a timestamp string, trying RFC3339 first and falling back
// to the engine's native "2006-01-02 15:04:05.999999999" layout.
func ParseTs(s string) (Ts, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewTs(t), nil
	}
	t, err := time.Parse("2006-01-02 15:04:05.999999999", s)
	if err != nil {
		return Ts{}, fmt.Errorf("cannot parse timestamp %q: %w", s, err)
	}
	return NewTs(t), nil
}
