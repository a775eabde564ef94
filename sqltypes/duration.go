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

import "time"

// Dur wraps a time.Duration. It exists as its own SqlValue variant because
// durations never appear as a persisted stream column, only as the
// intermediate result of DURATION_MILLIS/DURATION_SECS feeding a window
// specification.
type Dur struct {
	d time.Duration
}

// NewDur wraps d.
func NewDur(d time.Duration) Dur {
	return Dur{d: d}
}

// Duration returns the underlying time.Duration.
func (d Dur) Duration() time.Duration {
	return d.d
}

func (d Dur) String() string {
	return d.d.String()
}
