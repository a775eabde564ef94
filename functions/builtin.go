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

package functions

import (
	"fmt"
	"time"

	"github.com/springql-go/springql/sqltypes"
)

// floorTime implements FLOOR_TIME(ts, duration): rounds ts down to the
// nearest multiple of duration.
func floorTime(args []sqltypes.SqlValue) (sqltypes.SqlValue, error) {
	ts, err := args[0].Timestamp()
	if err != nil {
		return sqltypes.SqlValue{}, fmt.Errorf("FLOOR_TIME: %w", err)
	}
	d, err := args[1].Duration()
	if err != nil {
		return sqltypes.SqlValue{}, fmt.Errorf("FLOOR_TIME: %w", err)
	}
	return sqltypes.NewTimestamp(ts.Floor(d.Duration())), nil
}

// durationMillis implements DURATION_MILLIS(n): an n-millisecond duration.
func durationMillis(args []sqltypes.SqlValue) (sqltypes.SqlValue, error) {
	n, err := args[0].Int64()
	if err != nil {
		return sqltypes.SqlValue{}, fmt.Errorf("DURATION_MILLIS: %w", err)
	}
	return sqltypes.NewDuration(sqltypes.NewDur(time.Duration(n) * time.Millisecond)), nil
}

// durationSecs implements DURATION_SECS(n): an n-second duration.
func durationSecs(args []sqltypes.SqlValue) (sqltypes.SqlValue, error) {
	n, err := args[0].Int64()
	if err != nil {
		return sqltypes.SqlValue{}, fmt.Errorf("DURATION_SECS: %w", err)
	}
	return sqltypes.NewDuration(sqltypes.NewDur(time.Duration(n) * time.Second)), nil
}
