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

package queue

// Stats is satisfied by both RowQueue and WindowQueue, letting a caller
// snapshot or drain a queue's contents generically without knowing which
// kind it holds.
type Stats interface {
	Stats() (numRows, numBytes int)
	Drain() int
}

var (
	_ Stats = (*RowQueue)(nil)
	_ Stats = (*WindowQueue)(nil)
)
