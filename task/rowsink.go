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

package task

import (
	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/row"
)

// RowSink accepts one completed row at the end of a source or pump's
// Execute call. Both queue kinds satisfy it, so a single producer can fan
// out to a plain downstream pump (RowQueue) and a windowed downstream pump
// (WindowQueue) alike, without the producer caring which its consumer is.
type RowSink interface {
	Put(r *row.Row)
}

var (
	_ RowSink = (*queue.RowQueue)(nil)
	_ RowSink = (*queue.WindowQueue)(nil)
)
