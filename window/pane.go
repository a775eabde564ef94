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
	"github.com/springql-go/springql/sqltypes"
)

// Pane is a half-open time interval [OpenAt, CloseAt) holding per-group
// aggregation state or a join-buffer pair. Panes are generated lazily when
// the first row belonging to them arrives, and closed when the watermark
// passes CloseAt.
type Pane struct {
	OpenAt  sqltypes.Ts
	CloseAt sqltypes.Ts

	Aggr *aggrPaneState
	Join *joinPaneState
}

// IsAcceptable reports whether rowtime falls within this pane's half-open
// interval.
func (p *Pane) IsAcceptable(rowtime sqltypes.Ts) bool {
	return !rowtime.Before(p.OpenAt) && rowtime.Before(p.CloseAt)
}

// ShouldClose reports whether the watermark has advanced past this pane's
// close boundary, meaning no further on-time row can be admitted to it.
func (p *Pane) ShouldClose(watermark sqltypes.Ts) bool {
	return !watermark.Before(p.CloseAt)
}
