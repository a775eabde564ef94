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

package expr

import (
	"sync"

	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

// Resolver indirects a query plan's ValueExprs behind stable Labels, so a
// pump's select list and its GROUP BY/ON clause can share one registered
// expression instead of each holding its own copy.
//
// This mirrors the label indirection the original engine used to decouple
// its planner's expression trees from per-task evaluation state: a Label
// survives pipeline versioning even if the underlying ValueExpr is replaced.
type Resolver struct {
	mu    sync.RWMutex
	exprs []ValueExpr
	alias map[string]Label
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{alias: make(map[string]Label)}
}

// Register adds ve to the resolver and returns its Label.
func (res *Resolver) Register(ve ValueExpr) Label {
	res.mu.Lock()
	defer res.mu.Unlock()
	res.exprs = append(res.exprs, ve)
	return Label(len(res.exprs) - 1)
}

// RegisterAlias registers ve under a human-readable name (e.g. a select-list
// output column), returning its Label.
func (res *Resolver) RegisterAlias(name string, ve ValueExpr) Label {
	label := res.Register(ve)
	res.mu.Lock()
	res.alias[name] = label
	res.mu.Unlock()
	return label
}

// LabelOf looks up a previously-registered alias.
func (res *Resolver) LabelOf(name string) (Label, bool) {
	res.mu.RLock()
	defer res.mu.RUnlock()
	label, ok := res.alias[name]
	return label, ok
}

// Eval evaluates the ValueExpr behind label against r.
func (res *Resolver) Eval(label Label, r *row.Row) (sqltypes.SqlValue, error) {
	res.mu.RLock()
	if int(label) < 0 || int(label) >= len(res.exprs) {
		res.mu.RUnlock()
		return sqltypes.SqlValue{}, rterr.New(rterr.Sql, "no expression registered for label %d", label)
	}
	ve := res.exprs[label]
	res.mu.RUnlock()
	return ve.Eval(r)
}
