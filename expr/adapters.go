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
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/sqltypes"
)

// GroupAggregator adapts two registered labels (a GROUP BY key expression and
// an AVG argument expression) to window.Aggregator, so a pump's
// window.AggrWindow can be built without the window package ever depending
// on expr.
type GroupAggregator struct {
	Resolver  *Resolver
	GroupKeyL Label
	AggrArgL  Label
}

func (g GroupAggregator) GroupKey(r *row.Row) (sqltypes.SqlValue, error) {
	return g.Resolver.Eval(g.GroupKeyL, r)
}

func (g GroupAggregator) AggrValue(r *row.Row) (sqltypes.SqlValue, error) {
	return g.Resolver.Eval(g.AggrArgL, r)
}

// EqualityJoiner adapts a pair of labels, one evaluated against the left row
// and one against the right row, to window.Joiner: the join condition is
// satisfied when the two evaluate equal. This covers the common
// equi-join ON clause; richer ON predicates can supply their own Joiner.
type EqualityJoiner struct {
	Resolver *Resolver
	LeftL    Label
	RightL   Label
}

func (j EqualityJoiner) Matches(left, right *row.Row) (bool, error) {
	lv, err := j.Resolver.Eval(j.LeftL, left)
	if err != nil {
		return false, err
	}
	rv, err := j.Resolver.Eval(j.RightL, right)
	if err != nil {
		return false, err
	}
	return lv.Equal(rv), nil
}
