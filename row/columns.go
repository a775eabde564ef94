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

package row

import (
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

// Columns holds one ordered tuple of SqlValues conforming to a Shape.
type Columns struct {
	shape  *Shape
	values []sqltypes.SqlValue
}

// NewColumns builds Columns from a name -> value map, validating that every
// shape-declared column is present, non-nullable columns are not NULL, and
// converting each value into its declared type within its comparable
// family.
func NewColumns(shape *Shape, byName map[string]sqltypes.SqlValue) (*Columns, error) {
	values := make([]sqltypes.SqlValue, len(shape.columns))
	for i, def := range shape.columns {
		v, ok := byName[def.Name]
		if !ok {
			return nil, rterr.New(rterr.Sql, "missing value for column %q", def.Name)
		}
		if v.IsNull() {
			if !def.Nullable {
				return nil, rterr.New(rterr.Sql, "column %q is NOT NULL but received NULL", def.Name)
			}
			values[i] = v
			continue
		}
		converted, err := v.TryConvert(def.Type)
		if err != nil {
			return nil, rterr.Wrap(rterr.Sql, err, "column %q", def.Name)
		}
		values[i] = converted
	}
	return &Columns{shape: shape, values: values}, nil
}

// Shape returns the stream shape this tuple conforms to.
func (c *Columns) Shape() *Shape {
	return c.shape
}

// Get returns the value of column name.
func (c *Columns) Get(name string) (sqltypes.SqlValue, bool) {
	idx, ok := c.shape.IndexOf(name)
	if !ok {
		return sqltypes.SqlValue{}, false
	}
	return c.values[idx], true
}

// At returns the value at position idx (shape column order).
func (c *Columns) At(idx int) sqltypes.SqlValue {
	return c.values[idx]
}

// Values returns the full ordered value tuple.
func (c *Columns) Values() []sqltypes.SqlValue {
	return c.values
}

// promotedRowtime returns the value of the stream's ROWTIME column, if one
// is promoted.
func (c *Columns) promotedRowtime() (sqltypes.Ts, bool) {
	name, ok := c.shape.PromotedRowtime()
	if !ok {
		return sqltypes.Ts{}, false
	}
	v, _ := c.Get(name)
	ts, err := v.Timestamp()
	if err != nil {
		return sqltypes.Ts{}, false
	}
	return ts, true
}

// MemSize returns the approximate byte footprint of the column values.
func (c *Columns) MemSize() int {
	total := 0
	for _, v := range c.values {
		total += v.MemSize()
	}
	return total
}

// Equal reports whether c and other hold the same values in the same shape.
// Per spec, NULL makes rows unequal even to another NULL.
func (c *Columns) Equal(other *Columns) bool {
	if len(c.values) != len(other.values) {
		return false
	}
	for i := range c.values {
		if !c.values[i].Equal(other.values[i]) {
			return false
		}
	}
	return true
}
