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
	"encoding/json"

	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

// Row is an immutable StreamColumns tuple plus its rowtime: the value of the
// stream's promoted ROWTIME column, or the system-clock instant at which it
// was produced if no column is promoted.
type Row struct {
	columns        *Columns
	rowtime        sqltypes.Ts
	rowtimePromoted bool
}

// New builds a Row from columns. If the stream shape promotes a ROWTIME
// column, rowtime is that column's value; otherwise arrival is used.
func New(columns *Columns, arrival sqltypes.Ts) *Row {
	if ts, ok := columns.promotedRowtime(); ok {
		return &Row{columns: columns, rowtime: ts, rowtimePromoted: true}
	}
	return &Row{columns: columns, rowtime: arrival}
}

// Rowtime returns the row's rowtime.
func (r *Row) Rowtime() sqltypes.Ts {
	return r.rowtime
}

// RowtimePromoted reports whether the rowtime came from a promoted ROWTIME
// column (true) or from arrival time (false).
func (r *Row) RowtimePromoted() bool {
	return r.rowtimePromoted
}

// Columns returns the row's column values.
func (r *Row) Columns() *Columns {
	return r.columns
}

// Get returns the value of column name.
func (r *Row) Get(name string) (sqltypes.SqlValue, bool) {
	return r.columns.Get(name)
}

// MemSize returns the row's approximate memory footprint: the sum of its
// column value sizes plus a fixed per-row overhead for the rowtime and
// bookkeeping fields.
func (r *Row) MemSize() int {
	const overhead = 24
	return r.columns.MemSize() + overhead
}

// Equal reports whether r and other hold equal columns. NULL columns make
// rows unequal.
func (r *Row) Equal(other *Row) bool {
	return r.columns.Equal(other.columns)
}

// ToJSON renders the row's non-NULL columns as a JSON object. arrival_rowtime
// is added only when the row's rowtime was not promoted from a declared
// column, so that round-tripping a stream with no ROWTIME column still
// surfaces when the row was produced.
func (r *Row) ToJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(r.columns.Values())+1)
	for _, def := range r.columns.Shape().Columns() {
		v, _ := r.Get(def.Name)
		if v.IsNull() {
			continue
		}
		obj[def.Name] = v.ToInterface()
	}
	if !r.rowtimePromoted {
		obj["arrival_rowtime"] = r.rowtime.String()
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, rterr.Wrap(rterr.InvalidFormat, err, "cannot marshal row to JSON")
	}
	return b, nil
}

// FromJSON builds a Row from a foreign JSON object, per shape.
func FromJSON(shape *Shape, data []byte, arrival sqltypes.Ts) (*Row, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, rterr.Wrap(rterr.InvalidFormat, err, "cannot unmarshal JSON row")
	}
	byName := make(map[string]sqltypes.SqlValue, len(shape.Columns()))
	for _, def := range shape.Columns() {
		raw, present := obj[def.Name]
		v, err := sqltypes.FromInterface(valueOrNil(present, raw), def.Type, def.Nullable)
		if err != nil {
			return nil, err
		}
		byName[def.Name] = v
	}
	cols, err := NewColumns(shape, byName)
	if err != nil {
		return nil, err
	}
	return New(cols, arrival), nil
}

func valueOrNil(present bool, raw interface{}) interface{} {
	if !present {
		return nil
	}
	return raw
}
