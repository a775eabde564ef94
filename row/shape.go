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

// Package row implements the stream shape and row value model: the ordered
// column list a stream conforms to, and the immutable row values that flow
// through queues and tasks.
package row

import (
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

// ColumnDef declares one column of a stream: its name, type and nullability.
type ColumnDef struct {
	Name     string
	Type     sqltypes.SqlType
	Nullable bool
}

// Shape is the ordered list of columns a stream's rows conform to, plus an
// optional promoted ROWTIME column.
type Shape struct {
	columns         []ColumnDef
	rowtimeColumn   string
	hasRowtimeCol   bool
	nameToIdx       map[string]int
}

// NewShape builds a Shape from an ordered column list. rowtimeColumn, if
// non-empty, names the column promoted to ROWTIME; it must appear in cols
// and be of TIMESTAMP type.
func NewShape(cols []ColumnDef, rowtimeColumn string) (*Shape, error) {
	nameToIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := nameToIdx[c.Name]; dup {
			return nil, rterr.New(rterr.InvalidOption, "duplicate column %q in stream shape", c.Name)
		}
		nameToIdx[c.Name] = i
	}
	s := &Shape{columns: cols, nameToIdx: nameToIdx}
	if rowtimeColumn != "" {
		idx, ok := nameToIdx[rowtimeColumn]
		if !ok {
			return nil, rterr.New(rterr.InvalidOption, "ROWTIME column %q not declared", rowtimeColumn)
		}
		if cols[idx].Type != sqltypes.Timestamp {
			return nil, rterr.New(rterr.InvalidOption, "ROWTIME column %q must be TIMESTAMP", rowtimeColumn)
		}
		s.rowtimeColumn = rowtimeColumn
		s.hasRowtimeCol = true
	}
	return s, nil
}

// Columns returns the ordered column definitions.
func (s *Shape) Columns() []ColumnDef {
	return s.columns
}

// IndexOf returns the position of name in the shape.
func (s *Shape) IndexOf(name string) (int, bool) {
	idx, ok := s.nameToIdx[name]
	return idx, ok
}

// PromotedRowtime returns the name of the column promoted to ROWTIME, if
// any.
func (s *Shape) PromotedRowtime() (string, bool) {
	return s.rowtimeColumn, s.hasRowtimeCol
}
