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

// Package expr implements value expression evaluation: column references,
// literals, built-in function calls, and a general arithmetic/boolean
// sublanguage backed by expr-lang/expr. Expressions are registered once and
// referenced thereafter by an opaque Label, so a query plan can share one
// expression across a select list and a GROUP BY clause without
// re-evaluating or re-parsing it.
package expr

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/springql-go/springql/functions"
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

// Label is an opaque handle to a registered ValueExpr.
type Label int

// ValueExpr is something that can be evaluated against a row to produce a
// SqlValue.
type ValueExpr interface {
	Eval(r *row.Row) (sqltypes.SqlValue, error)
}

// ColumnRef resolves to the named column of the row being evaluated.
type ColumnRef struct {
	Column string
}

func (c ColumnRef) Eval(r *row.Row) (sqltypes.SqlValue, error) {
	v, ok := r.Get(c.Column)
	if !ok {
		return sqltypes.SqlValue{}, rterr.New(rterr.Sql, "no such column %q", c.Column)
	}
	return v, nil
}

// Literal always evaluates to a fixed SqlValue.
type Literal struct {
	Value sqltypes.SqlValue
}

func (l Literal) Eval(*row.Row) (sqltypes.SqlValue, error) {
	return l.Value, nil
}

// FuncCall evaluates its arguments then invokes a registered scalar function
// (FLOOR_TIME, DURATION_SECS, DURATION_MILLIS, ...).
type FuncCall struct {
	Name string
	Args []ValueExpr
}

func (f FuncCall) Eval(r *row.Row) (sqltypes.SqlValue, error) {
	args := make([]sqltypes.SqlValue, len(f.Args))
	for i, a := range f.Args {
		v, err := a.Eval(r)
		if err != nil {
			return sqltypes.SqlValue{}, err
		}
		args[i] = v
	}
	return functions.Execute(f.Name, args)
}

// General is a general-purpose boolean/arithmetic expression evaluated by
// expr-lang/expr over a map of the row's columns, used for pump WHERE/ON
// predicates and computed projections beyond plain column references and
// function calls.
type General struct {
	Source  string
	program *vm.Program
}

// NewGeneral compiles source once; evaluation reuses the compiled program.
func NewGeneral(source string) (*General, error) {
	program, err := expr.Compile(source)
	if err != nil {
		return nil, rterr.Wrap(rterr.Sql, err, "cannot compile expression %q", source)
	}
	return &General{Source: source, program: program}, nil
}

func (g *General) Eval(r *row.Row) (sqltypes.SqlValue, error) {
	env := make(map[string]interface{})
	for _, def := range r.Columns().Shape().Columns() {
		v, _ := r.Get(def.Name)
		env[def.Name] = v.ToInterface()
	}
	out, err := expr.Run(g.program, env)
	if err != nil {
		return sqltypes.SqlValue{}, rterr.Wrap(rterr.Sql, err, "cannot evaluate expression %q", g.Source)
	}
	return valueOf(out)
}

func valueOf(out interface{}) (sqltypes.SqlValue, error) {
	switch v := out.(type) {
	case nil:
		return sqltypes.Null(), nil
	case bool:
		return sqltypes.NewBoolean(v), nil
	case int:
		return sqltypes.NewBigInt(int64(v)), nil
	case int64:
		return sqltypes.NewBigInt(v), nil
	case float64:
		return sqltypes.NewFloat(float32(v)), nil
	case string:
		return sqltypes.NewText(v), nil
	default:
		return sqltypes.SqlValue{}, rterr.New(rterr.Sql, "unsupported expression result type %T", out)
	}
}
