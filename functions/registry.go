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

// Package functions implements the runtime's built-in SQL function library:
// FLOOR_TIME/DURATION_MILLIS/DURATION_SECS for value expressions, and the
// AVG aggregate function recognized by pump construction commands.
package functions

import (
	"strings"
	"sync"

	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

// FunctionType classifies a registered function.
type FunctionType string

const (
	// TypeScalar functions evaluate per-row, inside a value expression.
	TypeScalar FunctionType = "scalar"
	// TypeAggregate functions fold over every row admitted to a pane.
	TypeAggregate FunctionType = "aggregate"
)

// ScalarFunc evaluates a scalar function against already-evaluated
// arguments.
type ScalarFunc func(args []sqltypes.SqlValue) (sqltypes.SqlValue, error)

// Function is one entry in the registry.
type Function struct {
	Name    string
	Type    FunctionType
	MinArgs int
	MaxArgs int // -1 means unlimited
	Scalar  ScalarFunc
}

// Validate checks the argument count against the function's declared arity.
func (f *Function) Validate(args []sqltypes.SqlValue) error {
	if len(args) < f.MinArgs {
		return rterr.New(rterr.Sql, "function %s requires at least %d argument(s), got %d", f.Name, f.MinArgs, len(args))
	}
	if f.MaxArgs >= 0 && len(args) > f.MaxArgs {
		return rterr.New(rterr.Sql, "function %s accepts at most %d argument(s), got %d", f.Name, f.MaxArgs, len(args))
	}
	return nil
}

// Registry manages function registration and lookup.
type Registry struct {
	mu         sync.RWMutex
	functions  map[string]*Function
	categories map[FunctionType][]*Function
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return &Registry{
		functions:  make(map[string]*Function),
		categories: make(map[FunctionType][]*Function),
	}
}

// Register adds fn to the registry, keyed by its lower-cased name.
func (r *Registry) Register(fn *Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(fn.Name)
	if _, exists := r.functions[name]; exists {
		return rterr.New(rterr.Sql, "function %s already registered", name)
	}
	r.functions[name] = fn
	r.categories[fn.Type] = append(r.categories[fn.Type], fn)
	return nil
}

// Get retrieves a function by name, case-insensitively.
func (r *Registry) Get(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[strings.ToLower(name)]
	return fn, ok
}

// GetByType returns every function of the given type.
func (r *Registry) GetByType(fnType FunctionType) []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories[fnType]
}

func Register(fn *Function) error           { return globalRegistry.Register(fn) }
func Get(name string) (*Function, bool)     { return globalRegistry.Get(name) }
func GetByType(t FunctionType) []*Function  { return globalRegistry.GetByType(t) }

// Execute looks up name and evaluates it against args.
func Execute(name string, args []sqltypes.SqlValue) (sqltypes.SqlValue, error) {
	fn, ok := Get(name)
	if !ok {
		return sqltypes.SqlValue{}, rterr.New(rterr.Sql, "function %s not found", name)
	}
	if err := fn.Validate(args); err != nil {
		return sqltypes.SqlValue{}, err
	}
	if fn.Scalar == nil {
		return sqltypes.SqlValue{}, rterr.New(rterr.Sql, "function %s has no scalar evaluator", name)
	}
	return fn.Scalar(args)
}

func init() {
	_ = Register(&Function{Name: "FLOOR_TIME", Type: TypeScalar, MinArgs: 2, MaxArgs: 2, Scalar: floorTime})
	_ = Register(&Function{Name: "DURATION_MILLIS", Type: TypeScalar, MinArgs: 1, MaxArgs: 1, Scalar: durationMillis})
	_ = Register(&Function{Name: "DURATION_SECS", Type: TypeScalar, MinArgs: 1, MaxArgs: 1, Scalar: durationSecs})

	// AVG has no scalar evaluator: the window operator folds it as
	// sum+count incrementally (see window.AggrWindow); this entry only lets
	// pump construction commands validate that AVG is a known aggregate.
	_ = Register(&Function{Name: "AVG", Type: TypeAggregate, MinArgs: 1, MaxArgs: 1})
}
