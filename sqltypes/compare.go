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

package sqltypes

import (
	"strings"

	"github.com/springql-go/springql/rterr"
)

// CompareResult is the outcome of comparing two SqlValues.
type CompareResult int

const (
	Lt CompareResult = iota
	Eq
	Gt
)

// Compare compares v and other within their shared comparable family. It
// errors if the two values belong to different families; NULL compared with
// anything is a caller error here (callers must special-case NULL before
// calling Compare — see Equal/LessThan which fold NULL into "false").
func (v SqlValue) Compare(other SqlValue) (CompareResult, error) {
	if v.null || other.null {
		return 0, rterr.New(rterr.Null, "cannot compare NULL")
	}
	famA, famB := v.typ.Family(), other.typ.Family()
	if famA != famB {
		return 0, rterr.New(rterr.Sql, "cannot compare %s and %s", v.typ, other.typ)
	}
	switch famA {
	case FamilyI64Loose:
		a, _ := v.unpackI64()
		b, _ := other.unpackI64()
		return cmpI64(a, b), nil
	case FamilyU64Loose:
		a, _ := v.unpackU64()
		b, _ := other.unpackU64()
		return cmpU64(a, b), nil
	case FamilyF32Loose:
		a, _ := v.unpackF32()
		b, _ := other.unpackF32()
		return cmpF32(a, b), nil
	case FamilyText:
		a, _ := v.unpackText()
		b, _ := other.unpackText()
		return cmpInt(strings.Compare(a, b)), nil
	case FamilyBool:
		a, _ := v.unpackBool()
		b, _ := other.unpackBool()
		return cmpBool(a, b), nil
	case FamilyTimestamp:
		a, _ := v.unpackTs()
		b, _ := other.unpackTs()
		return cmpInt(a.Compare(b)), nil
	default:
		return 0, rterr.New(rterr.Sql, "%s is not an orderable family", v.typ)
	}
}

// Equal reports whether v and other represent the same value within a
// shared family. NULL is never equal to anything, including another NULL
// (SQL three-valued-logic semantics at the boolean-context boundary — callers
// needing row-equality semantics, where NULL makes rows unequal, should use
// this directly).
func (v SqlValue) Equal(other SqlValue) bool {
	if v.null || other.null {
		return false
	}
	if v.typ.Family() != other.typ.Family() {
		return false
	}
	res, err := v.Compare(other)
	return err == nil && res == Eq
}

func cmpI64(a, b int64) CompareResult {
	switch {
	case a < b:
		return Lt
	case a > b:
		return Gt
	default:
		return Eq
	}
}

func cmpU64(a, b uint64) CompareResult {
	switch {
	case a < b:
		return Lt
	case a > b:
		return Gt
	default:
		return Eq
	}
}

func cmpF32(a, b float32) CompareResult {
	switch {
	case a < b:
		return Lt
	case a > b:
		return Gt
	default:
		return Eq
	}
}

func cmpBool(a, b bool) CompareResult {
	if a == b {
		return Eq
	}
	if !a && b {
		return Lt
	}
	return Gt
}

func cmpInt(i int) CompareResult {
	switch {
	case i < 0:
		return Lt
	case i > 0:
		return Gt
	default:
		return Eq
	}
}
