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

import "github.com/springql-go/springql/rterr"

// Add sums v and other within their shared numeric family. Mixing families,
// or either side being NULL, yields NULL (not an error) per spec — arithmetic
// on incompatible operands is a silent NULL, not a failure, because AVG over
// a pane must tolerate NULL-valued columns without aborting the aggregation.
func (v SqlValue) Add(other SqlValue) SqlValue {
	if v.null || other.null {
		return Null()
	}
	if v.typ.Family() != other.typ.Family() {
		return Null()
	}
	switch v.typ.Family() {
	case FamilyI64Loose:
		a, _ := v.unpackI64()
		b, _ := other.unpackI64()
		return NewBigInt(a + b)
	case FamilyU64Loose:
		a, _ := v.unpackU64()
		b, _ := other.unpackU64()
		return NewUnsignedBigInt(a + b)
	case FamilyF32Loose:
		a, _ := v.unpackF32()
		b, _ := other.unpackF32()
		return NewFloat(a + b)
	default:
		return Null()
	}
}

// Mul multiplies v and other within their shared numeric family, NULL on
// mismatch or either side NULL.
func (v SqlValue) Mul(other SqlValue) SqlValue {
	if v.null || other.null {
		return Null()
	}
	if v.typ.Family() != other.typ.Family() {
		return Null()
	}
	switch v.typ.Family() {
	case FamilyI64Loose:
		a, _ := v.unpackI64()
		b, _ := other.unpackI64()
		return NewBigInt(a * b)
	case FamilyU64Loose:
		a, _ := v.unpackU64()
		b, _ := other.unpackU64()
		return NewUnsignedBigInt(a * b)
	case FamilyF32Loose:
		a, _ := v.unpackF32()
		b, _ := other.unpackF32()
		return NewFloat(a * b)
	default:
		return Null()
	}
}

// DivInt64 divides a BIGINT-family accumulator by a plain row count,
// producing the FLOAT result AVG needs. Division by zero yields NULL (an
// empty pane never emits).
func (v SqlValue) DivInt64(count int64) SqlValue {
	if v.null || count == 0 {
		return Null()
	}
	switch v.typ.Family() {
	case FamilyI64Loose:
		a, _ := v.unpackI64()
		return NewFloat(float32(a) / float32(count))
	case FamilyU64Loose:
		a, _ := v.unpackU64()
		return NewFloat(float32(a) / float32(count))
	case FamilyF32Loose:
		a, _ := v.unpackF32()
		return NewFloat(a / float32(count))
	default:
		return Null()
	}
}

// Negate negates v. Only numeric families negate; UnsignedInteger/
// UnsignedBigInt/Text/Blob/Boolean/Timestamp/Duration error.
func (v SqlValue) Negate() (SqlValue, error) {
	if v.null {
		return Null(), nil
	}
	switch v.typ {
	case SmallInt:
		return NewSmallInt(int16(-v.i64)), nil
	case Integer:
		return NewInteger(int32(-v.i64)), nil
	case BigInt:
		return NewBigInt(-v.i64), nil
	case Float:
		return NewFloat(-v.f32), nil
	default:
		return SqlValue{}, rterr.New(rterr.Sql, "%s cannot negate", v.typ)
	}
}
