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

// Package sqltypes implements the row value model: SqlType, SqlValue and the
// comparable-family rules that govern comparison, hashing and arithmetic
// across them.
package sqltypes

// SqlType names a column's declared type.
type SqlType int

const (
	SmallInt SqlType = iota
	Integer
	BigInt
	UnsignedInteger
	UnsignedBigInt
	Float
	Text
	Blob
	Boolean
	Timestamp
	Duration
)

func (t SqlType) String() string {
	switch t {
	case SmallInt:
		return "SMALLINT"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case UnsignedInteger:
		return "UNSIGNED INTEGER"
	case UnsignedBigInt:
		return "UNSIGNED BIGINT"
	case Float:
		return "FLOAT"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	case Boolean:
		return "BOOLEAN"
	case Timestamp:
		return "TIMESTAMP"
	case Duration:
		return "DURATION"
	default:
		return "UNKNOWN"
	}
}

// Family is the comparable/hashable/arithmetic-able grouping a SqlType
// belongs to. Two SqlValues can only be compared, hashed equal, or added
// when they share a Family.
type Family int

const (
	FamilyI64Loose Family = iota
	FamilyU64Loose
	FamilyF32Loose
	FamilyText
	FamilyBlob
	FamilyBool
	FamilyTimestamp
	FamilyDuration
)

// Family returns the comparable family t belongs to.
func (t SqlType) Family() Family {
	switch t {
	case SmallInt, Integer, BigInt:
		return FamilyI64Loose
	case UnsignedInteger, UnsignedBigInt:
		return FamilyU64Loose
	case Float:
		return FamilyF32Loose
	case Text:
		return FamilyText
	case Blob:
		return FamilyBlob
	case Boolean:
		return FamilyBool
	case Timestamp:
		return FamilyTimestamp
	case Duration:
		return FamilyDuration
	default:
		return FamilyText
	}
}
