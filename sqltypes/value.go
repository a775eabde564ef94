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
	"fmt"
	"math/rand/v2"
	"unsafe"

	"github.com/spf13/cast"

	"github.com/springql-go/springql/rterr"
)

// SqlValue is either NULL or a not-null value tagged with a SqlType. The
// zero value is NULL.
type SqlValue struct {
	null bool
	typ  SqlType

	i64  int64
	u64  uint64
	f32  float32
	text string
	blob []byte
	b    bool
	ts   Ts
	dur  Dur
}

// Null returns the NULL SqlValue.
func Null() SqlValue {
	return SqlValue{null: true}
}

// IsNull reports whether v is NULL.
func (v SqlValue) IsNull() bool {
	return v.null
}

// SqlType returns v's declared type. Calling it on NULL is meaningless but
// harmless; it returns the zero SqlType.
func (v SqlValue) SqlType() SqlType {
	return v.typ
}

func NewSmallInt(i int16) SqlValue        { return SqlValue{typ: SmallInt, i64: int64(i)} }
func NewInteger(i int32) SqlValue         { return SqlValue{typ: Integer, i64: int64(i)} }
func NewBigInt(i int64) SqlValue          { return SqlValue{typ: BigInt, i64: i} }
func NewUnsignedInteger(u uint32) SqlValue { return SqlValue{typ: UnsignedInteger, u64: uint64(u)} }
func NewUnsignedBigInt(u uint64) SqlValue  { return SqlValue{typ: UnsignedBigInt, u64: u} }
func NewFloat(f float32) SqlValue          { return SqlValue{typ: Float, f32: f} }
func NewText(s string) SqlValue            { return SqlValue{typ: Text, text: s} }
func NewBlob(b []byte) SqlValue            { return SqlValue{typ: Blob, blob: b} }
func NewBoolean(b bool) SqlValue           { return SqlValue{typ: Boolean, b: b} }
func NewTimestamp(ts Ts) SqlValue          { return SqlValue{typ: Timestamp, ts: ts} }
func NewDuration(d Dur) SqlValue           { return SqlValue{typ: Duration, dur: d} }

// MemSize returns the approximate number of bytes v occupies, used for
// per-row and per-pane memory accounting.
func (v SqlValue) MemSize() int {
	if v.null {
		return 0
	}
	switch v.typ {
	case SmallInt:
		return 2
	case Integer, UnsignedInteger:
		return 4
	case BigInt, UnsignedBigInt:
		return 8
	case Float:
		return 4
	case Text:
		return len(v.text)
	case Blob:
		return len(v.blob)
	case Boolean:
		return 1
	case Timestamp:
		return int(unsafe.Sizeof(int64(0)))
	case Duration:
		return int(unsafe.Sizeof(int64(0)))
	default:
		return 0
	}
}

// String renders v the way the engine prints it in logs and TEXT-casts.
func (v SqlValue) String() string {
	if v.null {
		return "NULL"
	}
	switch v.typ {
	case SmallInt, Integer, BigInt:
		return fmt.Sprintf("%d", v.i64)
	case UnsignedInteger, UnsignedBigInt:
		return fmt.Sprintf("%d", v.u64)
	case Float:
		return fmt.Sprintf("%v", v.f32)
	case Text:
		return fmt.Sprintf("%q", v.text)
	case Blob:
		return fmt.Sprintf("%v", v.blob)
	case Boolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case Timestamp:
		return v.ts.String()
	case Duration:
		return v.dur.String()
	default:
		return "?"
	}
}

// unpackI64 loosely-gets v as int64. Valid only for the i64-loose family.
func (v SqlValue) unpackI64() (int64, error) {
	switch v.typ {
	case SmallInt, Integer, BigInt:
		return v.i64, nil
	default:
		return 0, rterr.New(rterr.Sql, "%s is not in the i64-loose family", v.typ)
	}
}

func (v SqlValue) unpackU64() (uint64, error) {
	switch v.typ {
	case UnsignedInteger, UnsignedBigInt:
		return v.u64, nil
	default:
		return 0, rterr.New(rterr.Sql, "%s is not in the u64-loose family", v.typ)
	}
}

func (v SqlValue) unpackF32() (float32, error) {
	if v.typ != Float {
		return 0, rterr.New(rterr.Sql, "%s is not in the f32-loose family", v.typ)
	}
	return v.f32, nil
}

func (v SqlValue) unpackText() (string, error) {
	if v.typ != Text {
		return "", rterr.New(rterr.Sql, "%s is not in the text family", v.typ)
	}
	return v.text, nil
}

func (v SqlValue) unpackBool() (bool, error) {
	if v.typ != Boolean {
		return false, rterr.New(rterr.Sql, "%s is not in the bool family", v.typ)
	}
	return v.b, nil
}

func (v SqlValue) unpackTs() (Ts, error) {
	if v.typ != Timestamp {
		return Ts{}, rterr.New(rterr.Sql, "%s is not in the timestamp family", v.typ)
	}
	return v.ts, nil
}

// Int64 loosely-gets v as int64, converting across the i64-loose family
// (SMALLINT/INTEGER/BIGINT) or NULL returns an error.
func (v SqlValue) Int64() (int64, error) {
	if v.null {
		return 0, rterr.New(rterr.Null, "cannot read NULL as int64")
	}
	return v.unpackI64()
}

// Uint64 loosely-gets v as uint64 within the u64-loose family.
func (v SqlValue) Uint64() (uint64, error) {
	if v.null {
		return 0, rterr.New(rterr.Null, "cannot read NULL as uint64")
	}
	return v.unpackU64()
}

// Float32 gets v as float32.
func (v SqlValue) Float32() (float32, error) {
	if v.null {
		return 0, rterr.New(rterr.Null, "cannot read NULL as float32")
	}
	return v.unpackF32()
}

// Text gets v as a string.
func (v SqlValue) Text() (string, error) {
	if v.null {
		return "", rterr.New(rterr.Null, "cannot read NULL as text")
	}
	return v.unpackText()
}

// Bool gets v as a bool.
func (v SqlValue) Bool() (bool, error) {
	if v.null {
		return false, rterr.New(rterr.Null, "cannot read NULL as bool")
	}
	return v.unpackBool()
}

// Timestamp gets v as a Ts.
func (v SqlValue) Timestamp() (Ts, error) {
	if v.null {
		return Ts{}, rterr.New(rterr.Null, "cannot read NULL as timestamp")
	}
	return v.unpackTs()
}

// Blob gets v as a byte slice.
func (v SqlValue) Blob() ([]byte, error) {
	if v.null {
		return nil, rterr.New(rterr.Null, "cannot read NULL as blob")
	}
	if v.typ != Blob {
		return nil, rterr.New(rterr.Sql, "%s is not BLOB", v.typ)
	}
	return v.blob, nil
}

// Duration gets v as a Dur.
func (v SqlValue) Duration() (Dur, error) {
	if v.null {
		return Dur{}, rterr.New(rterr.Null, "cannot read NULL as duration")
	}
	if v.typ != Duration {
		return Dur{}, rterr.New(rterr.Sql, "%s is not DURATION", v.typ)
	}
	return v.dur, nil
}

// TryConvert converts v into typ, loosely within v's family. NULL converts
// to NULL of any type.
func (v SqlValue) TryConvert(typ SqlType) (SqlValue, error) {
	if v.null {
		return Null(), nil
	}
	switch typ.Family() {
	case FamilyI64Loose:
		i, err := v.unpackI64()
		if err != nil {
			return SqlValue{}, err
		}
		switch typ {
		case SmallInt:
			return NewSmallInt(int16(i)), nil
		case Integer:
			return NewInteger(int32(i)), nil
		default:
			return NewBigInt(i), nil
		}
	case FamilyU64Loose:
		u, err := v.unpackU64()
		if err != nil {
			return SqlValue{}, err
		}
		if typ == UnsignedInteger {
			return NewUnsignedInteger(uint32(u)), nil
		}
		return NewUnsignedBigInt(u), nil
	case FamilyF32Loose:
		f, err := v.unpackF32()
		if err != nil {
			return SqlValue{}, err
		}
		return NewFloat(f), nil
	case FamilyText:
		s, err := v.unpackText()
		if err != nil {
			return SqlValue{}, err
		}
		return NewText(s), nil
	case FamilyBool:
		b, err := v.unpackBool()
		if err != nil {
			return SqlValue{}, err
		}
		return NewBoolean(b), nil
	case FamilyTimestamp:
		t, err := v.unpackTs()
		if err != nil {
			return SqlValue{}, err
		}
		return NewTimestamp(t), nil
	case FamilyBlob:
		b, err := v.Blob()
		if err != nil {
			return SqlValue{}, err
		}
		return NewBlob(b), nil
	case FamilyDuration:
		d, err := v.Duration()
		if err != nil {
			return SqlValue{}, err
		}
		return NewDuration(d), nil
	default:
		return SqlValue{}, rterr.New(rterr.Sql, "cannot convert %s to %s", v.typ, typ)
	}
}

// FromInterface builds a SqlValue from a loosely-typed Go value (as decoded
// from foreign JSON), coerced to typ using spf13/cast's error-returning
// conversions.
func FromInterface(raw interface{}, typ SqlType, nullable bool) (SqlValue, error) {
	if raw == nil {
		if !nullable {
			return SqlValue{}, rterr.New(rterr.Sql, "column declared NOT NULL received NULL")
		}
		return Null(), nil
	}
	switch typ {
	case SmallInt:
		i, err := cast.ToInt16E(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to SMALLINT", raw)
		}
		return NewSmallInt(i), nil
	case Integer:
		i, err := cast.ToInt32E(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to INTEGER", raw)
		}
		return NewInteger(i), nil
	case BigInt:
		i, err := cast.ToInt64E(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to BIGINT", raw)
		}
		return NewBigInt(i), nil
	case UnsignedInteger:
		u, err := cast.ToUint32E(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to UNSIGNED INTEGER", raw)
		}
		return NewUnsignedInteger(u), nil
	case UnsignedBigInt:
		u, err := cast.ToUint64E(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to UNSIGNED BIGINT", raw)
		}
		return NewUnsignedBigInt(u), nil
	case Float:
		f, err := cast.ToFloat32E(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to FLOAT", raw)
		}
		return NewFloat(f), nil
	case Text:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to TEXT", raw)
		}
		return NewText(s), nil
	case Boolean:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to BOOLEAN", raw)
		}
		return NewBoolean(b), nil
	case Timestamp:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot cast %v to TIMESTAMP", raw)
		}
		ts, err := ParseTs(s)
		if err != nil {
			return SqlValue{}, rterr.Wrap(rterr.InvalidFormat, err, "cannot parse TIMESTAMP %v", raw)
		}
		return NewTimestamp(ts), nil
	case Blob:
		b, ok := raw.([]byte)
		if !ok {
			return SqlValue{}, rterr.New(rterr.InvalidFormat, "cannot cast %T to BLOB", raw)
		}
		return NewBlob(b), nil
	default:
		return SqlValue{}, rterr.New(rterr.InvalidFormat, "unsupported column type %s", typ)
	}
}

// ToInterface returns v as a plain Go value suitable for JSON encoding.
func (v SqlValue) ToInterface() interface{} {
	if v.null {
		return nil
	}
	switch v.typ {
	case SmallInt, Integer, BigInt:
		return v.i64
	case UnsignedInteger, UnsignedBigInt:
		return v.u64
	case Float:
		return v.f32
	case Text:
		return v.text
	case Blob:
		return v.blob
	case Boolean:
		return v.b
	case Timestamp:
		return v.ts.String()
	case Duration:
		return v.dur.String()
	default:
		return nil
	}
}

// nullHashSalt is drawn fresh per NULL.Hash() call so that NULL never
// collides with another NULL (or anything else) in a hash join.
func nullHashSalt() uint64 {
	return rand.Uint64()
}
