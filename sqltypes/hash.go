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
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Hash returns a family-stable hash of v: two values in the same family that
// compare Eq always hash equal, regardless of their concrete SqlType (e.g.
// `42 SMALLINT` and `42 INTEGER` hash the same). NULL hashes to a fresh
// random value on every call, so NULLs never collide with each other or with
// any NotNull value in a hash join.
func (v SqlValue) Hash() uint64 {
	h := fnv.New64a()
	if v.null {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], nullHashSalt())
		_, _ = h.Write(buf[:])
		return h.Sum64()
	}

	var buf [8]byte
	switch v.typ.Family() {
	case FamilyI64Loose:
		i, _ := v.unpackI64()
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
	case FamilyU64Loose:
		u, _ := v.unpackU64()
		binary.LittleEndian.PutUint64(buf[:], u)
	case FamilyF32Loose:
		f, _ := v.unpackF32()
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(float64(f)))
	case FamilyText:
		s, _ := v.unpackText()
		_, _ = h.Write([]byte(s))
		return h.Sum64()
	case FamilyBlob:
		_, _ = h.Write(v.blob)
		return h.Sum64()
	case FamilyBool:
		b, _ := v.unpackBool()
		if b {
			buf[0] = 1
		}
	case FamilyTimestamp:
		t, _ := v.unpackTs()
		binary.LittleEndian.PutUint64(buf[:], uint64(t.UnixNano()))
	case FamilyDuration:
		d, _ := v.Duration()
		binary.LittleEndian.PutUint64(buf[:], uint64(d.Duration()))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
