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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseUnpack(t *testing.T) {
	tests := []struct {
		name string
		v    SqlValue
	}{
		{"SmallInt", NewSmallInt(-1)},
		{"Integer", NewInteger(-1)},
		{"BigInt", NewBigInt(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, err := tt.v.Int64()
			require.NoError(t, err)
			assert.Equal(t, int64(-1), i)
		})
	}
}

func TestCompareAcrossLooseTypes(t *testing.T) {
	res, err := NewSmallInt(42).Compare(NewInteger(42))
	require.NoError(t, err)
	assert.Equal(t, Eq, res)

	res, err = NewInteger(1).Compare(NewBigInt(2))
	require.NoError(t, err)
	assert.Equal(t, Lt, res)
}

func TestCompareDifferentFamiliesErrors(t *testing.T) {
	_, err := NewInteger(1).Compare(NewText("1"))
	assert.Error(t, err)
}

func TestCompareNullErrors(t *testing.T) {
	_, err := Null().Compare(NewInteger(1))
	assert.Error(t, err)
}

func TestEqualNullIsAlwaysFalse(t *testing.T) {
	assert.False(t, Null().Equal(Null()))
	assert.False(t, Null().Equal(NewInteger(1)))
}

func TestHashFamilyStable(t *testing.T) {
	assert.Equal(t, NewSmallInt(42).Hash(), NewInteger(42).Hash())
	assert.Equal(t, NewInteger(42).Hash(), NewBigInt(42).Hash())
	assert.NotEqual(t, NewInteger(42).Hash(), NewInteger(43).Hash())
}

func TestHashNullIsRandom(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 50; i++ {
		seen[Null().Hash()] = true
	}
	assert.Greater(t, len(seen), 1, "NULL hashes should not collapse to a single value")
}

func TestArithmeticWithinFamily(t *testing.T) {
	sum := NewInteger(2).Add(NewBigInt(3))
	i, err := sum.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(5), i)
}

func TestArithmeticAcrossFamiliesIsNull(t *testing.T) {
	sum := NewInteger(2).Add(NewText("3"))
	assert.True(t, sum.IsNull())
}

func TestArithmeticWithNullIsNull(t *testing.T) {
	sum := NewInteger(2).Add(Null())
	assert.True(t, sum.IsNull())
}

func TestDivInt64ForAverage(t *testing.T) {
	sum := NewBigInt(30)
	avg := sum.DivInt64(3)
	f, err := avg.Float32()
	require.NoError(t, err)
	assert.Equal(t, float32(10), f)
}

func TestDivInt64ByZeroIsNull(t *testing.T) {
	assert.True(t, NewBigInt(30).DivInt64(0).IsNull())
}

func TestNegate(t *testing.T) {
	neg, err := NewInteger(5).Negate()
	require.NoError(t, err)
	i, err := neg.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(-5), i)

	_, err = NewUnsignedInteger(5).Negate()
	assert.Error(t, err)
}

func TestTimestampFloorCeil(t *testing.T) {
	ts := NewTs(time.Date(2021, 11, 4, 23, 3, 5, 0, time.UTC))
	floor := ts.Floor(10 * time.Second)
	assert.Equal(t, int64(0), floor.UnixNano()%int64(10*time.Second))

	exact := NewTs(time.Unix(20, 0))
	assert.True(t, exact.Ceil(10*time.Second).Equal(exact))
}

func TestFromInterfaceNullable(t *testing.T) {
	v, err := FromInterface(nil, Integer, true)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	_, err = FromInterface(nil, Integer, false)
	assert.Error(t, err)
}

func TestFromInterfaceCoercion(t *testing.T) {
	v, err := FromInterface(float64(20), Integer, false)
	require.NoError(t, err)
	i, err := v.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(20), i)
}

func TestToInterfaceRoundTrip(t *testing.T) {
	v, err := FromInterface("ORCL", Text, false)
	require.NoError(t, err)
	assert.Equal(t, "ORCL", v.ToInterface())
}
