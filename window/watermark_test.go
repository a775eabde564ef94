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

package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/springql-go/springql/sqltypes"
)

func TestWatermarkMonotonic(t *testing.T) {
	w := NewWatermark(2 * time.Second)

	w1 := w.Update(sqltypes.NewTs(baseDay.Add(10 * time.Second)))
	w2 := w.Update(sqltypes.NewTs(baseDay.Add(5 * time.Second))) // out of order, must not regress

	assert.True(t, w1.Equal(w2))
	assert.True(t, w.Current().Equal(sqltypes.NewTs(baseDay.Add(8 * time.Second))))
}

func TestWatermarkIsLate(t *testing.T) {
	w := NewWatermark(0)
	w.Update(sqltypes.NewTs(baseDay.Add(10 * time.Second)))

	assert.True(t, w.IsLate(sqltypes.NewTs(baseDay.Add(5*time.Second))))
	assert.False(t, w.IsLate(sqltypes.NewTs(baseDay.Add(10*time.Second))))
}
