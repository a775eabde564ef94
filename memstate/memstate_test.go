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

package memstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModerateSevereHysteresis(t *testing.T) {
	m := NewMachine(Thresholds{
		UpperLimitBytes:  1000,
		ModerateToSevere: 60,
		SevereToModerate: 40,
	})

	summaries := []int64{500, 650, 900, 700, 300}
	want := []State{Moderate, Severe, Severe, Severe, Moderate}

	for i, s := range summaries {
		m.Update(s)
		assert.Equal(t, want[i], m.State(), "after summary %d", s)
	}
}

func TestCriticalEscalatesInOneCascadingUpdate(t *testing.T) {
	m := NewMachine(Thresholds{
		UpperLimitBytes:  1000,
		ModerateToSevere: 60,
		SevereToModerate: 40,
		SevereToCritical: 95,
		CriticalToSevere: 80,
	})

	m.Update(500)
	assert.Equal(t, Moderate, m.State())

	transitions := m.Update(950)
	assert.Equal(t, Critical, m.State())
	// A single summary crossing both the Moderate->Severe and
	// Severe->Critical boundaries cascades through both in one Update call.
	assert.Len(t, transitions, 2)
	assert.Equal(t, Moderate, transitions[0].From)
	assert.Equal(t, Severe, transitions[0].To)
	assert.Equal(t, Severe, transitions[1].From)
	assert.Equal(t, Critical, transitions[1].To)
}

func TestCriticalHoldsUntilBelowCriticalToSevere(t *testing.T) {
	m := NewMachine(Thresholds{
		UpperLimitBytes:  1000,
		ModerateToSevere: 60,
		SevereToModerate: 40,
		SevereToCritical: 95,
		CriticalToSevere: 80,
	})
	m.Update(950)
	assert.Equal(t, Critical, m.State())

	// 85% is still above CriticalToSevere(80%): hysteresis keeps it Critical.
	m.Update(850)
	assert.Equal(t, Critical, m.State())

	// 790/1000 = 79% finally drops at/below the 80% exit threshold.
	m.Update(790)
	assert.Equal(t, Severe, m.State())
}

func TestNoTransitionReturnsEmptySlice(t *testing.T) {
	m := NewMachine(Thresholds{UpperLimitBytes: 1000, ModerateToSevere: 60, SevereToModerate: 40})
	transitions := m.Update(100)
	assert.Empty(t, transitions)
	assert.Equal(t, Moderate, m.State())
}

func TestZeroUpperLimitNeverTransitions(t *testing.T) {
	m := NewMachine(Thresholds{})
	m.Update(1000)
	assert.Equal(t, Moderate, m.State())
}
