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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springql-go/springql/rterr"
)

func TestDefaultMatchesDocumentedValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint16(1), cfg.Worker.NGenericWorkerThreads)
	assert.Equal(t, uint16(1), cfg.Worker.NSourceWorkerThreads)
	assert.Equal(t, uint64(10_000_000), cfg.Memory.UpperLimitBytes)
	assert.Equal(t, uint8(60), cfg.Memory.ModerateToSeverePercent)
	assert.Equal(t, uint8(95), cfg.Memory.SevereToCriticalPercent)
	assert.False(t, cfg.WebConsole.EnableReportPost)
	assert.Equal(t, "127.0.0.1", cfg.WebConsole.Host)
}

func TestNewOverwritesOnlyNamedKeys(t *testing.T) {
	cfg, err := New(`
[memory]
upper_limit_bytes = 1_000

[worker]
n_generic_worker_threads = 4
`)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), cfg.Memory.UpperLimitBytes)
	assert.Equal(t, uint16(4), cfg.Worker.NGenericWorkerThreads)
	// Untouched keys keep their default value.
	assert.Equal(t, uint8(60), cfg.Memory.ModerateToSeverePercent)
	assert.Equal(t, uint16(1), cfg.Worker.NSourceWorkerThreads)
}

func TestNewRejectsUnknownKey(t *testing.T) {
	_, err := New(`
[memory]
typo_limit_bytes = 1000
`)
	require.Error(t, err)
	assert.Equal(t, rterr.InvalidOption, rterr.KindOf(err))
}

func TestNewRejectsMalformedTOML(t *testing.T) {
	_, err := New("not valid [[[ toml")
	require.Error(t, err)
	assert.Equal(t, rterr.InvalidOption, rterr.KindOf(err))
}

func TestDurationHelpersConvertMsecFields(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 100*time.Millisecond, cfg.Worker.SleepNoRow())
	assert.Equal(t, 10*time.Millisecond, cfg.Memory.TransitionInterval())
	assert.Equal(t, 1*time.Second, cfg.SourceReader.ConnectTimeout())
}
