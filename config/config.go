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

// Package config loads the runtime's tunables from TOML, layering a
// caller-supplied overlay over a built-in default so only the keys that
// need changing ever have to be named.
package config

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/springql-go/springql/rterr"
)

// defaultTOML mirrors every section and key an embedded runtime config
// must carry: worker thread counts, memory thresholds, the web console
// reporting endpoint, and network/HTTP timeouts for source readers and
// sink writers.
const defaultTOML = `
[worker]
n_generic_worker_threads = 1
n_source_worker_threads = 1
sleep_msec_no_row = 100

[memory]
upper_limit_bytes = 10_000_000
moderate_to_severe_percent = 60
severe_to_critical_percent = 95
critical_to_severe_percent = 80
severe_to_moderate_percent = 40
memory_state_transition_interval_msec = 10
performance_metrics_summary_report_interval_msec = 10

[web_console]
enable_report_post = false
report_interval_msec = 3_000
host = "127.0.0.1"
port = 8050
timeout_msec = 3_000

[source_reader]
net_connect_timeout_msec = 1_000
net_read_timeout_msec = 100
can_read_timeout_msec = 100

[sink_writer]
net_connect_timeout_msec = 1_000
net_write_timeout_msec = 100
http_connect_timeout_msec = 1_000
http_timeout_msec = 100
`

// WorkerConfig controls the worker pool's thread counts and idle backoff.
type WorkerConfig struct {
	NGenericWorkerThreads uint16 `toml:"n_generic_worker_threads"`
	NSourceWorkerThreads  uint16 `toml:"n_source_worker_threads"`
	SleepMsecNoRow        uint64 `toml:"sleep_msec_no_row"`
}

// SleepNoRow converts SleepMsecNoRow to a time.Duration for worker.Config.
func (w WorkerConfig) SleepNoRow() time.Duration {
	return time.Duration(w.SleepMsecNoRow) * time.Millisecond
}

// MemoryConfig controls the memory state machine's thresholds and the
// intervals its workers publish metrics/transition events on.
type MemoryConfig struct {
	UpperLimitBytes                          uint64 `toml:"upper_limit_bytes"`
	ModerateToSeverePercent                  uint8  `toml:"moderate_to_severe_percent"`
	SevereToCriticalPercent                  uint8  `toml:"severe_to_critical_percent"`
	CriticalToSeverePercent                  uint8  `toml:"critical_to_severe_percent"`
	SevereToModeratePercent                  uint8  `toml:"severe_to_moderate_percent"`
	MemoryStateTransitionIntervalMsec        uint32 `toml:"memory_state_transition_interval_msec"`
	PerformanceMetricsSummaryReportIntervalMsec uint32 `toml:"performance_metrics_summary_report_interval_msec"`
}

// TransitionInterval converts MemoryStateTransitionIntervalMsec to a
// time.Duration.
func (m MemoryConfig) TransitionInterval() time.Duration {
	return time.Duration(m.MemoryStateTransitionIntervalMsec) * time.Millisecond
}

// SummaryReportInterval converts PerformanceMetricsSummaryReportIntervalMsec
// to a time.Duration.
func (m MemoryConfig) SummaryReportInterval() time.Duration {
	return time.Duration(m.PerformanceMetricsSummaryReportIntervalMsec) * time.Millisecond
}

// WebConsoleConfig controls whether and where performance summaries are
// POSTed to an external web console.
type WebConsoleConfig struct {
	EnableReportPost  bool   `toml:"enable_report_post"`
	ReportIntervalMsec uint32 `toml:"report_interval_msec"`
	Host              string `toml:"host"`
	Port              uint16 `toml:"port"`
	TimeoutMsec       uint32 `toml:"timeout_msec"`
}

// SourceReaderConfig controls the foreign-source timeouts SourceTask
// enforces per read.
type SourceReaderConfig struct {
	NetConnectTimeoutMsec uint32 `toml:"net_connect_timeout_msec"`
	NetReadTimeoutMsec    uint32 `toml:"net_read_timeout_msec"`
	CanReadTimeoutMsec    uint32 `toml:"can_read_timeout_msec"`
}

// ConnectTimeout converts NetConnectTimeoutMsec to a time.Duration.
func (s SourceReaderConfig) ConnectTimeout() time.Duration {
	return time.Duration(s.NetConnectTimeoutMsec) * time.Millisecond
}

// ReadTimeout converts NetReadTimeoutMsec to a time.Duration.
func (s SourceReaderConfig) ReadTimeout() time.Duration {
	return time.Duration(s.NetReadTimeoutMsec) * time.Millisecond
}

// SinkWriterConfig controls the foreign-sink timeouts SinkTask enforces per
// write, for both the TCP and HTTP sink adapter flavors.
type SinkWriterConfig struct {
	NetConnectTimeoutMsec  uint32 `toml:"net_connect_timeout_msec"`
	NetWriteTimeoutMsec    uint32 `toml:"net_write_timeout_msec"`
	HTTPConnectTimeoutMsec uint32 `toml:"http_connect_timeout_msec"`
	HTTPTimeoutMsec        uint32 `toml:"http_timeout_msec"`
}

// ConnectTimeout converts NetConnectTimeoutMsec to a time.Duration.
func (s SinkWriterConfig) ConnectTimeout() time.Duration {
	return time.Duration(s.NetConnectTimeoutMsec) * time.Millisecond
}

// WriteTimeout converts NetWriteTimeoutMsec to a time.Duration.
func (s SinkWriterConfig) WriteTimeout() time.Duration {
	return time.Duration(s.NetWriteTimeoutMsec) * time.Millisecond
}

// Config is the top-level, fully-resolved runtime configuration.
type Config struct {
	Worker       WorkerConfig       `toml:"worker"`
	Memory       MemoryConfig       `toml:"memory"`
	WebConsole   WebConsoleConfig   `toml:"web_console"`
	SourceReader SourceReaderConfig `toml:"source_reader"`
	SinkWriter   SinkWriterConfig   `toml:"sink_writer"`
}

// New builds a Config by layering overwriteTOML's keys over the built-in
// default. An empty overwriteTOML yields the default configuration
// unchanged. Only the keys present in overwriteTOML need naming; every
// other key keeps its default value.
func New(overwriteTOML string) (Config, error) {
	var cfg Config
	if _, err := toml.Decode(defaultTOML, &cfg); err != nil {
		// The built-in default is a compile-time constant; a decode
		// failure here means the constant itself is malformed TOML.
		return Config{}, rterr.New(rterr.InvalidOption, "default configuration is malformed: %s", err)
	}
	if overwriteTOML == "" {
		return cfg, nil
	}
	meta, err := toml.Decode(overwriteTOML, &cfg)
	if err != nil {
		return Config{}, rterr.New(rterr.InvalidOption, "invalid configuration TOML: %s", err)
	}
	if len(meta.Undecoded()) > 0 {
		return Config{}, rterr.New(rterr.InvalidOption, "unknown configuration key(s): %v", meta.Undecoded())
	}
	return cfg, nil
}

// Default returns the built-in default configuration.
func Default() Config {
	cfg, err := New("")
	if err != nil {
		panic(err)
	}
	return cfg
}
