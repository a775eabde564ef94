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

package metrics

import (
	"context"
	"time"
)

// Reporter periodically snapshots a PerformanceMetrics into a Summary and
// hands it to Publish, mirroring the teacher's ticker-plus-context update
// loop (window.Watermark.updateLoop) rather than a bare time.Sleep loop.
type Reporter struct {
	metrics  *PerformanceMetrics
	interval time.Duration
	publish  func(Summary)
}

// NewReporter builds a Reporter that calls publish with a fresh Summary
// every interval, until its Run's context is cancelled.
func NewReporter(m *PerformanceMetrics, interval time.Duration, publish func(Summary)) *Reporter {
	return &Reporter{metrics: m, interval: interval, publish: publish}
}

// Run blocks, reporting on each tick, until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.publish(r.metrics.Snapshot())
		case <-ctx.Done():
			return
		}
	}
}
