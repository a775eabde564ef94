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

package task

import (
	"context"
	"time"

	"github.com/springql-go/springql/ioadapter"
	"github.com/springql-go/springql/queue"
	"github.com/springql-go/springql/rterr"
)

// SinkTask collects one row from its input queue, renders it to the foreign
// format, and hands it to the foreign writer.
type SinkTask struct {
	Writer      ioadapter.SinkWriter
	WriteTimeout time.Duration
	Incoming    *queue.RowQueue
}

// Execute collects one row; if none is queued it reports InputTimeout so
// the worker backs off rather than busy-spinning.
func (t *SinkTask) Execute(ctx context.Context) (int, error) {
	r, ok := t.Incoming.Collect()
	if !ok {
		return 0, rterr.New(rterr.InputTimeout, "no row queued for sink")
	}

	payload, err := r.ToJSON()
	if err != nil {
		return 0, err
	}

	writeCtx := ctx
	var cancel func()
	if t.WriteTimeout > 0 {
		writeCtx, cancel = context.WithTimeout(ctx, t.WriteTimeout)
		defer cancel()
	}

	if err := t.Writer.WriteRow(writeCtx, payload); err != nil {
		if writeCtx.Err() != nil {
			return 0, rterr.Wrap(rterr.ForeignIo, err, "sink write timed out")
		}
		return 0, err
	}
	return 1, nil
}
