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
	"github.com/springql-go/springql/row"
	"github.com/springql-go/springql/rterr"
	"github.com/springql-go/springql/sqltypes"
)

// SourceTask reads one foreign row per Execute call, converts it to the
// downstream stream's shape, and fans it out to every outgoing queue.
type SourceTask struct {
	Reader      ioadapter.SourceReader
	Shape       *row.Shape
	ReadTimeout time.Duration
	Outgoing    []RowSink
}

// Execute reads one row (bounded by ReadTimeout) and puts it into every
// outgoing queue. A read timeout is reported as rterr.ForeignSourceTimeout
// so the worker re-schedules rather than treating it as fatal.
func (t *SourceTask) Execute(ctx context.Context) (int, error) {
	readCtx := ctx
	var cancel context.CancelFunc
	if t.ReadTimeout > 0 {
		readCtx, cancel = context.WithTimeout(ctx, t.ReadTimeout)
		defer cancel()
	}

	payload, err := t.Reader.ReadRow(readCtx)
	if err != nil {
		if readCtx.Err() != nil {
			return 0, rterr.Wrap(rterr.ForeignSourceTimeout, err, "source read timed out")
		}
		return 0, err
	}

	r, err := row.FromJSON(t.Shape, payload, sqltypes.NowTs())
	if err != nil {
		return 0, err
	}

	for _, q := range t.Outgoing {
		q.Put(r)
	}
	return 1, nil
}
