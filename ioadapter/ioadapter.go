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

// Package ioadapter implements the runtime's foreign-world boundary: reading
// foreign rows into a source task and writing rows out of a sink task.
// SourceReader/SinkWriter are the two traits every foreign adapter
// implements; NetClient/NetServer (TCP, newline-delimited JSON),
// InMemoryQueue (named FIFO) and HTTP sink adapters are the concrete
// bindings a CREATE SOURCE READER/CREATE SINK WRITER statement names by
// TYPE.
package ioadapter

import "context"

// SourceReader reads one foreign row at a time. ReadRow must respect ctx's
// deadline: SourceTask wraps every call with the configured
// net_connect_timeout_msec/net_read_timeout_msec bound and classifies a
// context deadline as rterr.ForeignSourceTimeout.
type SourceReader interface {
	ReadRow(ctx context.Context) ([]byte, error)
	Close() error
}

// SinkWriter writes one foreign row at a time. WriteRow must respect ctx's
// deadline the same way ReadRow does.
type SinkWriter interface {
	WriteRow(ctx context.Context, payload []byte) error
	Close() error
}
