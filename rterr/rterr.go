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

// Package rterr defines the runtime's error taxonomy. Every error raised by
// the engine carries a Kind so callers and the worker loop can classify and
// react to it without string matching.
package rterr

import (
	"errors"
	"fmt"
)

// Kind classifies a runtime error for logging level and re-scheduling policy.
type Kind int

const (
	// ForeignSourceTimeout signals a source reader produced nothing within
	// its configured timeout. Expected under idle conditions.
	ForeignSourceTimeout Kind = iota
	// InputTimeout signals a generic blocking read timed out. Expected under
	// idle conditions.
	InputTimeout
	// ForeignIo signals a transient I/O failure talking to a foreign
	// reader/writer.
	ForeignIo
	// Unavailable signals a transient resource is temporarily unusable.
	Unavailable
	// Sql signals a semantic or type error evaluating a SQL expression.
	Sql
	// InvalidFormat signals malformed input (timestamp parse failure,
	// malformed JSON, ...).
	InvalidFormat
	// InvalidOption signals a bad construction-command argument.
	InvalidOption
	// ThreadPoisoned signals a worker goroutine observed corrupted shared
	// state (e.g. recovered from a panic while holding a lock).
	ThreadPoisoned
	// InvalidConfig signals a fatal configuration error; only raised at
	// startup.
	InvalidConfig
	// Null signals a caller attempted to read a NULL column as a non-nullable
	// Go type.
	Null
)

// String returns the taxonomy name of k.
func (k Kind) String() string {
	switch k {
	case ForeignSourceTimeout:
		return "ForeignSourceTimeout"
	case InputTimeout:
		return "InputTimeout"
	case ForeignIo:
		return "ForeignIo"
	case Unavailable:
		return "Unavailable"
	case Sql:
		return "Sql"
	case InvalidFormat:
		return "InvalidFormat"
	case InvalidOption:
		return "InvalidOption"
	case ThreadPoisoned:
		return "ThreadPoisoned"
	case InvalidConfig:
		return "InvalidConfig"
	case Null:
		return "Null"
	default:
		return "Unknown"
	}
}

// Error is a classified runtime error. It wraps an optional underlying cause
// so callers can still use errors.Is/errors.As against it.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a classified error with no underlying cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a classified error around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an *Error.
// Unclassified errors report Sql, the taxonomy's catch-all for "something
// went wrong evaluating the pipeline".
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return Sql
}

// IsTransient reports whether the error taxonomy treats kind as expected
// under idle/transient conditions: the task should simply be re-scheduled
// without disturbing the pipeline.
func IsTransient(kind Kind) bool {
	switch kind {
	case ForeignSourceTimeout, InputTimeout, ForeignIo, Unavailable:
		return true
	default:
		return false
	}
}

// IsFatal reports whether kind should abort startup rather than be retried.
func IsFatal(kind Kind) bool {
	return kind == InvalidConfig
}
