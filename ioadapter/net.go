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

package ioadapter

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"github.com/springql-go/springql/rterr"
)

// NetClientReader dials one TCP connection and reads newline-delimited JSON
// rows from it, reconnecting lazily is left to the caller (a dropped
// connection surfaces as rterr.ForeignIo).
type NetClientReader struct {
	conn    net.Conn
	scanner *bufio.Scanner
	mu      sync.Mutex
}

// DialNetClientReader connects to addr with connectTimeout bounding the
// dial.
func DialNetClientReader(addr string, connectTimeout time.Duration) (*NetClientReader, error) {
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return nil, rterr.Wrap(rterr.ForeignSourceTimeout, err, "cannot connect to %s", addr)
	}
	return &NetClientReader{conn: conn, scanner: bufio.NewScanner(conn)}, nil
}

func (r *NetClientReader) ReadRow(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = r.conn.SetReadDeadline(deadline)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, rterr.Wrap(rterr.InputTimeout, err, "read from %s timed out", r.conn.RemoteAddr())
			}
			return nil, rterr.Wrap(rterr.ForeignIo, err, "read from %s failed", r.conn.RemoteAddr())
		}
		return nil, rterr.New(rterr.ForeignIo, "connection to %s closed", r.conn.RemoteAddr())
	}
	line := r.scanner.Bytes()
	out := make([]byte, len(line))
	copy(out, line)
	return out, nil
}

func (r *NetClientReader) Close() error { return r.conn.Close() }

// NetServerReader accepts one inbound TCP connection and reads
// newline-delimited JSON rows from it.
type NetServerReader struct {
	listener net.Listener
	conn     net.Conn
	scanner  *bufio.Scanner
	mu       sync.Mutex
}

// ListenNetServerReader opens a listener on addr and accepts its first
// connection, bounded by acceptTimeout.
func ListenNetServerReader(addr string, acceptTimeout time.Duration) (*NetServerReader, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, rterr.Wrap(rterr.ForeignIo, err, "cannot listen on %s", addr)
	}
	if tl, ok := ln.(*net.TCPListener); ok && acceptTimeout > 0 {
		_ = tl.SetDeadline(time.Now().Add(acceptTimeout))
	}
	conn, err := ln.Accept()
	if err != nil {
		_ = ln.Close()
		return nil, rterr.Wrap(rterr.ForeignSourceTimeout, err, "no connection accepted on %s", addr)
	}
	return &NetServerReader{listener: ln, conn: conn, scanner: bufio.NewScanner(conn)}, nil
}

func (r *NetServerReader) ReadRow(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = r.conn.SetReadDeadline(deadline)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, rterr.Wrap(rterr.InputTimeout, err, "read timed out")
			}
			return nil, rterr.Wrap(rterr.ForeignIo, err, "read failed")
		}
		return nil, rterr.New(rterr.ForeignIo, "connection closed")
	}
	line := r.scanner.Bytes()
	out := make([]byte, len(line))
	copy(out, line)
	return out, nil
}

func (r *NetServerReader) Close() error {
	_ = r.conn.Close()
	return r.listener.Close()
}

// NetServerWriter accepts one inbound TCP connection and writes
// newline-delimited JSON rows to it.
type NetServerWriter struct {
	listener net.Listener
	conn     net.Conn
	mu       sync.Mutex
}

// ListenNetServerWriter opens a listener on addr and accepts its first
// connection, bounded by acceptTimeout.
func ListenNetServerWriter(addr string, acceptTimeout time.Duration) (*NetServerWriter, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, rterr.Wrap(rterr.ForeignIo, err, "cannot listen on %s", addr)
	}
	if tl, ok := ln.(*net.TCPListener); ok && acceptTimeout > 0 {
		_ = tl.SetDeadline(time.Now().Add(acceptTimeout))
	}
	conn, err := ln.Accept()
	if err != nil {
		_ = ln.Close()
		return nil, rterr.Wrap(rterr.ForeignSourceTimeout, err, "no connection accepted on %s", addr)
	}
	return &NetServerWriter{listener: ln, conn: conn}, nil
}

func (w *NetServerWriter) WriteRow(ctx context.Context, payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = w.conn.SetWriteDeadline(deadline)
	}
	buf := append(append([]byte(nil), payload...), '\n')
	if _, err := w.conn.Write(buf); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return rterr.Wrap(rterr.InputTimeout, err, "write timed out")
		}
		return rterr.Wrap(rterr.ForeignIo, err, "write failed")
	}
	return nil
}

func (w *NetServerWriter) Close() error {
	_ = w.conn.Close()
	return w.listener.Close()
}
