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
	"bytes"
	"context"
	"net/http"

	"github.com/springql-go/springql/rterr"
)

// HTTPSinkWriter POSTs each row's JSON payload to a fixed URL, for the
// sink_writer.http_* construction options.
type HTTPSinkWriter struct {
	url    string
	client *http.Client
}

// NewHTTPSinkWriter builds a writer that POSTs to url using client (a
// *http.Client with its own timeout already configured).
func NewHTTPSinkWriter(url string, client *http.Client) *HTTPSinkWriter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSinkWriter{url: url, client: client}
}

func (w *HTTPSinkWriter) WriteRow(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return rterr.Wrap(rterr.InvalidOption, err, "cannot build request to %s", w.url)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return rterr.Wrap(rterr.InputTimeout, err, "POST %s timed out", w.url)
		}
		return rterr.Wrap(rterr.ForeignIo, err, "POST %s failed", w.url)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return rterr.New(rterr.ForeignIo, "POST %s returned status %d", w.url, resp.StatusCode)
	}
	return nil
}

func (w *HTTPSinkWriter) Close() error { return nil }
