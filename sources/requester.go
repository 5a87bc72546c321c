// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/poiesic/bookvec/ratelimit"
)

// Requester issues single, rate-limited JSON GET requests for one source.
type Requester struct {
	source  string
	client  *http.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// RequesterOption configures a Requester.
type RequesterOption func(*Requester)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) RequesterOption {
	return func(r *Requester) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLogger sets the logger. The source name is attached to every line.
func WithLogger(logger *slog.Logger) RequesterOption {
	return func(r *Requester) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRequester creates a requester for the named source using cfg's
// timeout and request rate.
func NewRequester(source string, cfg Config, opts ...RequesterOption) *Requester {
	r := &Requester{
		source:  source,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.New(source, cfg.RequestsPerSecond),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "source", "source", source)
	return r
}

// Logger returns the requester's source-scoped logger.
func (r *Requester) Logger() *slog.Logger {
	return r.logger
}

// GetJSON performs one GET of rawURL and decodes the JSON body into out.
// Context cancellation is returned as-is. Every other failure is a *FetchError.
func (r *Requester) GetJSON(ctx context.Context, rawURL string, out any) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return r.fail(rawURL, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return r.fail(rawURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return r.fail(rawURL, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return r.fail(rawURL, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	r.logger.Debug("request succeeded", "url", redact(rawURL), "status", resp.StatusCode)
	return nil
}

func (r *Requester) fail(rawURL string, status int, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redact(urlErr.URL)
	}
	fetchErr := &FetchError{Source: r.source, URL: redact(rawURL), StatusCode: status, Err: err}
	r.logger.Warn("request failed", "url", fetchErr.URL, "status", status, "err", err)
	return fetchErr
}

// redact hides credentials passed as query parameters.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for key := range q {
		lower := strings.ToLower(key)
		if lower == "key" || lower == "api-key" || lower == "api_key" {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
