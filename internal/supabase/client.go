// Package supabase is a thin client for the PostgREST-style REST surface a
// Supabase project exposes. It performs exactly one network request per
// call and normalizes transport and HTTP failures into a uniform result;
// retries, if ever needed, belong to callers.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// ErrNotConfigured is returned before any network attempt when the client
// has no backend URL or access key.
var ErrNotConfigured = errors.New("supabase is not configured")

// StatusError is a non-2xx HTTP response. Body carries the response body
// when present, otherwise the standard status text.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Body)
}

// Request describes one REST operation against a named table.
type Request struct {
	Table  string
	Method string     // GET, POST, PATCH or DELETE; empty means GET
	Query  url.Values // filter pairs, e.g. "username" -> "eq.alice"
	Select string     // field selection, empty means "*"
	Body   any        // request body, marshalled as JSON when non-nil
	Prefer string     // optional Prefer header directive
}

// Result is the outcome of a successful call. Data is nil on 204 responses
// and on bodies that fail to parse as JSON; both are successes so that
// read-path callers fall back to fixture data instead of failing.
type Result struct {
	Data   json.RawMessage
	Status int
}

// Decode unmarshals the result body into v. A nil body leaves v untouched.
func (r Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Client issues PostgREST requests against one configured project.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger
}

// New builds a client. An empty url or key yields a client whose calls all
// fail with ErrNotConfigured, which is how local-fallback mode is selected.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   http.DefaultClient,
		logger:  logger.With("component", "supabase"),
	}
}

// Configured reports whether the client can reach a remote backend.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Do performs one REST request. It never retries. The returned error is
// ErrNotConfigured, a *StatusError for non-2xx responses, or the underlying
// transport error; Result.Status is zero when no response was received.
func (c *Client) Do(ctx context.Context, req Request) (Result, error) {
	if !c.Configured() {
		return Result{}, ErrNotConfigured
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	sel := req.Select
	if sel == "" {
		sel = "*"
	}

	query := url.Values{}
	query.Set("select", sel)
	for key, values := range req.Query {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, req.Table, query.Encode())

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return Result{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Prefer != "" {
		httpReq.Header.Set("Prefer", req.Prefer)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(text))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Result{Status: resp.StatusCode}, &StatusError{Status: resp.StatusCode, Body: msg}
	}

	if resp.StatusCode == http.StatusNoContent {
		return Result{Status: resp.StatusCode}, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil || !json.Valid(data) {
		// A 2xx response with an unreadable or non-JSON body is treated as
		// success with no payload so read paths degrade to fixture data.
		c.logger.Warn("discarding unparseable response body", "table", req.Table, "status", resp.StatusCode)
		return Result{Status: resp.StatusCode}, nil
	}

	return Result{Data: data, Status: resp.StatusCode}, nil
}
