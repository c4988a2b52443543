package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// scriptedDoer returns canned responses (or errors) in sequence and
// records every request it sees.
type scriptedDoer struct {
	responses []scriptedResponse
	calls     int
	bodies    []string
	urls      []string
	apiKeys   []string
}

type scriptedResponse struct {
	status int
	body   string
	err    error
}

// Do implements Doer.
func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body) //nolint:errcheck // Test helper
	d.bodies = append(d.bodies, string(body))
	d.urls = append(d.urls, req.URL.String())
	d.apiKeys = append(d.apiKeys, req.Header.Get("x-goog-api-key"))

	idx := d.calls
	d.calls++
	if idx >= len(d.responses) {
		idx = len(d.responses) - 1
	}
	r := d.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(bytes.NewBufferString(r.body)),
	}, nil
}

// okBody wraps a JSON payload in a minimal generateContent envelope.
func okBody(payload string) string {
	env := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": payload}},
				},
			},
		},
	}
	b, _ := json.Marshal(env) //nolint:errcheck // Static test data
	return string(b)
}

// newTestClient creates an HTTPClient with a scripted transport, a fixed
// clock, and a sleep recorder instead of real delays.
func newTestClient(doer *scriptedDoer, slept *[]time.Duration) *HTTPClient {
	return NewHTTPClient("test-key",
		WithDoer(doer),
		WithSleep(func(d time.Duration) {
			if slept != nil {
				*slept = append(*slept, d)
			}
		}),
		WithClock(func() time.Time {
			return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		}),
	)
}

// TestGenerateSuccess tests the happy path and request shaping.
func TestGenerateSuccess(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: okBody(`{"result": "success"}`)},
	}}
	c := newTestClient(doer, nil)

	got, err := c.Generate(context.Background(), Request{
		Model:     "gemini-3-flash-preview",
		System:    "You are a catalog analyst.",
		User:      "List services.",
		Schema:    json.RawMessage(`{"type": "object"}`),
		Grounding: true,
		Thinking:  true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if string(got) != `{"result": "success"}` {
		t.Errorf("Generate returned %s", got)
	}
	if doer.calls != 1 {
		t.Errorf("expected 1 attempt, got %d", doer.calls)
	}

	body := doer.bodies[0]
	if !strings.Contains(body, "Today is 2026-03-14 12:00:00 UTC") {
		t.Error("system instruction missing timestamp preamble")
	}
	if !strings.Contains(body, "You are a catalog analyst.") {
		t.Error("system instruction missing caller content")
	}
	if !strings.Contains(body, `"googleSearch"`) {
		t.Error("grounding tool not included")
	}
	if !strings.Contains(body, `"thinkingLevel":"high"`) {
		t.Error("thinking config not included")
	}
	if !strings.Contains(body, `"responseJsonSchema"`) {
		t.Error("response schema not included")
	}
}

// TestGenerateKeyInHeader tests that the API key travels in a request
// header and never appears in the request URL.
func TestGenerateKeyInHeader(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: okBody(`{"ok": true}`)},
	}}
	c := newTestClient(doer, nil)

	if _, err := c.Generate(context.Background(), Request{Model: "m", User: "u"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := doer.apiKeys[0]; got != "test-key" {
		t.Errorf("x-goog-api-key = %q, want %q", got, "test-key")
	}
	if strings.Contains(doer.urls[0], "key=") {
		t.Errorf("request URL %q carries the API key", doer.urls[0])
	}
}

// TestGenerateGroundingDisabled tests that no tools are sent without grounding.
func TestGenerateGroundingDisabled(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: okBody(`{"ok": true}`)},
	}}
	c := newTestClient(doer, nil)

	if _, err := c.Generate(context.Background(), Request{Model: "m", User: "u"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(doer.bodies[0], `"googleSearch"`) {
		t.Error("tools present despite grounding disabled")
	}
	if strings.Contains(doer.bodies[0], `"thinkingConfig"`) {
		t.Error("thinking config present despite thinking disabled")
	}
}

// TestGenerateRetriesExhausted tests that three straight failures yield a
// nil payload after exactly three attempts with exponential backoff.
func TestGenerateRetriesExhausted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp scriptedResponse
	}{
		{name: "transport error", resp: scriptedResponse{err: errors.New("connection reset")}},
		{name: "server error", resp: scriptedResponse{status: http.StatusInternalServerError, body: `{"error": {"code": 500}}`}},
		{name: "rate limited", resp: scriptedResponse{status: http.StatusTooManyRequests, body: "slow down"}},
		{name: "malformed payload", resp: scriptedResponse{status: http.StatusOK, body: okBody("not json at all")}},
		{name: "empty candidates", resp: scriptedResponse{status: http.StatusOK, body: `{"candidates": []}`}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var slept []time.Duration
			doer := &scriptedDoer{responses: []scriptedResponse{tt.resp}}
			c := newTestClient(doer, &slept)

			got, err := c.Generate(context.Background(), Request{Model: "m", User: "u"})
			if err == nil {
				t.Fatal("expected error after exhausted retries")
			}
			if got != nil {
				t.Errorf("expected nil payload, got %s", got)
			}
			if doer.calls != 3 {
				t.Errorf("expected exactly 3 attempts, got %d", doer.calls)
			}
			want := []time.Duration{time.Second, 2 * time.Second}
			if len(slept) != len(want) || slept[0] != want[0] || slept[1] != want[1] {
				t.Errorf("backoff sleeps = %v, want %v", slept, want)
			}
		})
	}
}

// TestGenerateSuccessAfterRetry tests that one failure followed by a
// success yields the payload after exactly two attempts.
func TestGenerateSuccessAfterRetry(t *testing.T) {
	t.Parallel()

	var slept []time.Duration
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusServiceUnavailable, body: "unavailable"},
		{status: http.StatusOK, body: okBody(`{"result": "success"}`)},
	}}
	c := newTestClient(doer, &slept)

	got, err := c.Generate(context.Background(), Request{Model: "m", User: "u"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if string(got) != `{"result": "success"}` {
		t.Errorf("Generate returned %s", got)
	}
	if doer.calls != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", doer.calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Errorf("backoff sleeps = %v, want [1s]", slept)
	}
}

// TestGenerateAPIError tests that an API-level error in a 200 response
// is still treated as a failed attempt.
func TestGenerateAPIError(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: `{"error": {"code": 400, "status": "INVALID_ARGUMENT", "message": "bad schema"}}`},
	}}
	c := newTestClient(doer, nil)

	_, err := c.Generate(context.Background(), Request{Model: "m", User: "u"})
	if err == nil {
		t.Fatal("expected error for API-level failure")
	}
	if !strings.Contains(err.Error(), "bad schema") {
		t.Errorf("error should carry API message, got %v", err)
	}
}

// TestGenerateMissingAPIKey tests the immediate failure path.
func TestGenerateMissingAPIKey(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{responses: []scriptedResponse{{status: http.StatusOK, body: okBody(`{}`)}}}
	c := NewHTTPClient("", WithDoer(doer))

	if _, err := c.Generate(context.Background(), Request{Model: "m"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
	if doer.calls != 0 {
		t.Errorf("expected no HTTP attempts, got %d", doer.calls)
	}
}

// errReader always fails, to exercise the body read error path.
type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, fmt.Errorf("read failure") }
func (errReader) Close() error             { return nil }

// TestGenerateBodyReadFailure tests that body read errors are retried.
func TestGenerateBodyReadFailure(t *testing.T) {
	t.Parallel()

	doer := &readErrDoer{}
	c := NewHTTPClient("k", WithDoer(doer), WithSleep(func(time.Duration) {}))

	if _, err := c.Generate(context.Background(), Request{Model: "m"}); err == nil {
		t.Fatal("expected error")
	}
	if doer.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", doer.calls)
	}
}

type readErrDoer struct{ calls int }

func (d *readErrDoer) Do(*http.Request) (*http.Response, error) {
	d.calls++
	return &http.Response{StatusCode: http.StatusOK, Body: errReader{}}, nil
}
