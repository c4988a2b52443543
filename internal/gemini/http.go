package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	// maxAttempts is the total retry budget per Generate call.
	maxAttempts = 3

	// defaultBaseDelay is the backoff unit: the sleep before retry n is
	// baseDelay * 2^n.
	defaultBaseDelay = time.Second
)

// Doer issues a single HTTP request. *http.Client satisfies it; tests
// substitute a scripted implementation.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient implements Client against the generateContent REST API.
type HTTPClient struct {
	apiKey    string
	baseURL   string
	doer      Doer
	baseDelay time.Duration
	logger    *slog.Logger

	// sleep and now are injectable so the retry loop and the timestamp
	// preamble are testable without real delays.
	sleep func(time.Duration)
	now   func() time.Time
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithBaseURL overrides the API endpoint, typically for test servers.
func WithBaseURL(url string) HTTPOption {
	return func(c *HTTPClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) HTTPOption {
	return func(c *HTTPClient) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithBaseDelay overrides the backoff unit.
func WithBaseDelay(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithSleep replaces the sleep function used between retry attempts.
func WithSleep(sleep func(time.Duration)) HTTPOption {
	return func(c *HTTPClient) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithClock replaces the clock used for the timestamp preamble.
func WithClock(now func() time.Time) HTTPOption {
	return func(c *HTTPClient) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHTTPLogger sets a custom logger for the client.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewHTTPClient creates a Gemini client authenticated with apiKey.
func NewHTTPClient(apiKey string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		doer:      &http.Client{Timeout: 10 * time.Minute},
		baseDelay: defaultBaseDelay,
		sleep:     time.Sleep,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Generate issues one generateContent request with up to three attempts.
//
// Transport errors, non-200 statuses, API-level errors, and malformed
// response payloads are all retried uniformly; distinguishing genuinely
// non-retryable failures from transient ones is not worth the status-code
// taxonomy for a three-attempt budget, and the cost of a wasted retry is
// one backoff sleep. After the final attempt the last error is returned
// and the payload is nil.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	// The key travels in a header, not the URL, so transport errors
	// (which quote the full URL) stay free of credentials.
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, req.Model)
	start := c.now()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * (1 << uint(attempt-1))
			c.logger.Debug("retrying generate", "model", req.Model, "attempt", attempt+1, "delay", delay)
			c.sleep(delay)
		}

		payload, err := c.attempt(ctx, url, body)
		if err == nil {
			c.logger.Info("generate completed",
				"model", req.Model,
				"attempts", attempt+1,
				"bytes", len(payload),
				"elapsed", c.now().Sub(start),
			)
			return payload, nil
		}
		lastErr = err
		c.logger.Warn("generate attempt failed", "model", req.Model, "attempt", attempt+1, "error", err)
	}

	return nil, fmt.Errorf("gemini: retries exhausted for model %s: %w", req.Model, lastErr)
}

// attempt performs a single request/decode cycle.
func (c *HTTPClient) attempt(ctx context.Context, url string, body []byte) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response envelope: %w", err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("API error %d (%s): %s", genResp.Error.Code, genResp.Error.Status, genResp.Error.Message)
	}

	return decodePayload(&genResp)
}

// buildRequest shapes the wire request, injecting the timestamp preamble
// into the system instruction so the model treats "today" correctly in
// freshness-sensitive search queries.
func (c *HTTPClient) buildRequest(req Request) generateRequest {
	systemTime := c.now().UTC().Format("2006-01-02 15:04:05 MST")
	system := fmt.Sprintf(
		"Today is %s. Use this date as the reference point for all Google Search queries.\n\n%s",
		systemTime, req.System,
	)

	out := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.User}}},
		},
		SystemInstruction: &content{
			Parts: []part{{Text: system}},
		},
		GenerationConfig: generationConfig{
			Temperature:      1.0,
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		},
	}
	if req.Thinking {
		out.GenerationConfig.ThinkingConfig = &thinkingConfig{
			IncludeThoughts: true,
			ThinkingLevel:   "high",
		}
	}
	if req.Grounding {
		out.Tools = []tool{{GoogleSearch: &googleSearch{}}}
	}
	return out
}
