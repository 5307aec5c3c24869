// Package gemini is a small client for the Google Gemini generateContent
// REST API with retry, backoff and typed error classification.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/observability/metrics"
)

const (
	// DefaultBaseURL is the public Gemini REST endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "gemini-1.5-flash"
	// DefaultTimeout bounds a single generateContent attempt.
	DefaultTimeout = 60 * time.Second
	// DefaultRetries is how many times a retryable failure is reattempted.
	DefaultRetries = 2
	// DefaultRetryDelay is the base delay between attempts.
	DefaultRetryDelay = 2 * time.Second
)

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	retries    int
	retryDelay time.Duration
	httpClient *http.Client
	genConfig  *generationConfig
	logger     zerolog.Logger

	// sleep is replaced in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Client. An empty apiKey is allowed; Generate then fails
// immediately without performing I/O.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    DefaultBaseURL,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		genConfig:  defaultGenerationConfig(),
		logger:     logging.WithComponent("gemini"),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends prompt to the model and returns the trimmed reply text.
// Retryable failures are reattempted up to the configured budget. Callers
// should treat an error as "no content" rather than as fatal.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		c.logger.Error().Msg("Gemini API key is not configured, cannot make API call")
		return "", &Error{Type: ErrorTypeUnconfigured, Message: "no API key configured"}
	}

	body, err := json.Marshal(newGenerateRequest(prompt, c.genConfig))
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	delay := c.retryDelay
	attempts := c.retries + 1

	var lastErr *Error
	for attempt := 1; attempt <= attempts; attempt++ {
		c.logger.Debug().
			Int("attempt", attempt).
			Int("maxAttempts", attempts).
			Msg("Calling Gemini API")

		text, attemptErr := c.doAttempt(ctx, body)
		if attemptErr == nil {
			metrics.DefaultMetrics.RecordGeminiRequest("success", time.Since(start).Seconds())
			return text, nil
		}
		lastErr = attemptErr

		if !attemptErr.Retryable() {
			c.logger.Error().Err(attemptErr).Msg("Non-retriable Gemini error")
			metrics.DefaultMetrics.RecordGeminiRequest("failed", time.Since(start).Seconds())
			return "", attemptErr
		}
		if attempt == attempts {
			break
		}

		wait := delay
		switch attemptErr.Type {
		case ErrorTypeRateLimit:
			// Adopt the server-suggested delay when present, else double.
			wait = delay * 2
			if attemptErr.RetryAfter > 0 {
				wait = attemptErr.RetryAfter
			}
			delay = wait
		case ErrorTypeServer, ErrorTypeTimeout, ErrorTypeConnection:
			delay *= 2
		case ErrorTypeBadResponse:
			// Shape drift retries on the unchanged delay.
		}

		c.logger.Warn().
			Str("reason", string(attemptErr.Type)).
			Dur("wait", wait).
			Err(attemptErr).
			Msg("Gemini attempt failed, retrying")
		metrics.DefaultMetrics.RecordGeminiRetry(string(attemptErr.Type))

		if err := c.sleep(ctx, wait); err != nil {
			metrics.DefaultMetrics.RecordGeminiRequest("canceled", time.Since(start).Seconds())
			return "", err
		}
	}

	c.logger.Error().Int("attempts", attempts).Err(lastErr).Msg("Gemini call failed after all retries")
	metrics.DefaultMetrics.RecordGeminiRequest("exhausted", time.Since(start).Seconds())
	return "", &Error{
		Type:    ErrorTypeExhausted,
		Message: fmt.Sprintf("no usable response after %d attempts: %v", attempts, lastErr),
	}
}

func (c *Client) doAttempt(ctx context.Context, body []byte) (string, *Error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Type: ErrorTypeConnection, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &Error{Type: ErrorTypeTimeout, Message: err.Error()}
		}
		return "", &Error{Type: ErrorTypeConnection, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Type: ErrorTypeConnection, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, respBody, resp.Header)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &Error{Type: ErrorTypeBadResponse, Message: fmt.Sprintf("decode response: %v", err)}
	}

	text, missing := parsed.text()
	if missing != "" {
		if fb := parsed.PromptFeedback; fb != nil && fb.BlockReason != "" {
			c.logger.Error().Str("blockReason", fb.BlockReason).Msg("Gemini response blocked")
		}
		return "", &Error{Type: ErrorTypeBadResponse, Message: "response missing " + missing}
	}
	return strings.TrimSpace(text), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sleepContext waits d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
