package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorType classifies a failed generation attempt.
type ErrorType string

const (
	// ErrorTypeUnconfigured means no API key is set; no call was made.
	ErrorTypeUnconfigured ErrorType = "unconfigured"
	// ErrorTypeInvalidRequest covers non-retriable 4xx responses.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	// ErrorTypeRateLimit is a 429 response.
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer is a 5xx response.
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeTimeout is a per-attempt deadline hit.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeConnection is any other transport failure.
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeBadResponse is a 200 reply missing an expected layer.
	ErrorTypeBadResponse ErrorType = "bad_response"
	// ErrorTypeExhausted means the retry budget ran out.
	ErrorTypeExhausted ErrorType = "exhausted"
)

// Error is a classified failure from the Gemini API.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini: %s (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: %s: %s", e.Type, e.Message)
}

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServer, ErrorTypeTimeout, ErrorTypeConnection, ErrorTypeBadResponse:
		return true
	}
	return false
}

// apiErrorBody is the Google REST error envelope.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// classifyStatus maps a non-200 response to a typed error.
func classifyStatus(statusCode int, body []byte, header http.Header) *Error {
	apiErr := &Error{StatusCode: statusCode}

	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = http.StatusText(statusCode)
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		apiErr.Type = ErrorTypeRateLimit
		apiErr.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	case statusCode >= 500:
		apiErr.Type = ErrorTypeServer
	default:
		apiErr.Type = ErrorTypeInvalidRequest
	}
	return apiErr
}

// parseRetryAfter reads a Retry-After header in delay-seconds form.
// The HTTP-date form is not used by this API and reads as zero.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
