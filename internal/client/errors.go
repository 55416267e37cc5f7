package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrNotConfigured means the model credentials are missing. Model calls fail
// with it while the rest of the session stays usable.
var ErrNotConfigured = errors.New("AI client is not configured")

// HTTPError is a non-200 response from a provider endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsRetryableHTTPError returns true if err carries a retryable status code.
func IsRetryableHTTPError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}

// IsRetryableError checks typed errors first and falls back to message
// matching for untyped third-party errors.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if IsRetryableHTTPError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "connection reset", "connection refused", "eof", "tls handshake"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
