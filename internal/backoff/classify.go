package backoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// StatusError is a failed remote call that produced an HTTP status
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// TransientStatus reports whether an HTTP status is worth retrying
func TransientStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code == http.StatusRequestTimeout:
		return true
	case code >= 500 && code < 600:
		return true
	}
	return false
}

// IsTransient classifies generic HTTP/network failures: retryable statuses,
// timeouts and connection errors. Cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return TransientStatus(statusErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "i/o timeout", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

var rateLimitMessages = []string{
	"rate limit",
	"ratelimit",
	"rate_limit_exceeded",
	"quota exceeded",
	"resource_exhausted",
	"too many requests",
}

// IsRemoteTableTransient classifies remote-table failures: everything IsTransient
// accepts, plus API errors whose message reports a rate limit or quota.
func IsRemoteTableTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if IsTransient(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, s := range rateLimitMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
