package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
)

var (
	ErrHTTPStatus        = errors.New("api: unexpected status")
	ErrTimeout           = errors.New("api: request timed out")
	ErrConnection        = errors.New("api: connection failed")
	ErrRequestFailed     = errors.New("api: request failed")
	ErrMalformedResponse = errors.New("api: malformed response")
	ErrRateLimited       = errors.New("api: rate limit exceeded")
)

const bodyPreviewLimit = 200

// APIError reports a failed exchange with the service. StatusCode is 0 when no response arrived.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
	Cause      error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %s %s", e.Err, e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, " - %s", e.Body)
	}
	return b.String()
}

func (e *APIError) Unwrap() []error {
	out := []error{e.Err}
	if class := e.class(); class != nil {
		out = append(out, class)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// class maps the failure onto an errdefs category so callers can use errdefs.Is*.
func (e *APIError) class() error {
	switch {
	case errors.Is(e.Err, ErrTimeout):
		return context.DeadlineExceeded
	case errors.Is(e.Err, ErrConnection):
		return errdefs.ErrUnavailable
	}
	switch e.StatusCode {
	case 0:
		return nil
	case http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case http.StatusNotFound:
		return errdefs.ErrNotFound
	case http.StatusConflict:
		return errdefs.ErrConflict
	case http.StatusNotImplemented:
		return errdefs.ErrNotImplemented
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return errdefs.ErrUnavailable
	}
	if e.StatusCode >= 500 {
		return errdefs.ErrInternal
	}
	return errdefs.ErrUnknown
}

// RateLimitError is returned only when a retry cap is configured and exhausted.
type RateLimitError struct {
	Method   string
	Path     string
	Attempts int
	Body     string
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("%v: %s %s after %d attempts", ErrRateLimited, e.Method, e.Path, e.Attempts)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

func (e *RateLimitError) Unwrap() []error {
	return []error{ErrRateLimited, errdefs.ErrResourceExhausted}
}

// IsAPIError reports whether err came from the service exchange rather than local validation.
func IsAPIError(err error) bool {
	var apiErr *APIError
	var rlErr *RateLimitError
	return errors.As(err, &apiErr) || errors.As(err, &rlErr)
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyPreviewLimit {
		return s[:bodyPreviewLimit]
	}
	return s
}
