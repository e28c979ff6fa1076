// Package scrapbox provides an HTTP client for the Scrapbox page-data API
// with automatic retry, rate limiting, and error classification.
package scrapbox

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, scrapbox.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("scrapbox: bad request")
	ErrUnauthorized = errors.New("scrapbox: unauthorized")
	ErrForbidden    = errors.New("scrapbox: forbidden")
	ErrNotFound     = errors.New("scrapbox: not found")
	ErrThrottled    = errors.New("scrapbox: throttled")
	ErrServerError  = errors.New("scrapbox: server error")
)

// APIError wraps a sentinel error with the HTTP status code and the response
// body for debugging.
type APIError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scrapbox: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ExportError reports a failed project export. The project name identifies
// which side of the pipeline failed when both projects are in play.
type ExportError struct {
	Project string
	Err     error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporting project %q: %v", e.Project, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ImportError reports a failed page import into the destination project.
type ImportError struct {
	Project string
	Err     error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("importing into project %q: %v", e.Project, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

// isRetryable reports whether the given HTTP status code should be retried.
func isRetryable(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
