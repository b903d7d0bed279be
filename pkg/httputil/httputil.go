// Package httputil provides shared HTTP client construction utilities for
// this module. It centralizes timeout defaults and client creation so that
// the REST and SSE transports use consistent configuration.
package httputil

import (
	"net/http"
	"time"
)

// Standard timeout defaults used by the engine's transports.
const (
	// DefaultRESTTimeout is the per-request HTTP timeout for the REST turn
	// loop (conversation start, activity post, activity poll).
	DefaultRESTTimeout = 60 * time.Second

	// DefaultSSEDialTimeout bounds how long the SSE turn reader waits for
	// the initial response headers before giving up; it does not bound the
	// lifetime of the stream itself once the body starts arriving.
	DefaultSSEDialTimeout = 30 * time.Second
)

// NewHTTPClient returns an *http.Client configured with the given timeout.
// Pass one of the Default*Timeout constants, or a custom duration.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
