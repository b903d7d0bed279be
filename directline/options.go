package directline

import "net/http"

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithHTTPClient overrides the engine's HTTP client. Note that for SSE
// turns the client's Timeout field, if set, bounds the entire stream
// lifetime, not just the initial connect — prefer leaving Timeout unset
// and relying on context cancellation for SSE strategies.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.httpClient = c }
}

// WithRetryConfig overrides the bounded-retry tuning used for every REST
// hop and SSE open attempt.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(e *Engine) { e.retryConfig = cfg }
}

// WithExceptionReporter wires a telemetry sink that is notified once a
// request exhausts all retry attempts.
func WithExceptionReporter(r ExceptionReporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}
