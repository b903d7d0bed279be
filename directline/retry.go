package directline

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/brightloop-labs/directline-go/internal/metrics"
)

// RetryConfig tunes the bounded exponential retry every REST hop and SSE
// open attempt is wrapped in.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first —
	// five total attempts means four retries.
	MaxAttempts int

	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryConfig matches the wire contract: five total attempts with
// exponential backoff between them, short-circuiting on any non-retryable
// failure.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

// retryable is implemented by errors that know whether retrying them is
// worthwhile. StatusError is the only producer of it in this package.
type retryable interface {
	Retryable() bool
}

// withRetry runs op, retrying on failure up to cfg.MaxAttempts total
// attempts with exponential backoff. Any error satisfying retryable and
// reporting false short-circuits further attempts immediately. When all
// attempts are exhausted, reporter (if non-nil) is notified once with the
// final error, tagged the way the bot-connector wire contract expects.
// operation labels the attempt-count metric this records.
func withRetry[T any](ctx context.Context, operation string, cfg RetryConfig, reporter ExceptionReporter, op func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier

	attempts := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		v, opErr := op()
		if opErr == nil {
			return v, nil
		}
		var re retryable
		if errors.As(opErr, &re) && !re.Retryable() {
			return v, backoff.Permanent(opErr)
		}
		return v, opErr
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(cfg.MaxAttempts)))

	outcome := "succeeded"
	switch {
	case err != nil && attempts >= cfg.MaxAttempts:
		outcome = "exhausted"
	case err != nil:
		outcome = "short_circuited"
	}
	metrics.RecordRetryAttempts(operation, outcome, attempts)

	if err != nil && attempts >= cfg.MaxAttempts && reporter != nil {
		reporter.ReportException(ctx, err, map[string]string{
			"handledAt":  "withRetries",
			"retryCount": strconv.Itoa(cfg.MaxAttempts),
		})
	}

	return result, err
}
