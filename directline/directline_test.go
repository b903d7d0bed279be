package directline_test

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/brightloop-labs/directline-go/directline"
)

// fakeStrategy is a hand-written Strategy stub used across the package's
// tests, grounded on the teacher's pattern of testing HTTP-calling code
// against httptest servers rather than mocking the transport.
type fakeStrategy struct {
	baseURL   string
	transport directline.Transport
	headers   map[string]string
	startBody map[string]any
	turnBody  map[string]any
	err       error
}

func (s *fakeStrategy) PrepareStartNewConversation(ctx context.Context) (directline.StrategyRequestPrep, error) {
	if s.err != nil {
		return directline.StrategyRequestPrep{}, s.err
	}
	return directline.StrategyRequestPrep{
		BaseURL:   s.baseURL,
		Body:      s.startBody,
		Headers:   s.headers,
		Transport: s.transport,
	}, nil
}

func (s *fakeStrategy) PrepareExecuteTurn(ctx context.Context) (directline.StrategyRequestPrep, error) {
	if s.err != nil {
		return directline.StrategyRequestPrep{}, s.err
	}
	return directline.StrategyRequestPrep{
		BaseURL:   s.baseURL,
		Body:      s.turnBody,
		Headers:   s.headers,
		Transport: s.transport,
	}, nil
}

func fastRetry() directline.RetryConfig {
	return directline.RetryConfig{
		MaxAttempts:     5,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		Multiplier:      1,
	}
}

func newEngine(srv *httptest.Server, transport directline.Transport) *directline.Engine {
	strategy := &fakeStrategy{
		baseURL:   srv.URL + "/",
		transport: transport,
		headers:   map[string]string{"authorization": "Bearer test-token"},
		startBody: map[string]any{},
		turnBody:  map[string]any{},
	}
	return directline.New(strategy, directline.WithRetryConfig(fastRetry()))
}

// drainStream collects every activity from a turn stream, returning the
// activities observed, the terminal handle (if the stream drained
// cleanly), and the terminal error (if any).
func drainStream(stream directline.TurnStream) ([]directline.Activity, *directline.TurnHandle, error) {
	var activities []directline.Activity
	for item := range stream {
		if item.Err != nil {
			return activities, nil, item.Err
		}
		if item.Handle != nil {
			return activities, item.Handle, nil
		}
		activities = append(activities, item.Activity)
	}
	return activities, nil, nil
}
