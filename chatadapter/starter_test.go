package chatadapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brightloop-labs/directline-go/chatadapter"
	"github.com/brightloop-labs/directline-go/directline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseStrategy struct{ baseURL string }

func (s *sseStrategy) PrepareStartNewConversation(ctx context.Context) (directline.StrategyRequestPrep, error) {
	return directline.StrategyRequestPrep{BaseURL: s.baseURL, Transport: directline.TransportREST}, nil
}

func (s *sseStrategy) PrepareExecuteTurn(ctx context.Context) (directline.StrategyRequestPrep, error) {
	return directline.StrategyRequestPrep{BaseURL: s.baseURL, Transport: directline.TransportREST}, nil
}

func TestNewEngineStarter_ThreadsHandleAcrossCalls(t *testing.T) {
	t.Parallel()

	var hop int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hop++
		switch hop {
		case 1:
			_, _ = w.Write([]byte(`{"conversationId":"c-1","action":"waiting","activities":[]}`))
		default:
			_, _ = w.Write([]byte(`{"action":"waiting","activities":[{"type":"message","text":"turn reply"}]}`))
		}
	}))
	defer srv.Close()

	engine := directline.New(&sseStrategy{baseURL: srv.URL + "/"}, directline.WithRetryConfig(directline.RetryConfig{
		MaxAttempts: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1,
	}))

	start := chatadapter.NewEngineStarter(engine, true)
	initial, execute, err := start(t.Context())
	require.NoError(t, err)

	for range initial {
		t.Fatal("expected no initial activities")
	}

	for i := 0; i < 2; i++ {
		stream, err := execute(t.Context(), directline.NewActivity("message", map[string]any{"text": "hi"}))
		require.NoError(t, err)

		var activities []directline.Activity
		for ev := range stream {
			require.NoError(t, ev.Err)
			activities = append(activities, ev.Activity)
		}
		require.Len(t, activities, 1)
		assert.Equal(t, "turn reply", activities[0]["text"])
	}
}
