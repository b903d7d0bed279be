package directline_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightloop-labs/directline-go/directline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSEEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// TestSSETurn_SingleStream covers the SSE one-stream scenario: a single
// POST opens a stream that yields two activities and an explicit "end"
// event, with an ignored heartbeat event in between.
func TestSSETurn_SingleStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		writeSSEEvent(w, "activity", `{"type":"message","conversation":{"id":"c-sse"},"text":"hi"}`)
		writeSSEEvent(w, "heartbeat", `{}`)
		writeSSEEvent(w, "activity", `{"type":"message","text":"there"}`)
		writeSSEEvent(w, "end", "")
	}))
	defer srv.Close()

	engine := newEngine(srv, directline.TransportSSE)
	stream := engine.StartNewConversation(t.Context(), true)

	activities, handle, err := drainStream(stream)
	require.NoError(t, err)
	require.NotNil(t, handle)
	require.Len(t, activities, 2)
	assert.Equal(t, "hi", activities[0]["text"])
	assert.Equal(t, "there", activities[1]["text"])
	assert.Equal(t, "c-sse", engine.ConversationID())
}

// TestSSETurn_WrongContentType covers the protocol-shape failure where a
// 2xx response declares a content type other than text/event-stream; this
// must fail without being retried.
func TestSSETurn_WrongContentType(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	engine := newEngine(srv, directline.TransportSSE)
	stream := engine.StartNewConversation(t.Context(), true)

	_, _, err := drainStream(stream)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content type")
	assert.Equal(t, 1, calls, "a protocol-shape error on a 2xx response must not be retried")
}

// TestSSETurn_EmptyBody covers a 2xx response with the right content type
// but no body at all.
func TestSSETurn_EmptyBody(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	engine := newEngine(srv, directline.TransportSSE)
	stream := engine.StartNewConversation(t.Context(), true)

	_, _, err := drainStream(stream)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not respond with body")
	assert.Equal(t, 1, calls)
}

// TestSSETurn_PrematureEOF covers a stream that ends without an explicit
// "end" event: the turn terminates cleanly, with no error.
func TestSSETurn_PrematureEOF(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		writeSSEEvent(w, "activity", `{"type":"message","text":"only one"}`)
	}))
	defer srv.Close()

	engine := newEngine(srv, directline.TransportSSE)
	stream := engine.StartNewConversation(t.Context(), true)

	activities, handle, err := drainStream(stream)
	require.NoError(t, err)
	require.NotNil(t, handle)
	require.Len(t, activities, 1)
	assert.Equal(t, "only one", activities[0]["text"])
}

// TestSSETurn_ServerError covers a 5xx response during stream open, which
// is retried like the REST transport's hop failures.
func TestSSETurn_ServerError(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSEEvent(w, "end", "")
	}))
	defer srv.Close()

	engine := newEngine(srv, directline.TransportSSE)
	stream := engine.StartNewConversation(t.Context(), true)

	_, handle, err := drainStream(stream)
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, 2, calls)
}
