package directline

import (
	"context"
	"net/http"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Engine is the protocol state machine: it owns conversation identity and
// dispatches each turn to the transport the strategy chooses for that
// call. An Engine is safe for concurrent use, though turns against a
// single conversation are expected to be driven sequentially through the
// handle chain TurnHandle produces.
type Engine struct {
	strategy    Strategy
	httpClient  *http.Client
	retryConfig RetryConfig
	reporter    ExceptionReporter

	mu             sync.Mutex
	conversationID string
}

// New creates an Engine bound to strategy, applying any options.
func New(strategy Strategy, opts ...Option) *Engine {
	e := &Engine{
		strategy:    strategy,
		httpClient:  defaultHTTPClient(),
		retryConfig: DefaultRetryConfig(),
		reporter:    NoopExceptionReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// ConversationID returns the conversation id learned from the bot's
// response, or "" before the first response that carries one.
func (e *Engine) ConversationID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conversationID
}

// StartNewConversation begins a conversation and returns a turn stream
// whose terminal value is the handle for the first user turn.
func (e *Engine) StartNewConversation(ctx context.Context, emitStartConversationEvent bool) TurnStream {
	return wrapTurn(e.startNewConversation(ctx, emitStartConversationEvent), e)
}

func (e *Engine) startNewConversation(ctx context.Context, emitStartConversationEvent bool) <-chan TurnItem {
	prep, err := e.strategy.PrepareStartNewConversation(ctx)
	if err != nil {
		return errChan(wrapErr("StartNewConversation", err))
	}
	body := mergeBody(prep.Body, map[string]any{"emitStartConversationEvent": emitStartConversationEvent})
	return e.dispatch(ctx, "StartNewConversation", prep, body)
}

// ExecuteTurn drives one user turn. It fails synchronously — as the sole
// item on the returned stream — if no conversation has started yet.
func (e *Engine) ExecuteTurn(ctx context.Context, activity Activity) TurnStream {
	return wrapTurn(e.executeTurn(ctx, activity), e)
}

func (e *Engine) executeTurn(ctx context.Context, activity Activity) <-chan TurnItem {
	if e.ConversationID() == "" {
		return errChan(ErrNoConversation)
	}

	prep, err := e.strategy.PrepareExecuteTurn(ctx)
	if err != nil {
		return errChan(wrapErr("ExecuteTurn", err))
	}
	body := mergeBody(prep.Body, map[string]any{"activity": activity})
	return e.dispatch(ctx, "ExecuteTurn", prep, body)
}

func (e *Engine) dispatch(ctx context.Context, operation string, prep StrategyRequestPrep, body map[string]any) <-chan TurnItem {
	adopt := func(id string) {
		if id == "" {
			return
		}
		e.mu.Lock()
		if e.conversationID == "" {
			e.conversationID = id
		}
		e.mu.Unlock()
	}
	getID := func() string {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.conversationID
	}

	switch prep.Transport {
	case TransportSSE:
		return runSSETurn(ctx, sseTurnParams{
			operation:            operation,
			httpClient:           e.httpClient,
			retryConfig:          e.retryConfig,
			reporter:             e.reporter,
			prep:                 prep,
			body:                 body,
			getConversationID:    getID,
			adoptConversationID:  adopt,
		})
	default:
		return runRESTTurn(ctx, restTurnParams{
			operation:           operation,
			httpClient:          e.httpClient,
			retryConfig:         e.retryConfig,
			reporter:            e.reporter,
			prep:                prep,
			body:                body,
			getConversationID:   getID,
			adoptConversationID: adopt,
		})
	}
}
