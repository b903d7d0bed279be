package chatadapter

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/brightloop-labs/directline-go/directline"
	"github.com/brightloop-labs/directline-go/internal/logger"
)

const defaultHistorySize = 50

// Option configures an Adapter at construction time.
type Option func(*Adapter)

// WithHistorySize overrides the number of recent activities History
// retains. The default is 50.
func WithHistorySize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.history = newRing(n)
		}
	}
}

// Adapter is the chat-adapter façade: it pumps the protocol engine on
// behalf of a single caller, exposing activities and connection status as
// channels and PostActivity as a blocking call — the idiomatic Go
// expression of a single-value async result, in place of a stream that
// only ever carries one element.
//
// Once the façade transitions to terminal failure, every subsequent
// PostActivity call returns the same cached error immediately, without
// touching the engine again.
type Adapter struct {
	start StartFunc

	activities chan directline.Activity
	status     *statusBroadcaster
	postQueue  chan postRequest
	history    *ring

	stopCh   chan struct{}
	stopOnce sync.Once

	mu          sync.Mutex
	terminalErr error
}

type postRequest struct {
	ctx      context.Context
	activity directline.Activity
	result   chan postResult
}

type postResult struct {
	id  string
	err error
}

// New creates an Adapter around start. Call Run, typically in its own
// goroutine, to begin pumping.
func New(start StartFunc, opts ...Option) *Adapter {
	a := &Adapter{
		start:      start,
		activities: make(chan directline.Activity, 16),
		status:     newStatusBroadcaster(),
		postQueue:  make(chan postRequest),
		history:    newRing(defaultHistorySize),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Activities returns the channel of every activity yielded across all
// turns, in order. It closes when the adapter terminates.
func (a *Adapter) Activities() <-chan directline.Activity {
	return a.activities
}

// ConnectionStatus returns a replay-latest channel of connection lifecycle
// transitions: a fresh subscriber immediately receives the current status,
// then every subsequent one.
func (a *Adapter) ConnectionStatus() <-chan ConnectionStatus {
	return a.status.Subscribe()
}

// History returns up to the last N activities observed, oldest first.
func (a *Adapter) History() []directline.Activity {
	return a.history.snapshot()
}

// Stop requests a clean shutdown: Run emits Ended and returns once it next
// reaches its select loop. Outstanding PostActivity calls still in flight
// are allowed to finish; new ones after Stop fail with ErrAdapterStopped.
func (a *Adapter) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
}

// PostActivity posts a user activity and blocks until every activity from
// the resulting turn has reached Activities, returning a synthetic id on
// success.
func (a *Adapter) PostActivity(ctx context.Context, activity directline.Activity) (string, error) {
	a.mu.Lock()
	if a.terminalErr != nil {
		err := a.terminalErr
		a.mu.Unlock()
		return "", err
	}
	a.mu.Unlock()

	result := make(chan postResult, 1)
	req := postRequest{ctx: ctx, activity: activity, result: result}

	select {
	case a.postQueue <- req:
	case <-a.stopCh:
		return "", ErrAdapterStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-result:
		return res.id, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run starts the façade: it begins the conversation, then serves
// PostActivity calls one at a time until the engine fails, Stop is called,
// or ctx is canceled. Run must be called exactly once.
func (a *Adapter) Run(ctx context.Context) {
	defer close(a.activities)

	// The broadcaster already starts at Uninitialized, so a subscriber that
	// connects before Run begins sees it via replay without a redundant emit.
	a.status.emit(Connecting)

	initial, execute, err := a.start(ctx)
	if err != nil {
		a.fail(err)
		return
	}

	var onlineOnce sync.Once
	emitOnline := func() { onlineOnce.Do(func() { a.status.emit(Online) }) }

	if !a.drain(initial, emitOnline) {
		return
	}
	emitOnline()

	for {
		select {
		case req := <-a.postQueue:
			a.serve(req, execute)
			if a.failed() {
				return
			}
		case <-a.stopCh:
			a.status.emit(Ended)
			return
		case <-ctx.Done():
			a.status.emit(Ended)
			return
		}
	}
}

func (a *Adapter) serve(req postRequest, execute ExecuteFunc) {
	stream, err := execute(req.ctx, req.activity)
	if err != nil {
		req.result <- postResult{err: err}
		a.fail(err)
		return
	}
	if !a.drain(stream, func() {}) {
		req.result <- postResult{err: a.terminalErr}
		return
	}
	req.result <- postResult{id: uuid.NewString()}
}

// drain forwards every activity from stream to Activities, invoking
// onFirst once before the first activity is republished (or once at the
// end if the stream yielded no activities at all) — used to pin Online's
// emission strictly before the first activity reaches a subscriber.
// Returns false if the stream yielded an error, in which case fail has
// already been called.
func (a *Adapter) drain(stream <-chan TurnEvent, onFirst func()) bool {
	first := true
	for ev := range stream {
		if ev.Err != nil {
			a.fail(ev.Err)
			return false
		}
		if first {
			onFirst()
			first = false
		}
		a.history.add(ev.Activity)
		a.activities <- ev.Activity
	}
	if first {
		onFirst()
	}
	return true
}

func (a *Adapter) fail(err error) {
	a.mu.Lock()
	if a.terminalErr != nil {
		a.mu.Unlock()
		return
	}
	a.terminalErr = err
	a.mu.Unlock()

	logger.Error("chat adapter transitioned to terminal failure", "error", err)
	a.status.emit(FailedToConnect)
}

func (a *Adapter) failed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.terminalErr != nil
}
