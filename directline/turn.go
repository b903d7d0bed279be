package directline

import (
	"context"
	"sync"
)

// TurnItem is one element of a turn's lazy activity sequence. Exactly one
// field is meaningful on any given item:
//
//   - Err set: the turn failed; no further items follow.
//   - Handle set: this is the terminal item of a wrapped turn sequence,
//     carrying the single-use capability to start the next turn.
//   - neither set: Activity carries the next bot-produced activity.
type TurnItem struct {
	Activity Activity
	Handle   *TurnHandle
	Err      error
}

// TurnStream is a lazy, pull-based sequence of TurnItems. Ranging over it
// naturally suspends the consumer on each receive until the engine has the
// next item ready, which is what makes it safe to back with a live HTTP
// response body.
type TurnStream = <-chan TurnItem

// TurnHandle is the single-use capability to start the next user turn,
// yielded as the terminal value of a wrapped turn stream. Invoking it a
// second time fails with ErrObsoletedHandle rather than starting a second,
// conflicting turn against the same conversation.
type TurnHandle struct {
	engine *Engine

	mu        sync.Mutex
	obsoleted bool
}

// Execute consumes the handle and starts the next turn with activity. A
// second call on the same handle returns ErrObsoletedHandle without
// touching the network.
func (h *TurnHandle) Execute(ctx context.Context, activity Activity) (TurnStream, error) {
	h.mu.Lock()
	if h.obsoleted {
		h.mu.Unlock()
		return nil, ErrObsoletedHandle
	}
	h.obsoleted = true
	h.mu.Unlock()

	return wrapTurn(h.engine.executeTurn(ctx, activity), h.engine), nil
}

// wrapTurn forwards every item from raw to the returned stream, then, if
// raw drained without an error, appends one terminal item carrying a fresh
// TurnHandle bound to engine. A raw stream that ends in an error yields no
// handle: there is no next turn to start.
func wrapTurn(raw <-chan TurnItem, engine *Engine) TurnStream {
	out := make(chan TurnItem)
	go func() {
		defer close(out)
		failed := false
		for item := range raw {
			out <- item
			if item.Err != nil {
				failed = true
			}
		}
		if !failed {
			out <- TurnItem{Handle: &TurnHandle{engine: engine}}
		}
	}()
	return out
}
