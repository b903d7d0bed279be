package chatadapter

import (
	"context"
	"sync"

	"github.com/brightloop-labs/directline-go/directline"
)

// TurnEvent is one item of a turn stream as seen by the façade: either the
// next activity, or a terminal error. The protocol engine's single-use
// handle is not visible here — threading it between calls is the
// responsibility of whatever implements ExecuteFunc, which is why
// NewEngineStarter exists instead of exposing *directline.TurnHandle
// directly.
type TurnEvent struct {
	Activity directline.Activity
	Err      error
}

// ExecuteFunc drives the next user turn, returning its stream of activities
// or a synchronous usage/engine error.
type ExecuteFunc func(ctx context.Context, activity directline.Activity) (<-chan TurnEvent, error)

// StartFunc begins a conversation, returning the first turn's activity
// stream and the callable for every subsequent turn. The façade depends on
// this narrow interface rather than *directline.Engine directly so it can
// be driven by a hand-written stub in tests.
type StartFunc func(ctx context.Context) (initial <-chan TurnEvent, execute ExecuteFunc, err error)

// NewEngineStarter adapts a live *directline.Engine into a StartFunc,
// threading the single-use turn handle between calls internally so callers
// never have to manage it themselves.
func NewEngineStarter(engine *directline.Engine, emitStartConversationEvent bool) StartFunc {
	return func(ctx context.Context) (<-chan TurnEvent, ExecuteFunc, error) {
		out, handleCh := splitTurnStream(engine.StartNewConversation(ctx, emitStartConversationEvent))
		s := &engineStarter{handleCh: handleCh}
		return out, s.execute, nil
	}
}

type engineStarter struct {
	mu       sync.Mutex
	handleCh <-chan *directline.TurnHandle
}

func (s *engineStarter) execute(ctx context.Context, activity directline.Activity) (<-chan TurnEvent, error) {
	s.mu.Lock()
	ch := s.handleCh
	s.mu.Unlock()

	handle, ok := <-ch
	if !ok || handle == nil {
		return nil, directline.ErrObsoletedHandle
	}

	stream, err := handle.Execute(ctx, activity)
	if err != nil {
		return nil, err
	}

	out, nextHandleCh := splitTurnStream(stream)

	s.mu.Lock()
	s.handleCh = nextHandleCh
	s.mu.Unlock()

	return out, nil
}

// splitTurnStream forwards every activity/error item from in to the
// returned TurnEvent channel, and delivers the terminal handle (if any) on
// a separate single-slot channel once the stream drains.
func splitTurnStream(in directline.TurnStream) (<-chan TurnEvent, <-chan *directline.TurnHandle) {
	out := make(chan TurnEvent)
	handleCh := make(chan *directline.TurnHandle, 1)

	go func() {
		defer close(out)
		defer close(handleCh)

		for item := range in {
			switch {
			case item.Err != nil:
				out <- TurnEvent{Err: item.Err}
			case item.Handle != nil:
				handleCh <- item.Handle
			default:
				out <- TurnEvent{Activity: item.Activity}
			}
		}
	}()

	return out, handleCh
}
