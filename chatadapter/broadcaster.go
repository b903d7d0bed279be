package chatadapter

import "sync"

// statusBroadcaster implements connectionStatus$'s replay-latest
// semantics: any subscriber sees the current status first, then every
// subsequent transition, and the channel closes once a terminal status
// (FailedToConnect or Ended) has been reached.
type statusBroadcaster struct {
	mu      sync.Mutex
	current ConnectionStatus
	done    bool
	subs    map[chan ConnectionStatus]struct{}
}

func newStatusBroadcaster() *statusBroadcaster {
	return &statusBroadcaster{
		current: Uninitialized,
		subs:    make(map[chan ConnectionStatus]struct{}),
	}
}

// Subscribe returns a channel that immediately receives the current
// status, then every subsequent transition until a terminal one closes it.
func (b *statusBroadcaster) Subscribe() <-chan ConnectionStatus {
	ch := make(chan ConnectionStatus, 8)

	b.mu.Lock()
	defer b.mu.Unlock()

	ch <- b.current
	if b.done {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// emit publishes status to every current subscriber and records it as the
// replay value for future subscribers.
func (b *statusBroadcaster) emit(status ConnectionStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return
	}
	b.current = status
	for ch := range b.subs {
		ch <- status
		if isTerminal(status) {
			close(ch)
			delete(b.subs, ch)
		}
	}
	if isTerminal(status) {
		b.done = true
	}
}
