package chatadapter

import "errors"

// ErrAdapterStopped is returned by PostActivity once Stop has been called,
// or by Run's caller-visible effects once the adapter has shut down
// cleanly. It carries no cause, so it is a plain sentinel rather than a
// pkg/errors.ContextualError.
var ErrAdapterStopped = errors.New("chatadapter: adapter stopped")
