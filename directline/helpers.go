package directline

import (
	"context"

	pkgerrors "github.com/brightloop-labs/directline-go/pkg/errors"
)

// wrapErr attaches the operation name to cause using the module's shared
// contextual error type.
func wrapErr(operation string, cause error) error {
	return pkgerrors.New("directline", operation, cause)
}

// errChan returns an already-closed turn stream carrying exactly one error
// item, used when a turn fails synchronously before any network call.
func errChan(err error) <-chan TurnItem {
	ch := make(chan TurnItem, 1)
	ch <- TurnItem{Err: err}
	close(ch)
	return ch
}

// sendErr delivers a terminal error item to out, honoring ctx cancellation
// so a goroutine never blocks forever on an abandoned stream.
func sendErr(ctx context.Context, out chan<- TurnItem, err error) {
	select {
	case out <- TurnItem{Err: err}:
	case <-ctx.Done():
	}
}

func cloneHeaders(h map[string]string) map[string]string {
	cloned := make(map[string]string, len(h)+2)
	for k, v := range h {
		cloned[k] = v
	}
	return cloned
}

// mergeBody shallow-merges extra's keys over base, without mutating either.
func mergeBody(base, extra map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
