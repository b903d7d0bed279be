package chatadapter

import (
	"sync"

	"github.com/brightloop-labs/directline-go/directline"
)

// ring is a small fixed-capacity buffer of recently observed activities,
// backing Adapter.History. It is a supplemented diagnostic aid, not part
// of the wire protocol, and is never persisted.
type ring struct {
	mu   sync.Mutex
	buf  []directline.Activity
	next int
	size int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &ring{buf: make([]directline.Activity, capacity)}
}

func (r *ring) add(a directline.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = a
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *ring) snapshot() []directline.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]directline.Activity, r.size)
	start := (r.next - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}
