package events

import (
	"sync"

	"github.com/google/uuid"
)

// Deduper tracks recently seen event ids so a consumer receiving the same
// event through more than one path (direct push plus relay, or push plus a
// catch-up poll) surfaces it at most once. Bounded FIFO: oldest ids are
// forgotten once capacity is reached.
type Deduper struct {
	mu    sync.Mutex
	seen  map[uuid.UUID]struct{}
	order []uuid.UUID
	cap   int
}

func NewDeduper(capacity int) *Deduper {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Deduper{
		seen: make(map[uuid.UUID]struct{}, capacity),
		cap:  capacity,
	}
}

// Seen records id and reports whether it was already present.
func (d *Deduper) Seen(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	if len(d.order) > d.cap {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	return false
}
