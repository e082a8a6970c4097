package sim

import (
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	"mech-arena/server/internal/spatial"
	"mech-arena/server/internal/visibility"
)

// SnapshotBuffer hands the latest tick result from the driver goroutine to
// readers on other goroutines. Subscribers receive the tick number of every
// stored result; slow subscribers miss ticks rather than block the store.
type SnapshotBuffer struct {
	mu     deadlock.RWMutex
	latest Result
	stored bool
	nextID int
	subs   map[int]chan uint64
}

func NewSnapshotBuffer() *SnapshotBuffer {
	return &SnapshotBuffer{subs: make(map[int]chan uint64)}
}

// Store publishes result. The driver must not mutate result afterwards.
func (b *SnapshotBuffer) Store(result Result) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.latest = result
	b.stored = true
	for _, ch := range b.subs {
		select {
		case ch <- result.Tick:
		default:
		}
	}
	b.mu.Unlock()
}

// Latest returns the most recent result, if any.
func (b *SnapshotBuffer) Latest() (Result, bool) {
	if b == nil {
		return Result{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.stored
}

// Viewer returns the latest visibility snapshot of viewer id.
func (b *SnapshotBuffer) Viewer(id uuid.UUID) (visibility.Snapshot, bool) {
	if b == nil {
		return visibility.Snapshot{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap, ok := b.latest.Visibility[id]
	return snap, ok
}

// Index returns the index occupancy of the latest result.
func (b *SnapshotBuffer) Index() spatial.IndexDebugInfo {
	if b == nil {
		return spatial.IndexDebugInfo{}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest.Index
}

// Subscribe returns a channel of stored tick numbers and a cancel func that
// closes it.
func (b *SnapshotBuffer) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	if b == nil {
		close(ch)
		return ch, func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once bool
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if once {
			return
		}
		once = true
		delete(b.subs, id)
		close(ch)
	}
}
