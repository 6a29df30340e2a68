package fulfillment

import "sync"

// Guard serializes confirmation attempts per donor key inside this process.
// A second attempt for a key that is still in flight is rejected outright
// rather than queued, so double-clicked confirm buttons cannot race the
// history fence. Keys of successfully confirmed donors are deliberately
// never released. This fence is process-local; across instances the only
// real exclusion is the conditional ledger update.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

// Acquire claims the key. It reports false when the key is already held.
func (g *Guard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inflight[key]; held {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// Release frees the key. Releasing a key that is not held is a no-op.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}

// InFlight returns the number of keys currently held.
func (g *Guard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
