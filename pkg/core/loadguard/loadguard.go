// Package loadguard drops duplicate concurrent loads of the same resource.
// It is advisory: a slow first load can still finish after a later one.
package loadguard

import "sync"

// Guard tracks which resources have a load in flight
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

// New creates an empty guard
func New() *Guard {
	return &Guard{inFlight: make(map[string]bool)}
}

// TryAcquire marks key as loading. ok is false if a load for key is
// already running, in which case the caller should skip its load.
func (g *Guard) TryAcquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight[key] {
		return func() {}, false
	}
	g.inFlight[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, true
}

// InFlight reports whether a load for key is running
func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight[key]
}
