package mutex

import "sync"

// Flight lets at most one caller in at a time. Callers which find it taken
// are turned away instead of waiting.
type Flight struct {
	mu sync.Mutex
}

// Do runs fn unless another Do is in progress. It reports whether fn ran.
func (f *Flight) Do(fn func()) bool {
	if !f.mu.TryLock() {
		return false
	}
	defer f.mu.Unlock()

	fn()
	return true
}
