package feed

import (
	"sync"
)

// keyedLock serializes refreshes per feed ID so a manual trigger cannot race
// the scheduled batch into double-inserting under the generic updater's
// read-then-insert pattern. Mutexes are never evicted; the feed set is small.
type keyedLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the unlock function.
func (l *keyedLock) Lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
