package engine

import "sync"

// sessionLocks serializes operations per session ID so two concurrent
// transitions (or a transition racing a timer expiry) never interleave
// on the same session. Lock entries are tiny and bounded by the number
// of sessions seen by this process.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the session's mutex and returns the unlock function.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
