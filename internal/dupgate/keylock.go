package dupgate

import "sync"

// KeyLock provides per-identity mutual exclusion for the evaluate-then-record
// sequence. Observations of distinct recordings proceed fully in parallel;
// two observations of the same recording serialize on its key.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLock creates an empty lock table.
func NewKeyLock() *KeyLock {
	return &KeyLock{entries: make(map[string]*keyLockEntry)}
}

// Acquire blocks until the key's lock is held and returns the release
// function. Release is idempotent. Entries are dropped once unreferenced so
// the table does not grow with the archive.
func (l *KeyLock) Acquire(key string) (release func()) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &keyLockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, key)
			}
			l.mu.Unlock()
		})
	}
}
