// Package keylock provides a mutex per string key, so independent entities
// (connection pairs, posts) never contend with each other while check-then-act
// sequences on the same entity stay serialized.
package keylock

import "sync"

// KeyLock hands out one mutex per key. Mutexes are created lazily and kept
// for the life of the process; the key space here (user pairs, post IDs) is
// bounded by the data set, so no eviction is needed.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it if needed, and returns the
// matching unlock function.
func (k *KeyLock) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
