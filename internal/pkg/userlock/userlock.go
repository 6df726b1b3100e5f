// Package userlock serialises per-user critical sections. All cart and order
// state is keyed by user identity, so two operations for different users never
// contend, but read-modify-write sequences for the same user must not
// interleave.
package userlock

import "sync"

// Keyed hands out one mutex per key. Mutexes are never evicted; the key space
// is the set of active user ids, which is small enough not to matter here.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Keyed {
	return &Keyed{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *Keyed) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key. Panics if Lock was not called first,
// same as sync.Mutex.
func (k *Keyed) Unlock(key string) {
	k.get(key).Unlock()
}

func (k *Keyed) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
