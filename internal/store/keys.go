package store

import "sync"

const sessionPrefix = "session:"

// sessionKey builds the Badger key for a session id.
func sessionKey(id string) []byte {
	key := make([]byte, 0, len(sessionPrefix)+len(id))
	key = append(key, sessionPrefix...)
	return append(key, id...)
}

// keyedMutex hands out one mutex per key, dropping it when the last holder
// releases it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock locks key and returns the matching unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
