package marketplace

import "sync"

// keyedMutex serializes mutating operations per listing key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	if lock, ok := k.locks[key]; ok {
		return lock
	}

	lock := &sync.Mutex{}
	k.locks[key] = lock
	return lock
}

func (k *keyedMutex) Lock(key string) {
	k.get(key).Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.get(key).Unlock()
}

// reentryGuard marks a listing key while an external transfer or payment for it
// is in flight. A guarded entry point invoked for a held key fails immediately
// instead of deadlocking on the listing lock, which is how a payee re-entering
// the engine from its own payout is rejected.
type reentryGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newReentryGuard() *reentryGuard {
	return &reentryGuard{held: make(map[string]bool)}
}

func (g *reentryGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.held[key]
}

func (g *reentryGuard) Enter(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.held[key] = true
}

func (g *reentryGuard) Exit(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.held, key)
}
