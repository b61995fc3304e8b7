package actor

import (
	"fmt"
	"sync"
)

// NameRegistry maps human-readable names to pids within one parent's
// scope. SystemState keeps one registry per parent pid, plus one for the
// root scope (parent == zero Pid).
type NameRegistry struct {
	mu      sync.Mutex
	byName  map[string]Pid
	counter uint64
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{byName: make(map[string]Pid)}
}

// Register binds name to pid, failing with the existing pid if name is
// already taken.
func (r *NameRegistry) Register(name string, pid Pid) (Pid, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[name]; ok {
		return existing, false
	}
	r.byName[name] = pid
	return Pid{}, true
}

// GenerateAnonymous returns a fresh "$"+counter name, never repeated by this
// registry's counter; the caller still calls Register with it, which fails
// only if that same "$N" name was already registered explicitly.
func (r *NameRegistry) GenerateAnonymous() string {
	r.mu.Lock()
	r.counter++
	n := r.counter
	r.mu.Unlock()
	return fmt.Sprintf("$%d", n)
}

// Release removes name's binding if present; a no-op otherwise.
func (r *NameRegistry) Release(name string) {
	r.mu.Lock()
	delete(r.byName, name)
	r.mu.Unlock()
}

// Lookup returns the pid bound to name, if any.
func (r *NameRegistry) Lookup(name string) (Pid, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pid, ok := r.byName[name]
	return pid, ok
}
