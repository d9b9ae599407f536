package cache

import (
	"sync"
	"sync/atomic"
)

// Registry tracks partitions so they can be emptied together.
type Registry struct {
	mu      sync.Mutex
	parts   []Clearable
	onClear []func()
	clears  atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the process-wide registry used when no other is configured.
var Default = NewRegistry()

// Register adds c. Registering the same partition twice is a no-op.
func (r *Registry) Register(c Clearable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parts {
		if p == c {
			return
		}
	}
	r.parts = append(r.parts, c)
}

// OnClear adds a hook run after every ClearAll.
func (r *Registry) OnClear(fn func()) {
	r.mu.Lock()
	r.onClear = append(r.onClear, fn)
	r.mu.Unlock()
}

// ClearAll empties every registered partition and returns how many
// entries were dropped. Safe to call concurrently with lookups.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	parts := append([]Clearable(nil), r.parts...)
	hooks := append([]func(){}, r.onClear...)
	r.mu.Unlock()

	dropped := 0
	for _, p := range parts {
		dropped += p.Len()
		p.Clear()
	}
	for _, h := range hooks {
		h()
	}
	r.clears.Add(1)
	return dropped
}

// Partitions returns the names of registered partitions.
func (r *Registry) Partitions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.parts))
	for i, p := range r.parts {
		names[i] = p.Name()
	}
	return names
}

// Clears reports how many times ClearAll ran.
func (r *Registry) Clears() uint64 { return r.clears.Load() }
