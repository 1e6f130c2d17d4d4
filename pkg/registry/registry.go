// Package registry provides a keyed get-or-create store for expensive
// long-lived resources such as venue HTTP clients. Entries are created at
// most once per key and live until the owning process shuts down; there is
// no TTL and no eviction. The registry is constructed by the composition
// root and passed to whoever needs it, it is not a package-level singleton.
package registry

import "sync"

// Registry stores one value per key with get-or-create semantics.
type Registry[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
}

// New returns an empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]V)}
}

// GetOrCreate returns the entry for key, constructing and storing it via
// create when absent. The registry lock is held across the whole
// check-construct-store sequence, so concurrent calls for the same key
// observe exactly one construction. A failed create stores nothing; the
// error is returned and a later call may retry.
func (r *Registry[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.entries[key]; ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	r.entries[key] = v
	return v, nil
}

// Get returns the entry for key if present.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[key]
	return v, ok
}

// Len returns the number of stored entries.
func (r *Registry[K, V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Keys returns a snapshot of the stored keys in no particular order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}
