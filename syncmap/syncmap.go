package syncmap

import (
	"iter"
	"sync"
)

// Map is a regular map but synchronized with a read-write mutex.
type Map[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// New returns a new syncmap.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// Load returns the value for a key.
func (m *Map[K, V]) Load(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[key]
	return v, ok
}

// Swap sets the value for a key and returns the value it replaced, if any.
func (m *Map[K, V]) Swap(key K, value V) (previous V, loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous, loaded = m.m[key]
	m.m[key] = value
	return previous, loaded
}

// Len returns the number of elements in the map.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

// All iterates over a snapshot of all elements in the map, so the loop body
// may use the map.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(f func(K, V) bool) {
		type kv struct {
			k K
			v V
		}
		m.mu.RLock()
		s := make([]kv, 0, len(m.m))
		for k, v := range m.m {
			s = append(s, kv{k, v})
		}
		m.mu.RUnlock()
		for _, e := range s {
			if !f(e.k, e.v) {
				return
			}
		}
	}
}
