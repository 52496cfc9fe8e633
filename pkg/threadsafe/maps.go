package threadsafe

import (
	"sync"
)

// Map is a mutex guarded registry. The zero value is not usable, see NewMap.
type Map[K comparable, V any] struct {
	sync.RWMutex
	items map[K]V
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		items: make(map[K]V),
	}
}

func (m *Map[K, V]) Set(key K, value V) {
	m.Lock()
	defer m.Unlock()

	m.items[key] = value
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.RLock()
	defer m.RUnlock()

	value, ok := m.items[key]
	return value, ok
}

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	m.Lock()
	defer m.Unlock()

	_, ok := m.items[key]
	delete(m.items, key)
	return ok
}

func (m *Map[K, V]) Len() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.items)
}
