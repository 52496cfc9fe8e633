package threadsafe

import "sync"

type Slice[T any] struct {
	sync.RWMutex
	items []T
}

func (s *Slice[T]) Append(items ...T) {
	s.Lock()
	defer s.Unlock()
	s.items = append(s.items, items...)
}

// Drain returns all queued items and empties the slice.
func (s *Slice[T]) Drain() []T {
	s.Lock()
	defer s.Unlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	s.items = s.items[:0]
	return out
}
