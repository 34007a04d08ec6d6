package security

import "sync"

// Ring is a bounded FIFO safe for concurrent use. Pushing into a full ring
// evicts the oldest item.
type Ring[T any] struct {
	mu      sync.Mutex
	items   []T
	start   int
	size    int
	evicted int64
}

// NewRing creates a ring holding at most capacity items; capacity <= 0 means 10000.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends v and reports whether the oldest item was evicted to fit it.
func (r *Ring[T]) Push(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.items)
	if r.size == n {
		r.items[r.start] = v
		r.start = (r.start + 1) % n
		r.evicted++
		return true
	}
	r.items[(r.start+r.size)%n] = v
	r.size++
	return false
}

// PopN removes and returns up to n of the oldest items.
func (r *Ring[T]) PopN(n int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, r.size)
	if n <= 0 {
		return nil
	}
	var zero T
	out := make([]T, n)
	for i := range out {
		idx := (r.start + i) % len(r.items)
		out[i] = r.items[idx]
		r.items[idx] = zero
	}
	r.start = (r.start + n) % len(r.items)
	r.size -= n
	return out
}

func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Evicted counts items dropped by Push since creation.
func (r *Ring[T]) Evicted() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evicted
}
