// Package ring provides fixed-capacity circular buffers safe for one producer and one
// consumer running in different contexts without locks.
package ring

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrFull is returned when no slot is free.
	ErrFull = errors.New("ring: full")
	// ErrBusy is returned by TryEnqueue when another producer holds the queue.
	ErrBusy = errors.New("ring: producer busy")
)

// Ring is a single-producer single-consumer circular buffer of capacity N holding at
// most N-1 items: it is full when head+1 == tail (mod N).
type Ring[T any] struct {
	_      [0]func() // prevent accidental copying.
	head   atomic.Uint32
	tail   atomic.Uint32
	slots  []T
	vacant T
}

// New returns a ring with capacity n. Freed slots are overwritten with vacant.
func New[T any](n int, vacant T) *Ring[T] {
	if n < 2 {
		panic(fmt.Sprintf("ring: capacity %d, want >= 2", n))
	}
	r := &Ring[T]{slots: make([]T, n), vacant: vacant}
	for i := range r.slots {
		r.slots[i] = vacant
	}
	return r
}

// Cap returns the capacity N; at most N-1 items are stored.
func (r *Ring[T]) Cap() int { return len(r.slots) }

// Len returns the number of stored items.
func (r *Ring[T]) Len() int {
	n := uint32(len(r.slots))
	return int((r.head.Load() + n - r.tail.Load()) % n)
}

// Push appends v. Only the producer may call it.
func (r *Ring[T]) Push(v T) bool {
	n := uint32(len(r.slots))
	head := r.head.Load()
	next := (head + 1) % n
	if next == r.tail.Load() {
		return false
	}
	r.slots[head] = v
	r.head.Store(next)
	return true
}

// Pop removes the oldest item, writing the vacant marker into its slot.
// Only the consumer may call it.
func (r *Ring[T]) Pop() (T, bool) {
	n := uint32(len(r.slots))
	tail := r.tail.Load()
	if tail == r.head.Load() {
		var zero T
		return zero, false
	}
	v := r.slots[tail]
	r.slots[tail] = r.vacant
	r.tail.Store((tail + 1) % n)
	return v, true
}

// Peek returns the oldest item without removing it. Only the consumer may call it.
func (r *Ring[T]) Peek() (T, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		var zero T
		return zero, false
	}
	return r.slots[tail], true
}

// Slots copies the raw slot array and indices for diagnostics. The copy may be torn
// while a producer or consumer is active.
func (r *Ring[T]) Slots(dst []T) (head, tail int, n int) {
	n = copy(dst, r.slots)
	return int(r.head.Load()), int(r.tail.Load()), n
}

// Queue is a Ring whose producer side may be shared by several contexts. Regular
// producers serialise on a mutex; interrupt-context producers use TryEnqueue, which
// never blocks. The consumer side stays lock-free.
type Queue[T any] struct {
	r  *Ring[T]
	mu sync.Mutex
}

// NewQueue returns a queue with capacity n.
func NewQueue[T any](n int, vacant T) *Queue[T] {
	return &Queue[T]{r: New(n, vacant)}
}

// Enqueue appends v, returning ErrFull when no slot is free.
func (q *Queue[T]) Enqueue(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.r.Push(v) {
		return ErrFull
	}
	return nil
}

// TryEnqueue is Enqueue for interrupt context. It returns ErrBusy instead of waiting
// for another producer.
func (q *Queue[T]) TryEnqueue(v T) error {
	if !q.mu.TryLock() {
		return ErrBusy
	}
	defer q.mu.Unlock()
	if !q.r.Push(v) {
		return ErrFull
	}
	return nil
}

// Dequeue removes the oldest item. Only the consumer may call it.
func (q *Queue[T]) Dequeue() (T, bool) { return q.r.Pop() }

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return q.r.Len() }

// Cap returns the ring capacity.
func (q *Queue[T]) Cap() int { return q.r.Cap() }

// Ring exposes the underlying ring for diagnostics.
func (q *Queue[T]) Ring() *Ring[T] { return q.r }
