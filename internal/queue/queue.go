// Package queue provides the staging queue for per-point image uploads: the
// save flow pushes one job per point while splitting payloads, then a small
// worker pool pops jobs until the queue runs dry.
package queue

import (
	"sync"
)

// Queue is a FIFO queue safe for concurrent producers and consumers. Each
// pushed item is handed to exactly one consumer.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items to the queue in order.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// TryPop removes and returns the first item. The second return is false when
// the queue is empty, which is how consumers know to stop.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
