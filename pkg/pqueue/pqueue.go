package pqueue

import (
	"container/heap"
	"errors"
)

var ErrEmpty = errors.New("priority queue is empty")

// items implements heap.Interface
type items[T any] struct {
	data []T
	less func(a, b T) bool
}

func (h items[T]) Len() int {
	return len(h.data)
}

func (h items[T]) Less(i, j int) bool {
	return h.less(h.data[i], h.data[j])
}

func (h items[T]) Swap(i, j int) {
	h.data[i], h.data[j] = h.data[j], h.data[i]
}

func (h *items[T]) Push(x any) {
	h.data = append(h.data, x.(T))
}

func (h *items[T]) Pop() any {
	var zero T
	n := len(h.data)
	v := h.data[n-1]
	h.data[n-1] = zero // drop the reference held by the backing array
	h.data = h.data[:n-1]
	return v
}

// PriorityQueue is an array-backed binary heap. less(a, b) reports whether a
// must be served before b; the root is always the element no other element
// is less than. Ties are whatever less says they are.
type PriorityQueue[T any] struct {
	h *items[T]
}

// New returns a queue ordered by less, bulk-loaded with initial.
func New[T any](less func(a, b T) bool, initial ...T) *PriorityQueue[T] {
	q := &PriorityQueue[T]{h: &items[T]{less: less}}
	q.Build(initial)
	return q
}

// Build replaces the contents with initial and heapifies in O(n).
func (q *PriorityQueue[T]) Build(initial []T) {
	q.h.data = append(make([]T, 0, len(initial)), initial...)
	heap.Init(q.h)
}

func (q *PriorityQueue[T]) Push(v T) {
	heap.Push(q.h, v)
}

// Pop removes and returns the extreme element.
func (q *PriorityQueue[T]) Pop() (T, error) {
	if q.h.Len() == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return heap.Pop(q.h).(T), nil
}

func (q *PriorityQueue[T]) Peek() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.h.data[0], true
}

func (q *PriorityQueue[T]) Len() int {
	return q.h.Len()
}

// Items returns a copy of the stored elements in heap order.
func (q *PriorityQueue[T]) Items() []T {
	return append([]T(nil), q.h.data...)
}
