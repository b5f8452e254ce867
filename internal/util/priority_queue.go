// Package util holds small generic containers shared across the server.
package util

import (
	"container/heap"
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueClosed = errors.New("priority queue closed")
	ErrQueueEmpty  = errors.New("priority queue empty")
)

type entry[T any] struct {
	value    T
	priority int
	seq      uint64
}

// PriorityQueue is a concurrency-safe max-heap. Equal priorities pop in
// submission order so job processing stays fair under load.
type PriorityQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  innerHeap[T]
	seq    uint64
	closed bool
}

func NewPriorityQueue[T any]() *PriorityQueue[T] {
	pq := &PriorityQueue[T]{}
	pq.cond = sync.NewCond(&pq.mu)
	return pq
}

// Push adds a value; higher priority pops first.
func (pq *PriorityQueue[T]) Push(value T, priority int) error {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	if pq.closed {
		return ErrQueueClosed
	}
	pq.seq++
	heap.Push(&pq.items, &entry[T]{value: value, priority: priority, seq: pq.seq})
	pq.cond.Signal()
	return nil
}

// Pop blocks until a value is available, the queue closes, or ctx is done.
func (pq *PriorityQueue[T]) Pop(ctx context.Context) (T, error) {
	var zero T

	// Wake the cond waiter when the context ends.
	stop := context.AfterFunc(ctx, func() {
		pq.mu.Lock()
		pq.cond.Broadcast()
		pq.mu.Unlock()
	})
	defer stop()

	pq.mu.Lock()
	defer pq.mu.Unlock()

	for {
		if len(pq.items) > 0 {
			e := heap.Pop(&pq.items).(*entry[T])
			return e.value, nil
		}
		if pq.closed {
			return zero, ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		pq.cond.Wait()
	}
}

// TryPop returns immediately with ErrQueueEmpty when nothing is queued.
func (pq *PriorityQueue[T]) TryPop() (T, error) {
	var zero T

	pq.mu.Lock()
	defer pq.mu.Unlock()

	if len(pq.items) > 0 {
		e := heap.Pop(&pq.items).(*entry[T])
		return e.value, nil
	}
	if pq.closed {
		return zero, ErrQueueClosed
	}
	return zero, ErrQueueEmpty
}

// Len reports the number of queued values.
func (pq *PriorityQueue[T]) Len() int {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	return len(pq.items)
}

// Close rejects further pushes and wakes every blocked Pop. Queued values
// drain normally.
func (pq *PriorityQueue[T]) Close() {
	pq.mu.Lock()
	pq.closed = true
	pq.cond.Broadcast()
	pq.mu.Unlock()
}

type innerHeap[T any] []*entry[T]

func (h innerHeap[T]) Len() int { return len(h) }

func (h innerHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h innerHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *innerHeap[T]) Push(x any) { *h = append(*h, x.(*entry[T])) }

func (h *innerHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
