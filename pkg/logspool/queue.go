package logspool

import (
	"sync"

	"github.com/wayneeseguin/logspool/pkg/types"
)

// boundedQueue is a FIFO ring of pending entries. One mutex serializes all
// access; the writer removes an entry only after it has been handled, so the
// length includes the entry being written.
type boundedQueue struct {
	mu    sync.Mutex
	items []*types.LogEntry
	head  int
	size  int

	// notify wakes an idle writer; capacity 1 so pushes never block.
	notify chan struct{}
}

func newBoundedQueue(capacity int) *boundedQueue {
	return &boundedQueue{
		items:  make([]*types.LogEntry, capacity),
		notify: make(chan struct{}, 1),
	}
}

// push appends e. It reports false, leaving the queue unchanged, when the
// queue is full.
func (q *boundedQueue) push(e *types.LogEntry) bool {
	q.mu.Lock()
	if q.size == len(q.items) {
		q.mu.Unlock()
		return false
	}
	q.items[(q.head+q.size)%len(q.items)] = e
	q.size++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// peek returns the oldest entry without removing it, or nil.
func (q *boundedQueue) peek() *types.LogEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return nil
	}
	return q.items[q.head]
}

// pop removes the oldest entry, if any.
func (q *boundedQueue) pop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return
	}
	q.items[q.head] = nil
	q.head = (q.head + 1) % len(q.items)
	q.size--
}

// clear drops every pending entry and returns how many were dropped.
func (q *boundedQueue) clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.size
	for i := 0; i < q.size; i++ {
		q.items[(q.head+i)%len(q.items)] = nil
	}
	q.head, q.size = 0, 0
	return n
}

func (q *boundedQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *boundedQueue) cap() int {
	return len(q.items)
}
