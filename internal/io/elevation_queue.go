package io

import (
	"sync"
)

// ElevationQueue is the bounded hand-off between the loading pipeline and
// the pager. Producers submit corrected updates from any goroutine; the
// pager drains the queue at its sync point on the update thread, so tiles
// only ever see raster swaps between two selection passes.
type ElevationQueue struct {
	mutex   sync.Mutex
	pending []*ElevationUpdate
	limit   int
	closed  bool
}

func NewElevationQueue(limit int) *ElevationQueue {
	if limit <= 0 {
		limit = 256
	}
	return &ElevationQueue{limit: limit}
}

// Submit enqueues an update without blocking. Returns false when the queue
// is full or closed; the caller decides whether dropping is an error.
func (q *ElevationQueue) Submit(update *ElevationUpdate) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed || len(q.pending) >= q.limit {
		return false
	}
	q.pending = append(q.pending, update)
	return true
}

// Drain applies every pending update in submission order and empties the
// queue. Updates submitted while draining are picked up by the next drain.
func (q *ElevationQueue) Drain(apply func(*ElevationUpdate)) int {
	q.mutex.Lock()
	batch := q.pending
	q.pending = nil
	q.mutex.Unlock()

	for _, update := range batch {
		apply(update)
	}
	return len(batch)
}

// Len reports the number of pending updates.
func (q *ElevationQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.pending)
}

// Close rejects all further submissions and discards pending updates.
func (q *ElevationQueue) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.closed = true
	q.pending = nil
}
