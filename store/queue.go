package store

import (
	"sync"

	"github.com/jordanekay/PersistDB/compiler"
	"github.com/jordanekay/PersistDB/internal/sqlite"
	"github.com/jordanekay/PersistDB/sqlast"
)

// request is one unit of serialized engine work: a tagged action or a
// read. Exactly one of action/read is set.
type request struct {
	action *taggedAction
	read   *readRequest
}

// taggedAction pairs an action with its submission tag and the reply
// channel its waiter listens on. The reply channel is buffered so the
// run loop never blocks on an abandoned waiter.
type taggedAction struct {
	tag    sqlast.Tag
	action sqlast.Action
	reply  chan effectResult
}

type effectResult struct {
	effect sqlast.Effect
	err    error
}

// readRequest carries a compiled select through the same queue as
// actions, so reads observe every previously completed effect.
type readRequest struct {
	query compiler.CompiledQuery
	reply chan readResult
}

type readResult struct {
	rows []sqlite.RawRow
	err  error
}

// requestQueue is a thread-safe FIFO of pending engine work.
//
// Unbounded: submission never blocks the caller. Thread-safety covers
// external enqueuing from any goroutine while the store's run loop
// dequeues. The signal channel (buffered, size 1) coalesces wakeups so
// the loop can wait without spinning.
type requestQueue struct {
	mu       sync.Mutex
	requests []request
	closed   bool
	signal   chan struct{}
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]request, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue appends a request. Returns false if the queue is closed.
func (q *requestQueue) Enqueue(r request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.requests = append(q.requests, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Dequeue removes and returns the front request, blocking until one is
// available. Returns false once the queue is closed and drained, so
// already-queued work still runs to completion after Close.
func (q *requestQueue) Dequeue() (request, bool) {
	for {
		q.mu.Lock()
		if len(q.requests) > 0 {
			r := q.requests[0]
			// Nil out the slot so the backing array doesn't retain the
			// request's channels.
			q.requests[0] = request{}
			if len(q.requests) == 1 {
				q.requests = q.requests[:0]
			} else {
				q.requests = q.requests[1:]
			}
			q.mu.Unlock()
			return r, true
		}
		if q.closed {
			q.mu.Unlock()
			return request{}, false
		}
		q.mu.Unlock()

		<-q.signal
	}
}

// Close marks the queue closed and wakes the consumer. Idempotent.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
