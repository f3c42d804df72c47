package engine

import (
	"sync"

	"github.com/roach88/devsel/internal/timeline"
)

// Request asks the Run loop to apply one event.
type Request struct {
	// At is the timeline index to derive from. AtHead means the last step.
	At    int
	Event timeline.Event

	// Done, when set, receives the outcome. It should be buffered; the Run
	// loop does not block on a slow reader.
	Done chan<- Result
}

// Result is the outcome of a Request.
type Result struct {
	Step  timeline.Step
	Index int
	Seq   int64
	Err   error
}

// requestQueue is a thread-safe FIFO queue for requests.
//
// Thread-safety is provided for external enqueuing (e.g., input handlers)
// while the Engine's Run loop dequeues.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type requestQueue struct {
	mu       sync.Mutex
	requests []Request
	closed   bool
	signal   chan struct{} // Signals request availability (buffered, size 1)
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]Request, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a request to the back of the queue.
// Returns false if the queue is closed.
func (q *requestQueue) Enqueue(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.requests = append(q.requests, r)

	// Non-blocking: the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
func (q *requestQueue) TryDequeue() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return Request{}, false
	}

	r := q.requests[0]

	// Clear the slot so the backing array does not pin the Done channel.
	q.requests[0] = Request{}

	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}

	return r, true
}

// Wait returns a channel that signals when requests may be available.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Drained reports whether the queue is closed and empty.
func (q *requestQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.requests) == 0
}

// Close signals that no more requests will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
