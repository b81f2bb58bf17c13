package amqpwire

import (
	"container/heap"
	"math"
	"sync"
)

// Priority bands used by the connection's send loop, per spec.md §4.7.
const (
	PriorityShutdown = -1 // reserved for the final Close frame
	PriorityControl  = 0  // handshake / protocol-level control
	PriorityDefault  = 16
	PriorityBulk     = 32
)

// sendQueueItem is one enqueued unit: a priority and an opaque payload. The
// connection's send loop stores (Frame, done chan error) pairs here; the
// queue itself is payload-agnostic.
type sendQueueItem struct {
	priority int
	seq      uint64 // break priority ties FIFO
	value    interface{}
}

// priorityHeap is a container/heap.Interface ordering by (priority, seq):
// lower priority first, FIFO within a priority.
type priorityHeap []*sendQueueItem

func (h priorityHeap) Len() int { return len(h) }
func (h priorityHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h priorityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x interface{}) { *h = append(*h, x.(*sendQueueItem)) }
func (h *priorityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// SendQueue is the priority send queue of spec.md §4.8: a priority queue
// with a dynamic low-water "limit" barrier, used by the connection to
// phase outbound traffic (e.g. block everything but the handshake until
// tuning completes, then block everything but the final Close during
// shutdown).
//
// Unlike the donor's single-threaded cooperative scheduler, this queue is
// safe for concurrent Put/Get/SetLimit from multiple goroutines - Get
// blocks on a sync.Cond rather than yielding to an event loop.
type SendQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	heap  priorityHeap
	limit int
	seq   uint64
	closed bool
}

// NewSendQueue returns a queue with no limit (everything dequeuable).
func NewSendQueue() *SendQueue {
	q := &SendQueue{limit: math.MaxInt}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put enqueues value at the given priority.
func (q *SendQueue) Put(priority int, value interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	heap.Push(&q.heap, &sendQueueItem{priority: priority, seq: q.seq, value: value})
	q.cond.Broadcast()
}

// Get returns the lowest-priority item with priority < limit, blocking
// until one exists. It returns ok=false only if the queue has been closed
// while waiting.
func (q *SendQueue) Get() (value interface{}, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.closed {
			return nil, false
		}
		if idx, found := q.dequeuableIndexLocked(); found {
			item := heap.Remove(&q.heap, idx).(*sendQueueItem)
			return item.value, true
		}
		q.cond.Wait()
	}
}

// TryGet is the non-blocking form: it returns ok=false immediately if
// nothing is currently dequeuable, rather than waiting.
func (q *SendQueue) TryGet() (value interface{}, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx, found := q.dequeuableIndexLocked()
	if !found {
		return nil, false
	}
	item := heap.Remove(&q.heap, idx).(*sendQueueItem)
	return item.value, true
}

// dequeuableIndexLocked scans for the lowest-priority item (the heap
// invariant only guarantees heap[0] is smallest overall, not smallest
// among those below limit, so a full scan is required) whose priority is
// below the current limit. Callers must hold mu.
func (q *SendQueue) dequeuableIndexLocked() (int, bool) {
	best := -1
	for i, it := range q.heap {
		if it.priority >= q.limit {
			continue
		}
		if best == -1 || q.heap.Less(i, best) {
			best = i
		}
	}
	return best, best != -1
}

// SetLimit changes the dequeuable threshold: only items with priority <
// limit may be returned by Get. limit = PriorityShutdown (-1) leaves no
// item of the named priority bands dequeuable. Waking blocked Getters is mandatory since a limit
// change can make previously-blocked items eligible.
func (q *SendQueue) SetLimit(limit int) {
	q.mu.Lock()
	q.limit = limit
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Limit returns the current limit.
func (q *SendQueue) Limit() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit
}

// LimitTo sets limit for the duration of fn, then restores the previous
// limit, mirroring the donor's `with queue.limit_to(l):` context manager.
// Nesting restores correctly on every exit path, including panics.
func (q *SendQueue) LimitTo(limit int, fn func()) {
	prev := q.Limit()
	q.SetLimit(limit)
	defer q.SetLimit(prev)
	fn()
}

// Close wakes every blocked Get with ok=false. Used when the connection
// shuts down so the send loop's Get() unblocks instead of hanging forever.
func (q *SendQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
