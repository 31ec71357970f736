package objtable

import "sync"

// minQueueCapacity is the size floor from spec §4.1 ("a bounded FIFO of
// update actions with a size floor of ten").
const minQueueCapacity = 10

// QueueStats mirrors the teacher's WorkerPool.Stats() introspection shape,
// added per SPEC_FULL's supplemented Stats() surface.
type QueueStats struct {
	Depth     int
	Capacity  int
	Disabled  bool
	Completed int
	Canceled  int
}

// ActionQueue is the bounded FIFO of actions awaiting dispatch (spec
// §4.1). Grounded on the teacher's DepTracker (internal/sync/tracker.go):
// a notification-signaled queue a single worker drains, simplified here
// to strict FIFO order since this domain requires submission-order
// execution, not dependency-graph scheduling.
type ActionQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []*Action
	capacity int
	disabled bool

	cancelCounter     int
	lastSweptCounter  int

	completedCount int
	canceledCount  int

	closed bool
}

// NewActionQueue builds a queue with the given capacity, floored at
// minQueueCapacity.
func NewActionQueue(capacity int) *ActionQueue {
	if capacity < minQueueCapacity {
		capacity = minQueueCapacity
	}

	q := &ActionQueue{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// Enqueue submits a started, non-canceled action. Enqueue itself always
// succeeds for a valid action; the action may instead be immediately
// completed with a disabled/full result code per spec §4.1.
func (q *ActionQueue) Enqueue(a *Action) error {
	if a == nil {
		return ErrNilAction
	}

	if a.State() != ActionStarted {
		return ErrActionNotStarted
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disabled {
		a.completeImmediately(rcDisableQueueCanceled())
		return nil
	}

	if len(q.items) >= q.capacity {
		a.completeImmediately(rcEnqueueFailed("Full"))
		return nil
	}

	q.items = append(q.items, a)
	a.markQueued()
	q.cond.Signal()

	return nil
}

// GetNextAction blocks until an action is available or the queue is
// closed, returning nil in the latter case. It skips any null slots left
// by a cancel sweep.
func (q *ActionQueue) GetNextAction() *Action {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		for len(q.items) > 0 {
			next := q.items[0]
			q.items = q.items[1:]

			if next == nil {
				continue
			}

			return next
		}

		if q.closed {
			return nil
		}

		q.cond.Wait()
	}
}

// RequestCancel bumps the cancel counter so the next ServiceCancelRequests
// sweep processes the queue.
func (q *ActionQueue) RequestCancel(a *Action) {
	a.RequestCancel()

	q.mu.Lock()
	q.cancelCounter++
	q.cond.Signal()
	q.mu.Unlock()
}

// ServiceCancelRequests sweeps the queue, completing any canceled action
// with the canceled-while-queued result code and leaving a null slot in
// its place. The sweep is skipped when the cancel counter has not changed
// since the last sweep (spec §4.1).
func (q *ActionQueue) ServiceCancelRequests() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancelCounter == q.lastSweptCounter {
		return
	}

	for i, a := range q.items {
		if a == nil || !a.isCanceled() {
			continue
		}

		a.cancelTerminal(rcCanceledWhileQueued())
		q.canceledCount++
		q.items[i] = nil
	}

	q.lastSweptCounter = q.cancelCounter
}

// Disable marks the queue disabled: every action already queued, and any
// subsequently submitted, is immediately completed with a disabled result
// code instead of running.
func (q *ActionQueue) Disable() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.disabled = true

	for i, a := range q.items {
		if a == nil {
			continue
		}
		a.completeImmediately(rcDisableQueueCanceled())
		q.items[i] = nil
	}

	q.cond.Broadcast()
}

// Enable clears the disabled flag, allowing new submissions to queue.
func (q *ActionQueue) Enable() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.disabled = false
}

// Close marks the queue closed and wakes any goroutine blocked in
// GetNextAction so it can observe shutdown; used by the dispatcher's stop
// path.
func (q *ActionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// recordCompleted is called by the dispatcher after an action finishes,
// for Stats().
func (q *ActionQueue) recordCompleted() {
	q.mu.Lock()
	q.completedCount++
	q.mu.Unlock()
}

// Stats returns a snapshot of queue depth and counters.
func (q *ActionQueue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	depth := 0
	for _, a := range q.items {
		if a != nil {
			depth++
		}
	}

	return QueueStats{
		Depth:     depth,
		Capacity:  q.capacity,
		Disabled:  q.disabled,
		Completed: q.completedCount,
		Canceled:  q.canceledCount,
	}
}
