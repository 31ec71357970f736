package objtable

import "sync"

// ActionState is the per-action state machine from spec §4.6:
// Created -> Started -> (Queued | ImmediatelyCompleted) -> Issued ->
// (Completed | Canceled).
type ActionState int

const (
	ActionCreated ActionState = iota
	ActionStarted
	ActionQueued
	ActionImmediatelyCompleted
	ActionIssued
	ActionCompleted
	ActionCanceled
)

func (s ActionState) String() string {
	switch s {
	case ActionCreated:
		return "Created"
	case ActionStarted:
		return "Started"
	case ActionQueued:
		return "Queued"
	case ActionImmediatelyCompleted:
		return "ImmediatelyCompleted"
	case ActionIssued:
		return "Issued"
	case ActionCompleted:
		return "Completed"
	case ActionCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

func (s ActionState) isTerminal() bool {
	return s == ActionCompleted || s == ActionCanceled || s == ActionImmediatelyCompleted
}

// Action is a runnable handle over one or more UpdateItems, created by
// TableUpdater.Update and driven through its state machine by the queue
// and dispatcher.
type Action struct {
	mu sync.Mutex

	state      ActionState
	items      []*UpdateItem
	resultCode string
	canceled   bool

	logConfigSelect string

	done chan struct{}

	// pending marks an action held open past its last item because a
	// SyncPersist registered a pending-sync wait (spec §4.2).
	pending bool
}

// newAction allocates an Action in the Created state.
func newAction(items []*UpdateItem, logConfigSelect string) *Action {
	return &Action{
		state:           ActionCreated,
		items:           items,
		logConfigSelect: logConfigSelect,
		done:            make(chan struct{}),
	}
}

// Start transitions Created -> Started. Only a Started action may be
// enqueued (spec §4.1 "Enqueue rejects ... an un-started action").
func (a *Action) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != ActionCreated {
		return ErrActionNotStarted
	}

	a.state = ActionStarted

	return nil
}

// RequestCancel sets the cancel flag. It does not itself complete the
// action; the queue's cancel sweep or the dispatcher observes the flag
// and transitions to Canceled (spec §5 "Cancellation and timeouts").
func (a *Action) RequestCancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.canceled = true
}

// isCanceled reports the cancel flag.
func (a *Action) isCanceled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.canceled
}

// State returns the current state.
func (a *Action) State() ActionState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// ResultCode returns the completion result code, empty until terminal.
func (a *Action) ResultCode() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.resultCode
}

// Done returns a channel closed once the action reaches a terminal state.
func (a *Action) Done() <-chan struct{} {
	return a.done
}

// markQueued transitions Started -> Queued.
func (a *Action) markQueued() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == ActionStarted {
		a.state = ActionQueued
	}
}

// markIssued transitions the action to Issued just before the dispatcher
// begins executing its items.
func (a *Action) markIssued() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = ActionIssued
}

// markPending records that the action has items processed but is held
// open awaiting a SyncPersist wait condition.
func (a *Action) markPending() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = true
}

// complete transitions to Completed with the given result code (possibly
// empty, meaning success) and closes Done. Safe to call at most once;
// subsequent calls are no-ops, guarding against a racing cancel-sweep and
// dispatcher both completing the same action.
func (a *Action) complete(resultCode string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.isTerminal() {
		return
	}

	a.resultCode = resultCode
	a.state = ActionCompleted
	close(a.done)
}

// completeImmediately is used by Enqueue's disabled/full paths: the
// action never reaches Queued.
func (a *Action) completeImmediately(resultCode string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.isTerminal() {
		return
	}

	a.resultCode = resultCode
	a.state = ActionImmediatelyCompleted
	close(a.done)
}

// cancelTerminal transitions to Canceled with the canceled-result code.
func (a *Action) cancelTerminal(resultCode string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.isTerminal() {
		return
	}

	a.resultCode = resultCode
	a.state = ActionCanceled
	close(a.done)
}
