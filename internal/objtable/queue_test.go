package objtable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newStartedAction(t *testing.T) *Action {
	t.Helper()

	a := newAction(nil, "")
	require.NoError(t, a.Start())

	return a
}

func TestActionQueueFIFOOrder(t *testing.T) {
	q := NewActionQueue(minQueueCapacity)

	a1 := newStartedAction(t)
	a2 := newStartedAction(t)

	require.NoError(t, q.Enqueue(a1))
	require.NoError(t, q.Enqueue(a2))

	require.Same(t, a1, q.GetNextAction())
	require.Same(t, a2, q.GetNextAction())
}

func TestActionQueueFloorsCapacity(t *testing.T) {
	q := NewActionQueue(2)
	require.Equal(t, minQueueCapacity, q.Stats().Capacity)
}

func TestActionQueueFullCompletesImmediately(t *testing.T) {
	q := NewActionQueue(minQueueCapacity)

	for i := 0; i < minQueueCapacity; i++ {
		require.NoError(t, q.Enqueue(newStartedAction(t)))
	}

	overflow := newStartedAction(t)
	require.NoError(t, q.Enqueue(overflow))

	select {
	case <-overflow.Done():
	case <-time.After(time.Second):
		t.Fatal("overflow action never completed")
	}

	require.Equal(t, ActionImmediatelyCompleted, overflow.State())
	require.Equal(t, rcEnqueueFailed("Full"), overflow.ResultCode())
}

func TestActionQueueDisableCompletesQueuedAndFutureActions(t *testing.T) {
	q := NewActionQueue(minQueueCapacity)

	queued := newStartedAction(t)
	require.NoError(t, q.Enqueue(queued))

	q.Disable()

	select {
	case <-queued.Done():
	case <-time.After(time.Second):
		t.Fatal("queued action never completed on disable")
	}
	require.Equal(t, rcDisableQueueCanceled(), queued.ResultCode())

	late := newStartedAction(t)
	require.NoError(t, q.Enqueue(late))

	select {
	case <-late.Done():
	case <-time.After(time.Second):
		t.Fatal("late action never completed while disabled")
	}
	require.Equal(t, rcDisableQueueCanceled(), late.ResultCode())

	q.Enable()

	reEnabled := newStartedAction(t)
	require.NoError(t, q.Enqueue(reEnabled))
	require.Same(t, reEnabled, q.GetNextAction())
}

func TestActionQueueCancelSweepSkipsNonCanceled(t *testing.T) {
	q := NewActionQueue(minQueueCapacity)

	a := newStartedAction(t)
	require.NoError(t, q.Enqueue(a))

	q.ServiceCancelRequests()
	require.Equal(t, ActionQueued, a.State())

	q.RequestCancel(a)
	q.ServiceCancelRequests()

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("canceled action never completed")
	}
	require.Equal(t, ActionCanceled, a.State())
	require.Equal(t, rcCanceledWhileQueued(), a.ResultCode())

	// The null slot left behind must be skipped by GetNextAction.
	next := newStartedAction(t)
	require.NoError(t, q.Enqueue(next))
	require.Same(t, next, q.GetNextAction())
}

func TestActionQueueCloseUnblocksGetNextAction(t *testing.T) {
	q := NewActionQueue(minQueueCapacity)

	done := make(chan *Action, 1)
	go func() { done <- q.GetNextAction() }()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case a := <-done:
		require.Nil(t, a)
	case <-time.After(time.Second):
		t.Fatal("GetNextAction did not unblock on Close")
	}
}
