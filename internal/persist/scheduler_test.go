package persist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mosaicautomation/objtable/internal/objtable"
)

// fakeAdapter records every Save call in memory; it never fails, which is
// enough to exercise the scheduler's hold-off/dirty-detection logic
// without requiring a real database.
type fakeAdapter struct {
	mu    sync.Mutex
	saves int
	last  FileContents
}

func (f *fakeAdapter) Load(ctx context.Context, typeSetName string) (FileContents, error) {
	return FileContents{}, nil
}

func (f *fakeAdapter) Save(ctx context.Context, typeSetName string, content FileContents) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saves++
	f.last = content

	return nil
}

func (f *fakeAdapter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.saves
}

func newTestTable(t *testing.T) *objtable.Table {
	t.Helper()

	table := objtable.NewTable(objtable.WithTypeSets([]objtable.TypeSetConfig{
		{Name: "equipment", Types: []string{"SubstLoc", "Subst"}, Default: true},
	}))
	table.SetOnline(true)
	table.Start(context.Background())
	t.Cleanup(table.Stop)

	return table
}

func TestSchedulerFlushesDirtyTypeSet(t *testing.T) {
	table := newTestTable(t)

	adapter := &fakeAdapter{}
	sched := NewScheduler(table, adapter, WithHoldOff(10*time.Millisecond))
	sched.Start(context.Background())
	defer sched.Stop(context.Background())

	action, err := table.UpdateOne(objtable.NewAddObject(
		objtable.NewObjectID("SubstLoc", "LP1"), objtable.NewAttributes(), objtable.FlagPinned, false, objtable.MergeAddAndUpdate,
	), "")
	require.NoError(t, err)

	select {
	case <-action.Done():
	case <-time.After(time.Second):
		t.Fatal("action did not complete")
	}
	require.Empty(t, action.ResultCode())

	require.Eventually(t, func() bool {
		return adapter.count() > 0
	}, 2*time.Second, 10*time.Millisecond)

	snap, ok := table.SnapshotTypeSet("equipment")
	require.True(t, ok)
	require.False(t, snap.Dirty())
}

// TestKickBypassesHoldOff drives a long hold-off so the poll loop alone
// would not save within the test's deadline, then confirms Kick forces an
// immediate flush — the mechanism SyncPersist relies on instead of
// sitting out the hold-off timer it could otherwise short-circuit.
func TestKickBypassesHoldOff(t *testing.T) {
	table := newTestTable(t)

	adapter := &fakeAdapter{}
	sched := NewScheduler(table, adapter, WithHoldOff(time.Hour))
	sched.Start(context.Background())
	defer sched.Stop(context.Background())

	action, err := table.UpdateOne(objtable.NewAddObject(
		objtable.NewObjectID("SubstLoc", "LP1"), objtable.NewAttributes(), objtable.FlagPinned, false, objtable.MergeAddAndUpdate,
	), "")
	require.NoError(t, err)

	select {
	case <-action.Done():
	case <-time.After(time.Second):
		t.Fatal("action did not complete")
	}

	require.Never(t, func() bool {
		return adapter.count() > 0
	}, 50*time.Millisecond, 10*time.Millisecond, "hold-off is an hour; nothing should have saved yet")

	sched.Kick("equipment")

	require.Eventually(t, func() bool {
		return adapter.count() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

// TestKickOnUnknownTypeSetIsNoOp exercises the defensive nil-state guard.
func TestKickOnUnknownTypeSetIsNoOp(t *testing.T) {
	table := newTestTable(t)
	sched := NewScheduler(table, &fakeAdapter{})

	require.NotPanics(t, func() {
		sched.Kick("does-not-exist")
	})
}
