package objtable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newRunningTable(t *testing.T, typeSets ...TypeSetConfig) *Table {
	t.Helper()

	if len(typeSets) == 0 {
		typeSets = []TypeSetConfig{{Name: "default", Default: true}}
	}

	table := NewTable(WithTypeSets(typeSets))
	table.SetOnline(true)
	table.Start(context.Background())
	t.Cleanup(table.Stop)

	return table
}

func waitDone(t *testing.T, a *Action) {
	t.Helper()

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("action did not complete in time")
	}
}

// TestAddLinkPublishesBothEndpoints covers adding two objects and a link
// between them, then observing the publication on both sides.
func TestAddLinkPublishesBothEndpoints(t *testing.T) {
	table := newRunningTable(t)

	loc := NewObjectID("SubstLoc", "LP1")
	subst := NewObjectID("Subst", "W001")

	a, err := table.Update([]*UpdateItem{
		NewAddObject(loc, NewAttributes(), 0, false, MergeAddAndUpdate),
		NewAddObject(subst, NewAttributes(), 0, false, MergeAddAndUpdate),
		NewAddLink(NewLink(loc, subst, "holds"), false, false),
	}, "")
	require.NoError(t, err)
	waitDone(t, a)
	require.Empty(t, a.ResultCode())

	locPub := table.GetPublisher(loc).Get()
	require.NotNil(t, locPub)
	require.Len(t, locPub.LinksOut, 1)
	require.Equal(t, "holds", locPub.LinksOut[0].Key)

	substPub := table.GetPublisher(subst).Get()
	require.NotNil(t, substPub)
	require.Len(t, substPub.LinksIn, 1)
	require.Equal(t, loc, substPub.LinksIn[0].FromID)
}

// TestSetAttributesAndAddLinkAutoUnlink exercises a single atomic Update
// combining a SetAttributes with an AddLink that auto-unlinks the
// substrate from its prior location.
func TestSetAttributesAndAddLinkAutoUnlink(t *testing.T) {
	table := newRunningTable(t)

	lp1 := NewObjectID("SubstLoc", "LP1")
	lp2 := NewObjectID("SubstLoc", "LP2")
	subst := NewObjectID("Subst", "W001")

	setup, err := table.Update([]*UpdateItem{
		NewAddObject(lp1, NewAttributes(), 0, false, MergeAddAndUpdate),
		NewAddObject(lp2, NewAttributes(), 0, false, MergeAddAndUpdate),
		NewAddObject(subst, NewAttributes(), 0, false, MergeAddAndUpdate),
		NewAddLink(NewLink(lp1, subst, "holds"), false, false),
	}, "")
	require.NoError(t, err)
	waitDone(t, setup)
	require.Empty(t, setup.ResultCode())

	attrs := NewAttributes()
	attrs.Set("state", "Transferred")

	move, err := table.Update([]*UpdateItem{
		NewSetAttributes(subst, attrs, MergeAddAndUpdate),
		NewAddLink(NewLink(lp2, subst, "holds"), true, false),
	}, "")
	require.NoError(t, err)
	waitDone(t, move)
	require.Empty(t, move.ResultCode())

	lp1Pub := table.GetPublisher(lp1).Get()
	require.Empty(t, lp1Pub.LinksOut)

	lp2Pub := table.GetPublisher(lp2).Get()
	require.Len(t, lp2Pub.LinksOut, 1)
	require.Equal(t, subst, lp2Pub.LinksOut[0].ToID)

	substPub := table.GetPublisher(subst).Get()
	v, ok := substPub.Attributes.Get("state")
	require.True(t, ok)
	require.Equal(t, "Transferred", v)
	require.Len(t, substPub.LinksIn, 1)
	require.Equal(t, lp2, substPub.LinksIn[0].FromID)
}

// TestRemoveObjectCascadesThroughFilter covers RemoveObject's worklist
// cascade: removing a carrier removes an unpinned substrate reachable only
// through the matching link, but stops at a pinned one.
func TestRemoveObjectCascadesThroughFilter(t *testing.T) {
	table := newRunningTable(t)

	carrier := NewObjectID("Carrier", "C1")
	free := NewObjectID("Subst", "W001")
	pinned := NewObjectID("Subst", "W002")

	setup, err := table.Update([]*UpdateItem{
		NewAddObject(carrier, NewAttributes(), 0, false, MergeAddAndUpdate),
		NewAddObject(free, NewAttributes(), 0, false, MergeAddAndUpdate),
		NewAddObject(pinned, NewAttributes(), FlagPinned, false, MergeAddAndUpdate),
		NewAddLink(NewLink(carrier, free, "holds"), false, false),
		NewAddLink(NewLink(carrier, pinned, "holds"), false, false),
	}, "")
	require.NoError(t, err)
	waitDone(t, setup)
	require.Empty(t, setup.ResultCode())

	cascadeOnHolds := func(l Link) bool { return l.Key == "holds" }

	remove, err := table.UpdateOne(NewRemoveObject(carrier, cascadeOnHolds), "")
	require.NoError(t, err)
	waitDone(t, remove)
	require.Empty(t, remove.ResultCode())

	require.Nil(t, table.GetPublisher(carrier))
	require.Nil(t, table.GetPublisher(free))

	pinnedPub := table.GetPublisher(pinned)
	require.NotNil(t, pinnedPub)
	require.NotNil(t, pinnedPub.Get())
	require.Empty(t, pinnedPub.Get().LinksIn)
}

// TestTestAndSetAttributes covers both the success and failure paths of an
// atomic compare-and-set update.
func TestTestAndSetAttributes(t *testing.T) {
	table := newRunningTable(t)

	id := NewObjectID("Subst", "W001")

	initial := NewAttributes()
	initial.Set("state", "Idle")

	setup, err := table.UpdateOne(NewAddObject(id, initial, 0, false, MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, setup)

	test := NewAttributes()
	test.Set("state", "Idle")
	set := NewAttributes()
	set.Set("state", "Running")

	item := NewTestAndSetAttributes(id, test, set, MergeAddAndUpdate, true)
	ok, err := table.UpdateOne(item, "")
	require.NoError(t, err)
	waitDone(t, ok)
	require.Empty(t, ok.ResultCode())
	require.True(t, item.TestConditionsMet)

	v, _ := table.GetPublisher(id).Get().Attributes.Get("state")
	require.Equal(t, "Running", v)

	mismatchTest := NewAttributes()
	mismatchTest.Set("state", "Idle")
	mismatchSet := NewAttributes()
	mismatchSet.Set("state", "Aborted")

	badItem := NewTestAndSetAttributes(id, mismatchTest, mismatchSet, MergeAddAndUpdate, true)
	failed, err := table.UpdateOne(badItem, "")
	require.NoError(t, err)
	waitDone(t, failed)
	require.NotEmpty(t, failed.ResultCode())
	require.False(t, badItem.TestConditionsMet)

	v, _ = table.GetPublisher(id).Get().Attributes.Get("state")
	require.Equal(t, "Running", v, "failed TestAndSetAttributes must not apply its set clause")
}

// TestTestAndSetAttributesWithNestedSetValue exercises the compare path
// against a nested-set attribute value, which is not comparable with Go's
// == and previously panicked inside valuesEqual.
func TestTestAndSetAttributesWithNestedSetValue(t *testing.T) {
	table := newRunningTable(t)

	id := NewObjectID("Subst", "W002")

	recipe := NewAttributes()
	recipe.Set("step", int64(1))

	initial := NewAttributes()
	initial.Set("recipe", recipe)

	setup, err := table.UpdateOne(NewAddObject(id, initial, 0, false, MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, setup)

	matchingRecipe := NewAttributes()
	matchingRecipe.Set("step", int64(1))
	test := NewAttributes()
	test.Set("recipe", matchingRecipe)
	set := NewAttributes()
	set.Set("state", "Running")

	item := NewTestAndSetAttributes(id, test, set, MergeAddAndUpdate, true)

	require.NotPanics(t, func() {
		action, err := table.UpdateOne(item, "")
		require.NoError(t, err)
		waitDone(t, action)
		require.Empty(t, action.ResultCode())
	})

	require.True(t, item.TestConditionsMet)
}

// TestSyncPersistCompletesOnceSaveRecorded exercises the pending-sync wait:
// the action stays open until MarkTypeSetSaved reports the target
// type-set has caught up.
func TestSyncPersistCompletesOnceSaveRecorded(t *testing.T) {
	table := newRunningTable(t, TypeSetConfig{Name: "equipment", Types: []string{"SubstLoc"}, Default: true})

	id := NewObjectID("SubstLoc", "LP1")

	add, err := table.UpdateOne(NewAddObject(id, NewAttributes(), 0, false, MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, add)

	sync, err := table.UpdateOne(NewSyncPersist("SubstLoc", time.Second, true), "")
	require.NoError(t, err)

	select {
	case <-sync.Done():
		t.Fatal("SyncPersist completed before the save was recorded")
	case <-time.After(50 * time.Millisecond):
	}

	snap, ok := table.SnapshotTypeSet("equipment")
	require.True(t, ok)
	table.MarkTypeSetSaved("equipment", snap.LastPublishedSeqNum, nil)

	waitDone(t, sync)
	require.Empty(t, sync.ResultCode())
}

// TestThroughLinkPropagationOnReload covers a restart round trip: after
// loading a type-set and resolving its links, an update to the contained
// substrate republishes the carrier at the substrate's seq through the
// reloaded link, so an observer of the carrier sees a change driven purely
// by the substrate.
func TestThroughLinkPropagationOnReload(t *testing.T) {
	table := newRunningTable(t)

	carrier := NewObjectID("Carrier", "C1")
	subst := NewObjectID("Subst", "W001")

	link := NewLink(carrier, subst, "holds")

	byType := map[string][]*Object{
		"Carrier": {{ID: carrier, Attributes: NewAttributes(), LinksOut: []Link{link}}},
		"Subst":   {{ID: subst, Attributes: NewAttributes()}},
	}

	require.NoError(t, table.LoadTypeSet("default", byType))
	table.ResolveLoadedLinks()

	carrierTracker := table.index.get(carrier)
	require.NotNil(t, carrierTracker)

	require.NotNil(t, table.GetPublisher(carrier).Get(), "reloaded objects must be published without waiting for an update")
	require.NotNil(t, table.GetPublisher(subst).Get())

	snap, ok := table.SnapshotTypeSet("default")
	require.True(t, ok)
	require.False(t, snap.Dirty(), "a freshly loaded type-set must not be considered dirty")

	// Force a publication of the substrate only, then confirm through-link
	// propagation bumped the carrier's seq to match without re-deriving its
	// attributes/links content.
	done, err := table.UpdateOne(NewSetAttributes(subst, func() Attributes {
		a := NewAttributes()
		a.Set("state", "Arrived")
		return a
	}(), MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, done)

	substSeq := table.GetPublisher(subst).Seq()
	carrierSeq := table.GetPublisher(carrier).Seq()
	require.Equal(t, substSeq, carrierSeq)

	carrierPub := table.GetPublisher(carrier).Get()
	require.Len(t, carrierPub.LinksOut, 1)
	require.Equal(t, subst, carrierPub.LinksOut[0].ToID)
}

// TestUpdateRejectedWhenOffline covers the fast-reject path for the
// base-state-not-online category of result codes.
func TestUpdateRejectedWhenOffline(t *testing.T) {
	table := newRunningTable(t)
	table.SetOnline(false)

	a, err := table.UpdateOne(NewAddObject(NewObjectID("Subst", "W001"), NewAttributes(), 0, false, MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, a)

	require.Equal(t, rcNotOnline(), a.ResultCode())
	require.Nil(t, table.GetPublisher(NewObjectID("Subst", "W001")))
}

// TestAddObjectIfNeededMergesExisting covers AddObject's ifNeeded path:
// a second AddObject for an existing id merges attributes instead of
// failing, and a plain re-add without ifNeeded is rejected.
func TestAddObjectIfNeededMergesExisting(t *testing.T) {
	table := newRunningTable(t)

	id := NewObjectID("Subst", "W001")

	first := NewAttributes()
	first.Set("lot", "L1")

	a, err := table.UpdateOne(NewAddObject(id, first, 0, false, MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, a)
	require.Empty(t, a.ResultCode())

	duplicate, err := table.UpdateOne(NewAddObject(id, NewAttributes(), 0, false, MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, duplicate)
	require.NotEmpty(t, duplicate.ResultCode())

	second := NewAttributes()
	second.Set("state", "Staged")

	merged, err := table.UpdateOne(NewAddObject(id, second, 0, true, MergeAddAndUpdate), "")
	require.NoError(t, err)
	waitDone(t, merged)
	require.Empty(t, merged.ResultCode())

	pub := table.GetPublisher(id).Get()
	lot, ok := pub.Attributes.Get("lot")
	require.True(t, ok)
	require.Equal(t, "L1", lot)

	state, ok := pub.Attributes.Get("state")
	require.True(t, ok)
	require.Equal(t, "Staged", state)
}
