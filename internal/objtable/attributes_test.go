package objtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttributesOrderedIteration(t *testing.T) {
	a := NewAttributes()
	a.Set("z", 1)
	a.Set("a", 2)
	a.Set("m", 3)

	require.Equal(t, []string{"z", "a", "m"}, a.Keys())

	a.Delete("a")
	require.Equal(t, []string{"z", "m"}, a.Keys())

	v, ok := a.Get("z")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestAttributesCloneIsIndependent(t *testing.T) {
	a := NewAttributes()
	a.Set("nested", NewAttributes())

	clone := a.Clone()
	clone.Set("extra", "value")

	require.Equal(t, 1, a.Len())
	require.Equal(t, 2, clone.Len())
}

func TestMergeAddAndUpdate(t *testing.T) {
	dst := AttributesFromMap(map[string]any{"temp": int64(10)})
	src := NewAttributes()
	src.Set("temp", int64(20))
	src.Set("state", "Ready")

	out := MergeAttributes(dst, src, MergeAddAndUpdate)

	v, _ := out.Get("temp")
	require.Equal(t, int64(20), v)

	v, _ = out.Get("state")
	require.Equal(t, "Ready", v)
}

func TestMergeAddNewItemsLeavesExistingAlone(t *testing.T) {
	dst := AttributesFromMap(map[string]any{"temp": int64(10)})
	src := NewAttributes()
	src.Set("temp", int64(99))
	src.Set("state", "Ready")

	out := MergeAttributes(dst, src, MergeAddNewItems)

	v, _ := out.Get("temp")
	require.Equal(t, int64(10), v)

	v, _ = out.Get("state")
	require.Equal(t, "Ready", v)
}

func TestMergeSum(t *testing.T) {
	dst := NewAttributes()
	dst.Set("count", int64(3))
	src := NewAttributes()
	src.Set("count", int64(4))

	out := MergeAttributes(dst, src, MergeSum)

	v, _ := out.Get("count")
	require.Equal(t, int64(7), v)
}

func TestMergeSumUpcastsOnMixedTypes(t *testing.T) {
	dst := NewAttributes()
	dst.Set("count", int64(3))
	src := NewAttributes()
	src.Set("count", 1.5)

	out := MergeAttributes(dst, src, MergeSum)

	v, _ := out.Get("count")
	require.Equal(t, 4.5, v)
}

func TestMergeAppendLists(t *testing.T) {
	dst := NewAttributes()
	dst.Set("tags", []any{"a", "b"})
	src := NewAttributes()
	src.Set("tags", []any{"c"})

	out := MergeAttributes(dst, src, MergeAppendLists)

	v, _ := out.Get("tags")
	require.Equal(t, []any{"a", "b", "c"}, v)
}

func TestMergeRemoveNull(t *testing.T) {
	dst := AttributesFromMap(map[string]any{"a": "1", "b": "2"})
	src := NewAttributes()
	src.Set("a", nil)
	src.Set("b", "updated")

	out := MergeAttributes(dst, src, MergeRemoveNull)

	_, ok := out.Get("a")
	require.False(t, ok)

	v, _ := out.Get("b")
	require.Equal(t, "updated", v)
}

func TestMergeRemoveEmpty(t *testing.T) {
	dst := AttributesFromMap(map[string]any{"a": "1"})
	src := NewAttributes()
	src.Set("a", "")

	out := MergeAttributes(dst, src, MergeRemoveEmpty)

	_, ok := out.Get("a")
	require.False(t, ok)
}

func TestMergeEnableUpcastReplacesRatherThanSums(t *testing.T) {
	dst := NewAttributes()
	dst.Set("count", int64(3))
	src := NewAttributes()
	src.Set("count", 1.5)

	out := MergeAttributes(dst, src, MergeEnableUpcast)

	v, _ := out.Get("count")
	require.Equal(t, 1.5, v)
}

func TestValuesEqualComparesNestedSetsAndListsWithoutPanicking(t *testing.T) {
	nestedA := NewAttributes()
	nestedA.Set("x", int64(1))
	nestedB := NewAttributes()
	nestedB.Set("x", int64(1))
	nestedC := NewAttributes()
	nestedC.Set("x", int64(2))

	require.True(t, valuesEqual(nestedA, nestedB))
	require.False(t, valuesEqual(nestedA, nestedC))
	require.False(t, valuesEqual(nestedA, "not-a-nested-set"))

	listA := []any{"a", int64(1)}
	listB := []any{"a", int64(1)}
	listC := []any{"a", int64(2)}

	require.True(t, valuesEqual(listA, listB))
	require.False(t, valuesEqual(listA, listC))
}

func TestMergeNoneIgnoresIncoming(t *testing.T) {
	dst := AttributesFromMap(map[string]any{"a": "1"})
	src := NewAttributes()
	src.Set("a", "2")
	src.Set("b", "3")

	out := MergeAttributes(dst, src, MergeNone)

	require.Equal(t, 1, out.Len())
	v, _ := out.Get("a")
	require.Equal(t, "1", v)
}
