package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "objtable.db")

	adapter, err := OpenSQLiteAdapter(ctx, dbPath)
	require.NoError(t, err)
	defer adapter.Close()

	fc := FileContents{
		PersistedVersionSeq: 42,
		TypeTableSet: []TypeTable{
			{
				Type: "SubstLoc",
				ObjectInstanceSet: []Object{
					{Name: "LP1", Attributes: map[string]any{"Capacity": float64(25)}},
					{Name: "LP2", Attributes: map[string]any{"Capacity": float64(1)}},
				},
			},
		},
	}

	require.NoError(t, adapter.Save(ctx, "equipment", fc))

	loaded, err := adapter.Load(ctx, "equipment")
	require.NoError(t, err)

	require.Equal(t, uint64(42), loaded.PersistedVersionSeq)
	require.Len(t, loaded.TypeTableSet, 1)
	require.Equal(t, "SubstLoc", loaded.TypeTableSet[0].Type)
	require.Len(t, loaded.TypeTableSet[0].ObjectInstanceSet, 2)
	// normalizeOrder sorts by collated name before persisting.
	require.Equal(t, "LP1", loaded.TypeTableSet[0].ObjectInstanceSet[0].Name)
	require.Equal(t, "LP2", loaded.TypeTableSet[0].ObjectInstanceSet[1].Name)
}

func TestSQLiteAdapterLoadMissingTypeSet(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "objtable.db")

	adapter, err := OpenSQLiteAdapter(ctx, dbPath)
	require.NoError(t, err)
	defer adapter.Close()

	fc, err := adapter.Load(ctx, "nonexistent")
	require.NoError(t, err)
	require.Empty(t, fc.TypeTableSet)
}
