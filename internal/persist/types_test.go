package persist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mosaicautomation/objtable/internal/objtable"
)

// TestNestedSetSurvivesWireRoundTrip guards against the silent data loss
// encoding/json causes when an objtable.Attributes value (unexported
// fields, no Marshaler) is boxed directly into a map[string]any: without
// wireAttributes/engineAttributes, json.Marshal would encode the nested
// set as {} and Load would hand back an empty map instead of a rehydrated
// Attributes value.
func TestNestedSetSurvivesWireRoundTrip(t *testing.T) {
	recipe := objtable.NewAttributes()
	recipe.Set("step", int64(2))
	recipe.Set("tags", []any{"hot", "fast"})

	attrs := objtable.NewAttributes()
	attrs.Set("recipe", recipe)
	attrs.Set("lot", "L001")

	obj := &objtable.Object{
		ID:         objtable.NewObjectID("Subst", "W001"),
		Attributes: attrs,
	}

	wire := objectFromEngine(obj)

	blob, err := json.Marshal(wire)
	require.NoError(t, err)
	require.Contains(t, string(blob), `"step":2`)

	var decoded Object
	require.NoError(t, json.Unmarshal(blob, &decoded))

	loadMap := ToLoadMap(FileContents{TypeTableSet: []TypeTable{
		{Type: "Subst", ObjectInstanceSet: []Object{decoded}},
	}})

	loaded := loadMap["Subst"][0]

	lot, ok := loaded.Attributes.Get("lot")
	require.True(t, ok)
	require.Equal(t, "L001", lot)

	nested, ok := loaded.Attributes.Get("recipe")
	require.True(t, ok)

	nestedAttrs, ok := nested.(objtable.Attributes)
	require.True(t, ok, "nested set must rehydrate back into an Attributes value, not a bare map")

	step, ok := nestedAttrs.Get("step")
	require.True(t, ok)
	require.Equal(t, float64(2), step, "json round-trip upconverts numbers to float64")

	tags, ok := nestedAttrs.Get("tags")
	require.True(t, ok)
	require.Equal(t, []any{"hot", "fast"}, tags)
}
