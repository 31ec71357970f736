package objconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "objtable.toml")

	require.NoError(t, os.WriteFile(path, []byte(`
[queue]
capacity = 128

[persistence]
hold_off = "250ms"

[[type_set]]
name = "equipment"
types = ["SubstLoc", "Subst"]
default = true
`), 0o644))

	t.Setenv("OBJTABLE_HOLD_OFF", "500ms")

	capacity := 256
	cfg, err := Load(path, CLIOverrides{QueueCapacity: &capacity})
	require.NoError(t, err)

	require.Equal(t, 256, cfg.Queue.Capacity, "CLI overrides file and env")
	require.Equal(t, 500*time.Millisecond, cfg.Persistence.HoldOff, "env overrides file")
	require.Len(t, cfg.TypeSets, 1)
	require.Equal(t, "equipment", cfg.TypeSets[0].Name)
}

func TestValidateRejectsMissingDefault(t *testing.T) {
	cfg := Defaults()
	cfg.TypeSets = []TypeSetConfig{{Name: "a"}, {Name: "b"}}

	err := Validate(cfg)
	require.ErrorIs(t, err, ErrNoDefaultTypeSet)
}

func TestParseCapacity(t *testing.T) {
	n, err := ParseCapacity("10k")
	require.NoError(t, err)
	require.Equal(t, 10000, n)

	n, err = ParseCapacity("unbounded")
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
