package objconfig

import (
	"os"
	"path/filepath"
)

// defaultConfigFileName is the TOML file name searched for in the
// default config directory, mirroring the teacher's ResolveConfigPath.
const defaultConfigFileName = "objtable.toml"

// ResolveConfigPath implements the CLI > env > default priority chain for
// locating the config file (teacher's root.go / load.go ResolveConfigPath).
func ResolveConfigPath(cliFlag string) string {
	if cliFlag != "" {
		return cliFlag
	}

	if env := os.Getenv("OBJTABLE_CONFIG"); env != "" {
		return env
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return defaultConfigFileName
	}

	return filepath.Join(dir, "objtable", defaultConfigFileName)
}
