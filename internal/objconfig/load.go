package objconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// CLIOverrides carries the fourth and final override layer: flags parsed
// by cmd/objtablectl's cobra command tree (teacher's root.go flag set,
// repointed at this engine).
type CLIOverrides struct {
	QueueCapacity *int
	DatabasePath  *string
	LogLevel      *string
	Verbose       bool
	Debug         bool
	Quiet         bool
}

// Load implements the four-layer override chain: defaults -> file (TOML,
// if present) -> environment -> CLI flags. Mirrors the teacher's
// internal/config/load.go Load/LoadOrDefault pair; unlike the teacher's
// per-drive two-pass decode (there is nothing analogous to a "drive
// section" here), a single flat decode is sufficient.
func Load(path string, overrides CLIOverrides) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("objconfig: decoding %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	applyCLI(&cfg, overrides)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOrDefault is Load with file-not-found and decode errors treated as
// "use defaults plus env/CLI," matching the teacher's lenient
// LoadOrDefault entry point used by non-interactive CLI invocations.
func LoadOrDefault(path string, overrides CLIOverrides) Config {
	cfg, err := Load(path, overrides)
	if err != nil {
		cfg = Defaults()
		applyEnv(&cfg)
		applyCLI(&cfg, overrides)
	}

	return cfg
}

func applyCLI(cfg *Config, o CLIOverrides) {
	if o.QueueCapacity != nil {
		cfg.Queue.Capacity = *o.QueueCapacity
	}
	if o.DatabasePath != nil {
		cfg.Persistence.DatabasePath = *o.DatabasePath
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}

	switch {
	case o.Debug:
		cfg.Logging.Level = "debug"
	case o.Verbose:
		cfg.Logging.Level = "info"
	case o.Quiet:
		cfg.Logging.Level = "error"
	}
}
