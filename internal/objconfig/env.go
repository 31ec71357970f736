package objconfig

import (
	"os"
	"strconv"
	"time"
)

// applyEnv is the third override layer: environment variables win over
// the file, lose to explicit CLI flags. Mirrors the teacher's load.go
// env-override block in spirit, narrowed to this engine's handful of
// hot-path knobs.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OBJTABLE_QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.Capacity = n
		}
	}

	if v := os.Getenv("OBJTABLE_HOLD_OFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Persistence.HoldOff = d
		}
	}

	if v := os.Getenv("OBJTABLE_DB_PATH"); v != "" {
		cfg.Persistence.DatabasePath = v
	}

	if v := os.Getenv("OBJTABLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
