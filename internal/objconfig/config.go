// Package objconfig carries the table engine's ambient configuration:
// queue capacity, hold-off duration, rate limit, type-set membership, and
// logging level. Grounded on the teacher's internal/config package
// file-for-file in shape (config.go/holder.go/load.go split, same
// four-layer override chain), repointed at this engine's tuning knobs
// instead of OneDrive sync settings.
package objconfig

import "time"

// Config is the root configuration struct, decoded from TOML via
// github.com/BurntSushi/toml the way the teacher's internal/config.Config
// is.
type Config struct {
	Queue       QueueConfig       `toml:"queue"`
	Persistence PersistenceConfig `toml:"persistence"`
	TypeSets    []TypeSetConfig   `toml:"type_set"`
	Logging     LoggingConfig     `toml:"logging"`
	External    ExternalConfig    `toml:"external"`
}

// QueueConfig tunes the action queue (spec §4.1).
type QueueConfig struct {
	Capacity int `toml:"capacity"`
}

// PersistenceConfig tunes the persistence scheduler (spec §4.4).
type PersistenceConfig struct {
	DatabasePath   string        `toml:"database_path"`
	HoldOff        time.Duration `toml:"hold_off"`
	SavesPerSecond float64       `toml:"saves_per_second"`
	Burst          int           `toml:"burst"`
}

// TypeSetConfig declares one configured type-set (spec §3 "TypeSet").
type TypeSetConfig struct {
	Name         string   `toml:"name"`
	Types        []string `toml:"types"`
	Default      bool     `toml:"default"`
	ReferenceCap int      `toml:"reference_capacity"`
	History      bool     `toml:"history"`
	HistoryCap   int      `toml:"history_capacity"`
}

// LoggingConfig selects the slog level and output format.
type LoggingConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// ExternalConfig configures the websocket-backed SyncFactory bridge
// (internal/external).
type ExternalConfig struct {
	ListenAddr string `toml:"listen_addr"`
	Enabled    bool   `toml:"enabled"`
}
