package objconfig

import "time"

// Defaults returns a Config populated with the engine's built-in
// defaults: the first of the four override layers (defaults -> file ->
// env -> CLI).
func Defaults() Config {
	return Config{
		Queue: QueueConfig{Capacity: 64},
		Persistence: PersistenceConfig{
			DatabasePath:   "objtable.db",
			HoldOff:        100 * time.Millisecond,
			SavesPerSecond: 20,
			Burst:          5,
		},
		TypeSets: []TypeSetConfig{
			{Name: "default", Default: true},
		},
		Logging: LoggingConfig{Level: "info"},
		External: ExternalConfig{
			ListenAddr: ":8842",
			Enabled:    false,
		},
	}
}
