package objconfig

import (
	"errors"
	"fmt"
)

var (
	ErrNoTypeSets        = errors.New("objconfig: at least one type_set must be configured")
	ErrNoDefaultTypeSet  = errors.New("objconfig: no type_set marked default and none to fall back to")
	ErrDuplicateTypeSet  = errors.New("objconfig: duplicate type_set name")
	ErrInvalidQueueSize  = errors.New("objconfig: queue capacity must be positive")
)

// Validate checks structural invariants the engine relies on, returning
// a wrapped error naming the offending field the way the teacher's
// internal/config validation helpers do.
func Validate(cfg Config) error {
	if cfg.Queue.Capacity <= 0 {
		return fmt.Errorf("queue.capacity: %w", ErrInvalidQueueSize)
	}

	if len(cfg.TypeSets) == 0 {
		return ErrNoTypeSets
	}

	seen := make(map[string]struct{}, len(cfg.TypeSets))
	sawDefault := false

	for _, ts := range cfg.TypeSets {
		if ts.Name == "" {
			return fmt.Errorf("type_set: %w", ErrNoTypeSets)
		}
		if _, dup := seen[ts.Name]; dup {
			return fmt.Errorf("type_set %q: %w", ts.Name, ErrDuplicateTypeSet)
		}
		seen[ts.Name] = struct{}{}

		if ts.Default {
			sawDefault = true
		}
	}

	if !sawDefault && len(cfg.TypeSets) > 1 {
		return ErrNoDefaultTypeSet
	}

	return nil
}
