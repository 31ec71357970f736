package objconfig

import "sync"

// Holder is a thread-safe, hot-reloadable configuration container,
// grounded directly on the teacher's internal/config/holder.go. It only
// stores the Config: the table and the persistence scheduler take their
// type-set definitions once at construction, so a reload updates the held
// Config and nothing else.
type Holder struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

// NewHolder wraps an already-loaded Config.
func NewHolder(cfg Config, path string) *Holder {
	return &Holder{cfg: cfg, path: path}
}

// Config returns the currently held configuration.
func (h *Holder) Config() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.cfg
}

// Path returns the file path this Holder was loaded from.
func (h *Holder) Path() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.path
}

// Update replaces the held configuration, for example after a SIGHUP
// reload re-runs Load.
func (h *Holder) Update(cfg Config) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cfg = cfg
}

// Reload re-runs Load against the Holder's own path and, on success,
// installs the result. Returns the error from Load without mutating the
// held configuration on failure.
func (h *Holder) Reload(overrides CLIOverrides) error {
	cfg, err := Load(h.Path(), overrides)
	if err != nil {
		return err
	}

	h.Update(cfg)

	return nil
}
