package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mosaicautomation/objtable/internal/objtable"
)

// DefaultHoldOff is the minimum dwell time between table mutation and
// scheduling a persist write, per spec §4.4 ("default ~100 ms").
const DefaultHoldOff = 100 * time.Millisecond

// perTypeSetState tracks one type-set's hold-off timer and in-flight save,
// mirroring the per-type-set persist state machine of spec §4.6
// (Clean -> Dirty -> Writing -> Clean|Dirty).
type perTypeSetState struct {
	mu        sync.Mutex
	timer     *time.Timer
	armed     bool
	writing   bool
	lastError error
}

// SchedulerStats mirrors the teacher's WorkerPool.Stats() introspection
// shape (SPEC_FULL's supplemented Stats() surface).
type SchedulerStats struct {
	Writes     int
	Failures   int
	Throttled  int
}

// Scheduler services every configured type-set's dirty/hold-off/save
// cycle. Grounded directly on the teacher's BandwidthLimiter
// (internal/sync/bandwidth.go): a golang.org/x/time/rate token bucket
// wrapping a chunked wait, generalized here from byte throughput to
// save-invocation throughput — the "rate-limited persistence pipeline"
// named in spec.md §2.
type Scheduler struct {
	table   *objtable.Table
	adapter StorageAdapter
	logger  *slog.Logger

	holdOff time.Duration
	limiter *rate.Limiter

	states map[string]*perTypeSetState

	statsMu sync.Mutex
	stats   SchedulerStats

	group  *errgroup.Group
	cancel context.CancelFunc
	runCtx context.Context
}

// SchedulerOption configures a Scheduler at construction time.
type SchedulerOption func(*Scheduler)

// WithHoldOff overrides DefaultHoldOff.
func WithHoldOff(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.holdOff = d }
}

// WithRateLimit bounds save invocations per second with a token bucket,
// independent of the hold-off timer: hold-off bounds latency per
// type-set, the limiter bounds total throughput under bursty churn
// across all type-sets (SPEC_FULL domain stack).
func WithRateLimit(savesPerSecond float64, burst int) SchedulerOption {
	return func(s *Scheduler) { s.limiter = rate.NewLimiter(rate.Limit(savesPerSecond), burst) }
}

// WithSchedulerLogger injects a structured logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler builds a Scheduler bound to table and adapter.
func NewScheduler(table *objtable.Table, adapter StorageAdapter, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		table:   table,
		adapter: adapter,
		logger:  slog.Default(),
		holdOff: DefaultHoldOff,
		limiter: rate.NewLimiter(rate.Limit(20), 5),
		states:  make(map[string]*perTypeSetState),
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, name := range table.TypeSetNames() {
		s.states[name] = &perTypeSetState{}
	}

	return s
}

// Load reads every configured type-set once via the adapter, installs the
// reloaded trackers into the table, resolves linksIn, and republishes
// (spec §4.4 "Load").
func (s *Scheduler) Load(ctx context.Context) error {
	for _, name := range s.table.TypeSetNames() {
		fc, err := s.adapter.Load(ctx, name)
		if err != nil {
			s.logger.Error("persist: load failed", slog.String("type_set", name), slog.Any("error", err))
			continue
		}

		if err := s.table.LoadTypeSet(name, ToLoadMap(fc)); err != nil {
			return err
		}
	}

	s.table.ResolveLoadedLinks()

	return nil
}

// Start launches one polling goroutine per type-set under a shared
// errgroup, plus the table dispatcher's own goroutines are started
// separately by the caller (objtable.Table.Start); this mirrors the
// teacher's pattern of an errgroup per subsystem rather than one global
// group, since the two subsystems have independent lifetimes.
func (s *Scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.runCtx = runCtx

	g, gctx := errgroup.WithContext(runCtx)
	s.group = g

	for _, name := range s.table.TypeSetNames() {
		name := name
		g.Go(func() error {
			s.pollLoop(gctx, name)
			return nil
		})
	}
}

// Stop cancels every poll loop, flushes any remaining dirty type-set
// synchronously, and waits for shutdown (spec §4.4 "On part stop: flush
// any remaining dirty writes synchronously and dispose the storage
// worker").
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	if s.group != nil {
		_ = s.group.Wait()
	}

	for _, name := range s.table.TypeSetNames() {
		s.flushNow(ctx, name)
	}
}

const pollInterval = 20 * time.Millisecond

func (s *Scheduler) pollLoop(ctx context.Context, name string) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	state := s.states[name]

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, name, state)
		}
	}
}

// tick implements one iteration of the spec §4.4 main loop for one
// type-set: skip if writing, record a completed write's outcome, arm or
// disarm the hold-off timer otherwise.
func (s *Scheduler) tick(ctx context.Context, name string, state *perTypeSetState) {
	state.mu.Lock()
	writing := state.writing
	state.mu.Unlock()

	if writing {
		return
	}

	snap, ok := s.table.SnapshotTypeSet(name)
	if !ok {
		return
	}

	if !snap.Dirty() {
		state.mu.Lock()
		if state.armed && state.timer != nil {
			state.timer.Stop()
			state.armed = false
		}
		state.mu.Unlock()
		return
	}

	state.mu.Lock()
	if state.armed {
		state.mu.Unlock()
		return
	}
	state.armed = true
	state.timer = time.AfterFunc(s.holdOff, func() {
		s.flushNow(ctx, name)
	})
	state.mu.Unlock()
}

// flushNow issues one save for name's current snapshot, throttled by the
// shared rate limiter, then disarms the hold-off timer. Safe to call
// concurrently with tick for the same name; writing is CAS-guarded.
func (s *Scheduler) flushNow(ctx context.Context, name string) {
	state := s.states[name]
	if state == nil {
		return
	}

	state.mu.Lock()
	if state.writing {
		state.mu.Unlock()
		return
	}
	state.writing = true
	state.armed = false
	state.mu.Unlock()

	defer func() {
		state.mu.Lock()
		state.writing = false
		state.mu.Unlock()
	}()

	snap, ok := s.table.SnapshotTypeSet(name)
	if !ok || !snap.Dirty() {
		return
	}

	if err := s.waitForRateLimit(ctx); err != nil {
		s.recordThrottled()
		return
	}

	fc := FromSnapshot(snap)

	err := s.adapter.Save(ctx, name, fc)

	s.table.MarkTypeSetSaved(name, snap.LastPublishedSeqNum, err)

	if err != nil {
		s.logger.Error("persist: save failed", slog.String("type_set", name), slog.Any("error", err))
		s.recordFailure()
		return
	}

	s.recordWrite()
}

// Kick forces an immediate save attempt for name, bypassing the armed
// hold-off timer. This is the explicit-trigger half of spec §4.4's "the
// hold-off timer triggers (or on explicit SyncPersist) a save": a
// SyncPersist with a short wait limit must not be made to sit out a full
// hold-off cycle the table has already decided to skip. A save already in
// flight is left alone; flushNow's own dirty check makes a redundant kick
// a no-op rather than a double write.
func (s *Scheduler) Kick(name string) {
	state := s.states[name]
	if state == nil {
		return
	}

	state.mu.Lock()
	if state.armed && state.timer != nil {
		state.timer.Stop()
	}
	state.armed = false
	state.mu.Unlock()

	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	go s.flushNow(ctx, name)
}

// waitForRateLimit blocks, chunking the wait the way the teacher's
// BandwidthLimiter.waitN does for a request larger than the bucket's
// burst: a single token is all a save invocation ever costs here, so no
// chunking loop is needed, but the call still honors ctx cancellation.
func (s *Scheduler) waitForRateLimit(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

func (s *Scheduler) recordWrite() {
	s.statsMu.Lock()
	s.stats.Writes++
	s.statsMu.Unlock()
}

func (s *Scheduler) recordFailure() {
	s.statsMu.Lock()
	s.stats.Failures++
	s.statsMu.Unlock()
}

func (s *Scheduler) recordThrottled() {
	s.statsMu.Lock()
	s.stats.Throttled++
	s.statsMu.Unlock()
}

// Stats returns a snapshot of scheduler counters.
func (s *Scheduler) Stats() SchedulerStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	return s.stats
}
