package objtable

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// TableUpdater is the client-facing API (spec §6).
type TableUpdater interface {
	SeqNums() *SeqNumsPublisher
	GetObjects(typeFilter, nameFilter func(string) bool) []*Object
	GetObjectCount(typeFilter, nameFilter func(string) bool) int
	GetPublisher(id ObjectID) *Publisher
	Update(items []*UpdateItem, logConfigSelect string) (*Action, error)
	UpdateOne(item *UpdateItem, logConfigSelect string) (*Action, error)
}

// pendingSync is a registered wait condition from a SyncPersist item: the
// action completes once every named type-set's lastSucceededSaveSeqNum has
// reached the captured target (spec §4.2).
type pendingSync struct {
	action  *Action
	targets map[string]uint64 // type-set name -> required lastSucceededSaveSeqNum
}

// Table is the object-graph table engine: the index, type-sets, action
// queue, dispatcher, and publication/sequence state wired together. It
// implements TableUpdater. Grounded on the teacher's Engine
// (internal/sync/engine.go): a struct-of-dependencies orchestrator built
// by a single wiring constructor.
type Table struct {
	logger *slog.Logger

	index *index

	mu           sync.Mutex // guards typeSets/typeSetOrder/pendingSyncs metadata
	typeSets     map[string]*typeSetBinding
	typeSetOrder []string
	defaultTypeSet string

	seqCounter atomic.Uint64
	seqNums    *SeqNumsPublisher

	online atomic.Bool

	queue      *ActionQueue
	dispatcher *dispatcher

	pendingSyncs []*pendingSync

	externalFactory SyncFactory
	persistKicker   PersistKicker
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithLogger injects a structured logger, matching the teacher's
// constructor-injection convention. A nil logger falls back to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithQueueCapacity sets the action queue's bound (floored at 10).
func WithQueueCapacity(capacity int) Option {
	return func(t *Table) {
		t.queue = NewActionQueue(capacity)
	}
}

// WithExternalFactory wires a SyncExternal collaborator.
func WithExternalFactory(f SyncFactory) Option {
	return func(t *Table) {
		t.externalFactory = f
	}
}

// WithTypeSets registers the table's TypeSet configuration at
// construction time.
func WithTypeSets(configs []TypeSetConfig) Option {
	return func(t *Table) {
		for i, cfg := range configs {
			binding := newTypeSetBinding(cfg)
			t.typeSets[cfg.Name] = binding
			t.typeSetOrder = append(t.typeSetOrder, cfg.Name)

			if cfg.Default || (t.defaultTypeSet == "" && i == 0) {
				t.defaultTypeSet = cfg.Name
			}
		}
	}
}

// NewTable builds a Table ready to Start. It begins offline; callers must
// call SetOnline(true) once load (if any) has completed.
func NewTable(opts ...Option) *Table {
	t := &Table{
		logger:   slog.Default(),
		index:    newIndex(),
		typeSets: make(map[string]*typeSetBinding),
		seqNums:  NewSeqNumsPublisher(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.queue == nil {
		t.queue = NewActionQueue(minQueueCapacity)
	}

	t.dispatcher = newDispatcher(t)

	return t
}

// SetPersistKicker wires the persistence scheduler's hold-off bypass hook.
// Called after the scheduler is constructed, since it in turn needs an
// already-built Table to poll; SyncPersist calls through this once set.
func (t *Table) SetPersistKicker(k PersistKicker) {
	t.persistKicker = k
}

// SetOnline toggles the online flag consulted by Update's fast "not
// online" path (spec §4.2, §7 category 3).
func (t *Table) SetOnline(online bool) {
	t.online.Store(online)
}

// Online reports the current online flag.
func (t *Table) Online() bool {
	return t.online.Load()
}

// Start launches the dispatcher goroutine.
func (t *Table) Start(ctx context.Context) {
	t.dispatcher.start(ctx)
}

// Stop signals the dispatcher to exit once its current action finishes
// and waits for it to do so.
func (t *Table) Stop() {
	t.dispatcher.stop()
}

// SeqNums returns the table-level summary publisher.
func (t *Table) SeqNums() *SeqNumsPublisher {
	return t.seqNums
}

// GetObjects returns a snapshot of published objects matching the
// filters (both default to accept-all when nil). Only non-final,
// currently-indexed objects are ever returned.
func (t *Table) GetObjects(typeFilter, nameFilter func(string) bool) []*Object {
	trackers := t.index.snapshot(typeFilter, nameFilter)

	out := make([]*Object, 0, len(trackers))
	for _, tr := range trackers {
		if o := tr.publisher.Get(); o != nil {
			out = append(out, o)
		}
	}

	return out
}

// GetObjectCount returns the count of objects matching the filters.
func (t *Table) GetObjectCount(typeFilter, nameFilter func(string) bool) int {
	return t.index.count(typeFilter, nameFilter)
}

// GetPublisher returns the Publisher for id, or nil if no tracker exists.
func (t *Table) GetPublisher(id ObjectID) *Publisher {
	tr := t.index.get(id)
	if tr == nil {
		return nil
	}

	return tr.publisher
}

// UpdateOne is a convenience wrapper around Update for a single item.
func (t *Table) UpdateOne(item *UpdateItem, logConfigSelect string) (*Action, error) {
	return t.Update([]*UpdateItem{item}, logConfigSelect)
}

// Update creates a runnable Action over items, starts it, and enqueues it
// for the dispatcher (spec §6).
func (t *Table) Update(items []*UpdateItem, logConfigSelect string) (*Action, error) {
	a := newAction(items, logConfigSelect)

	if err := a.Start(); err != nil {
		return nil, err
	}

	if err := t.queue.Enqueue(a); err != nil {
		return nil, err
	}

	return a, nil
}

// nextSeq allocates the next monotonic sequence number, shared by
// table-change and per-object publication counters (spec §3 invariant 6).
func (t *Table) nextSeq() uint64 {
	return t.seqCounter.Add(1)
}
