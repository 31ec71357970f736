package objtable

import "sync/atomic"

// Publisher is an interlocked notification slot carrying the last-published
// immutable Object for one tracker. Updated with an atomic pointer swap so
// observers always see a complete object, never a partially mutated one
// (spec §5 "Publisher slots are updated with an atomic exchange").
type Publisher struct {
	slot atomic.Pointer[Object]
}

// NewPublisher returns a Publisher with no published value yet.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Get returns the current published Object, or nil if nothing has been
// published yet.
func (p *Publisher) Get() *Object {
	if p == nil {
		return nil
	}

	return p.slot.Load()
}

// Seq returns the sequence number of the current published Object, or 0
// if none has been published.
func (p *Publisher) Seq() uint64 {
	o := p.Get()
	if o == nil {
		return 0
	}

	return o.PublishedSeq
}

// publish installs obj as the current value. Called by the dispatcher
// goroutine during the publication pass, and by ResolveLoadedLinks at
// load time before the dispatcher starts.
func (p *Publisher) publish(obj *Object) {
	p.slot.Store(obj)
}

// ExtractFunc derives a cached Info value from a published Object.
type ExtractFunc[T any] func(*Object) T

// ObserverWithExtractor wraps a Publisher with a user-supplied extraction
// function and a cached Info value, invoking side-effect callbacks only
// when the underlying slot has actually changed (spec §4.5).
type ObserverWithExtractor[T any] struct {
	publisher *Publisher
	extract   ExtractFunc[T]
	lastSeq   uint64
	cached    T
	callbacks []func(T)
}

// NewObserverWithExtractor builds an observer bound to publisher.
func NewObserverWithExtractor[T any](publisher *Publisher, extract ExtractFunc[T]) *ObserverWithExtractor[T] {
	return &ObserverWithExtractor[T]{publisher: publisher, extract: extract}
}

// OnChange registers a callback invoked whenever Update detects a new
// publication. Callbacks run synchronously, in registration order, on
// whatever goroutine calls Update.
func (o *ObserverWithExtractor[T]) OnChange(cb func(T)) {
	o.callbacks = append(o.callbacks, cb)
}

// Update checks the bound publisher for a newer sequence number; if found,
// re-extracts Info, caches it, and invokes every registered callback.
// Returns true if the cache was refreshed.
func (o *ObserverWithExtractor[T]) Update() bool {
	obj := o.publisher.Get()
	if obj == nil || obj.PublishedSeq <= o.lastSeq {
		return false
	}

	o.lastSeq = obj.PublishedSeq
	o.cached = o.extract(obj)

	for _, cb := range o.callbacks {
		cb(o.cached)
	}

	return true
}

// Cached returns the last-extracted Info without checking for updates.
func (o *ObserverWithExtractor[T]) Cached() T {
	return o.cached
}

// TableSeqNums is the table-level summary published after every drain of
// the dirty set (spec §4.3 "Summary publication").
type TableSeqNums struct {
	TableChange     uint64
	AddedTypes      []string
	AddedItems      int
	RemovedItems    int
	PublishedObject ObjectID
}

// Equal reports whether two summaries carry the same content, used to
// suppress redundant publications to the guarded slot.
func (s TableSeqNums) Equal(other TableSeqNums) bool {
	if s.TableChange != other.TableChange || s.AddedItems != other.AddedItems ||
		s.RemovedItems != other.RemovedItems || !s.PublishedObject.Equal(other.PublishedObject) {
		return false
	}

	if len(s.AddedTypes) != len(other.AddedTypes) {
		return false
	}

	for i := range s.AddedTypes {
		if s.AddedTypes[i] != other.AddedTypes[i] {
			return false
		}
	}

	return true
}

// SeqNumsPublisher is the guarded slot delivering TableSeqNums to clients.
type SeqNumsPublisher struct {
	slot atomic.Pointer[TableSeqNums]
}

// NewSeqNumsPublisher returns an empty publisher.
func NewSeqNumsPublisher() *SeqNumsPublisher {
	return &SeqNumsPublisher{}
}

// Get returns the last published summary, or nil if none yet.
func (p *SeqNumsPublisher) Get() *TableSeqNums {
	return p.slot.Load()
}

// publishIfChanged installs next only if it differs from the currently
// published value, per spec §4.3.
func (p *SeqNumsPublisher) publishIfChanged(next TableSeqNums) {
	prev := p.slot.Load()
	if prev != nil && prev.Equal(next) {
		return
	}

	p.slot.Store(&next)
}
