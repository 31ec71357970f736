package objtable

// tracker is the internal mutable record for one object. Apart from the
// load path (LoadTypeSet and ResolveLoadedLinks, which run before the
// dispatcher starts), only the dispatcher goroutine touches a tracker's
// fields; other goroutines only see the immutable Object snapshots
// reachable through publisher (spec §4.5, §5).
type tracker struct {
	id    ObjectID
	flags Flags
	attrs Attributes

	// linksOut is keyed by link key: at most one outbound edge per key
	// per source (invariant 2).
	linksOut map[string]Link
	// linksIn is keyed by (fromFullName, key): a target may receive
	// edges with the same key from distinct sources.
	linksIn map[string]Link

	touched    bool
	rebuildOut bool
	rebuildIn  bool

	lastPublished    *Object
	lastPublishedSeq uint64
	publisher        *Publisher

	// ivaRequested records a CreateIVA allocation request (spec §4.2
	// AddObject). The engine only records the request: no external value
	// slot is allocated and publication writes no remote clone anywhere.
	ivaRequested bool

	// refSeq is the reference-set bookkeeping slot: the sequence number
	// at which this tracker's current entry was added to its type-set's
	// reference set, used to compute the remove-list on the next delta
	// (spec §4.3 "Reference-set deltas").
	refSeq uint64

	typeSet *typeSetBinding
}

// newTracker allocates a tracker for id with empty link dictionaries and a
// fresh publisher slot.
func newTracker(id ObjectID) *tracker {
	return &tracker{
		id:        id,
		attrs:     NewAttributes(),
		linksOut:  make(map[string]Link),
		linksIn:   make(map[string]Link),
		publisher: NewPublisher(),
	}
}

// touch marks the tracker dirty so the next publication drain processes it.
func (t *tracker) touch() {
	t.touched = true
}

// outLinksOrdered materializes linksOut into the order used for immutable
// snapshots: insertion order is not tracked explicitly, so the rebuild
// pass sorts by key for determinism (spec does not mandate source order,
// only a stable, reproducible one across reload).
func (t *tracker) outLinksOrdered() []Link {
	return orderedLinks(t.linksOut)
}

func (t *tracker) inLinksOrdered() []Link {
	return orderedLinks(t.linksIn)
}

// orderedLinks returns the dictionary's values sorted by (FromID full
// name, Key, ToID full name) for determinism.
func orderedLinks(m map[string]Link) []Link {
	if len(m) == 0 {
		return nil
	}

	out := make([]Link, 0, len(m))
	for _, l := range m {
		out = append(out, l)
	}

	sortLinks(out)

	return out
}
