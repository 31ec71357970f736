package objtable

import "sync"

// index is the external-facing lookup structure: (type,name) and uuid both
// resolve to a tracker. It is guarded by one coarse mutex, taken only to
// read or mutate the dictionaries themselves (spec §5) — never held across
// publication or persistence work.
type index struct {
	mu         sync.Mutex
	byFullName map[string]*tracker
	byUUID     map[string]*tracker
}

func newIndex() *index {
	return &index{
		byFullName: make(map[string]*tracker),
		byUUID:     make(map[string]*tracker),
	}
}

func (ix *index) get(id ObjectID) *tracker {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return ix.getLocked(id)
}

// getLocked resolves an ObjectID without acquiring the mutex; the caller
// must already hold it (get is the locking wrapper).
func (ix *index) getLocked(id ObjectID) *tracker {
	if id.UUID != "" {
		if t, ok := ix.byUUID[id.UUID]; ok {
			return t
		}
	}

	return ix.byFullName[id.FullName()]
}

func (ix *index) put(t *tracker) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.byFullName[t.id.FullName()] = t
	if t.id.UUID != "" {
		ix.byUUID[t.id.UUID] = t
	}
}

// setUUID records a UUID assigned to an already-indexed tracker (AddObject's
// "assigns a UUID if the new id carries one and the existing tracker does
// not" path).
func (ix *index) setUUID(t *tracker, uuid string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	t.id.UUID = uuid
	ix.byUUID[uuid] = t
}

func (ix *index) delete(t *tracker) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delete(ix.byFullName, t.id.FullName())
	if t.id.UUID != "" {
		delete(ix.byUUID, t.id.UUID)
	}
}

// snapshot returns every tracker matching typeFilter/nameFilter, both of
// which default to accept-all when nil (spec §6 GetObjects). Final
// (removed) trackers are never present in the index, so no filtering for
// IsFinal is required here.
func (ix *index) snapshot(typeFilter, nameFilter func(string) bool) []*tracker {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]*tracker, 0, len(ix.byFullName))

	for _, t := range ix.byFullName {
		if typeFilter != nil && !typeFilter(t.id.Type) {
			continue
		}
		if nameFilter != nil && !nameFilter(t.id.Name) {
			continue
		}
		out = append(out, t)
	}

	return out
}

func (ix *index) count(typeFilter, nameFilter func(string) bool) int {
	return len(ix.snapshot(typeFilter, nameFilter))
}
