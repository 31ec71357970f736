package objtable

// doAddObject implements spec §4.2 AddObject.
func (e *executor) doAddObject(item *UpdateItem) string {
	p := item.AddObject

	if !p.ID.IsValid() {
		return rcObjectNotFound(p.ID)
	}

	existing := e.resolveTarget(p.ID)

	if existing == nil {
		tr := newTracker(p.ID)
		tr.attrs = p.Attributes.Clone()
		tr.flags = p.Flags & ClientUsableFlags
		tr.ivaRequested = tr.flags.Has(FlagCreateIVA)
		tr.typeSet = e.defaultTypeSetBinding(p.ID.Type)

		e.table.index.put(tr)

		if tt := e.typeTableFor(tr); tt != nil {
			tt.trackers[tr.id.Name] = tr
		}

		e.markDirty(tr)
		item.Publisher = tr.publisher

		return ""
	}

	if !p.IfNeeded {
		return rcObjectAlreadyExists(p.ID)
	}

	existing.attrs = MergeAttributes(existing.attrs, p.Attributes, p.MergeBehavior)
	existing.flags = existing.flags.WithClientFlags(p.Flags)

	if p.Flags.Has(FlagCreateIVA) {
		existing.ivaRequested = true
	}

	if p.ID.UUID != "" && existing.id.UUID == "" {
		e.table.index.setUUID(existing, p.ID.UUID)
	}

	e.markDirty(existing)
	item.Publisher = existing.publisher

	return ""
}

// doRemoveObject implements spec §4.2 RemoveObject's worklist-driven
// cascade. Each pass removes at least one tracker and filter checks
// short-circuit on an already-removed peer, so recursion terminates.
func (e *executor) doRemoveObject(item *UpdateItem) string {
	p := item.RemoveObject

	root := e.resolveTarget(p.ID)
	if root == nil {
		return rcObjectNotFound(p.ID)
	}

	worklist := []*tracker{root}
	removed := make(map[string]struct{})

	for len(worklist) > 0 {
		tr := worklist[0]
		worklist = worklist[1:]

		if _, already := removed[tr.id.FullName()]; already {
			continue
		}

		candidates := e.removeOneTracker(tr, p.LinkedRemovalFilter)
		removed[tr.id.FullName()] = struct{}{}

		for _, c := range candidates {
			if _, already := removed[c.id.FullName()]; !already {
				worklist = append(worklist, c)
			}
		}
	}

	return ""
}

// removeOneTracker removes a single tracker: sets IsFinal, snapshots and
// clears both link dictionaries, unlinks each captured edge (touching the
// peer), then drops it from the index. It returns the set of neighbors
// that should be considered for cascading removal, per the
// linkedRemovalFilter rule: a neighbor qualifies only if it is not
// Pinned/CreateIVA and, after this removal, has no remaining linksIn edge
// matching filter.
func (e *executor) removeOneTracker(tr *tracker, filter func(Link) bool) []*tracker {
	outSnapshot := make([]Link, 0, len(tr.linksOut))
	for _, l := range tr.linksOut {
		outSnapshot = append(outSnapshot, l)
	}

	inSnapshot := make([]Link, 0, len(tr.linksIn))
	for _, l := range tr.linksIn {
		inSnapshot = append(inSnapshot, l)
	}

	tr.linksOut = make(map[string]Link)
	tr.linksIn = make(map[string]Link)

	var candidates []*tracker

	for _, l := range outSnapshot {
		peer := e.resolveTarget(l.ToID)
		if peer != nil {
			delete(peer.linksIn, inKey(tr.id.FullName(), l.Key))
			peer.rebuildIn = true
			e.markDirty(peer)
		}

		if filter != nil && filter(l) && peer != nil && e.qualifiesForCascade(peer, filter) {
			candidates = append(candidates, peer)
		}
	}

	for _, l := range inSnapshot {
		peer := e.resolveTarget(l.FromID)
		if peer != nil {
			delete(peer.linksOut, l.Key)
			peer.rebuildOut = true
			e.markDirty(peer)
		}
	}

	tr.flags |= FlagIsFinal
	e.markDirty(tr)

	e.table.index.delete(tr)
	if tt := e.typeTableFor(tr); tt != nil {
		delete(tt.trackers, tr.id.Name)
	}

	return candidates
}

// qualifiesForCascade reports whether peer should be enqueued for removal
// after the edge that reached it has already been cleared: it must not be
// Pinned/CreateIVA, and it must have no remaining linksIn edge matching
// filter.
func (e *executor) qualifiesForCascade(peer *tracker, filter func(Link) bool) bool {
	if peer.flags.Any(FlagPinned | FlagCreateIVA) {
		return false
	}

	for _, l := range peer.linksIn {
		if filter(l) {
			return false
		}
	}

	return true
}

// defaultTypeSetBinding resolves which type-set owns a newly created
// tracker of typeName: its explicitly configured type-set, or the
// configured default type-set (Open Question (a)'s lenient-unknown-type
// rule, applied uniformly here since a brand new type behaves the same
// way as an unmapped SyncPersist target).
func (e *executor) defaultTypeSetBinding(typeName string) *typeSetBinding {
	e.table.mu.Lock()
	defer e.table.mu.Unlock()

	for _, binding := range e.table.typeSets {
		if binding.hasType(typeName) {
			return binding
		}
	}

	if e.table.defaultTypeSet != "" {
		return e.table.typeSets[e.table.defaultTypeSet]
	}

	return nil
}

func (e *executor) typeTableFor(tr *tracker) *typeTable {
	if tr.typeSet == nil {
		return nil
	}

	tt, ok := tr.typeSet.types[tr.id.Type]
	if !ok {
		tt = newTypeTable(tr.id.Type)
		tr.typeSet.types[tr.id.Type] = tt
	}

	return tt
}
