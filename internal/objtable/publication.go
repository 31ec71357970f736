package objtable

// drainAndPublish runs the three-pass publication drain over the
// executor's dirty set (spec §4.3), applies reference-set deltas, and
// republishes the table-level TableSeqNums summary. Called for
// SyncPublication, SyncPersist and (optionally) SyncExternal items, and
// unconditionally at the end of performUpdates.
func (e *executor) drainAndPublish() {
	if len(e.dirty) == 0 {
		return
	}

	touched := make([]*tracker, 0, len(e.dirty))
	for tr := range e.dirty {
		touched = append(touched, tr)
	}
	e.dirty = make(map[*tracker]struct{})

	// Pass 1: link rebuild.
	for _, tr := range touched {
		if tr.rebuildOut {
			tr.rebuildOut = false
		}
		if tr.rebuildIn {
			tr.rebuildIn = false
		}
	}

	addedItems := 0
	removedItems := 0
	addedTypes := map[string]struct{}{}
	var lastPublishedID ObjectID

	type delta struct {
		binding    *typeSetBinding
		removeSeqs []uint64
		adds       []*Object
	}
	deltas := make(map[*typeSetBinding]*delta)
	primarySeq := make(map[*tracker]uint64, len(touched))

	// Pass 2: primary publication.
	for _, tr := range touched {
		seq := e.table.nextSeq()

		obj := &Object{
			ID:           tr.id,
			Flags:        tr.flags,
			Attributes:   tr.attrs.Clone(),
			LinksOut:     cloneLinks(tr.outLinksOrdered()),
			LinksIn:      cloneLinks(tr.inLinksOrdered()),
			PublishedSeq: seq,
		}

		wasNew := tr.lastPublishedSeq == 0 && !tr.flags.Has(FlagIsFinal)

		tr.lastPublished = obj
		tr.lastPublishedSeq = seq
		tr.publisher.publish(obj)
		primarySeq[tr] = seq

		lastPublishedID = tr.id

		if tr.flags.Has(FlagIsFinal) {
			removedItems++
		} else if wasNew {
			addedItems++
			addedTypes[tr.id.Type] = struct{}{}
		}

		// Pass 3 feeds from here: through-link propagation walks this
		// tracker's linksIn immediately so upstream trackers observe the
		// new seq before the drain moves to reference-set deltas.
		e.propagateThroughLinks(tr, seq, make(map[string]struct{}))

		if tr.typeSet == nil {
			continue
		}

		d, ok := deltas[tr.typeSet]
		if !ok {
			d = &delta{binding: tr.typeSet}
			deltas[tr.typeSet] = d
		}

		if tr.refSeq != 0 {
			d.removeSeqs = append(d.removeSeqs, tr.refSeq)
		}

		if !tr.flags.Has(FlagIsFinal) {
			d.adds = append(d.adds, obj)
		}

		if tr.typeSet.historySet != nil && !tr.flags.Has(FlagIsFinal) {
			tr.typeSet.historySet.RemoveBySeqNumsAndAdd(nil, []*Object{obj})
		}
	}

	// Reference-set deltas: one atomic RemoveBySeqNums+AddItems per
	// affected type-set. Each added object is keyed in the set by its own
	// PublishedSeq, which doubles as the "first-added-seq" back-filled
	// into its tracker for the next round's remove-list.
	for binding, d := range deltas {
		sorted := sortAscending(d.removeSeqs)
		binding.refSet.RemoveBySeqNumsAndAdd(sorted, d.adds)

		for _, tr := range touched {
			if tr.typeSet != binding || tr.flags.Has(FlagIsFinal) {
				continue
			}
			tr.refSeq = primarySeq[tr]
		}

		binding.lastPublishedSeqNum = e.table.nextSeq()
	}

	types := make([]string, 0, len(addedTypes))
	for t := range addedTypes {
		types = append(types, t)
	}

	summary := TableSeqNums{
		TableChange:     e.table.seqCounter.Load(),
		AddedTypes:      types,
		AddedItems:      addedItems,
		RemovedItems:    removedItems,
		PublishedObject: lastPublishedID,
	}

	e.table.seqNums.publishIfChanged(summary)
}

// propagateThroughLinks walks upstream from a just-published tracker
// through its linksIn edges, republishing any reachable tracker whose
// lastPublishedSeq is behind seq with a shallow-copied Object (same
// attributes/links, new PublishedSeq) so downstream watchers see a
// change without the cost of re-deriving a snapshot (spec §4.3 pass 3).
// visited guards against revisiting a tracker within one propagation walk
// on top of the seq short-circuit, since a cycle can otherwise be walked
// twice before either side's seq catches up.
func (e *executor) propagateThroughLinks(from *tracker, seq uint64, visited map[string]struct{}) {
	key := from.id.FullName()
	if _, seen := visited[key]; seen {
		return
	}
	visited[key] = struct{}{}

	for _, l := range from.linksIn {
		upstream := e.resolveTarget(l.FromID)
		if upstream == nil || upstream.lastPublishedSeq >= seq {
			continue
		}

		if upstream.lastPublished == nil {
			// Not published yet: an upstream tracker created in the same
			// drain whose own primary publication comes later in this pass.
			// Build its snapshot from the working state.
			upstream.lastPublished = &Object{
				ID:         upstream.id,
				Flags:      upstream.flags,
				Attributes: upstream.attrs.Clone(),
				LinksOut:   cloneLinks(upstream.outLinksOrdered()),
				LinksIn:    cloneLinks(upstream.inLinksOrdered()),
			}
		}

		republished := *upstream.lastPublished
		republished.PublishedSeq = seq

		upstream.lastPublished = &republished
		upstream.lastPublishedSeq = seq
		upstream.publisher.publish(&republished)

		e.propagateThroughLinks(upstream, seq, visited)
	}
}
