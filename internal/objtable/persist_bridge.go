package objtable

// TypeSetContents is the generic, persist-package-agnostic snapshot of one
// type table's current published objects, handed to a persistence
// scheduler for serialization. Keeping this type in objtable (rather than
// importing internal/persist's wire format here) avoids an import cycle:
// internal/persist imports objtable, never the reverse.
type TypeSetContents struct {
	TypeName string
	Objects  []*Object
}

// TypeSetSnapshot is everything a persistence scheduler needs about one
// type-set on one scheduling tick.
type TypeSetSnapshot struct {
	Name                    string
	LastPublishedSeqNum     uint64
	LastSucceededSaveSeqNum uint64
	Tables                  []TypeSetContents
}

// Dirty reports whether this type-set has published content not yet
// reflected in the last successful save.
func (s TypeSetSnapshot) Dirty() bool {
	return s.LastPublishedSeqNum != s.LastSucceededSaveSeqNum
}

// TypeSetNames returns the configured type-set names in configuration
// order, for schedulers that service type-sets "in order" (spec §4.4).
func (t *Table) TypeSetNames() []string {
	return append([]string(nil), t.typeSetOrder...)
}

// SnapshotTypeSet returns a persistence-ready snapshot of one type-set.
// "prepare file contents by in-place-replacing each type table's object
// list with the trackers' last-published instances" (spec §4.4) is
// realized here: the tracker index is the source of truth; this call
// always builds from each tracker's current Publisher value, so no separate
// buffer reuse bookkeeping is needed on this side of the bridge.
func (t *Table) SnapshotTypeSet(name string) (TypeSetSnapshot, bool) {
	t.mu.Lock()
	binding, ok := t.typeSets[name]
	t.mu.Unlock()

	if !ok {
		return TypeSetSnapshot{}, false
	}

	snap := TypeSetSnapshot{
		Name:                    name,
		LastPublishedSeqNum:     binding.lastPublishedSeqNum,
		LastSucceededSaveSeqNum: binding.lastSucceededSaveSeqNum,
	}

	for typeName, tt := range binding.types {
		contents := TypeSetContents{TypeName: typeName}
		for _, tr := range tt.trackers {
			if obj := tr.publisher.Get(); obj != nil {
				contents.Objects = append(contents.Objects, obj)
			}
		}
		snap.Tables = append(snap.Tables, contents)
	}

	return snap, true
}

// MarkTypeSetSaved records the outcome of a completed save for a
// type-set's scheduler loop (spec §4.4 "record success seq ... or log the
// failure").
func (t *Table) MarkTypeSetSaved(name string, succeededSeq uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	binding, ok := t.typeSets[name]
	if !ok {
		return
	}

	if err == nil {
		binding.lastSucceededSaveSeqNum = succeededSeq
	}

	t.checkPendingSyncsLocked()
}

// LoadTypeSet installs reloaded trackers for one type-set at part start
// (spec §4.4 "Load"). objects is keyed by type, mirroring the persisted
// FileContents shape; link resolution happens in a second pass via
// ResolveLoadedLinks once every type-set has been loaded.
func (t *Table) LoadTypeSet(name string, byType map[string][]*Object) error {
	t.mu.Lock()
	binding, ok := t.typeSets[name]
	t.mu.Unlock()

	if !ok {
		binding = t.ensureTypeSetLocked(name)
	}

	for typeName, objs := range byType {
		tt := t.ensureTypeTable(binding, typeName)

		for _, o := range objs {
			tr := newTracker(o.ID)
			tr.flags = o.Flags &^ FlagIsFinal
			tr.attrs = o.Attributes.Clone()
			tr.typeSet = binding

			for _, l := range o.LinksOut {
				tr.linksOut[l.Key] = l
			}

			tr.rebuildOut = true
			tr.rebuildIn = true
			tr.touch()

			t.index.put(tr)
			tt.trackers[tr.id.Name] = tr
		}
	}

	return nil
}

// ResolveLoadedLinks is the second load pass: once every type-set's
// objects exist in the index, forward edges are resolved against it to
// install mirror linksIn edges on targets, then every loaded tracker
// receives its initial publication directly (spec §4.4). This is the boot
// snapshot, not a transactional update, so it bypasses the executor's
// dirty-set/dispatcher path and publishes under the table lock instead.
func (t *Table) ResolveLoadedLinks() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, binding := range t.typeSets {
		for _, tt := range binding.types {
			for _, tr := range tt.trackers {
				for _, l := range tr.linksOut {
					target := t.index.get(l.ToID)
					if target == nil {
						continue
					}

					target.linksIn[inKey(tr.id.FullName(), l.Key)] = l
					target.rebuildIn = true
					target.touch()
				}
			}
		}
	}

	for _, binding := range t.typeSets {
		var adds []*Object

		for _, tt := range binding.types {
			for _, tr := range tt.trackers {
				seq := t.nextSeq()

				obj := &Object{
					ID:           tr.id,
					Flags:        tr.flags,
					Attributes:   tr.attrs.Clone(),
					LinksOut:     cloneLinks(tr.outLinksOrdered()),
					LinksIn:      cloneLinks(tr.inLinksOrdered()),
					PublishedSeq: seq,
				}

				tr.lastPublished = obj
				tr.lastPublishedSeq = seq
				tr.refSeq = seq
				tr.publisher.publish(obj)

				adds = append(adds, obj)
			}
		}

		if len(adds) > 0 {
			binding.refSet.RemoveBySeqNumsAndAdd(nil, adds)
			binding.lastPublishedSeqNum = t.nextSeq()
			binding.lastSucceededSaveSeqNum = binding.lastPublishedSeqNum
		}
	}
}

func (t *Table) ensureTypeSetLocked(name string) *typeSetBinding {
	binding := newTypeSetBinding(TypeSetConfig{Name: name})
	t.mu.Lock()
	t.typeSets[name] = binding
	t.typeSetOrder = append(t.typeSetOrder, name)
	t.mu.Unlock()

	return binding
}

func (t *Table) ensureTypeTable(binding *typeSetBinding, typeName string) *typeTable {
	t.mu.Lock()
	defer t.mu.Unlock()

	tt, ok := binding.types[typeName]
	if !ok {
		tt = newTypeTable(typeName)
		binding.types[typeName] = tt
	}

	return tt
}
