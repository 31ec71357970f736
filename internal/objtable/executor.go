package objtable

// executor applies one Action's items in submission order against the
// table (spec §4.2). It is only ever driven by the dispatcher goroutine,
// so its dirty set needs no locking. Grounded on the teacher's Executor
// (internal/sync/executor.go): a struct-of-dependencies runner whose
// entry point walks an ordered list of operations, skipping the rest once
// one fails.
type executor struct {
	table *Table
	dirty map[*tracker]struct{}
}

func newExecutor(t *Table) *executor {
	return &executor{table: t, dirty: make(map[*tracker]struct{})}
}

// markDirty touches tr and adds it to the dirty set the next publication
// drain will process.
func (e *executor) markDirty(tr *tracker) {
	tr.touch()
	e.dirty[tr] = struct{}{}
}

// performUpdates is PerformUpdates from spec §4.2: the executor's single
// entry point.
func (e *executor) performUpdates(a *Action) {
	if !e.table.Online() {
		a.complete(rcNotOnline())
		return
	}

	ec := ""
	registeredPending := false

	for _, item := range a.items {
		if ec != "" {
			break
		}

		switch item.Kind {
		case ItemAddObject:
			ec = e.doAddObject(item)
		case ItemRemoveObject:
			ec = e.doRemoveObject(item)
		case ItemAddLink:
			ec = e.doAddLink(item)
		case ItemRemoveLink:
			ec = e.doRemoveLink(item)
		case ItemSetAttributes:
			ec = e.doSetAttributes(item)
		case ItemTestAndSetAttributes:
			ec = e.doTestAndSetAttributes(item)
		case ItemSyncPublication:
			e.drainAndPublish()
		case ItemSyncPersist:
			pending, syncEC := e.doSyncPersist(item, a)
			if syncEC != "" {
				ec = syncEC
			} else if pending {
				registeredPending = true
			}
		case ItemSyncExternal:
			pending, syncEC := e.doSyncExternal(item, a)
			if syncEC != "" {
				ec = syncEC
			} else if pending {
				registeredPending = true
			}
		}

		if ec != "" {
			item.ResultCode = ec
		}
	}

	// "On every call the dirty set is drained and sequence-number summary
	// is republished" regardless of outcome.
	e.drainAndPublish()

	switch {
	case ec != "":
		a.complete(ec)
	case !registeredPending:
		a.complete("")
	default:
		a.markPending()
	}
}

// resolveTarget looks up the tracker for id, returning nil if absent.
func (e *executor) resolveTarget(id ObjectID) *tracker {
	return e.table.index.get(id)
}
