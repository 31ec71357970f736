package objtable

// pendingSatisfiedLocked reports whether every target named in ps has
// already reached its captured sequence number. Must be called with
// t.mu held.
func (t *Table) pendingSatisfiedLocked(ps *pendingSync) bool {
	for name, target := range ps.targets {
		binding, ok := t.typeSets[name]
		if !ok || binding.lastSucceededSaveSeqNum < target {
			return false
		}
	}

	return true
}

// checkPendingSyncsLocked scans pendingSyncs, completing and removing any
// whose targets have all been satisfied. Must be called with t.mu held.
func (t *Table) checkPendingSyncsLocked() {
	remaining := t.pendingSyncs[:0]

	for _, ps := range t.pendingSyncs {
		if ps.action.State().isTerminal() {
			continue
		}

		if t.pendingSatisfiedLocked(ps) {
			ps.action.complete("")
			continue
		}

		remaining = append(remaining, ps)
	}

	t.pendingSyncs = remaining
}

// timeoutPendingSync fires when a SyncPersist's WaitTimeLimit elapses. If
// the wait already succeeded in the meantime, this is a no-op (the action
// is already terminal).
func (t *Table) timeoutPendingSync(ps *pendingSync, failOnTimeout bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ps.action.State().isTerminal() {
		return
	}

	for i, other := range t.pendingSyncs {
		if other == ps {
			t.pendingSyncs = append(t.pendingSyncs[:i], t.pendingSyncs[i+1:]...)
			break
		}
	}

	if failOnTimeout {
		ps.action.complete(rcInternal(ErrSyncTimeout))
		return
	}

	ps.action.complete("")
}
