package objtable

import (
	"context"
	"time"
)

// doSyncPersist implements spec §4.2 SyncPersist: flushes publication,
// then for every applicable type-set with a pending write captures its
// current target sequence number and registers a pending-sync record. If
// a persistence scheduler is wired in, each target type-set is also
// kicked to bypass its hold-off timer immediately rather than making this
// wait sit out a full hold-off cycle (spec §4.4 "or on explicit
// SyncPersist"). The action remains pending until every target has been
// saved, or the wait times out.
func (e *executor) doSyncPersist(item *UpdateItem, a *Action) (registered bool, resultCode string) {
	p := item.SyncPersist

	e.drainAndPublish()

	targets := e.resolveApplicableTypeSets(p.ObjectType)
	if len(targets) == 0 {
		return false, ""
	}

	e.table.mu.Lock()
	capture := make(map[string]uint64, len(targets))
	for _, name := range targets {
		binding := e.table.typeSets[name]
		capture[name] = binding.lastPublishedSeqNum
	}

	ps := &pendingSync{action: a, targets: capture}
	e.table.pendingSyncs = append(e.table.pendingSyncs, ps)
	satisfied := e.table.pendingSatisfiedLocked(ps)
	e.table.mu.Unlock()

	if satisfied {
		return false, ""
	}

	if e.table.persistKicker != nil {
		for _, name := range targets {
			e.table.persistKicker.Kick(name)
		}
	}

	if p.WaitTimeLimit > 0 {
		time.AfterFunc(p.WaitTimeLimit, func() {
			e.table.timeoutPendingSync(ps, p.FailOnTimeout)
		})
	}

	return true, ""
}

// resolveApplicableTypeSets maps an optional objectType to the type-sets
// SyncPersist should target. An empty objectType targets every configured
// type-set. A non-empty, unmapped type name falls back to the default
// type-set (spec §9 Open Question (a)).
func (e *executor) resolveApplicableTypeSets(objectType string) []string {
	e.table.mu.Lock()
	defer e.table.mu.Unlock()

	if objectType == "" {
		return append([]string(nil), e.table.typeSetOrder...)
	}

	for _, name := range e.table.typeSetOrder {
		if e.table.typeSets[name].hasType(objectType) {
			return []string{name}
		}
	}

	if e.table.defaultTypeSet != "" {
		return []string{e.table.defaultTypeSet}
	}

	return nil
}

// doSyncExternal implements spec §4.2 SyncExternal. Unlike SyncPersist
// this blocks the dispatcher goroutine for up to WaitTimeLimit, per spec
// §5's suspension-point rule.
func (e *executor) doSyncExternal(item *UpdateItem, a *Action) (registered bool, resultCode string) {
	p := item.SyncExternal

	if p.SyncPublicationFirst {
		e.drainAndPublish()
	}

	factory := e.table.externalFactory
	if factory == nil {
		if p.FailIfNoFactory {
			return false, rcInternal(ErrNoFactory)
		}
		return false, ""
	}

	if !factory.Online() {
		if p.FailIfFactoryOffline {
			return false, rcInternal(ErrFactoryOffline)
		}
		return false, ""
	}

	ctx := context.Background()
	if p.WaitTimeLimit > 0 {
		var cancelCtx context.CancelFunc
		ctx, cancelCtx = context.WithTimeout(ctx, p.WaitTimeLimit)
		defer cancelCtx()
	}

	done, cancel := factory.BeginSync(ctx)

	select {
	case err := <-done:
		if err != nil {
			return false, rcInternal(err)
		}
		return false, ""
	case <-ctx.Done():
		if p.RequestCancelOnTimeout && cancel != nil {
			cancel()
		}
		if p.FailOnTimeout {
			return false, rcInternal(ErrSyncTimeout)
		}
		return false, ""
	}
}
