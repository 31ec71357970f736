package objtable

import "context"

// SyncFactory is the external collaborator SyncExternal delegates to
// (spec §4.2, §6). It is a consumer-defined interface in the teacher's
// convention ("accept interfaces, return structs" — internal/sync/types.go
// ItemClient/TransferClient): objtable depends only on this narrow shape,
// and internal/external provides a concrete websocket-backed
// implementation without objtable importing it.
type SyncFactory interface {
	// Online reports whether the factory can currently service a sync
	// request.
	Online() bool

	// BeginSync starts one external sync operation and returns a channel
	// that receives a single error (nil on success) when it completes,
	// plus a cancel function the caller may invoke on timeout.
	BeginSync(ctx context.Context) (done <-chan error, cancel func())
}

// PersistKicker lets SyncPersist bypass a persistence scheduler's hold-off
// timer for a named type-set (spec §4.4: the hold-off timer "triggers (or
// on explicit SyncPersist)" a save). Same consumer-defined-interface
// convention as SyncFactory: internal/persist.Scheduler satisfies this
// without objtable importing internal/persist, since the scheduler is
// constructed after the table and wired in with Table.SetPersistKicker.
type PersistKicker interface {
	Kick(typeSetName string)
}
