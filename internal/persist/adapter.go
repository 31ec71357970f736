package persist

import "context"

// StorageAdapter is the collaborator interface a type-set's persistence
// is built on (spec §1 "their interfaces only are specified"; spec §6
// "Persisted format"). The production file-ring adapter (file rotation,
// load/save against a rotating set of flat files) is out of scope; this
// package's sqliteadapter.go is the reference implementation used by the
// scheduler and its tests.
type StorageAdapter interface {
	// Load reads the adapter's current persisted content for one
	// type-set. Called once per type-set at part start.
	Load(ctx context.Context, typeSetName string) (FileContents, error)

	// Save durably writes content for typeSetName. Called from the
	// scheduler's hold-off timer, Kick and Stop paths; calls for one
	// type-set never overlap. May block on I/O.
	Save(ctx context.Context, typeSetName string, content FileContents) error
}
