package objtable

import (
	"errors"
	"fmt"
)

// Sentinel errors for well-known conditions, in the teacher's convention
// of typed internal errors backing a string result code rendered at the
// Action boundary (spec §7 category 1/2).
var (
	ErrNilAction        = errors.New("objtable: action is nil")
	ErrActionNotStarted = errors.New("objtable: action has not been started")
	ErrQueueDisabled    = errors.New("objtable: queue disabled")
	ErrQueueFull        = errors.New("objtable: queue full")
	ErrNotOnline        = errors.New("objtable: base state is not online")
	ErrNilAttributes    = errors.New("objtable: attributes is nil")
	ErrObjectExists     = errors.New("objtable: object already exists")
	ErrObjectNotFound   = errors.New("objtable: object not found")
	ErrLinkKeyInUse     = errors.New("objtable: link key already in use")
	ErrLinkNotFound     = errors.New("objtable: link not found")
	ErrSourceNotFound   = errors.New("objtable: source object not found for link")
	ErrTargetNotFound   = errors.New("objtable: target object not found for link")
	ErrTestMismatch     = errors.New("objtable: test conditions not met")
	ErrNoFactory        = errors.New("objtable: no external sync factory configured")
	ErrFactoryOffline   = errors.New("objtable: external sync factory is offline")
	ErrSyncTimeout      = errors.New("objtable: sync wait timed out")
	ErrInvalidObjectID  = errors.New("objtable: invalid object id")
)

// resultCode renders the standardized string result codes named in
// spec §6. These strings cross the client API; err is still wrapped with
// %w internally wherever it is logged.
func resultCode(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func rcObjectAlreadyExists(id ObjectID) string {
	return resultCode("Cannot add object '%s': object already exists", id)
}

func rcObjectNotFound(id ObjectID) string {
	return resultCode("No object found for ObjectID '%s'", id)
}

func rcLinkKeyInUse(key string, existing Link) string {
	return resultCode("Link key '%s' already in use as '%s'", key, existing)
}

func rcSourceNotFound(l Link) string {
	return resultCode("Source/From object not found for link '%s'", l)
}

func rcTargetNotFound(l Link) string {
	return resultCode("Target/To object not found for link '%s'", l)
}

func rcNotOnline() string {
	return "BaseState is not Online, cannot perform Update"
}

func rcInternal(err error) string {
	return resultCode("Internal: %s", err)
}

func rcEnqueueFailed(reason string) string {
	return resultCode("Enqueue.Failed.%s", reason)
}

func rcDisableQueueCanceled() string {
	return "DisableQueue.ActionHasBeenCanceled"
}

func rcCanceledWhileQueued() string {
	return "Action.CanceledWhileQueued"
}

func rcTestMismatch() string {
	return "TestAndSetAttributes: test conditions not met"
}

// String implements fmt.Stringer for Link so result-code formatting reads
// "from--key-->to".
func (l Link) String() string {
	return fmt.Sprintf("%s--%s-->%s", l.FromID, l.Key, l.ToID)
}
