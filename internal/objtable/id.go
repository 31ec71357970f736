// Package objtable implements the in-memory, transactional object-graph
// table engine: typed objects linked by named directional edges, mutated
// through a single-writer action queue, and published to observers with
// monotonic sequence numbers.
package objtable

import (
	"strings"

	"github.com/google/uuid"
)

// emptyFullName is the fullName of the zero ObjectID.
const emptyFullName = ""

// ObjectID is an immutable triple identifying an object: the type name, the
// instance name, and an optional UUID. Two IDs are equal when their types
// and names match and, if both carry a UUID, the UUIDs also match.
//
// The zero value (ObjectID{}) is the "empty" ID: all fields empty.
type ObjectID struct {
	Type string
	Name string
	UUID string
}

// NewObjectID builds an ObjectID from a type and name, with no UUID.
func NewObjectID(objType, name string) ObjectID {
	return ObjectID{Type: objType, Name: name}
}

// NewObjectIDWithUUID builds an ObjectID carrying an explicit UUID.
func NewObjectIDWithUUID(objType, name, uuidStr string) ObjectID {
	return ObjectID{Type: objType, Name: name, UUID: uuidStr}
}

// IsEmpty reports whether this is the zero ObjectID (all fields empty).
func (id ObjectID) IsEmpty() bool {
	return id.Type == "" && id.Name == "" && id.UUID == ""
}

// IsValid reports whether the ID can be used to create or look up an
// object: both Type and Name must be non-empty.
func (id ObjectID) IsValid() bool {
	return id.Type != "" && id.Name != ""
}

// FullName returns the derived "type:name" composite key used for index
// lookups and logging. Mirrors the teacher's ItemKey.String() convention for
// composite identifiers, but the full name (not the UUID) is the primary
// lookup key in this engine — UUIDs are a secondary index.
func (id ObjectID) FullName() string {
	if id.Type == "" && id.Name == "" {
		return emptyFullName
	}

	var b strings.Builder

	b.Grow(len(id.Type) + len(id.Name) + 1)
	b.WriteString(id.Type)
	b.WriteByte(':')
	b.WriteString(id.Name)

	return b.String()
}

// String implements fmt.Stringer, rendering the ID for logs and error
// messages. Includes the UUID when present, matching the "ObjectID '<id>'"
// format used by the standardized result codes in spec §6.
func (id ObjectID) String() string {
	if id.UUID == "" {
		return id.FullName()
	}

	return id.FullName() + "#" + id.UUID
}

// Equal implements the equality rule from the data model: types and names
// must match; if both UUIDs are present they must also match. A present
// UUID on only one side does not prevent equality — it is a secondary key,
// not a required component of identity.
func (id ObjectID) Equal(other ObjectID) bool {
	if id.Type != other.Type || id.Name != other.Name {
		return false
	}

	if id.UUID != "" && other.UUID != "" && id.UUID != other.UUID {
		return false
	}

	return true
}

// NewUUID generates a fresh random UUID string, a thin wrapper so callers
// never import google/uuid directly. AddObject does not call it: a tracker
// gets a UUID only when the client's ObjectID carries one.
func NewUUID() string {
	return uuid.NewString()
}
