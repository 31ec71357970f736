// Package persist implements the persistence scheduler and a reference
// storage adapter for the object-graph table engine (spec §4.4). The
// production file-ring format is explicitly out of scope for this engine
// (spec §1); StorageAdapter is the only contract a real adapter must
// satisfy, and sqliteadapter.go is this package's round-trip-tested
// reference implementation of it.
package persist

import "github.com/mosaicautomation/objtable/internal/objtable"

// Object is the persisted form of objtable.Object (spec §6 "Persisted
// format (logical)"). linksIn is never populated on disk; it is
// rebuilt from every type table's linksOut during Load's second pass.
type Object struct {
	Name       string
	UUID       string
	Type       string
	Flags      uint8
	Attributes map[string]any
	LinksOut   []Link
}

// Link is the persisted form of objtable.Link. It carries only the target
// and the key; the source is implicit from the owning Object. There are no
// FromName/FromType fields and no separate remote/wire serialization
// variant of this type.
type Link struct {
	ToType string
	ToName string
	ToUUID string
	Key    string
}

// TypeTable is one object type's persisted object set.
type TypeTable struct {
	Type              string
	ObjectInstanceSet []Object
}

// FileContents is the full persisted unit for one type-set: one logical
// file, one row in the reference SQLite adapter (spec §6).
type FileContents struct {
	PersistedVersionSeq uint64
	TypeTableSet        []TypeTable
}

// FromSnapshot converts the engine's generic bridge type into the
// persisted wire shape.
func FromSnapshot(snap objtable.TypeSetSnapshot) FileContents {
	fc := FileContents{PersistedVersionSeq: snap.LastPublishedSeqNum}

	for _, tbl := range snap.Tables {
		tt := TypeTable{Type: tbl.TypeName}

		for _, obj := range tbl.Objects {
			tt.ObjectInstanceSet = append(tt.ObjectInstanceSet, objectFromEngine(obj))
		}

		fc.TypeTableSet = append(fc.TypeTableSet, tt)
	}

	return fc
}

func objectFromEngine(o *objtable.Object) Object {
	attrs := wireAttributes(o.Attributes)

	links := make([]Link, 0, len(o.LinksOut))
	for _, l := range o.LinksOut {
		links = append(links, Link{ToType: l.ToID.Type, ToName: l.ToID.Name, ToUUID: l.ToID.UUID, Key: l.Key})
	}

	return Object{
		Name:       o.ID.Name,
		UUID:       o.ID.UUID,
		Type:       o.ID.Type,
		Flags:      uint8(o.Flags),
		Attributes: attrs,
		LinksOut:   links,
	}
}

// wireAttributes converts an engine Attributes value into the plain
// map[string]any that encoding/json can actually see. Attributes has only
// unexported fields, so boxing it directly into a map[string]any and
// marshaling would silently encode it as {} (spec §6 round-trip); nested
// sets and list-valued attributes are walked recursively instead.
func wireAttributes(a objtable.Attributes) map[string]any {
	out := make(map[string]any, a.Len())
	for _, k := range a.Keys() {
		v, _ := a.Get(k)
		out[k] = wireValue(v)
	}

	return out
}

func wireValue(v any) any {
	switch t := v.(type) {
	case objtable.Attributes:
		return wireAttributes(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = wireValue(e)
		}
		return out
	default:
		return v
	}
}

// engineAttributes is wireAttributes' inverse: a nested JSON object decodes
// to map[string]interface{}, which is rehydrated back into an Attributes
// value rather than left as an opaque map (spec §4.4 Load "Attributes are
// rehydrated").
func engineAttributes(m map[string]any) objtable.Attributes {
	attrs := objtable.NewAttributes()
	for k, v := range m {
		attrs.Set(k, engineValue(v))
	}

	return attrs
}

func engineValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return engineAttributes(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = engineValue(e)
		}
		return out
	default:
		return v
	}
}

// ToLoadMap converts a loaded FileContents back into the
// map[type][]*objtable.Object shape objtable.Table.LoadTypeSet expects.
func ToLoadMap(fc FileContents) map[string][]*objtable.Object {
	out := make(map[string][]*objtable.Object, len(fc.TypeTableSet))

	for _, tt := range fc.TypeTableSet {
		objs := make([]*objtable.Object, 0, len(tt.ObjectInstanceSet))

		for _, o := range tt.ObjectInstanceSet {
			id := objtable.NewObjectIDWithUUID(o.Type, o.Name, o.UUID)

			attrs := engineAttributes(o.Attributes)

			links := make([]objtable.Link, 0, len(o.LinksOut))
			for _, l := range o.LinksOut {
				links = append(links, objtable.NewLink(id, objtable.NewObjectIDWithUUID(l.ToType, l.ToName, l.ToUUID), l.Key))
			}

			objs = append(objs, &objtable.Object{
				ID:         id,
				Flags:      objtable.Flags(o.Flags),
				Attributes: attrs,
				LinksOut:   links,
			})
		}

		out[tt.Type] = objs
	}

	return out
}
