package objtable

// Attributes is an ordered string-to-value mapping. Order is preserved so
// that persisted and remote-serialized forms are deterministic; lookup is
// still O(1) via the backing map.
//
// Recognized value kinds mirror the data model: bool, int64, float64,
// string, and nested Attributes (a "nested set"). Callers may store other
// concrete types too; the merge operator only special-cases the kinds it
// must (numeric upcast, list append).
type Attributes struct {
	keys   []string
	values map[string]any
}

// NewAttributes returns an empty Attributes ready for use.
func NewAttributes() Attributes {
	return Attributes{values: make(map[string]any)}
}

// AttributesFromMap builds an Attributes from a plain map, ordering keys
// by first-seen iteration (callers that need a stable order should build
// incrementally with Set instead).
func AttributesFromMap(m map[string]any) Attributes {
	a := NewAttributes()
	for k, v := range m {
		a.Set(k, v)
	}

	return a
}

// Len returns the number of entries.
func (a Attributes) Len() int {
	return len(a.keys)
}

// Get returns the value for key and whether it was present.
func (a Attributes) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the ordered key list. The caller must not mutate it.
func (a Attributes) Keys() []string {
	return a.keys
}

// Set inserts or overwrites key, appending it to the order if new.
func (a *Attributes) Set(key string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}

	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}

	a.values[key] = value
}

// Delete removes key if present.
func (a *Attributes) Delete(key string) {
	if _, exists := a.values[key]; !exists {
		return
	}

	delete(a.values, key)

	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep-enough copy: the key order and top-level map are
// copied; nested Attributes values are cloned recursively. Other nested
// reference types (slices, maps) are not deep-copied, matching the
// teacher's convention of cloning only what the domain mutates in place.
func (a Attributes) Clone() Attributes {
	out := Attributes{
		keys:   append([]string(nil), a.keys...),
		values: make(map[string]any, len(a.values)),
	}

	for k, v := range a.values {
		if nested, ok := v.(Attributes); ok {
			out.values[k] = nested.Clone()
		} else {
			out.values[k] = v
		}
	}

	return out
}

// MergeBehavior enumerates the attribute-merge operator's recognized
// configurations (spec §9 "Mergeable attribute semantics").
type MergeBehavior int

const (
	// MergeNone ignores the incoming attributes entirely.
	MergeNone MergeBehavior = iota
	// MergeAddAndUpdate adds keys absent from dst and overwrites keys
	// already present with the incoming value.
	MergeAddAndUpdate
	// MergeAddNewItems adds keys absent from dst; existing keys are left
	// untouched.
	MergeAddNewItems
	// MergeSum adds numeric values of shared keys together (upcasting to
	// float64 when the two sides disagree on int64 vs float64); behaves
	// like MergeAddAndUpdate for keys present on only one side.
	MergeSum
	// MergeAppendLists appends the incoming slice to dst's slice for
	// shared keys whose values are both []any; otherwise behaves like
	// MergeAddAndUpdate.
	MergeAppendLists
	// MergeRemoveNull deletes any dst key whose incoming value is nil;
	// all other incoming keys are added/updated as MergeAddAndUpdate.
	MergeRemoveNull
	// MergeRemoveEmpty deletes any dst key whose incoming value is the
	// zero value of its kind (empty string, empty slice, nil, zero
	// number); all other incoming keys are added/updated as
	// MergeAddAndUpdate.
	MergeRemoveEmpty
	// MergeEnableUpcast behaves like MergeAddAndUpdate (the incoming
	// value replaces the stored one, it is never summed), except that when
	// both sides are numeric the incoming value is stored as float64
	// unless it is an int64 and the stored value is not a float64.
	MergeEnableUpcast
)

// MergeAttributes applies src into dst per behavior and returns the
// resulting Attributes. dst is not mutated; the returned value is a new
// Attributes reflecting dst's order with src's updates applied in place
// of rebuilding order from scratch, so unaffected keys keep their
// position.
func MergeAttributes(dst, src Attributes, behavior MergeBehavior) Attributes {
	out := dst.Clone()

	if behavior == MergeNone {
		return out
	}

	for _, key := range src.keys {
		srcVal := src.values[key]
		dstVal, exists := out.values[key]

		switch behavior {
		case MergeAddNewItems:
			if !exists {
				out.Set(key, srcVal)
			}

		case MergeSum:
			if exists {
				if summed, ok := sumNumeric(dstVal, srcVal); ok {
					out.Set(key, summed)
					continue
				}
			}
			out.Set(key, srcVal)

		case MergeAppendLists:
			if exists {
				if dstList, ok := dstVal.([]any); ok {
					if srcList, ok := srcVal.([]any); ok {
						out.Set(key, append(append([]any(nil), dstList...), srcList...))
						continue
					}
				}
			}
			out.Set(key, srcVal)

		case MergeRemoveNull:
			if srcVal == nil {
				out.Delete(key)
				continue
			}
			out.Set(key, srcVal)

		case MergeRemoveEmpty:
			if isEmptyValue(srcVal) {
				out.Delete(key)
				continue
			}
			out.Set(key, srcVal)

		case MergeEnableUpcast:
			if exists {
				if summed, ok := upcastNumeric(dstVal, srcVal); ok {
					out.Set(key, summed)
					continue
				}
			}
			out.Set(key, srcVal)

		case MergeAddAndUpdate:
			fallthrough
		default:
			out.Set(key, srcVal)
		}
	}

	return out
}

// sumNumeric adds two values if both are numeric, upcasting to float64
// when their concrete types disagree. Returns ok=false for non-numeric
// input, leaving the caller to fall back to overwrite semantics.
func sumNumeric(a, b any) (any, bool) {
	af, aok := asFloat64(a)
	bf, bok := asFloat64(b)

	if !aok || !bok {
		return nil, false
	}

	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt {
		return ai + bi, true
	}

	return af + bf, true
}

// upcastNumeric returns the value b to store over a when both are
// numeric: b as an int64 when b is an int64 and a is not a float64,
// otherwise b converted to float64. It replaces, it does not sum.
// Returns ok=false when either side is not numeric.
func upcastNumeric(a, b any) (any, bool) {
	_, aIsNum := asFloat64(a)
	bf, bIsNum := asFloat64(b)

	if !aIsNum || !bIsNum {
		return nil, false
	}

	if _, aIsFloat := a.(float64); aIsFloat {
		return bf, true
	}

	if bi, bIsInt := b.(int64); bIsInt {
		return bi, true
	}

	return bf, true
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case int64:
		return t == 0
	case int:
		return t == 0
	case float64:
		return t == 0
	case bool:
		return !t
	default:
		return false
	}
}
