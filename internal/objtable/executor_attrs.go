package objtable

import "reflect"

// doSetAttributes implements spec §4.2 SetAttributes, targeting a single
// id or an id set.
func (e *executor) doSetAttributes(item *UpdateItem) string {
	p := item.SetAttributes

	if p.Attributes.values == nil {
		return rcInternal(ErrNilAttributes)
	}

	targets := p.IDSet
	if len(targets) == 0 {
		targets = []ObjectID{p.ID}
	}

	for _, id := range targets {
		tr := e.resolveTarget(id)
		if tr == nil {
			return rcObjectNotFound(id)
		}

		tr.attrs = MergeAttributes(tr.attrs, p.Attributes, p.MergeBehavior)
		e.markDirty(tr)
	}

	return ""
}

// doTestAndSetAttributes implements spec §4.2 TestAndSetAttributes:
// compares every test attribute against the working attributes by value;
// applies the set only if every test matches.
func (e *executor) doTestAndSetAttributes(item *UpdateItem) string {
	p := item.TestAndSetAttributes

	tr := e.resolveTarget(p.ID)
	if tr == nil {
		return rcObjectNotFound(p.ID)
	}

	met := true
	for _, key := range p.TestAttributes.Keys() {
		want, _ := p.TestAttributes.Get(key)
		got, ok := tr.attrs.Get(key)

		if !ok || !valuesEqual(want, got) {
			met = false
			break
		}
	}

	item.TestConditionsMet = met

	if !met {
		if p.FailIfTestConditionsNotMet {
			return rcTestMismatch()
		}

		return ""
	}

	tr.attrs = MergeAttributes(tr.attrs, p.Attributes, p.MergeBehavior)
	e.markDirty(tr)

	return ""
}

// valuesEqual compares two attribute values, treating numeric kinds as
// equal across int64/int/float64 representations so a test written as an
// int literal still matches a value stored as float64. Attributes (nested
// sets) and []any (list-valued attributes, spec §9 AppendLists) are not
// comparable with ==, so both get a dedicated comparison before the
// scalar fallback.
func valuesEqual(a, b any) bool {
	if af, aok := asFloat64(a); aok {
		if bf, bok := asFloat64(b); bok {
			return af == bf
		}
	}

	switch av := a.(type) {
	case Attributes:
		bv, ok := b.(Attributes)
		if !ok {
			return false
		}
		return attributesEqual(av, bv)

	case []any:
		bv, ok := b.([]any)
		if !ok {
			return false
		}
		return reflect.DeepEqual(av, bv)
	}

	return a == b
}

// attributesEqual compares two nested sets key by key, recursing through
// valuesEqual so a nested Attributes value inside a nested Attributes
// value still compares correctly instead of panicking on ==.
func attributesEqual(a, b Attributes) bool {
	if a.Len() != b.Len() {
		return false
	}

	for _, key := range a.Keys() {
		av, _ := a.Get(key)
		bv, ok := b.Get(key)
		if !ok || !valuesEqual(av, bv) {
			return false
		}
	}

	return true
}
