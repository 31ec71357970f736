package objtable

import "testing"

func TestObjectIDEqual(t *testing.T) {
	a := NewObjectID("SubstLoc", "LP1")
	b := NewObjectIDWithUUID("SubstLoc", "LP1", "uuid-1")
	c := NewObjectIDWithUUID("SubstLoc", "LP1", "uuid-2")
	d := NewObjectID("SubstLoc", "LP2")

	if !a.Equal(b) {
		t.Fatal("a present-UUID-on-one-side should still equal b")
	}
	if b.Equal(c) {
		t.Fatal("distinct UUIDs on both sides must not be equal")
	}
	if a.Equal(d) {
		t.Fatal("distinct names must not be equal")
	}
}

func TestObjectIDValidity(t *testing.T) {
	if (ObjectID{}).IsValid() {
		t.Fatal("zero ObjectID must not be valid")
	}
	if !(ObjectID{}).IsEmpty() {
		t.Fatal("zero ObjectID must be empty")
	}
	if !NewObjectID("SubstLoc", "LP1").IsValid() {
		t.Fatal("type+name ObjectID must be valid")
	}
}

func TestObjectIDFullName(t *testing.T) {
	id := NewObjectID("SubstLoc", "LP1")
	if got := id.FullName(); got != "SubstLoc:LP1" {
		t.Fatalf("FullName() = %q, want %q", got, "SubstLoc:LP1")
	}

	withUUID := NewObjectIDWithUUID("SubstLoc", "LP1", "abc")
	if got := withUUID.String(); got != "SubstLoc:LP1#abc" {
		t.Fatalf("String() = %q, want %q", got, "SubstLoc:LP1#abc")
	}
}
