package objtable

import "sort"

// ReferenceSet is an externally observable, size-bounded sequence into
// which the engine emits atomic remove+add deltas (GLOSSARY). One
// ReferenceSet backs a TypeSet's live mirror; a second, append-only
// instance backs its optional history set (spec §4.3).
type ReferenceSet struct {
	items    []refItem
	bySeq    map[uint64]int // seq -> index into items, for RemoveBySeqNums
	nextSeq  uint64
	history  bool
	capacity int // 0 = unbounded
}

type refItem struct {
	seq uint64
	obj *Object
}

// NewReferenceSet returns a live (remove-capable) reference set.
func NewReferenceSet(capacity int) *ReferenceSet {
	return &ReferenceSet{bySeq: make(map[uint64]int), capacity: capacity}
}

// NewHistoryReferenceSet returns an append-only history set: it never
// removes entries in response to RemoveBySeqNums (spec: "Reference-history
// sets receive an append of the new items (no removals)").
func NewHistoryReferenceSet(capacity int) *ReferenceSet {
	return &ReferenceSet{bySeq: make(map[uint64]int), capacity: capacity, history: true}
}

// RemoveBySeqNumsAndAdd performs one atomic remove-then-add delta and
// returns the sequence number assigned to the first added item (0 if
// nothing was added). removeSeqs must already be sorted ascending by the
// caller (spec §4.3 "sort the remove-list ascending").
func (rs *ReferenceSet) RemoveBySeqNumsAndAdd(removeSeqs []uint64, adds []*Object) uint64 {
	if !rs.history {
		rs.removeBySeqNums(removeSeqs)
	}

	firstAdded := uint64(0)

	for i, obj := range adds {
		seq := obj.PublishedSeq
		rs.items = append(rs.items, refItem{seq: seq, obj: obj})
		rs.bySeq[seq] = len(rs.items) - 1

		if i == 0 {
			firstAdded = seq
		}
	}

	if rs.capacity > 0 {
		rs.trimToCapacity()
	}

	return firstAdded
}

func (rs *ReferenceSet) removeBySeqNums(seqs []uint64) {
	if len(seqs) == 0 {
		return
	}

	remove := make(map[uint64]struct{}, len(seqs))
	for _, s := range seqs {
		remove[s] = struct{}{}
	}

	kept := rs.items[:0]
	for _, it := range rs.items {
		if _, drop := remove[it.seq]; drop {
			delete(rs.bySeq, it.seq)
			continue
		}
		kept = append(kept, it)
	}

	rs.items = kept
	rs.reindex()
}

func (rs *ReferenceSet) reindex() {
	for i, it := range rs.items {
		rs.bySeq[it.seq] = i
	}
}

// trimToCapacity drops the oldest (lowest-seq) entries once the set
// exceeds its configured bound. History sets are typically unbounded in
// practice but honor capacity if one is configured.
func (rs *ReferenceSet) trimToCapacity() {
	if len(rs.items) <= rs.capacity {
		return
	}

	sort.Slice(rs.items, func(i, j int) bool { return rs.items[i].seq < rs.items[j].seq })

	drop := len(rs.items) - rs.capacity
	for _, it := range rs.items[:drop] {
		delete(rs.bySeq, it.seq)
	}

	rs.items = append([]refItem(nil), rs.items[drop:]...)
	rs.reindex()
}

// Snapshot returns the current items ordered by object name (ascending,
// plain byte-wise comparison).
func (rs *ReferenceSet) Snapshot() []*Object {
	out := make([]*Object, len(rs.items))
	for i, it := range rs.items {
		out[i] = it.obj
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID.Name < out[j].ID.Name })

	return out
}

// Len returns the current item count.
func (rs *ReferenceSet) Len() int {
	return len(rs.items)
}

// sortAscending is a small helper used by the publication pass to satisfy
// "sort the remove-list ascending" before calling RemoveBySeqNumsAndAdd.
func sortAscending(seqs []uint64) []uint64 {
	out := append([]uint64(nil), seqs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
