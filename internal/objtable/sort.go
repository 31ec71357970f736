package objtable

import "sort"

// sortLinks orders a link slice by (from full name, key, to full name) for
// deterministic rebuild output. Plain lexical sort is sufficient here; the
// collation-aware sort lives in internal/persist, where persisted
// objectInstanceSet entries are ordered by collated name for round-trip
// determinism.
func sortLinks(links []Link) {
	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.FromID.FullName() != b.FromID.FullName() {
			return a.FromID.FullName() < b.FromID.FullName()
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.ToID.FullName() < b.ToID.FullName()
	})
}
