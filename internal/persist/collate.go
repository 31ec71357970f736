package persist

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameCollator provides locale-aware, deterministic ordering of persisted
// objectInstanceSet entries by name (spec §4.3 "sort the remove-list
// ascending", extended here to the persisted form for round-trip-stable
// output). Grounded on the domain stack's golang.org/x/text/collate
// dependency; a plain byte-wise sort.Strings would not order non-ASCII
// instance names the way an operator reading a dump expects.
var nameCollator = collate.New(language.Und)

// sortObjectsByName orders a TypeTable's objects by collated name,
// stable so equal-keyed entries keep their relative order.
func sortObjectsByName(objs []Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		return nameCollator.CompareString(objs[i].Name, objs[j].Name) < 0
	})
}

// normalizeOrder sorts every type table's object set, called before a
// FileContents is handed to the adapter for Save so persisted output is
// deterministic across process runs.
func normalizeOrder(fc *FileContents) {
	for i := range fc.TypeTableSet {
		sortObjectsByName(fc.TypeTableSet[i].ObjectInstanceSet)
	}
}
