package objtable

// typeTable holds every tracker of one object type.
type typeTable struct {
	typeName string
	trackers map[string]*tracker // keyed by object name
}

func newTypeTable(typeName string) *typeTable {
	return &typeTable{typeName: typeName, trackers: make(map[string]*tracker)}
}

// TypeSetConfig describes a configured group of types that persist
// together and publish together into the same reference set (spec §3
// "TypeSet").
type TypeSetConfig struct {
	Name         string
	Types        []string
	Default      bool
	ReferenceCap int  // 0 = unbounded
	History      bool // whether to also maintain a history set
	HistoryCap   int
}

// typeSetBinding is the runtime counterpart of TypeSetConfig: the live
// reference/history sets, the member type tables, and dirty-tracking state
// consumed by the persistence scheduler (spec §4.4).
type typeSetBinding struct {
	cfg TypeSetConfig

	types map[string]*typeTable

	refSet     *ReferenceSet
	historySet *ReferenceSet

	lastPublishedSeqNum   uint64
	lastSucceededSaveSeqNum uint64
}

func newTypeSetBinding(cfg TypeSetConfig) *typeSetBinding {
	b := &typeSetBinding{
		cfg:    cfg,
		types:  make(map[string]*typeTable),
		refSet: NewReferenceSet(cfg.ReferenceCap),
	}

	if cfg.History {
		b.historySet = NewHistoryReferenceSet(cfg.HistoryCap)
	}

	for _, t := range cfg.Types {
		b.types[t] = newTypeTable(t)
	}

	return b
}

// hasType reports whether typeName is a member of this type-set.
func (b *typeSetBinding) hasType(typeName string) bool {
	_, ok := b.types[typeName]
	return ok
}

// dirty reports whether this type-set has published content not yet
// reflected in the last successful save (spec §4.4 persist state machine).
func (b *typeSetBinding) dirty() bool {
	return b.lastPublishedSeqNum != b.lastSucceededSaveSeqNum
}
