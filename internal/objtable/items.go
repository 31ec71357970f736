package objtable

import "time"

// ItemKind tags which variant of update item a UpdateItem carries. Modeled
// as a tagged variant per spec §9 ("Dynamic dispatch over update items —
// model as a tagged variant; executor is a single match"): the executor
// dispatches on Kind with a single switch (executor.go).
type ItemKind int

const (
	ItemAddObject ItemKind = iota
	ItemRemoveObject
	ItemAddLink
	ItemRemoveLink
	ItemSetAttributes
	ItemTestAndSetAttributes
	ItemSyncPublication
	ItemSyncPersist
	ItemSyncExternal
)

// AddObjectParams configures an AddObject item (spec §4.2, §6).
type AddObjectParams struct {
	ID            ObjectID
	Attributes    Attributes
	Flags         Flags
	IfNeeded      bool
	MergeBehavior MergeBehavior
}

// RemoveObjectParams configures a RemoveObject item. LinkedRemovalFilter,
// when non-nil, is consulted for each neighbor reached through a matching
// linksOut edge to decide whether the cascade continues through it.
type RemoveObjectParams struct {
	ID                  ObjectID
	LinkedRemovalFilter func(Link) bool
}

// AddLinkParams configures an AddLink item.
type AddLinkParams struct {
	Link                Link
	AutoUnlinkFromPrior bool
	IfNeeded            bool
}

// RemoveLinkParams configures a RemoveLink item: an exact match on
// (from, key, to) is required.
type RemoveLinkParams struct {
	Link Link
}

// SetAttributesParams configures a SetAttributes item. Exactly one of ID
// or IDSet should be populated; IDSet targets every matching id.
type SetAttributesParams struct {
	ID            ObjectID
	IDSet         []ObjectID
	Attributes    Attributes
	MergeBehavior MergeBehavior
}

// TestAndSetAttributesParams configures a TestAndSetAttributes item.
type TestAndSetAttributesParams struct {
	ID                        ObjectID
	TestAttributes            Attributes
	Attributes                Attributes
	MergeBehavior             MergeBehavior
	FailIfTestConditionsNotMet bool
}

// SyncPersistParams configures a SyncPersist item.
type SyncPersistParams struct {
	ObjectType      string // empty = all applicable type-sets
	WaitTimeLimit   time.Duration
	FailOnTimeout   bool
}

// SyncExternalParams configures a SyncExternal item.
type SyncExternalParams struct {
	SyncPublicationFirst   bool
	WaitTimeLimit          time.Duration
	FailOnTimeout          bool
	FailIfFactoryOffline   bool
	FailIfNoFactory        bool
	RequestCancelOnTimeout bool
}

// UpdateItem is one entry in an Update's item list plus the out-parameters
// the executor fills in while processing it.
type UpdateItem struct {
	Kind ItemKind

	AddObject             *AddObjectParams
	RemoveObject          *RemoveObjectParams
	AddLink               *AddLinkParams
	RemoveLink            *RemoveLinkParams
	SetAttributes         *SetAttributesParams
	TestAndSetAttributes  *TestAndSetAttributesParams
	SyncPersist           *SyncPersistParams
	SyncExternal          *SyncExternalParams

	// Out-parameters, populated by the executor.
	ResultCode        string
	Publisher         *Publisher // AddObject's publisher out-parameter
	TestConditionsMet bool
}

// NewAddObject builds an AddObject item.
func NewAddObject(id ObjectID, attrs Attributes, flags Flags, ifNeeded bool, merge MergeBehavior) *UpdateItem {
	return &UpdateItem{Kind: ItemAddObject, AddObject: &AddObjectParams{
		ID: id, Attributes: attrs, Flags: flags, IfNeeded: ifNeeded, MergeBehavior: merge,
	}}
}

// NewRemoveObject builds a RemoveObject item.
func NewRemoveObject(id ObjectID, filter func(Link) bool) *UpdateItem {
	return &UpdateItem{Kind: ItemRemoveObject, RemoveObject: &RemoveObjectParams{ID: id, LinkedRemovalFilter: filter}}
}

// NewAddLink builds an AddLink item.
func NewAddLink(link Link, autoUnlinkFromPrior, ifNeeded bool) *UpdateItem {
	return &UpdateItem{Kind: ItemAddLink, AddLink: &AddLinkParams{
		Link: link, AutoUnlinkFromPrior: autoUnlinkFromPrior, IfNeeded: ifNeeded,
	}}
}

// NewRemoveLink builds a RemoveLink item.
func NewRemoveLink(link Link) *UpdateItem {
	return &UpdateItem{Kind: ItemRemoveLink, RemoveLink: &RemoveLinkParams{Link: link}}
}

// NewSetAttributes builds a SetAttributes item targeting a single id.
func NewSetAttributes(id ObjectID, attrs Attributes, merge MergeBehavior) *UpdateItem {
	return &UpdateItem{Kind: ItemSetAttributes, SetAttributes: &SetAttributesParams{
		ID: id, Attributes: attrs, MergeBehavior: merge,
	}}
}

// NewSetAttributesForSet builds a SetAttributes item targeting an id set.
func NewSetAttributesForSet(ids []ObjectID, attrs Attributes, merge MergeBehavior) *UpdateItem {
	return &UpdateItem{Kind: ItemSetAttributes, SetAttributes: &SetAttributesParams{
		IDSet: ids, Attributes: attrs, MergeBehavior: merge,
	}}
}

// NewTestAndSetAttributes builds a TestAndSetAttributes item.
func NewTestAndSetAttributes(id ObjectID, test, set Attributes, merge MergeBehavior, failIfNotMet bool) *UpdateItem {
	return &UpdateItem{Kind: ItemTestAndSetAttributes, TestAndSetAttributes: &TestAndSetAttributesParams{
		ID: id, TestAttributes: test, Attributes: set, MergeBehavior: merge, FailIfTestConditionsNotMet: failIfNotMet,
	}}
}

// NewSyncPublication builds a SyncPublication item.
func NewSyncPublication() *UpdateItem {
	return &UpdateItem{Kind: ItemSyncPublication}
}

// NewSyncPersist builds a SyncPersist item.
func NewSyncPersist(objectType string, waitTimeLimit time.Duration, failOnTimeout bool) *UpdateItem {
	return &UpdateItem{Kind: ItemSyncPersist, SyncPersist: &SyncPersistParams{
		ObjectType: objectType, WaitTimeLimit: waitTimeLimit, FailOnTimeout: failOnTimeout,
	}}
}

// NewSyncExternal builds a SyncExternal item.
func NewSyncExternal(p SyncExternalParams) *UpdateItem {
	return &UpdateItem{Kind: ItemSyncExternal, SyncExternal: &p}
}
