package objtable

// doAddLink implements spec §4.2 AddLink.
func (e *executor) doAddLink(item *UpdateItem) string {
	p := item.AddLink
	link := p.Link
	link.Key = NormalizeLinkKey(link.Key)

	from := e.resolveTarget(link.FromID)
	if from == nil {
		return rcSourceNotFound(link)
	}

	var to *tracker
	if !link.ToID.IsEmpty() {
		to = e.resolveTarget(link.ToID)
		if to == nil {
			return rcTargetNotFound(link)
		}
	}

	if existing, occupied := from.linksOut[link.Key]; occupied {
		sameTarget := existing.ToID.IsEmpty() && link.ToID.IsEmpty() || existing.ToID.Equal(link.ToID)

		if sameTarget && p.IfNeeded {
			return ""
		}

		return rcLinkKeyInUse(link.Key, existing)
	}

	if p.AutoUnlinkFromPrior && to != nil {
		priorKey := ""
		var priorFrom *tracker

		for k, l := range to.linksIn {
			if l.Key == link.Key && !l.FromID.Equal(link.FromID) {
				priorKey = k
				priorFrom = e.resolveTarget(l.FromID)
				break
			}
		}

		if priorKey != "" {
			delete(to.linksIn, priorKey)
			to.rebuildIn = true
			e.markDirty(to)

			if priorFrom != nil {
				delete(priorFrom.linksOut, link.Key)
				priorFrom.rebuildOut = true
				e.markDirty(priorFrom)
			}
		}
	}

	from.linksOut[link.Key] = link
	from.rebuildOut = true
	e.markDirty(from)

	if to != nil {
		to.linksIn[inKey(from.id.FullName(), link.Key)] = link
		to.rebuildIn = true
		e.markDirty(to)
	}

	return ""
}

// doRemoveLink implements spec §4.2 RemoveLink: requires an exact match
// on (from, key, to).
func (e *executor) doRemoveLink(item *UpdateItem) string {
	link := item.RemoveLink.Link
	link.Key = NormalizeLinkKey(link.Key)

	from := e.resolveTarget(link.FromID)
	if from == nil {
		return rcSourceNotFound(link)
	}

	existing, ok := from.linksOut[link.Key]
	if !ok || !existing.ToID.Equal(link.ToID) {
		return rcLinkKeyInUse(link.Key, existing)
	}

	delete(from.linksOut, link.Key)
	from.rebuildOut = true
	e.markDirty(from)

	if to := e.resolveTarget(link.ToID); to != nil {
		delete(to.linksIn, inKey(from.id.FullName(), link.Key))
		to.rebuildIn = true
		e.markDirty(to)
	}

	return ""
}
