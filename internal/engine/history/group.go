package history

// GroupScope provides a convenient way to group commits using defer.
// Usage:
//
//	scope := h.GroupScope("Find and Replace", original)
//	defer scope.End()
//	// ... multiple CommitRevision calls, composed into one ...
type GroupScope struct {
	history  *History
	original State
	active   bool
}

// GroupScope begins grouping CommitRevision calls into a single revision,
// computed against original (the state before the group starts).
func (h *History) GroupScope(name string, original State) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{history: h, original: original, active: true}
}

// End commits the group as one revision. Safe to call multiple times;
// only the first call has effect.
func (g *GroupScope) End() error {
	if !g.active {
		return nil
	}
	g.active = false
	return g.history.EndGroup(g.original)
}

// Cancel discards the group without committing a revision. Any edits
// already applied to the document are unaffected; only the history entry
// is dropped.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Checkpoint marks a revision to return to later, e.g. for canceling an
// in-progress multi-step command.
type Checkpoint struct {
	revision int
}

// CreateCheckpoint captures the current revision.
func (h *History) CreateCheckpoint() Checkpoint {
	return Checkpoint{revision: h.CurrentRevision()}
}

// JumpToCheckpoint prepares a jump back to cp.
func (h *History) JumpToCheckpoint(cp Checkpoint) (HistoryJump, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jumpTo(cp.revision)
}
