package history

import (
	"sync"
	"time"

	"github.com/vitex-editor/vitex/internal/engine/changeset"
	"github.com/vitex-editor/vitex/internal/engine/selection"
	"github.com/vitex-editor/vitex/internal/engine/transaction"
)

// History is the revision tree for a single document. The zero value is
// not usable; construct one with New.
//
// Limitations carried over from the revision-tree design: selection-only
// changes don't commit a revision (the selection only updates to whatever
// a committed transaction leaves it at), the revision list is unbounded,
// and because deletions don't store the deleted text, every revision
// additionally stores its own inversion.
type History struct {
	mu        sync.Mutex
	revisions []revision

	current int

	grouping  bool
	groupName string
	groupTx   *transaction.Transaction
}

// New returns a History containing only the empty root revision.
func New() *History {
	return &History{
		revisions: []revision{{
			parent:    0,
			lastChild: nil,
			timestamp: time.Now(),
		}},
	}
}

// CommitRevision records transaction as a new revision on top of the
// current one, given the document/selection state transaction was built
// against. original must be the state the transaction was computed from,
// not yet mutated by it.
func (h *History) CommitRevision(tx transaction.Transaction, original State) error {
	return h.CommitRevisionAtTimestamp(tx, original, time.Now())
}

// CommitRevisionAtTimestamp is CommitRevision with an explicit timestamp,
// primarily for deterministic tests and replay.
func (h *History) CommitRevisionAtTimestamp(tx transaction.Transaction, original State, timestamp time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		composed, err := h.composeGroup(tx)
		if err != nil {
			return err
		}
		h.groupTx = &composed
		return nil
	}

	return h.commitLocked(tx, original, timestamp)
}

func (h *History) composeGroup(tx transaction.Transaction) (transaction.Transaction, error) {
	if h.groupTx == nil {
		return tx, nil
	}
	return h.groupTx.Compose(tx)
}

func (h *History) commitLocked(tx transaction.Transaction, original State, timestamp time.Time) error {
	selectionAfter, ok := tx.Selection()
	if !ok {
		mapped, err := original.Selection.Map(tx.Changes())
		if err != nil {
			return err
		}
		selectionAfter = mapped
	}

	inversion, err := tx.Invert(original.Doc)
	if err != nil {
		return err
	}
	inversion = inversion.WithSelection(original.Selection)

	newCurrent := len(h.revisions)
	current := newCurrent
	h.revisions[h.current].lastChild = &current

	h.revisions = append(h.revisions, revision{
		parent:      h.current,
		lastChild:   nil,
		transaction: tx.WithSelection(selectionAfter),
		inversion:   inversion,
		timestamp:   timestamp,
		selection:   &selectionAfter,
	})
	h.current = newCurrent
	return nil
}

// BeginGroup starts composing subsequent CommitRevision calls into a
// single pending transaction instead of committing each one separately.
// Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupTx = nil
}

// EndGroup commits the composed group transaction as a single revision
// against original, the state the group started from.
func (h *History) EndGroup(original State) error {
	h.mu.Lock()
	grouping := h.grouping
	tx := h.groupTx
	h.grouping = false
	h.groupName = ""
	h.groupTx = nil
	h.mu.Unlock()

	if !grouping || tx == nil {
		return nil
	}
	return h.CommitRevisionAtTimestamp(*tx, original, time.Now())
}

// CancelGroup discards the pending group transaction without committing
// it. Any edits already applied to the document are unaffected; only the
// history entry is dropped.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.grouping = false
	h.groupName = ""
	h.groupTx = nil
}

// IsGrouping reports whether a group is currently open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// CurrentRevision returns the index of the revision the document is
// currently at.
func (h *History) CurrentRevision() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// AtRoot reports whether the document is at the root (pre-first-edit)
// revision.
func (h *History) AtRoot() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current == 0
}

// Len returns the number of revisions, including the root.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.revisions)
}

// IsEmpty reports whether no edits have been committed yet.
func (h *History) IsEmpty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.revisions) <= 1
}

func (h *History) validateRevision(r int) error {
	if r < 0 || r >= len(h.revisions) {
		return &RevisionOutOfBoundsError{Index: r, Max: len(h.revisions) - 1}
	}
	return nil
}

// ChangesSince composes the transactions between revision and the current
// revision, in the direction from revision to current. Returns false if
// revision is already current. The composed transaction's selection, if
// any, comes from the current revision.
func (h *History) ChangesSince(rev int) (transaction.Transaction, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.validateRevision(rev); err != nil {
		return transaction.Transaction{}, false, err
	}
	if rev == h.current {
		return transaction.Transaction{}, false, nil
	}

	lca := h.lowestCommonAncestor(rev, h.current)
	up := h.pathUp(rev, lca)
	down := h.pathUp(h.current, lca)

	var composed transaction.Transaction
	has := false
	for _, n := range up {
		tx := h.revisions[n].inversion
		if !has {
			composed, has = tx, true
			continue
		}
		next, err := composed.Compose(tx)
		if err != nil {
			return transaction.Transaction{}, false, err
		}
		composed = next
	}
	for i := len(down) - 1; i >= 0; i-- {
		tx := h.revisions[down[i]].transaction
		if !has {
			composed, has = tx, true
			continue
		}
		next, err := composed.Compose(tx)
		if err != nil {
			return transaction.Transaction{}, false, err
		}
		composed = next
	}
	if !has {
		return transaction.Transaction{}, false, nil
	}

	if sel := h.revisions[h.current].selection; sel != nil {
		composed = composed.WithSelection(*sel)
	}
	return composed, true, nil
}

// Undo prepares an undo jump, without mutating History. Returns false if
// already at the root.
func (h *History) Undo() (HistoryJump, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == 0 {
		return HistoryJump{}, false
	}
	cur := h.revisions[h.current]
	return HistoryJump{
		Transactions: []transaction.Transaction{cur.inversion},
		Target:       cur.parent,
	}, true
}

// Redo prepares a redo jump along the last committed child of the current
// revision. Returns false if there's nothing to redo.
func (h *History) Redo() (HistoryJump, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.revisions[h.current]
	if cur.lastChild == nil {
		return HistoryJump{}, false
	}
	child := *cur.lastChild
	return HistoryJump{
		Transactions: []transaction.Transaction{h.revisions[child].transaction},
		Target:       child,
	}, true
}

// ApplyJump advances current to jump.Target. Call this only after every
// transaction in jump has been applied successfully to the caller's
// document.
func (h *History) ApplyJump(jump HistoryJump) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.validateRevision(jump.Target); err != nil {
		return err
	}
	h.current = jump.Target
	return nil
}

// LastEditPos returns the position of the most recent edit at the current
// revision, for placing the cursor after jumping there. Returns false at
// the root or if the revision made no changes.
func (h *History) LastEditPos() (uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == 0 {
		return 0, false
	}
	cur := h.revisions[h.current]

	invSel, ok := cur.inversion.Selection()
	if !ok {
		return 0, false
	}
	primary := invSel.Primary()

	changes := cur.transaction.ChangesIter()
	if len(changes) == 0 {
		return 0, false
	}
	target := changes[0]
	for _, c := range changes {
		if selection.NewRange(c.From, c.To).Overlaps(primary) {
			target = c
			break
		}
	}

	pos, err := cur.transaction.Changes().MapPos(target.To, changeset.After)
	if err != nil {
		return 0, false
	}
	return pos, true
}

func (h *History) lowestCommonAncestor(a, b int) int {
	aSeen := map[int]bool{}
	bSeen := map[int]bool{}
	for {
		aSeen[a] = true
		bSeen[b] = true
		if aSeen[b] {
			return b
		}
		if bSeen[a] {
			return a
		}
		a = h.revisions[a].parent
		b = h.revisions[b].parent
	}
}

// pathUp lists the nodes from n up to (not including) a. a must be an
// ancestor of n.
func (h *History) pathUp(n, a int) []int {
	var path []int
	for n != a {
		path = append(path, n)
		n = h.revisions[n].parent
	}
	return path
}

// jumpTo prepares a jump to revision to via their lowest common ancestor.
func (h *History) jumpTo(to int) (HistoryJump, error) {
	if err := h.validateRevision(to); err != nil {
		return HistoryJump{}, err
	}
	if to == h.current {
		return HistoryJump{Target: to}, nil
	}

	lca := h.lowestCommonAncestor(h.current, to)
	up := h.pathUp(h.current, lca)
	down := h.pathUp(to, lca)

	txs := make([]transaction.Transaction, 0, len(up)+len(down))
	for _, n := range up {
		txs = append(txs, h.revisions[n].inversion)
	}
	for i := len(down) - 1; i >= 0; i-- {
		txs = append(txs, h.revisions[down[i]].transaction)
	}
	return HistoryJump{Transactions: txs, Target: to}, nil
}

func (h *History) walkParents(from, steps int) int {
	for i := 0; i < steps; i++ {
		if from == 0 {
			break
		}
		from = h.revisions[from].parent
	}
	return from
}

func (h *History) walkChildren(from, steps int) int {
	for i := 0; i < steps; i++ {
		child := h.revisions[from].lastChild
		if child == nil {
			break
		}
		from = *child
	}
	return from
}

// JumpBackward prepares a jump n steps toward the root along the current
// branch (parent links), not by vector index.
func (h *History) JumpBackward(steps int) (HistoryJump, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	target := h.walkParents(h.current, steps)
	return h.jumpTo(target)
}

// JumpForward prepares a jump n steps away from the root along the
// current branch (last-child links), not by vector index.
func (h *History) JumpForward(steps int) (HistoryJump, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	target := h.walkChildren(h.current, steps)
	return h.jumpTo(target)
}

func (h *History) findRevisionNearestInstant(instant time.Time, direction TimeDirection) int {
	if len(h.revisions) == 0 {
		return 0
	}

	bestIdx := 0
	var bestDiff time.Duration
	haveBest := false
	bestIsAfter := false

	for idx, rev := range h.revisions {
		isAfter := !rev.timestamp.Before(instant)
		var diff time.Duration
		if isAfter {
			diff = rev.timestamp.Sub(instant)
		} else {
			diff = instant.Sub(rev.timestamp)
		}

		dominated := !haveBest
		if haveBest {
			switch {
			case diff < bestDiff:
				dominated = true
			case diff == bestDiff:
				if direction == TimeForward {
					dominated = isAfter && !bestIsAfter
				} else {
					dominated = !isAfter && bestIsAfter
				}
			}
		}

		if dominated {
			bestIdx = idx
			bestDiff = diff
			haveBest = true
			bestIsAfter = isAfter
		}
	}
	return bestIdx
}

func (h *History) jumpInstant(instant time.Time, direction TimeDirection) (HistoryJump, error) {
	rev := h.findRevisionNearestInstant(instant, direction)
	return h.jumpTo(rev)
}

// JumpDurationBackward prepares a jump to the revision created d before
// the current revision's timestamp.
func (h *History) JumpDurationBackward(d time.Duration) (HistoryJump, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	instant := h.revisions[h.current].timestamp.Add(-d)
	return h.jumpInstant(instant, TimeBackward)
}

// JumpDurationForward prepares a jump to the revision created d after the
// current revision's timestamp.
func (h *History) JumpDurationForward(d time.Duration) (HistoryJump, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	instant := h.revisions[h.current].timestamp.Add(d)
	return h.jumpInstant(instant, TimeForward)
}

// Earlier prepares an undo-direction navigation per uk: a number of steps
// along the branch, or a duration back in time.
func (h *History) Earlier(uk UndoKind) (HistoryJump, error) {
	if uk.isPeriod {
		return h.JumpDurationBackward(uk.period)
	}
	return h.JumpBackward(uk.steps)
}

// Later prepares a redo-direction navigation per uk.
func (h *History) Later(uk UndoKind) (HistoryJump, error) {
	if uk.isPeriod {
		return h.JumpDurationForward(uk.period)
	}
	return h.JumpForward(uk.steps)
}

// CurrentTimestamp returns the timestamp of the current revision.
func (h *History) CurrentTimestamp() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.revisions[h.current].timestamp
}

// RevisionTimestamp returns the timestamp of a specific revision.
func (h *History) RevisionTimestamp(rev int) (time.Time, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.validateRevision(rev); err != nil {
		return time.Time{}, err
	}
	return h.revisions[rev].timestamp, nil
}

// ApplyJumpToState is a convenience helper that applies every transaction
// in jump to state in order, updating state.Selection when a transaction
// carries one, then advances h via ApplyJump. It mirrors the two-phase
// undo/redo dance callers otherwise have to hand-roll.
func ApplyJumpToState(h *History, state *State, jump HistoryJump) error {
	for _, tx := range jump.Transactions {
		if err := tx.Apply(&state.Doc); err != nil {
			return err
		}
		if sel, ok := tx.Selection(); ok {
			state.Selection = sel
		}
	}
	return h.ApplyJump(jump)
}
