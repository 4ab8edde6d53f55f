package history

import (
	"time"

	"github.com/vitex-editor/vitex/internal/engine/rope"
	"github.com/vitex-editor/vitex/internal/engine/selection"
	"github.com/vitex-editor/vitex/internal/engine/transaction"
)

// State is a document and its selection at some point in time.
type State struct {
	Doc       rope.Rope
	Selection selection.Selection
}

// HistoryJump is a pending, not-yet-applied navigation through the
// revision tree: the transactions to apply in order, and the revision
// index History will sit at once they've all been applied successfully.
type HistoryJump struct {
	Transactions []transaction.Transaction
	Target       int
}

// IsEmpty reports whether the jump has no transactions to apply (the
// target is already current).
func (j HistoryJump) IsEmpty() bool { return len(j.Transactions) == 0 }

// Len returns the number of transactions in the jump.
func (j HistoryJump) Len() int { return len(j.Transactions) }

// revision is a single node in the history tree.
type revision struct {
	parent      int
	lastChild   *int
	transaction transaction.Transaction
	// inversion is stored alongside transaction because deletions don't
	// carry the text they removed, so undo can't be derived from
	// transaction alone.
	inversion transaction.Transaction
	timestamp time.Time
	selection *selection.Selection
}

// TimeDirection breaks ties when two revisions are equally close to a
// target instant during time-based navigation.
type TimeDirection int

const (
	// TimeBackward prefers the revision at or before the target (earlier).
	TimeBackward TimeDirection = iota
	// TimeForward prefers the revision at or after the target (later).
	TimeForward
)

// UndoKind selects how Earlier/Later measure distance: a number of edits
// along the current branch, or a span of time.
type UndoKind struct {
	steps    int
	period   time.Duration
	isPeriod bool
}

// UndoSteps moves n edits along the current branch.
func UndoSteps(n int) UndoKind { return UndoKind{steps: n} }

// UndoPeriod moves to the revision nearest d away in time.
func UndoPeriod(d time.Duration) UndoKind { return UndoKind{period: d, isPeriod: true} }
