// Package history stores the revision DAG for a document: a tree of
// transactions rooted at the buffer's initial state, with the "current"
// pointer marking where the visible document sits in that tree.
//
// # Revisions
//
// Every non-root Revision has a parent, a Transaction that moves the
// document from the parent to itself, and an inversion that moves it back.
// Undo walks to the parent via the inversion; redo walks to the last
// committed child via its transaction. Because a new edit after an undo
// doesn't discard the undone branch, the history is a tree rather than a
// stack: jumping between any two revisions composes the inversions back to
// their lowest common ancestor and the transactions back down to the
// target.
//
// # Two-phase navigation
//
// Undo, Redo, and the other jump methods never mutate History directly.
// They return a HistoryJump describing the transactions to apply and the
// resulting revision index. The caller applies those transactions to its
// own document and selection, and only then calls ApplyJump to advance
// History's current pointer. This keeps History and the document from
// diverging if applying a jump's transactions fails partway through.
//
// # Grouping
//
// Checkpoint and the GroupScope helpers let a caller compose several edits
// (e.g. a multi-step macro, or matching-bracket auto-insert) into a single
// revision, so one undo reverts the whole group.
package history
