// Package undostack provides the Command-pattern linear undo/redo stack
// used by the byte-offset Engine (internal/engine): each edit is captured
// as a Command that knows how to Execute and Undo itself against a
// buffer.Buffer and cursor.CursorSet, with grouping support for combining
// several commands into one undo unit.
//
// This is a different representation from the revision tree in
// internal/engine/history, which undoes/redoes transaction.Transactions
// against a rope.Rope and selection.Selection. The two coexist because
// Engine's byte-offset buffer/cursor model predates the rope-backed
// Document and hasn't been migrated onto it.
package undostack
