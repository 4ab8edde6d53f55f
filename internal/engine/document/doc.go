// Package document provides Document, the sole mutator of a document's
// rope and the owner of its revision history.
//
// Document wires together the four packages that make up the editing core:
// rope.Rope holds the text, selection.Selection tracks one or more cursors
// over it, transaction.Transaction describes an edit plus the selection it
// should leave behind, and history.History records committed transactions
// as a revision tree so undo/redo can jump across branches and through
// time.
//
// Document itself does not know about bytes and lines the way the older
// buffer-backed Engine (internal/engine) does; every position it deals in
// is a char index, and every edit goes through ApplyTransaction so History
// never falls out of sync with the rope it describes.
package document
