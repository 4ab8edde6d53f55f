package document

import "fmt"

// NothingToUndoError is returned by Undo/Earlier when there is no prior
// revision to jump to.
type NothingToUndoError struct{}

func (e *NothingToUndoError) Error() string { return "document: nothing to undo" }

// NothingToRedoError is returned by Redo/Later when there is no later
// revision to jump to.
type NothingToRedoError struct{}

func (e *NothingToRedoError) Error() string { return "document: nothing to redo" }

// ReadOnlyError is returned by any mutating call on a read-only Document.
type ReadOnlyError struct{}

func (e *ReadOnlyError) Error() string { return "document: read-only" }

// CompoundEditInProgressError is returned when a caller tries to begin a
// second compound edit while one is already open.
type CompoundEditInProgressError struct{ Name string }

func (e *CompoundEditInProgressError) Error() string {
	return fmt.Sprintf("document: compound edit %q already in progress", e.Name)
}
