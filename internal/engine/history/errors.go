package history

import "fmt"

// RevisionOutOfBoundsError is returned when a revision index does not
// exist in the history.
type RevisionOutOfBoundsError struct {
	Index, Max int
}

func (e *RevisionOutOfBoundsError) Error() string {
	return fmt.Sprintf("revision index %d is out of bounds (max: %d)", e.Index, e.Max)
}
