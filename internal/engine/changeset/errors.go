package changeset

import "fmt"

// LengthMismatchError is returned when a ChangeSet is applied to (or
// inverted against) a document whose char length does not match the
// ChangeSet's expected input length.
type LengthMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("changeset length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ComposeLengthMismatchError is returned when composing two ChangeSets whose
// lengths don't chain: the left output length must equal the right input
// length.
type ComposeLengthMismatchError struct {
	LeftLenAfter uint64
	RightLen     uint64
}

func (e *ComposeLengthMismatchError) Error() string {
	return fmt.Sprintf("changeset compose length mismatch: left output %d, right input %d", e.LeftLenAfter, e.RightLen)
}

// InvalidRangeError is returned when a change range has start after end.
type InvalidRangeError struct {
	From, To uint64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid change range: start %d is after end %d", e.From, e.To)
}

// RangeOutOfBoundsError is returned when a change range exceeds the
// document length.
type RangeOutOfBoundsError struct {
	From, To, Len uint64
}

func (e *RangeOutOfBoundsError) Error() string {
	return fmt.Sprintf("change range %d..%d is out of bounds for document length %d", e.From, e.To, e.Len)
}

// OverlappingRangeError is returned when change ranges passed to Change
// overlap a previously accepted range.
type OverlappingRangeError struct {
	PrevEnd, From, To uint64
}

func (e *OverlappingRangeError) Error() string {
	return fmt.Sprintf("change range %d..%d overlaps previous end %d", e.From, e.To, e.PrevEnd)
}

// PositionsOutOfBoundsError is returned by UpdatePositions when one or more
// positions could not be mapped because they exceed the ChangeSet's length.
type PositionsOutOfBoundsError struct {
	Positions []uint64
	Len       uint64
}

func (e *PositionsOutOfBoundsError) Error() string {
	return fmt.Sprintf("positions %v are out of bounds for changeset length %d", e.Positions, e.Len)
}
