// Package selection implements grapheme-aligned, multi-cursor selections:
// an ordered set of disjoint Ranges, each carrying a process-wide stable
// CursorId that survives merges, mapping through edits, and normalization.
package selection

import (
	"sync/atomic"

	"github.com/vitex-editor/vitex/internal/engine/changeset"
	"github.com/vitex-editor/vitex/internal/engine/rope"
)

// Direction is the orientation of a Range: Forward when head >= anchor,
// Backward otherwise.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

// CursorId is a stable, process-wide unique identity for a cursor, assigned
// once at creation and preserved across edits, mapping, and most merges so
// that callers (e.g. multi-cursor editing commands) can track a specific
// cursor's fate over time.
type CursorId uint64

var nextCursorID uint64

// NewCursorID allocates a fresh, process-wide unique CursorId.
func NewCursorID() CursorId {
	return CursorId(atomic.AddUint64(&nextCursorID, 1))
}

// VisualPos is a cached (line, column) position used to keep vertical cursor
// movement ("goal column") stable across lines of differing length.
type VisualPos struct {
	Line, Column uint32
}

// Range is a single selection range between an anchor and a head, addressed
// in char (rune) indices. When Anchor == Head the range is a simple cursor.
type Range struct {
	Anchor       uint64
	Head         uint64
	ID           CursorId
	OldVisualPos *VisualPos
}

// NewRange constructs a Range with a freshly allocated CursorId.
func NewRange(anchor, head uint64) Range {
	return Range{Anchor: anchor, Head: head, ID: NewCursorID()}
}

// Point constructs a zero-width Range (a simple cursor) at pos.
func Point(pos uint64) Range {
	return NewRange(pos, pos)
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// From returns the lesser of Anchor and Head: the start of the range.
func (r Range) From() uint64 { return minU64(r.Anchor, r.Head) }

// To returns the greater of Anchor and Head: the end of the range.
func (r Range) To() uint64 { return maxU64(r.Anchor, r.Head) }

// Len returns the char width of the range.
func (r Range) Len() uint64 { return r.To() - r.From() }

// IsEmpty reports whether anchor and head coincide.
func (r Range) IsEmpty() bool { return r.Anchor == r.Head }

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return r.From() <= other.From() && r.To() >= other.To()
}

// Contains reports whether pos lies within [From, To).
func (r Range) Contains(pos uint64) bool {
	return r.From() <= pos && pos < r.To()
}

// Cursor returns the left-side position of the block cursor: the position
// one grapheme before Head when the range extends forward, else Head
// itself.
func (r Range) Cursor(doc rope.Rope) uint64 {
	if r.Head > r.Anchor {
		return rope.PrevGraphemeBoundary(doc, r.Head)
	}
	return r.Head
}

// CursorLine returns the 0-indexed line the block cursor sits on.
func (r Range) CursorLine(doc rope.Rope) uint32 {
	return doc.OffsetToPoint(doc.CharToByte(r.Cursor(doc))).Line
}

// IsSingleGrapheme reports whether this range covers exactly one grapheme
// cluster in doc.
func (r Range) IsSingleGrapheme(doc rope.Rope) bool {
	first := rope.NextGraphemeBoundary(doc, r.From())
	return first > r.From() && first >= r.To()
}

// Direction reports whether this range extends forward or backward.
func (r Range) Direction() Direction {
	if r.Head < r.Anchor {
		return Backward
	}
	return Forward
}

// Flip swaps anchor and head, reversing the range's direction.
func (r Range) Flip() Range {
	return Range{Anchor: r.Head, Head: r.Anchor, ID: r.ID, OldVisualPos: r.OldVisualPos}
}

// WithDirection returns r oriented in the given direction, flipping it if
// necessary.
func (r Range) WithDirection(d Direction) Range {
	if r.Direction() == d {
		return r
	}
	return r.Flip()
}

// Overlaps reports whether r and other share any char position.
func (r Range) Overlaps(other Range) bool {
	return r.From() == other.From() || (r.To() > other.From() && other.To() > r.From())
}

// PutCursor places the left side of the block cursor at charIdx, optionally
// extending the range from its current anchor. Assumes both r and charIdx
// are already grapheme-aligned.
func (r Range) PutCursor(doc rope.Rope, charIdx uint64, extend bool) Range {
	if !extend {
		return Point(charIdx)
	}

	anchor := r.Anchor
	switch {
	case r.Head >= r.Anchor && charIdx < r.Anchor:
		anchor = rope.NextGraphemeBoundary(doc, r.Anchor)
	case r.Head < r.Anchor && charIdx >= r.Anchor:
		anchor = rope.PrevGraphemeBoundary(doc, r.Anchor)
	}

	if anchor <= charIdx {
		return Range{Anchor: anchor, Head: rope.NextGraphemeBoundary(doc, charIdx), ID: r.ID}
	}
	return Range{Anchor: anchor, Head: charIdx, ID: r.ID}
}

// Map returns r translated through cs, preserving its CursorId. Anchor and
// head use sticky associations chosen by their relative order so that
// insertions at the edges of the range extend it rather than being
// swallowed or pushed outside it. This runs a single O(len(ops)) pass;
// prefer Selection.Map to batch all ranges of a selection into one pass.
func (r Range) Map(cs changeset.ChangeSet) (Range, error) {
	if cs.IsEmpty() {
		return r, nil
	}

	anchor, head := r.Anchor, r.Head
	var anchorAssoc, headAssoc changeset.Assoc
	switch {
	case r.Anchor == r.Head:
		anchorAssoc, headAssoc = changeset.AfterSticky, changeset.AfterSticky
	case r.Anchor < r.Head:
		anchorAssoc, headAssoc = changeset.AfterSticky, changeset.BeforeSticky
	default:
		anchorAssoc, headAssoc = changeset.BeforeSticky, changeset.AfterSticky
	}

	positions := []changeset.PosAssoc{
		{Pos: &anchor, Assoc: anchorAssoc},
		{Pos: &head, Assoc: headAssoc},
	}
	if err := cs.UpdatePositions(positions); err != nil {
		return Range{}, err
	}

	return Range{Anchor: anchor, Head: head, ID: r.ID}, nil
}

// Extend grows r to cover at least [from, to), preserving direction.
func (r Range) Extend(from, to uint64) Range {
	if r.Anchor <= r.Head {
		return Range{Anchor: minU64(r.Anchor, from), Head: maxU64(r.Head, to), ID: r.ID}
	}
	return Range{Anchor: maxU64(r.Anchor, to), Head: minU64(r.Head, from), ID: r.ID}
}

// Merge returns a Range spanning both r and other, keeping r's CursorId.
func (r Range) Merge(other Range) Range {
	if r.Anchor > r.Head && other.Anchor > other.Head {
		return Range{Anchor: maxU64(r.Anchor, other.Anchor), Head: minU64(r.Head, other.Head), ID: r.ID}
	}
	return Range{Anchor: minU64(r.From(), other.From()), Head: maxU64(r.To(), other.To()), ID: r.ID}
}

// Fragment returns the text covered by this range.
func (r Range) Fragment(doc rope.Rope) string {
	return doc.CharSlice(r.From(), r.To())
}

// GraphemeAligned returns r with both ends shifted onto grapheme
// boundaries. A zero-width range stays zero-width; a non-zero-width range
// never collapses to zero-width.
func (r Range) GraphemeAligned(doc rope.Rope) Range {
	var newAnchor, newHead uint64
	switch {
	case r.Anchor == r.Head:
		pos := rope.EnsureGraphemeBoundaryPrev(doc, r.Anchor)
		newAnchor, newHead = pos, pos
	case r.Anchor < r.Head:
		newAnchor = rope.EnsureGraphemeBoundaryPrev(doc, r.Anchor)
		newHead = rope.EnsureGraphemeBoundaryNext(doc, r.Head)
	default:
		newAnchor = rope.EnsureGraphemeBoundaryNext(doc, r.Anchor)
		newHead = rope.EnsureGraphemeBoundaryPrev(doc, r.Head)
	}

	out := Range{Anchor: newAnchor, Head: newHead, ID: r.ID}
	if newAnchor == r.Anchor {
		out.OldVisualPos = r.OldVisualPos
	}
	return out
}

// MinWidth1 returns r with the head shifted forward by one grapheme if the
// range is zero-width, never moving the anchor.
func (r Range) MinWidth1(doc rope.Rope) Range {
	if r.Anchor != r.Head {
		return r
	}
	return Range{Anchor: r.Anchor, Head: rope.NextGraphemeBoundary(doc, r.Head), ID: r.ID, OldVisualPos: r.OldVisualPos}
}
