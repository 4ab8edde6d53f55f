package selection

import (
	"sort"

	"github.com/vitex-editor/vitex/internal/engine/changeset"
	"github.com/vitex-editor/vitex/internal/engine/rope"
)

// Selection is a non-empty, ordered set of disjoint Ranges plus the index of
// the "primary" range that single-range commands (and the status line)
// report against.
type Selection struct {
	ranges       []Range
	primaryIndex int
}

// New constructs a Selection, validating primaryIndex and normalizing
// (sorting + merging overlaps) the ranges.
func New(ranges []Range, primaryIndex int) (Selection, error) {
	if len(ranges) == 0 {
		return Selection{}, ErrEmptySelection
	}
	if primaryIndex < 0 || primaryIndex >= len(ranges) {
		return Selection{}, &PrimaryIndexOutOfBoundsError{Index: primaryIndex, Len: len(ranges)}
	}
	return newUnchecked(ranges, primaryIndex).normalize(), nil
}

func newUnchecked(ranges []Range, primaryIndex int) Selection {
	cp := make([]Range, len(ranges))
	copy(cp, ranges)
	return Selection{ranges: cp, primaryIndex: primaryIndex}
}

// PointSelection constructs a single-cursor Selection at pos.
func PointSelection(pos uint64) Selection {
	return newUnchecked([]Range{Point(pos)}, 0)
}

// Single constructs a single-range Selection from anchor to head.
func Single(anchor, head uint64) Selection {
	return newUnchecked([]Range{NewRange(anchor, head)}, 0)
}

// Primary returns the primary range.
func (s Selection) Primary() Range { return s.ranges[s.primaryIndex] }

// PrimaryIndex returns the index of the primary range.
func (s Selection) PrimaryIndex() int { return s.primaryIndex }

// SetPrimaryIndex sets the primary range by index.
func (s *Selection) SetPrimaryIndex(idx int) error {
	if idx < 0 || idx >= len(s.ranges) {
		return &PrimaryIndexOutOfBoundsError{Index: idx, Len: len(s.ranges)}
	}
	s.primaryIndex = idx
	return nil
}

// Ranges returns the selection's ranges, sorted by position.
func (s Selection) Ranges() []Range { return s.ranges }

// Len returns the sum of all range widths.
func (s Selection) Len() uint64 {
	var total uint64
	for _, r := range s.ranges {
		total += r.Len()
	}
	return total
}

// IsEmpty reports whether every range is collapsed (a simple cursor).
func (s Selection) IsEmpty() bool {
	for _, r := range s.ranges {
		if !r.IsEmpty() {
			return false
		}
	}
	return true
}

// IntoSingle collapses the selection down to just its primary range.
func (s Selection) IntoSingle() Selection {
	if len(s.ranges) == 1 {
		return s
	}
	return newUnchecked([]Range{s.ranges[s.primaryIndex]}, 0)
}

// Push appends range as a new primary range and normalizes.
func (s Selection) Push(r Range) Selection {
	ranges := append(append([]Range{}, s.ranges...), r)
	out := Selection{ranges: ranges, primaryIndex: len(ranges) - 1}
	return out.normalize()
}

// Remove drops the range at idx. Errors if it is the only remaining range.
func (s Selection) Remove(idx int) (Selection, error) {
	if len(s.ranges) == 1 {
		return Selection{}, ErrRemoveLastRange
	}
	if idx < 0 || idx >= len(s.ranges) {
		return Selection{}, &RangeIndexOutOfBoundsError{Index: idx, Len: len(s.ranges)}
	}

	ranges := make([]Range, 0, len(s.ranges)-1)
	ranges = append(ranges, s.ranges[:idx]...)
	ranges = append(ranges, s.ranges[idx+1:]...)

	primaryIndex := s.primaryIndex
	if idx < s.primaryIndex || s.primaryIndex == len(s.ranges)-1 {
		primaryIndex--
	}
	return Selection{ranges: ranges, primaryIndex: primaryIndex}, nil
}

// Replace swaps the range at idx and re-normalizes.
func (s Selection) Replace(idx int, r Range) (Selection, error) {
	if idx < 0 || idx >= len(s.ranges) {
		return Selection{}, &RangeIndexOutOfBoundsError{Index: idx, Len: len(s.ranges)}
	}
	ranges := append([]Range{}, s.ranges...)
	ranges[idx] = r
	out := Selection{ranges: ranges, primaryIndex: s.primaryIndex}
	return out.normalize(), nil
}

// Map translates every range through cs in a single bulk position-mapping
// pass, then normalizes (sorts and merges overlaps).
func (s Selection) Map(cs changeset.ChangeSet) (Selection, error) {
	out, err := s.MapNoNormalize(cs)
	if err != nil {
		return Selection{}, err
	}
	return out.normalize(), nil
}

// MapNoNormalize translates every range through cs without sorting or
// merging afterward.
func (s Selection) MapNoNormalize(cs changeset.ChangeSet) (Selection, error) {
	if cs.IsEmpty() {
		return s, nil
	}

	ranges := make([]Range, len(s.ranges))
	copy(ranges, s.ranges)

	positions := make([]changeset.PosAssoc, 0, 2*len(ranges))
	for i := range ranges {
		ranges[i].OldVisualPos = nil
		var anchorAssoc, headAssoc changeset.Assoc
		switch {
		case ranges[i].Anchor == ranges[i].Head:
			anchorAssoc, headAssoc = changeset.AfterSticky, changeset.AfterSticky
		case ranges[i].Anchor < ranges[i].Head:
			anchorAssoc, headAssoc = changeset.AfterSticky, changeset.BeforeSticky
		default:
			anchorAssoc, headAssoc = changeset.BeforeSticky, changeset.AfterSticky
		}
		positions = append(positions,
			changeset.PosAssoc{Pos: &ranges[i].Anchor, Assoc: anchorAssoc},
			changeset.PosAssoc{Pos: &ranges[i].Head, Assoc: headAssoc},
		)
	}

	if err := cs.UpdatePositions(positions); err != nil {
		return Selection{}, err
	}

	return Selection{ranges: ranges, primaryIndex: s.primaryIndex}, nil
}

// normalize sorts ranges by start position and merges any that overlap,
// preserving which merged range holds the primary.
func (s Selection) normalize() Selection {
	if len(s.ranges) < 2 {
		return s
	}

	primary := s.ranges[s.primaryIndex]
	ranges := append([]Range{}, s.ranges...)
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].From() < ranges[j].From() })

	out := ranges[:1]
	for _, cur := range ranges[1:] {
		last := &out[len(out)-1]
		if last.Overlaps(cur) {
			merged := cur.Merge(*last)
			if *last == primary || cur == primary {
				primary = merged
			}
			*last = merged
			continue
		}
		out = append(out, cur)
	}

	primaryIndex := 0
	for i, r := range out {
		if r == primary {
			primaryIndex = i
			break
		}
	}

	return Selection{ranges: out, primaryIndex: primaryIndex}
}

// MergeRanges collapses the entire selection into one range spanning the
// first range's start to the last range's end.
func (s Selection) MergeRanges() Selection {
	first := s.ranges[0]
	last := s.ranges[len(s.ranges)-1]
	return newUnchecked([]Range{first.Merge(last)}, 0)
}

// MergeConsecutiveRanges merges ranges whose end exactly touches the next
// range's start.
func (s Selection) MergeConsecutiveRanges() Selection {
	s = s.normalize()
	primary := s.ranges[s.primaryIndex]

	out := s.ranges[:1]
	for _, cur := range s.ranges[1:] {
		last := &out[len(out)-1]
		if last.To() == cur.From() {
			merged := cur.Merge(*last)
			if *last == primary || cur == primary {
				primary = merged
			}
			*last = merged
			continue
		}
		out = append(out, cur)
	}

	primaryIndex := 0
	for i, r := range out {
		if r == primary {
			primaryIndex = i
			break
		}
	}
	return Selection{ranges: out, primaryIndex: primaryIndex}
}

// Transform applies f to every range and normalizes the result.
func (s Selection) Transform(f func(Range) Range) Selection {
	ranges := make([]Range, len(s.ranges))
	for i, r := range s.ranges {
		ranges[i] = f(r)
	}
	return Selection{ranges: ranges, primaryIndex: s.primaryIndex}.normalize()
}

// TransformIter applies f to every range, flattening the results, and
// normalizes. Errors if no ranges remain.
func (s Selection) TransformIter(f func(Range) []Range) (Selection, error) {
	var ranges []Range
	for _, r := range s.ranges {
		ranges = append(ranges, f(r)...)
	}
	if len(ranges) == 0 {
		return Selection{}, ErrNoRanges
	}
	return Selection{ranges: ranges, primaryIndex: 0}.normalize(), nil
}

// EnsureInvariants re-establishes: grapheme alignment, minimum 1-char width
// (except at document end), non-overlap, and sort order.
func (s Selection) EnsureInvariants(doc rope.Rope) Selection {
	return s.Transform(func(r Range) Range {
		return r.MinWidth1(doc).GraphemeAligned(doc)
	})
}

// Cursors collapses every range to its block-cursor position.
func (s Selection) Cursors(doc rope.Rope) Selection {
	return s.Transform(func(r Range) Range {
		return Point(r.Cursor(doc))
	})
}

// Fragments returns the text covered by each range, in selection order.
func (s Selection) Fragments(doc rope.Rope) []string {
	out := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		out[i] = r.Fragment(doc)
	}
	return out
}

// Contains reports whether every range of other is contained in some range
// of s.
func (s Selection) Contains(other Selection) bool {
	for _, o := range other.ranges {
		found := false
		for _, r := range s.ranges {
			if r.ContainsRange(o) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
