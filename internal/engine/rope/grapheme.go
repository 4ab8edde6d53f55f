package rope

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// IsGraphemeBoundary reports whether charIdx falls on a grapheme cluster
// boundary.
func (r Rope) IsGraphemeBoundary(charIdx uint64) bool {
	if charIdx == 0 || charIdx >= r.CharLen() {
		return true
	}
	return NextGraphemeBoundary(r, PrevGraphemeBoundary(r, charIdx)) == charIdx
}

// NextGraphemeBoundary returns the char index of the next grapheme cluster
// boundary at or after charIdx. If charIdx is already at or past the end of
// the rope, it returns the rope's char length.
func NextGraphemeBoundary(r Rope, charIdx uint64) uint64 {
	n := r.CharLen()
	if charIdx >= n {
		return n
	}
	byteIdx := r.CharToByte(charIdx)
	tail := r.Slice(byteIdx, r.Len())
	if tail == "" {
		return n
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(tail, -1)
	return charIdx + uint64(utf8.RuneCountInString(cluster))
}

// PrevGraphemeBoundary returns the char index of the previous grapheme
// cluster boundary at or before charIdx.
func PrevGraphemeBoundary(r Rope, charIdx uint64) uint64 {
	if charIdx == 0 {
		return 0
	}
	n := r.CharLen()
	if charIdx > n {
		charIdx = n
	}
	byteIdx := r.CharToByte(charIdx)
	head := r.Slice(0, byteIdx)
	if head == "" {
		return 0
	}

	// Walk cluster boundaries forward from the start until the boundary at or
	// beyond charIdx is found, then step back one. uniseg has no reverse
	// scanner, so this runs in a prefix bounded by charIdx rather than the
	// whole document.
	var lastBoundary uint64
	var pos uint64
	remaining := head
	for remaining != "" {
		cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(remaining, -1)
		clusterLen := uint64(utf8.RuneCountInString(cluster))
		if pos+clusterLen >= charIdx {
			break
		}
		pos += clusterLen
		lastBoundary = pos
		remaining = rest
	}
	return lastBoundary
}

// EnsureGraphemeBoundaryPrev shifts charIdx backward to the nearest
// grapheme boundary at or before it.
func EnsureGraphemeBoundaryPrev(r Rope, charIdx uint64) uint64 {
	if r.IsGraphemeBoundary(charIdx) {
		return charIdx
	}
	return PrevGraphemeBoundary(r, charIdx)
}

// EnsureGraphemeBoundaryNext shifts charIdx forward to the nearest
// grapheme boundary at or after it.
func EnsureGraphemeBoundaryNext(r Rope, charIdx uint64) uint64 {
	if r.IsGraphemeBoundary(charIdx) {
		return charIdx
	}
	return NextGraphemeBoundary(r, charIdx)
}
