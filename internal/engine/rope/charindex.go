package rope

import "unicode/utf8"

// CharLen returns the number of Unicode scalar values (runes) in the rope.
// This is the primary indexing unit for the changeset/selection layer; byte
// offsets remain available for syntax-tree ranges via ByteAt/Slice.
func (r Rope) CharLen() uint64 {
	if r.root == nil {
		return 0
	}
	return r.root.summary.Chars
}

// CharToByte converts a char (rune) index to a byte offset.
// Panics-free: out-of-range indices clamp to the rope's bounds.
func (r Rope) CharToByte(charIdx uint64) ByteOffset {
	if r.root == nil {
		return 0
	}
	if charIdx >= r.root.summary.Chars {
		return r.root.summary.Bytes
	}
	return r.root.charToByte(charIdx)
}

// ByteToChar converts a byte offset to a char (rune) index.
// The byte offset must land on a UTF-8 boundary (as all rope offsets do).
func (r Rope) ByteToChar(offset ByteOffset) uint64 {
	if r.root == nil {
		return 0
	}
	if offset >= r.root.summary.Bytes {
		return r.root.summary.Chars
	}
	return r.root.byteToChar(offset)
}

func (n *Node) charToByte(charIdx uint64) ByteOffset {
	if n.IsLeaf() {
		var chars uint64
		var bytes ByteOffset
		for _, chunk := range n.chunks {
			chunkChars := chunk.Summary().Chars
			if chars+chunkChars > charIdx {
				return bytes + byteOffsetForRune(chunk.String(), charIdx-chars)
			}
			chars += chunkChars
			bytes += ByteOffset(chunk.Len())
		}
		return bytes
	}

	var chars uint64
	var bytes ByteOffset
	for i, summary := range n.childSummaries {
		if chars+summary.Chars > charIdx {
			return bytes + n.children[i].charToByte(charIdx-chars)
		}
		chars += summary.Chars
		bytes += summary.Bytes
	}
	return bytes
}

func (n *Node) byteToChar(offset ByteOffset) uint64 {
	if n.IsLeaf() {
		var chars uint64
		var bytes ByteOffset
		for _, chunk := range n.chunks {
			chunkBytes := ByteOffset(chunk.Len())
			if bytes+chunkBytes > offset {
				return chars + runeCountForByte(chunk.String(), int(offset-bytes))
			}
			chars += chunk.Summary().Chars
			bytes += chunkBytes
		}
		return chars
	}

	var chars uint64
	var bytes ByteOffset
	for i, summary := range n.childSummaries {
		if bytes+summary.Bytes > offset {
			return chars + n.children[i].byteToChar(offset-bytes)
		}
		chars += summary.Chars
		bytes += summary.Bytes
	}
	return chars
}

// byteOffsetForRune returns the byte offset of the nth rune (0-indexed) in s.
func byteOffsetForRune(s string, n uint64) ByteOffset {
	var i uint64
	for byteIdx := range s {
		if i == n {
			return ByteOffset(byteIdx)
		}
		i++
	}
	return ByteOffset(len(s))
}

// runeCountForByte returns the number of runes in s[:byteOffset].
func runeCountForByte(s string, byteOffset int) uint64 {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= len(s) {
		return uint64(utf8.RuneCountInString(s))
	}
	return uint64(utf8.RuneCountInString(s[:byteOffset]))
}

// CharSlice returns the text between two char indices.
func (r Rope) CharSlice(startChar, endChar uint64) string {
	return r.Slice(r.CharToByte(startChar), r.CharToByte(endChar))
}

// InsertChar inserts text at a char index and returns the resulting rope.
func (r Rope) InsertChar(charIdx uint64, text string) Rope {
	return r.Insert(r.CharToByte(charIdx), text)
}

// DeleteChar deletes the char range [startChar, endChar) and returns the
// resulting rope.
func (r Rope) DeleteChar(startChar, endChar uint64) Rope {
	return r.Delete(r.CharToByte(startChar), r.CharToByte(endChar))
}
