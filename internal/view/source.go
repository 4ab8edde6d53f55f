package view

import (
	"strings"

	"github.com/vitex-editor/vitex/internal/engine/document"
	"github.com/vitex-editor/vitex/internal/engine/rope"
	"github.com/vitex-editor/vitex/internal/renderer"
)

// documentSource adapts a *document.Document to the renderer's
// line/column-oriented BufferReader and CursorProvider interfaces. The
// renderer was built against a byte-offset, line-based engine; Document
// deals only in char indices over a rope, so every lookup here converts
// through rope.Rope's Point/ByteOffset/char-index helpers.
type documentSource struct {
	doc      *document.Document
	tabWidth int
}

func newDocumentSource(doc *document.Document) *documentSource {
	return &documentSource{doc: doc, tabWidth: 4}
}

// LineText implements renderer.BufferReader.
func (s *documentSource) LineText(line uint32) string {
	text := s.doc.Rope().LineText(line)
	return strings.TrimRight(text, "\n")
}

// LineCount implements renderer.BufferReader.
func (s *documentSource) LineCount() uint32 {
	return s.doc.Rope().LineCount()
}

// TabWidth implements renderer.BufferReader.
func (s *documentSource) TabWidth() int {
	return s.tabWidth
}

// SetTabWidth overrides the tab width used to lay out lines.
func (s *documentSource) SetTabWidth(w int) {
	if w > 0 {
		s.tabWidth = w
	}
}

func pointFor(r rope.Rope, charIdx uint64) rope.Point {
	byteOff := r.CharToByte(charIdx)
	return r.OffsetToPoint(byteOff)
}

// PrimaryCursor implements renderer.CursorProvider.
func (s *documentSource) PrimaryCursor() (line uint32, col uint32) {
	r := s.doc.Rope()
	head := s.doc.Selection().Primary().Head
	p := pointFor(r, head)
	return p.Line, p.Column
}

// Selections implements renderer.CursorProvider: every cursor in the
// document's multi-cursor Selection becomes one renderer.Selection, so
// secondary cursors render alongside the primary one instead of being
// dropped.
func (s *documentSource) Selections() []renderer.Selection {
	r := s.doc.Rope()
	sel := s.doc.Selection()
	ranges := sel.Ranges()
	out := make([]renderer.Selection, 0, len(ranges))

	for i, rng := range ranges {
		startChar, endChar := rng.From(), rng.To()
		startPoint := pointFor(r, startChar)
		endPoint := pointFor(r, endChar)
		out = append(out, renderer.Selection{
			StartLine: startPoint.Line,
			StartCol:  startPoint.Column,
			EndLine:   endPoint.Line,
			EndCol:    endPoint.Column,
			IsPrimary: i == sel.PrimaryIndex(),
		})
	}
	return out
}

// charForPoint converts a renderer-facing (line, byte-column) position
// back into a Document char index, the inverse of pointFor, for turning
// a mouse click or a keymap-issued line/col target into a Transaction
// endpoint.
func charForPoint(r rope.Rope, line, col uint32) uint64 {
	offset := r.PointToOffset(rope.Point{Line: line, Column: col})
	return r.ByteToChar(offset)
}
