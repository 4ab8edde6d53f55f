// Package view binds a Document and its Selection to a rectangular region
// of the terminal, the way a window binds a buffer to a pane.
//
// A View owns no text of its own: it holds a document.Document reference,
// a tree.NodeID locating it in the split layout, and the rendering state
// (viewport scroll position, line cache, gutter width) that the renderer
// package already provides. sourceAdapter bridges the char-indexed
// Document/Selection pair to the renderer's line/column-oriented
// BufferReader/CursorProvider interfaces, translating every cursor in a
// multi-cursor Selection into a renderer.Selection so all of them — not
// just the primary one — paint.
package view
