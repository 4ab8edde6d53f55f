// Package tree implements the recursive split-layout tree that arranges
// editor views into a grid of horizontal/vertical panes, the way a window
// manager arranges windows.
//
// A Tree holds two kinds of node: a Container (an ordered list of
// children, laid out either Horizontal or Vertical, with optional
// per-child fixed cell sizes) and a View leaf (an opaque payload — the
// editor's view.View, in production use, but the tree itself is generic
// over the leaf type so it can be tested without pulling in the renderer).
//
// Layout is recomputed on demand by Recalculate: each container distributes
// its area among its children using a Length(n)/Fill(1) constraint solve,
// with one cell of spacing between children of a Vertical container
// (side-by-side panes get a visible divider column; Horizontal stacks of
// panes do not need one since rows already separate visually).
// Transitions between layouts are eased over a short duration via
// AreaAnimation so splitting/closing a pane doesn't snap.
package tree
