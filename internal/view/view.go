package view

import (
	"sync"

	"github.com/vitex-editor/vitex/internal/engine/document"
	"github.com/vitex-editor/vitex/internal/renderer"
	"github.com/vitex-editor/vitex/internal/renderer/backend"
	"github.com/vitex-editor/vitex/internal/tree"
)

// ID identifies a View within the split tree it lives in. It is distinct
// from tree.NodeID: a View's NodeID can change if the tree is rebuilt,
// but its ID stays stable so keymaps and the command line can target
// "the view that was split last" across a resize.
type ID uint64

var nextID idGenerator

type idGenerator struct {
	mu   sync.Mutex
	next ID
}

func (g *idGenerator) allocate() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}

// View renders one Document within a rectangular pane of the split tree.
// It is the leaf payload instantiating tree.Tree[*View].
type View struct {
	id ID

	doc    *document.Document
	source *documentSource

	inner *renderer.View
	area  tree.Rect
}

// New creates a View over doc, occupying area.
func New(doc *document.Document, area tree.Rect) *View {
	src := newDocumentSource(doc)
	opts := renderer.DefaultViewOptions()
	inner := renderer.NewView("view", area.X, area.Y, area.Width, area.Height, opts)
	inner.SetBuffer(src)
	inner.SetCursorProvider(src)

	v := &View{
		id:     nextID.allocate(),
		doc:    doc,
		source: src,
		inner:  inner,
		area:   area,
	}
	return v
}

// ID returns the view's stable identifier.
func (v *View) ID() ID { return v.id }

// Document returns the view's backing document.
func (v *View) Document() *document.Document { return v.doc }

// Area returns the view's current pane area.
func (v *View) Area() tree.Rect { return v.area }

// SetArea resizes the pane, e.g. after the split tree recalculates.
func (v *View) SetArea(area tree.Rect) {
	v.area = area
	v.inner.SetBounds(area.X, area.Y, area.Width, area.Height)
}

// SyncChanges refreshes the view's line cache and cursor rendering after
// the document's rope or selection has changed underneath it (an edit,
// an undo/redo jump, or a collaborator's change all call this).
func (v *View) SyncChanges() {
	v.inner.SetBuffer(v.source)
	v.inner.MarkDirty()
}

// EnsureCursorInView scrolls the viewport, smoothly if smooth is true, so
// the primary cursor stays visible — the same "scrolloff" responsibility
// the teacher's original view carries after every cursor move.
func (v *View) EnsureCursorInView(smooth bool) {
	line, col := v.source.PrimaryCursor()
	v.inner.ScrollToReveal(line, col, smooth)
}

// SetFocused marks whether this view currently has input focus, which
// controls whether its cursor renders.
func (v *View) SetFocused(focused bool) {
	v.inner.SetFocused(focused)
}

// Update advances any in-flight scroll animation, returning whether the
// view needs to be redrawn this frame.
func (v *View) Update(dt float64) bool {
	return v.inner.Update(dt)
}

// Render paints the view to backend.
func (v *View) Render(b backend.Backend) {
	v.inner.Render(b)
}

// NeedsRedraw reports whether the view has pending changes to paint.
func (v *View) NeedsRedraw() bool {
	return v.inner.NeedsRedraw()
}
