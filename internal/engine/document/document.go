package document

import (
	"io"
	"sync"

	"github.com/vitex-editor/vitex/internal/engine/history"
	"github.com/vitex-editor/vitex/internal/engine/rope"
	"github.com/vitex-editor/vitex/internal/engine/selection"
	"github.com/vitex-editor/vitex/internal/engine/transaction"
)

// ID identifies a Document within a running editor, stable for the life of
// the document. Views key their sync state off it.
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

// Document is the sole mutator of its rope: every edit, whether typed by a
// user, replayed by undo/redo, or applied by a collaborator, goes through
// ApplyTransaction so the rope, the selection, and History never drift out
// of step with one another.
//
// All operations are thread-safe.
type Document struct {
	mu sync.RWMutex

	id   ID
	path string

	doc  rope.Rope
	sel  selection.Selection
	hist *history.History

	version  uint64
	modified bool
	readOnly bool

	compoundName     string
	compoundOpen     bool
	compoundOriginal history.State
}

// Option configures a Document at construction time.
type Option func(*Document)

// WithContent seeds the document with initial text.
func WithContent(content string) Option {
	return func(d *Document) { d.doc = rope.FromString(content) }
}

// WithPath records the document's backing path, for Modified/clean-snapshot
// bookkeeping and for callers that want to label a Document by file.
func WithPath(path string) Option {
	return func(d *Document) { d.path = path }
}

// WithReadOnly marks the document read-only: ApplyTransaction and the
// undo/redo family all return ReadOnlyError.
func WithReadOnly() Option {
	return func(d *Document) { d.readOnly = true }
}

// New creates a Document, defaulting to empty content.
func New(opts ...Option) *Document {
	d := &Document{
		id:   nextID.allocate(),
		hist: history.New(),
		sel:  selection.PointSelection(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromReader creates a Document from a reader's full contents.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	text, err := rope.FromReader(r)
	if err != nil {
		return nil, err
	}
	d := &Document{
		id:   nextID.allocate(),
		hist: history.New(),
		doc:  text,
		sel:  selection.PointSelection(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ID returns the document's stable identifier.
func (d *Document) ID() ID {
	return d.id
}

// Path returns the document's backing path, or "" if it was never set.
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// SetPath updates the document's backing path (e.g. after "save as").
func (d *Document) SetPath(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.path = path
}

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc.String()
}

// Rope returns the underlying rope. Callers must not mutate it directly;
// all edits must go through ApplyTransaction.
func (d *Document) Rope() rope.Rope {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc
}

// CharLen returns the document length in chars (grapheme clusters may span
// more than one char; see the rope package's grapheme helpers).
func (d *Document) CharLen() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc.CharLen()
}

// Selection returns the current selection.
func (d *Document) Selection() selection.Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sel
}

// SetSelection normalizes and stores sel. It does not bump Version or mark
// the document modified: moving a cursor is not an edit.
func (d *Document) SetSelection(sel selection.Selection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sel = sel.EnsureInvariants(d.doc)
}

// Version returns the number of transactions applied to this document
// since creation (including ones later undone past, since undo itself is a
// transaction apply).
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Modified reports whether the document has unsaved changes.
func (d *Document) Modified() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modified
}

// MarkClean clears the modified flag, recording that the document's
// current content has been durably saved. Saving and loading are external
// collaborators (internal/integration/file and friends); this is the hook
// they call once the write has succeeded.
func (d *Document) MarkClean() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modified = false
}

// state snapshots doc+selection for History's "original" argument. Must be
// called with d.mu held.
func (d *Document) state() history.State {
	return history.State{Doc: d.doc, Selection: d.sel}
}

// ApplyTransaction applies tx to the document: it length-checks tx against
// the current rope, mutates the rope, updates the selection (tx's own, if
// it set one, otherwise the old selection mapped through tx's changes),
// bumps Version, marks the document modified, and commits a History
// revision — unless a compound edit is open (see BeginCompoundEdit), in
// which case the commit is deferred to EndCompoundEdit.
func (d *Document) ApplyTransaction(tx transaction.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(tx)
}

func (d *Document) applyLocked(tx transaction.Transaction) error {
	if d.readOnly {
		return &ReadOnlyError{}
	}

	original := d.state()
	if err := tx.Apply(&d.doc); err != nil {
		return err
	}

	if sel, ok := tx.Selection(); ok {
		d.sel = sel
	} else {
		mapped, err := d.sel.Map(tx.Changes())
		if err != nil {
			return err
		}
		d.sel = mapped
	}
	d.sel = d.sel.EnsureInvariants(d.doc)

	if err := d.hist.CommitRevision(tx, original); err != nil {
		return err
	}

	d.version++
	d.modified = true
	return nil
}

// BeginCompoundEdit opens a compound edit: subsequent ApplyTransaction
// calls still mutate the rope and selection immediately, but their History
// commits are composed into a single pending revision instead of landing
// one per call. Used by Insert mode, where each keystroke is its own
// ApplyTransaction call but the whole typing run should undo as one step.
func (d *Document) BeginCompoundEdit(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hist.IsGrouping() {
		return &CompoundEditInProgressError{Name: d.compoundName}
	}
	d.hist.BeginGroup(name)
	d.compoundName = name
	d.compoundOpen = true
	d.compoundOriginal = d.state()
	return nil
}

// EndCompoundEdit commits the composed transaction from the open compound
// edit as a single revision, inverted against the document as it stood
// before BeginCompoundEdit. A no-op if no compound edit is open.
func (d *Document) EndCompoundEdit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.compoundOpen {
		return nil
	}
	original := d.compoundOriginal
	d.compoundOpen = false
	d.compoundName = ""
	d.compoundOriginal = history.State{}
	return d.hist.EndGroup(original)
}

// CancelCompoundEdit discards the pending compound revision without
// touching the rope: any edits already applied during the compound edit
// stay applied, only the single history entry for them is dropped.
func (d *Document) CancelCompoundEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compoundOpen = false
	d.compoundName = ""
	d.hist.CancelGroup()
}

// applyJump applies every transaction in jump to the document in order,
// then advances History past them. Must be called with d.mu held.
func (d *Document) applyJump(jump history.HistoryJump, jumpErr error) error {
	if jumpErr != nil {
		return jumpErr
	}
	for _, tx := range jump.Transactions {
		if err := tx.Apply(&d.doc); err != nil {
			return err
		}
		if sel, ok := tx.Selection(); ok {
			d.sel = sel
		}
	}
	if err := d.hist.ApplyJump(jump); err != nil {
		return err
	}
	d.sel = d.sel.EnsureInvariants(d.doc)
	d.version++
	d.modified = true
	return nil
}

// Undo jumps to the parent of the current revision.
func (d *Document) Undo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readOnly {
		return &ReadOnlyError{}
	}
	jump, ok := d.hist.Undo()
	if !ok {
		return &NothingToUndoError{}
	}
	return d.applyJump(jump, nil)
}

// Redo jumps to the last-undone child of the current revision.
func (d *Document) Redo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readOnly {
		return &ReadOnlyError{}
	}
	jump, ok := d.hist.Redo()
	if !ok {
		return &NothingToRedoError{}
	}
	return d.applyJump(jump, nil)
}

// Earlier navigates backward per uk: a count of edits along the current
// branch, or a duration back in time (history.UndoSteps / UndoPeriod).
func (d *Document) Earlier(uk history.UndoKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readOnly {
		return &ReadOnlyError{}
	}
	jump, err := d.hist.Earlier(uk)
	return d.applyJump(jump, err)
}

// Later navigates forward per uk.
func (d *Document) Later(uk history.UndoKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readOnly {
		return &ReadOnlyError{}
	}
	jump, err := d.hist.Later(uk)
	return d.applyJump(jump, err)
}

// CanUndo reports whether the document is not at the root revision.
func (d *Document) CanUndo() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return !d.hist.AtRoot()
}

// History exposes the underlying revision tree for callers that need
// direct access (e.g. a ":earlier"/":later" command or a history browser
// view). Document itself remains the only thing that may apply its jumps.
func (d *Document) History() *history.History {
	return d.hist
}

// IsReadOnly reports whether the document rejects mutating operations.
func (d *Document) IsReadOnly() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.readOnly
}

// SetReadOnly toggles read-only mode.
func (d *Document) SetReadOnly(readOnly bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readOnly = readOnly
}
