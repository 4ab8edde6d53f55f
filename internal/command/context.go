package command

import (
	"github.com/vitex-editor/vitex/internal/engine/document"
	"github.com/vitex-editor/vitex/internal/engine/selection"
	"github.com/vitex-editor/vitex/internal/engine/transaction"
)

// Callback is a deferred UI action a command can queue instead of
// performing directly — e.g. opening a picker popup after the current
// frame finishes rendering.
type Callback func()

// Context is passed to every Command's Fn. It exposes just enough of
// the editor to read/mutate the focused Document and to queue the
// handful of side effects a command needs (a register write, a
// deferred popup, a background job) without handing the command the
// whole application.
type Context struct {
	Doc   *document.Document
	State *State

	// Count is the numeric prefix the user typed before the command
	// (e.g. the 3 in "3dd"), or 1 if none was given — commands read
	// this directly rather than State.Count to get the "at least one"
	// convention for free.
	Count int

	// Register is the named register prefix the user typed (e.g. the a
	// in "\"ayy"), or "" for the unnamed register.
	Register string

	callbacks []Callback
	jobs      []func() error
}

// NewContext builds a Context for one dispatched command.
func NewContext(doc *document.Document, state *State) *Context {
	count := state.Count()
	if count == 0 {
		count = 1
	}
	return &Context{Doc: doc, State: state, Count: count, Register: state.Register()}
}

// Defer queues a callback to run after the current frame's rendering,
// e.g. to open a popup without re-entering the render loop mid-frame.
func (c *Context) Defer(cb Callback) { c.callbacks = append(c.callbacks, cb) }

// Callbacks returns and clears the queued deferred callbacks.
func (c *Context) Callbacks() []Callback {
	cbs := c.callbacks
	c.callbacks = nil
	return cbs
}

// Job queues a background unit of work (e.g. an LSP request) to run off
// the main dispatch path.
func (c *Context) Job(fn func() error) { c.jobs = append(c.jobs, fn) }

// Jobs returns and clears the queued background jobs.
func (c *Context) Jobs() []func() error {
	jobs := c.jobs
	c.jobs = nil
	return jobs
}

// ApplyPerRange is the standard command-authoring recipe described by
// the editing pipeline: read the Document's current Selection, build a
// Transaction from a per-range edit function via ChangeBySelection, and
// apply it — committing a History revision in the same step
// (Document.ApplyTransaction does this automatically). A command calls
// this once per edit rather than touching the rope directly.
func (c *Context) ApplyPerRange(f func(selection.Range) transaction.Change) error {
	sel := c.Doc.Selection()
	tx, err := transaction.ChangeBySelection(c.Doc.Rope(), sel, f)
	if err != nil {
		return err
	}
	return c.Doc.ApplyTransaction(tx)
}

// ApplyPerRangeIgnoreOverlapping is ApplyPerRange for edits whose
// per-range results may legitimately overlap after expansion (e.g. a
// multi-cursor paste where two cursors are adjacent) — overlapping
// changes are merged by position rather than rejected.
func (c *Context) ApplyPerRangeIgnoreOverlapping(f func(from, to uint64) *string) error {
	sel := c.Doc.Selection()
	ranges := sel.Ranges()
	changes := make([]transaction.Change, 0, len(ranges))
	for _, r := range ranges {
		changes = append(changes, transaction.Change{From: r.From(), To: r.To()})
	}
	tx, err := transaction.ChangeIgnoreOverlapping(c.Doc.Rope(), changes, f)
	if err != nil {
		return err
	}
	return c.Doc.ApplyTransaction(tx)
}

// InsertText inserts text at every cursor in the current Selection,
// leaving the selection collapsed after each inserted run (the Insert
// mode typing recipe).
func (c *Context) InsertText(text string) error {
	tx, err := transaction.Insert(c.Doc.Rope(), c.Doc.Selection(), text)
	if err != nil {
		return err
	}
	return c.Doc.ApplyTransaction(tx)
}
