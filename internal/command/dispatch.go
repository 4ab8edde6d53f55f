package command

import (
	"github.com/vitex-editor/vitex/internal/engine/document"
)

// Pipeline ties a Keymaps set, the modal State, and a Document together
// into the Input → Keymap lookup → Command → Transaction → Document
// flow: Dispatch is the single entry point a terminal input loop calls
// per keypress.
type Pipeline struct {
	keymaps *Keymaps
	state   *State
	doc     *document.Document
	matcher *Matcher
}

// NewPipeline builds a Pipeline dispatching through keymaps against doc,
// starting in Normal mode.
func NewPipeline(keymaps *Keymaps, doc *document.Document) *Pipeline {
	state := NewState()
	return &Pipeline{
		keymaps: keymaps,
		state:   state,
		doc:     doc,
		matcher: NewMatcher(keymaps.For(state.Mode())),
	}
}

// State exposes the pipeline's modal state, e.g. for a statusline to
// read the current Mode.
func (p *Pipeline) State() *State { return p.state }

// SetMode transitions mode and resets the chord matcher to the new
// mode's Keymap. Entering Insert mode begins a compound edit so a whole
// typing run commits as one History revision; leaving it ends that
// compound.
func (p *Pipeline) SetMode(mode Mode) error {
	wasInsert := p.state.Mode() == ModeInsert
	p.state.SetMode(mode)
	p.matcher = NewMatcher(p.keymaps.For(mode))

	if wasInsert && mode != ModeInsert {
		return p.doc.EndCompoundEdit()
	}
	if !wasInsert && mode == ModeInsert {
		return p.doc.BeginCompoundEdit("insert")
	}
	return nil
}

// Dispatch routes one keypress: first to a pending on-next-key
// callback if one is installed, then (in Insert mode, for a plain
// character) to direct insertion, and otherwise through the mode's
// Keymap trie.
func (p *Pipeline) Dispatch(key Key) error {
	if cb := p.state.onNextKey; cb != nil {
		consumed, again := cb(key)
		if !again {
			p.state.onNextKey = nil
		}
		if consumed {
			return nil
		}
	}

	if p.state.Mode() == ModeInsert {
		if matched, err := p.dispatchInsertKey(key); matched {
			return err
		}
	}

	result, cmd := p.matcher.Feed(key)
	switch result {
	case Matched:
		ctx := NewContext(p.doc, p.state)
		err := cmd.Fn(ctx)
		p.state.ClearCount()
		p.state.ClearRegister()
		return err
	case Pending, NotFound, Cancelled:
		return nil
	}
	return nil
}

// dispatchInsertKey intercepts a plain printable key in Insert mode so
// typing doesn't have to be bound into the Keymap trie one key at a
// time; matched is false for control keys (e.g. <esc>) that should
// still fall through to the trie.
func (p *Pipeline) dispatchInsertKey(key Key) (matched bool, err error) {
	if len(key) != 1 {
		return false, nil
	}
	ctx := NewContext(p.doc, p.state)
	return true, ctx.InsertText(string(key))
}
