package command

// Mode is one state of the editor's modal state machine.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeVisual
	ModeVisualLine
	ModeCommand
	ModePrompt
)

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "insert"
	case ModeVisual:
		return "visual"
	case ModeVisualLine:
		return "visual-line"
	case ModeCommand:
		return "command"
	case ModePrompt:
		return "prompt"
	default:
		return "normal"
	}
}

// PromptKind distinguishes the several single-line prompts that share
// ModePrompt (they differ in what submitting them does, not in how
// they're typed into).
type PromptKind int

const (
	PromptSearch PromptKind = iota
	PromptSave
	PromptRename
)

// Key is one chord component: a key code plus modifiers. String keys
// (e.g. "a", "<esc>", "<c-w>") are the unit a Keymap trie matches on, so
// this is kept simple rather than mirroring a terminal's raw key event.
type Key string

// OnNextKeyFunc is a pending single-key continuation installed by a
// command (e.g. "f" waiting for the character to find). It consumes the
// next key directly, bypassing normal Keymap dispatch, and returns
// whether it wants to keep consuming further keys (always false for a
// single-char command like f/t, true for a multi-key one).
type OnNextKeyFunc func(key Key) (consumed bool, again bool)

// State tracks the live modal state machine: the current Mode, any
// pending on-next-key callback, and the in-progress key chord prefix
// being matched against the Keymap trie.
type State struct {
	mode       Mode
	promptKind PromptKind

	onNextKey OnNextKeyFunc
	prefix    []Key

	register string
	count    int
}

// NewState starts in Normal mode.
func NewState() *State {
	return &State{mode: ModeNormal}
}

// Mode returns the current mode.
func (s *State) Mode() Mode { return s.mode }

// SetMode transitions to mode, clearing any in-progress chord prefix
// and on-next-key callback (a mode switch always interrupts them).
func (s *State) SetMode(mode Mode) {
	s.mode = mode
	s.prefix = nil
	s.onNextKey = nil
}

// SetPrompt transitions to ModePrompt with the given kind.
func (s *State) SetPrompt(kind PromptKind) {
	s.promptKind = kind
	s.SetMode(ModePrompt)
}

// PromptKind returns the active prompt's kind; meaningful only when
// Mode() == ModePrompt.
func (s *State) PromptKind() PromptKind { return s.promptKind }

// SetOnNextKey installs a pending single-key (or multi-key) callback
// that intercepts the next Dispatch call before normal Keymap lookup.
func (s *State) SetOnNextKey(f OnNextKeyFunc) { s.onNextKey = f }

// Count returns the pending numeric count prefix (e.g. the "3" in
// "3dd"), or 0 if none was typed.
func (s *State) Count() int { return s.count }

// SetCount sets the pending count prefix.
func (s *State) SetCount(n int) { s.count = n }

// ClearCount resets the count prefix to 0, e.g. after a command
// consumes it.
func (s *State) ClearCount() { s.count = 0 }

// Register returns the pending named-register prefix (e.g. the "a" in
// "\"ayy"), or "" if none was typed.
func (s *State) Register() string { return s.register }

// SetRegister sets the pending named-register prefix.
func (s *State) SetRegister(r string) { s.register = r }

// ClearRegister resets the register prefix.
func (s *State) ClearRegister() { s.register = "" }
