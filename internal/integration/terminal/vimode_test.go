package terminal

import (
	"testing"
)

func newTestTerminal(t *testing.T, cols, rows int) *Terminal {
	t.Helper()
	m := NewManager(ManagerConfig{})
	term, err := m.Create(Options{Shell: "/bin/sh", Cols: cols, Rows: rows, Scrollback: 50})
	if err != nil {
		t.Fatalf("create terminal: %v", err)
	}
	t.Cleanup(func() { term.Close() })
	return term
}

func writeRow(term *Terminal, y int, text string) {
	for x, r := range text {
		term.screen.SetCell(x, y, Cell{Rune: r, Width: 1})
	}
}

func TestEnterExitViMode(t *testing.T) {
	term := newTestTerminal(t, 20, 5)

	if term.ViModeActive() {
		t.Fatal("vi mode should start inactive")
	}

	term.EnterViMode()
	if !term.ViModeActive() {
		t.Fatal("expected vi mode active after EnterViMode")
	}

	col, row, ok := term.ViCursorPosition()
	if !ok || col != 0 || row != 0 {
		t.Fatalf("expected cursor at (0,0), got (%d,%d) ok=%v", col, row, ok)
	}

	term.ExitViMode()
	if term.ViModeActive() {
		t.Fatal("expected vi mode inactive after ExitViMode")
	}
}

func TestViMotionLeftRight(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "hello world")
	term.EnterViMode()

	for i := 0; i < 4; i++ {
		term.ViMotion(ViMotionRight)
	}
	col, row, _ := term.ViCursorPosition()
	if col != 4 || row != 0 {
		t.Fatalf("expected (4,0), got (%d,%d)", col, row)
	}

	term.ViMotion(ViMotionLeft)
	col, _, _ = term.ViCursorPosition()
	if col != 3 {
		t.Fatalf("expected col 3 after left, got %d", col)
	}
}

func TestViMotionWordForward(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "hello world")
	term.EnterViMode()

	term.ViMotion(ViMotionWordForward)
	col, row, _ := term.ViCursorPosition()
	if col != 6 || row != 0 {
		t.Fatalf("expected word-forward to land on 'world' at col 6, got (%d,%d)", col, row)
	}
}

func TestViMotionWordBackward(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "hello world")
	term.EnterViMode()
	term.ViMotion(ViMotionWordForward)

	term.ViMotion(ViMotionWordBackward)
	col, _, _ := term.ViCursorPosition()
	if col != 0 {
		t.Fatalf("expected word-backward to return to col 0, got %d", col)
	}
}

func TestViMotionLineEnd(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "hi")
	term.EnterViMode()

	term.ViMotion(ViMotionLineEnd)
	col, _, _ := term.ViCursorPosition()
	if col != 1 {
		t.Fatalf("expected line-end at last non-empty col 1, got %d", col)
	}
}

func TestViToggleSelectionCharacterwiseRange(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "hello world")
	term.EnterViMode()
	term.ViToggleSelection()

	for i := 0; i < 4; i++ {
		term.ViMotion(ViMotionRight)
	}

	rng, ok := term.ViSelectionRange()
	if !ok {
		t.Fatal("expected active selection range")
	}
	if rng.StartCol != 0 || rng.StartRow != 0 || rng.EndCol != 5 || rng.EndRow != 0 {
		t.Fatalf("unexpected range: %+v", rng)
	}
}

func TestViToggleLineSelectionRange(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "line one")
	writeRow(term, 1, "line two")
	term.EnterViMode()
	term.ViToggleLineSelection()
	term.ViMotion(ViMotionDown)

	rng, ok := term.ViSelectionRange()
	if !ok {
		t.Fatal("expected active line selection range")
	}
	if rng.StartCol != 0 || rng.EndCol != term.Screen().Width() {
		t.Fatalf("line selection should span full width, got %+v", rng)
	}
	if rng.StartRow != 0 || rng.EndRow != 1 {
		t.Fatalf("expected rows 0..1, got %+v", rng)
	}
}

func TestViClearSelectionDeactivates(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	term.EnterViMode()
	term.ViToggleSelection()
	if !term.ViSelectionActive() {
		t.Fatal("expected selection active")
	}

	term.ViClearSelection()
	if term.ViSelectionActive() {
		t.Fatal("expected selection cleared")
	}
}

func TestViSearchNextSkipsCurrentMatch(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "foo bar foo")
	term.EnterViMode()

	if err := term.ViSetSearch("foo"); err != nil {
		t.Fatalf("set search: %v", err)
	}

	if !term.ViSearchNext() {
		t.Fatal("expected a match")
	}
	col, row, _ := term.ViCursorPosition()
	if col != 8 || row != 0 {
		t.Fatalf("expected second 'foo' at col 8, got (%d,%d)", col, row)
	}

	rng, ok := term.ViSearchMatchRange()
	if !ok || rng.StartCol != 8 || rng.EndCol != 11 {
		t.Fatalf("unexpected match range: %+v ok=%v", rng, ok)
	}
}

func TestViSearchPrevWraps(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	writeRow(term, 0, "foo bar foo")
	term.EnterViMode()
	term.ViMotion(ViMotionLineEnd)

	if err := term.ViSetSearch("foo"); err != nil {
		t.Fatalf("set search: %v", err)
	}
	if !term.ViSearchPrev() {
		t.Fatal("expected a backward match")
	}
	col, _, _ := term.ViCursorPosition()
	if col != 8 {
		t.Fatalf("expected match at col 8 searching backward from line end, got %d", col)
	}
}

func TestViGotoTopAndBottom(t *testing.T) {
	term := newTestTerminal(t, 10, 3)
	term.history.Add(&Line{Cells: []Cell{{Rune: 'a'}}})
	term.history.Add(&Line{Cells: []Cell{{Rune: 'b'}}})
	term.EnterViMode()

	term.ViGotoTop()
	_, row, _ := term.ViCursorPosition()
	if row != 0 {
		t.Fatalf("expected top of scrollback scrolled into view at viewport row 0, got %d", row)
	}

	term.ViGotoBottom()
	_, row, _ = term.ViCursorPosition()
	if row != 0 {
		t.Fatalf("expected bottom back at live screen row 0, got %d", row)
	}
}

func TestNativeSelectionFallbackWhenViInactive(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	term.StartSelection(2, 0, ViSelectionSimple)
	term.UpdateSelection(5, 0)

	rng, ok := term.ViSelectionRange()
	if !ok {
		t.Fatal("expected native selection fallback")
	}
	if rng.StartCol != 2 || rng.EndCol != 6 {
		t.Fatalf("unexpected native range: %+v", rng)
	}
}

func TestPickerInfoReflectsTerminalState(t *testing.T) {
	term := newTestTerminal(t, 20, 5)
	term.SetName("build")

	info := term.PickerInfo()
	if info.Title != "build" || !info.Visible || info.Exited {
		t.Fatalf("unexpected picker info: %+v", info)
	}
}
