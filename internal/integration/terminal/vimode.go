package terminal

import (
	"fmt"
	"regexp"
	"time"
)

// ViMotion identifies a vi-style cursor motion available while vi mode is
// active. Motions operate over the combined scrollback+screen grid, not
// just the live screen, so a motion can walk up into history.
type ViMotion int

const (
	ViMotionLeft ViMotion = iota
	ViMotionRight
	ViMotionUp
	ViMotionDown
	ViMotionWordForward
	ViMotionWordBackward
	ViMotionWordEndForward
	ViMotionLineStart
	ViMotionFirstOccupied
	ViMotionLineEnd
	ViMotionPageUp
	ViMotionPageDown
)

// ViSelectionType distinguishes a character-wise vi selection (v) from a
// line-wise one (V).
type ViSelectionType int

const (
	ViSelectionSimple ViSelectionType = iota
	ViSelectionLines
)

// AbsolutePoint addresses a cell in the combined scrollback+screen grid:
// line 0 is the oldest scrollback line, and line == history length is the
// first row of the live screen. This gives vi motions, search, and
// selection one stable coordinate space independent of how far the
// viewport is currently scrolled.
type AbsolutePoint struct {
	Line int
	Col  int
}

// ViewportRange is a selection or search match expressed relative to the
// current viewport, the form a renderer wants. EndCol/EndRow are
// exclusive, so both the anchor and cursor cell are always included.
type ViewportRange struct {
	StartCol, StartRow int
	EndCol, EndRow     int
}

// viSearch holds a compiled vi-mode search pattern and its most recent
// match, for highlighting and repeat search (n/N).
type viSearch struct {
	re       *regexp.Regexp
	pattern  string
	matchLo  AbsolutePoint
	matchHi  AbsolutePoint
	hasMatch bool
}

// ViMode is the vi-style overlay on a running Terminal: a modal cursor
// that walks the combined scrollback+screen grid, an optional visual
// selection, and incremental regex search. A Terminal's ViMode is nil
// until EnterViMode is called.
type ViMode struct {
	cursor          AbsolutePoint
	selectionActive bool
	anchor          AbsolutePoint
	selectionType   ViSelectionType
	pendingG        bool
	search          *viSearch
}

// PickerInfo is the read-only summary of a Terminal shown in a terminal
// picker/switcher UI.
type PickerInfo struct {
	ID               string
	Title            string
	Visible          bool
	Exited           bool
	ExitStatus       int
	WorkingDirectory string
	CreatedAt        time.Time
}

// PickerInfo returns the current display info for this terminal.
func (t *Terminal) PickerInfo() PickerInfo {
	t.mu.RLock()
	name := t.name
	t.mu.RUnlock()

	return PickerInfo{
		ID:               t.id,
		Title:            name,
		Visible:          t.visible.Load(),
		Exited:           t.closed.Load(),
		ExitStatus:       t.ExitCode(),
		WorkingDirectory: t.WorkingDirectory(),
		CreatedAt:        t.createdAt,
	}
}

// SetVisible marks whether this terminal is currently displayed in a view.
func (t *Terminal) SetVisible(visible bool) {
	t.visible.Store(visible)
}

// Visible reports whether this terminal is currently displayed.
func (t *Terminal) Visible() bool {
	return t.visible.Load()
}

// totalLines is the size of the combined scrollback+screen grid.
func (t *Terminal) totalLines() int {
	return t.history.Len() + t.screen.Height()
}

// lineAt returns the cells for absolute line idx, from history or the
// live screen as appropriate, or nil if out of range.
func (t *Terminal) lineAt(idx int) []Cell {
	histLen := t.history.Len()
	if idx < 0 || idx >= t.totalLines() {
		return nil
	}
	if idx < histLen {
		line := t.history.Line(idx)
		if line == nil {
			return nil
		}
		return line.Cells
	}
	return t.screen.Line(idx - histLen)
}

// viewportTop is the absolute line currently shown at the top of the
// viewport, given displayOffset lines scrolled up into history from the
// bottom.
func (t *Terminal) viewportTop() int {
	return t.history.Len() - int(t.displayOffset.Load())
}

// toViewport converts an absolute point to viewport-relative coordinates.
func (t *Terminal) toViewport(p AbsolutePoint) (col, row int) {
	return p.Col, p.Line - t.viewportTop()
}

// ViModeActive reports whether vi mode is currently engaged.
func (t *Terminal) ViModeActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viMode != nil
}

// ToggleViMode enters vi mode if inactive, or exits it if active.
func (t *Terminal) ToggleViMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode != nil {
		t.exitViModeLocked()
	} else {
		t.enterViModeLocked()
	}
}

// EnterViMode engages vi mode with the cursor at the live screen cursor
// position.
func (t *Terminal) EnterViMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enterViModeLocked()
}

func (t *Terminal) enterViModeLocked() {
	x, y := t.screen.CursorPos()
	t.viMode = &ViMode{cursor: AbsolutePoint{Line: t.history.Len() + y, Col: x}}
}

// ExitViMode disengages vi mode, clears any vi selection, and scrolls the
// viewport back to the live screen.
func (t *Terminal) ExitViMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exitViModeLocked()
}

func (t *Terminal) exitViModeLocked() {
	t.viMode = nil
	t.clearNativeSelectionLocked()
	t.displayOffset.Store(0)
}

// clampCol keeps a column within the line's cell range (or 0 for an
// empty/out-of-range line).
func (t *Terminal) clampCol(col, line int) int {
	width := t.screen.Width()
	if cells := t.lineAt(line); cells != nil {
		width = len(cells)
	}
	if col < 0 {
		return 0
	}
	if col >= width {
		if width == 0 {
			return 0
		}
		return width - 1
	}
	return col
}

func classify(r rune) int {
	switch {
	case r == ' ' || r == 0:
		return 0
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
		return 1
	default:
		return 2
	}
}

// ViMotion moves the vi cursor by motion. It is a no-op if vi mode isn't
// active.
func (t *Terminal) ViMotion(motion ViMotion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode == nil {
		return
	}
	c := t.viMode.cursor
	last := t.totalLines() - 1

	switch motion {
	case ViMotionLeft:
		if c.Col > 0 {
			c.Col--
		}
	case ViMotionRight:
		c.Col = t.clampCol(c.Col+1, c.Line)
	case ViMotionUp:
		if c.Line > 0 {
			c.Line--
			c.Col = t.clampCol(c.Col, c.Line)
		}
	case ViMotionDown:
		if c.Line < last {
			c.Line++
			c.Col = t.clampCol(c.Col, c.Line)
		}
	case ViMotionWordForward:
		c = t.wordForwardLocked(c)
	case ViMotionWordBackward:
		c = t.wordBackwardLocked(c)
	case ViMotionWordEndForward:
		c = t.wordEndForwardLocked(c)
	case ViMotionLineStart:
		c.Col = 0
	case ViMotionFirstOccupied:
		c.Col = t.firstOccupiedLocked(c.Line)
	case ViMotionLineEnd:
		c.Col = t.clampCol(t.screen.Width()-1, c.Line)
		if cells := t.lineAt(c.Line); cells != nil {
			c.Col = t.lastNonEmptyLocked(cells)
		}
	case ViMotionPageUp:
		c.Line -= t.screen.Height()
		if c.Line < 0 {
			c.Line = 0
		}
		c.Col = t.clampCol(c.Col, c.Line)
	case ViMotionPageDown:
		c.Line += t.screen.Height()
		if c.Line > last {
			c.Line = last
		}
		c.Col = t.clampCol(c.Col, c.Line)
	}

	t.viMode.cursor = c
	t.viScrollToCursorLocked()
}

func (t *Terminal) firstOccupiedLocked(line int) int {
	cells := t.lineAt(line)
	for i, cell := range cells {
		if cell.Rune != ' ' && cell.Rune != 0 {
			return i
		}
	}
	return 0
}

func (t *Terminal) lastNonEmptyLocked(cells []Cell) int {
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i].Rune != ' ' && cells[i].Rune != 0 {
			return i
		}
	}
	return 0
}

func (t *Terminal) wordForwardLocked(c AbsolutePoint) AbsolutePoint {
	cells := t.lineAt(c.Line)
	if cells == nil || c.Col >= len(cells) {
		return t.advanceLineLocked(c)
	}
	startClass := classify(cells[c.Col].Rune)
	i := c.Col
	for i < len(cells) && classify(cells[i].Rune) == startClass && startClass != 0 {
		i++
	}
	for {
		for i < len(cells) && classify(cells[i].Rune) == 0 {
			i++
		}
		if i < len(cells) {
			return AbsolutePoint{Line: c.Line, Col: i}
		}
		next := t.advanceLineLocked(AbsolutePoint{Line: c.Line, Col: 0})
		if next.Line == c.Line {
			return AbsolutePoint{Line: c.Line, Col: len(cells) - 1}
		}
		c = next
		cells = t.lineAt(c.Line)
		if cells == nil {
			return c
		}
		i = 0
	}
}

func (t *Terminal) advanceLineLocked(c AbsolutePoint) AbsolutePoint {
	last := t.totalLines() - 1
	if c.Line >= last {
		return c
	}
	return AbsolutePoint{Line: c.Line + 1, Col: 0}
}

func (t *Terminal) wordBackwardLocked(c AbsolutePoint) AbsolutePoint {
	i := c.Col - 1
	line := c.Line
	cells := t.lineAt(line)
	for {
		for i < 0 {
			if line == 0 {
				return AbsolutePoint{Line: 0, Col: 0}
			}
			line--
			cells = t.lineAt(line)
			i = len(cells) - 1
		}
		if cells != nil && i < len(cells) && classify(cells[i].Rune) != 0 {
			break
		}
		i--
	}
	startClass := classify(cells[i].Rune)
	for i > 0 && classify(cells[i-1].Rune) == startClass {
		i--
	}
	return AbsolutePoint{Line: line, Col: i}
}

func (t *Terminal) wordEndForwardLocked(c AbsolutePoint) AbsolutePoint {
	next := t.wordForwardLocked(c)
	cells := t.lineAt(next.Line)
	if cells == nil || next.Col >= len(cells) {
		return next
	}
	startClass := classify(cells[next.Col].Rune)
	i := next.Col
	for i+1 < len(cells) && classify(cells[i+1].Rune) == startClass {
		i++
	}
	return AbsolutePoint{Line: next.Line, Col: i}
}

// ViScroll scrolls both the vi cursor and the viewport by lines: positive
// moves toward history (up), negative toward the live screen (down).
func (t *Terminal) ViScroll(lines int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode == nil {
		return
	}
	last := t.totalLines() - 1
	newLine := t.viMode.cursor.Line - lines
	if newLine < 0 {
		newLine = 0
	}
	if newLine > last {
		newLine = last
	}
	t.viMode.cursor.Line = newLine
	t.viMode.cursor.Col = t.clampCol(t.viMode.cursor.Col, newLine)

	offset := int(t.displayOffset.Load()) + lines
	t.setDisplayOffsetLocked(offset)
}

func (t *Terminal) setDisplayOffsetLocked(offset int) {
	if offset < 0 {
		offset = 0
	}
	if max := t.history.Len(); offset > max {
		offset = max
	}
	t.displayOffset.Store(int32(offset))
}

// ViToggleSelection toggles character-wise visual selection (v) anchored
// at the current vi cursor.
func (t *Terminal) ViToggleSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viToggleSelectionLocked(ViSelectionSimple)
}

// ViToggleLineSelection toggles line-wise visual selection (V) anchored
// at the current vi cursor.
func (t *Terminal) ViToggleLineSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viToggleSelectionLocked(ViSelectionLines)
}

func (t *Terminal) viToggleSelectionLocked(kind ViSelectionType) {
	if t.viMode == nil {
		return
	}
	if t.viMode.selectionActive {
		t.viMode.selectionActive = false
		t.clearNativeSelectionLocked()
		return
	}
	t.viMode.selectionActive = true
	t.viMode.anchor = t.viMode.cursor
	t.viMode.selectionType = kind
}

// ViClearSelection clears an active vi selection without leaving vi mode.
func (t *Terminal) ViClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode == nil {
		return
	}
	t.viMode.selectionActive = false
	t.clearNativeSelectionLocked()
}

// ViSelectionActive reports whether vi visual selection is active.
func (t *Terminal) ViSelectionActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viMode != nil && t.viMode.selectionActive
}

// ViCursorPosition returns the vi cursor's viewport-relative position.
func (t *Terminal) ViCursorPosition() (col, row int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.viMode == nil {
		return 0, 0, false
	}
	col, row = t.toViewport(t.viMode.cursor)
	return col, row, true
}

// ViPendingG reports whether a leading 'g' is awaiting its pair for the
// gg (goto top) motion.
func (t *Terminal) ViPendingG() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viMode != nil && t.viMode.pendingG
}

// ViSetPendingG records a leading 'g' keypress.
func (t *Terminal) ViSetPendingG() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode != nil {
		t.viMode.pendingG = true
	}
}

// ViClearPendingG cancels a pending 'g' without acting on it.
func (t *Terminal) ViClearPendingG() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode != nil {
		t.viMode.pendingG = false
	}
}

// ViGotoTop moves the vi cursor to the top-left of scrollback history
// (the gg motion).
func (t *Terminal) ViGotoTop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode == nil {
		return
	}
	t.viMode.pendingG = false
	t.viMode.cursor = AbsolutePoint{Line: 0, Col: 0}
	t.setDisplayOffsetLocked(t.history.Len())
}

// ViGotoBottom moves the vi cursor to the live screen's current cursor
// row (the G motion).
func (t *Terminal) ViGotoBottom() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode == nil {
		return
	}
	t.viMode.pendingG = false
	x, y := t.screen.CursorPos()
	t.viMode.cursor = AbsolutePoint{Line: t.history.Len() + y, Col: x}
	t.setDisplayOffsetLocked(0)
}

// ViScrollToCursor adjusts the viewport so the vi cursor is visible,
// without moving the cursor itself.
func (t *Terminal) ViScrollToCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viScrollToCursorLocked()
}

func (t *Terminal) viScrollToCursorLocked() {
	if t.viMode == nil {
		return
	}
	top := t.viewportTop()
	bottom := top + t.screen.Height() - 1
	line := t.viMode.cursor.Line

	if line < top {
		t.setDisplayOffsetLocked(int(t.displayOffset.Load()) + (top - line))
	} else if line > bottom {
		t.setDisplayOffsetLocked(int(t.displayOffset.Load()) - (line - bottom))
	}
}

// ViSelectionRange reports the current selection for rendering, in
// viewport-relative coordinates with an exclusive end. When vi visual
// selection isn't active, it falls back to the terminal's native
// mouse-drag selection.
func (t *Terminal) ViSelectionRange() (ViewportRange, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.viMode != nil && t.viMode.selectionActive {
		anchor, cursor := t.viMode.anchor, t.viMode.cursor
		lo, hi := anchor, cursor
		if hi.Line < lo.Line || (hi.Line == lo.Line && hi.Col < lo.Col) {
			lo, hi = hi, lo
		}

		if t.viMode.selectionType == ViSelectionLines {
			_, startRow := t.toViewport(AbsolutePoint{Line: lo.Line})
			_, endRow := t.toViewport(AbsolutePoint{Line: hi.Line})
			return ViewportRange{StartCol: 0, StartRow: startRow, EndCol: t.screen.Width(), EndRow: endRow}, true
		}

		startCol, startRow := t.toViewport(lo)
		endCol, endRow := t.toViewport(hi)
		return ViewportRange{StartCol: startCol, StartRow: startRow, EndCol: endCol + 1, EndRow: endRow}, true
	}

	return t.nativeSelectionRangeLocked()
}

// vi mode search

// ViSetSearch compiles pattern as the active vi-mode search. An empty
// pattern clears the search.
func (t *Terminal) ViSetSearch(pattern string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pattern == "" {
		t.viMode.search = nil
		return nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	if t.viMode == nil {
		t.enterViModeLocked()
	}
	t.viMode.search = &viSearch{re: re, pattern: pattern}
	return nil
}

// ViSearchPattern returns the active search pattern, or "" if none.
func (t *Terminal) ViSearchPattern() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.viMode == nil || t.viMode.search == nil {
		return ""
	}
	return t.viMode.search.pattern
}

// ViSearchActive reports whether a vi-mode search pattern is set.
func (t *Terminal) ViSearchActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viMode != nil && t.viMode.search != nil
}

// gridText renders the whole combined scrollback+screen grid as lines of
// runes, for regex search.
func (t *Terminal) gridText() [][]rune {
	total := t.totalLines()
	out := make([][]rune, total)
	for i := 0; i < total; i++ {
		cells := t.lineAt(i)
		runes := make([]rune, len(cells))
		for j, c := range cells {
			if c.Rune == 0 {
				runes[j] = ' '
			} else {
				runes[j] = c.Rune
			}
		}
		out[i] = runes
	}
	return out
}

// searchFrom finds the next match at or after start (forward) or at or
// before start (backward), scanning line by line.
func (t *Terminal) searchFrom(re *regexp.Regexp, start AbsolutePoint, forward bool) (lo, hi AbsolutePoint, found bool) {
	grid := t.gridText()

	scan := func(line int) (lo, hi AbsolutePoint, found bool) {
		if line < 0 || line >= len(grid) {
			return lo, hi, false
		}
		s := string(grid[line])
		locs := re.FindAllStringIndex(s, -1)
		if forward {
			for _, loc := range locs {
				if line > start.Line || (line == start.Line && loc[0] >= start.Col) {
					return AbsolutePoint{Line: line, Col: loc[0]}, AbsolutePoint{Line: line, Col: loc[1] - 1}, true
				}
			}
		} else {
			for i := len(locs) - 1; i >= 0; i-- {
				loc := locs[i]
				if line < start.Line || (line == start.Line && loc[0] <= start.Col) {
					return AbsolutePoint{Line: line, Col: loc[0]}, AbsolutePoint{Line: line, Col: loc[1] - 1}, true
				}
			}
		}
		return lo, hi, false
	}

	if forward {
		for line := start.Line; line < len(grid); line++ {
			if lo, hi, ok := scan(line); ok {
				return lo, hi, true
			}
		}
	} else {
		for line := start.Line; line >= 0; line-- {
			if lo, hi, ok := scan(line); ok {
				return lo, hi, true
			}
		}
	}
	return lo, hi, false
}

// ViSearchNext moves the vi cursor to the next match after the current
// one, wrapping within the grid and skipping the current match by one
// cell so repeated n presses advance.
func (t *Terminal) ViSearchNext() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viSearchLocked(true)
}

// ViSearchPrev moves the vi cursor to the previous match.
func (t *Terminal) ViSearchPrev() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viSearchLocked(false)
}

func (t *Terminal) viSearchLocked(forward bool) bool {
	if t.viMode == nil || t.viMode.search == nil {
		return false
	}
	start := t.viMode.cursor
	if forward {
		if width := t.screen.Width(); start.Col+1 < width {
			start.Col++
		} else {
			start.Col = 0
			start.Line++
		}
	} else if start.Col > 0 {
		start.Col--
	} else {
		start.Line--
		start.Col = t.screen.Width() - 1
	}

	lo, hi, ok := t.searchFrom(t.viMode.search.re, start, forward)
	if !ok {
		t.viMode.search.hasMatch = false
		return false
	}

	t.viMode.cursor = lo
	t.viMode.search.matchLo = lo
	t.viMode.search.matchHi = hi
	t.viMode.search.hasMatch = true
	t.viScrollToCursorLocked()
	return true
}

// ViSearchMatchRange returns the most recent search match, in
// viewport-relative coordinates with an exclusive end.
func (t *Terminal) ViSearchMatchRange() (ViewportRange, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.viMode == nil || t.viMode.search == nil || !t.viMode.search.hasMatch {
		return ViewportRange{}, false
	}
	startCol, startRow := t.toViewport(t.viMode.search.matchLo)
	endCol, endRow := t.toViewport(t.viMode.search.matchHi)
	return ViewportRange{StartCol: startCol, StartRow: startRow, EndCol: endCol + 1, EndRow: endRow}, true
}

// ViClearSearchMatch clears the search match highlight without clearing
// the search pattern itself.
func (t *Terminal) ViClearSearchMatch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viMode != nil && t.viMode.search != nil {
		t.viMode.search.hasMatch = false
	}
}

// native (mouse-drag) selection, used when vi mode selection isn't active

type nativeSelection struct {
	anchor AbsolutePoint
	cursor AbsolutePoint
	kind   ViSelectionType
}

// StartSelection begins a mouse-drag selection at the given
// viewport-relative cell.
func (t *Terminal) StartSelection(col, row int, kind ViSelectionType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := AbsolutePoint{Line: t.viewportTop() + row, Col: col}
	t.selection = &nativeSelection{anchor: p, cursor: p, kind: kind}
}

// UpdateSelection extends the active mouse-drag selection to the given
// viewport-relative cell.
func (t *Terminal) UpdateSelection(col, row int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selection == nil {
		return
	}
	t.selection.cursor = AbsolutePoint{Line: t.viewportTop() + row, Col: col}
}

// ClearSelection clears any active mouse-drag selection.
func (t *Terminal) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearNativeSelectionLocked()
}

func (t *Terminal) clearNativeSelectionLocked() {
	t.selection = nil
}

// HasSelection reports whether a mouse-drag selection is active.
func (t *Terminal) HasSelection() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection != nil
}

func (t *Terminal) nativeSelectionRangeLocked() (ViewportRange, bool) {
	if t.selection == nil {
		return ViewportRange{}, false
	}
	lo, hi := t.selection.anchor, t.selection.cursor
	if hi.Line < lo.Line || (hi.Line == lo.Line && hi.Col < lo.Col) {
		lo, hi = hi, lo
	}

	if t.selection.kind == ViSelectionLines {
		_, startRow := t.toViewport(AbsolutePoint{Line: lo.Line})
		_, endRow := t.toViewport(AbsolutePoint{Line: hi.Line})
		return ViewportRange{StartCol: 0, StartRow: startRow, EndCol: t.screen.Width(), EndRow: endRow}, true
	}

	startCol, startRow := t.toViewport(lo)
	endCol, endRow := t.toViewport(hi)
	return ViewportRange{StartCol: startCol, StartRow: startRow, EndCol: endCol + 1, EndRow: endRow}, true
}

// SelectionText returns the text currently covered by the native
// mouse-drag selection, or "" if none is active.
func (t *Terminal) SelectionText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.selection == nil {
		return ""
	}
	lo, hi := t.selection.anchor, t.selection.cursor
	if hi.Line < lo.Line || (hi.Line == lo.Line && hi.Col < lo.Col) {
		lo, hi = hi, lo
	}

	grid := t.gridText()
	var out []rune
	for line := lo.Line; line <= hi.Line && line < len(grid); line++ {
		row := grid[line]
		start, end := 0, len(row)
		if t.selection.kind != ViSelectionLines {
			if line == lo.Line {
				start = lo.Col
			}
			if line == hi.Line {
				end = hi.Col + 1
				if end > len(row) {
					end = len(row)
				}
			}
		}
		if start < end {
			out = append(out, row[start:end]...)
		}
		if line < hi.Line {
			out = append(out, '\n')
		}
	}
	return string(out)
}
