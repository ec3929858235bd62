package purrvt

// --- Character Writing ---

// WriteRune writes a printable rune at the cursor, handling combining
// marks, wide characters, insert mode, and the deferred wrap.
func (s *Screen) WriteRune(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if IsCombiningMark(r) {
		s.attachCombiningMark(r)
		return
	}

	w := RuneCellWidth(r)
	if w == 0 {
		// Zero-width, non-combining: nothing to place
		return
	}

	if s.cur.PendingWrap {
		if s.autoWrap {
			s.lines[s.cur.Row].Wrapped = true
			s.cur.Col = 0
			s.index()
		}
		s.cur.PendingWrap = false
	}

	// A wide character that no longer fits on the row either wraps
	// whole (DECAWM on) or degrades to a blank (DECAWM off)
	if w == 2 && s.cur.Col == s.cols-1 {
		if s.autoWrap {
			s.putCell(s.cur.Col, s.cur.Row, blankCell(s.cur.Attr.Bg))
			s.markDirty(s.cur.Row)
			s.lines[s.cur.Row].Wrapped = true
			s.cur.Col = 0
			s.index()
		} else {
			s.putCell(s.cur.Col, s.cur.Row, blankCell(s.cur.Attr.Bg))
			s.markDirty(s.cur.Row)
			return
		}
	}

	if s.insertMode {
		s.shiftRight(s.cur.Row, s.cur.Col, w)
	}

	cell := Cell{Rune: r, Width: int8(w), Attr: s.cur.Attr}
	s.putCell(s.cur.Col, s.cur.Row, cell)
	if w == 2 {
		s.putCell(s.cur.Col+1, s.cur.Row, paddingCell(s.cur.Attr))
	}
	s.markDirty(s.cur.Row)

	s.cur.Col += w
	if s.cur.Col >= s.cols {
		s.cur.Col = s.cols - 1
		if s.autoWrap {
			s.cur.PendingWrap = true
		}
	}
}

// putCell writes one cell, keeping wide/padding pairs intact: stomping
// either half of a pair blanks the orphaned other half.
func (s *Screen) putCell(col, row int, c Cell) {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return
	}
	line := s.lines[row].Cells
	old := line[col]
	if old.IsPadding() && col > 0 && line[col-1].Width == 2 {
		line[col-1] = blankCell(line[col-1].Attr.Bg)
	}
	if old.Width == 2 && col+1 < s.cols && line[col+1].IsPadding() {
		line[col+1] = blankCell(old.Attr.Bg)
	}
	line[col] = c
}

// shiftRight makes room for n cells at col; the rightmost n fall off
func (s *Screen) shiftRight(row, col, n int) {
	line := s.lines[row].Cells
	if col >= s.cols {
		return
	}
	if col+n < s.cols {
		copy(line[col+n:], line[col:s.cols-n])
	}
	blank := blankCell(s.cur.Attr.Bg)
	for i := col; i < col+n && i < s.cols; i++ {
		line[i] = blank
	}
	// A pair split across the right edge leaves a lone wide cell
	if line[s.cols-1].Width == 2 {
		line[s.cols-1] = blankCell(line[s.cols-1].Attr.Bg)
	}
}

// attachCombiningMark appends a combining mark to the most recently
// written cell. With the wrap pending the cursor still sits on that
// cell; otherwise it is one column back, possibly on the previous row.
func (s *Screen) attachCombiningMark(r rune) {
	col, row := s.cur.Col, s.cur.Row
	if !s.cur.PendingWrap {
		col--
		if col < 0 {
			if row == 0 {
				return
			}
			row--
			col = s.cols - 1
		}
	}
	// Step off a padding cell onto its wide base
	if s.cellAt(col, row).IsPadding() && col > 0 {
		col--
	}
	cell := &s.lines[row].Cells[col]
	if cell.Rune == 0 {
		return
	}
	if countRunes(cell.Combining) >= maxCombiningPerCell {
		return
	}
	cell.Combining += string(r)
	s.markDirty(row)
}

func countRunes(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// --- Line Navigation ---

// index moves the cursor down one row, scrolling the region when the
// cursor sits on its bottom. Lock must be held.
func (s *Screen) index() {
	if s.cur.Row == s.bottom {
		s.scrollRegionUp(1)
	} else if s.cur.Row < s.rows-1 {
		s.cur.Row++
	}
}

// LineFeed handles LF (and VT/FF, which behave identically)
func (s *Screen) LineFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	s.index()
}

// ReverseIndex moves the cursor up one row, scrolling the region down
// when the cursor sits on its top (RI).
func (s *Screen) ReverseIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	if s.cur.Row == s.top {
		s.scrollRegionDown(1)
	} else if s.cur.Row > 0 {
		s.cur.Row--
	}
}

// NextLine handles NEL: carriage return plus index
func (s *Screen) NextLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	s.cur.Col = 0
	s.index()
}

// CarriageReturn moves the cursor to column 0
func (s *Screen) CarriageReturn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	s.cur.Col = 0
}

// Backspace moves the cursor left one column, stopping at the margin
func (s *Screen) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	if s.cur.Col > 0 {
		s.cur.Col--
	}
}

// --- Tab Stops ---

// Tab moves the cursor to the next tab stop, clamped to the last column
func (s *Screen) Tab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	for c := s.cur.Col + 1; c < s.cols; c++ {
		if s.tabs[c] {
			s.cur.Col = c
			return
		}
	}
	s.cur.Col = s.cols - 1
}

// SetTabStop sets a stop at the cursor column (HTS)
func (s *Screen) SetTabStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[s.cur.Col] = true
}

// ClearTabStop handles TBC: mode 0 clears the stop at the cursor,
// mode 3 clears all stops.
func (s *Screen) ClearTabStop(mode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case 0:
		delete(s.tabs, s.cur.Col)
	case 3:
		s.tabs = make(map[int]bool)
	}
}

// --- Alignment Test ---

// AlignmentFill fills the grid with 'E' and homes the cursor (DECALN)
func (s *Screen) AlignmentFill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell := Cell{Rune: 'E', Width: 1, Attr: DefaultAttributes()}
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			s.lines[r].Cells[c] = cell
		}
		s.lines[r].Wrapped = false
	}
	s.top = 0
	s.bottom = s.rows - 1
	s.cur.Col, s.cur.Row = 0, 0
	s.cur.PendingWrap = false
	s.markAllDirty()
}
