package purrvt

// --- Scroll Region ---

// SetScrollRegion sets the DECSTBM margins (0-based, inclusive).
// Invalid bounds reset to the full grid; the cursor homes either way.
func (s *Screen) SetScrollRegion(top, bottom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom >= s.rows {
		bottom = s.rows - 1
	}
	if top >= bottom {
		top = 0
		bottom = s.rows - 1
	}
	s.top = top
	s.bottom = bottom
	s.cur.PendingWrap = false
	s.cur.Col = 0
	if s.originMode {
		s.cur.Row = s.top
	} else {
		s.cur.Row = 0
	}
}

// scrollRegionUp scrolls the region up n lines. The line leaving at the
// region top is retired into the scrollback only when the region starts
// at row 0 on the primary grid. Lock must be held.
func (s *Screen) scrollRegionUp(n int) {
	if n < 1 {
		return
	}
	if n > s.bottom-s.top+1 {
		n = s.bottom - s.top + 1
	}
	for i := 0; i < n; i++ {
		if s.top == 0 && !s.altActive {
			s.scrollback.Push(s.lines[s.top])
		}
		copy(s.lines[s.top:s.bottom], s.lines[s.top+1:s.bottom+1])
		s.lines[s.bottom] = newLine(s.cols, s.cur.Attr.Bg)
	}
	s.cur.PendingWrap = false
	s.markRange(s.top, s.bottom)
}

// scrollRegionDown scrolls the region down n lines; nothing is retired.
// Lock must be held.
func (s *Screen) scrollRegionDown(n int) {
	if n < 1 {
		return
	}
	if n > s.bottom-s.top+1 {
		n = s.bottom - s.top + 1
	}
	for i := 0; i < n; i++ {
		copy(s.lines[s.top+1:s.bottom+1], s.lines[s.top:s.bottom])
		s.lines[s.top] = newLine(s.cols, s.cur.Attr.Bg)
	}
	s.cur.PendingWrap = false
	s.markRange(s.top, s.bottom)
}

// ScrollUp scrolls the region up n lines (SU)
func (s *Screen) ScrollUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollRegionUp(n)
}

// ScrollDown scrolls the region down n lines (SD)
func (s *Screen) ScrollDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollRegionDown(n)
}

// --- Line Insert/Delete ---

// InsertLines inserts n blank lines at the cursor row, pushing lines
// below it toward the region bottom (IL). Outside the region it is a
// no-op, per DEC behavior.
func (s *Screen) InsertLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur.Row < s.top || s.cur.Row > s.bottom {
		return
	}
	if n > s.bottom-s.cur.Row+1 {
		n = s.bottom - s.cur.Row + 1
	}
	for i := 0; i < n; i++ {
		copy(s.lines[s.cur.Row+1:s.bottom+1], s.lines[s.cur.Row:s.bottom])
		s.lines[s.cur.Row] = newLine(s.cols, s.cur.Attr.Bg)
	}
	s.cur.PendingWrap = false
	s.markRange(s.cur.Row, s.bottom)
}

// DeleteLines deletes n lines at the cursor row, pulling lines up from
// the region bottom (DL). Outside the region it is a no-op.
func (s *Screen) DeleteLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur.Row < s.top || s.cur.Row > s.bottom {
		return
	}
	if n > s.bottom-s.cur.Row+1 {
		n = s.bottom - s.cur.Row + 1
	}
	for i := 0; i < n; i++ {
		copy(s.lines[s.cur.Row:s.bottom], s.lines[s.cur.Row+1:s.bottom+1])
		s.lines[s.bottom] = newLine(s.cols, s.cur.Attr.Bg)
	}
	s.cur.PendingWrap = false
	s.markRange(s.cur.Row, s.bottom)
}
