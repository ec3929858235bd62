package purrvt

// --- Cursor Movement ---

// CursorPosition returns the cursor column and row
func (s *Screen) CursorPosition() (col, row int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Col, s.cur.Row
}

// SetCursorPos places the cursor at an absolute position (CUP/HVP,
// already 0-based). With origin mode on, row is relative to the region
// top and clamped inside the region.
func (s *Screen) SetCursorPos(col, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	if s.originMode {
		row += s.top
		if row > s.bottom {
			row = s.bottom
		}
		if row < s.top {
			row = s.top
		}
	}
	s.cur.Col = clamp(col, 0, s.cols-1)
	s.cur.Row = clamp(row, 0, s.rows-1)
}

// SetCursorCol moves the cursor to an absolute column (CHA)
func (s *Screen) SetCursorCol(col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	s.cur.Col = clamp(col, 0, s.cols-1)
}

// SetCursorRow moves the cursor to an absolute row (VPA), origin-aware
func (s *Screen) SetCursorRow(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	if s.originMode {
		row += s.top
		if row > s.bottom {
			row = s.bottom
		}
	}
	s.cur.Row = clamp(row, 0, s.rows-1)
}

// MoveCursorUp moves up n rows, stopping at the region top (CUU)
func (s *Screen) MoveCursorUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	limit := 0
	if s.cur.Row >= s.top {
		limit = s.top
	}
	s.cur.Row = clamp(s.cur.Row-n, limit, s.rows-1)
}

// MoveCursorDown moves down n rows, stopping at the region bottom (CUD)
func (s *Screen) MoveCursorDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	limit := s.rows - 1
	if s.cur.Row <= s.bottom {
		limit = s.bottom
	}
	s.cur.Row = clamp(s.cur.Row+n, 0, limit)
}

// MoveCursorForward moves right n columns (CUF)
func (s *Screen) MoveCursorForward(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	s.cur.Col = clamp(s.cur.Col+n, 0, s.cols-1)
}

// MoveCursorBackward moves left n columns (CUB)
func (s *Screen) MoveCursorBackward(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.PendingWrap = false
	s.cur.Col = clamp(s.cur.Col-n, 0, s.cols-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- Save / Restore ---

// SaveCursor records position, attributes and origin mode (DECSC).
// Each grid keeps its own slot.
func (s *Screen) SaveCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCursorInternal()
}

func (s *Screen) saveCursorInternal() {
	slot := s.savedSlot()
	s.saved[slot] = SavedCursor{
		Col:    s.cur.Col,
		Row:    s.cur.Row,
		Attr:   s.cur.Attr,
		Origin: s.originMode,
		set:    true,
	}
}

// RestoreCursor restores the DECSC bundle; with nothing saved it homes
// the cursor with default attributes (DECRC).
func (s *Screen) RestoreCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreCursorInternal()
}

func (s *Screen) restoreCursorInternal() {
	s.cur.PendingWrap = false
	saved := s.saved[s.savedSlot()]
	if !saved.set {
		s.cur.Col, s.cur.Row = 0, 0
		s.cur.Attr = DefaultAttributes()
		s.originMode = false
		return
	}
	s.cur.Col = clamp(saved.Col, 0, s.cols-1)
	s.cur.Row = clamp(saved.Row, 0, s.rows-1)
	s.cur.Attr = saved.Attr
	s.originMode = saved.Origin
}

func (s *Screen) savedSlot() int {
	if s.altActive {
		return 1
	}
	return 0
}

// --- Cursor Presentation ---

// SetCursorVisible sets cursor visibility (DECTCEM)
func (s *Screen) SetCursorVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Visible = visible
}

// SetCursorStyle sets the cursor shape and blink (DECSCUSR)
func (s *Screen) SetCursorStyle(style CursorStyle, blink bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Style = style
	s.cur.Blink = blink
}

// --- Current Attributes (SGR state) ---

// SetForeground sets the current foreground color
func (s *Screen) SetForeground(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Attr.Fg = c
}

// SetBackground sets the current background color
func (s *Screen) SetBackground(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Attr.Bg = c
}

// SetFlag sets or clears one style flag
func (s *Screen) SetFlag(f AttrFlag, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.cur.Attr.Flags |= f
	} else {
		s.cur.Attr.Flags &^= f
	}
}

// ResetAttributes restores default colors and clears all flags (SGR 0)
func (s *Screen) ResetAttributes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Attr = DefaultAttributes()
}
