package purrvt

// --- Terminal Modes ---

// SetOriginMode sets DECOM; cursor motion becomes region-relative and
// the cursor homes.
func (s *Screen) SetOriginMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originMode = enabled
	s.cur.PendingWrap = false
	s.cur.Col = 0
	if enabled {
		s.cur.Row = s.top
	} else {
		s.cur.Row = 0
	}
}

// OriginMode returns the DECOM state
func (s *Screen) OriginMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.originMode
}

// SetAutoWrap sets DECAWM (mode 7). When disabled the cursor parks at
// the last column and characters overwrite it.
func (s *Screen) SetAutoWrap(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoWrap = enabled
	if !enabled {
		s.cur.PendingWrap = false
	}
}

// AutoWrap returns the DECAWM state
func (s *Screen) AutoWrap() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoWrap
}

// SetInsertMode sets IRM: printed characters shift the rest of the row
// right instead of overwriting.
func (s *Screen) SetInsertMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertMode = enabled
}

// InsertMode returns the IRM state
func (s *Screen) InsertMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insertMode
}

// SetAppCursorKeys sets DECCKM; the input adapter consults this when
// encoding arrow keys.
func (s *Screen) SetAppCursorKeys(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appCursorKeys = enabled
}

// AppCursorKeys returns the DECCKM state
func (s *Screen) AppCursorKeys() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appCursorKeys
}

// SetBracketedPaste sets mode 2004; hosts wrap pasted text in
// ESC[200~ / ESC[201~ while it is on.
func (s *Screen) SetBracketedPaste(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bracketedPaste = enabled
}

// BracketedPaste returns the bracketed paste state
func (s *Screen) BracketedPaste() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bracketedPaste
}

// --- Alternate Screen ---

// EnterAlt switches to the alternate grid, cleared, optionally saving
// the cursor first (mode 1049). The alternate grid never feeds the
// scrollback. A second enter is a no-op.
func (s *Screen) EnterAlt(saveCursor bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.altActive {
		return
	}
	if saveCursor {
		s.saveCursorInternal()
	}
	s.lines, s.inactive = s.inactive, s.lines
	s.altActive = true
	for i := range s.lines {
		s.lines[i] = newLine(s.cols, s.cur.Attr.Bg)
	}
	s.cur.Col, s.cur.Row = 0, 0
	s.cur.PendingWrap = false
	s.markAllDirty()
}

// ExitAlt switches back to the primary grid, whose contents are exactly
// as they were left, optionally restoring the saved cursor (mode 1049).
func (s *Screen) ExitAlt(restoreCursor bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.altActive {
		return
	}
	// Leave the alternate grid cleared for the next entry
	for i := range s.lines {
		s.lines[i] = newLine(s.cols, DefaultBackground)
	}
	s.lines, s.inactive = s.inactive, s.lines
	s.altActive = false
	if restoreCursor {
		s.restoreCursorInternal()
	}
	s.cur.PendingWrap = false
	s.markAllDirty()
}
