package purrvt

import (
	"strings"
	"testing"
)

// rowText flattens a row to a string, skipping padding cells and
// trimming trailing blanks.
func rowText(s *Screen, row int) string {
	line := s.LineAt(row)
	var sb strings.Builder
	for _, cell := range line.Cells {
		if cell.IsPadding() {
			continue
		}
		if cell.Rune == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(cell.String())
	}
	return strings.TrimRight(sb.String(), " ")
}

func newTestScreen(cols, rows int) (*Screen, *Parser) {
	s := NewScreen(cols, rows, 100)
	s.ConsumeDirty() // Drop the initial full-dirty state
	return s, NewParser(s)
}

func TestPlainWrite(t *testing.T) {
	s, p := newTestScreen(80, 24)
	p.ParseString("Hello")

	if got := rowText(s, 0); got != "Hello" {
		t.Fatalf("row 0 = %q, want %q", got, "Hello")
	}
	col, row := s.CursorPosition()
	if col != 5 || row != 0 {
		t.Fatalf("cursor = (%d,%d), want (5,0)", col, row)
	}
	dirty := s.ConsumeDirty()
	if len(dirty) != 1 || dirty[0] != 0 {
		t.Fatalf("dirty = %v, want [0]", dirty)
	}
}

func TestSGRColorReset(t *testing.T) {
	s, p := newTestScreen(80, 24)
	p.ParseString("\x1b[1;31mRed\x1b[0m!")

	want := Attributes{Fg: StandardColor(1), Bg: DefaultBackground, Flags: AttrBold}
	for col := 0; col < 3; col++ {
		cell := s.LineAt(0).Cells[col]
		if cell.Attr != want {
			t.Fatalf("cell %d attr = %+v, want %+v", col, cell.Attr, want)
		}
	}
	bang := s.LineAt(0).Cells[3]
	if bang.Rune != '!' || bang.Attr != DefaultAttributes() {
		t.Fatalf("cell 3 = %+v, want default-attr '!'", bang)
	}
}

func TestSGRExtendedColors(t *testing.T) {
	s, p := newTestScreen(80, 24)

	p.ParseString("\x1b[38;5;196ma")
	if got := s.LineAt(0).Cells[0].Attr.Fg; got != PaletteColor(196) {
		t.Fatalf("38;5;196 fg = %+v", got)
	}
	p.ParseString("\x1b[48;2;10;20;30mb")
	if got := s.LineAt(0).Cells[1].Attr.Bg; got != TrueColor(10, 20, 30) {
		t.Fatalf("48;2 bg = %+v", got)
	}
	// Colon subparameter forms
	p.ParseString("\x1b[38:5:100mc")
	if got := s.LineAt(0).Cells[2].Attr.Fg; got != PaletteColor(100) {
		t.Fatalf("38:5:100 fg = %+v", got)
	}
	p.ParseString("\x1b[38:2::1:2:3md")
	if got := s.LineAt(0).Cells[3].Attr.Fg; got != TrueColor(1, 2, 3) {
		t.Fatalf("38:2::1:2:3 fg = %+v", got)
	}
	// Unknown parameters are skipped without aborting the rest
	p.ParseString("\x1b[99;4me")
	if !s.LineAt(0).Cells[4].Attr.Has(AttrUnderline) {
		t.Fatalf("underline lost after unknown SGR param")
	}
}

func TestClearAndHome(t *testing.T) {
	s, p := newTestScreen(10, 4)
	p.ParseString("one\r\ntwo\r\nthree")
	p.ParseString("\x1b[2J\x1b[H")

	for row := 0; row < 4; row++ {
		if got := rowText(s, row); got != "" {
			t.Fatalf("row %d = %q after 2J", row, got)
		}
	}
	col, row := s.CursorPosition()
	if col != 0 || row != 0 {
		t.Fatalf("cursor = (%d,%d), want (0,0)", col, row)
	}
	if dirty := s.ConsumeDirty(); len(dirty) != 4 {
		t.Fatalf("dirty = %v, want all 4 rows", dirty)
	}
}

func TestBell(t *testing.T) {
	s, p := newTestScreen(80, 24)
	bells := 0
	p.Bell = func() { bells++ }
	p.ParseString("\x07")

	if bells != 1 {
		t.Fatalf("bells = %d, want 1", bells)
	}
	if got := rowText(s, 0); got != "" {
		t.Fatalf("bell mutated row 0: %q", got)
	}
	if dirty := s.ConsumeDirty(); len(dirty) != 0 {
		t.Fatalf("bell dirtied rows %v", dirty)
	}
}

func TestCursorMovement(t *testing.T) {
	s, p := newTestScreen(20, 10)
	p.ParseString("\x1b[5;7H")
	col, row := s.CursorPosition()
	if col != 6 || row != 4 {
		t.Fatalf("CUP: cursor = (%d,%d), want (6,4)", col, row)
	}
	p.ParseString("\x1b[2A\x1b[3C")
	col, row = s.CursorPosition()
	if col != 9 || row != 2 {
		t.Fatalf("CUU+CUF: cursor = (%d,%d), want (9,2)", col, row)
	}
	p.ParseString("\x1b[10G\x1b[3d")
	col, row = s.CursorPosition()
	if col != 9 || row != 2 {
		t.Fatalf("CHA+VPA: cursor = (%d,%d), want (9,2)", col, row)
	}
}

func TestMalformedSequencesDropped(t *testing.T) {
	s, p := newTestScreen(20, 5)
	// CAN aborts mid-CSI, SUB aborts mid-OSC, a junk escape is dropped
	p.ParseString("\x1b[12\x18A")
	p.ParseString("\x1b]0;title\x1aB")
	p.ParseString("\x1b\x7fC")
	if got := rowText(s, 0); got != "ABC" {
		t.Fatalf("row = %q, want %q", got, "ABC")
	}
}

func TestC1Controls(t *testing.T) {
	s, p := newTestScreen(20, 5)
	// 0x9B is an 8-bit CSI; 0x8D is RI
	p.Parse([]byte{'x', 0x9B, '3', ';', '5', 'H'})
	col, row := s.CursorPosition()
	if col != 4 || row != 2 {
		t.Fatalf("8-bit CSI: cursor = (%d,%d), want (4,2)", col, row)
	}
	p.Parse([]byte{0x8D})
	_, row = s.CursorPosition()
	if row != 1 {
		t.Fatalf("8-bit RI: row = %d, want 1", row)
	}
}

func TestOSCTitle(t *testing.T) {
	_, p := newTestScreen(20, 5)
	var titles []string
	p.Title = func(s string) { titles = append(titles, s) }

	p.ParseString("\x1b]0;bel title\x07")
	p.ParseString("\x1b]2;st title\x1b\\")
	if len(titles) != 2 || titles[0] != "bel title" || titles[1] != "st title" {
		t.Fatalf("titles = %q", titles)
	}
}

func TestOSCPaletteAndDefaults(t *testing.T) {
	_, p := newTestScreen(20, 5)
	var setIdx int
	var setColor Color
	p.PaletteSet = func(i int, c Color) { setIdx, setColor = i, c }
	var defFg Color
	p.DefaultColor = func(isFg bool, c Color) {
		if isFg {
			defFg = c
		}
	}

	p.ParseString("\x1b]4;1;#ff0000\x07")
	if setIdx != 1 || setColor != TrueColor(255, 0, 0) {
		t.Fatalf("palette set = %d %+v", setIdx, setColor)
	}
	p.ParseString("\x1b]10;rgb:12/34/56\x07")
	if defFg != TrueColor(0x12, 0x34, 0x56) {
		t.Fatalf("default fg = %+v", defFg)
	}
}

func TestInvalidUTF8(t *testing.T) {
	s, p := newTestScreen(20, 5)
	// Truncated 3-byte sequence resynchronizes on 'A'
	p.Parse([]byte{0xE2, 0x82, 'A'})
	line := s.LineAt(0)
	if line.Cells[0].Rune != 0xFFFD {
		t.Fatalf("cell 0 = %q, want U+FFFD", line.Cells[0].Rune)
	}
	if line.Cells[1].Rune != 'A' {
		t.Fatalf("cell 1 = %q, want 'A'", line.Cells[1].Rune)
	}
	// Stray continuation byte
	p.Parse([]byte{0xBF})
	if line = s.LineAt(0); line.Cells[2].Rune != 0xFFFD {
		t.Fatalf("cell 2 = %q, want U+FFFD", line.Cells[2].Rune)
	}
}

func TestUTF8MultiByte(t *testing.T) {
	s, p := newTestScreen(20, 5)
	p.ParseString("é€😀")
	line := s.LineAt(0)
	if line.Cells[0].Rune != 'é' || line.Cells[1].Rune != '€' {
		t.Fatalf("cells = %q %q", line.Cells[0].Rune, line.Cells[1].Rune)
	}
	if line.Cells[2].Rune != '😀' || line.Cells[2].Width != 2 || !line.Cells[3].IsPadding() {
		t.Fatalf("emoji cell = %+v / %+v", line.Cells[2], line.Cells[3])
	}
}

func TestCombiningMarks(t *testing.T) {
	s, p := newTestScreen(20, 5)
	p.ParseString("e\u0301x")
	line := s.LineAt(0)
	if line.Cells[0].String() != "e\u0301" {
		t.Fatalf("cell 0 = %q, want e + combining acute", line.Cells[0].String())
	}
	if line.Cells[1].Rune != 'x' {
		t.Fatalf("cell 1 = %q, want 'x'", line.Cells[1].Rune)
	}
}

func TestDECALN(t *testing.T) {
	s, p := newTestScreen(6, 3)
	p.ParseString("\x1b#8")
	for row := 0; row < 3; row++ {
		if got := rowText(s, row); got != "EEEEEE" {
			t.Fatalf("row %d = %q", row, got)
		}
	}
	col, row := s.CursorPosition()
	if col != 0 || row != 0 {
		t.Fatalf("cursor = (%d,%d), want home", col, row)
	}
}

func TestDSRCursorReport(t *testing.T) {
	_, p := newTestScreen(20, 5)
	var reply string
	p.Respond = func(s string) { reply += s }
	p.ParseString("\x1b[3;4H\x1b[6n")
	if reply != "\x1b[3;4R" {
		t.Fatalf("CPR = %q", reply)
	}
}

func TestDECRQSSScrollRegion(t *testing.T) {
	_, p := newTestScreen(20, 10)
	var reply string
	p.Respond = func(s string) { reply += s }
	p.ParseString("\x1b[3;8r")
	p.ParseString("\x1bP$qr\x1b\\")
	if reply != "\x1bP1$r3;8r\x1b\\" {
		t.Fatalf("DECRPSS = %q", reply)
	}
}

func TestDCSDiscarded(t *testing.T) {
	s, p := newTestScreen(20, 5)
	p.ParseString("\x1bP1;2|some data\x1b\\after")
	if got := rowText(s, 0); got != "after" {
		t.Fatalf("row = %q, want %q", got, "after")
	}
}

func TestSOSPMAPCDiscarded(t *testing.T) {
	s, p := newTestScreen(20, 5)
	p.ParseString("\x1b_hidden payload\x1b\\ok")
	if got := rowText(s, 0); got != "ok" {
		t.Fatalf("row = %q, want %q", got, "ok")
	}
}

// gridsEqual compares every cell plus the cursor of two screens
func gridsEqual(t *testing.T, a, b *Screen) bool {
	t.Helper()
	acols, arows := a.Size()
	bcols, brows := b.Size()
	if acols != bcols || arows != brows {
		return false
	}
	for row := 0; row < arows; row++ {
		la, lb := a.LineAt(row), b.LineAt(row)
		if la.Wrapped != lb.Wrapped {
			return false
		}
		for col := 0; col < acols; col++ {
			if la.Cells[col] != lb.Cells[col] {
				return false
			}
		}
	}
	ca, cb := a.CursorSnapshot(), b.CursorSnapshot()
	return ca == cb
}

func TestChunkedParseEquivalence(t *testing.T) {
	input := []byte("plain \x1b[1;38;5;208mtext\x1b[0m 世界 é" +
		"\x1b]2;split title\x1b\\" +
		"\x1b[3;8r\x1b[4;2H\x1b[2Ktail\x07" +
		"\x1bP$qm\x1b\\" +
		"\x1b[?1049hALT\x1b[?1049l\x1b[38:2::9:8:7mend")

	whole, pw := newTestScreen(20, 10)
	pw.Parse(input)

	for cut := 1; cut < len(input); cut++ {
		split, ps := newTestScreen(20, 10)
		ps.Parse(input[:cut])
		ps.Parse(input[cut:])
		if !gridsEqual(t, whole, split) {
			t.Fatalf("chunked parse diverged at cut %d", cut)
		}
	}
}
