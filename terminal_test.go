package purrvt

import (
	"errors"
	"testing"
)

func openTerminal(t *testing.T, opts Options) *Terminal {
	t.Helper()
	term := NewTerminal(opts)
	if err := term.Open(nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	return term
}

func TestLifecycleErrors(t *testing.T) {
	term := NewTerminal(Options{})
	if err := term.Write([]byte("x")); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("write before open = %v, want ErrNotOpen", err)
	}
	if err := term.Resize(10, 10); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("resize before open = %v, want ErrNotOpen", err)
	}
	if err := term.Open(nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := term.Open(nil); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("second open = %v, want ErrAlreadyOpen", err)
	}
	term.Dispose()
	if err := term.Write([]byte("x")); !errors.Is(err, ErrDisposed) {
		t.Fatalf("write after dispose = %v, want ErrDisposed", err)
	}
	if err := term.Open(nil); !errors.Is(err, ErrDisposed) {
		t.Fatalf("open after dispose = %v, want ErrDisposed", err)
	}
	term.Dispose() // Idempotent
}

func TestDefaults(t *testing.T) {
	term := openTerminal(t, Options{})
	defer term.Dispose()
	cols, rows := term.Dimensions()
	if cols != 80 || rows != 24 {
		t.Fatalf("default dimensions = %dx%d, want 80x24", cols, rows)
	}
}

func TestResizeEvent(t *testing.T) {
	term := openTerminal(t, Options{})
	defer term.Dispose()

	var events []ResizeEvent
	sub := term.OnResize(func(ev ResizeEvent) { events = append(events, ev) })
	defer sub.Dispose()

	if err := term.Resize(100, 30); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if len(events) != 1 || events[0] != (ResizeEvent{Cols: 100, Rows: 30}) {
		t.Fatalf("events = %+v, want one {100 30}", events)
	}
	cols, rows := term.Dimensions()
	if cols != 100 || rows != 30 {
		t.Fatalf("dimensions = %dx%d", cols, rows)
	}
	for row := 0; row < rows; row++ {
		if got := len(term.LineAt(row).Cells); got != 100 {
			t.Fatalf("row %d width = %d, want 100", row, got)
		}
	}

	// Identical dimensions: no event
	if err := term.Resize(100, 30); err != nil {
		t.Fatalf("no-op resize: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("no-op resize fired an event")
	}
	if err := term.Resize(0, 30); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("resize(0,30) = %v, want ErrInvalidDimensions", err)
	}
}

func TestBellEvent(t *testing.T) {
	term := openTerminal(t, Options{})
	defer term.Dispose()

	bells := 0
	sub := term.OnBell(func() { bells++ })
	term.ConsumeDirty()

	if err := term.Write([]byte("\x07")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if bells != 1 {
		t.Fatalf("bells = %d, want 1", bells)
	}
	if dirty := term.ConsumeDirty(); len(dirty) != 0 {
		t.Fatalf("bell dirtied %v", dirty)
	}
	sub.Dispose()
	term.Write([]byte("\x07"))
	if bells != 1 {
		t.Fatalf("disposed subscription still fired")
	}
}

func TestSubscriptionDisposeAfterTerminalDispose(t *testing.T) {
	term := openTerminal(t, Options{})
	sub := term.OnData(func(string) {})
	term.Dispose()
	sub.Dispose() // Must not panic
}

func TestWriteln(t *testing.T) {
	term := openTerminal(t, Options{Cols: 20, Rows: 5})
	defer term.Dispose()
	if err := term.Writeln("hi"); err != nil {
		t.Fatalf("writeln: %v", err)
	}
	cur := term.CursorSnapshot()
	if cur.Col != 0 || cur.Row != 1 {
		t.Fatalf("cursor = (%d,%d) after writeln, want (0,1)", cur.Col, cur.Row)
	}
}

func TestSendKeyDefaultEmitsData(t *testing.T) {
	term := openTerminal(t, Options{Cols: 20, Rows: 5})
	defer term.Dispose()
	term.ConsumeDirty()

	var data []string
	sub := term.OnData(func(s string) { data = append(data, s) })
	defer sub.Dispose()

	term.SendKey([]byte("ls\r"))
	if len(data) != 1 || data[0] != "ls\r" {
		t.Fatalf("data = %q", data)
	}
	if dirty := term.ConsumeDirty(); len(dirty) != 0 {
		t.Fatalf("loopback-off key input touched the grid: %v", dirty)
	}
}

func TestSendKeyLoopback(t *testing.T) {
	term := openTerminal(t, Options{Cols: 20, Rows: 5, Loopback: true})
	defer term.Dispose()

	fired := false
	sub := term.OnData(func(string) { fired = true })
	defer sub.Dispose()

	term.SendKey([]byte("echo"))
	if fired {
		t.Fatalf("loopback emitted data")
	}
	if got := term.LineAt(0).Cells[0].Rune; got != 'e' {
		t.Fatalf("loopback did not reach the grid: %q", got)
	}
}

func TestQueryRepliesReachData(t *testing.T) {
	term := openTerminal(t, Options{Cols: 20, Rows: 5})
	defer term.Dispose()
	var replies []string
	sub := term.OnData(func(s string) { replies = append(replies, s) })
	defer sub.Dispose()

	term.Write([]byte("\x1b[6n"))
	if len(replies) != 1 || replies[0] != "\x1b[1;1R" {
		t.Fatalf("replies = %q", replies)
	}
}

func TestTitleEvent(t *testing.T) {
	term := openTerminal(t, Options{})
	defer term.Dispose()
	var titles []string
	sub := term.OnTitle(func(s string) { titles = append(titles, s) })
	defer sub.Dispose()

	term.Write([]byte("\x1b]2;shell\x07"))
	if len(titles) != 1 || titles[0] != "shell" {
		t.Fatalf("titles = %q", titles)
	}
}

func TestClearKeepsScrollback(t *testing.T) {
	term := openTerminal(t, Options{Cols: 10, Rows: 2, Scrollback: 10})
	defer term.Dispose()
	term.WriteString("one\r\ntwo\r\nthree")
	if term.ScrollbackLen() == 0 {
		t.Fatalf("expected scrollback before clear")
	}
	before := term.ScrollbackLen()
	term.Clear()
	if got := term.ScrollbackLen(); got != before {
		t.Fatalf("clear changed scrollback: %d -> %d", before, got)
	}
	if got := term.LineAt(0).Cells[0].Rune; got != ' ' {
		t.Fatalf("clear left content: %q", got)
	}
}

func TestResetClearsScrollbackAndAttrs(t *testing.T) {
	term := openTerminal(t, Options{Cols: 10, Rows: 2, Scrollback: 10})
	defer term.Dispose()
	term.WriteString("\x1b[1;35mone\r\ntwo\r\nthree")
	term.Reset()
	if got := term.ScrollbackLen(); got != 0 {
		t.Fatalf("scrollback = %d after reset", got)
	}
	cur := term.CursorSnapshot()
	if cur.Col != 0 || cur.Row != 0 || cur.Attr != DefaultAttributes() {
		t.Fatalf("cursor after reset = %+v", cur)
	}
	term.WriteString("x")
	if got := term.LineAt(0).Cells[0].Attr; got != DefaultAttributes() {
		t.Fatalf("attrs survived reset: %+v", got)
	}
}

func TestSGRResetLaw(t *testing.T) {
	term := openTerminal(t, Options{Cols: 20, Rows: 5})
	defer term.Dispose()
	term.WriteString("\x1b[1;4;33mstyled\x1b[0mplain")
	line := term.LineAt(0)
	if line.Cells[6].Attr != DefaultAttributes() {
		t.Fatalf("post-reset attrs = %+v", line.Cells[6].Attr)
	}
}

type testAddon struct {
	activated *Terminal
	disposed  bool
}

func (a *testAddon) Activate(t *Terminal) { a.activated = t }
func (a *testAddon) Dispose()             { a.disposed = true }

func TestAddonLifecycle(t *testing.T) {
	term := openTerminal(t, Options{})
	addon := &testAddon{}
	term.LoadAddon(addon)
	if addon.activated != term {
		t.Fatalf("addon not activated with the terminal handle")
	}
	term.Dispose()
	if !addon.disposed {
		t.Fatalf("addon not disposed with the terminal")
	}
}

func TestPointerSelection(t *testing.T) {
	term := openTerminal(t, Options{Cols: 20, Rows: 5})
	defer term.Dispose()
	term.WriteString("select me")

	var texts []string
	sub := term.OnSelectionChanged(func(s string) { texts = append(texts, s) })
	defer sub.Dispose()

	term.Pointer(PointerEvent{Kind: PointerPress, Col: 0, Row: 0})
	term.Pointer(PointerEvent{Kind: PointerMove, Col: 5, Row: 0})
	term.Pointer(PointerEvent{Kind: PointerRelease, Col: 5, Row: 0})

	if len(texts) != 1 || texts[0] != "select" {
		t.Fatalf("selection events = %q", texts)
	}
	if r := term.SelectionSnapshot(); r == nil || r.EndCol != 5 {
		t.Fatalf("snapshot = %+v", r)
	}

	term.Pointer(PointerEvent{Kind: PointerDoublePress, Col: 8, Row: 0})
	if got := term.SelectedText(); got != "me" {
		t.Fatalf("double-press selected %q, want %q", got, "me")
	}
}

func TestThemeScheme(t *testing.T) {
	term := openTerminal(t, Options{Theme: map[string]string{
		"foreground": "#102030",
		"red":        "#ff0001",
		"bogus":      "#zzz",
	}})
	defer term.Dispose()
	scheme := term.Scheme()
	if scheme.Foreground != TrueColor(0x10, 0x20, 0x30) {
		t.Fatalf("themed foreground = %+v", scheme.Foreground)
	}
	if scheme.Palette[1] != TrueColor(255, 0, 1) {
		t.Fatalf("themed red = %+v", scheme.Palette[1])
	}
	if scheme.Palette[2] != ANSIColors[2] {
		t.Fatalf("untouched palette slot changed: %+v", scheme.Palette[2])
	}
}

func TestOSCPaletteUpdatesScheme(t *testing.T) {
	term := openTerminal(t, Options{})
	defer term.Dispose()
	term.Write([]byte("\x1b]4;3;#123456\x07"))
	if got := term.Scheme().Palette[3]; got != TrueColor(0x12, 0x34, 0x56) {
		t.Fatalf("palette[3] = %+v", got)
	}
	term.Write([]byte("\x1b]104\x07"))
	if got := term.Scheme().Palette[3]; got != ANSIColors[3] {
		t.Fatalf("palette[3] after reset = %+v", got)
	}
}
