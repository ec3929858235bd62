package purrvt

import (
	"sync"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
)

// Facade error kinds. Each is fatal to the failing operation but never
// corrupts terminal state.
var (
	ErrNotOpen           = errors.New("purrvt: terminal not open")
	ErrAlreadyOpen       = errors.New("purrvt: terminal already open")
	ErrDisposed          = errors.New("purrvt: terminal disposed")
	ErrInvalidDimensions = errors.New("purrvt: invalid dimensions")
)

// ResizeEvent reports the dimensions after a successful resize
type ResizeEvent struct {
	Cols, Rows int
}

// OSCEvent surfaces operating system commands the core does not act on
// itself (window title is also delivered on its own event; OSC 52
// clipboard payloads appear here for hosts that opt in).
type OSCEvent struct {
	ID      int
	Payload string
}

// PointerKind distinguishes the pointer gestures the selection engine
// understands.
type PointerKind int

const (
	PointerPress PointerKind = iota
	PointerMove
	PointerRelease
	PointerDoublePress
)

// PointerEvent is a pointer gesture already translated to cell
// coordinates by the host adapter.
type PointerEvent struct {
	Kind      PointerKind
	Col, Row  int
	Button    int
	Modifiers int
}

// Host is the surface a terminal opens onto: it wires a renderer and an
// input adapter to the core. Attach is called once from Open.
type Host interface {
	Attach(t *Terminal) error
	Detach()
}

// Focusable is implemented by hosts that track keyboard focus
type Focusable interface {
	Focus()
	Blur()
}

// Addon extends a terminal through the public facade only
type Addon interface {
	Activate(t *Terminal)
	Dispose()
}

// widthTableOnce warms the process-wide width lookup table on first
// open; instances share it.
var widthTableOnce sync.Once

// Terminal is the facade orchestrating write -> parse -> grid mutation
// and exposing snapshots and event subscriptions to hosts.
type Terminal struct {
	mu sync.Mutex

	opts Options

	// scheme has its own lock: the parser mutates it from inside Write,
	// while t.mu is already held
	schemeMu sync.Mutex
	scheme   ColorScheme

	screen *Screen
	parser *Parser
	sel    *Selection

	host     Host
	opened   bool
	disposed bool

	addons []Addon

	onData      emitter[string]
	onResize    emitter[ResizeEvent]
	onBell      emitter[struct{}]
	onTitle     emitter[string]
	onSelection emitter[string]
	onOSC       emitter[OSCEvent]

	warnOnce sync.Once
}

// NewTerminal builds an unopened terminal from options
func NewTerminal(opts Options) *Terminal {
	opts = opts.withDefaults()
	t := &Terminal{
		opts:   opts,
		scheme: SchemeFromTheme(opts.Theme),
	}
	t.screen = NewScreen(opts.Cols, opts.Rows, opts.Scrollback)
	t.screen.SetCursorStyle(opts.CursorStyle, opts.CursorBlink)
	t.parser = NewParser(t.screen)
	t.parser.Bell = func() { t.onBell.emit(struct{}{}) }
	t.parser.Title = func(title string) { t.onTitle.emit(title) }
	t.parser.Respond = func(s string) { t.onData.emit(s) }
	t.parser.OSC = func(id int, payload string) {
		t.onOSC.emit(OSCEvent{ID: id, Payload: payload})
	}
	t.parser.PaletteSet = t.setPaletteColor
	t.parser.PaletteReset = t.resetPaletteColor
	t.parser.DefaultColor = t.setDefaultColor
	t.sel = NewSelection(t.screen)
	t.sel.onChanged = func(text string) { t.onSelection.emit(text) }
	t.sel.warn = func(err error) { t.warnf("clipboard error: %v", err) }
	return t
}

// warnf emits a one-time warning through the host's logging sink
func (t *Terminal) warnf(format string, args ...any) {
	if t.opts.Logf == nil {
		return
	}
	t.warnOnce.Do(func() { t.opts.Logf(format, args...) })
}

func (t *Terminal) setPaletteColor(index int, c Color) {
	t.schemeMu.Lock()
	defer t.schemeMu.Unlock()
	if index >= 0 && index < len(t.scheme.Palette) {
		t.scheme.Palette[index] = c
	}
}

func (t *Terminal) resetPaletteColor(index int) {
	t.schemeMu.Lock()
	defer t.schemeMu.Unlock()
	base := SchemeFromTheme(t.opts.Theme)
	if index < 0 {
		t.scheme.Palette = base.Palette
		return
	}
	if index < len(t.scheme.Palette) && index < len(base.Palette) {
		t.scheme.Palette[index] = base.Palette[index]
	}
}

func (t *Terminal) setDefaultColor(isFg bool, c Color) {
	t.schemeMu.Lock()
	defer t.schemeMu.Unlock()
	if isFg {
		t.scheme.Foreground = c
	} else {
		t.scheme.Background = c
	}
}

// --- Lifecycle ---

// Open wires the host surface and makes the terminal ready. The width
// table is loaded once per process on the first open. host may be nil
// for headless use.
func (t *Terminal) Open(host Host) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed {
		return ErrDisposed
	}
	if t.opened {
		return ErrAlreadyOpen
	}
	widthTableOnce.Do(func() {
		widthCondition.CreateLUT()
		runewidth.CreateLUT()
	})
	if host != nil {
		if err := host.Attach(t); err != nil {
			return errors.Wrap(err, "attach host")
		}
	}
	t.host = host
	t.opened = true
	return nil
}

// Dispose releases everything the terminal owns, in order: selection,
// parser, grids, scrollback. It is idempotent. After it, Open, Write,
// WriteString, Writeln and Resize return ErrDisposed; methods without an
// error result do not report it: the grid and selection accessors return
// zero values and the other methods do not touch the released grid.
func (t *Terminal) Dispose() {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.disposed = true
	t.opened = false
	addons := t.addons
	t.addons = nil
	host := t.host
	t.host = nil
	t.mu.Unlock()

	for _, a := range addons {
		a.Dispose()
	}
	if host != nil {
		host.Detach()
	}
	t.onData.clear()
	t.onResize.clear()
	t.onBell.clear()
	t.onTitle.clear()
	t.onSelection.clear()
	t.onOSC.clear()

	t.mu.Lock()
	t.sel = nil
	t.parser = nil
	t.screen = nil
	t.mu.Unlock()
}

// checkWritable gates operations requiring an open, live terminal
func (t *Terminal) checkWritable() error {
	if t.disposed {
		return ErrDisposed
	}
	if !t.opened {
		return ErrNotOpen
	}
	return nil
}

// --- Writing ---

// Write feeds raw bytes to the parser. All side effects, including
// dirty marking and bell events, complete before it returns.
func (t *Terminal) Write(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.parser.Parse(data)
	return nil
}

// WriteString feeds UTF-8 text to the parser
func (t *Terminal) WriteString(data string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.parser.ParseString(data)
	return nil
}

// Writeln writes text followed by CR LF
func (t *Terminal) Writeln(data string) error {
	return t.WriteString(data + "\r\n")
}

// --- Geometry ---

// Resize applies new dimensions and fires the resize event only when
// they actually changed. Write and Resize are mutually exclusive.
func (t *Terminal) Resize(cols, rows int) error {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return ErrDisposed
	}
	if !t.opened {
		t.mu.Unlock()
		return ErrNotOpen
	}
	if cols <= 0 || rows <= 0 {
		t.mu.Unlock()
		return ErrInvalidDimensions
	}
	changed := t.screen.Resize(cols, rows)
	t.mu.Unlock()
	if changed {
		t.onResize.emit(ResizeEvent{Cols: cols, Rows: rows})
	}
	return nil
}

// Clear erases the visible grid, keeping the scrollback
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed || t.screen == nil {
		return
	}
	t.screen.Clear()
}

// Reset performs a full RIS reset: default attributes, home cursor,
// cleared scrollback, tab stops every 8.
func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed || t.screen == nil {
		return
	}
	t.screen.Reset()
}

// --- Focus ---

// Focus passes keyboard focus to the host; it never fails
func (t *Terminal) Focus() {
	t.mu.Lock()
	host := t.host
	t.mu.Unlock()
	if f, ok := host.(Focusable); ok {
		f.Focus()
	}
}

// Blur removes keyboard focus from the host; it never fails
func (t *Terminal) Blur() {
	t.mu.Lock()
	host := t.host
	t.mu.Unlock()
	if f, ok := host.(Focusable); ok {
		f.Blur()
	}
}

// --- Addons ---

// LoadAddon activates an addon against the public facade and retains it
// for disposal.
func (t *Terminal) LoadAddon(a Addon) {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.addons = append(t.addons, a)
	t.mu.Unlock()
	a.Activate(t)
}

// --- Input Adapter Contract ---

// SendKey delivers encoded keystrokes from the input adapter. With
// loopback off (the default) the bytes are emitted on the data event
// for the transport; with loopback on they feed the grid directly.
func (t *Terminal) SendKey(data []byte) {
	t.mu.Lock()
	if t.disposed || !t.opened {
		t.mu.Unlock()
		return
	}
	loopback := t.opts.Loopback
	if loopback {
		t.parser.Parse(data)
	}
	t.mu.Unlock()
	if !loopback {
		t.onData.emit(string(data))
	}
}

// Pointer forwards a pointer gesture to the selection engine
func (t *Terminal) Pointer(ev PointerEvent) {
	t.mu.Lock()
	sel := t.sel
	t.mu.Unlock()
	if sel == nil {
		return
	}
	switch ev.Kind {
	case PointerPress:
		sel.BeginAt(ev.Col, ev.Row)
	case PointerMove:
		sel.ExtendTo(ev.Col, ev.Row)
	case PointerRelease:
		sel.Finish()
	case PointerDoublePress:
		sel.SelectWord(ev.Col, ev.Row)
	}
}

// SetClipboard injects the clipboard sink selections are copied into
func (t *Terminal) SetClipboard(c Clipboard) {
	t.mu.Lock()
	sel := t.sel
	t.mu.Unlock()
	if sel != nil {
		sel.SetClipboard(c)
	}
}

// Selection returns the selection engine for hosts driving it directly
func (t *Terminal) Selection() *Selection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sel
}

// AppCursorKeys reports DECCKM for the input adapter's arrow encoding
func (t *Terminal) AppCursorKeys() bool {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return false
	}
	return screen.AppCursorKeys()
}

// BracketedPaste reports mode 2004 for the input adapter's paste path
func (t *Terminal) BracketedPaste() bool {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return false
	}
	return screen.BracketedPaste()
}

// --- Renderer Contract ---

// Dimensions returns the grid size
func (t *Terminal) Dimensions() (cols, rows int) {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return 0, 0
	}
	return screen.Size()
}

// LineAt returns a snapshot of a row in the active grid
func (t *Terminal) LineAt(row int) Line {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return Line{}
	}
	return screen.LineAt(row)
}

// ScrollbackLen returns the number of retired scrollback lines
func (t *Terminal) ScrollbackLen() int {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return 0
	}
	return screen.ScrollbackLen()
}

// ScrollbackLineAt returns a snapshot of scrollback line n, n=0 oldest
func (t *Terminal) ScrollbackLineAt(n int) Line {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return Line{}
	}
	return screen.ScrollbackLineAt(n)
}

// CursorSnapshot returns a copy of the cursor state
func (t *Terminal) CursorSnapshot() Cursor {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return Cursor{}
	}
	return screen.CursorSnapshot()
}

// ConsumeDirty returns and clears the set of touched rows
func (t *Terminal) ConsumeDirty() []int {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()
	if screen == nil {
		return nil
	}
	return screen.ConsumeDirty()
}

// SelectionSnapshot returns the normalized selection, or nil
func (t *Terminal) SelectionSnapshot() *SelectionRange {
	t.mu.Lock()
	sel := t.sel
	t.mu.Unlock()
	if sel == nil {
		return nil
	}
	return sel.Snapshot()
}

// SelectedText materializes the current selection
func (t *Terminal) SelectedText() string {
	t.mu.Lock()
	sel := t.sel
	t.mu.Unlock()
	if sel == nil {
		return ""
	}
	return sel.Text()
}

// Scheme returns the resolved color scheme for the renderer
func (t *Terminal) Scheme() ColorScheme {
	t.schemeMu.Lock()
	defer t.schemeMu.Unlock()
	scheme := t.scheme
	scheme.Palette = append([]Color(nil), t.scheme.Palette...)
	return scheme
}

// --- Events ---

// OnData subscribes to encoded user input (and terminal query replies)
func (t *Terminal) OnData(fn func(string)) *Subscription {
	return t.onData.subscribe(fn)
}

// OnResize subscribes to dimension changes; it fires only when the
// dimensions actually changed, after all grid invariants hold.
func (t *Terminal) OnResize(fn func(ResizeEvent)) *Subscription {
	return t.onResize.subscribe(fn)
}

// OnBell subscribes to BEL
func (t *Terminal) OnBell(fn func()) *Subscription {
	return t.onBell.subscribe(func(struct{}) { fn() })
}

// OnTitle subscribes to window title changes (OSC 0/2)
func (t *Terminal) OnTitle(fn func(string)) *Subscription {
	return t.onTitle.subscribe(fn)
}

// OnSelectionChanged subscribes to finished, nonempty selections
func (t *Terminal) OnSelectionChanged(fn func(string)) *Subscription {
	return t.onSelection.subscribe(fn)
}

// OnOSC subscribes to raw operating system commands
func (t *Terminal) OnOSC(fn func(OSCEvent)) *Subscription {
	return t.onOSC.subscribe(fn)
}
