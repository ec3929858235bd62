package purrvt

// Options configures terminal creation. The zero value of every field
// selects a sensible default.
type Options struct {
	Cols int // Grid width in columns (default 80)
	Rows int // Grid height in rows (default 24)

	Scrollback int // Scrollback line count (default 1000)

	CursorBlink bool        // Blinking cursor (default off)
	CursorStyle CursorStyle // block, underline, or bar (default block)

	// Theme maps well-known slot names (foreground, background, cursor,
	// cursorAccent, selectionBackground, selectionForeground, black,
	// red, ..., brightWhite) to CSS color strings. Missing or
	// unparseable entries fall back to the built-in defaults.
	Theme map[string]string

	// Consumed by the renderer, not the core
	FontSize          int    // default 15
	FontFamily        string // default "monospace"
	AllowTransparency bool

	// Loopback echoes host key input into the grid instead of emitting
	// it on the data event. Off by default.
	Loopback bool

	// Logf is the host's logging sink for swallowed host-side errors.
	// Nil means silent.
	Logf func(format string, args ...any)
}

func (o Options) withDefaults() Options {
	if o.Cols <= 0 {
		o.Cols = 80
	}
	if o.Rows <= 0 {
		o.Rows = 24
	}
	if o.Scrollback <= 0 {
		o.Scrollback = 1000
	}
	if o.FontSize <= 0 {
		o.FontSize = 15
	}
	if o.FontFamily == "" {
		o.FontFamily = "monospace"
	}
	return o
}

// paletteSlotNames orders the 16 ANSI theme keys by palette index
var paletteSlotNames = []string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"brightBlack", "brightRed", "brightGreen", "brightYellow",
	"brightBlue", "brightMagenta", "brightCyan", "brightWhite",
}

// SchemeFromTheme builds a ColorScheme from a theme map, falling back
// to the built-in defaults for missing or unparseable entries.
func SchemeFromTheme(theme map[string]string) ColorScheme {
	scheme := DefaultColorScheme()
	if theme == nil {
		return scheme
	}
	slot := func(name string, dst *Color) {
		if spec, ok := theme[name]; ok {
			if c, ok := ParseColor(spec); ok {
				*dst = c
			}
		}
	}
	slot("foreground", &scheme.Foreground)
	slot("background", &scheme.Background)
	slot("cursor", &scheme.Cursor)
	slot("cursorAccent", &scheme.CursorAccent)
	slot("selectionBackground", &scheme.SelectionBackground)
	slot("selectionForeground", &scheme.SelectionForeground)
	for i, name := range paletteSlotNames {
		slot(name, &scheme.Palette[i])
	}
	return scheme
}
