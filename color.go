// Package purrvt provides the core of an embeddable terminal emulator:
// a VT100/ANSI parser, a screen buffer with scrollback, and a selection
// engine, behind a small terminal facade.
//
// This package contains:
//   - Color types and palettes
//   - Cell representation
//   - Screen buffer (primary + alternate grids, scrollback ring)
//   - VT escape sequence parser
//   - Selection engine
//   - PTY interface
//
// Host packages (see cli/) provide the render surface and input capture
// that embed this core.
package purrvt

import colorful "github.com/lucasb-eyer/go-colorful"

// ColorType indicates how a color was specified
type ColorType uint8

const (
	ColorTypeDefault   ColorType = iota // Use terminal default fg/bg (SGR 39/49)
	ColorTypeStandard                   // Standard 16 ANSI colors (0-15)
	ColorTypePalette                    // 256-color palette (0-255)
	ColorTypeTrueColor                  // 24-bit RGB
)

// Color represents a terminal color with its original specification preserved,
// so palette swaps re-resolve correctly at render time.
type Color struct {
	Type    ColorType // How the color was specified
	Index   uint8     // For Standard (0-15) or Palette (0-255)
	R, G, B uint8     // For TrueColor, or resolved RGB for display
}

// Predefined colors
var (
	DefaultForeground = Color{Type: ColorTypeDefault, R: 212, G: 212, B: 212}
	DefaultBackground = Color{Type: ColorTypeDefault, R: 30, G: 30, B: 30}
)

// StandardColor creates a standard 16-color ANSI color (index 0-15)
func StandardColor(index int) Color {
	if index < 0 || index > 15 {
		index = 7 // Default to white
	}
	rgb := ANSIColorsRGB[index]
	return Color{Type: ColorTypeStandard, Index: uint8(index), R: rgb.R, G: rgb.G, B: rgb.B}
}

// PaletteColor creates a 256-color palette color (index 0-255)
func PaletteColor(index int) Color {
	if index < 0 || index > 255 {
		index = 7
	}
	rgb := Get256ColorRGB(index)
	return Color{Type: ColorTypePalette, Index: uint8(index), R: rgb.R, G: rgb.G, B: rgb.B}
}

// TrueColor creates a 24-bit true color
func TrueColor(r, g, b uint8) Color {
	return Color{Type: ColorTypeTrueColor, R: r, G: g, B: b}
}

// IsDefault returns true if this is the default fg/bg color
func (c Color) IsDefault() bool {
	return c.Type == ColorTypeDefault
}

// RGB holds just the red, green, blue components (used internally)
type RGB struct {
	R, G, B uint8
}

// Standard ANSI 16-color palette RGB values (in ANSI order for escape code compatibility)
var ANSIColorsRGB = []RGB{
	{R: 0, G: 0, B: 0},       // ANSI 0: Black
	{R: 170, G: 0, B: 0},     // ANSI 1: Red
	{R: 0, G: 170, B: 0},     // ANSI 2: Green
	{R: 170, G: 85, B: 0},    // ANSI 3: Yellow/Brown
	{R: 0, G: 0, B: 170},     // ANSI 4: Blue
	{R: 170, G: 0, B: 170},   // ANSI 5: Magenta/Purple
	{R: 0, G: 170, B: 170},   // ANSI 6: Cyan
	{R: 170, G: 170, B: 170}, // ANSI 7: White/Silver
	// Bright variants (8-15)
	{R: 85, G: 85, B: 85},    // ANSI 8: Bright Black (Dark Gray)
	{R: 255, G: 85, B: 85},   // ANSI 9: Bright Red
	{R: 85, G: 255, B: 85},   // ANSI 10: Bright Green
	{R: 255, G: 255, B: 85},  // ANSI 11: Bright Yellow
	{R: 85, G: 85, B: 255},   // ANSI 12: Bright Blue
	{R: 255, G: 85, B: 255},  // ANSI 13: Bright Magenta/Pink
	{R: 85, G: 255, B: 255},  // ANSI 14: Bright Cyan
	{R: 255, G: 255, B: 255}, // ANSI 15: White
}

// ANSIColors holds the standard ANSI colors as full Color structs
var ANSIColors = func() []Color {
	colors := make([]Color, 16)
	for i := 0; i < 16; i++ {
		colors[i] = StandardColor(i)
	}
	return colors
}()

// Get256ColorRGB returns the RGB values for a 256-color palette index
func Get256ColorRGB(idx int) RGB {
	if idx < 0 {
		idx = 0
	} else if idx > 255 {
		idx = 255
	}
	if idx < 16 {
		return ANSIColorsRGB[idx]
	} else if idx < 232 {
		idx -= 16
		b := idx % 6
		g := (idx / 6) % 6
		r := idx / 36
		return RGB{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51)}
	}
	gray := uint8((idx-232)*10 + 8)
	return RGB{R: gray, G: gray, B: gray}
}

// ParseColor parses a CSS-style color string ("#RRGGBB" or "#RGB") into a
// true color.
func ParseColor(s string) (Color, bool) {
	if len(s) == 4 && s[0] == '#' {
		// colorful.Hex wants six digits; widen #RGB first
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, false
	}
	r, g, b := c.RGB255()
	return TrueColor(r, g, b), true
}

// ParseXColor parses the color specifications accepted in OSC 4/10/11
// payloads: "rgb:RR/GG/BB" (1-4 hex digits per channel) or a CSS-style
// hex string.
func ParseXColor(s string) (Color, bool) {
	if len(s) > 4 && s[:4] == "rgb:" {
		var parts [3]uint8
		rest := s[4:]
		for i := 0; i < 3; i++ {
			end := len(rest)
			for j := 0; j < len(rest); j++ {
				if rest[j] == '/' {
					end = j
					break
				}
			}
			v, ok := parseHexChannel(rest[:end])
			if !ok {
				return Color{}, false
			}
			parts[i] = v
			if i < 2 {
				if end >= len(rest) {
					return Color{}, false
				}
				rest = rest[end+1:]
			}
		}
		return TrueColor(parts[0], parts[1], parts[2]), true
	}
	return ParseColor(s)
}

// parseHexChannel scales a 1-4 digit hex channel value to 8 bits
func parseHexChannel(s string) (uint8, bool) {
	if len(s) == 0 || len(s) > 4 {
		return 0, false
	}
	v := 0
	for i := 0; i < len(s); i++ {
		n := hexNibble(s[i])
		if n < 0 {
			return 0, false
		}
		v = v<<4 | n
	}
	max := 1<<(4*len(s)) - 1
	return uint8(v * 255 / max), true
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// ColorScheme defines the colors a host resolves cells against: default
// fg/bg, the 16 ANSI palette slots, and selection/cursor accents.
type ColorScheme struct {
	Foreground Color
	Background Color
	Palette    []Color // 16 ANSI colors

	Cursor              Color
	CursorAccent        Color
	SelectionBackground Color
	SelectionForeground Color
}

// DefaultColorScheme returns the built-in scheme
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Foreground:          TrueColor(212, 212, 212),
		Background:          TrueColor(30, 30, 30),
		Palette:             append([]Color(nil), ANSIColors...),
		Cursor:              TrueColor(255, 255, 255),
		CursorAccent:        TrueColor(0, 0, 0),
		SelectionBackground: TrueColor(68, 68, 68),
		SelectionForeground: TrueColor(255, 255, 255),
	}
}

// ResolveColor resolves a cell color against the scheme.
// Standard indices and palette indices 0-15 use the scheme's palette;
// everything else already carries its RGB.
func (s ColorScheme) ResolveColor(c Color, isFg bool) Color {
	switch c.Type {
	case ColorTypeDefault:
		if isFg {
			return s.Foreground
		}
		return s.Background
	case ColorTypeStandard:
		if idx := int(c.Index); idx < len(s.Palette) {
			return s.Palette[idx]
		}
	case ColorTypePalette:
		if idx := int(c.Index); idx < 16 && idx < len(s.Palette) {
			return s.Palette[idx]
		}
	}
	return c
}
