package purrvt

import (
	"unicode"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// maxCombiningPerCell caps the combining marks attached to one base cell.
// Further marks on a full cell are dropped.
const maxCombiningPerCell = 8

// widthCondition is the process-wide width table. Ambiguous East Asian
// characters resolve narrow; hosts that want them wide must re-measure.
var widthCondition = &runewidth.Condition{EastAsianWidth: false}

// RuneCellWidth returns the columns a rune occupies: 0 for combining
// marks and other zero-width scalars, 1 for narrow, 2 for wide.
func RuneCellWidth(r rune) int {
	w := widthCondition.RuneWidth(r)
	if w < 0 {
		return 0
	}
	if w > 2 {
		return 2
	}
	return w
}

// IsCombiningMark reports whether the rune joins the preceding base cell
// instead of starting a new one. Covers Mn/Mc/Me plus ZWJ, ZWNJ and
// variation selectors; full ZWJ emoji sequences are not re-measured as a
// unit (each scalar keeps its own width).
func IsCombiningMark(r rune) bool {
	if r == 0x200C || r == 0x200D {
		return true
	}
	if r >= 0xFE00 && r <= 0xFE0F {
		return true
	}
	return unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Me, r)
}

// StringCellWidth returns the grapheme-aware display width of a string,
// for hosts measuring prompt or title text.
func StringCellWidth(s string) int {
	return uniseg.StringWidth(s)
}
