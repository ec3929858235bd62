package cli

import (
	"github.com/gdamore/tcell/v2"

	"github.com/phroun/purrvt"
)

// Renderer paints the core's grid snapshot onto a tcell screen. It
// consumes the dirty row set each frame and redraws only those rows,
// plus the selection overlay and cursor.
type Renderer struct {
	screen tcell.Screen
	core   *purrvt.Terminal

	// Last drawn selection, so deselecting repaints the old range
	lastSel *purrvt.SelectionRange
}

// NewRenderer creates a renderer for the given surfaces
func NewRenderer(screen tcell.Screen, core *purrvt.Terminal) *Renderer {
	return &Renderer{screen: screen, core: core}
}

// Frame draws one frame: dirty rows, selection, cursor
func (r *Renderer) Frame() {
	dirty := r.core.ConsumeDirty()
	sel := r.core.SelectionSnapshot()

	rows := map[int]bool{}
	for _, row := range dirty {
		rows[row] = true
	}
	// Selection changes are not grid mutations; repaint both the old
	// and new ranges
	for _, s := range []*purrvt.SelectionRange{sel, r.lastSel} {
		if s == nil {
			continue
		}
		for row := s.StartRow; row <= s.EndRow; row++ {
			rows[row] = true
		}
	}
	r.lastSel = sel

	scheme := r.core.Scheme()
	for row := range rows {
		r.drawRow(row, sel, scheme)
	}
	r.drawCursor()
	r.screen.Show()
}

// FrameAll repaints everything
func (r *Renderer) FrameAll() {
	r.core.ConsumeDirty()
	sel := r.core.SelectionSnapshot()
	r.lastSel = sel
	scheme := r.core.Scheme()
	_, vrows := r.core.Dimensions()
	for row := 0; row < vrows; row++ {
		r.drawRow(row, sel, scheme)
	}
	r.drawCursor()
	r.screen.Show()
}

func (r *Renderer) drawRow(row int, sel *purrvt.SelectionRange, scheme purrvt.ColorScheme) {
	cols, rows := r.core.Dimensions()
	if row < 0 || row >= rows {
		return
	}
	line := r.core.LineAt(row)
	for col := 0; col < cols && col < len(line.Cells); col++ {
		cell := line.Cells[col]
		if cell.IsPadding() {
			continue
		}
		style := cellStyle(cell, scheme)
		if inSelection(sel, col, row) {
			style = style.
				Background(toTcell(scheme.SelectionBackground)).
				Foreground(toTcell(scheme.SelectionForeground))
		}
		ch := cell.Rune
		if ch == 0 {
			ch = ' '
		}
		var comb []rune
		if cell.Combining != "" {
			comb = []rune(cell.Combining)
		}
		r.screen.SetContent(col, row, ch, comb, style)
	}
}

func (r *Renderer) drawCursor() {
	cur := r.core.CursorSnapshot()
	if cur.Visible {
		r.screen.ShowCursor(cur.Col, cur.Row)
	} else {
		r.screen.HideCursor()
	}
}

func inSelection(sel *purrvt.SelectionRange, col, row int) bool {
	if sel == nil {
		return false
	}
	if row < sel.StartRow || row > sel.EndRow {
		return false
	}
	if row == sel.StartRow && col < sel.StartCol {
		return false
	}
	if row == sel.EndRow && col > sel.EndCol {
		return false
	}
	return true
}

// cellStyle maps cell attributes onto a tcell style
func cellStyle(cell purrvt.Cell, scheme purrvt.ColorScheme) tcell.Style {
	attr := cell.Attr
	fg := scheme.ResolveColor(attr.Fg, true)
	bg := scheme.ResolveColor(attr.Bg, false)
	style := tcell.StyleDefault.
		Foreground(toTcell(fg)).
		Background(toTcell(bg))
	if attr.Has(purrvt.AttrBold) {
		style = style.Bold(true)
	}
	if attr.Has(purrvt.AttrDim) {
		style = style.Dim(true)
	}
	if attr.Has(purrvt.AttrItalic) {
		style = style.Italic(true)
	}
	if attr.Has(purrvt.AttrUnderline) {
		style = style.Underline(true)
	}
	if attr.Has(purrvt.AttrBlink) {
		style = style.Blink(true)
	}
	if attr.Has(purrvt.AttrInverse) {
		style = style.Reverse(true)
	}
	if attr.Has(purrvt.AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}
	if attr.Has(purrvt.AttrInvisible) {
		// tcell has no invisible attribute; paint fg as bg
		style = style.Foreground(toTcell(bg))
	}
	return style
}

func toTcell(c purrvt.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
