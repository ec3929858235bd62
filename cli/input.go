package cli

import (
	"github.com/gdamore/tcell/v2"
)

// encodeKey translates a tcell key event into the byte sequence a
// terminal application expects. appCursor selects SS3 arrow encoding
// (DECCKM).
func encodeKey(ev *tcell.EventKey, appCursor bool) []byte {
	var out []byte
	if ev.Modifiers()&tcell.ModAlt != 0 {
		out = append(out, 0x1B)
	}

	arrow := func(final byte) []byte {
		if appCursor {
			return append(out, 0x1B, 'O', final)
		}
		return append(out, 0x1B, '[', final)
	}

	switch ev.Key() {
	case tcell.KeyRune:
		return append(out, []byte(string(ev.Rune()))...)
	case tcell.KeyEnter:
		return append(out, '\r')
	case tcell.KeyTab:
		return append(out, '\t')
	case tcell.KeyBacktab:
		return append(out, 0x1B, '[', 'Z')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return append(out, 0x7F)
	case tcell.KeyEscape:
		return append(out, 0x1B)
	case tcell.KeyUp:
		return arrow('A')
	case tcell.KeyDown:
		return arrow('B')
	case tcell.KeyRight:
		return arrow('C')
	case tcell.KeyLeft:
		return arrow('D')
	case tcell.KeyHome:
		return arrow('H')
	case tcell.KeyEnd:
		return arrow('F')
	case tcell.KeyInsert:
		return append(out, 0x1B, '[', '2', '~')
	case tcell.KeyDelete:
		return append(out, 0x1B, '[', '3', '~')
	case tcell.KeyPgUp:
		return append(out, 0x1B, '[', '5', '~')
	case tcell.KeyPgDn:
		return append(out, 0x1B, '[', '6', '~')
	case tcell.KeyF1:
		return append(out, 0x1B, 'O', 'P')
	case tcell.KeyF2:
		return append(out, 0x1B, 'O', 'Q')
	case tcell.KeyF3:
		return append(out, 0x1B, 'O', 'R')
	case tcell.KeyF4:
		return append(out, 0x1B, 'O', 'S')
	case tcell.KeyF5:
		return append(out, 0x1B, '[', '1', '5', '~')
	case tcell.KeyF6:
		return append(out, 0x1B, '[', '1', '7', '~')
	case tcell.KeyF7:
		return append(out, 0x1B, '[', '1', '8', '~')
	case tcell.KeyF8:
		return append(out, 0x1B, '[', '1', '9', '~')
	case tcell.KeyF9:
		return append(out, 0x1B, '[', '2', '0', '~')
	case tcell.KeyF10:
		return append(out, 0x1B, '[', '2', '1', '~')
	case tcell.KeyF11:
		return append(out, 0x1B, '[', '2', '3', '~')
	case tcell.KeyF12:
		return append(out, 0x1B, '[', '2', '4', '~')
	}

	// Control characters arrive as key codes 0x00-0x1F
	if k := ev.Key(); k < 0x20 {
		return append(out, byte(k))
	}
	return out
}

// bracketPaste wraps pasted text per mode 2004 when the application
// asked for it.
func bracketPaste(text string, bracketed bool) []byte {
	if !bracketed {
		return []byte(text)
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, []byte("\x1b[200~")...)
	out = append(out, []byte(text)...)
	out = append(out, []byte("\x1b[201~")...)
	return out
}
