package purrvt

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser states (Williams-style VT500 state machine)
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeInt
	stateCSIEntry
	stateCSIParam
	stateCSIInt
	stateCSIIgnore
	stateOSCString
	stateDCSEntry
	stateDCSParam
	stateDCSInt
	stateDCSPassthrough
	stateDCSIgnore
	stateSOSPMAPC
)

const (
	maxCSIParams     = 32
	maxStringPayload = 4096
)

// Parser consumes a byte stream of VT100/ANSI output and drives a
// Screen. Feeding a stream in arbitrary chunks produces the same screen
// state as feeding it whole; malformed sequences are dropped silently.
type Parser struct {
	screen *Screen
	state  parserState

	// CSI sequence accumulator
	csiParams    []int
	csiRawParams []string // Raw parameter strings for subparameter parsing
	csiPrivate   byte     // For private sequences like ?25h
	csiInters    []byte   // Intermediate bytes (0x20-0x2F)
	csiBuf       strings.Builder

	// OSC / DCS / SOS-PM-APC accumulator
	strBuf strings.Builder
	strEsc bool // Pending ESC that may complete an ST terminator

	// DCS header captured before passthrough
	dcsInters []byte
	dcsFinal  byte

	// UTF-8 multi-byte handling
	utf8Buf  []byte
	utf8Need int

	// Host callbacks; any may be nil
	Bell         func()
	Title        func(string)
	OSC          func(id int, payload string)
	Respond      func(string)
	PaletteSet   func(index int, c Color)
	PaletteReset func(index int) // index -1 resets the whole palette
	DefaultColor func(isFg bool, c Color)
}

// NewParser creates a parser bound to the given screen
func NewParser(screen *Screen) *Parser {
	return &Parser{
		screen:    screen,
		state:     stateGround,
		csiParams: make([]int, 0, 16),
	}
}

// Parse processes input data and updates the screen
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.processByte(b)
	}
}

// ParseString processes a string of UTF-8 text
func (p *Parser) ParseString(data string) {
	p.Parse([]byte(data))
}

func (p *Parser) processByte(b byte) {
	// UTF-8 continuation bytes bind tighter than everything else
	if p.utf8Need > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf = append(p.utf8Buf, b)
			p.utf8Need--
			if p.utf8Need == 0 {
				r := decodeUTF8(p.utf8Buf)
				p.utf8Buf = p.utf8Buf[:0]
				if p.state == stateGround {
					p.screen.WriteRune(r)
				}
			}
			return
		}
		// Broken sequence: substitute and resync on this byte
		p.utf8Buf = p.utf8Buf[:0]
		p.utf8Need = 0
		if p.state == stateGround {
			p.screen.WriteRune(0xFFFD)
		}
	}

	// A pending ESC inside a string may complete an ST (ESC \)
	if p.strEsc {
		p.strEsc = false
		if b == '\\' {
			p.finishString()
			p.state = stateGround
			return
		}
		if b == 0x18 || b == 0x1A {
			p.strBuf.Reset()
			p.state = stateGround
			return
		}
		p.finishString()
		p.state = stateEscape
		p.handleEscape(b)
		return
	}

	// CAN and SUB abort any sequence; ESC restarts from any state
	switch b {
	case 0x18, 0x1A:
		p.state = stateGround
		return
	case 0x1B:
		switch p.state {
		case stateOSCString, stateDCSPassthrough, stateDCSEntry, stateDCSParam,
			stateDCSInt, stateDCSIgnore, stateSOSPMAPC:
			p.strEsc = true
		default:
			p.startEscape()
		}
		return
	}

	// 8-bit C1 controls are accepted equivalently to their ESC x forms
	if b >= 0x80 && b <= 0x9F {
		p.handleC1(b)
		return
	}

	switch p.state {
	case stateGround:
		p.handleGround(b)
	case stateEscape:
		p.handleEscape(b)
	case stateEscapeInt:
		p.handleEscapeInt(b)
	case stateCSIEntry, stateCSIParam, stateCSIInt, stateCSIIgnore:
		p.handleCSI(b)
	case stateOSCString:
		p.handleString(b, true)
	case stateDCSEntry, stateDCSParam, stateDCSInt:
		p.handleDCSHeader(b)
	case stateDCSPassthrough:
		p.handleString(b, false)
	case stateDCSIgnore, stateSOSPMAPC:
		// Consumed until ST, CAN, or SUB
	}
}

func (p *Parser) startEscape() {
	p.state = stateEscape
	p.csiInters = p.csiInters[:0]
}

// decodeUTF8 assembles a complete multi-byte sequence, substituting
// U+FFFD for overlong encodings, surrogates, and out-of-range values.
func decodeUTF8(buf []byte) rune {
	var r rune
	switch len(buf) {
	case 2:
		r = rune(buf[0]&0x1F)<<6 | rune(buf[1]&0x3F)
		if r < 0x80 {
			return 0xFFFD
		}
	case 3:
		r = rune(buf[0]&0x0F)<<12 | rune(buf[1]&0x3F)<<6 | rune(buf[2]&0x3F)
		if r < 0x800 || (r >= 0xD800 && r <= 0xDFFF) {
			return 0xFFFD
		}
	case 4:
		r = rune(buf[0]&0x07)<<18 | rune(buf[1]&0x3F)<<12 | rune(buf[2]&0x3F)<<6 | rune(buf[3]&0x3F)
		if r < 0x10000 || r > 0x10FFFF {
			return 0xFFFD
		}
	default:
		return 0xFFFD
	}
	return r
}

// executeC0 runs a C0 control. Per the VT500 tables these execute even
// in the middle of a control sequence.
func (p *Parser) executeC0(b byte) {
	switch b {
	case 0x07: // BEL
		if p.Bell != nil {
			p.Bell()
		}
	case 0x08: // BS
		p.screen.Backspace()
	case 0x09: // HT
		p.screen.Tab()
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		p.screen.LineFeed()
	case 0x0D: // CR
		p.screen.CarriageReturn()
	case 0x0E, 0x0F: // SO, SI - charset shifts, consumed
	}
}

func (p *Parser) handleGround(b byte) {
	if b < 0x20 {
		p.executeC0(b)
		return
	}
	if b < 0x7F {
		p.screen.WriteRune(rune(b))
		return
	}
	if b == 0x7F { // DEL - ignored
		return
	}
	// UTF-8 lead bytes
	switch {
	case b&0xE0 == 0xC0 && b >= 0xC2:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Need = 1
	case b&0xF0 == 0xE0:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Need = 2
	case b&0xF8 == 0xF0 && b <= 0xF4:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Need = 3
	default:
		// Stray continuation or invalid lead
		p.screen.WriteRune(0xFFFD)
	}
}

// handleC1 maps the 8-bit C1 controls onto their 7-bit escape forms
func (p *Parser) handleC1(b byte) {
	switch b {
	case 0x84: // IND
		p.screen.LineFeed()
		p.state = stateGround
	case 0x85: // NEL
		p.screen.NextLine()
		p.state = stateGround
	case 0x88: // HTS
		p.screen.SetTabStop()
		p.state = stateGround
	case 0x8D: // RI
		p.screen.ReverseIndex()
		p.state = stateGround
	case 0x90: // DCS
		p.startDCS()
	case 0x98, 0x9E, 0x9F: // SOS, PM, APC
		p.state = stateSOSPMAPC
	case 0x9B: // CSI
		p.startCSI()
	case 0x9C: // ST
		if p.state == stateOSCString || p.state == stateDCSPassthrough {
			p.finishString()
		}
		p.state = stateGround
	case 0x9D: // OSC
		p.startOSC()
	default:
		p.state = stateGround
	}
}

func (p *Parser) startCSI() {
	p.state = stateCSIEntry
	p.csiParams = p.csiParams[:0]
	p.csiRawParams = p.csiRawParams[:0]
	p.csiPrivate = 0
	p.csiInters = p.csiInters[:0]
	p.csiBuf.Reset()
}

func (p *Parser) startOSC() {
	p.state = stateOSCString
	p.strBuf.Reset()
}

func (p *Parser) startDCS() {
	p.state = stateDCSEntry
	p.csiParams = p.csiParams[:0]
	p.csiRawParams = p.csiRawParams[:0]
	p.csiPrivate = 0
	p.csiBuf.Reset()
	p.dcsInters = p.dcsInters[:0]
	p.dcsFinal = 0
	p.strBuf.Reset()
}

func (p *Parser) handleEscape(b byte) {
	switch {
	case b < 0x20:
		p.executeC0(b)
		return
	case b >= 0x20 && b <= 0x2F: // Intermediate bytes
		p.csiInters = append(p.csiInters, b)
		p.state = stateEscapeInt
		return
	}
	switch b {
	case '[':
		p.startCSI()
	case ']':
		p.startOSC()
	case 'P':
		p.startDCS()
	case 'X', '^', '_': // SOS, PM, APC
		p.state = stateSOSPMAPC
	case '7': // DECSC
		p.screen.SaveCursor()
		p.state = stateGround
	case '8': // DECRC
		p.screen.RestoreCursor()
		p.state = stateGround
	case 'D': // IND
		p.screen.LineFeed()
		p.state = stateGround
	case 'E': // NEL
		p.screen.NextLine()
		p.state = stateGround
	case 'H': // HTS
		p.screen.SetTabStop()
		p.state = stateGround
	case 'M': // RI
		p.screen.ReverseIndex()
		p.state = stateGround
	case 'c': // RIS
		p.screen.Reset()
		p.state = stateGround
	case '\\': // ST with nothing open
		p.state = stateGround
	case '=', '>': // DECKPAM / DECKPNM
		p.state = stateGround
	default:
		// Unknown escape, drop
		p.state = stateGround
	}
}

// handleEscapeInt finishes escapes carrying intermediates:
// charset designations (ESC ( x etc.) and ESC # forms.
func (p *Parser) handleEscapeInt(b byte) {
	if b >= 0x20 && b <= 0x2F {
		p.csiInters = append(p.csiInters, b)
		return
	}
	if b < 0x20 {
		p.executeC0(b)
		return
	}
	if len(p.csiInters) > 0 && p.csiInters[0] == '#' && b == '8' {
		p.screen.AlignmentFill() // DECALN
	}
	// Charset designations and the rest are consumed
	p.state = stateGround
}

func (p *Parser) handleCSI(b byte) {
	if b < 0x20 {
		p.executeC0(b)
		return
	}

	if p.state == stateCSIIgnore {
		if b >= 0x40 && b <= 0x7E {
			p.state = stateGround
		}
		return
	}

	if p.state == stateCSIEntry {
		if b >= 0x3C && b <= 0x3F { // Private markers ? > < =
			p.csiPrivate = b
			p.state = stateCSIParam
			return
		}
		p.state = stateCSIParam
	}

	switch {
	case b >= '0' && b <= '9' || b == ':':
		if p.state == stateCSIInt {
			// Parameters after intermediates are malformed
			p.state = stateCSIIgnore
			return
		}
		p.csiBuf.WriteByte(b)
		return
	case b == ';':
		if p.state == stateCSIInt {
			p.state = stateCSIIgnore
			return
		}
		p.pushCSIParam()
		return
	case b >= 0x3C && b <= 0x3F:
		// A private marker after parameters is malformed
		p.state = stateCSIIgnore
		return
	case b >= 0x20 && b <= 0x2F: // Intermediate bytes
		if p.state != stateCSIInt {
			p.pushCSIParam()
		}
		p.csiInters = append(p.csiInters, b)
		p.state = stateCSIInt
		return
	}

	// Final byte 0x40-0x7E
	if p.state != stateCSIInt {
		p.pushCSIParam()
	}
	p.executeCSI(b)
	p.state = stateGround
}

// pushCSIParam commits the accumulated parameter string
func (p *Parser) pushCSIParam() {
	if len(p.csiParams) >= maxCSIParams {
		p.csiBuf.Reset()
		return
	}
	s := p.csiBuf.String()
	p.csiBuf.Reset()
	p.csiRawParams = append(p.csiRawParams, s)
	if s == "" {
		p.csiParams = append(p.csiParams, 0)
		return
	}
	base := s
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		base = s[:idx]
	}
	n, _ := strconv.Atoi(base)
	p.csiParams = append(p.csiParams, n)
}

func (p *Parser) getParam(idx, defaultVal int) int {
	if idx < len(p.csiParams) && p.csiParams[idx] > 0 {
		return p.csiParams[idx]
	}
	return defaultVal
}

func (p *Parser) executeCSI(finalByte byte) {
	if p.csiPrivate != 0 && p.csiPrivate != '?' {
		return // >, <, = prefixed sequences are not handled
	}

	switch finalByte {
	case 'A': // CUU - Cursor Up
		p.screen.MoveCursorUp(p.getParam(0, 1))

	case 'B': // CUD - Cursor Down
		p.screen.MoveCursorDown(p.getParam(0, 1))

	case 'C': // CUF - Cursor Forward
		p.screen.MoveCursorForward(p.getParam(0, 1))

	case 'D': // CUB - Cursor Backward
		p.screen.MoveCursorBackward(p.getParam(0, 1))

	case 'E': // CNL - Cursor Next Line
		p.screen.MoveCursorDown(p.getParam(0, 1))
		p.screen.CarriageReturn()

	case 'F': // CPL - Cursor Previous Line
		p.screen.MoveCursorUp(p.getParam(0, 1))
		p.screen.CarriageReturn()

	case 'G': // CHA - Cursor Horizontal Absolute
		p.screen.SetCursorCol(p.getParam(0, 1) - 1)

	case 'H', 'f': // CUP/HVP - Cursor Position (1-based)
		p.screen.SetCursorPos(p.getParam(1, 1)-1, p.getParam(0, 1)-1)

	case 'J': // ED - Erase in Display
		p.screen.EraseInDisplay(p.getParam(0, 0))

	case 'K': // EL - Erase in Line
		p.screen.EraseInLine(p.getParam(0, 0))

	case 'L': // IL - Insert Lines
		p.screen.InsertLines(p.getParam(0, 1))

	case 'M': // DL - Delete Lines
		p.screen.DeleteLines(p.getParam(0, 1))

	case '@': // ICH - Insert Characters
		p.screen.InsertChars(p.getParam(0, 1))

	case 'P': // DCH - Delete Characters
		p.screen.DeleteChars(p.getParam(0, 1))

	case 'X': // ECH - Erase Characters
		p.screen.EraseChars(p.getParam(0, 1))

	case 'S': // SU - Scroll Up
		p.screen.ScrollUp(p.getParam(0, 1))

	case 'T': // SD - Scroll Down
		p.screen.ScrollDown(p.getParam(0, 1))

	case 'd': // VPA - Vertical Position Absolute
		p.screen.SetCursorRow(p.getParam(0, 1) - 1)

	case 'g': // TBC - Tab Clear
		p.screen.ClearTabStop(p.getParam(0, 0))

	case 'm': // SGR - Select Graphic Rendition
		p.executeSGR()

	case 'h': // SM - Set Mode
		p.executeSetMode(true)

	case 'l': // RM - Reset Mode
		p.executeSetMode(false)

	case 'r': // DECSTBM - Set Top and Bottom Margins
		if p.csiPrivate == 0 {
			p.screen.SetScrollRegion(p.getParam(0, 1)-1, p.getParam(1, 0)-1)
		}

	case 's': // SCP - Save Cursor Position
		p.screen.SaveCursor()

	case 'u': // RCP - Restore Cursor Position
		p.screen.RestoreCursor()

	case 'n': // DSR - Device Status Report
		p.executeDSR()

	case 'c': // DA - Device Attributes
		if p.getParam(0, 0) == 0 {
			p.respond("\x1b[?6c") // VT102
		}

	case 'q': // DECSCUSR - Set Cursor Style (with SP intermediate)
		if len(p.csiInters) == 1 && p.csiInters[0] == ' ' {
			p.executeDECSCUSR()
		}
	}
}

func (p *Parser) respond(s string) {
	if p.Respond != nil {
		p.Respond(s)
	}
}

func (p *Parser) executeDSR() {
	switch p.getParam(0, 0) {
	case 5: // Operating status
		p.respond("\x1b[0n")
	case 6: // CPR - cursor position, origin-aware
		col, row := p.screen.CursorPosition()
		if p.screen.OriginMode() {
			top, _ := p.screen.ScrollRegion()
			row -= top
		}
		p.respond(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
	}
}

// executeDECSCUSR handles ESC [ Ps SP q - Set Cursor Style
func (p *Parser) executeDECSCUSR() {
	switch p.getParam(0, 1) {
	case 0, 1:
		p.screen.SetCursorStyle(CursorStyleBlock, true)
	case 2:
		p.screen.SetCursorStyle(CursorStyleBlock, false)
	case 3:
		p.screen.SetCursorStyle(CursorStyleUnderline, true)
	case 4:
		p.screen.SetCursorStyle(CursorStyleUnderline, false)
	case 5:
		p.screen.SetCursorStyle(CursorStyleBar, true)
	case 6:
		p.screen.SetCursorStyle(CursorStyleBar, false)
	}
}

func (p *Parser) executeSetMode(set bool) {
	if p.csiPrivate == '?' {
		p.executePrivateMode(set)
		return
	}
	for _, param := range p.csiParams {
		switch param {
		case 4: // IRM - Insert/Replace Mode
			p.screen.SetInsertMode(set)
		}
	}
}

func (p *Parser) executePrivateMode(set bool) {
	for _, param := range p.csiParams {
		switch param {
		case 1: // DECCKM - Application cursor keys
			p.screen.SetAppCursorKeys(set)
		case 6: // DECOM - Origin mode
			p.screen.SetOriginMode(set)
		case 7: // DECAWM - Auto-wrap mode
			p.screen.SetAutoWrap(set)
		case 25: // DECTCEM - Cursor visibility
			p.screen.SetCursorVisible(set)
		case 47, 1047: // Alternate screen, no cursor save
			if set {
				p.screen.EnterAlt(false)
			} else {
				p.screen.ExitAlt(false)
			}
		case 1048: // Save/restore cursor only
			if set {
				p.screen.SaveCursor()
			} else {
				p.screen.RestoreCursor()
			}
		case 1049: // Alternate screen with cursor save
			if set {
				p.screen.EnterAlt(true)
			} else {
				p.screen.ExitAlt(true)
			}
		case 2004: // Bracketed paste mode
			p.screen.SetBracketedPaste(set)
		}
	}
}

func (p *Parser) executeSGR() {
	if len(p.csiParams) == 0 {
		p.screen.ResetAttributes()
		return
	}

	i := 0
	for i < len(p.csiParams) {
		param := p.csiParams[i]
		switch param {
		case 0:
			p.screen.ResetAttributes()
		case 1:
			p.screen.SetFlag(AttrBold, true)
		case 2:
			p.screen.SetFlag(AttrDim, true)
		case 3:
			p.screen.SetFlag(AttrItalic, true)
		case 4:
			p.screen.SetFlag(AttrUnderline, true)
		case 5, 6:
			p.screen.SetFlag(AttrBlink, true)
		case 7:
			p.screen.SetFlag(AttrInverse, true)
		case 8:
			p.screen.SetFlag(AttrInvisible, true)
		case 9:
			p.screen.SetFlag(AttrStrikethrough, true)
		case 22:
			p.screen.SetFlag(AttrBold, false)
			p.screen.SetFlag(AttrDim, false)
		case 23:
			p.screen.SetFlag(AttrItalic, false)
		case 24:
			p.screen.SetFlag(AttrUnderline, false)
		case 25:
			p.screen.SetFlag(AttrBlink, false)
		case 27:
			p.screen.SetFlag(AttrInverse, false)
		case 28:
			p.screen.SetFlag(AttrInvisible, false)
		case 29:
			p.screen.SetFlag(AttrStrikethrough, false)

		case 30, 31, 32, 33, 34, 35, 36, 37:
			p.screen.SetForeground(StandardColor(param - 30))
		case 90, 91, 92, 93, 94, 95, 96, 97:
			p.screen.SetForeground(StandardColor(param - 90 + 8))
		case 40, 41, 42, 43, 44, 45, 46, 47:
			p.screen.SetBackground(StandardColor(param - 40))
		case 100, 101, 102, 103, 104, 105, 106, 107:
			p.screen.SetBackground(StandardColor(param - 100 + 8))

		case 38: // Extended foreground
			if c, consumed, ok := p.extendedColor(i); ok {
				p.screen.SetForeground(c)
				i += consumed
			}
		case 39:
			p.screen.SetForeground(DefaultForeground)
		case 48: // Extended background
			if c, consumed, ok := p.extendedColor(i); ok {
				p.screen.SetBackground(c)
				i += consumed
			}
		case 49:
			p.screen.SetBackground(DefaultBackground)
		}
		// Unknown parameters are skipped without aborting the SGR
		i++
	}
}

// extendedColor parses 38/48 extended colors in both semicolon and
// colon-subparameter form. Returns the color, how many extra
// semicolon parameters were consumed, and whether parsing succeeded.
func (p *Parser) extendedColor(i int) (Color, int, bool) {
	// Colon form first: 38:5:N or 38:2[:colorspace]:R:G:B
	if i < len(p.csiRawParams) && strings.IndexByte(p.csiRawParams[i], ':') >= 0 {
		subs := parseSubParams(p.csiRawParams[i])
		if len(subs) >= 3 && subs[1] == 5 {
			return PaletteColor(subs[2]), 0, true
		}
		if len(subs) >= 5 && subs[1] == 2 {
			r, g, b := subs[2], subs[3], subs[4]
			if len(subs) >= 6 {
				// Leading colorspace identifier present
				r, g, b = subs[3], subs[4], subs[5]
			}
			return TrueColor(clampByte(r), clampByte(g), clampByte(b)), 0, true
		}
		return Color{}, 0, false
	}
	// Semicolon form: 38;5;N or 38;2;R;G;B
	if i+2 < len(p.csiParams) && p.csiParams[i+1] == 5 {
		return PaletteColor(p.csiParams[i+2]), 2, true
	}
	if i+4 < len(p.csiParams) && p.csiParams[i+1] == 2 {
		return TrueColor(
			clampByte(p.csiParams[i+2]),
			clampByte(p.csiParams[i+3]),
			clampByte(p.csiParams[i+4]),
		), 4, true
	}
	return Color{}, 0, false
}

// parseSubParams splits a colon-separated parameter, -1 for empty slots
func parseSubParams(raw string) []int {
	parts := strings.Split(raw, ":")
	out := make([]int, len(parts))
	for i, part := range parts {
		if part == "" {
			out[i] = -1
			continue
		}
		n, _ := strconv.Atoi(part)
		out[i] = n
	}
	return out
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// --- String Sequences (OSC, DCS, SOS/PM/APC) ---

// handleString collects OSC or DCS payload bytes. OSC additionally
// accepts BEL as terminator.
func (p *Parser) handleString(b byte, isOSC bool) {
	if isOSC && b == 0x07 {
		p.finishString()
		p.state = stateGround
		return
	}
	if b < 0x20 {
		return // Other C0 controls are ignored inside strings
	}
	if p.strBuf.Len() < maxStringPayload {
		p.strBuf.WriteByte(b)
	}
}

// finishString dispatches a completed OSC or DCS payload
func (p *Parser) finishString() {
	payload := p.strBuf.String()
	p.strBuf.Reset()
	switch p.state {
	case stateOSCString:
		p.executeOSC(payload)
	case stateDCSPassthrough:
		p.executeDCS(payload)
	}
}

// handleDCSHeader parses the DCS parameter/intermediate bytes before
// the data section begins.
func (p *Parser) handleDCSHeader(b byte) {
	switch {
	case b >= '0' && b <= '9' || b == ';' || b == ':':
		if p.state == stateDCSInt {
			p.state = stateDCSIgnore
			return
		}
		p.state = stateDCSParam
		if b == ';' {
			p.pushCSIParam()
		} else {
			p.csiBuf.WriteByte(b)
		}
	case b >= 0x3C && b <= 0x3F:
		if p.state != stateDCSEntry {
			p.state = stateDCSIgnore
			return
		}
		p.csiPrivate = b
		p.state = stateDCSParam
	case b >= 0x20 && b <= 0x2F:
		p.dcsInters = append(p.dcsInters, b)
		p.state = stateDCSInt
	case b >= 0x40 && b <= 0x7E:
		p.pushCSIParam()
		p.dcsFinal = b
		p.state = stateDCSPassthrough
	default:
		p.state = stateDCSIgnore
	}
}

// executeDCS handles completed device control strings. Everything is
// discarded except DECRQSS (DCS $ q Pt ST), which gets a DECRPSS reply.
func (p *Parser) executeDCS(payload string) {
	if p.dcsFinal != 'q' || len(p.dcsInters) != 1 || p.dcsInters[0] != '$' {
		return
	}
	switch payload {
	case "r":
		top, bottom := p.screen.ScrollRegion()
		p.respond(fmt.Sprintf("\x1bP1$r%d;%dr\x1b\\", top+1, bottom+1))
	case "m":
		p.respond("\x1bP1$r0m\x1b\\")
	default:
		p.respond("\x1bP0$r\x1b\\")
	}
}

// executeOSC processes a complete OSC command: identifier digits up to
// ';', then the payload.
func (p *Parser) executeOSC(raw string) {
	idStr := raw
	payload := ""
	if idx := strings.IndexByte(raw, ';'); idx >= 0 {
		idStr = raw[:idx]
		payload = raw[idx+1:]
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return
	}

	switch id {
	case 0, 2: // Window/icon title
		if p.Title != nil {
			p.Title(payload)
		}
	case 4: // Palette set: idx;spec pairs
		p.executeOSCPalette(payload)
	case 10: // Default foreground
		if c, ok := ParseXColor(payload); ok && p.DefaultColor != nil {
			p.DefaultColor(true, c)
		}
	case 11: // Default background
		if c, ok := ParseXColor(payload); ok && p.DefaultColor != nil {
			p.DefaultColor(false, c)
		}
	case 52: // Clipboard - ignored by the core, host policy applies
	case 104: // Palette reset: empty payload resets everything
		if p.PaletteReset != nil {
			if payload == "" {
				p.PaletteReset(-1)
			} else {
				for _, part := range strings.Split(payload, ";") {
					if n, err := strconv.Atoi(part); err == nil {
						p.PaletteReset(n)
					}
				}
			}
		}
	}
	if p.OSC != nil {
		p.OSC(id, payload)
	}
}

// executeOSCPalette handles OSC 4 payloads: "idx;spec" pairs
func (p *Parser) executeOSCPalette(payload string) {
	if p.PaletteSet == nil {
		return
	}
	parts := strings.Split(payload, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(parts[i])
		if err != nil || idx < 0 || idx > 255 {
			continue
		}
		if c, ok := ParseXColor(parts[i+1]); ok {
			p.PaletteSet(idx, c)
		}
	}
}
