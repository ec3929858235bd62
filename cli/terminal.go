package cli

import (
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/phroun/purrvt"
)

// doubleClickWindow is how close two presses on the same cell must be
// to count as a word-select double click.
const doubleClickWindow = 400 * time.Millisecond

// Options configures terminal creation
type Options struct {
	Shell      string            // Shell to run (default: $SHELL or /bin/sh)
	WorkingDir string            // Initial working directory (default: current dir)
	Scrollback int               // Scrollback line count (default 1000)
	Theme      map[string]string // Passed through to the core
}

// Terminal is a complete terminal emulator running within a CLI
// terminal: a shell on a PTY, the purrvt core in the middle, tcell on
// the outside.
type Terminal struct {
	mu sync.Mutex

	opts Options

	core     *purrvt.Terminal
	pty      purrvt.PTY
	cmd      *exec.Cmd
	screen   tcell.Screen
	renderer *Renderer

	subs []*purrvt.Subscription

	running bool
	done    chan struct{}

	// Double-click tracking
	lastClick     time.Time
	lastClickCol  int
	lastClickRow  int
	buttonPressed bool
}

// New creates an unstarted terminal
func New(opts Options) *Terminal {
	return &Terminal{opts: opts, done: make(chan struct{})}
}

// Attach implements purrvt.Host
func (t *Terminal) Attach(core *purrvt.Terminal) error {
	t.core = core
	return nil
}

// Detach implements purrvt.Host
func (t *Terminal) Detach() {}

// Run starts the shell and blocks until it exits or the screen dies
func (t *Terminal) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "create screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnablePaste()
	t.screen = screen

	cols, rows := screen.Size()
	core := purrvt.NewTerminal(purrvt.Options{
		Cols:       cols,
		Rows:       rows,
		Scrollback: t.opts.Scrollback,
		Theme:      t.opts.Theme,
		Logf:       log.Printf,
	})
	if err := core.Open(t); err != nil {
		return errors.Wrap(err, "open core")
	}
	defer core.Dispose()
	t.renderer = NewRenderer(screen, core)

	shell := t.opts.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell)
	cmd.Dir = t.opts.WorkingDir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	p := &shellPTY{}
	if err := p.Start(cmd); err != nil {
		return err
	}
	defer p.Close()
	if err := p.Resize(cols, rows); err != nil {
		log.Printf("cli: pty resize: %v", err)
	}
	t.mu.Lock()
	t.pty = p
	t.cmd = cmd
	t.running = true
	t.mu.Unlock()

	// Keystrokes (and terminal query replies) go back to the shell
	t.subs = append(t.subs, core.OnData(func(data string) {
		if _, err := p.Write([]byte(data)); err != nil {
			log.Printf("cli: pty write: %v", err)
		}
	}))
	t.subs = append(t.subs, core.OnTitle(func(title string) {
		screen.SetTitle(title)
	}))
	t.subs = append(t.subs, core.OnBell(func() {
		screen.Beep()
	}))
	defer func() {
		for _, s := range t.subs {
			s.Dispose()
		}
	}()

	// Pump shell output into the core; wake the event loop per chunk
	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := p.Read(buf)
			if n > 0 {
				if werr := core.Write(buf[:n]); werr != nil {
					break
				}
				screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
			if err != nil {
				close(t.done)
				screen.PostEvent(tcell.NewEventInterrupt(nil))
				return
			}
		}
	}()

	t.renderer.FrameAll()
	return t.eventLoop(core, p)
}

func (t *Terminal) eventLoop(core *purrvt.Terminal, p purrvt.PTY) error {
	for {
		select {
		case <-t.done:
			return nil
		default:
		}

		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			t.renderer.Frame()
		case *tcell.EventResize:
			cols, rows := ev.Size()
			if err := core.Resize(cols, rows); err == nil {
				if err := p.Resize(cols, rows); err != nil {
					log.Printf("cli: pty resize: %v", err)
				}
			}
			t.screen.Sync()
			t.renderer.FrameAll()
		case *tcell.EventKey:
			if data := encodeKey(ev, core.AppCursorKeys()); len(data) > 0 {
				core.SendKey(data)
			}
		case *tcell.EventPaste:
			// Paste arrives between start/end markers; text events
			// follow as runes, nothing to do here for now
		case *tcell.EventMouse:
			t.handleMouse(ev, core)
			t.renderer.Frame()
		}
	}
}

// handleMouse maps tcell mouse state onto the pointer contract:
// press begins a selection, drag extends it, release finishes it, and
// a double press selects the word under the pointer.
func (t *Terminal) handleMouse(ev *tcell.EventMouse, core *purrvt.Terminal) {
	col, row := ev.Position()
	primary := ev.Buttons()&tcell.ButtonPrimary != 0

	switch {
	case primary && !t.buttonPressed:
		t.buttonPressed = true
		now := time.Now()
		if now.Sub(t.lastClick) < doubleClickWindow &&
			col == t.lastClickCol && row == t.lastClickRow {
			core.Pointer(purrvt.PointerEvent{Kind: purrvt.PointerDoublePress, Col: col, Row: row})
		} else {
			core.Pointer(purrvt.PointerEvent{Kind: purrvt.PointerPress, Col: col, Row: row})
		}
		t.lastClick = now
		t.lastClickCol, t.lastClickRow = col, row
	case primary && t.buttonPressed:
		core.Pointer(purrvt.PointerEvent{Kind: purrvt.PointerMove, Col: col, Row: row})
	case !primary && t.buttonPressed:
		t.buttonPressed = false
		core.Pointer(purrvt.PointerEvent{Kind: purrvt.PointerRelease, Col: col, Row: row})
	}
}

// Wait blocks until the shell exits
func (t *Terminal) Wait() error {
	t.mu.Lock()
	cmd := t.cmd
	t.mu.Unlock()
	if cmd == nil {
		return nil
	}
	err := cmd.Wait()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return nil
	}
	return err
}
