package cli

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/pkg/errors"
)

// shellPTY satisfies purrvt.PTY on top of creack/pty
type shellPTY struct {
	master *os.File
}

func (p *shellPTY) Start(cmd *exec.Cmd) error {
	f, err := pty.Start(cmd)
	if err != nil {
		return errors.Wrap(err, "start pty")
	}
	p.master = f
	return nil
}

func (p *shellPTY) Read(b []byte) (int, error) {
	return p.master.Read(b)
}

func (p *shellPTY) Write(b []byte) (int, error) {
	return p.master.Write(b)
}

func (p *shellPTY) Resize(cols, rows int) error {
	return pty.Setsize(p.master, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

func (p *shellPTY) Close() error {
	if p.master == nil {
		return nil
	}
	return p.master.Close()
}
