// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"bytes"
	"fmt"
	"sync"
)

/* default special characters */
const (
	CERASE = 0o177 /* DEL */
	CEOT   = 0o004 /* ^D */
	CKILL  = 0o025 /* ^U */
)

// A TTY is a terminal: output goes to Print, input is typed with
// WriteByte and handed to readers a line at a time.
type TTY struct {
	Print func(b []byte) (int, Errno)
	Echo  bool
	Sys   *System
	Reads int // number of readers waiting for a line

	raw    bytes.Buffer // current line, not yet delimited
	lines  [][]byte     // delimited input; an empty line is an EOT
	hangup bool
	ready  sync.Cond
	opens  int
	minor  uint8
}

func ttyName(n int) string {
	return fmt.Sprintf("/dev/tty%d", n)
}

// WriteByte types c on the terminal.
// Erase and kill edit the current line; newline and EOT deliver it.
func (t *TTY) WriteByte(c byte) error {
	t.Sys.Big.Lock()
	defer t.Sys.Big.Unlock()

	if t.hangup {
		return EIO
	}
	switch c {
	case CERASE, '\b':
		if n := t.raw.Len(); n > 0 {
			t.raw.Truncate(n - 1)
		}
		return nil
	case CKILL:
		t.raw.Reset()
		return nil
	case '\r':
		c = '\n'
	}
	if c != CEOT {
		t.raw.WriteByte(c)
	}
	if c == '\n' || c == CEOT {
		t.lines = append(t.lines, append([]byte{}, t.raw.Bytes()...))
		t.raw.Reset()
		t.ready.Broadcast()
	}
	if t.Echo && t.Print != nil && c != CEOT {
		t.Print([]byte{c})
	}
	return nil
}

// Write types every byte of b.
func (t *TTY) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := t.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(b), nil
}

// Hangup ends input: once the typed lines are consumed
// every read returns end of file.
func (t *TTY) Hangup() {
	t.Sys.Big.Lock()
	defer t.Sys.Big.Unlock()

	t.hangup = true
	t.ready.Broadcast()
}

type ttydev struct{}

func (ttydev) open(p *Proc, minor uint8, rw int) {
	if minor < 1 || minor > NTTY {
		p.Error = ENXIO
		return
	}
	p.Sys.TTY[minor].opens++
}

func (ttydev) read(p *Proc, minor uint8, b []byte, flag int) int {
	tty := &p.Sys.TTY[minor]
	for {
		if len(tty.lines) > 0 {
			line := tty.lines[0]
			if len(line) == 0 {
				tty.lines = tty.lines[1:]
				return 0
			}
			n := copy(b, line)
			if n < len(line) {
				tty.lines[0] = line[n:]
			} else {
				tty.lines = tty.lines[1:]
			}
			return n
		}
		if tty.hangup {
			return 0
		}
		if flag&_FNONBLOCK != 0 {
			p.Error = EAGAIN
			return 0
		}
		tty.Reads++
		p.sleep(&tty.ready)
		tty.Reads--
	}
}

func (ttydev) write(p *Proc, minor uint8, b []byte, flag int) int {
	tty := &p.Sys.TTY[minor]
	if tty.Print == nil {
		return len(b)
	}
	n, errno := tty.Print(b)
	if errno != 0 {
		p.Error = errno
	}
	return n
}

func (ttydev) close(p *Proc, minor uint8) {
	p.Sys.TTY[minor].opens--
}
