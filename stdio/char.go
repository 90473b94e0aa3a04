// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import "io"

// getc returns the next byte, or io.EOF, or the read error.
func (f *File) getc() (byte, error) {
	if f.phase == phaseReading && f.next < f.valid && f.flags&flagUnget == 0 {
		c := f.buf[f.next]
		f.next++
		return c, nil
	}
	var b [1]byte
	n, err := f.read(b[:], false)
	if n == 1 {
		return b[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// Getc returns the next byte from f, or EOF at end of file or on error.
func (f *File) Getc() int {
	defer f.unlock(f.lock())
	return f.GetcUnlocked()
}

// GetcUnlocked is Getc without locking.
func (f *File) GetcUnlocked() int {
	c, err := f.getc()
	if err != nil {
		return EOF
	}
	return int(c)
}

// Putc writes c to f and returns it, or EOF on error.
func (f *File) Putc(c byte) int {
	defer f.unlock(f.lock())
	return f.PutcUnlocked(c)
}

// PutcUnlocked is Putc without locking.
func (f *File) PutcUnlocked(c byte) int {
	if f.phase == phaseWriting && f.mode == IOFBF && f.next < len(f.buf)-1 {
		f.buf[f.next] = c
		f.next++
		f.valid = f.next
		return int(c)
	}
	if n, _ := f.write([]byte{c}); n != 1 {
		return EOF
	}
	return int(c)
}

// Ungetc pushes c back onto f, to be returned by the next read,
// and clears end of file. Only one byte of push-back is held:
// Ungetc fails, returning EOF, when the slot is already full
// or c is EOF. Otherwise it returns c.
func (f *File) Ungetc(c int) int {
	defer f.unlock(f.lock())
	return f.UngetcUnlocked(c)
}

// UngetcUnlocked is Ungetc without locking.
func (f *File) UngetcUnlocked(c int) int {
	if c == EOF || f.flags&flagUnget != 0 {
		return EOF
	}
	if f.check(false) != nil {
		return EOF
	}
	if f.phase == phaseWriting {
		if f.flushWrite() != nil {
			return EOF
		}
	}
	f.unget = byte(c)
	f.flags = f.flags&^flagEOF | flagUnget
	return int(f.unget)
}

// unreadBuffered backs the read cursor up n bytes if they are
// still in the buffer, allowing more push-back than Ungetc.
func (f *File) unreadBuffered(n int) bool {
	if f.phase != phaseReading || f.flags&flagUnget != 0 || f.next < n {
		return false
	}
	f.next -= n
	f.flags &^= flagEOF
	return true
}

// Fgets reads a line into b, stopping after a newline or when b
// has room only for the terminating NUL, which it then stores.
// It returns the bytes read, without the NUL, or nil if
// end of file or an error came before any byte.
func (f *File) Fgets(b []byte) []byte {
	defer f.unlock(f.lock())
	return f.FgetsUnlocked(b)
}

// FgetsUnlocked is Fgets without locking.
func (f *File) FgetsUnlocked(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	n := 0
	for n < len(b)-1 {
		c, err := f.getc()
		if err != nil {
			break
		}
		b[n] = c
		n++
		if c == '\n' {
			break
		}
	}
	if n == 0 && len(b) > 1 {
		return nil
	}
	b[n] = 0
	return b[:n]
}

// Fputs writes s to f and returns a non-negative number,
// or EOF on error.
func (f *File) Fputs(s string) int {
	defer f.unlock(f.lock())
	return f.FputsUnlocked(s)
}

// FputsUnlocked is Fputs without locking.
func (f *File) FputsUnlocked(s string) int {
	if _, err := f.write([]byte(s)); err != nil {
		return EOF
	}
	return len(s)
}

// Getdelim reads through the next delim byte, appending to line[:0].
// At end of file it returns what it has, with io.EOF if that is nothing.
func (f *File) Getdelim(line []byte, delim byte) ([]byte, error) {
	defer f.unlock(f.lock())
	return f.GetdelimUnlocked(line, delim)
}

// GetdelimUnlocked is Getdelim without locking.
func (f *File) GetdelimUnlocked(line []byte, delim byte) ([]byte, error) {
	line = line[:0]
	for {
		c, err := f.getc()
		if err == io.EOF {
			if len(line) == 0 {
				return line, io.EOF
			}
			return line, nil
		}
		if err != nil {
			return line, err
		}
		line = append(line, c)
		if c == delim {
			return line, nil
		}
	}
}

// Getline is Getdelim with a newline delimiter.
func (f *File) Getline(line []byte) ([]byte, error) {
	return f.Getdelim(line, '\n')
}

// Getchar reads a byte from standard input.
func (p *Proc) Getchar() int {
	return p.Stdin.Getc()
}

// Putchar writes a byte to standard output.
func (p *Proc) Putchar(c byte) int {
	return p.Stdout.Putc(c)
}

// Puts writes s and a newline to standard output.
func (p *Proc) Puts(s string) int {
	f := p.Stdout
	defer f.unlock(f.lock())
	if f.FputsUnlocked(s) == EOF || f.PutcUnlocked('\n') == EOF {
		return EOF
	}
	return len(s) + 1
}

// Gets reads a line from standard input and returns it
// without its newline.
func (p *Proc) Gets() (string, error) {
	line, err := p.Stdin.Getline(nil)
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return string(line), err
}
