// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"fmt"
	"io"
	"unicode/utf8"

	"rsc.io/libc/kernel"
)

// A sink hands formatted output to a stream a byte at a time.
type sink struct {
	f *File
}

func (s sink) Write(b []byte) (int, error) {
	for i, c := range b {
		if s.f.PutcUnlocked(c) == EOF {
			return i, s.f.proc.Errno()
		}
	}
	return len(b), nil
}

// Printf formats according to a format specifier and writes to f.
// The whole call holds the stream lock, so the output of concurrent
// calls is not interleaved.
func (f *File) Printf(format string, args ...any) (int, error) {
	defer f.unlock(f.lock())
	return f.PrintfUnlocked(format, args...)
}

// PrintfUnlocked is Printf without locking.
func (f *File) PrintfUnlocked(format string, args ...any) (int, error) {
	if err := f.check(true); err != nil {
		return 0, err
	}
	if f.mode != IONBF {
		return fmt.Fprintf(sink{f}, format, args...)
	}

	// Stage unbuffered output so the kernel sees whole pieces.
	var stage [128]byte
	f.endRead()
	f.buf = stage[:]
	f.mode = IOFBF
	n, err := fmt.Fprintf(sink{f}, format, args...)
	if ferr := f.flushWrite(); ferr != nil && err == nil {
		err = ferr
	}
	f.buf = nil
	f.mode = IONBF
	f.resetBuf()
	return n, err
}

// Printf writes to standard output.
func (p *Proc) Printf(format string, args ...any) (int, error) {
	return p.Stdout.Printf(format, args...)
}

// Dprintf formats straight to descriptor fd, bypassing any stream.
func (p *Proc) Dprintf(fd int, format string, args ...any) (int, error) {
	b := fmt.Appendf(nil, format, args...)
	for n := 0; n < len(b); {
		m, err := p.k.Write(fd, b[n:])
		n += m
		switch {
		case err == kernel.EINTR:
		case err != nil:
			return n, p.fail(err)
		case m == 0:
			return n, p.fail(kernel.EIO)
		}
	}
	return len(b), nil
}

// Snprintf formats into buf, truncating to leave room for a
// terminating NUL, and returns the length of the full output.
func Snprintf(buf []byte, format string, args ...any) int {
	s := fmt.Sprintf(format, args...)
	if len(buf) > 0 {
		n := copy(buf[:len(buf)-1], s)
		buf[n] = 0
	}
	return len(s)
}

// An asbuf is a heap buffer that doubles as it fills.
type asbuf struct {
	b []byte
}

func (a *asbuf) Write(p []byte) (int, error) {
	if need := len(a.b) + len(p); need > cap(a.b) {
		size := max(cap(a.b), 64)
		for size < need {
			size *= 2
		}
		b := make([]byte, len(a.b), size)
		copy(b, a.b)
		a.b = b
	}
	a.b = append(a.b, p...)
	return len(p), nil
}

// Asprintf formats into a newly allocated buffer.
func Asprintf(format string, args ...any) []byte {
	var a asbuf
	fmt.Fprintf(&a, format, args...)
	return a.b
}

// A scanner reads runes for fmt.Fscanf from a locked stream.
// Its one rune of lookahead goes back through the push-back slot
// when it is one byte, and otherwise by backing up the read buffer.
type scanner struct {
	f    *File
	last [utf8.UTFMax]byte
	size int
}

// Read makes a scanner an io.Reader. fmt reads through
// ReadRune and UnreadRune instead.
func (s *scanner) Read(b []byte) (int, error) {
	s.size = 0
	if len(b) == 0 {
		return 0, nil
	}
	c, err := s.f.getc()
	if err != nil {
		return 0, err
	}
	b[0] = c
	return 1, nil
}

// ReadRune returns the next UTF-8 encoded rune.
// A malformed sequence yields utf8.RuneError with the count
// of bytes it spans, so UnreadRune can return them all.
func (s *scanner) ReadRune() (rune, int, error) {
	s.size = 0
	c, err := s.f.getc()
	if err != nil {
		return 0, 0, err
	}
	s.last[0] = c
	s.size = 1
	if c < utf8.RuneSelf {
		return rune(c), 1, nil
	}
	for !utf8.FullRune(s.last[:s.size]) {
		c, err := s.f.getc()
		if err != nil {
			break
		}
		if utf8.RuneStart(c) {
			// Not part of this sequence.
			if !s.f.unreadBuffered(1) {
				s.f.UngetcUnlocked(int(c))
			}
			break
		}
		s.last[s.size] = c
		s.size++
	}
	r, n := utf8.DecodeRune(s.last[:s.size])
	if n != s.size {
		r = utf8.RuneError
	}
	return r, s.size, nil
}

func (s *scanner) UnreadRune() error {
	switch {
	case s.size == 0:
		return io.ErrNoProgress
	case s.size == 1:
		if s.f.UngetcUnlocked(int(s.last[0])) == EOF {
			return kernel.EINVAL
		}
	case !s.f.unreadBuffered(s.size):
		return kernel.EINVAL
	}
	s.size = 0
	return nil
}

// Scanf scans f according to a format specifier, as fmt.Fscanf does.
// At most one character of lookahead is pushed back onto f.
func (f *File) Scanf(format string, args ...any) (int, error) {
	defer f.unlock(f.lock())
	return f.ScanfUnlocked(format, args...)
}

// ScanfUnlocked is Scanf without locking.
func (f *File) ScanfUnlocked(format string, args ...any) (int, error) {
	if err := f.check(false); err != nil {
		return 0, err
	}
	return fmt.Fscanf(&scanner{f: f}, format, args...)
}

// Scanf scans standard input.
func (p *Proc) Scanf(format string, args ...any) (int, error) {
	return p.Stdin.Scanf(format, args...)
}
