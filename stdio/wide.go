// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"unicode/utf8"

	"rsc.io/libc/kernel"
)

// wide orients f for wide characters, failing if it is byte oriented.
func (f *File) wide() bool {
	if f.flags&flagByte != 0 {
		f.proc.SetErrno(kernel.EINVAL)
		return false
	}
	f.flags |= flagWide
	return true
}

// Getwc reads one UTF-8 encoded character from f.
// It returns EOF at end of file, on error, or on an invalid
// sequence, for which the error number is EILSEQ.
func (f *File) Getwc() rune {
	defer f.unlock(f.lock())
	return f.GetwcUnlocked()
}

// GetwcUnlocked is Getwc without locking.
func (f *File) GetwcUnlocked() rune {
	if !f.wide() {
		return EOF
	}
	var b [utf8.UTFMax]byte
	n := 0
	for {
		c, err := f.getc()
		if err != nil {
			if n > 0 {
				f.flags |= flagErr
				f.proc.SetErrno(kernel.EILSEQ)
			}
			return EOF
		}
		b[n] = c
		n++
		if utf8.FullRune(b[:n]) {
			break
		}
	}
	r, size := utf8.DecodeRune(b[:n])
	if r == utf8.RuneError && size <= 1 {
		f.flags |= flagErr
		f.proc.SetErrno(kernel.EILSEQ)
		return EOF
	}
	return r
}

// Putwc writes r to f in UTF-8 and returns it, or EOF on error.
func (f *File) Putwc(r rune) rune {
	defer f.unlock(f.lock())
	return f.PutwcUnlocked(r)
}

// PutwcUnlocked is Putwc without locking.
func (f *File) PutwcUnlocked(r rune) rune {
	if !f.wide() {
		return EOF
	}
	if !utf8.ValidRune(r) {
		f.flags |= flagErr
		f.proc.SetErrno(kernel.EILSEQ)
		return EOF
	}
	var b [utf8.UTFMax]byte
	n := utf8.EncodeRune(b[:], r)
	if m, _ := f.write(b[:n]); m != n {
		return EOF
	}
	return r
}
