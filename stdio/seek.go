// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"io"

	"rsc.io/libc/kernel"
)

// tell returns the user-visible offset.
// While reading, the kernel is at the end of the buffered
// input; otherwise it is at the start of the dirty bytes.
func (f *File) tell() int64 {
	off := f.pos
	if f.phase == phaseReading {
		off -= int64(f.valid - f.next)
	} else {
		off += int64(f.next)
	}
	if f.flags&flagUnget != 0 {
		off--
	}
	return off
}

// seek is the positioning engine.
func (f *File) seek(off int64, whence int) (int64, error) {
	if f.fd < 0 {
		return -1, f.proc.fail(kernel.EBADF)
	}
	switch whence {
	case io.SeekStart, io.SeekCurrent, io.SeekEnd:
	default:
		return -1, f.proc.fail(kernel.EINVAL)
	}
	if f.flags&flagNoSeek != 0 {
		return -1, f.proc.fail(kernel.ESPIPE)
	}
	if whence == io.SeekCurrent {
		off += f.tell()
		whence = io.SeekStart
	}

	if whence == io.SeekStart && f.mode != IONBF && f.phase == phaseReading {
		lo := f.pos - int64(f.valid)
		if lo <= off && off <= f.pos {
			f.next = int(off - lo)
			f.flags &^= flagUnget | flagEOF
			return off, nil
		}
	}

	if err := f.flushWrite(); err != nil {
		return -1, err
	}
	f.flags &^= flagUnget
	f.resetBuf()
	n, err := f.kseek(off, whence)
	if err != nil {
		switch e := errno(err); e {
		case kernel.ESPIPE:
			f.flags |= flagNoSeek
			return -1, f.proc.fail(e)
		case kernel.EINVAL:
			return -1, f.proc.fail(e)
		}
		return -1, f.fail(err)
	}
	f.pos = n
	f.flags &^= flagEOF
	return n, nil
}

// Seek sets the offset for the next read or write on f,
// interpreted according to whence, and returns the new offset.
// A target already in the read buffer costs no kernel call.
// Seek discards the push-back byte and clears end of file.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	defer f.unlock(f.lock())
	return f.seek(offset, whence)
}

// SeekUnlocked is Seek without locking.
func (f *File) SeekUnlocked(offset int64, whence int) (int64, error) {
	return f.seek(offset, whence)
}

// Tell returns the current offset of f.
func (f *File) Tell() (int64, error) {
	defer f.unlock(f.lock())
	return f.TellUnlocked()
}

// TellUnlocked is Tell without locking.
func (f *File) TellUnlocked() (int64, error) {
	if f.fd < 0 {
		return -1, f.proc.fail(kernel.EBADF)
	}
	if f.flags&flagNoSeek != 0 {
		return -1, f.proc.fail(kernel.ESPIPE)
	}
	off := f.tell()
	if off < 0 {
		return -1, f.proc.fail(kernel.EINVAL)
	}
	return off, nil
}

// Rewind seeks to the start of f and clears its error indicator.
func (f *File) Rewind() {
	defer f.unlock(f.lock())
	f.seek(0, io.SeekStart)
	f.flags &^= flagErr
}

// An Fpos is a saved stream position.
type Fpos struct {
	Offset int64
	State  int // conversion state
}

// Getpos returns the current position of f.
func (f *File) Getpos() (Fpos, error) {
	defer f.unlock(f.lock())
	off, err := f.TellUnlocked()
	if err != nil {
		return Fpos{}, err
	}
	return Fpos{Offset: off, State: f.shift}, nil
}

// Setpos restores a position returned by Getpos.
func (f *File) Setpos(pos Fpos) error {
	defer f.unlock(f.lock())
	if _, err := f.seek(pos.Offset, io.SeekStart); err != nil {
		return err
	}
	f.shift = pos.State
	return nil
}
