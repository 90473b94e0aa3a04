// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import "rsc.io/libc/kernel"

// Setvbuf sets the buffering mode of f. With IOFBF or IOLBF the
// stream uses buf[:size] if buf is not nil, and otherwise a buffer
// of size bytes (BUFSIZ if size is 0) that it allocates itself.
// A caller-supplied buffer must not be used elsewhere while f is open.
// Pending output is flushed and buffered input discarded first.
func (f *File) Setvbuf(buf []byte, mode BufMode, size int) error {
	defer f.unlock(f.lock())
	switch mode {
	case IOFBF, IOLBF, IONBF:
	default:
		return f.proc.fail(kernel.EINVAL)
	}
	if size < 0 || buf != nil && size > len(buf) {
		return f.proc.fail(kernel.EINVAL)
	}
	if f.fd >= 0 {
		if err := f.flush(); err != nil {
			return err
		}
	}
	if buf != nil {
		if size == 0 {
			size = len(buf)
		}
		if size == 0 {
			return f.proc.fail(kernel.EINVAL)
		}
		buf = buf[:size:size]
	}
	f.setMode(mode, buf, size)
	return nil
}

// Setbuf makes f fully buffered in buf, or unbuffered if buf is nil.
func (f *File) Setbuf(buf []byte) {
	if buf == nil {
		f.Setvbuf(nil, IONBF, 0)
		return
	}
	f.Setvbuf(buf, IOFBF, len(buf))
}

// Setlinebuf makes f line buffered.
func (f *File) Setlinebuf() {
	f.Setvbuf(nil, IOLBF, 0)
}

// Fbufsize returns the size of the buffer of f.
func (f *File) Fbufsize() int {
	defer f.unlock(f.lock())
	return len(f.buf)
}

// Fpending returns the number of bytes of output buffered in f.
func (f *File) Fpending() int {
	defer f.unlock(f.lock())
	if f.phase != phaseWriting {
		return 0
	}
	return f.next
}

// Flbf reports whether f is line buffered.
func (f *File) Flbf() bool {
	defer f.unlock(f.lock())
	return f.mode == IOLBF
}

// Freadable reports whether f was opened for reading.
func (f *File) Freadable() bool {
	return f.readable()
}

// Fwritable reports whether f was opened for writing.
func (f *File) Fwritable() bool {
	return f.writable()
}

// Freading reports whether f is read-only
// or its last operation was a read.
func (f *File) Freading() bool {
	defer f.unlock(f.lock())
	return !f.writable() || f.flags&flagReadLast != 0
}

// Fwriting reports whether f is write-only
// or its last operation was a write.
func (f *File) Fwriting() bool {
	defer f.unlock(f.lock())
	return !f.readable() || f.flags&flagWroteLast != 0
}

// Fpurge discards buffered input and output and the push-back byte.
func (f *File) Fpurge() {
	defer f.unlock(f.lock())
	f.flags &^= flagUnget
	f.resetBuf()
}

// Mode returns the buffering mode of f.
func (f *File) Mode() BufMode {
	defer f.unlock(f.lock())
	return f.mode
}
