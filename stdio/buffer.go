// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"bytes"
	"io"

	"rsc.io/libc/kernel"
)

// flushWrite writes the dirty part of the buffer to the kernel.
// If the kernel takes only part of it, the rest stays buffered
// and dirty so that a later flush may retry.
func (f *File) flushWrite() error {
	if f.phase != phaseWriting {
		return nil
	}
	n, err := f.kwrite(f.buf[:f.next])
	f.pos += int64(n)
	if err != nil {
		copy(f.buf, f.buf[n:f.next])
		f.next -= n
		f.valid = f.next
		return f.fail(err)
	}
	if f.oflag&kernel.O_APPEND != 0 {
		if off, err := f.kseek(0, io.SeekCurrent); err == nil {
			f.pos = off
		}
	}
	f.resetBuf()
	return nil
}

// endRead abandons buffered input and the push-back byte,
// moving the kernel back to the user-visible offset.
// Descriptors that cannot seek simply lose the input.
func (f *File) endRead() {
	if f.phase != phaseReading && f.flags&flagUnget == 0 {
		return
	}
	if off := f.tell(); off != f.pos && off >= 0 {
		if n, err := f.kseek(off, io.SeekStart); err == nil {
			f.pos = n
		}
	}
	f.flags &^= flagUnget
	f.resetBuf()
}

// flush writes out buffered output or discards buffered input.
func (f *File) flush() error {
	if f.fd < 0 {
		return f.proc.fail(kernel.EBADF)
	}
	switch f.phase {
	case phaseWriting:
		return f.flushWrite()
	default:
		f.endRead()
	}
	return nil
}

// Flush writes any buffered output to the kernel.
// On a stream being read it discards the buffered input
// and the push-back byte.
func (f *File) Flush() error {
	defer f.unlock(f.lock())
	return f.flush()
}

// FlushUnlocked is Flush without locking.
func (f *File) FlushUnlocked() error {
	return f.flush()
}

// Sync flushes f and asks the kernel to commit the file to storage.
func (f *File) Sync() error {
	defer f.unlock(f.lock())
	if err := f.flush(); err != nil {
		return err
	}
	if err := f.proc.k.Fsync(f.fd); err != nil {
		return f.fail(err)
	}
	return nil
}

func (f *File) orient() {
	if f.flags&(flagWide|flagByte) == 0 {
		f.flags |= flagByte
	}
}

// write is the write engine.
func (f *File) write(b []byte) (int, error) {
	if err := f.check(true); err != nil {
		return 0, err
	}
	f.orient()
	f.endRead()
	f.flags = f.flags&^flagReadLast | flagWroteLast
	if len(b) == 0 {
		return 0, nil
	}
	if f.oflag&kernel.O_APPEND != 0 && f.mode != IONBF && f.phase != phaseWriting {
		// The kernel writes at end of file.
		if off, err := f.kseek(0, io.SeekEnd); err == nil {
			f.pos = off
		}
	}

	if f.mode == IONBF {
		n, err := f.kwrite(b)
		f.pos += int64(n)
		if err != nil {
			return n, f.fail(err)
		}
		if f.oflag&kernel.O_APPEND != 0 {
			if off, err := f.kseek(0, io.SeekCurrent); err == nil {
				f.pos = off
			}
		}
		return n, nil
	}

	total := 0
	for len(b) > 0 {
		if f.next == len(f.buf) {
			if err := f.flushWrite(); err != nil {
				return total, err
			}
		}
		chunk := b
		nl := false
		if f.mode == IOLBF {
			if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
				chunk = chunk[:i+1]
				nl = true
			}
		}
		n := copy(f.buf[f.next:], chunk)
		f.phase = phaseWriting
		f.next += n
		f.valid = f.next
		total += n
		b = b[n:]
		if nl && n == len(chunk) || f.next == len(f.buf) {
			if err := f.flushWrite(); err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// read is the read engine. It fills b unless short is set,
// in which case it returns as soon as it has some data
// and would otherwise need another kernel read.
func (f *File) read(b []byte, short bool) (int, error) {
	if err := f.check(false); err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, nil
	}
	f.orient()
	if f.phase == phaseWriting {
		if err := f.flushWrite(); err != nil {
			return 0, err
		}
	}
	f.flags = f.flags&^flagWroteLast | flagReadLast

	n := 0
	if f.flags&flagUnget != 0 {
		b[0] = f.unget
		f.flags &^= flagUnget
		n = 1
	}
	flushed := false
	for n < len(b) {
		if f.phase == phaseReading && f.next < f.valid {
			m := copy(b[n:], f.buf[f.next:f.valid])
			f.next += m
			n += m
			continue
		}
		if short && n > 0 || f.flags&flagEOF != 0 {
			break
		}
		if f.mode != IOFBF && !flushed {
			f.proc.flushBeforeRead(f)
			flushed = true
		}
		f.resetBuf()
		if f.mode == IONBF || len(b)-n >= len(f.buf) {
			m, err := f.kread(b[n:])
			f.pos += int64(m)
			n += m
			if err != nil {
				return n, f.fail(err)
			}
			if m == 0 {
				f.flags |= flagEOF
				break
			}
			continue
		}
		m, err := f.kread(f.buf)
		f.pos += int64(m)
		if err != nil {
			return n, f.fail(err)
		}
		if m == 0 {
			f.flags |= flagEOF
			break
		}
		f.valid = m
		f.phase = phaseReading
	}
	return n, nil
}

// Read reads up to len(b) bytes from f, implementing [io.Reader].
// It returns io.EOF only when no bytes were read at end of file.
func (f *File) Read(b []byte) (int, error) {
	defer f.unlock(f.lock())
	n, err := f.read(b, true)
	if n == 0 && err == nil && len(b) > 0 && f.flags&flagEOF != 0 {
		return 0, io.EOF
	}
	return n, err
}

// Write writes b to f, implementing [io.Writer].
func (f *File) Write(b []byte) (int, error) {
	defer f.unlock(f.lock())
	n, err := f.write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return n, err
}

// WriteString writes s to f.
func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Fread reads n items of size bytes into b and returns
// the number of complete items read. It reads no more
// than fit in b.
func (f *File) Fread(b []byte, size, n int) int {
	defer f.unlock(f.lock())
	return f.FreadUnlocked(b, size, n)
}

// FreadUnlocked is Fread without locking.
func (f *File) FreadUnlocked(b []byte, size, n int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	n = min(n, len(b)/size)
	m, _ := f.read(b[:n*size], false)
	return m / size
}

// Fwrite writes n items of size bytes from b and returns
// the number of complete items written.
func (f *File) Fwrite(b []byte, size, n int) int {
	defer f.unlock(f.lock())
	return f.FwriteUnlocked(b, size, n)
}

// FwriteUnlocked is Fwrite without locking.
func (f *File) FwriteUnlocked(b []byte, size, n int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	n = min(n, len(b)/size)
	m, _ := f.write(b[:n*size])
	return m / size
}
