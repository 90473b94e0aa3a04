// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"container/list"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"rsc.io/libc/kernel"
)

// A phase records what the buffer holds.
type phase uint8

const (
	phaseEmpty   phase = iota // nothing buffered
	phaseReading              // buf[:valid] came from the kernel, which is at pos
	phaseWriting              // buf[:next] is dirty, to be written at pos
)

/* flags */
const (
	flagOwnBuf    = 1 << iota // buf was allocated by the stream
	flagUnget                 // unget holds a pushed-back byte
	flagEOF                   // end of file seen
	flagErr                   // kernel error seen
	flagWroteLast             // last operation was a write
	flagReadLast              // last operation was a read
	flagWide                  // wide oriented
	flagByte                  // byte oriented
	flagStdio                 // standard stream, never freed
	flagNoSeek                // descriptor cannot seek
)

// A File is a buffered stream.
// Its address is stable from open until Close,
// and a standard stream's for the life of its Proc.
type File struct {
	proc   *Proc
	mu     sync.Mutex
	owner  atomic.Int64 // goroutine holding mu, or 0
	depth  int          // acquisitions by owner
	nolock atomic.Bool  // caller manages locking
	elem   *list.Element

	fd    int
	oflag int // kernel open flags
	flags uint32
	mode  BufMode
	buf   []byte // len(buf) is the capacity; nil when unbuffered
	valid int    // buf[:valid] is meaningful
	next  int    // user cursor; 0 <= next <= valid <= len(buf)
	phase phase
	pos   int64 // kernel offset after the last successful call
	unget byte
	shift int // conversion state saved by Getpos
}

func (f *File) readable() bool {
	return f.oflag&kernel.O_ACCMODE != kernel.O_WRONLY
}

func (f *File) writable() bool {
	return f.oflag&kernel.O_ACCMODE != kernel.O_RDONLY
}

// check reports EBADF if the stream is closed
// or does not permit the requested direction.
func (f *File) check(write bool) error {
	if f.fd < 0 || write && !f.writable() || !write && !f.readable() {
		f.proc.SetErrno(kernel.EBADF)
		return kernel.EBADF
	}
	return nil
}

// fail records a kernel failure in the sticky error
// indicator and the process error slot.
func (f *File) fail(err error) error {
	f.flags |= flagErr
	return f.proc.fail(err)
}

func errno(err error) kernel.Errno {
	var e kernel.Errno
	if errors.As(err, &e) {
		return e
	}
	return kernel.EIO
}

func (f *File) kread(b []byte) (int, error) {
	for {
		n, err := f.proc.k.Read(f.fd, b)
		if errors.Is(err, kernel.EINTR) {
			continue
		}
		return n, err
	}
}

// kwrite writes all of b, retrying interrupted and short writes.
func (f *File) kwrite(b []byte) (int, error) {
	total := 0
	for total < len(b) {
		n, err := f.proc.k.Write(f.fd, b[total:])
		total += n
		if errors.Is(err, kernel.EINTR) {
			continue
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, kernel.EIO
		}
	}
	return total, nil
}

func (f *File) kseek(off int64, whence int) (int64, error) {
	for {
		n, err := f.proc.k.Seek(f.fd, off, whence)
		if errors.Is(err, kernel.EINTR) {
			continue
		}
		return n, err
	}
}

// resetBuf empties the buffer.
func (f *File) resetBuf() {
	f.valid = 0
	f.next = 0
	f.phase = phaseEmpty
}

// initPos sets pos from the kernel offset of an adopted descriptor.
// A descriptor that cannot seek starts at 0.
func (f *File) initPos() error {
	off, err := f.kseek(0, io.SeekCurrent)
	switch {
	case err == nil:
		f.pos = off
	case errors.Is(err, kernel.ESPIPE):
		f.pos = 0
		f.flags |= flagNoSeek
	default:
		return err
	}
	return nil
}

// setup readies f to stream descriptor fd.
func (f *File) setup(fd, oflag int, adopt bool) error {
	f.fd = fd
	f.oflag = oflag
	f.flags &= flagOwnBuf | flagStdio
	f.unget = 0
	f.shift = 0
	f.resetBuf()
	f.pos = 0
	if adopt {
		return f.initPos()
	}
	if f.proc.k.IsTerminal(fd) {
		f.flags |= flagNoSeek
	}
	return nil
}

// setMode installs a buffer of size bytes, or buf if it is not nil,
// and selects mode. The caller has flushed f.
func (f *File) setMode(mode BufMode, buf []byte, size int) {
	f.resetBuf()
	f.mode = mode
	if mode == IONBF {
		f.buf = nil
		f.flags &^= flagOwnBuf
		return
	}
	if buf != nil {
		f.buf = buf
		f.flags &^= flagOwnBuf
		return
	}
	if size <= 0 {
		size = BUFSIZ
	}
	if f.flags&flagOwnBuf == 0 || len(f.buf) != size {
		f.buf = make([]byte, size)
	}
	f.flags |= flagOwnBuf
}

// defaultMode returns the buffering for a new stream on fd:
// line buffered on a terminal and fully buffered otherwise.
func (p *Proc) defaultMode(fd int) BufMode {
	if p.k.IsTerminal(fd) {
		return IOLBF
	}
	return IOFBF
}

// Fileno returns the stream's descriptor, or -1 once closed.
func (f *File) Fileno() int {
	defer f.unlock(f.lock())
	return f.fd
}

// Close flushes f and closes its descriptor.
// A standard stream stays usable with Reopen;
// any other File must not be used again except to Reopen it.
func (f *File) Close() error {
	locked := f.lock()
	if f.fd < 0 {
		f.unlock(locked)
		return f.proc.fail(kernel.EBADF)
	}
	err := f.flush()
	if cerr := f.proc.k.Close(f.fd); cerr != nil && err == nil {
		err = f.proc.fail(cerr)
	}
	f.fd = -1
	f.flags &^= flagUnget | flagEOF | flagReadLast | flagWroteLast | flagWide | flagByte
	f.resetBuf()
	std := f.flags&flagStdio != 0
	if !std && f.flags&flagOwnBuf != 0 {
		f.buf = nil
		f.flags &^= flagOwnBuf
	}
	f.unlock(locked)

	if !std {
		f.proc.unlink(f)
	}
	return err
}
