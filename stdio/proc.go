// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"container/list"
	"sync"
	"sync/atomic"

	"rsc.io/libc/kernel"
)

// A Proc is the stdio state of one process: its kernel,
// the registry of live streams, the standard streams,
// the last error number, and the exit handlers.
type Proc struct {
	k Kernel

	mu     sync.Mutex // guards files and atexit
	files  list.List  // of *File
	atexit []func()

	errno atomic.Int64

	Stdin  *File
	Stdout *File
	Stderr *File
}

// NewProc returns the stdio state for a process running on k.
// The standard streams are bound to descriptors 0, 1, and 2:
// standard input and output are line buffered on a terminal
// and fully buffered otherwise, and standard error is unbuffered.
func NewProc(k Kernel) *Proc {
	p := &Proc{k: k}
	p.Stdin = p.newStd(0, kernel.O_RDONLY, p.defaultMode(0))
	p.Stdout = p.newStd(1, kernel.O_WRONLY, p.defaultMode(1))
	p.Stderr = p.newStd(2, kernel.O_WRONLY, IONBF)
	return p
}

func (p *Proc) newStd(fd, oflag int, mode BufMode) *File {
	f := &File{proc: p, flags: flagStdio}
	f.setup(fd, oflag, true)
	f.setMode(mode, nil, 0)
	p.link(f)
	return f
}

// Errno returns the error number of the most recent failure.
func (p *Proc) Errno() kernel.Errno {
	return kernel.Errno(p.errno.Load())
}

// SetErrno sets the error number returned by Errno.
func (p *Proc) SetErrno(e kernel.Errno) {
	p.errno.Store(int64(e))
}

// fail publishes err in the error slot and returns it as an Errno.
func (p *Proc) fail(err error) error {
	e := errno(err)
	p.SetErrno(e)
	return e
}

func (p *Proc) link(f *File) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f.elem == nil {
		f.elem = p.files.PushBack(f)
	}
}

func (p *Proc) unlink(f *File) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f.elem != nil {
		p.files.Remove(f.elem)
		f.elem = nil
	}
}

// snapshot returns the streams on the registry.
func (p *Proc) snapshot() []*File {
	p.mu.Lock()
	defer p.mu.Unlock()

	files := make([]*File, 0, p.files.Len())
	for e := p.files.Front(); e != nil; e = e.Next() {
		files = append(files, e.Value.(*File))
	}
	return files
}

// Streams returns the number of streams on the registry.
func (p *Proc) Streams() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.files.Len()
}

// FlushAll flushes every stream with buffered output,
// as fflush(NULL) does, and returns the first error.
func (p *Proc) FlushAll() error {
	var first error
	for _, f := range p.snapshot() {
		locked := f.lock()
		if f.phase == phaseWriting {
			if err := f.flushWrite(); err != nil && first == nil {
				first = err
			}
		}
		f.unlock(locked)
	}
	return first
}

// flushAllUnlocked flushes buffered output without taking
// stream locks, whose holders may never release them.
func (p *Proc) flushAllUnlocked() {
	for _, f := range p.snapshot() {
		if f.phase == phaseWriting {
			f.flushWrite()
		}
	}
}

// flushBeforeRead flushes the output of every stream but self
// before self reads from the kernel and perhaps blocks.
// A stream whose lock is held elsewhere is skipped:
// its holder is using it and will flush it in turn.
func (p *Proc) flushBeforeRead(self *File) {
	for _, f := range p.snapshot() {
		if f == self {
			continue
		}
		if f.nolock.Load() {
			if f.phase == phaseWriting {
				f.flushWrite()
			}
			continue
		}
		// A busy stream is left to its holder, so its output
		// may reach the kernel after this read begins.
		if !f.trylock() {
			continue
		}
		if f.phase == phaseWriting {
			f.flushWrite()
		}
		f.unlock(true)
	}
}

// Atexit registers fn to be called by Exit.
// Handlers run in reverse order of registration.
func (p *Proc) Atexit(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.atexit = append(p.atexit, fn)
}

// Exit runs the exit handlers, flushes every stream,
// and exits the process with status.
func (p *Proc) Exit(status int) {
	for {
		p.mu.Lock()
		n := len(p.atexit)
		if n == 0 {
			p.mu.Unlock()
			break
		}
		fn := p.atexit[n-1]
		p.atexit = p.atexit[:n-1]
		p.mu.Unlock()
		fn()
	}
	p.FlushAll()
	p.k.Exit(status)
}

// Abort flushes what it can without locking and exits
// with the status of a process killed by SIGABRT.
func (p *Proc) Abort() {
	p.flushAllUnlocked()
	p.k.Exit(128 + 6)
}

// Perror writes msg, a colon, and the text of Errno to standard error.
// An empty msg prints only the text.
func (p *Proc) Perror(msg string) {
	text := p.Errno().Message()
	if msg != "" {
		text = msg + ": " + text
	}
	p.Stderr.Fputs(text + "\n")
}
