// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import "rsc.io/libc/kernel"

// Fopen opens the named file with the given fopen mode
// ("r", "w", "a", optionally followed by "+", "b", "t", "e", or "x").
func (p *Proc) Fopen(name, mode string) (*File, error) {
	oflag, err := parseMode(mode)
	if err != nil {
		return nil, p.fail(err)
	}
	fd, err := p.k.Open(name, oflag, 0o666)
	if err != nil {
		return nil, p.fail(err)
	}
	f := &File{proc: p}
	if err := f.setup(fd, oflag, false); err != nil {
		p.k.Close(fd)
		return nil, p.fail(err)
	}
	f.setMode(p.defaultMode(fd), nil, 0)
	p.link(f)
	return f, nil
}

// Fdopen returns a stream on the open descriptor fd.
// The stream starts at the descriptor's current offset.
// Creation and truncation in mode have no effect.
func (p *Proc) Fdopen(fd int, mode string) (*File, error) {
	oflag, err := parseMode(mode)
	if err != nil {
		return nil, p.fail(err)
	}
	oflag &^= kernel.O_CREAT | kernel.O_TRUNC | kernel.O_EXCL
	f := &File{proc: p}
	if err := f.setup(fd, oflag, true); err != nil {
		return nil, p.fail(err)
	}
	f.setMode(p.defaultMode(fd), nil, 0)
	p.link(f)
	return f, nil
}

// Freopen reopens f on the named file. See [File.Reopen].
func (p *Proc) Freopen(name, mode string, f *File) (*File, error) {
	if err := f.Reopen(name, mode); err != nil {
		return nil, err
	}
	return f, nil
}

// Reopen flushes f, closes its descriptor, and opens the named file
// in its place with the given mode. The File itself survives:
// if the open fails, f is left closed but may be reopened again.
// Buffering is kept, and the indicators and orientation are cleared.
func (f *File) Reopen(name, mode string) error {
	locked := f.lock()
	if f.fd >= 0 {
		f.flush()
		f.proc.k.Close(f.fd)
	}
	f.fd = -1
	f.flags &= flagOwnBuf | flagStdio
	f.resetBuf()
	f.unlock(locked)

	// The stream may have been closed and unlinked.
	// Link before relocking to keep the registry lock first.
	f.proc.link(f)

	defer f.unlock(f.lock())
	oflag, err := parseMode(mode)
	if err != nil {
		return f.proc.fail(err)
	}
	fd, err := f.proc.k.Open(name, oflag, 0o666)
	if err != nil {
		return f.proc.fail(err)
	}
	if err := f.setup(fd, oflag, false); err != nil {
		f.proc.k.Close(fd)
		f.fd = -1
		return f.proc.fail(err)
	}
	if f.buf == nil && f.mode != IONBF {
		f.setMode(f.mode, nil, 0)
	}
	return nil
}
