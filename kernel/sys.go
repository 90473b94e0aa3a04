// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"io"
	"slices"
)

// Open opens name with the O_ flags in flag, creating it with
// permission bits perm when O_CREAT is set, and returns the
// lowest free descriptor.
func (p *Proc) Open(name string, flag int, perm uint32) (int, error) {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpOpen, Fd: -1, Name: name, Off: int64(flag)}
	p.syscall(&c, func() {
		c.Ret = int64(p.open(name, flag, uint16(perm)))
	})
	if p.Error != 0 {
		return -1, p.Error
	}
	return int(c.Ret), nil
}

// Read reads up to len(b) bytes from fd.
// A zero count with a nil error is end of file.
func (p *Proc) Read(fd int, b []byte) (int, error) {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpRead, Fd: fd}
	p.syscall(&c, func() {
		n := p.rdwr(fd, b, _FREAD)
		c.Ret = int64(n)
		c.Data = slices.Clone(b[:n])
	})
	return int(c.Ret), p.err()
}

// Write writes b to fd and returns the count written,
// which is short only when an error is returned.
func (p *Proc) Write(fd int, b []byte) (int, error) {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpWrite, Fd: fd}
	p.syscall(&c, func() {
		n := p.rdwr(fd, b, _FWRITE)
		c.Ret = int64(n)
		c.Data = slices.Clone(b[:n])
	})
	return int(c.Ret), p.err()
}

// Seek sets the offset of fd relative to whence
// (io.SeekStart, io.SeekCurrent, or io.SeekEnd)
// and returns the new offset.
func (p *Proc) Seek(fd int, offset int64, whence int) (int64, error) {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpSeek, Fd: fd, Off: offset, Whence: whence}
	p.syscall(&c, func() {
		c.Ret = p.seek(fd, offset, whence)
	})
	if p.Error != 0 {
		return -1, p.Error
	}
	return c.Ret, nil
}

// Fsync commits fd to stable storage, which for an
// in-memory disk only validates the descriptor.
func (p *Proc) Fsync(fd int) error {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpFsync, Fd: fd}
	p.syscall(&c, func() {
		p.getf(fd)
	})
	return p.err()
}

// Close releases fd.
func (p *Proc) Close(fd int) error {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpClose, Fd: fd}
	p.syscall(&c, func() {
		f := p.getf(fd)
		if f == nil {
			return
		}
		p.Files[fd] = nil
		p.closef(f)
	})
	return p.err()
}

// IsTerminal reports whether fd is open on a terminal.
func (p *Proc) IsTerminal(fd int) bool {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	f := p.getf(fd)
	p.Error = 0
	return f != nil && f.pipe == nil && f.inode.ischr() && f.inode.major == majTTY
}

// Dup2 makes newfd refer to the same open file as oldfd,
// closing newfd first if necessary.
func (p *Proc) Dup2(oldfd, newfd int) (int, error) {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpDup, Fd: oldfd, Off: int64(newfd)}
	p.syscall(&c, func() {
		f := p.getf(oldfd)
		if f == nil {
			return
		}
		if newfd < 0 || newfd >= len(p.Files) {
			p.Error = EBADF
			return
		}
		c.Ret = int64(newfd)
		if newfd == oldfd {
			return
		}
		if old := p.Files[newfd]; old != nil {
			p.closef(old)
		}
		f.count++
		p.Files[newfd] = f
	})
	if p.Error != 0 {
		return -1, p.Error
	}
	return newfd, nil
}

// Pipe returns the read and write descriptors of a new pipe.
func (p *Proc) Pipe() (r, w int, err error) {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpPipe, Fd: -1}
	p.syscall(&c, func() {
		r, w = p.pipe()
		c.Ret = int64(r)
		c.Off = int64(w)
	})
	if p.Error != 0 {
		return -1, -1, p.Error
	}
	return r, w, nil
}

// SetNonblock sets or clears O_NONBLOCK on fd.
func (p *Proc) SetNonblock(fd int, on bool) error {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	p.Error = 0
	f := p.getf(fd)
	if f == nil {
		return p.Error
	}
	if on {
		f.flag |= _FNONBLOCK
	} else {
		f.flag &^= _FNONBLOCK
	}
	return nil
}

// Exit closes every descriptor and records status.
func (p *Proc) Exit(status int) {
	p.Sys.Big.Lock()
	defer p.Sys.Big.Unlock()

	c := Call{Op: OpExit, Fd: -1, Ret: int64(status)}
	p.syscall(&c, func() {
		p.exit(status)
	})
}

/*
 * common code for read and write calls:
 * check permissions, then switch out
 * to readi, writei, or pipe code.
 */
func (p *Proc) rdwr(fd int, b []byte, mode int) int {
	f := p.getf(fd)
	if f == nil {
		return 0
	}
	if f.flag&mode == 0 {
		p.Error = EBADF
		return 0
	}
	if f.pipe != nil {
		if mode == _FREAD {
			return p.readp(f, b)
		}
		return p.writep(f, b)
	}
	var n int
	if mode == _FREAD {
		n = p.readi(f, b)
	} else {
		n = p.writei(f, b)
	}
	if !f.inode.ischr() {
		f.offset += int64(n)
	}
	return n
}

func (p *Proc) open(name string, flag int, perm uint16) int {
	var mode int
	switch flag & O_ACCMODE {
	case O_RDONLY:
		mode = _FREAD
	case O_WRONLY:
		mode = _FWRITE
	case O_RDWR:
		mode = _FREAD | _FWRITE
	default:
		p.Error = EINVAL
		return -1
	}

	ip, dp, elem := p.namei(name)
	created := false
	switch {
	case ip == nil && dp == nil:
		return -1
	case ip == nil:
		if flag&O_CREAT == 0 {
			p.Error = ENOENT
			return -1
		}
		if !p.access(dp, _IWRITE) {
			return -1
		}
		ip = p.maknode(elem, _IFREG|perm&0o777, dp)
		created = true
	case flag&(O_CREAT|O_EXCL) == O_CREAT|O_EXCL:
		p.Error = EEXIST
		return -1
	}
	return p.open1(ip, mode, flag, created)
}

/*
 * common code for open and creat.
 * Check permissions, allocate an open file structure,
 * and call the device open routine if any.
 */
func (p *Proc) open1(ip *inode, mode, flag int, created bool) int {
	if !created {
		if mode&_FREAD != 0 {
			p.access(ip, _IREAD)
		}
		if mode&_FWRITE != 0 {
			p.access(ip, _IWRITE)
			if ip.isdir() {
				p.Error = EISDIR
			}
		}
	}
	if p.Error != 0 {
		return -1
	}
	if flag&O_TRUNC != 0 && mode&_FWRITE != 0 {
		p.itrunc(ip)
	}

	f, fd := p.falloc()
	if f == nil {
		return -1
	}
	f.flag = mode
	if flag&O_APPEND != 0 {
		f.flag |= _FAPPEND
	}
	if flag&O_NONBLOCK != 0 {
		f.flag |= _FNONBLOCK
	}
	if flag&O_CLOEXEC != 0 {
		f.flag |= _FCLOEXEC
	}
	f.inode = ip
	if ip.ischr() {
		p.dev(ip.major).open(p, ip.minor, mode)
		if p.Error != 0 {
			p.Files[fd] = nil
			return -1
		}
	}
	return fd
}

func (p *Proc) seek(fd int, offset int64, whence int) int64 {
	f := p.getf(fd)
	if f == nil {
		return -1
	}
	if f.pipe != nil || f.inode.ischr() && f.inode.major == majTTY {
		p.Error = ESPIPE
		return -1
	}
	switch whence {
	case io.SeekStart:
		// nothing
	case io.SeekCurrent:
		offset += f.offset
	case io.SeekEnd:
		offset += int64(len(f.inode.data))
	default:
		p.Error = EINVAL
		return -1
	}
	if offset < 0 {
		p.Error = EINVAL
		return -1
	}
	f.offset = offset
	return offset
}
