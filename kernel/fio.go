// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

/*
 * Convert a user supplied
 * file descriptor into a pointer
 * to a file structure.
 * Only task is to check range
 * of the descriptor.
 */
func (p *Proc) getf(fd int) *File {
	if fd < 0 || fd >= len(p.Files) || p.Files[fd] == nil {
		p.Error = EBADF
		return nil
	}
	return p.Files[fd]
}

/*
 * Internal form of close.
 * Decrement reference count on
 * file structure and call the device
 * close routine on last closef.
 * Pipes drop their reader or writer
 * on last close so the other end wakes.
 */
func (p *Proc) closef(f *File) {
	f.count--
	if f.count > 0 {
		return
	}
	if f.pipe != nil {
		p.closep(f)
		return
	}
	if ip := f.inode; ip.ischr() {
		p.dev(ip.major).close(p, ip.minor)
	}
}

/*
 * Allocate a user file descriptor,
 * the lowest free one at or above lo.
 */
func (p *Proc) ufalloc(lo int) int {
	for i := lo; i < len(p.Files); i++ {
		if p.Files[i] == nil {
			return i
		}
	}
	p.Error = EMFILE
	return -1
}

/*
 * Allocate a user file descriptor
 * and a file structure.
 * Initialize the descriptor
 * to point at the file structure.
 */
func (p *Proc) falloc() (*File, int) {
	i := p.ufalloc(0)
	if i < 0 {
		return nil, -1
	}
	f := new(File)
	f.count = 1
	p.Files[i] = f
	return f, i
}
