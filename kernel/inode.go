// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import "time"

type inode struct {
	inum  int
	mode  uint16
	nlink int
	major uint8
	minor uint8
	atime time.Time
	mtime time.Time
	data  []byte   // regular file contents
	dir   []dirent // directory entries
}

type dirent struct {
	name string
	ip   *inode
}

/* modes */
const (
	_IFMT   uint16 = 0o170000 /* type of file */
	_IFDIR  uint16 = 0o040000 /* directory */
	_IFCHR  uint16 = 0o020000 /* character special */
	_IFREG  uint16 = 0o100000 /* regular */
	_IREAD  uint16 = 0o400    /* owner read, write, execute permissions */
	_IWRITE uint16 = 0o200
	_IEXEC  uint16 = 0o100
)

func (ip *inode) isdir() bool {
	return ip.mode&_IFMT == _IFDIR
}

func (ip *inode) ischr() bool {
	return ip.mode&_IFMT == _IFCHR
}

func now() time.Time {
	return time.Now()
}

/*
 * Check mode permission on inode pointer.
 * Mode is READ, WRITE or EXEC.
 * There is a single user, so only the owner
 * bits are consulted.
 */
func (p *Proc) access(ip *inode, mode uint16) bool {
	if ip.mode&mode == 0 {
		p.Error = EACCES
		return false
	}
	return true
}

func (p *Proc) itrunc(ip *inode) {
	if ip.ischr() {
		return
	}
	ip.data = nil
	ip.mtime = now()
}

func (p *Proc) maknode(name string, mode uint16, dp *inode) *inode {
	if len(name) > DIRSIZ {
		name = name[:DIRSIZ]
	}
	ip := p.Sys.Disk.ialloc()
	ip.atime = now()
	ip.mtime = ip.atime
	ip.mode = mode
	ip.nlink = 1
	dp.dir = append(dp.dir, dirent{name, ip})
	dp.mtime = ip.mtime
	return ip
}
