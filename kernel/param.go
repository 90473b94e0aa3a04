// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

/*
 * tunable variables
 */
const (
	NOFILE  = 20        /* max open files per process */
	NTTY    = 8         /* number of terminals, /dev/tty1../dev/tty8 */
	PIPSIZ  = 4096      /* pipe buffer size */
	DIRSIZ  = 14        /* max characters per directory entry */
	MAXSIZE = 1<<24 - 1 /* max regular file size */
)

/*
 * open flags, with the Linux values
 */
const (
	O_RDONLY   = 0x0
	O_WRONLY   = 0x1
	O_RDWR     = 0x2
	O_ACCMODE  = 0x3
	O_CREAT    = 0o100
	O_EXCL     = 0o200
	O_TRUNC    = 0o1000
	O_APPEND   = 0o2000
	O_NONBLOCK = 0o4000
	O_CLOEXEC  = 0o2000000
)

/*
 * device majors, indexes into devtab
 */
const (
	majNone = 0
	majNull = 1
	majTTY  = 2
)

/*
 * file structure flags
 */
const (
	_FREAD int = 1 << iota
	_FWRITE
	_FPIPE
	_FAPPEND
	_FNONBLOCK
	_FCLOEXEC
)
