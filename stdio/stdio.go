// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stdio implements buffered streams over a kernel handle layer.
//
// A [File] is a buffered view of a kernel descriptor with the classic
// stdio semantics: three buffering modes, mixed reading and writing,
// one byte of push-back, positioning that avoids the kernel when the
// target is already buffered, sticky end-of-file and error indicators,
// and a per-stream lock. Every live stream is linked into its [Proc],
// which flushes them all on [Proc.FlushAll], [Proc.Exit], and
// [Proc.Abort], and before a read from a line-buffered or unbuffered
// stream might block.
//
// Methods without a suffix lock the stream for the duration of the call.
// The Unlocked variants do not, and are meant for code that already
// holds the lock by way of [File.Flockfile].
package stdio

import "fmt"

const (
	EOF    = -1
	BUFSIZ = 8192
)

// A BufMode selects how a stream buffers its data.
type BufMode int

const (
	IOFBF BufMode = 1 + iota // fully buffered
	IOLBF                    // line buffered
	IONBF                    // unbuffered
)

func (m BufMode) String() string {
	switch m {
	case IOFBF:
		return "full"
	case IOLBF:
		return "line"
	case IONBF:
		return "none"
	}
	return fmt.Sprintf("BufMode(%d)", int(m))
}

// Locking types for [File.Fsetlocking].
const (
	FSETLOCKING_QUERY    = 0
	FSETLOCKING_INTERNAL = 1
	FSETLOCKING_BYCALLER = 2
)

// A Kernel is the handle layer streams are built on.
// Errors are kernel.Errno values.
// Read returns 0, nil at end of file.
// Seek takes io.SeekStart, io.SeekCurrent, or io.SeekEnd.
type Kernel interface {
	Open(name string, flag int, perm uint32) (int, error)
	Read(fd int, b []byte) (int, error)
	Write(fd int, b []byte) (int, error)
	Seek(fd int, offset int64, whence int) (int64, error)
	Fsync(fd int) error
	Close(fd int) error
	IsTerminal(fd int) bool
	Exit(status int)
}
