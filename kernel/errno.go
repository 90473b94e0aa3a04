// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import "fmt"

// Error numbers follow the Linux assignment so that host errors
// translate without a lookup for the common cases.
const (
	EPERM Errno = 1 + iota
	ENOENT
	ESRCH
	EINTR
	EIO
	ENXIO
	E2BIG
	ENOEXEC
	EBADF
	ECHILD
	EAGAIN
	ENOMEM
	EACCES
	EFAULT
	ENOTBLK
	EBUSY
	EEXIST
	EXDEV
	ENODEV
	ENOTDIR
	EISDIR
	EINVAL
	ENFILE
	EMFILE
	ENOTTY
	ETXTBSY
	EFBIG
	ENOSPC
	ESPIPE
	EROFS
	EMLINK
	EPIPE
	EDOM
	ERANGE

	EILSEQ Errno = 84
)

type Errno int

func (e Errno) Error() string {
	if 0 <= e && int(e) < len(enames) && enames[e] != "" {
		return enames[e]
	}
	return fmt.Sprintf("Errno(%d)", int(e))
}

// Message returns the strerror text for e.
func (e Errno) Message() string {
	if 0 <= e && int(e) < len(messages) && messages[e] != "" {
		return messages[e]
	}
	return fmt.Sprintf("Unknown error %d", int(e))
}

var enames = [...]string{
	EPERM:   "EPERM",
	ENOENT:  "ENOENT",
	ESRCH:   "ESRCH",
	EINTR:   "EINTR",
	EIO:     "EIO",
	ENXIO:   "ENXIO",
	E2BIG:   "E2BIG",
	ENOEXEC: "ENOEXEC",
	EBADF:   "EBADF",
	ECHILD:  "ECHILD",
	EAGAIN:  "EAGAIN",
	ENOMEM:  "ENOMEM",
	EACCES:  "EACCES",
	EFAULT:  "EFAULT",
	ENOTBLK: "ENOTBLK",
	EBUSY:   "EBUSY",
	EEXIST:  "EEXIST",
	EXDEV:   "EXDEV",
	ENODEV:  "ENODEV",
	ENOTDIR: "ENOTDIR",
	EISDIR:  "EISDIR",
	EINVAL:  "EINVAL",
	ENFILE:  "ENFILE",
	EMFILE:  "EMFILE",
	ENOTTY:  "ENOTTY",
	ETXTBSY: "ETXTBSY",
	EFBIG:   "EFBIG",
	ENOSPC:  "ENOSPC",
	ESPIPE:  "ESPIPE",
	EROFS:   "EROFS",
	EMLINK:  "EMLINK",
	EPIPE:   "EPIPE",
	EDOM:    "EDOM",
	ERANGE:  "ERANGE",
	EILSEQ:  "EILSEQ",
}

var messages = [...]string{
	0:       "Success",
	EPERM:   "Operation not permitted",
	ENOENT:  "No such file or directory",
	ESRCH:   "No such process",
	EINTR:   "Interrupted system call",
	EIO:     "Input/output error",
	ENXIO:   "No such device or address",
	E2BIG:   "Argument list too long",
	ENOEXEC: "Exec format error",
	EBADF:   "Bad file descriptor",
	ECHILD:  "No child processes",
	EAGAIN:  "Resource temporarily unavailable",
	ENOMEM:  "Cannot allocate memory",
	EACCES:  "Permission denied",
	EFAULT:  "Bad address",
	ENOTBLK: "Block device required",
	EBUSY:   "Device or resource busy",
	EEXIST:  "File exists",
	EXDEV:   "Invalid cross-device link",
	ENODEV:  "No such device",
	ENOTDIR: "Not a directory",
	EISDIR:  "Is a directory",
	EINVAL:  "Invalid argument",
	ENFILE:  "Too many open files in system",
	EMFILE:  "Too many open files",
	ENOTTY:  "Inappropriate ioctl for device",
	ETXTBSY: "Text file busy",
	EFBIG:   "File too large",
	ENOSPC:  "No space left on device",
	ESPIPE:  "Illegal seek",
	EROFS:   "Read-only file system",
	EMLINK:  "Too many links",
	EPIPE:   "Broken pipe",
	EDOM:    "Numerical argument out of domain",
	ERANGE:  "Numerical result out of range",
	EILSEQ:  "Invalid or incomplete multibyte or wide character",
}
