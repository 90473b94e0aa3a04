// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

// Package hostos is a kernel handle layer backed by the host system.
// Host errors are translated to kernel.Errno values.
package hostos

import (
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"rsc.io/libc/kernel"
)

// A Kernel issues system calls on the host.
type Kernel struct {
	Trace bool           // log every call
	Log   *logrus.Logger // trace destination; logrus.StandardLogger() if nil

	// ExitFunc ends the process. It is os.Exit if nil.
	ExitFunc func(status int)
}

// New returns a host kernel.
func New() *Kernel {
	return new(Kernel)
}

var errnos = map[unix.Errno]kernel.Errno{
	unix.EPERM:   kernel.EPERM,
	unix.ENOENT:  kernel.ENOENT,
	unix.ESRCH:   kernel.ESRCH,
	unix.EINTR:   kernel.EINTR,
	unix.EIO:     kernel.EIO,
	unix.ENXIO:   kernel.ENXIO,
	unix.E2BIG:   kernel.E2BIG,
	unix.ENOEXEC: kernel.ENOEXEC,
	unix.EBADF:   kernel.EBADF,
	unix.ECHILD:  kernel.ECHILD,
	unix.EAGAIN:  kernel.EAGAIN,
	unix.ENOMEM:  kernel.ENOMEM,
	unix.EACCES:  kernel.EACCES,
	unix.EFAULT:  kernel.EFAULT,
	unix.ENOTBLK: kernel.ENOTBLK,
	unix.EBUSY:   kernel.EBUSY,
	unix.EEXIST:  kernel.EEXIST,
	unix.EXDEV:   kernel.EXDEV,
	unix.ENODEV:  kernel.ENODEV,
	unix.ENOTDIR: kernel.ENOTDIR,
	unix.EISDIR:  kernel.EISDIR,
	unix.EINVAL:  kernel.EINVAL,
	unix.ENFILE:  kernel.ENFILE,
	unix.EMFILE:  kernel.EMFILE,
	unix.ENOTTY:  kernel.ENOTTY,
	unix.ETXTBSY: kernel.ETXTBSY,
	unix.EFBIG:   kernel.EFBIG,
	unix.ENOSPC:  kernel.ENOSPC,
	unix.ESPIPE:  kernel.ESPIPE,
	unix.EROFS:   kernel.EROFS,
	unix.EMLINK:  kernel.EMLINK,
	unix.EPIPE:   kernel.EPIPE,
	unix.EDOM:    kernel.EDOM,
	unix.ERANGE:  kernel.ERANGE,
	unix.EILSEQ:  kernel.EILSEQ,
}

// Errno translates a host error.
// Errors without a counterpart become EIO.
func Errno(err error) kernel.Errno {
	if err == nil {
		return 0
	}
	if e, ok := err.(unix.Errno); ok {
		if ke, ok := errnos[e]; ok {
			return ke
		}
	}
	return kernel.EIO
}

// openFlags translates kernel open flags to the host's.
func openFlags(flag int) int {
	var h int
	switch flag & kernel.O_ACCMODE {
	case kernel.O_RDONLY:
		h = unix.O_RDONLY
	case kernel.O_WRONLY:
		h = unix.O_WRONLY
	case kernel.O_RDWR:
		h = unix.O_RDWR
	}
	for _, m := range []struct{ k, h int }{
		{kernel.O_CREAT, unix.O_CREAT},
		{kernel.O_EXCL, unix.O_EXCL},
		{kernel.O_TRUNC, unix.O_TRUNC},
		{kernel.O_APPEND, unix.O_APPEND},
		{kernel.O_NONBLOCK, unix.O_NONBLOCK},
		{kernel.O_CLOEXEC, unix.O_CLOEXEC},
	} {
		if flag&m.k != 0 {
			h |= m.h
		}
	}
	return h
}

func (k *Kernel) trace(op string, fd int, n int64, err error) error {
	e := Errno(err)
	if k.Trace {
		log := k.Log
		if log == nil {
			log = logrus.StandardLogger()
		}
		entry := log.WithFields(logrus.Fields{
			"op": op,
			"fd": fd,
			"n":  n,
		})
		if e != 0 {
			entry = entry.WithField("errno", e.Error())
		}
		entry.Debug(op)
	}
	if e != 0 {
		return e
	}
	return nil
}

func (k *Kernel) Open(name string, flag int, perm uint32) (int, error) {
	fd, err := unix.Open(name, openFlags(flag), perm)
	if err := k.trace("open", fd, int64(fd), err); err != nil {
		return -1, err
	}
	return fd, nil
}

func (k *Kernel) Read(fd int, b []byte) (int, error) {
	n, err := unix.Read(fd, b)
	if err := k.trace("read", fd, int64(n), err); err != nil {
		return 0, err
	}
	return n, nil
}

func (k *Kernel) Write(fd int, b []byte) (int, error) {
	n, err := unix.Write(fd, b)
	if err := k.trace("write", fd, int64(n), err); err != nil {
		return max(n, 0), err
	}
	return n, nil
}

func (k *Kernel) Seek(fd int, offset int64, whence int) (int64, error) {
	off, err := unix.Seek(fd, offset, whence)
	if err := k.trace("seek", fd, off, err); err != nil {
		return -1, err
	}
	return off, nil
}

func (k *Kernel) Fsync(fd int) error {
	return k.trace("fsync", fd, 0, unix.Fsync(fd))
}

func (k *Kernel) Close(fd int) error {
	return k.trace("close", fd, 0, unix.Close(fd))
}

func (k *Kernel) IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

func (k *Kernel) Exit(status int) {
	k.trace("exit", -1, int64(status), nil)
	if k.ExitFunc != nil {
		k.ExitFunc(status)
		return
	}
	os.Exit(status)
}
