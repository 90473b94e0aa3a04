// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel is an in-memory kernel handle layer: a descriptor
// table per process over a txtar-seeded disk, terminals, and pipes.
// It provides the open, read, write, seek, fsync, and close primitives
// a user-mode stream library is built on, and records or fails those
// calls on request so the library above can be observed.
package kernel

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type System struct {
	Big   sync.Mutex
	Disk  *Disk
	Procs []*Proc
	TTY   [1 + NTTY]TTY // TTY[1]..TTY[NTTY] is /dev/tty1..ttyN

	NextPid int

	Trace  bool           // log every call
	Log    *logrus.Logger // trace destination; logrus.StandardLogger() if nil
	Record bool           // append every call to Calls
	Calls  []Call

	faults []fault
}

type Proc struct {
	Sys    *System
	Pid    int
	Files  [NOFILE]*File // fd table
	Error  Errno         // error from the current call
	Exited bool
	Status int // exit status, valid once Exited
}

type File struct {
	flag   int
	count  int
	offset int64
	inode  *inode
	pipe   *pipe
}

// NewSystem returns a system whose disk is loaded from archive.
func NewSystem(archive []byte) (*System, error) {
	sys := new(System)
	d, err := newDisk(archive)
	if err != nil {
		return nil, err
	}
	sys.Disk = d
	sys.NextPid = 1
	for i := range sys.TTY {
		sys.TTY[i].Sys = sys
		sys.TTY[i].minor = uint8(i)
		sys.TTY[i].ready.L = &sys.Big
	}
	return sys, nil
}

// NewProc returns a new process with an empty descriptor table.
func (sys *System) NewProc() *Proc {
	sys.Big.Lock()
	defer sys.Big.Unlock()

	p := &Proc{Sys: sys, Pid: sys.NextPid}
	sys.NextPid++
	sys.Procs = append(sys.Procs, p)
	return p
}

// StartTTY returns a new process whose descriptors 0, 1, and 2
// are open on /dev/ttyN, the usual state of a login shell.
func (sys *System) StartTTY(n int) (*Proc, error) {
	p := sys.NewProc()
	for fd := 0; fd < 3; fd++ {
		mode := O_RDONLY
		if fd > 0 {
			mode = O_WRONLY
		}
		got, err := p.Open(ttyName(n), mode, 0)
		if err != nil {
			return nil, err
		}
		if got != fd {
			return nil, EBADF
		}
	}
	return p, nil
}

/*
 * Give up Big until c is signaled.
 * Other calls by p may run meanwhile,
 * so the error of the sleeping call
 * is saved across the wait.
 */
func (p *Proc) sleep(c *sync.Cond) {
	e := p.Error
	c.Wait()
	p.Error = e
}

func (p *Proc) err() error {
	if p.Error != 0 {
		return p.Error
	}
	return nil
}

/*
 * exit system call.
 * Close every descriptor and record the status.
 * Later calls fail with EBADF.
 */
func (p *Proc) exit(status int) {
	for i, f := range p.Files {
		if f != nil {
			p.Files[i] = nil
			p.closef(f)
		}
	}
	p.Error = 0
	p.Exited = true
	p.Status = status
}
