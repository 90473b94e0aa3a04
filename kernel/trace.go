// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type Op int

const (
	OpOpen Op = iota
	OpRead
	OpWrite
	OpSeek
	OpFsync
	OpClose
	OpDup
	OpPipe
	OpExit
)

var opent = [...]struct {
	name string
	desc string
}{
	OpOpen:  {"open", "open(%q, %#o) = %d"},
	OpRead:  {"read", "read(%d) = %d %q"},
	OpWrite: {"write", "write(%d, %q) = %d"},
	OpSeek:  {"seek", "seek(%d, %d, %d) = %d"},
	OpFsync: {"fsync", "fsync(%d)"},
	OpClose: {"close", "close(%d)"},
	OpDup:   {"dup", "dup2(%d, %d) = %d"},
	OpPipe:  {"pipe", "pipe() = %d, %d"},
	OpExit:  {"exit", "exit(%d)"},
}

func (op Op) String() string {
	if 0 <= op && int(op) < len(opent) {
		return opent[op].name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// A Call is one recorded kernel call.
// Data holds the bytes transferred by a read or write.
// Off holds the open flags, seek offset, dup2 target,
// or pipe write descriptor.
type Call struct {
	Pid    int
	Op     Op
	Fd     int
	Name   string
	Data   []byte
	Off    int64
	Whence int
	Ret    int64
	Err    Errno
}

func (c Call) String() string {
	var s string
	switch c.Op {
	case OpOpen:
		s = fmt.Sprintf(opent[c.Op].desc, c.Name, c.Off, c.Ret)
	case OpRead:
		s = fmt.Sprintf(opent[c.Op].desc, c.Fd, c.Ret, c.Data)
	case OpWrite:
		s = fmt.Sprintf(opent[c.Op].desc, c.Fd, c.Data, c.Ret)
	case OpSeek:
		s = fmt.Sprintf(opent[c.Op].desc, c.Fd, c.Off, c.Whence, c.Ret)
	case OpDup:
		s = fmt.Sprintf(opent[c.Op].desc, c.Fd, c.Off, c.Ret)
	case OpPipe:
		s = fmt.Sprintf(opent[c.Op].desc, c.Ret, c.Off)
	case OpExit:
		s = fmt.Sprintf(opent[c.Op].desc, c.Ret)
	default:
		s = fmt.Sprintf(opent[c.Op].desc, c.Fd)
	}
	if c.Err != 0 {
		s += ": " + c.Err.Error()
	}
	return s
}

type fault struct {
	op    Op
	fd    int
	err   Errno
	count int
}

// Inject makes the next count calls of op on fd fail with err
// before they have any effect. An fd of -1 matches any descriptor.
func (sys *System) Inject(op Op, fd int, err Errno, count int) {
	sys.Big.Lock()
	defer sys.Big.Unlock()

	sys.faults = append(sys.faults, fault{op, fd, err, count})
}

// ResetCalls discards the recorded calls.
func (sys *System) ResetCalls() {
	sys.Big.Lock()
	defer sys.Big.Unlock()

	sys.Calls = nil
}

// CallLog returns a copy of the recorded calls.
func (sys *System) CallLog() []Call {
	sys.Big.Lock()
	defer sys.Big.Unlock()

	return append([]Call(nil), sys.Calls...)
}

func (sys *System) fault(op Op, fd int) Errno {
	for i := range sys.faults {
		f := &sys.faults[i]
		if f.op == op && (f.fd == -1 || f.fd == fd) && f.count > 0 {
			f.count--
			err := f.err
			if f.count == 0 {
				sys.faults = append(sys.faults[:i], sys.faults[i+1:]...)
			}
			return err
		}
	}
	return 0
}

// syscall runs impl as call c on behalf of p,
// after consulting the fault table, and then
// records and traces the outcome.
// The caller holds sys.Big.
func (p *Proc) syscall(c *Call, impl func()) {
	sys := p.Sys
	p.Error = 0
	c.Pid = p.Pid
	if p.Exited {
		p.Error = EBADF
	} else if err := sys.fault(c.Op, c.Fd); err != 0 {
		p.Error = err
	} else {
		impl()
	}
	c.Err = p.Error
	if sys.Record {
		sys.Calls = append(sys.Calls, *c)
	}
	if sys.Trace {
		log := sys.Log
		if log == nil {
			log = logrus.StandardLogger()
		}
		e := log.WithFields(logrus.Fields{
			"pid": c.Pid,
			"op":  c.Op.String(),
			"fd":  c.Fd,
			"n":   c.Ret,
		})
		if c.Err != 0 {
			e = e.WithField("errno", c.Err.Error())
		}
		e.Debug(c.String())
	}
}
