// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gotest.tools/v3/assert"
	"rsc.io/libc/kernel"
)

const testDisk = `
-- /etc/motd --
hello world
-- /etc/ro mode=0o444 --
read only
-- /tmp mode=0o40777 --
`

// A testEnv is a process on /dev/tty1 of an in-memory system
// whose kernel calls are recorded.
type testEnv struct {
	sys *kernel.System
	kp  *kernel.Proc
	p   *Proc
	tty *kernel.TTY
	out bytes.Buffer // terminal output
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sys, err := kernel.NewSystem([]byte(testDisk))
	assert.NilError(t, err)
	e := &testEnv{sys: sys, tty: &sys.TTY[1]}
	e.tty.Print = func(b []byte) (int, kernel.Errno) {
		e.out.Write(b)
		return len(b), 0
	}
	e.kp, err = sys.StartTTY(1)
	assert.NilError(t, err)
	e.p = NewProc(e.kp)
	sys.Record = true
	return e
}

// calls returns and resets the kernel calls made so far.
func (e *testEnv) calls() []string {
	var list []string
	for _, c := range e.sys.CallLog() {
		list = append(list, c.String())
	}
	e.sys.ResetCalls()
	return list
}

func (e *testEnv) checkCalls(t *testing.T, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, e.calls(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("kernel calls mismatch (-want +got):\n%s", diff)
	}
}

// waitBlocked waits until a reader is blocked on the terminal.
func (e *testEnv) waitBlocked(t *testing.T) {
	t.Helper()
	for i := 0; ; i++ {
		e.sys.Big.Lock()
		waiting := e.tty.Reads > 0
		e.sys.Big.Unlock()
		if waiting {
			return
		}
		if i == 5000 {
			t.Fatal("no reader blocked on the terminal")
		}
		time.Sleep(time.Millisecond)
	}
}

func (e *testEnv) fopen(t *testing.T, name, mode string) *File {
	t.Helper()
	f, err := e.p.Fopen(name, mode)
	assert.NilError(t, err)
	return f
}

func (e *testEnv) file(t *testing.T, name string) string {
	t.Helper()
	data, err := e.sys.ReadFile(name)
	assert.NilError(t, err)
	return string(data)
}

// checkInvariants checks the buffer bounds and that the
// read and write phases agree with the buffer contents.
func checkInvariants(t *testing.T, f *File) {
	t.Helper()
	if !(0 <= f.next && f.next <= f.valid && f.valid <= len(f.buf)) {
		t.Fatalf("bad indices: next=%d valid=%d cap=%d", f.next, f.valid, len(f.buf))
	}
	if f.mode == IONBF && (f.buf != nil || f.valid != 0) {
		t.Fatalf("unbuffered stream has buffer: cap=%d valid=%d", len(f.buf), f.valid)
	}
	if f.phase == phaseWriting && f.flags&flagUnget != 0 {
		t.Fatalf("dirty buffer with push-back")
	}
	if f.phase == phaseEmpty && (f.next != 0 || f.valid != 0) {
		t.Fatalf("empty phase with next=%d valid=%d", f.next, f.valid)
	}
}
