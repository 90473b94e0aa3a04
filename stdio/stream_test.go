// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"rsc.io/libc/kernel"
)

func TestLineBufferedWrite(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	assert.NilError(t, f.Setvbuf(nil, IOLBF, 0))
	e.calls()

	f.WriteString("hello\nwo")
	e.checkCalls(t, `write(3, "hello\n") = 6`)
	assert.Check(t, is.Equal(f.Fpending(), 2))

	f.WriteString("rld\n")
	e.checkCalls(t, `write(3, "world\n") = 6`)
	assert.Check(t, is.Equal(f.Fpending(), 0))
	assert.Check(t, is.Equal(e.file(t, "/tmp/out"), "hello\nworld\n"))
}

func TestPushbackAcrossRefill(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "r")

	assert.Check(t, is.Equal(f.Getc(), int('h')))
	assert.Check(t, is.Equal(f.Ungetc('X'), int('X')))
	off, err := f.Tell()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(off, int64(0)))

	b := make([]byte, 2)
	assert.Check(t, is.Equal(f.Fread(b, 1, 2), 2))
	assert.Check(t, is.Equal(string(b), "Xe"))
	off, _ = f.Tell()
	assert.Check(t, is.Equal(off, int64(2)))
	checkInvariants(t, f)
}

func TestSeekInBuffer(t *testing.T) {
	e := newTestEnv(t)
	data := make([]byte, 8000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	assert.NilError(t, e.sys.WriteFile("/tmp/big", data, 0o644))
	f := e.fopen(t, "/tmp/big", "r")
	assert.NilError(t, f.Setvbuf(nil, IOFBF, 4096))
	e.calls()

	b := make([]byte, 100)
	assert.Check(t, is.Equal(f.Fread(b, 1, 100), 100))
	e.checkCalls(t, fmt.Sprintf("read(3) = 4096 %q", data[:4096]))

	off, err := f.Seek(50, io.SeekCurrent)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(off, int64(150)))
	off, err = f.Tell()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(off, int64(150)))
	assert.Check(t, is.Equal(f.Getc(), int(data[150])))

	// Backward within the buffer is free too.
	off, err = f.Seek(10, io.SeekStart)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(off, int64(10)))
	assert.Check(t, is.Equal(f.Getc(), int(data[10])))
	e.checkCalls(t)

	// Outside it costs a kernel seek.
	off, err = f.Seek(5000, io.SeekStart)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(off, int64(5000)))
	e.checkCalls(t, "seek(3, 5000, 0) = 5000")
	assert.Check(t, is.Equal(f.Getc(), int(data[5000])))
	checkInvariants(t, f)
}

func TestReadAfterWrite(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/rw", "w+")
	e.calls()

	f.WriteString("0123456789")
	e.checkCalls(t)
	off, err := f.Seek(0, io.SeekStart)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(off, int64(0)))
	e.checkCalls(t,
		`write(3, "0123456789") = 10`,
		"seek(3, 0, 0) = 0",
	)

	b := make([]byte, 10)
	assert.Check(t, is.Equal(f.Fread(b, 1, 10), 10))
	assert.Check(t, is.Equal(string(b), "0123456789"))
	assert.Check(t, f.Freading())
	assert.Check(t, !f.Fwriting())
}

func TestWriteAfterRead(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "r+")
	b := make([]byte, 5)
	f.Fread(b, 1, 5)
	e.calls()

	f.WriteString("XXXXX")
	e.checkCalls(t, "seek(3, 5, 0) = 5")
	assert.Check(t, f.Fwriting())
	assert.NilError(t, f.Close())
	e.checkCalls(t, `write(3, "XXXXX") = 5`, "close(3)")
	assert.Check(t, is.Equal(e.file(t, "/etc/motd"), "helloXXXXXd\n"))
}

func TestPromptFlushedBeforeRead(t *testing.T) {
	e := newTestEnv(t)
	assert.Check(t, e.p.Stdin.Flbf())
	assert.Check(t, e.p.Stdout.Flbf())
	e.calls()

	e.p.Stdout.WriteString("Prompt: ")
	e.checkCalls(t)
	e.tty.Write([]byte("yes\n"))

	line, err := e.p.Gets()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(line, "yes"))
	e.checkCalls(t,
		`write(1, "Prompt: ") = 8`,
		`read(0) = 4 "yes\n"`,
	)
	assert.Check(t, is.Equal(e.out.String(), "Prompt: "))
}

func TestPromptBlockingRead(t *testing.T) {
	e := newTestEnv(t)
	e.p.Printf("login: ")
	done := make(chan string)
	go func() {
		line, _ := e.p.Gets()
		done <- line
	}()
	// The reader flushes the prompt before it blocks.
	e.waitBlocked(t)
	assert.Check(t, is.Equal(e.out.String(), "login: "))
	e.tty.Write([]byte("root\n"))
	assert.Check(t, is.Equal(<-done, "root"))
}

func TestBlockedReadSurvivesOtherFailures(t *testing.T) {
	e := newTestEnv(t)
	done := make(chan int)
	go func() {
		done <- e.p.Stdin.Getc()
	}()
	e.waitBlocked(t)

	_, err := e.p.Fopen("/nonexistent", "r")
	assert.Check(t, is.Equal(err, error(kernel.ENOENT)))
	e.tty.Write([]byte("xy\n"))
	assert.Check(t, is.Equal(<-done, int('x')))
	assert.Check(t, !e.p.Stdin.Ferror())
	assert.Check(t, is.Equal(e.p.Stdin.Getc(), int('y')))
}

func TestPreReadFlushSkipsBusyStream(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/busy", "w")
	f.WriteString("pending")
	e.p.Stdout.WriteString("> ")

	held := make(chan bool)
	release := make(chan bool)
	go func() {
		f.Flockfile()
		held <- true
		<-release
		f.Funlockfile()
		held <- true
	}()
	<-held
	e.tty.Write([]byte("x\n"))
	assert.Check(t, is.Equal(e.p.Getchar(), int('x')))
	assert.Check(t, is.Equal(e.out.String(), "> "))
	release <- true
	<-held
	assert.Check(t, is.Equal(f.Fpending(), 7))
}

func TestExitFlushes(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/data", "w")
	f.WriteString("data")
	e.p.Stdout.WriteString("bye")
	e.p.Exit(0)

	assert.Check(t, e.kp.Exited)
	assert.Check(t, is.Equal(e.kp.Status, 0))
	assert.Check(t, is.Equal(e.file(t, "/tmp/data"), "data"))
	assert.Check(t, is.Equal(e.out.String(), "bye"))
}

func TestAtexit(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/log", "w")
	for _, s := range []string{"a", "b", "c"} {
		e.p.Atexit(func() { f.WriteString(s) })
	}
	e.p.Exit(2)
	assert.Check(t, is.Equal(e.file(t, "/tmp/log"), "cba"))
	assert.Check(t, is.Equal(e.kp.Status, 2))
}

func TestAbortBypassesLocks(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/data", "w")
	f.WriteString("partial")
	f.Flockfile() // never released
	e.p.Abort()

	assert.Check(t, is.Equal(e.kp.Status, 134))
	assert.Check(t, is.Equal(e.file(t, "/tmp/data"), "partial"))
}

func TestFullBuffer(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	assert.NilError(t, f.Setvbuf(nil, IOFBF, 8))
	e.calls()

	f.WriteString("abcdefgh")
	e.checkCalls(t, `write(3, "abcdefgh") = 8`)

	n, err := f.WriteString("0123456789ABCDEFGHIJ")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(n, 20))
	e.checkCalls(t, `write(3, "01234567") = 8`, `write(3, "89ABCDEF") = 8`)
	assert.Check(t, is.Equal(f.Fpending(), 4))

	assert.NilError(t, f.Flush())
	e.checkCalls(t, `write(3, "GHIJ") = 4`)
	assert.NilError(t, f.Flush())
	e.checkCalls(t)
}

func TestUnbuffered(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	assert.NilError(t, f.Setvbuf(nil, IONBF, 0))
	assert.Check(t, is.Equal(f.Fbufsize(), 0))
	e.calls()

	f.WriteString("ab")
	e.checkCalls(t, `write(3, "ab") = 2`)
	n, err := f.Printf("%d-%s", 12, "x")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(n, 4))
	e.checkCalls(t, `write(3, "12-x") = 4`)
	checkInvariants(t, f)

	assert.Check(t, is.Equal(e.p.Stderr.Mode(), IONBF))
	e.p.Stderr.WriteString("oops\n")
	assert.Check(t, is.Equal(e.out.String(), "oops\n"))
}

func TestZeroRead(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "r")
	e.calls()
	n, err := f.Read(nil)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(n, 0))
	assert.Check(t, is.Equal(f.Fread(make([]byte, 4), 1, 0), 0))
	e.checkCalls(t)
}

func TestUngetc(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "r")
	f.Getc()
	f.Getc()

	assert.Check(t, is.Equal(f.Ungetc(EOF), EOF))
	off, _ := f.Tell()
	assert.Check(t, is.Equal(off, int64(2)))
	assert.Check(t, f.flags&flagUnget == 0)

	assert.Check(t, is.Equal(f.Ungetc('e'), int('e')))
	assert.Check(t, is.Equal(f.Ungetc('h'), EOF))
	off, _ = f.Tell()
	assert.Check(t, is.Equal(off, int64(1)))
	assert.Check(t, is.Equal(f.Getc(), int('e')))
	off, _ = f.Tell()
	assert.Check(t, is.Equal(off, int64(2)))

	// Ungetc clears end of file, and seek drops the byte.
	io.ReadAll(f)
	assert.Check(t, f.Feof())
	f.Ungetc('!')
	assert.Check(t, !f.Feof())
	f.Seek(0, io.SeekStart)
	assert.Check(t, is.Equal(f.Getc(), int('h')))
}

func TestEOFSticky(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "r")
	data, err := io.ReadAll(f)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(string(data), "hello world\n"))
	assert.Check(t, f.Feof())
	e.calls()

	assert.Check(t, is.Equal(f.Getc(), EOF))
	e.checkCalls(t)

	f.Clearerr()
	assert.Check(t, !f.Feof())
	assert.Check(t, is.Equal(f.Getc(), EOF))
	e.checkCalls(t, `read(3) = 0 ""`)

	f.Rewind()
	assert.Check(t, !f.Feof())
	assert.Check(t, is.Equal(f.Getc(), int('h')))
}

func TestErrorSticky(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "r")
	e.sys.Inject(kernel.OpRead, 3, kernel.EIO, 1)

	assert.Check(t, is.Equal(f.Getc(), EOF))
	assert.Check(t, f.Ferror())
	assert.Check(t, !f.Feof())
	assert.Check(t, is.Equal(e.p.Errno(), kernel.EIO))

	assert.Check(t, is.Equal(f.Getc(), int('h')))
	assert.Check(t, f.Ferror())
	f.Clearerr()
	assert.Check(t, !f.Ferror())
}

func TestInterruptRetried(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	e.sys.Inject(kernel.OpWrite, 3, kernel.EINTR, 2)
	f.WriteString("abc")
	e.calls()

	assert.NilError(t, f.Flush())
	assert.Check(t, !f.Ferror())
	e.checkCalls(t,
		"write(3, \"\") = 0: EINTR",
		"write(3, \"\") = 0: EINTR",
		`write(3, "abc") = 3`,
	)
}

func TestTryAgain(t *testing.T) {
	e := newTestEnv(t)
	r, w, err := e.kp.Pipe()
	assert.NilError(t, err)
	assert.NilError(t, e.kp.SetNonblock(r, true))
	in, err := e.p.Fdopen(r, "r")
	assert.NilError(t, err)
	out, err := e.p.Fdopen(w, "w")
	assert.NilError(t, err)

	assert.Check(t, is.Equal(in.Getc(), EOF))
	assert.Check(t, in.Ferror())
	assert.Check(t, !in.Feof())
	assert.Check(t, is.Equal(e.p.Errno(), kernel.EAGAIN))

	out.WriteString("ok")
	out.Flush()
	in.Clearerr()
	b := make([]byte, 8)
	n, err := in.Read(b)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(string(b[:n]), "ok"))
}

func TestFailedFlushStaysDirty(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	f.WriteString("data")
	e.sys.Inject(kernel.OpWrite, 3, kernel.EIO, 1)

	assert.Check(t, is.Equal(f.Flush(), error(kernel.EIO)))
	assert.Check(t, f.Ferror())
	assert.Check(t, is.Equal(f.Fpending(), 4))

	assert.NilError(t, f.Flush())
	assert.Check(t, is.Equal(f.Fpending(), 0))
	assert.Check(t, is.Equal(e.file(t, "/tmp/out"), "data"))
}

func TestRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	want := bytes.Repeat([]byte("the quick brown fox\n"), 1000)
	f := e.fopen(t, "/tmp/fox", "w")
	assert.Check(t, is.Equal(f.Fwrite(want, 20, 1000), 1000))
	assert.NilError(t, f.Close())

	f = e.fopen(t, "/tmp/fox", "r")
	have := make([]byte, len(want)+10)
	assert.Check(t, is.Equal(f.Fread(have, 1, len(have)), len(want)))
	assert.Check(t, bytes.Equal(have[:len(want)], want))
	assert.Check(t, f.Feof())
	assert.NilError(t, f.Close())
}

func TestTellSeek(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "r+")
	assert.NilError(t, f.Setvbuf(nil, IOFBF, 4))
	ops := []func(){
		func() { f.Getc() },
		func() { f.Fread(make([]byte, 6), 1, 6) },
		func() { f.WriteString("!") },
		func() { f.Getc(); f.Ungetc('o') },
		func() { f.Seek(-3, io.SeekEnd) },
	}
	for i, op := range ops {
		op()
		before, err := f.Tell()
		assert.NilError(t, err)
		_, err = f.Seek(before, io.SeekStart)
		assert.NilError(t, err)
		after, _ := f.Tell()
		if before != after {
			t.Errorf("op %d: Tell = %d, after Seek(Tell) = %d", i, before, after)
		}
		checkInvariants(t, f)
	}
}

func TestAppend(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/etc/motd", "a+")
	off, err := f.Tell()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(off, int64(0)))
	assert.Check(t, is.Equal(f.Getc(), int('h')))

	f.Seek(0, io.SeekStart)
	f.WriteString("bye\n")
	off, _ = f.Tell()
	assert.Check(t, is.Equal(off, int64(16)))
	assert.NilError(t, f.Flush())
	off, _ = f.Tell()
	assert.Check(t, is.Equal(off, int64(16)))

	f.Rewind()
	line, err := f.Getline(nil)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(string(line), "hello world\n"))
	assert.Check(t, is.Equal(e.file(t, "/etc/motd"), "hello world\nbye\n"))

	w := e.fopen(t, "/etc/motd", "a")
	w.WriteString("!")
	off, _ = w.Tell()
	assert.Check(t, is.Equal(off, int64(17)))
	assert.NilError(t, w.Close())
	assert.Check(t, is.Equal(e.file(t, "/etc/motd"), "hello world\nbye\n!"))
}

func TestTellUnseekable(t *testing.T) {
	e := newTestEnv(t)
	r, w, err := e.kp.Pipe()
	assert.NilError(t, err)
	in, err := e.p.Fdopen(r, "r")
	assert.NilError(t, err)
	e.kp.Write(w, []byte("abc"))
	assert.Check(t, is.Equal(in.Getc(), int('a')))

	tty := e.fopen(t, "/dev/tty1", "w")
	tty.WriteString("x")
	for _, f := range []*File{in, tty, e.p.Stdin, e.p.Stdout} {
		off, err := f.Tell()
		assert.Check(t, is.Equal(off, int64(-1)))
		assert.Check(t, is.Equal(err, error(kernel.ESPIPE)))
		_, err = f.Seek(0, io.SeekStart)
		assert.Check(t, is.Equal(err, error(kernel.ESPIPE)))
		assert.Check(t, !f.Ferror())
	}
	_, err = in.Getpos()
	assert.Check(t, is.Equal(err, error(kernel.ESPIPE)))
	assert.Check(t, is.Equal(in.Getc(), int('b')))
}

func TestBadDirection(t *testing.T) {
	e := newTestEnv(t)
	r := e.fopen(t, "/etc/motd", "r")
	assert.Check(t, is.Equal(r.Putc('x'), EOF))
	assert.Check(t, is.Equal(e.p.Errno(), kernel.EBADF))
	_, err := r.Write([]byte("x"))
	assert.Check(t, is.Equal(err, error(kernel.EBADF)))

	w := e.fopen(t, "/tmp/out", "w")
	assert.Check(t, is.Equal(w.Getc(), EOF))
	assert.Check(t, is.Equal(w.Ungetc('x'), EOF))
	assert.Check(t, !w.Freadable())
	assert.Check(t, w.Fwritable())
}

func TestDefaultModes(t *testing.T) {
	e := newTestEnv(t)
	assert.Check(t, is.Equal(e.p.Stdin.Mode(), IOLBF))
	assert.Check(t, is.Equal(e.p.Stdout.Mode(), IOLBF))
	assert.Check(t, is.Equal(e.p.Stderr.Mode(), IONBF))
	f := e.fopen(t, "/etc/motd", "r")
	assert.Check(t, is.Equal(f.Mode(), IOFBF))
	assert.Check(t, is.Equal(f.Fbufsize(), BUFSIZ))
	tty := e.fopen(t, "/dev/tty1", "w")
	assert.Check(t, is.Equal(tty.Mode(), IOLBF))

	// Not a terminal: fully buffered.
	sys, err := kernel.NewSystem(nil)
	assert.NilError(t, err)
	kp := sys.NewProc()
	kp.Open("/dev/null", kernel.O_RDONLY, 0)
	kp.Open("/dev/null", kernel.O_WRONLY, 0)
	p := NewProc(kp)
	assert.Check(t, is.Equal(p.Stdin.Mode(), IOFBF))
	assert.Check(t, is.Equal(p.Stdout.Mode(), IOFBF))
	assert.Check(t, is.Equal(p.Stderr.Mode(), IONBF))
}

func TestSetvbuf(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	assert.Check(t, is.Equal(f.Setvbuf(nil, BufMode(9), 0), error(kernel.EINVAL)))
	assert.Check(t, is.Equal(f.Setvbuf(nil, IOFBF, -1), error(kernel.EINVAL)))

	buf := make([]byte, 16)
	assert.NilError(t, f.Setvbuf(buf, IOFBF, 0))
	assert.Check(t, is.Equal(f.Fbufsize(), 16))
	f.WriteString("abc")
	assert.Check(t, is.Equal(string(buf[:3]), "abc"))

	// Changing modes after output flushes it.
	e.calls()
	f.Setlinebuf()
	e.checkCalls(t, `write(3, "abc") = 3`)
	assert.Check(t, f.Flbf())
	assert.Check(t, is.Equal(f.Fbufsize(), BUFSIZ))

	f.Setbuf(nil)
	assert.Check(t, is.Equal(f.Mode(), IONBF))
	f.Setbuf(make([]byte, 32))
	assert.Check(t, is.Equal(f.Mode(), IOFBF))
	assert.Check(t, is.Equal(f.Fbufsize(), 32))
}

func TestFpurge(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	f.WriteString("discard")
	f.Fpurge()
	assert.Check(t, is.Equal(f.Fpending(), 0))
	assert.NilError(t, f.Close())
	assert.Check(t, is.Equal(e.file(t, "/tmp/out"), ""))
}

func TestSync(t *testing.T) {
	e := newTestEnv(t)
	f := e.fopen(t, "/tmp/out", "w")
	f.WriteString("x")
	e.calls()
	assert.NilError(t, f.Sync())
	e.checkCalls(t, `write(3, "x") = 1`, "fsync(3)")
}
