// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

// Stdiocat copies files to standard output through buffered streams.
//
// Usage:
//
//	stdiocat [-u] [-m full|line|none] [-b size] [--disk file.txtar] [--trace] [file ...]
//
// With no files, or with the name "-", it copies standard input.
// The -m flag sets the buffering of standard output, which by default
// is line buffered on a terminal and fully buffered otherwise;
// -u is short for -m none. The -b flag sets the buffer size,
// in human-readable form such as 4k or 64KiB.
//
// With --disk, stdiocat runs against an in-memory kernel whose
// file system is loaded from the named txtar archive, using
// /dev/tty8 for its standard input, output, and error, and
// bridging that terminal to the real ones.
//
// With --trace, every kernel call is logged to standard error.
package main

import (
	"io"
	"os"

	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"rsc.io/libc/hostos"
	"rsc.io/libc/kernel"
	"rsc.io/libc/stdio"
)

type options struct {
	mode       string
	bufSize    string
	disk       string
	trace      bool
	unbuffered bool

	stdin  io.Reader
	stdout io.Writer
	log    *logrus.Logger
}

func main() {
	status := 0
	cmd := newCommand(&options{stdin: os.Stdin, stdout: os.Stdout}, &status)
	if err := cmd.Execute(); err != nil {
		os.Exit(2)
	}
	os.Exit(status)
}

func newCommand(opts *options, status *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stdiocat [flags] [file ...]",
		Short:        "Copy files to standard output through buffered streams",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := run(opts, args)
			*status = s
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.mode, "mode", "m", "", "standard output buffering: full, line, or none")
	flags.StringVarP(&opts.bufSize, "buffer-size", "b", "", "standard output buffer `size`")
	flags.StringVar(&opts.disk, "disk", "", "run on an in-memory kernel loaded from txtar `file`")
	flags.BoolVar(&opts.trace, "trace", false, "log every kernel call")
	flags.BoolVarP(&opts.unbuffered, "unbuffered", "u", false, "unbuffered output (same as -m none)")
	return cmd
}

func parseBufMode(s string) (stdio.BufMode, error) {
	switch s {
	case "full":
		return stdio.IOFBF, nil
	case "line":
		return stdio.IOLBF, nil
	case "none":
		return stdio.IONBF, nil
	}
	return 0, errors.Errorf("invalid buffer mode %q", s)
}

// setup checks the flags and returns the buffering for standard output.
// A zero mode leaves the default in place.
func (opts *options) setup() (stdio.BufMode, int, error) {
	if opts.log == nil {
		opts.log = logrus.New()
		opts.log.SetOutput(os.Stderr)
		opts.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if opts.trace {
		opts.log.SetLevel(logrus.DebugLevel)
	}

	var mode stdio.BufMode
	if opts.unbuffered {
		opts.mode = "none"
	}
	if opts.mode != "" {
		m, err := parseBufMode(opts.mode)
		if err != nil {
			return 0, 0, err
		}
		mode = m
	}
	size := 0
	if opts.bufSize != "" {
		n, err := units.RAMInBytes(opts.bufSize)
		if err != nil {
			return 0, 0, errors.Wrap(err, "invalid buffer size")
		}
		if n <= 0 || n > 1<<30 {
			return 0, 0, errors.Errorf("buffer size %s out of range", units.BytesSize(float64(n)))
		}
		size = int(n)
	}
	return mode, size, nil
}

func run(opts *options, args []string) (int, error) {
	mode, size, err := opts.setup()
	if err != nil {
		return 2, err
	}
	if opts.disk != "" {
		return runDisk(opts, mode, size, args)
	}

	k := hostos.New()
	k.Trace = opts.trace
	k.Log = opts.log
	p := stdio.NewProc(k)
	if err := setvbuf(p, mode, size); err != nil {
		return 2, err
	}
	status := cat(p, args)
	p.Exit(status)
	return status, nil
}

// runDisk runs cat as a process on /dev/tty8 of an in-memory system.
func runDisk(opts *options, mode stdio.BufMode, size int, args []string) (int, error) {
	archive, err := os.ReadFile(opts.disk)
	if err != nil {
		return 2, errors.Wrap(err, "loading disk")
	}
	sys, err := kernel.NewSystem(archive)
	if err != nil {
		return 2, errors.Wrapf(err, "loading disk %s", opts.disk)
	}
	sys.Trace = opts.trace
	sys.Log = opts.log

	tty := &sys.TTY[8]
	tty.Print = func(b []byte) (int, kernel.Errno) {
		n, err := opts.stdout.Write(b)
		if err != nil {
			return n, kernel.EIO
		}
		return n, 0
	}
	go func() {
		buf := make([]byte, 100)
		for {
			n, err := opts.stdin.Read(buf)
			tty.Write(buf[:n])
			if err != nil {
				if err != io.EOF {
					opts.log.WithError(err).Warn("reading standard input")
				}
				tty.Hangup()
				return
			}
		}
	}()

	kp, err := sys.StartTTY(8)
	if err != nil {
		return 2, errors.Wrap(err, "starting process")
	}
	p := stdio.NewProc(kp)
	if err := setvbuf(p, mode, size); err != nil {
		return 2, err
	}
	p.Exit(cat(p, args))
	return kp.Status, nil
}

func setvbuf(p *stdio.Proc, mode stdio.BufMode, size int) error {
	if mode == 0 && size == 0 {
		return nil
	}
	if mode == 0 {
		mode = p.Stdout.Mode()
	}
	return errors.Wrap(p.Stdout.Setvbuf(nil, mode, size), "setvbuf")
}

// cat copies each named file, or standard input for "-",
// to standard output and returns the exit status.
func cat(p *stdio.Proc, names []string) int {
	if len(names) == 0 {
		names = []string{"-"}
	}
	status := 0
	buf := make([]byte, stdio.BUFSIZ)
	for _, name := range names {
		in := p.Stdin
		if name != "-" {
			f, err := p.Fopen(name, "r")
			if err != nil {
				p.Perror(name)
				status = 1
				continue
			}
			in = f
		}
		for {
			n, err := in.Read(buf)
			if n > 0 {
				if _, err := p.Stdout.Write(buf[:n]); err != nil {
					p.Perror("write")
					return 1
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				p.Perror(name)
				status = 1
				break
			}
		}
		if in == p.Stdin {
			in.Clearerr()
		} else {
			in.Close()
		}
	}
	return status
}
