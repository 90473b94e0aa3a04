// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

type device interface {
	open(p *Proc, minor uint8, rw int)
	read(p *Proc, minor uint8, b []byte, flag int) int
	write(p *Proc, minor uint8, b []byte, flag int) int
	close(p *Proc, minor uint8)
}

var devtab = []device{
	majNone: errdev{},
	majNull: nulldev{},
	majTTY:  ttydev{},
}

func (p *Proc) dev(major uint8) device {
	if int(major) >= len(devtab) || devtab[major] == nil {
		major = majNone
	}
	return devtab[major]
}

type errdev struct{}

func (errdev) open(p *Proc, minor uint8, rw int) {
	p.Error = ENXIO
}

func (errdev) read(p *Proc, minor uint8, b []byte, flag int) int {
	p.Error = ENXIO
	return 0
}

func (errdev) write(p *Proc, minor uint8, b []byte, flag int) int {
	p.Error = ENXIO
	return 0
}

func (errdev) close(p *Proc, minor uint8) {
}

type nulldev struct{}

func (nulldev) open(p *Proc, minor uint8, rw int) {
}

func (nulldev) read(p *Proc, minor uint8, b []byte, flag int) int {
	return 0
}

func (nulldev) write(p *Proc, minor uint8, b []byte, flag int) int {
	return len(b)
}

func (nulldev) close(p *Proc, minor uint8) {
}
