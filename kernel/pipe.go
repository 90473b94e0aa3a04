// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import "sync"

type pipe struct {
	read    sync.Cond
	write   sync.Cond
	readers int
	writers int
	n       int
	buf     [PIPSIZ]byte
}

func (p *Proc) pipe() (r, w int) {
	rf, r := p.falloc()
	if rf == nil {
		return -1, -1
	}
	wf, w := p.falloc()
	if wf == nil {
		p.Files[r] = nil
		return -1, -1
	}

	pip := new(pipe)
	pip.read.L = &p.Sys.Big
	pip.write.L = &p.Sys.Big
	pip.readers = 1
	pip.writers = 1

	ip := p.Sys.Disk.ialloc()
	ip.atime = now()
	ip.mtime = ip.atime

	rf.flag = _FREAD | _FPIPE
	rf.inode = ip
	rf.pipe = pip

	wf.flag = _FWRITE | _FPIPE
	wf.inode = ip
	wf.pipe = pip
	return r, w
}

func (p *Proc) readp(f *File, b []byte) int {
	pip := f.pipe
	for pip.n == 0 && pip.writers > 0 {
		if f.flag&_FNONBLOCK != 0 {
			p.Error = EAGAIN
			return 0
		}
		p.sleep(&pip.read)
	}
	n := copy(b, pip.buf[:pip.n])
	copy(pip.buf[:], pip.buf[n:pip.n])
	pip.n -= n
	f.offset += int64(n)
	pip.write.Broadcast()
	return n
}

func (p *Proc) writep(f *File, b []byte) int {
	pip := f.pipe
	total := 0
	for len(b) > 0 {
		for pip.n == len(pip.buf) && pip.readers > 0 {
			if f.flag&_FNONBLOCK != 0 {
				if total == 0 {
					p.Error = EAGAIN
				}
				return total
			}
			p.sleep(&pip.write)
		}
		if pip.readers == 0 {
			p.Error = EPIPE
			return total
		}
		n := copy(pip.buf[pip.n:], b)
		pip.n += n
		total += n
		b = b[n:]
		f.offset += int64(n)
		pip.read.Broadcast()
	}
	return total
}

func (p *Proc) closep(f *File) {
	if f.flag&_FREAD != 0 {
		f.pipe.readers--
	} else {
		f.pipe.writers--
	}
	f.pipe.read.Broadcast()
	f.pipe.write.Broadcast()
}
