// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

func (p *Proc) readi(f *File, b []byte) int {
	ip := f.inode
	ip.atime = now()
	if ip.ischr() {
		return p.dev(ip.major).read(p, ip.minor, b, f.flag)
	}
	off := f.offset
	if off < 0 || off >= int64(len(ip.data)) {
		return 0
	}
	return copy(b, ip.data[off:])
}

func (p *Proc) writei(f *File, b []byte) int {
	ip := f.inode
	ip.atime = now()
	if ip.ischr() {
		return p.dev(ip.major).write(p, ip.minor, b, f.flag)
	}
	off := f.offset
	if f.flag&_FAPPEND != 0 {
		off = int64(len(ip.data))
		f.offset = off
	}
	if off < 0 {
		p.Error = EINVAL
		return 0
	}
	if off+int64(len(b)) > MAXSIZE {
		p.Error = EFBIG
		return 0
	}
	if len(b) == 0 {
		return 0
	}
	if end := int(off) + len(b); end > len(ip.data) {
		old := len(ip.data)
		for cap(ip.data) < end {
			ip.data = append(ip.data[:cap(ip.data)], 0)
		}
		ip.data = ip.data[:end]
		if int(off) > old {
			clear(ip.data[old:off])
		}
	}
	ip.mtime = now()
	return copy(ip.data[off:], b)
}
