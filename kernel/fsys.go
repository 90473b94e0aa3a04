// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"encoding/base64"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/txtar"
)

type Disk struct {
	root   *inode
	inodes []*inode
}

func (d *Disk) ialloc() *inode {
	ip := &inode{inum: len(d.inodes)}
	d.inodes = append(d.inodes, ip)
	return ip
}

// newDisk builds a disk from a txtar archive.
// Each file name may be followed by key=value attributes:
// mode (octal permission and type bits), major, minor, and base64.
// Missing parent directories are created with mode 0755.
// The devices /dev/null and /dev/tty1 through /dev/ttyN are always present.
func newDisk(archive []byte) (*Disk, error) {
	d := new(Disk)
	d.inodes = []*inode{nil}
	d.root = d.ialloc()
	d.root.mode = _IFDIR | 0o755
	d.root.nlink = 1
	d.root.atime = now()
	d.root.mtime = d.root.atime

	var p Proc // loader identity
	p.Sys = &System{Disk: d}

	if _, err := p.mkfile("/dev/null", _IFCHR|0o666, majNull, 0); err != nil {
		return nil, err
	}
	for i := 1; i <= NTTY; i++ {
		if _, err := p.mkfile(fmt.Sprintf("/dev/tty%d", i), _IFCHR|0o620, majTTY, uint8(i)); err != nil {
			return nil, err
		}
	}

	ar := txtar.Parse(archive)
	for _, file := range ar.Files {
		f := strings.Fields(file.Name)
		if len(f) == 0 {
			return nil, errors.New("txtar file with empty name")
		}
		name := f[0]
		mode := _IFREG | 0o644
		var major, minor uint8
		b64 := false
		for _, arg := range f[1:] {
			k, v, ok := strings.Cut(arg, "=")
			if !ok {
				return nil, errors.Errorf("invalid txtar k=v: %s", arg)
			}
			i, err := strconv.ParseInt(v, 0, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid txtar k=v: %s", arg)
			}
			switch k {
			default:
				return nil, errors.Errorf("invalid txtar k=v: %s", arg)
			case "mode":
				mode = uint16(i)
				if mode&_IFMT == 0 {
					mode |= _IFREG
				}
			case "major":
				major = uint8(i)
			case "minor":
				minor = uint8(i)
			case "base64":
				b64 = i != 0
			}
		}
		if major != 0 && mode&_IFMT == _IFREG {
			mode = mode&^_IFMT | _IFCHR
		}

		ip, err := p.mkfile(name, mode, major, minor)
		if err != nil {
			return nil, err
		}
		if ip.mode&_IFMT != _IFREG {
			continue
		}
		if b64 {
			dec, err := base64.StdEncoding.DecodeString(string(file.Data))
			if err != nil {
				return nil, errors.Wrapf(err, "%s: decoding", name)
			}
			ip.data = dec
		} else {
			ip.data = slices.Clone(file.Data)
		}
	}
	return d, nil
}

// mkfile creates name, making any missing parent directories.
// An existing file of the same type is reused.
func (p *Proc) mkfile(name string, mode uint16, major, minor uint8) (*inode, error) {
	name = path.Clean("/" + name)
	if dir := path.Dir(name); dir != name {
		dp, err := p.mkfile(dir, _IFDIR|0o755, 0, 0)
		if err != nil {
			return nil, err
		}
		if !dp.isdir() {
			return nil, errors.Errorf("%s: %v", dir, ENOTDIR)
		}
	}
	ip, dp, elem := p.namei(name)
	if ip != nil {
		if ip.mode&_IFMT != mode&_IFMT {
			return nil, errors.Errorf("%s: %v", name, EEXIST)
		}
		return ip, nil
	}
	if dp == nil {
		return nil, errors.Errorf("%s: %v", name, p.Error)
	}
	ip = p.maknode(elem, mode, dp)
	ip.major = major
	ip.minor = minor
	return ip, nil
}

// ReadFile returns a copy of the contents of the regular file name.
func (sys *System) ReadFile(name string) ([]byte, error) {
	sys.Big.Lock()
	defer sys.Big.Unlock()

	p := &Proc{Sys: sys}
	ip, _, _ := p.namei(name)
	if ip == nil {
		if p.Error == 0 {
			p.Error = ENOENT
		}
		return nil, p.Error
	}
	if ip.isdir() {
		return nil, EISDIR
	}
	return append([]byte(nil), ip.data...), nil
}

// WriteFile creates or replaces the regular file name.
func (sys *System) WriteFile(name string, data []byte, perm uint16) error {
	sys.Big.Lock()
	defer sys.Big.Unlock()

	p := &Proc{Sys: sys}
	ip, err := p.mkfile(name, _IFREG|perm&0o777, 0, 0)
	if err != nil {
		return err
	}
	ip.data = append([]byte(nil), data...)
	ip.mtime = now()
	return nil
}
