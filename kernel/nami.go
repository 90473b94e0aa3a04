// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

// namei looks up name starting at the root.
// If the final element is missing but its directory exists,
// namei returns a nil ip together with that directory and the
// element, so the caller may create it. Any other failure
// returns nil for both and sets p.Error.
func (p *Proc) namei(name string) (ip, dp *inode, elem string) {
	dp = p.Sys.Disk.root
	if elem, _ := nextElem(name); elem == "" {
		return dp, nil, ""
	}
	for {
		if !dp.isdir() {
			p.Error = ENOTDIR
			return nil, nil, ""
		}
		if !p.access(dp, _IEXEC) {
			return nil, nil, ""
		}
		var rest string
		elem, rest = nextElem(name)
		ip = dsearch(dp, elem)
		if ip == nil {
			if rest == "" {
				return nil, dp, elem
			}
			p.Error = ENOENT
			return nil, nil, ""
		}
		if rest == "" {
			return ip, dp, elem
		}
		name = rest
		dp = ip
	}
}

func dsearch(dp *inode, elem string) *inode {
	for _, de := range dp.dir {
		if de.name == elem {
			return de.ip
		}
	}
	return nil
}

func nextElem(path string) (elem, rest string) {
	i := 0
	for i < len(path) && path[i] == '/' {
		i++
	}
	path = path[i:]
	if path == "" {
		return "", ""
	}
	i = 0
	for i < len(path) && path[i] != '/' {
		i++
	}
	elem = path[:i]
	for i < len(path) && path[i] == '/' {
		i++
	}
	rest = path[i:]
	if len(elem) > DIRSIZ {
		elem = elem[:DIRSIZ]
	}
	return elem, rest
}
