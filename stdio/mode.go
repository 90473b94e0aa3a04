// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import "rsc.io/libc/kernel"

// parseMode translates an fopen mode string into kernel open flags.
//
//	r  read an existing file
//	w  write, creating or truncating
//	a  append, creating if needed
//	+  read and write
//	b  ignored
//	t  ignored
//	e  close on exec
//	x  fail if the file exists (with w or a)
func parseMode(mode string) (int, error) {
	if mode == "" {
		return 0, kernel.EINVAL
	}
	var flag int
	switch mode[0] {
	case 'r':
		flag = kernel.O_RDONLY
	case 'w':
		flag = kernel.O_WRONLY | kernel.O_CREAT | kernel.O_TRUNC
	case 'a':
		flag = kernel.O_WRONLY | kernel.O_CREAT | kernel.O_APPEND
	default:
		return 0, kernel.EINVAL
	}
	for i := 1; i < len(mode); i++ {
		switch mode[i] {
		case '+':
			flag = flag&^kernel.O_ACCMODE | kernel.O_RDWR
		case 'b', 't':
			// binary and text are the same
		case 'e':
			flag |= kernel.O_CLOEXEC
		case 'x':
			if flag&kernel.O_CREAT == 0 {
				return 0, kernel.EINVAL
			}
			flag |= kernel.O_EXCL
		default:
			return 0, kernel.EINVAL
		}
	}
	return flag, nil
}
