// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdio

import "github.com/petermattis/goid"

// lock acquires the stream lock unless the caller manages locking,
// and reports whether it did so for the matching unlock.
// The lock is recursive: a goroutine already holding it,
// for example by way of Flockfile, takes it again.
func (f *File) lock() bool {
	if f.nolock.Load() {
		return false
	}
	id := goid.Get()
	if f.owner.Load() == id {
		f.depth++
		return true
	}
	f.mu.Lock()
	f.owner.Store(id)
	f.depth = 1
	return true
}

// trylock is lock without waiting for another goroutine.
func (f *File) trylock() bool {
	id := goid.Get()
	if f.owner.Load() == id {
		f.depth++
		return true
	}
	if !f.mu.TryLock() {
		return false
	}
	f.owner.Store(id)
	f.depth = 1
	return true
}

func (f *File) unlock(locked bool) {
	if !locked {
		return
	}
	f.depth--
	if f.depth == 0 {
		f.owner.Store(0)
		f.mu.Unlock()
	}
}

// Flockfile acquires the lock on f, waiting for any other holder.
// Until the matching Funlockfile, other goroutines' calls on f wait,
// while the holder may call both the locked and the Unlocked methods.
// Calls nest.
func (f *File) Flockfile() {
	f.lock()
}

// Ftrylockfile is Flockfile without waiting.
// It reports whether the lock was acquired.
func (f *File) Ftrylockfile() bool {
	return f.nolock.Load() || f.trylock()
}

// Funlockfile releases one acquisition by Flockfile or Ftrylockfile.
func (f *File) Funlockfile() {
	f.unlock(!f.nolock.Load())
}

// Fsetlocking selects whether f locks itself (FSETLOCKING_INTERNAL)
// or leaves locking to the caller (FSETLOCKING_BYCALLER), and returns
// the previous setting. FSETLOCKING_QUERY changes nothing.
// It must not be called while f is locked.
func (f *File) Fsetlocking(typ int) int {
	old := FSETLOCKING_INTERNAL
	if f.nolock.Load() {
		old = FSETLOCKING_BYCALLER
	}
	switch typ {
	case FSETLOCKING_INTERNAL:
		f.nolock.Store(false)
	case FSETLOCKING_BYCALLER:
		f.nolock.Store(true)
	}
	return old
}

// Fwide reports and perhaps sets the orientation of f.
// If f has none yet, a positive mode makes it wide oriented
// and a negative mode byte oriented. The result is positive
// for wide, negative for byte, and zero for no orientation.
func (f *File) Fwide(mode int) int {
	defer f.unlock(f.lock())
	if f.flags&(flagWide|flagByte) == 0 {
		switch {
		case mode > 0:
			f.flags |= flagWide
		case mode < 0:
			f.flags |= flagByte
		}
	}
	switch {
	case f.flags&flagWide != 0:
		return 1
	case f.flags&flagByte != 0:
		return -1
	}
	return 0
}

// Clearerr clears the end-of-file and error indicators.
func (f *File) Clearerr() {
	defer f.unlock(f.lock())
	f.ClearerrUnlocked()
}

// ClearerrUnlocked is Clearerr without locking.
func (f *File) ClearerrUnlocked() {
	f.flags &^= flagEOF | flagErr
}

// Feof reports whether end of file has been seen.
func (f *File) Feof() bool {
	defer f.unlock(f.lock())
	return f.FeofUnlocked()
}

// FeofUnlocked is Feof without locking.
func (f *File) FeofUnlocked() bool {
	return f.flags&flagEOF != 0
}

// Ferror reports whether a kernel error has been seen.
func (f *File) Ferror() bool {
	defer f.unlock(f.lock())
	return f.FerrorUnlocked()
}

// FerrorUnlocked is Ferror without locking.
func (f *File) FerrorUnlocked() bool {
	return f.flags&flagErr != 0
}
