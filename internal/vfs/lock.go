//go:build !windows

// Package vfs provides the directory-level exclusive lock guarding a data
// directory against a second opener (spec.md §5 "Resource exclusivity",
// §6 "LOCK").
//
// Adapted from the teacher's internal/vfs/lock.go Unix implementation.
package vfs

import (
	"io"
	"os"
	"syscall"

	"github.com/embeddb/firelocal/internal/apperrors"
)

type fileLock struct {
	f *os.File
}

// Lock acquires an exclusive advisory lock on the lock file at path (the
// engine passes <dir>/LOCK), creating it if necessary. A second call on the
// same path while the first lock is held returns a LockHeld error (spec.md §8 "Two open calls on the same
// directory: the second returns LockHeld").
func Lock(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, apperrors.New(apperrors.KindIO, "vfs: open lock file "+path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		return nil, apperrors.New(apperrors.KindLockHeld, "vfs: directory already locked: "+path, err)
	}

	return &fileLock{f: f}, nil
}

func (l *fileLock) Close() error {
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	return l.f.Close()
}
