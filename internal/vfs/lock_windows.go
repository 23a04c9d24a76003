//go:build windows

package vfs

import (
	"io"
	"os"

	"github.com/embeddb/firelocal/internal/apperrors"
)

type fileLock struct {
	f *os.File
}

// Lock acquires an exclusive lock on the lock file at path by creating it
// with O_EXCL, a coarse approximation of POSIX flock on platforms without it.
func Lock(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, apperrors.New(apperrors.KindLockHeld, "vfs: directory already locked: "+path, err)
		}
		return nil, apperrors.New(apperrors.KindIO, "vfs: open lock file "+path, err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) Close() error {
	path := l.f.Name()
	err := l.f.Close()
	_ = os.Remove(path)
	return err
}
