//go:build !windows

package vfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOCK")

	l, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l2, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, l2.Close())
}

func TestLockSecondOpenFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOCK")

	l, err := Lock(path)
	require.NoError(t, err)
	defer l.Close()

	_, err = Lock(path)
	assert.Error(t, err)
}

func TestLockReleasedAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOCK")

	l, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l2, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, l2.Close())
}
