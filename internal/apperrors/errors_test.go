package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesKindAndContext(t *testing.T) {
	err := New(KindInvalidPath, "path must not be empty", nil)
	assert.Contains(t, err.Error(), "InvalidPath")
	assert.Contains(t, err.Error(), "path must not be empty")
}

func TestErrorMessageIncludesWrappedCause(t *testing.T) {
	cause := errors.New("disk full")
	err := New(KindIO, "write failed", cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("underlying")
	err := New(KindIO, "ctx", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorsIsMatchesByKindNotContext(t *testing.T) {
	sentinel := New(KindPermissionDenied, "", nil)
	wrapped := fmt.Errorf("write users/alice: %w", New(KindPermissionDenied, "write users/alice", nil))
	assert.True(t, errors.Is(wrapped, sentinel))
}

func TestErrorsIsRejectsDifferentKind(t *testing.T) {
	sentinel := New(KindPermissionDenied, "", nil)
	other := New(KindTxnConflict, "", nil)
	assert.False(t, errors.Is(other, sentinel))
}

func TestOfKind(t *testing.T) {
	err := New(KindCorruptSST, "bad footer", nil)
	assert.True(t, OfKind(err, KindCorruptSST))
	assert.False(t, OfKind(err, KindCorruptManifest))
	assert.False(t, OfKind(errors.New("plain"), KindCorruptSST))
}

func TestRetryableOnlyForTxnConflict(t *testing.T) {
	assert.True(t, Retryable(New(KindTxnConflict, "", nil)))
	assert.False(t, Retryable(New(KindIO, "", nil)))
}

func TestKindStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Kind(999).String())
}
