package store

import "github.com/embeddb/firelocal/internal/apperrors"

// Sentinel errors matching spec.md §7's taxonomy exactly, re-exported from
// internal/apperrors so callers can use errors.Is(err, store.ErrXxx)
// without importing the internal package, following the teacher's db
// package convention of exported Err* sentinels.
var (
	ErrInvalidPath      = apperrors.New(apperrors.KindInvalidPath, "", nil)
	ErrPayloadTooLarge  = apperrors.New(apperrors.KindPayloadTooLarge, "", nil)
	ErrInvalidRules     = apperrors.New(apperrors.KindInvalidRules, "", nil)
	ErrInvalidBatch     = apperrors.New(apperrors.KindInvalidBatch, "", nil)
	ErrPermissionDenied = apperrors.New(apperrors.KindPermissionDenied, "", nil)
	ErrTxnConflict      = apperrors.New(apperrors.KindTxnConflict, "", nil)
	ErrCorruptManifest  = apperrors.New(apperrors.KindCorruptManifest, "", nil)
	ErrCorruptSST       = apperrors.New(apperrors.KindCorruptSST, "", nil)
	ErrLockHeld         = apperrors.New(apperrors.KindLockHeld, "", nil)
	ErrIO               = apperrors.New(apperrors.KindIO, "", nil)
	// ErrClosed is returned by Get, Put, Delete, CommitBatch,
	// RunTransaction, Flush and Compact on an Engine after Close.
	ErrClosed = apperrors.New(apperrors.KindIO, "engine is closed", nil)
)
