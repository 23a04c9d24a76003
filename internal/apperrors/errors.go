// Package apperrors defines the typed error taxonomy shared by every layer
// of the engine, from the WAL up through the public store API.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error into one of the families callers can branch on.
type Kind int

const (
	// KindInvalidPath marks a malformed document path (non-retryable).
	KindInvalidPath Kind = iota
	// KindPayloadTooLarge marks a put payload over the configured ceiling.
	KindPayloadTooLarge
	// KindInvalidRules marks a rule document that failed validation.
	KindInvalidRules
	// KindInvalidBatch marks a batch with an invalid entry.
	KindInvalidBatch
	// KindPermissionDenied marks a rules-gate denial.
	KindPermissionDenied
	// KindTxnConflict marks an optimistic-concurrency validation failure.
	KindTxnConflict
	// KindCorruptManifest marks a manifest that failed to parse or verify.
	KindCorruptManifest
	// KindCorruptSST marks an SST that failed footer or checksum validation.
	KindCorruptSST
	// KindLockHeld marks a directory already held by another opener.
	KindLockHeld
	// KindIO marks an underlying I/O failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPath:
		return "InvalidPath"
	case KindPayloadTooLarge:
		return "PayloadTooLarge"
	case KindInvalidRules:
		return "InvalidRules"
	case KindInvalidBatch:
		return "InvalidBatch"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindTxnConflict:
		return "TxnConflict"
	case KindCorruptManifest:
		return "CorruptManifest"
	case KindCorruptSST:
		return "CorruptSst"
	case KindLockHeld:
		return "LockHeld"
	case KindIO:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is the machine-distinguishable error type every public and internal
// operation returns. It never carries payload bytes.
type Error struct {
	Kind    Kind
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("firelocal: %s: %s: %v", e.Kind, e.Context, e.Err)
	}
	return fmt.Sprintf("firelocal: %s: %s", e.Kind, e.Context)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, target) true whenever target is an *Error of the
// same Kind, whatever its context or cause, so a bare New(kind, "", nil)
// works as a sentinel.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs an Error of the given kind with context and an optional
// wrapped cause.
func New(kind Kind, context string, cause error) *Error {
	return &Error{Kind: kind, Context: context, Err: cause}
}

// OfKind reports whether err (or any error it wraps) is an *Error of kind k.
func OfKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// Retryable reports whether the error family is one the transaction layer
// may retry (spec.md §7: only TxnConflict is retryable, and only there).
func Retryable(err error) bool {
	return OfKind(err, KindTxnConflict)
}
