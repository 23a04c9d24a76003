// Package pathkey validates and manipulates document paths.
//
// A document path is a non-empty, slash-separated sequence of segments
// matching [A-Za-z0-9_-]+, with no leading/trailing/doubled slashes, capped
// at MaxLength bytes.
//
// Reference: spec.md §3 "Data model" / §4.9 "Validation".
package pathkey

import (
	"strings"

	"github.com/embeddb/firelocal/internal/apperrors"
)

// MaxLength is the maximum encoded byte length of a document path.
const MaxLength = 1024

func isSegmentByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '_' || b == '-':
		return true
	default:
		return false
	}
}

// Validate checks path against spec.md §3's grammar. It runs in O(len(path))
// and never panics, so it decides every input in bounded time (spec.md §8).
func Validate(path string) error {
	if len(path) == 0 {
		return apperrors.New(apperrors.KindInvalidPath, "empty path", nil)
	}
	if len(path) > MaxLength {
		return apperrors.New(apperrors.KindInvalidPath, "path exceeds max length", nil)
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return apperrors.New(apperrors.KindInvalidPath, "path has leading/trailing slash", nil)
	}

	segStart := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i == segStart {
				return apperrors.New(apperrors.KindInvalidPath, "empty or consecutive-slash segment", nil)
			}
			for j := segStart; j < i; j++ {
				if !isSegmentByte(path[j]) {
					return apperrors.New(apperrors.KindInvalidPath, "invalid character in segment", nil)
				}
			}
			segStart = i + 1
			continue
		}
	}
	return nil
}

// Segments splits a validated path into its slash-separated segments.
func Segments(path string) []string {
	return strings.Split(path, "/")
}

// HasPrefix reports whether path is equal to prefix or nested under it,
// respecting segment boundaries (so "users/al" does not match prefix
// "users/alice").
func HasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
