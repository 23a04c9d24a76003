package store

import (
	"github.com/embeddb/firelocal/internal/apperrors"
	"github.com/embeddb/firelocal/internal/pathkey"
)

func validatePath(path string, opts Options) error {
	if err := pathkey.Validate(path); err != nil {
		return err
	}
	if len(path) > opts.MaxPathLength {
		return apperrors.New(apperrors.KindInvalidPath, "path exceeds configured max length", nil)
	}
	return nil
}

func validatePayloadSize(payload []byte, opts Options) error {
	if len(payload) > opts.MaxDocumentSize {
		return apperrors.New(apperrors.KindPayloadTooLarge, "payload exceeds configured max size", nil)
	}
	return nil
}
