package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTerminalStatus   = errors.New("document status is terminal")
	ErrTemporary        = errors.New("temporary failure")

	// Upload validation outcomes.
	ErrInvalidFileType = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file exceeds size limit")

	// Text extraction outcomes.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrEmptyDocument     = errors.New("document contains no extractable text")

	// AI extraction outcomes.
	ErrServiceUnavailable = errors.New("extraction service unavailable")
	ErrMalformedResponse  = errors.New("malformed extraction response")
	ErrRateLimited        = errors.New("extraction service rate limited")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
