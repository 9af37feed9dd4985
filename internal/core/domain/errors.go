package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
	ErrTemporary        = errors.New("temporary failure")

	// ErrIndexConfig marks engine rejections caused by an invalid index
	// name. Not retried.
	ErrIndexConfig = errors.New("index configuration error")
	// ErrCapacity marks engine rejections caused by content exceeding
	// the embedding batch limits. Not retried.
	ErrCapacity = errors.New("content exceeds engine capacity")
	// ErrEngine marks any other unexpected memory-engine failure.
	ErrEngine = errors.New("memory engine failure")
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
