package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidState is returned when an operation is not allowed in the document's sync state.
	ErrInvalidState = errors.New("operation not allowed in current sync state")
	// ErrDuplicateReference reports a storage reference already used by another document.
	ErrDuplicateReference = fmt.Errorf("%w: storage reference already in use", ErrValidation)
)
