package model

import (
	"gitlab.com/tozd/go/errors"
)

// Error kinds reported by the tree model. Every error returned from this
// package wraps exactly one of them.
var (
	// ErrMalformedDocument is returned when input JSON is not an array of
	// item objects or an item lacks a usable title.
	ErrMalformedDocument = errors.Base("malformed document")

	// ErrInvalidOperation is returned when a structural request would break
	// an invariant. The tree is left unchanged.
	ErrInvalidOperation = errors.Base("invalid operation")

	// ErrIOFailure is returned by storage collaborators.
	ErrIOFailure = errors.Base("i/o failure")
)

func invalidf(format string, args ...any) error {
	return errors.Errorf("%w: "+format, append([]any{ErrInvalidOperation}, args...)...)
}

func malformedf(format string, args ...any) error {
	return errors.Errorf("%w: "+format, append([]any{ErrMalformedDocument}, args...)...)
}
