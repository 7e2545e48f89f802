package item

import "errors"

var (
	// ErrValidation is returned for input rejected before any store call:
	// empty text, out-of-range indices, or an operation the kind does not
	// support.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when an item does not exist in the scope, is
	// owned by another principal, or was already deleted.
	ErrNotFound = errors.New("item not found")

	// ErrTransient wraps store failures that are not a missing item:
	// network, disk and database errors, cancelled contexts.
	ErrTransient = errors.New("store unavailable")

	// ErrSignedOut is returned when the session ended before or while an
	// operation ran.
	ErrSignedOut = errors.New("signed out")
)
