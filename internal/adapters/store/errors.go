package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed      = errors.New("store closed")
	ErrInvalidPath = errors.New("invalid path")
)
