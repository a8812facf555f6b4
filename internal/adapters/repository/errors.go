package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrEmptyMovement = errors.New("empty movement id")
	ErrNoQueue       = errors.New("no prefetch queue configured")
)
