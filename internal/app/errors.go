package service

import (
	"errors"

	"github.com/okian/artmap/internal/domain/locale"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted          = errors.New("service not started")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNoMovementSelected  = errors.New("no movement selected")
	ErrMovementUnavailable = errors.New("movement could not be loaded")
)

// UserMessage returns the Spanish text shown for err, or "" when the error
// has no user-facing wording.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoMovementSelected):
		return locale.SelectMovement
	case errors.Is(err, ErrMovementUnavailable):
		return locale.MovementLoadFailed
	default:
		return ""
	}
}
