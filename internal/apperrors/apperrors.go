package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds for the provisioning workflow. The engine classifies every
// failure with errors.Is against these; message text is never inspected.
var (
	// Recoverable in place: the user is re-prompted and the session survives.
	ErrInvalidEmail = errors.New("invalid email format")

	// Terminal for the session.
	ErrAuthRejected = errors.New("confirmation code rejected")
	ErrUpstream     = errors.New("upstream request failed")
	ErrNoLocations  = errors.New("no locations available")

	// Lookup errors
	ErrSessionNotFound = errors.New("session not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
