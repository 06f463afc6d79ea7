package aeza

import (
	"fmt"

	"github.com/vlessgen/go-vless-bot/internal/apperrors"
)

// StatusError reports a non-200 response from an upstream service.
// It matches apperrors.ErrUpstream under errors.Is so callers can classify
// it without unpacking the status.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == apperrors.ErrUpstream
}
