package entities

import (
	"fmt"

	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// DuplicateCheckError indicates a check ID is already taken in a profile.
type DuplicateCheckError struct {
	ID values.CheckID
}

func (e *DuplicateCheckError) Error() string {
	return fmt.Sprintf("check already registered: %s", e.ID.String())
}

// CheckNotFoundError indicates no check carries the requested ID.
type CheckNotFoundError struct {
	ID string
}

func (e *CheckNotFoundError) Error() string {
	return fmt.Sprintf("check not found: %s", e.ID)
}
