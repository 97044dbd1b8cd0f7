package metadata

import (
	"errors"
	"fmt"
)

// Common metadata error types
var (
	// ErrNotRegistered is returned when no metadata exists for a document name
	ErrNotRegistered = errors.New("document is not registered")

	// ErrAlreadyRegistered is returned when a document name is registered twice
	ErrAlreadyRegistered = errors.New("document is already registered")
)

// MappingError describes an invalid or contradictory document mapping
type MappingError struct {
	Document string
	Field    string // empty for document-level problems
	Reason   string
}

// Error implements the error interface
func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid mapping for %s.%s: %s", e.Document, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid mapping for %s: %s", e.Document, e.Reason)
}

// IsNotRegistered returns true if the error is ErrNotRegistered
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsMappingError returns true if the error is a MappingError
func IsMappingError(err error) bool {
	var me *MappingError
	return errors.As(err, &me)
}
