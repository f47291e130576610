package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks caller-recoverable input errors.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups that matched no record.
	ErrNotFound = errors.New("not found")

	// ErrEmptyBatch is returned when a dispatch request carries no rows at all.
	ErrEmptyBatch = fmt.Errorf("%w: batch is empty", ErrValidation)
	// ErrNoValidRows is returned when every row was filtered out during validation.
	ErrNoValidRows = fmt.Errorf("%w: no valid data rows found", ErrValidation)
)

// MissingColumnsError reports required columns absent from the uploaded batch.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrValidation }
