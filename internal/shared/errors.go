package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the id does not resolve to a row.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the access gate denied the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientStock indicates a stock ledger rejection; no mutation was performed.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition indicates a status change outside the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidState indicates an edit rejected by the entity's current status.
	ErrInvalidState = errors.New("invalid state for this operation")
	// ErrBackendUnavailable indicates store connectivity failure; callers may retry.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrValidation is the sentinel matched by errors.Is for ValidationError values.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a uniqueness conflict at the store.
	ErrDuplicate = errors.New("duplicate entry")
)

// ValidationError carries field-level messages for malformed or
// out-of-range input. errors.Is(err, ErrValidation) matches it.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is treat every ValidationError as ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
