/*
errors.go - Centralized error types for the depreciation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Calculators themselves never return errors (they clamp or skip); these
  errors come from validation, configuration and storage.

ERROR CATEGORIES:
  1. Validation errors - Asset fields out of range (field-level detail)
  2. Configuration errors - Settings no calculation could use
  3. Store errors - Missing or duplicate records

USAGE:
  if errors.Is(err, generic.ErrAssetNotFound) {
      // 404
  }

  var verr *generic.ValidationError
  if errors.As(err, &verr) {
      for _, f := range verr.Fields { ... }
  }

SEE ALSO:
  - factory/asset.go: Produces ValidationError
  - store/sqlite/sqlite.go: Produces store errors
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAsset is returned when an asset fails validation.
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrInvalidConfig is returned when settings are out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAssetNotFound is returned when a referenced asset doesn't exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrDuplicateAsset is returned when an asset ID is already taken.
	ErrDuplicateAsset = errors.New("duplicate asset id")

	// ErrUnknownLaw is returned when a law name can't be parsed.
	ErrUnknownLaw = errors.New("unknown applicable law")

	// ErrAlreadyDisposed is returned when disposing an asset twice.
	ErrAlreadyDisposed = errors.New("asset already disposed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found on an asset.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("invalid asset: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidAsset
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field already has an error.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil when no field errors were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAsset) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrUnknownLaw) ||
		errors.Is(err, ErrAlreadyDisposed)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateAsset)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssetNotFound)
}
