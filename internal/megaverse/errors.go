package megaverse

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrMissingKind      = errors.New("megaverse: missing entity type")
	ErrMissingAttribute = errors.New("megaverse: missing entity attribute")
	ErrUnknownAttribute = errors.New("megaverse: unknown entity attribute")
	ErrUnknownKind      = errors.New("megaverse: unknown entity type")
	ErrUnknownLabel     = errors.New("megaverse: unknown cell label")
)

// ValidationError reports malformed input detected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "megaverse: validation failed: " + e.Reason
	}
	return fmt.Sprintf("megaverse: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return errdefs.ErrInvalidArgument
}

// Invalid builds a ValidationError for one field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// CellError reports a raw current-map cell that cannot be translated into a label.
// Err is one of the ErrMissing*/ErrUnknown* sentinels.
type CellError struct {
	Field string
	Value any
	Err   error
}

func (e *CellError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%v (field %q)", e.Err, e.Field)
	}
	return fmt.Sprintf("%v (field %q value %v)", e.Err, e.Field, e.Value)
}

func (e *CellError) Unwrap() []error {
	return []error{e.Err, errdefs.ErrInvalidArgument}
}

// IsValidation reports whether err belongs to the validation class.
func IsValidation(err error) bool {
	return errdefs.IsInvalidArgument(err)
}
