package validation

import (
	"fmt"

	"github.com/myrjola/plottwist/internal/errors"
)

var (
	// ErrSchema is matched by every *SchemaError.
	ErrSchema = errors.NewSentinel("model response does not match schema")

	ErrMissingKey                   = errors.NewSentinel("missing key")
	ErrWrongType                    = errors.NewSentinel("wrong type")
	ErrInvalidValue                 = errors.NewSentinel("invalid value")
	ErrTooFewDossiers               = errors.NewSentinel("too few valid character dossiers")
	ErrInvalidArtStyleSelection     = errors.NewSentinel("selected art style is not in the catalog")
	ErrInconsistentFinalityContract = errors.NewSentinel("inconsistent finality contract")
)

// SchemaError describes why a parsed model response was rejected.
type SchemaError struct {
	// Shape is the interaction type being validated, e.g. "scenario".
	Shape string
	// Field is the offending key.
	Field string
	// Kind is one of the sentinel errors of this package.
	Kind   error
	Detail string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("%s: %s %q", e.Shape, e.Kind.Error(), e.Field)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Kind
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema //nolint:errorlint // sentinel identity
}

func schemaError(shape, field string, kind error, detail string) error {
	return &SchemaError{Shape: shape, Field: field, Kind: kind, Detail: detail}
}
