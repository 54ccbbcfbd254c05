package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput indicates blank text was passed to a model.
	ErrEmptyInput = errors.New("empty input")

	// ErrDimensionMismatch indicates an embedding of unexpected length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSchemaValidation indicates model output that does not match the expected shape.
	ErrSchemaValidation = errors.New("model output failed schema validation")

	// ErrEmptyResponse indicates the model returned no content.
	ErrEmptyResponse = errors.New("empty model response")
)

// SchemaError describes non-conforming model output.
type SchemaError struct {
	// Stage names the operation whose output failed, e.g. "categorize".
	Stage string
	// Raw is the response text as received.
	Raw string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Stage, ErrSchemaValidation, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *SchemaError) Unwrap() []error {
	return []error{ErrSchemaValidation, e.Err}
}

// NewSchemaError builds a SchemaError for stage.
func NewSchemaError(stage, raw string, err error) *SchemaError {
	return &SchemaError{Stage: stage, Raw: raw, Err: err}
}
