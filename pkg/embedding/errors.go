package embedding

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when no loader understands a model file.
var ErrUnsupportedFormat = errors.New("unsupported embedding file format")

// ErrNotFound is returned when no data file exists for a model identifier.
var ErrNotFound = errors.New("embedding data not found")

// DimensionError indicates a vector whose length differs from the table's
// declared dimensionality.
type DimensionError struct {
	Expected int
	Actual   int
	Word     string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch for %q: expected %d, got %d", e.Word, e.Expected, e.Actual)
}

// DuplicateWordError indicates a word appearing twice in one embedding file.
type DuplicateWordError struct {
	Word string
}

func (e *DuplicateWordError) Error() string {
	return fmt.Sprintf("duplicate word %q", e.Word)
}

// ParseError describes a malformed embedding file.
// Line is 1-based and zero when the failure is not tied to a line.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s", e.File, e.Reason)
}

// LoadError wraps any failure to produce a table for a model.
// The underlying cause can be inspected via errors.Is/As.
type LoadError struct {
	Model string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %q: %v", e.Model, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
