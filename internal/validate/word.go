// Package validate enforces the request-level input rules for words and
// batches before any model work happens.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinWordLen and MaxWordLen bound a single word after trimming.
	MinWordLen = 1
	MaxWordLen = 100
	// MaxBatchSize bounds one batch comparison request.
	MaxBatchSize = 1000
)

// Error is a validation failure tied to a request field.
type Error struct {
	Field   string
	Value   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Word validates and trims a word input. field names the request field for
// error messages ("word", "word1", ...).
func Word(word, field string) (string, error) {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return "", &Error{Field: field, Value: word, Message: "cannot be empty or whitespace"}
	}
	if n := utf8.RuneCountInString(trimmed); n < MinWordLen || n > MaxWordLen {
		return "", &Error{Field: field, Value: trimmed,
			Message: fmt.Sprintf("length must be between %d and %d characters", MinWordLen, MaxWordLen)}
	}
	for _, r := range trimmed {
		if !isWordRune(r) {
			return "", &Error{Field: field, Value: trimmed,
				Message: "only letters, numbers, hyphens, underscores, apostrophes and dots are allowed"}
		}
	}
	if leading := trimmed[0]; leading == '-' || leading == '_' {
		return "", &Error{Field: field, Value: trimmed, Message: "cannot start with a hyphen or underscore"}
	}
	if trailing := trimmed[len(trimmed)-1]; trailing == '-' || trailing == '_' {
		return "", &Error{Field: field, Value: trimmed, Message: "cannot end with a hyphen or underscore"}
	}
	if strings.Contains(trimmed, "--") || strings.Contains(trimmed, "__") || strings.Contains(trimmed, "..") {
		return "", &Error{Field: field, Value: trimmed, Message: "cannot contain consecutive special characters"}
	}
	return trimmed, nil
}

// BatchSize validates the number of pairs in one batch request.
func BatchSize(n int) error {
	if n == 0 {
		return &Error{Field: "comparisons", Message: "cannot be empty"}
	}
	if n > MaxBatchSize {
		return &Error{Field: "comparisons",
			Message: fmt.Sprintf("batch size cannot exceed %d comparisons", MaxBatchSize)}
	}
	return nil
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '\'', r == '.':
		return true
	}
	return false
}
