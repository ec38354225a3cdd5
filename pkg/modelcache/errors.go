package modelcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UnknownModelError is returned by Acquire for identifiers missing from
// the catalog. No load is ever started for such identifiers.
type UnknownModelError struct {
	Model     string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q, available: %s", e.Model, strings.Join(e.Available, ", "))
}

// IsTimeout reports whether err represents a load that hit the configured
// LoadTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
