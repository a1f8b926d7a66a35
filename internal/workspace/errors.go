package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is returned by gated actions attempted while anonymous.
	// No network call has been made when it is returned.
	ErrAuthRequired = errors.New("authentication required")
	// ErrStaleResponse marks a result that arrived after its selection was
	// replaced. The result was discarded; callers should not report it.
	ErrStaleResponse = errors.New("stale response discarded")
)

// ValidationError rejects an action before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
