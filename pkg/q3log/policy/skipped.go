package policy

import (
	"errors"
	"fmt"
)

// SkippedError marks a recoverable error that a Tolerant policy reported
// while the pipeline kept going. It appears in the output sequence in place
// of a value; the offending line or event was excluded from aggregation.
type SkippedError struct {
	Err error
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("skipped: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *SkippedError) Unwrap() error {
	return e.Err
}

// IsSkipped reports whether err is a SkippedError, i.e. processing continued
// past it.
func IsSkipped(err error) bool {
	var s *SkippedError
	return errors.As(err, &s)
}
