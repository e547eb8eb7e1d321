package config

import "fmt"

// ValidationError reports a profile value that is out of range or unknown.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// LoadError reports a profile that could not be read or decoded.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to %s run profile: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause of the error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
