// Package validation checks application metadata documents against the
// grammar and the configured content rules.
package validation

import "fmt"

// Error represents a caller or configuration mistake that prevents a pass
// from starting. Rule violations are never reported as errors.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
