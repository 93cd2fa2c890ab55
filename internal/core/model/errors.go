package model

import "fmt"

// FieldError reports a rejected user input for a single field.
type FieldError struct {
	Field  string
	Reason string
}

func (err *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}
