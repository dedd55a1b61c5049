package helper

import "fmt"

// Error wraps an underlying error with the action that produced it
type Error struct {
	Action string
	Err    error
}

// NewError creates a new wrapped error for the given action
func NewError(action string, err error) *Error {
	return &Error{Action: action, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Action, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}
