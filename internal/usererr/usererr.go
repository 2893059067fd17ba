// Package usererr marks errors caused by user input, such as a malformed
// CSV, so the CLI and HTTP layers can report them softly.
package usererr

import "errors"

type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewExpectedError wraps err as a user error. nil stays nil.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}
