package csvimport

import "errors"

var (
	ErrMissingColumns  = errors.New("missing required columns")
	ErrLapShorthand    = errors.New("invalid lap shorthand")
	ErrInvalidTime     = errors.New("invalid time format")
	ErrUnreadableInput = errors.New("unreadable csv")
)

// ParseError aborts a whole import. Message is shown to the user as is.
type ParseError struct {
	Kind    error
	Line    int
	Missing []string
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return e.Kind }
