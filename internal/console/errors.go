package console

import "fmt"

// UserError is shown to the user instead of ending the session. It covers
// bad input and operations the map refused.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func NewUserError(format string, args ...any) *UserError {
	if len(args) == 0 {
		return &UserError{Message: format}
	}
	return &UserError{Message: fmt.Sprintf(format, args...)}
}
