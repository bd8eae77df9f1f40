package world

import "fmt"

// InvalidMapOperation reports a change that cannot be applied to the world,
// such as a reference to a room that does not exist or an occupied position.
type InvalidMapOperation struct {
	Msg string
}

func NewInvalidMapOperation(format string, args ...any) *InvalidMapOperation {
	return &InvalidMapOperation{Msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidMapOperation) Error() string {
	if e.Msg == "" {
		return "invalid map operation"
	}
	return "invalid map operation: " + e.Msg
}

// ConsistencyError reports a broken world invariant.
type ConsistencyError struct {
	Msg string
}

func NewConsistencyError(format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ConsistencyError) Error() string {
	return "map consistency error: " + e.Msg
}
