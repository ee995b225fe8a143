package world

import (
	"errors"
	"fmt"
)

// ActionError is returned by a World primitive when the robot asked
// for something the rules of the world do not allow, such as walking
// into lava or consuming from an empty tile. An ActionError never
// changes the world.
type ActionError struct {
	Op     string
	Reason string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Reason)
}

func actionError(op, format string, args ...interface{}) error {
	return &ActionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsActionError returns whether err is, or wraps, an ActionError
func IsActionError(err error) bool {
	var ae *ActionError
	return errors.As(err, &ae)
}
