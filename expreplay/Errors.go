package expreplay

import "errors"

// ExpReplayError implements errors unique to an experience replay
// buffer.
type ExpReplayError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

var errInsufficientSamples = errors.New("too few transitions to sample")

var errShape = errors.New("transition has the wrong shape")

// IsInsufficientSamples returns whether or not an error reports that
// there are insufficient samples in the buffer to sample from the
// buffer.
func IsInsufficientSamples(err error) bool {
	return errors.Is(err, errInsufficientSamples)
}

// IsShapeMismatch returns whether an error reports that a transition
// added to the buffer did not match the buffer's dimensions.
func IsShapeMismatch(err error) bool {
	return errors.Is(err, errShape)
}
