package service

import (
	"errors"
	"fmt"
)

// ErrUnknownDimension is wrapped by the ProcessingError returned when a
// submission names a dimension that does not exist.
var ErrUnknownDimension = errors.New("unknown rating dimension")

// ValidationError rejects caller input before or instead of any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProcessingError reports a failure while talking to the store or while
// resolving references. Err is never shown to API callers.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func processing(op string, err error) error {
	var perr *ProcessingError
	if errors.As(err, &perr) {
		return err
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return &ProcessingError{Op: op, Err: err}
}
