package domain

import "errors"

var ErrInvalidBody = &ValidationError{Reason: "request body must be a JSON object"}

// ValidationError is a caller mistake. It maps to a bad request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// InternalError wraps an unexpected fault. Its message is the raw text of
// the underlying error.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op + ": internal error"
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func IsBadRequest(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
