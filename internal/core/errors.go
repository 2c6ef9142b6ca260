package core

import (
	"errors"
	"fmt"
)

// ValidationReason identifies why an input was rejected locally
type ValidationReason string

const (
	ReasonEmptyInput      ValidationReason = "empty_input"
	ReasonTooShort        ValidationReason = "too_short"
	ReasonTooLong         ValidationReason = "too_long"
	ReasonNoFile          ValidationReason = "no_file"
	ReasonTooLarge        ValidationReason = "too_large"
	ReasonUnsupportedType ValidationReason = "unsupported_type"
)

// ErrorKind distinguishes the three failure families of a submission
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindServer     ErrorKind = "server"
	KindUnknown    ErrorKind = "unknown"
)

// ValidationError is returned when an input fails local validation.
// It never reaches the network and Message is shown to the user as is.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is returned when the classification service could not be reached
// or did not answer in time.
type TransportError struct {
	Message string
	Detail  string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is returned when the classification service answered with a
// non-success status or with a body that does not match the data model.
type ServerError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     string
}

func (e *ServerError) Error() string {
	return e.Message
}

// APIError is the flattened, display-ready form of any submission failure
type APIError struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// KindOf returns the failure family of err
func KindOf(err error) ErrorKind {
	var validationErr *ValidationError
	var transportErr *TransportError
	var serverErr *ServerError

	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &serverErr):
		return KindServer
	default:
		return KindUnknown
	}
}

// Describe flattens err into the message/detail pair shown to users
func Describe(err error) APIError {
	if err == nil {
		return APIError{}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return APIError{Message: validationErr.Message}
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return APIError{Message: transportErr.Message, Detail: transportErr.Detail}
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return APIError{Message: serverErr.Message, Detail: serverErr.Detail}
	}
	return APIError{Message: err.Error()}
}

func newValidationError(reason ValidationReason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}
