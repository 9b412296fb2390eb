package action

import (
	"errors"
	"fmt"
)

var (
	// ErrControlBusy is returned when an action targets a control that is
	// still waiting for a previous request to settle.
	ErrControlBusy = errors.New("control busy")
	ErrRowNotFound = errors.New("row not found")
	ErrUnknownKind = errors.New("unknown action kind")
)

// ValidationError is a local, pre-flight failure. No request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ApplicationError means the backend processed the request and answered
// success:false.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return "application error: " + e.Message
}

// TransportError covers everything that prevents a well-formed answer:
// dial/IO failures, non-2xx statuses and unparsable bodies.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("transport error: status %d: %v", e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("transport error: status %d", e.Status)
	case e.Err != nil:
		return "transport error: " + e.Err.Error()
	default:
		return "transport error"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsApplication(err error) bool {
	var a *ApplicationError
	return errors.As(err, &a)
}

func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}
