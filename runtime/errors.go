package runtime

import (
	"errors"
	"fmt"

	"github.com/aura-studio/lambdaweb/event"
	"github.com/aura-studio/lambdaweb/mode"
)

// Error types reported in the errorType field of Runtime API error bodies.
const (
	ErrorTypeUnrecognizedEventShape = "UnrecognizedEventShape"
	ErrorTypeMalformedBody          = "MalformedBody"
	ErrorTypeHandler                = "HandlerError"
	ErrorTypeResponseEncoding       = "ResponseEncodingError"
	ErrorTypeInitialization         = "InitializationError"
)

// ErrNoRuntimeAPI is returned by the client when no Runtime API address is
// configured.
var ErrNoRuntimeAPI = errors.New(mode.RuntimeAPIVar + " is not set")

// RuntimeAPIError is a failure talking to the Runtime API itself. It is
// fatal: the process exits and Lambda replaces the execution environment.
type RuntimeAPIError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RuntimeAPIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("runtime api: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("runtime api: %s: %v", e.Op, e.Err)
}

func (e *RuntimeAPIError) Unwrap() error { return e.Err }

// HandlerError wraps an error or panic coming out of the handler.
type HandlerError struct {
	Err error
}

func (e *HandlerError) Error() string { return e.Err.Error() }

func (e *HandlerError) Unwrap() error { return e.Err }

type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string { return "initialization: " + e.Err.Error() }

func (e *InitializationError) Unwrap() error { return e.Err }

func decodeErrorType(err error) string {
	if errors.Is(err, event.ErrMalformedBody) {
		return ErrorTypeMalformedBody
	}
	return ErrorTypeUnrecognizedEventShape
}
