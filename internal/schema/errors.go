package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrConfiguration marks a missing endpoint or credential.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransport marks a failed or non-successful HTTP exchange.
	ErrTransport = errors.New("transport error")

	// ErrToolNotFound marks an invocation whose name is not in the registry.
	ErrToolNotFound = errors.New("tool not found")
)

// ConfigurationError is returned before any network I/O when a required
// setting is absent.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is not configured", e.Setting)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// TransportError reports a non-success HTTP status. StatusCode is 0 when the
// request never produced a response.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("completion request failed: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("HTTP error! status: %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports malformed invocation arguments.
type ParseError struct {
	FunctionName string
	Raw          string
	Err          error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.FunctionName, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ToolNotFoundError reports an invocation name missing from the registry.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string { return "Tool not found" }

func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// OperationError wraps a failure of the underlying document operation.
type OperationError struct {
	Action string
	Err    error
}

func (e *OperationError) Error() string { return e.Err.Error() }

func (e *OperationError) Unwrap() error { return e.Err }
