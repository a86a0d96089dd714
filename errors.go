package reqflow

import (
	"errors"
	"fmt"
	"time"
)

// Error types carried by ClientError.Type.
const (
	ErrorTypeNetwork    = "NetworkError"
	ErrorTypeHTTP       = "HTTPError"
	ErrorTypeHook       = "HookError"
	ErrorTypeDecode     = "DecodeError"
	ErrorTypeMapping    = "MappingError"
	ErrorTypeValidation = "ValidationError"
)

// ClientError is returned by Client.Do and friends. Response is set for
// every error that went through the lifecycle: HTTP errors carry the full
// response, transport errors a synthesized one.
type ClientError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	URL        string
	Endpoint   string
	StatusCode int
	Timestamp  time.Time
	Duration   time.Duration
	Response   *Response
}

// HookPanicError wraps a panic raised by a lifecycle handler or plugin hook.
type HookPanicError struct {
	Event Event
	Value any
}

func (e *HookPanicError) Error() string {
	return fmt.Sprintf("reqflow: %s hook panicked: %v", e.Event, e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *HookPanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// TransportPanicError wraps a panic raised by a Transport or Middleware.
type TransportPanicError struct {
	Value any
}

func (e *TransportPanicError) Error() string {
	return fmt.Sprintf("reqflow: transport panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *TransportPanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// IsHTTPError reports whether err is a non-success HTTP response.
func IsHTTPError(err error) bool {
	return errors.Is(err, &ClientError{Type: ErrorTypeHTTP})
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	return errors.Is(err, &ClientError{Type: ErrorTypeNetwork})
}

// ResponseOf returns the response attached to err, if any.
func ResponseOf(err error) *Response {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Response
	}
	return nil
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.Endpoint != "" {
		info += fmt.Sprintf("Endpoint: %s\n", e.Endpoint)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}
