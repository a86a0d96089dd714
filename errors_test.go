package reqflow

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestClientError(t *testing.T) {
	err := &ClientError{
		Type:    ErrorTypeNetwork,
		Message: "connection timeout",
	}

	expectedMsg := "NetworkError: connection timeout"
	if err.Error() != expectedMsg {
		t.Errorf("Expected '%s', got '%s'", expectedMsg, err.Error())
	}

	cause := errors.New("underlying error")
	errWithCause := &ClientError{
		Type:      ErrorTypeHTTP,
		Message:   "unexpected status 500",
		Cause:     cause,
		RequestID: "req_1",
	}

	expectedMsgWithCause := "[req_1] HTTPError: unexpected status 500 (underlying error)"
	if errWithCause.Error() != expectedMsgWithCause {
		t.Errorf("Expected '%s', got '%s'", expectedMsgWithCause, errWithCause.Error())
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("original error")
	err := &ClientError{Type: ErrorTypeDecode, Cause: cause}

	if err.Unwrap() != cause {
		t.Errorf("Expected unwrapped error to be %v, got %v", cause, err.Unwrap())
	}
	if (&ClientError{}).Unwrap() != nil {
		t.Error("Expected nil cause to unwrap to nil")
	}
}

func TestClientErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &ClientError{Type: ErrorTypeMapping, Message: "bad"})

	if !errors.Is(err, &ClientError{Type: ErrorTypeMapping}) {
		t.Error("Expected errors.Is to match by type")
	}
	if errors.Is(err, &ClientError{Type: ErrorTypeHTTP}) {
		t.Error("Expected errors.Is not to match a different type")
	}
}

func TestClientErrorNilHandling(t *testing.T) {
	var err *ClientError
	if err.Error() != "<nil>" {
		t.Errorf("Expected '<nil>', got %s", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("Expected nil unwrap")
	}
	if err.Is(&ClientError{}) {
		t.Error("Expected nil error not to match")
	}
	if err.DebugInfo() != "Error: <nil>" {
		t.Errorf("Unexpected debug info: %s", err.DebugInfo())
	}
}

func TestClientErrorDebugInfo(t *testing.T) {
	err := &ClientError{
		Type:       ErrorTypeHTTP,
		Message:    "unexpected status 503",
		RequestID:  "req_abc",
		Method:     "GET",
		URL:        "http://api.test/x",
		Endpoint:   "api.test/x",
		StatusCode: 503,
		Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:   150 * time.Millisecond,
		Cause:      errors.New("upstream"),
	}

	info := err.DebugInfo()
	for _, want := range []string{
		"Error Type: HTTPError",
		"Request ID: req_abc",
		"Method: GET",
		"Endpoint: api.test/x",
		"Status Code: 503",
		"Timestamp: 2024-01-02T03:04:05Z",
		"Duration: 150ms",
		"Cause: upstream",
	} {
		if !strings.Contains(info, want) {
			t.Errorf("Expected debug info to contain %q, got:\n%s", want, info)
		}
	}
}

func TestTransportPanicError(t *testing.T) {
	cause := errors.New("dial failed")
	err := &TransportPanicError{Value: cause}
	if !errors.Is(err, cause) {
		t.Error("Expected error panic values to unwrap")
	}
	if got := (&TransportPanicError{Value: "boom"}).Error(); got != "reqflow: transport panicked: boom" {
		t.Errorf("Unexpected message %q", got)
	}
	if (&TransportPanicError{Value: "boom"}).Unwrap() != nil {
		t.Error("Expected non-error panic values not to unwrap")
	}
}

func TestResponseOf(t *testing.T) {
	resp := &Response{StatusCode: 500}
	err := fmt.Errorf("ctx: %w", &ClientError{Type: ErrorTypeHTTP, Response: resp})

	if ResponseOf(err) != resp {
		t.Error("Expected ResponseOf to find the attached response")
	}
	if ResponseOf(errors.New("plain")) != nil {
		t.Error("Expected nil for errors without a response")
	}
}

func TestHookPanicError(t *testing.T) {
	err := &HookPanicError{Event: PostRequest, Value: "boom"}
	if err.Error() != "reqflow: POST_REQUEST hook panicked: boom" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("Expected non-error panic value to unwrap to nil")
	}

	cause := errors.New("inner")
	if !errors.Is(&HookPanicError{Event: PreRequest, Value: cause}, cause) {
		t.Error("Expected error panic value to unwrap")
	}
}
