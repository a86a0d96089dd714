package reqflow

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/denysbsb/reqflow/mapping"
)

// SuccessCondition classifies a (normalized) status code as success.
type SuccessCondition func(status int) bool

// Middleware shapes a request before it reaches the network.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a configuration option
type Option func(*Client)

// Response is a completed exchange as seen by lifecycle hooks and callers.
// Err is set when no usable response was obtained: a transport failure
// (StatusCode is then 0) or a panic in an earlier lifecycle hook.
type Response struct {
	Request    *http.Request
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	// URL is the final URL: the X-Request-URL response header when present,
	// otherwise the URL after redirects.
	URL      string
	Duration time.Duration
	Err      error
}

// Failed reports whether Err is set.
func (r *Response) Failed() bool {
	return r != nil && r.Err != nil
}

// Empty reports whether the response carries no body.
func (r *Response) Empty() bool {
	return r == nil || len(r.Body) == 0
}

// JSON decodes the body into v. An empty body leaves v untouched.
func (r *Response) JSON(v any) error {
	if r.Empty() {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Map decodes the body and applies m. An empty body (e.g. 204) yields a nil
// Result.
func (r *Response) Map(m *mapping.Mapper) (mapping.Result, error) {
	if r.Empty() {
		return nil, nil
	}
	return m.TransformJSON(r.Body)
}

// DebugConfig controls the client's own debug logging.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogLifecycle bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a disabled config with every category on.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogLifecycle: true,
		RequestIDGen: generateRequestID,
	}
}
