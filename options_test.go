package reqflow

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWithTimeout(t *testing.T) {
	client := newTestClient(nil, WithTimeout(5*time.Second))

	if client.timeout != 5*time.Second {
		t.Errorf("Expected timeout=5s, got %v", client.timeout)
	}
	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected HTTP client timeout=5s, got %v", client.httpClient.Timeout)
	}
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	client := newTestClient(nil, WithTimeout(2*time.Second), WithHTTPClient(custom))

	if client.httpClient != custom {
		t.Error("Expected custom HTTP client")
	}
	if custom.Timeout != 2*time.Second {
		t.Errorf("Expected earlier timeout to carry over, got %v", custom.Timeout)
	}
	if tr, ok := client.transport.(*HTTPTransport); !ok || tr.Client != custom {
		t.Error("Expected the HTTP transport to use the custom client")
	}
}

func TestWithTransport(t *testing.T) {
	tr := TransportFunc(func(*http.Request) (*Response, error) { return &Response{StatusCode: 200}, nil })
	client := newTestClient(nil, WithTransport(tr))

	if _, ok := client.transport.(TransportFunc); !ok {
		t.Errorf("Expected custom transport, got %T", client.transport)
	}
	if !client.IsValid() {
		t.Errorf("Expected valid configuration, got %v", client.ValidationError())
	}
}

func TestWithTransportRejectsMiddleware(t *testing.T) {
	tr := TransportFunc(func(*http.Request) (*Response, error) { return &Response{StatusCode: 200}, nil })
	client := newTestClient(nil, WithTransport(tr), WithMiddleware(JSONContentTypeMiddleware()))

	if client.IsValid() {
		t.Fatal("Expected middleware with a custom transport to be invalid")
	}
	if !strings.Contains(client.ValidationError().Error(), "middleware is only applied by the HTTP transport") {
		t.Errorf("Unexpected validation error: %v", client.ValidationError())
	}
}

func TestWithMiddleware(t *testing.T) {
	m1 := JSONContentTypeMiddleware()
	m2 := HeaderMiddleware(nil)
	client := newTestClient(nil, WithMiddleware(m1), WithMiddleware(m2))

	if len(client.middleware) != 2 {
		t.Errorf("Expected 2 middleware, got %d", len(client.middleware))
	}
	if tr := client.transport.(*HTTPTransport); len(tr.Middleware) != 2 {
		t.Errorf("Expected transport to carry the middleware, got %d", len(tr.Middleware))
	}
}

func TestWithNilMiddlewareIsInvalid(t *testing.T) {
	client := newTestClient(nil, WithMiddleware(nil))
	if client.IsValid() {
		t.Error("Expected nil middleware to be rejected")
	}
}

func TestWithLifecycleAndPlugins(t *testing.T) {
	l := NewLifecycle()
	r := NewRegistry()
	client := New(WithLifecycle(l), WithPlugins(r), WithPlugin("noop", PostRequestFunc(func(*Response) Action { return Continue })))

	if client.Lifecycle() != l || client.Plugins() != r {
		t.Error("Expected the supplied lifecycle and registry")
	}
	if r.Len() != 1 {
		t.Errorf("Expected WithPlugin to register into the supplied registry, got %d", r.Len())
	}
	if l.Bus().Len(string(PostRequest)) != 1 {
		t.Error("Expected the registry to be bound to the lifecycle")
	}
}

func TestWithLifecycleOnlyGetsPrivateRegistry(t *testing.T) {
	client := New(WithLifecycle(NewLifecycle()))
	if client.Plugins() == DefaultRegistry() {
		t.Error("Expected a private registry for a private lifecycle")
	}
}

func TestWithSuccessConditionNil(t *testing.T) {
	client := newTestClient(nil, WithSuccessCondition(nil))
	if client.IsValid() {
		t.Error("Expected nil success condition to be rejected")
	}
}

func TestWithMetricsRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	client := newTestClient(nil, WithMetricsRegistry(registry))

	if client.metrics == nil {
		t.Fatal("Expected metrics collector")
	}
	if client.metrics.GetRegistry() != registry {
		t.Error("Expected collector on the supplied registry")
	}
}

func TestWithMetricsCollector(t *testing.T) {
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	client := newTestClient(nil, WithMetricsCollector(collector))

	if client.metrics != collector {
		t.Error("Expected custom metrics collector")
	}
}

func TestWithDebugRequiresLogger(t *testing.T) {
	client := newTestClient(nil, WithDebug())

	if client.IsValid() {
		t.Fatal("Expected debug without logger to be invalid")
	}
	var clientErr *ClientError
	if !errors.As(client.ValidationError(), &clientErr) || clientErr.Type != ErrorTypeValidation {
		t.Errorf("Expected validation ClientError, got %v", client.ValidationError())
	}
}

func TestWithSimpleLogger(t *testing.T) {
	client := newTestClient(nil, WithSimpleLogger())

	if client.logger == nil || !client.debug.Enabled {
		t.Error("Expected simple logger with debug enabled")
	}
	if !client.IsValid() {
		t.Errorf("Expected valid configuration, got %v", client.ValidationError())
	}
}

func TestWithDebugConfig(t *testing.T) {
	cfg := &DebugConfig{Enabled: true, RequestIDGen: func() string { return "id" }}
	client := newTestClient(nil, WithDebugConfig(cfg), WithLogger(NopLogger{}))

	if client.debug != cfg {
		t.Error("Expected supplied debug config")
	}
	if !client.IsValid() {
		t.Errorf("Expected valid configuration, got %v", client.ValidationError())
	}
}

func TestWithRequestIDGeneratorWithoutDebugConfig(t *testing.T) {
	client := newTestClient(nil, WithDebugConfig(nil), WithRequestIDGenerator(func() string { return "x" }))
	if client.debug == nil || client.debug.RequestIDGen() != "x" {
		t.Error("Expected a debug config with the custom generator")
	}
}

func TestExtremeTimeoutIsInvalid(t *testing.T) {
	if newTestClient(nil, WithTimeout(time.Hour)).IsValid() {
		t.Error("Expected a one hour timeout to be rejected")
	}
	if newTestClient(nil, WithTimeout(-time.Second)).IsValid() {
		t.Error("Expected a negative timeout to be rejected")
	}
}

func TestInvalidClientWithoutTransport(t *testing.T) {
	client := newTestClient(nil, WithHTTPClient(nil))
	if client.IsValid() {
		t.Fatal("Expected a client without HTTP client or transport to be invalid")
	}

	_, err := client.Do(mustRequest(t, http.MethodGet, "http://api.test/"))
	if !errors.Is(err, &ClientError{Type: ErrorTypeValidation}) {
		t.Errorf("Expected validation error from Do, got %v", err)
	}
}
