package reqflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client sends requests through a transport and publishes the request
// lifecycle around each exchange. It is safe for concurrent use.
type Client struct {
	httpClient       *http.Client
	timeout          time.Duration
	transport        Transport
	middleware       []Middleware
	lifecycle        *Lifecycle
	plugins          *Registry
	pending          []namedPlugin
	successCondition SuccessCondition
	metrics          *MetricsCollector
	debug            *DebugConfig
	logger           Logger
	unmarshaler      Unmarshaler
	validationError  error
}

type namedPlugin struct {
	name   string
	plugin Plugin
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide plugin registry, bound to
// DefaultLifecycle.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Bind(DefaultLifecycle())
	})
	return defaultRegistry
}

// New constructs a Client using the provided functional options. A best effort
// validation is performed; call IsValid / ValidationError for errors.
//
// Without WithLifecycle and WithPlugins the client publishes on
// DefaultLifecycle and dispatches to DefaultRegistry.
func New(options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		timeout:          30 * time.Second,
		middleware:       []Middleware{},
		successCondition: DefaultSuccessCondition,
		debug:            DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	if client.lifecycle == nil {
		client.lifecycle = DefaultLifecycle()
	}
	if client.plugins == nil {
		if client.lifecycle == DefaultLifecycle() {
			client.plugins = DefaultRegistry()
		} else {
			client.plugins = NewRegistry()
		}
	}
	for _, p := range client.pending {
		client.plugins.Register(p.name, p.plugin)
	}
	client.pending = nil
	client.plugins.Bind(client.lifecycle)

	if client.transport == nil && client.httpClient != nil {
		client.transport = NewHTTPTransport(client.httpClient, client.middleware...)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Lifecycle returns the bus the client publishes on.
func (c *Client) Lifecycle() *Lifecycle { return c.lifecycle }

// Plugins returns the registry bound to the client's lifecycle.
func (c *Client) Plugins() *Registry { return c.plugins }

// Get performs an HTTP GET with context.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post performs an HTTP POST with the given content type.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}

// Do executes req and publishes its lifecycle:
//
//	PRE_REQUEST -> transport -> POST_REQUEST_SUCCESS | POST_REQUEST_ERROR -> POST_REQUEST
//
// POST_REQUEST fires exactly once and last, whatever the outcome. On
// success the normalized response is returned. Otherwise the error is a
// *ClientError whose Response field holds what the error hooks saw.
func (c *Client) Do(req *http.Request) (*Response, error) {
	if c.validationError != nil || c.transport == nil {
		return nil, c.createClientError(ErrorTypeValidation, "invalid client configuration", c.validationError, "", req, nil, 0)
	}

	start := time.Now()
	endpoint := getEndpointFromRequest(req)

	var requestID string
	if c.debugEnabled() && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}

	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("Starting request", "requestID", requestID, "method", req.Method, "url", req.URL.String(), "endpoint", endpoint)
	}

	c.metrics.RecordRequestStart(req.Method, endpoint)
	defer c.metrics.RecordRequestEnd(req.Method, endpoint)

	hookErr := c.fire(PreRequest, req, requestID)

	var resp *Response
	var err error
	if hookErr == nil {
		resp, err = c.execute(req)
	}
	if resp == nil {
		resp = &Response{Request: req}
	}
	if err != nil {
		resp.Err = err
	}
	normalize(resp, req)
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}

	succeeded := c.successCondition
	if succeeded == nil {
		succeeded = DefaultSuccessCondition
	}
	success := hookErr == nil && err == nil && succeeded(resp.StatusCode)
	if success {
		hookErr = c.fire(PostRequestSuccess, resp, requestID)
		success = hookErr == nil
	}
	if !success {
		if hookErr != nil && resp.Err == nil {
			resp.Err = hookErr
		}
		if perr := c.fire(PostRequestError, resp, requestID); perr != nil && hookErr == nil {
			hookErr = perr
		}
	}
	if perr := c.fire(PostRequest, resp, requestID); perr != nil && hookErr == nil {
		hookErr = perr
	}

	duration := time.Since(start)
	c.metrics.RecordRequest(req.Method, endpoint, resp.StatusCode, duration)

	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("Finished request", "requestID", requestID, "status", resp.StatusCode, "success", success, "duration", duration)
	}

	switch {
	case hookErr != nil:
		c.metrics.RecordError("Hook", req.Method, endpoint)
		return nil, c.createClientError(ErrorTypeHook, "lifecycle hook panicked", hookErr, requestID, req, resp, duration)
	case err != nil:
		c.metrics.RecordError("Network", req.Method, endpoint)
		return nil, c.createClientError(ErrorTypeNetwork, "network request failed", err, requestID, req, resp, duration)
	case !success:
		c.metrics.RecordError("HTTP", req.Method, endpoint)
		return nil, c.createClientError(ErrorTypeHTTP, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil, requestID, req, resp, duration)
	}
	return resp, nil
}

// execute runs the transport. A panic in the transport or its middleware
// is reported as a transport failure so the error branch and POST_REQUEST
// still fire.
func (c *Client) execute(req *http.Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, &TransportPanicError{Value: r}
			if c.logger != nil {
				c.logger.Error("Transport panicked", "method", req.Method, "url", req.URL.String(), "panic", fmt.Sprint(r))
			}
		}
	}()
	return c.transport.Execute(req)
}

// fire publishes ev and converts a panic from any handler into a
// *HookPanicError. Handlers after the panicking one do not run for this
// publish.
func (c *Client) fire(ev Event, payload any, requestID string) (perr *HookPanicError) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr = &HookPanicError{Event: ev, Value: r}
		c.metrics.RecordEvent(ev, false)
		c.metrics.RecordHookPanic(ev)
		if c.logger != nil {
			c.logger.Error("Lifecycle hook panicked", "requestID", requestID, "event", string(ev), "panic", fmt.Sprint(r))
		}
	}()

	d := c.lifecycle.Publish(ev, payload)
	c.metrics.RecordEvent(ev, d.Stopped())

	if c.debugEnabled() && c.debug.LogLifecycle {
		c.logger.Debug("Lifecycle event", "requestID", requestID, "event", string(ev), "stopped", d.Stopped())
	}
	return nil
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil
}

// DefaultSuccessCondition treats 2xx statuses as success.
func DefaultSuccessCondition(status int) bool {
	return status >= 200 && status < 300
}

func (c *Client) createClientError(errorType, message string, cause error, requestID string, req *http.Request, resp *Response, duration time.Duration) *ClientError {
	ce := &ClientError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		RequestID: requestID,
		Timestamp: time.Now(),
		Duration:  duration,
		Response:  resp,
	}
	if req != nil {
		ce.Method = req.Method
		ce.Endpoint = getEndpointFromRequest(req)
		if req.URL != nil {
			ce.URL = req.URL.String()
		}
	}
	if resp != nil {
		ce.StatusCode = resp.StatusCode
	}
	return ce
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func getEndpointFromRequest(req *http.Request) string {
	if req == nil || req.URL == nil {
		return "unknown"
	}

	host := req.URL.Host
	path := req.URL.Path

	var builder strings.Builder
	builder.WriteString(host)

	if path != "" && path != "/" {
		builder.WriteString(path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}

func generateRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b[:])
}
