package reqflow

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
		if client != nil && c.timeout != 0 {
			c.httpClient.Timeout = c.timeout
		}
	}
}

// WithTransport replaces the HTTP transport. Middleware is not applied to
// custom transports.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithMiddleware adds middleware to the client
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithDefaultHeaders sets headers on every request that does not already
// carry them.
func WithDefaultHeaders(headers http.Header) Option {
	return WithMiddleware(HeaderMiddleware(headers))
}

// WithXSRF copies the cookie named cookieName from jar into headerName on
// unsafe same-host requests.
func WithXSRF(jar http.CookieJar, cookieName, headerName string) Option {
	return WithMiddleware(XSRFMiddleware(jar, cookieName, headerName))
}

// WithLifecycle publishes the client's events on l instead of the default
// lifecycle.
func WithLifecycle(l *Lifecycle) Option {
	return func(c *Client) {
		c.lifecycle = l
	}
}

// WithPlugins dispatches the client's events to r.
func WithPlugins(r *Registry) Option {
	return func(c *Client) {
		c.plugins = r
	}
}

// WithPlugin registers p under name in the client's registry once it is
// known.
func WithPlugin(name string, p Plugin) Option {
	return func(c *Client) {
		c.pending = append(c.pending, namedPlugin{name: name, plugin: p})
	}
}

// WithSuccessCondition overrides which statuses count as success.
func WithSuccessCondition(fn SuccessCondition) Option {
	return func(c *Client) {
		c.successCondition = fn
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsRegistry enables metrics on the given registerer.
func WithMetricsRegistry(registry prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollectorWithRegistry(registry)
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets a custom logger for debug output
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a simple console logger
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// ValidateConfiguration validates the client configuration and returns an error if invalid
func (c *Client) ValidateConfiguration() error {
	var errors []string

	errors = append(errors, c.validateTransportConfig()...)
	errors = append(errors, c.validateLifecycleConfig()...)
	errors = append(errors, c.validateDebugConfig()...)
	errors = append(errors, c.validateMiddlewareConfig()...)
	errors = append(errors, c.validateExtremeValues()...)

	if len(errors) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", errors),
		}
	}

	return nil
}

func (c *Client) validateTransportConfig() []string {
	var errors []string

	if c.transport == nil && c.httpClient == nil {
		errors = append(errors, "HTTP client cannot be nil without a custom transport")
	}
	if _, ok := c.transport.(*HTTPTransport); c.transport != nil && !ok && len(c.middleware) > 0 {
		errors = append(errors, "middleware is only applied by the HTTP transport")
	}

	return errors
}

func (c *Client) validateLifecycleConfig() []string {
	var errors []string

	if c.lifecycle == nil {
		errors = append(errors, "lifecycle cannot be nil")
	}
	if c.plugins == nil {
		errors = append(errors, "plugin registry cannot be nil")
	}
	if c.successCondition == nil {
		errors = append(errors, "success condition cannot be nil")
	}

	return errors
}

func (c *Client) validateDebugConfig() []string {
	var errors []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			errors = append(errors, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			errors = append(errors, "logger must be set when debug is enabled")
		}
	}

	return errors
}

func (c *Client) validateMiddlewareConfig() []string {
	var errors []string

	for i, middleware := range c.middleware {
		if middleware == nil {
			errors = append(errors, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	return errors
}

func (c *Client) validateExtremeValues() []string {
	var errors []string

	if c.timeout < 0 {
		errors = append(errors, "timeout cannot be negative")
	}
	if c.timeout > 10*time.Minute {
		errors = append(errors, "timeout > 10m may cause requests to hang for too long")
	}

	return errors
}
