package reqflow

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Transport performs one HTTP exchange. A returned error means no HTTP
// response was obtained; the Response may still carry partial data.
type Transport interface {
	Execute(req *http.Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(req *http.Request) (*Response, error)

func (f TransportFunc) Execute(req *http.Request) (*Response, error) { return f(req) }

// HTTPTransport executes requests on an *http.Client through a middleware
// chain and buffers the response body.
type HTTPTransport struct {
	Client     *http.Client
	Middleware []Middleware
}

// NewHTTPTransport returns a transport over client. A nil client means
// http.DefaultClient.
func NewHTTPTransport(client *http.Client, middleware ...Middleware) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client, Middleware: middleware}
}

// Execute implements Transport.
func (t *HTTPTransport) Execute(req *http.Request) (*Response, error) {
	start := time.Now()

	httpResp, err := t.roundTrip(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	resp := &Response{
		Request:    req,
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		resp.URL = httpResp.Request.URL.String()
	}
	if err != nil {
		return resp, fmt.Errorf("read response body: %w", err)
	}
	return resp, nil
}

func (t *HTTPTransport) roundTrip(req *http.Request) (*http.Response, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	if len(t.Middleware) == 0 {
		return client.Do(req)
	}

	current := RoundTripper(RoundTripperFunc(client.Do))
	for i := len(t.Middleware) - 1; i >= 0; i-- {
		middleware := t.Middleware[i]
		if middleware == nil {
			continue
		}
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}
	return current.RoundTrip(req)
}

// StatusNoContentIE is the status some legacy stacks report in place of 204.
const StatusNoContentIE = 1223

// HeaderRequestURL lets a server report the final request URL, overriding
// whatever the transport observed.
const HeaderRequestURL = "X-Request-URL"

// normalize applies the status and URL rules every transport result goes
// through before classification.
func normalize(resp *Response, req *http.Request) {
	if resp.StatusCode == StatusNoContentIE {
		resp.StatusCode = http.StatusNoContent
		resp.Status = "204 No Content"
	}
	switch {
	case resp.StatusCode == http.StatusNoContent:
		resp.Body = nil
	case resp.StatusCode == 0 && len(resp.Body) > 0:
		resp.StatusCode = http.StatusOK
		resp.Status = "200 OK"
	}

	if u := resp.Header.Get(HeaderRequestURL); u != "" {
		resp.URL = u
	} else if resp.URL == "" && req != nil && req.URL != nil {
		resp.URL = req.URL.String()
	}
	if resp.Request == nil {
		resp.Request = req
	}
}
