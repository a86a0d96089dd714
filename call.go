package reqflow

import (
	"context"
	"net/http"
)

// Call is a request running on its own goroutine. Its result is available
// once Done is closed.
type Call struct {
	cancel context.CancelFunc
	done   chan struct{}
	resp   *Response
	err    error
}

// Go starts req asynchronously. Cancelling the call aborts the transport
// through the request context; the abort is reported like any transport
// failure, through POST_REQUEST_ERROR and POST_REQUEST.
func (c *Client) Go(req *http.Request) *Call {
	ctx, cancel := context.WithCancel(req.Context())
	call := &Call{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	req = req.WithContext(ctx)
	go func() {
		defer close(call.done)
		defer cancel()
		call.resp, call.err = c.Do(req)
	}()
	return call
}

// Done is closed when the call has finished.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call finishes and returns its result.
func (c *Call) Wait() (*Response, error) {
	<-c.done
	return c.resp, c.err
}

// Cancel aborts the call. It is a no-op once the call has finished.
func (c *Call) Cancel() { c.cancel() }
