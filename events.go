package reqflow

import (
	"net/http"
	"sync"

	"github.com/denysbsb/reqflow/topic"
)

// Event names one of the four request lifecycle topics.
type Event string

const (
	// PreRequest fires with the outbound *http.Request before the transport
	// runs.
	PreRequest Event = "PRE_REQUEST"
	// PostRequestSuccess fires with the *Response of a successful exchange.
	PostRequestSuccess Event = "POST_REQUEST_SUCCESS"
	// PostRequestError fires with the *Response of a failed exchange: a
	// non-success status or a transport error.
	PostRequestError Event = "POST_REQUEST_ERROR"
	// PostRequest fires last for every request, whatever the outcome.
	PostRequest Event = "POST_REQUEST"
)

// Events lists the lifecycle events in firing order.
var Events = []Event{PreRequest, PostRequestSuccess, PostRequestError, PostRequest}

func (e Event) String() string { return string(e) }

// Dispatch is the state of one publish of an event. A handler may call Stop
// to skip the plugins that have not yet run for this publish; other events
// and other requests are unaffected.
type Dispatch struct {
	event   Event
	stopped bool
}

// Event returns the event being dispatched.
func (d *Dispatch) Event() Event { return d.event }

// Stop ends plugin dispatch for the current publish.
func (d *Dispatch) Stop() { d.stopped = true }

// Stopped reports whether Stop was called.
func (d *Dispatch) Stopped() bool { return d.stopped }

// Lifecycle publishes request lifecycle events on a topic bus. Handlers
// receive the *Dispatch of the current publish followed by the payload.
type Lifecycle struct {
	bus *topic.Bus
}

// NewLifecycle returns a lifecycle bus with no subscribers.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{bus: topic.New()}
}

var (
	defaultLifecycle     *Lifecycle
	defaultLifecycleOnce sync.Once
)

// DefaultLifecycle returns the process-wide lifecycle bus used by clients
// that are not given one.
func DefaultLifecycle() *Lifecycle {
	defaultLifecycleOnce.Do(func() {
		defaultLifecycle = NewLifecycle()
	})
	return defaultLifecycle
}

// Bus exposes the underlying topic bus.
func (l *Lifecycle) Bus() *topic.Bus { return l.bus }

// Publish fires ev with payload and returns the finished dispatch.
func (l *Lifecycle) Publish(ev Event, payload any) *Dispatch {
	d := &Dispatch{event: ev}
	l.bus.Publish(string(ev), d, payload)
	return d
}

// Subscribe registers a raw handler for ev.
func (l *Lifecycle) Subscribe(ev Event, h topic.Handler) {
	l.bus.Subscribe(string(ev), h)
}

// Off removes a handler previously returned by one of the On* methods.
func (l *Lifecycle) Off(ev Event, h topic.Handler) bool {
	return l.bus.Unsubscribe(string(ev), h)
}

// OnPreRequest subscribes fn to PreRequest.
func (l *Lifecycle) OnPreRequest(fn func(*Dispatch, *http.Request)) topic.Handler {
	h := topic.Func(func(args ...any) any {
		d, payload := dispatchArgs(args)
		if req, ok := payload.(*http.Request); ok && d != nil {
			fn(d, req)
		}
		return nil
	})
	l.Subscribe(PreRequest, h)
	return h
}

// OnPostRequestSuccess subscribes fn to PostRequestSuccess.
func (l *Lifecycle) OnPostRequestSuccess(fn func(*Dispatch, *Response)) topic.Handler {
	return l.onResponse(PostRequestSuccess, fn)
}

// OnPostRequestError subscribes fn to PostRequestError.
func (l *Lifecycle) OnPostRequestError(fn func(*Dispatch, *Response)) topic.Handler {
	return l.onResponse(PostRequestError, fn)
}

// OnPostRequest subscribes fn to PostRequest.
func (l *Lifecycle) OnPostRequest(fn func(*Dispatch, *Response)) topic.Handler {
	return l.onResponse(PostRequest, fn)
}

func (l *Lifecycle) onResponse(ev Event, fn func(*Dispatch, *Response)) topic.Handler {
	h := topic.Func(func(args ...any) any {
		d, payload := dispatchArgs(args)
		if resp, ok := payload.(*Response); ok && d != nil {
			fn(d, resp)
		}
		return nil
	})
	l.Subscribe(ev, h)
	return h
}

func dispatchArgs(args []any) (*Dispatch, any) {
	if len(args) < 2 {
		return nil, nil
	}
	d, _ := args[0].(*Dispatch)
	return d, args[1]
}
