package reqflow

import (
	"net/http"
	"sync"

	"github.com/denysbsb/reqflow/topic"
)

// Action is a hook's verdict on the rest of the current dispatch.
type Action int

const (
	// Continue lets the remaining plugins run. It is the zero value, so a
	// hook with no opinion continues.
	Continue Action = iota
	// Stop skips the remaining plugins for the current event only.
	Stop
)

// Plugin is any value implementing one or more of the hook interfaces
// below. Hooks a plugin does not implement are skipped for it.
type Plugin any

// PreRequestHook observes outbound requests.
type PreRequestHook interface {
	PreRequest(req *http.Request) Action
}

// PostRequestSuccessHook observes successful responses.
type PostRequestSuccessHook interface {
	PostRequestSuccess(resp *Response) Action
}

// PostRequestErrorHook observes failed exchanges.
type PostRequestErrorHook interface {
	PostRequestError(resp *Response) Action
}

// PostRequestHook observes every completed request.
type PostRequestHook interface {
	PostRequest(resp *Response) Action
}

// PreRequestFunc is a plugin with only a PreRequest hook.
type PreRequestFunc func(req *http.Request) Action

func (f PreRequestFunc) PreRequest(req *http.Request) Action { return f(req) }

// PostRequestSuccessFunc is a plugin with only a PostRequestSuccess hook.
type PostRequestSuccessFunc func(resp *Response) Action

func (f PostRequestSuccessFunc) PostRequestSuccess(resp *Response) Action { return f(resp) }

// PostRequestErrorFunc is a plugin with only a PostRequestError hook.
type PostRequestErrorFunc func(resp *Response) Action

func (f PostRequestErrorFunc) PostRequestError(resp *Response) Action { return f(resp) }

// PostRequestFunc is a plugin with only a PostRequest hook.
type PostRequestFunc func(resp *Response) Action

func (f PostRequestFunc) PostRequest(resp *Response) Action { return f(resp) }

// Capabilities records which hooks a plugin implements.
type Capabilities struct {
	PreRequest         bool
	PostRequestSuccess bool
	PostRequestError   bool
	PostRequest        bool
}

// CapabilitiesOf inspects p.
func CapabilitiesOf(p Plugin) Capabilities {
	_, pre := p.(PreRequestHook)
	_, success := p.(PostRequestSuccessHook)
	_, failure := p.(PostRequestErrorHook)
	_, post := p.(PostRequestHook)
	return Capabilities{
		PreRequest:         pre,
		PostRequestSuccess: success,
		PostRequestError:   failure,
		PostRequest:        post,
	}
}

// Handles reports whether the capabilities include the hook for ev.
func (c Capabilities) Handles(ev Event) bool {
	switch ev {
	case PreRequest:
		return c.PreRequest
	case PostRequestSuccess:
		return c.PostRequestSuccess
	case PostRequestError:
		return c.PostRequestError
	case PostRequest:
		return c.PostRequest
	default:
		return false
	}
}

type pluginEntry struct {
	name   string
	plugin Plugin
	caps   Capabilities
}

// Registry is an ordered set of named plugins. It is safe for concurrent
// use; dispatch iterates a snapshot, so hooks may register or remove
// plugins without affecting the dispatch in progress.
type Registry struct {
	mu      sync.RWMutex
	entries []pluginEntry
	bound   map[*Lifecycle]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bound: make(map[*Lifecycle]struct{}),
	}
}

// Register adds p under name. Registering an existing name replaces that
// plugin in place.
func (r *Registry) Register(name string, p Plugin) {
	entry := pluginEntry{name: name, plugin: p, caps: CapabilitiesOf(p)}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].name == name {
			r.entries[i] = entry
			return
		}
	}
	r.entries = append(r.entries, entry)
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.name == name {
			return e.plugin, true
		}
	}
	return nil, false
}

// Remove deletes the plugin registered under name.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.name != name {
			continue
		}
		rest := make([]pluginEntry, 0, len(r.entries)-1)
		rest = append(rest, r.entries[:i]...)
		r.entries = append(rest, r.entries[i+1:]...)
		return true
	}
	return false
}

// ForEach calls fn for every plugin in registration order.
func (r *Registry) ForEach(fn func(name string, p Plugin)) {
	for _, e := range r.snapshot() {
		fn(e.name, e.plugin)
	}
}

// Names returns plugin names in registration order.
func (r *Registry) Names() []string {
	entries := r.snapshot()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) snapshot() []pluginEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pluginEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Bind subscribes the registry's dispatcher to every lifecycle event of l.
// Binding the same lifecycle again is a no-op, so each event reaches each
// plugin once.
func (r *Registry) Bind(l *Lifecycle) {
	r.mu.Lock()
	if _, ok := r.bound[l]; ok {
		r.mu.Unlock()
		return
	}
	r.bound[l] = struct{}{}
	r.mu.Unlock()

	for _, ev := range Events {
		ev := ev
		l.Subscribe(ev, topic.Func(func(args ...any) any {
			d, payload := dispatchArgs(args)
			if d != nil {
				r.dispatch(d, ev, payload)
			}
			return nil
		}))
	}
}

// dispatch runs the ev hook of every capable plugin, in order, until one
// returns Stop or the dispatch is stopped by an earlier handler.
func (r *Registry) dispatch(d *Dispatch, ev Event, payload any) {
	for _, e := range r.snapshot() {
		if d.Stopped() {
			return
		}
		if !e.caps.Handles(ev) {
			continue
		}
		if invokeHook(e.plugin, ev, payload) == Stop {
			d.Stop()
		}
	}
}

func invokeHook(p Plugin, ev Event, payload any) Action {
	switch ev {
	case PreRequest:
		req, ok := payload.(*http.Request)
		if !ok {
			return Continue
		}
		return p.(PreRequestHook).PreRequest(req)
	case PostRequestSuccess:
		if resp, ok := payload.(*Response); ok {
			return p.(PostRequestSuccessHook).PostRequestSuccess(resp)
		}
	case PostRequestError:
		if resp, ok := payload.(*Response); ok {
			return p.(PostRequestErrorHook).PostRequestError(resp)
		}
	case PostRequest:
		if resp, ok := payload.(*Response); ok {
			return p.(PostRequestHook).PostRequest(resp)
		}
	}
	return Continue
}
