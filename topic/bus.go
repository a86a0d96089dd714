// Package topic implements a small publish/subscribe registry keyed by
// topic name.
//
// Topics need no registration: subscribing to an unknown topic creates it
// and publishing to one is a no-op. Handlers run synchronously, in
// subscription order, on the publishing goroutine.
package topic

import (
	"reflect"
	"sort"
	"sync"
)

// Handler receives the arguments passed to Publish.
type Handler interface {
	Handle(args ...any) any
}

type funcHandler struct {
	fn func(args ...any) any
}

func (h *funcHandler) Handle(args ...any) any {
	return h.fn(args...)
}

// Func wraps fn as a Handler. Each call returns a distinct handler, so the
// returned value is what must be passed to Unsubscribe.
func Func(fn func(args ...any) any) Handler {
	return &funcHandler{fn: fn}
}

// Bus maps topic names to ordered handler lists. It is safe for concurrent
// use.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{
		topics: make(map[string][]Handler),
	}
}

// Subscribe appends handlers to topic. Nil handlers are ignored.
func (b *Bus) Subscribe(topic string, handlers ...Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, h := range handlers {
		if h == nil {
			continue
		}
		b.topics[topic] = append(b.topics[topic], h)
	}
}

// Unsubscribe removes the first occurrence of handler from topic. The topic
// is dropped once its last handler is gone.
func (b *Bus) Unsubscribe(topic string, handler Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, ok := b.topics[topic]
	if !ok || handler == nil {
		return false
	}

	for i, h := range list {
		if !sameHandler(h, handler) {
			continue
		}
		rest := make([]Handler, 0, len(list)-1)
		rest = append(rest, list[:i]...)
		rest = append(rest, list[i+1:]...)
		if len(rest) == 0 {
			delete(b.topics, topic)
		} else {
			b.topics[topic] = rest
		}
		return true
	}
	return false
}

// UnsubscribeAll removes topic with all of its handlers and reports whether
// it existed.
func (b *Bus) UnsubscribeAll(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.topics[topic]; !ok {
		return false
	}
	delete(b.topics, topic)
	return true
}

// Publish invokes every handler of topic with args and returns their
// results in subscription order. It returns nil when the topic has no
// handlers. Handler panics are not recovered.
func (b *Bus) Publish(topic string, args ...any) []any {
	b.mu.RLock()
	list := b.topics[topic]
	b.mu.RUnlock()

	if len(list) == 0 {
		return nil
	}

	results := make([]any, 0, len(list))
	for _, h := range list {
		results = append(results, h.Handle(args...))
	}
	return results
}

// Has reports whether topic has at least one handler.
func (b *Bus) Has(topic string) bool {
	return b.Len(topic) > 0
}

// Len returns the number of handlers subscribed to topic.
func (b *Bus) Len(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Topics returns the names of all topics with handlers, sorted.
func (b *Bus) Topics() []string {
	b.mu.RLock()
	names := make([]string, 0, len(b.topics))
	for name := range b.topics {
		names = append(names, name)
	}
	b.mu.RUnlock()

	sort.Strings(names)
	return names
}

// sameHandler compares by identity. Handlers of non-comparable dynamic
// types never match.
func sameHandler(a, b Handler) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
