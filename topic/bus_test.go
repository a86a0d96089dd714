package topic

import (
	"reflect"
	"sync"
	"testing"
)

func TestPublishInvokesHandlersInOrder(t *testing.T) {
	bus := New()
	var calls []string

	bus.Subscribe("greet",
		Func(func(args ...any) any { calls = append(calls, "first"); return 1 }),
		Func(func(args ...any) any { calls = append(calls, "second"); return 2 }),
	)
	bus.Subscribe("greet", Func(func(args ...any) any { calls = append(calls, "third"); return 3 }))

	results := bus.Publish("greet")

	if !reflect.DeepEqual(calls, []string{"first", "second", "third"}) {
		t.Errorf("Expected handlers in subscription order, got %v", calls)
	}
	if !reflect.DeepEqual(results, []any{1, 2, 3}) {
		t.Errorf("Expected results [1 2 3], got %v", results)
	}
}

func TestPublishPassesSameArguments(t *testing.T) {
	bus := New()
	payload := &struct{ n int }{n: 7}
	var seen []any

	record := func(args ...any) any {
		seen = append(seen, args...)
		return nil
	}
	bus.Subscribe("t", Func(record), Func(record))

	bus.Publish("t", payload, "extra")

	if len(seen) != 4 {
		t.Fatalf("Expected 4 recorded args, got %d", len(seen))
	}
	if seen[0] != payload || seen[2] != payload {
		t.Error("Expected every handler to receive the same payload instance")
	}
	if seen[1] != "extra" || seen[3] != "extra" {
		t.Errorf("Expected trailing argument to be forwarded, got %v", seen)
	}
}

func TestPublishUnknownTopicReturnsNil(t *testing.T) {
	bus := New()
	if got := bus.Publish("missing", 1, 2); got != nil {
		t.Errorf("Expected nil for unknown topic, got %v", got)
	}
}

func TestDuplicateHandlersAreAllowed(t *testing.T) {
	bus := New()
	count := 0
	h := Func(func(args ...any) any { count++; return nil })

	bus.Subscribe("dup", h, h)
	bus.Publish("dup")

	if count != 2 {
		t.Errorf("Expected duplicate handler to run twice, ran %d times", count)
	}
}

func TestUnsubscribeRemovesFirstOccurrence(t *testing.T) {
	bus := New()
	var calls []string
	a := Func(func(args ...any) any { calls = append(calls, "a"); return nil })
	b := Func(func(args ...any) any { calls = append(calls, "b"); return nil })

	bus.Subscribe("t", a, b, a)

	if !bus.Unsubscribe("t", a) {
		t.Fatal("Expected Unsubscribe to report removal")
	}
	bus.Publish("t")

	if !reflect.DeepEqual(calls, []string{"b", "a"}) {
		t.Errorf("Expected [b a] after removing first a, got %v", calls)
	}
}

func TestUnsubscribeLastHandlerRemovesTopic(t *testing.T) {
	bus := New()
	h := Func(func(args ...any) any { return "x" })
	bus.Subscribe("only", h)

	if !bus.Unsubscribe("only", h) {
		t.Fatal("Expected handler to be removed")
	}
	if bus.Has("only") {
		t.Error("Expected topic to be removed with its last handler")
	}
	if got := bus.Publish("only"); got != nil {
		t.Errorf("Expected nil publish result after removal, got %v", got)
	}
	if len(bus.Topics()) != 0 {
		t.Errorf("Expected no topics, got %v", bus.Topics())
	}
}

func TestUnsubscribeUnknown(t *testing.T) {
	bus := New()
	h := Func(func(args ...any) any { return nil })
	other := Func(func(args ...any) any { return nil })

	if bus.Unsubscribe("nope", h) {
		t.Error("Expected false for unknown topic")
	}

	bus.Subscribe("t", h)
	if bus.Unsubscribe("t", other) {
		t.Error("Expected false for handler that was never subscribed")
	}
	if bus.Unsubscribe("t", nil) {
		t.Error("Expected false for nil handler")
	}
	if bus.Len("t") != 1 {
		t.Errorf("Expected topic to keep its handler, got %d", bus.Len("t"))
	}
}

type valueHandler struct{ tags []string }

func (valueHandler) Handle(args ...any) any { return nil }

func TestUnsubscribeNonComparableHandler(t *testing.T) {
	bus := New()
	h := valueHandler{tags: []string{"a"}}
	bus.Subscribe("t", h)

	if bus.Unsubscribe("t", h) {
		t.Error("Expected non-comparable handler values never to match")
	}
}

func TestUnsubscribeAll(t *testing.T) {
	bus := New()
	bus.Subscribe("t",
		Func(func(args ...any) any { return nil }),
		Func(func(args ...any) any { return nil }),
	)

	if !bus.UnsubscribeAll("t") {
		t.Error("Expected UnsubscribeAll to report existing topic")
	}
	if bus.UnsubscribeAll("t") {
		t.Error("Expected second UnsubscribeAll to report false")
	}
	if bus.Publish("t") != nil {
		t.Error("Expected removed topic to publish nil")
	}
}

func TestSubscribeIgnoresNil(t *testing.T) {
	bus := New()
	bus.Subscribe("t", nil)
	if bus.Has("t") {
		t.Error("Expected nil handler not to create a topic")
	}
}

func TestSubscribeDuringPublish(t *testing.T) {
	bus := New()
	late := 0
	bus.Subscribe("t", Func(func(args ...any) any {
		bus.Subscribe("t", Func(func(args ...any) any { late++; return nil }))
		return nil
	}))

	first := bus.Publish("t")
	if len(first) != 1 {
		t.Errorf("Expected handler added during publish to wait for the next publish, got %d results", len(first))
	}
	if late != 0 {
		t.Error("Handler added during publish should not run in the same publish")
	}
	bus.Publish("t")
	if late != 1 {
		t.Errorf("Expected late handler to run once on second publish, ran %d", late)
	}
}

func TestPublishDoesNotRecoverPanics(t *testing.T) {
	bus := New()
	bus.Subscribe("boom", Func(func(args ...any) any { panic("handler failed") }))

	defer func() {
		if r := recover(); r != "handler failed" {
			t.Errorf("Expected panic to propagate to publisher, got %v", r)
		}
	}()
	bus.Publish("boom")
	t.Error("Expected Publish to panic")
}

func TestTopicsSorted(t *testing.T) {
	bus := New()
	noop := Func(func(args ...any) any { return nil })
	bus.Subscribe("b", noop)
	bus.Subscribe("a", noop)
	bus.Subscribe("c", noop)

	if got := bus.Topics(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Expected sorted topics, got %v", got)
	}
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Subscribe("load", Func(func(args ...any) any { return nil }))
		}()
		go func() {
			defer wg.Done()
			bus.Publish("load")
		}()
	}
	wg.Wait()

	if bus.Len("load") != 50 {
		t.Errorf("Expected 50 handlers, got %d", bus.Len("load"))
	}
}
