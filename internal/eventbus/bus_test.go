package eventbus

import (
	"errors"
	"testing"

	"github.com/vthunder/tutor/internal/types"
)

func TestPublishDispatchesInRegistrationOrder(t *testing.T) {
	bus := New(10)
	var order []int

	bus.Subscribe("student_question", func(ev types.Event) error {
		order = append(order, 1)
		return nil
	})
	bus.Subscribe("student_question", func(ev types.Event) error {
		order = append(order, 2)
		return nil
	})

	bus.Publish(types.Event{Type: "student_question", Source: "test"})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected handlers in registration order [1 2], got %v", order)
	}
}

func TestUnsubscribeRemovesHandler(t *testing.T) {
	bus := New(10)
	calls := 0
	unsub := bus.Subscribe("tick", func(ev types.Event) error {
		calls++
		return nil
	})
	bus.Publish(types.Event{Type: "tick"})
	unsub()
	bus.Publish(types.Event{Type: "tick"})

	if calls != 1 {
		t.Errorf("expected 1 call before unsubscribe, got %d", calls)
	}
}

func TestHandlerErrorBecomesErrorEvent(t *testing.T) {
	bus := New(10)
	var reason, during string
	bus.Subscribe("error", func(ev types.Event) error {
		reason, _ = ev.Payload["reason"].(string)
		during, _ = ev.Payload["during"].(string)
		return nil
	})
	bus.Subscribe("student_question", func(ev types.Event) error {
		return errors.New("boom")
	})

	bus.Publish(types.Event{Type: "student_question"})

	if reason != "boom" || during != "student_question" {
		t.Errorf("expected error event {boom student_question}, got {%s %s}", reason, during)
	}
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := New(10)
	caught := false
	bus.Subscribe("error", func(ev types.Event) error {
		caught = true
		return nil
	})
	bus.Subscribe("student_question", func(ev types.Event) error {
		panic("kaboom")
	})

	bus.Publish(types.Event{Type: "student_question"})

	if !caught {
		t.Errorf("expected panic to surface as an error event")
	}
}

func TestFailingErrorHandlerDoesNotRecurse(t *testing.T) {
	bus := New(10)
	calls := 0
	bus.Subscribe("error", func(ev types.Event) error {
		calls++
		return errors.New("error handler itself failed")
	})

	bus.Publish(types.Event{Type: "student_question"})

	if calls != 0 {
		t.Errorf("no error handler registered for student_question, expected 0 calls, got %d", calls)
	}

	bus.Publish(types.Event{Type: "error", Payload: map[string]any{"reason": "x", "during": "y"}})
	if calls != 1 {
		t.Errorf("expected error handler to run once, got %d", calls)
	}
}

func TestLogIsBoundedAndKeysOnly(t *testing.T) {
	bus := New(3)
	for i := 0; i < 5; i++ {
		bus.Publish(types.Event{Type: "student_question", Payload: map[string]any{"text": "secret answer"}})
	}

	log := bus.Log()
	if len(log) != 3 {
		t.Fatalf("expected log capped at 3, got %d", len(log))
	}
	for _, rec := range log {
		for _, k := range rec.PayloadKeys {
			if k == "secret answer" {
				t.Errorf("log recorded a payload value, not just keys")
			}
		}
		if len(rec.PayloadKeys) != 1 || rec.PayloadKeys[0] != "text" {
			t.Errorf("expected payload_keys [text], got %v", rec.PayloadKeys)
		}
	}
}

func TestBusIDIsStable(t *testing.T) {
	bus := New(10)
	id1 := bus.ID()
	bus.Publish(types.Event{Type: "tick"})
	if bus.ID() != id1 {
		t.Errorf("bus id changed across publishes")
	}
}
