// Package eventbus implements the synchronous publish/subscribe dispatcher
// that every component in the tutoring runtime talks through. A handler
// reacting to one event is free to publish another; dispatch is depth-first
// and happens on the publisher's own goroutine, so ordering within a single
// session is always deterministic.
package eventbus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vthunder/tutor/internal/types"
)

// Handler reacts to one event. A returned error never stops dispatch to the
// remaining handlers; it is caught and turned into an "error" event instead.
type Handler func(ev types.Event) error

// LogRecord is the bounded trail the bus keeps for export. Only the payload's
// keys are recorded, never the values, so student answers and other content
// never end up duplicated in a diagnostic log.
type LogRecord struct {
	TS         time.Time `json:"ts"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	PayloadKeys []string `json:"payload_keys"`
}

// Bus is the shared dispatcher for one tutoring session.
type Bus struct {
	mu       sync.Mutex
	id       string
	logCap   int
	handlers map[string][]subscription
	log      []LogRecord
	nextSub  int
}

type subscription struct {
	id      int
	handler Handler
}

// New creates a Bus with a stable session id and the given bounded log
// capacity (spec default: 200).
func New(logCap int) *Bus {
	if logCap <= 0 {
		logCap = 200
	}
	return &Bus{
		id:       uuid.NewString(),
		logCap:   logCap,
		handlers: make(map[string][]subscription),
	}
}

// ID returns the bus's session-stable identifier.
func (b *Bus) ID() string {
	return b.id
}

// Subscribe registers handler for eventType, appended after any handler
// already registered for that type. The returned func removes it.
func (b *Bus) Subscribe(eventType string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish dispatches ev to every handler registered for ev.Type, in
// registration order, synchronously and depth-first: a handler that itself
// publishes sees its nested event fully drained before Publish returns here.
// A handler panic or error is recovered and re-published as an "error" event
// rather than propagated, except when ev.Type is itself "error" — an error
// handler that fails is dropped silently, never re-published, so a broken
// error handler can't recurse forever.
func (b *Bus) Publish(ev types.Event) {
	if ev.TS.IsZero() {
		ev.TS = time.Now()
	}
	b.record(ev)

	b.mu.Lock()
	subs := make([]subscription, len(b.handlers[ev.Type]))
	copy(subs, b.handlers[ev.Type])
	b.mu.Unlock()

	for _, s := range subs {
		b.dispatchOne(ev, s.handler)
	}
}

func (b *Bus) dispatchOne(ev types.Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			if ev.Type == "error" {
				return
			}
			b.Publish(types.Event{
				Type:   "error",
				Source: "eventbus",
				Payload: map[string]any{
					"reason": fmt.Sprintf("%v", r),
					"during": ev.Type,
				},
			})
		}
	}()

	if err := handler(ev); err != nil {
		if ev.Type == "error" {
			return
		}
		b.Publish(types.Event{
			Type:   "error",
			Source: "eventbus",
			Payload: map[string]any{
				"reason": err.Error(),
				"during": ev.Type,
			},
		})
	}
}

func (b *Bus) record(ev types.Event) {
	keys := make([]string, 0, len(ev.Payload))
	for k := range ev.Payload {
		keys = append(keys, k)
	}
	rec := LogRecord{
		TS:          ev.TS,
		Type:        ev.Type,
		Source:      ev.Source,
		PayloadKeys: keys,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, rec)
	if over := len(b.log) - b.logCap; over > 0 {
		b.log = b.log[over:]
	}
}

// Log returns a copy of the bounded dispatch trail, oldest first.
func (b *Bus) Log() []LogRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LogRecord, len(b.log))
	copy(out, b.log)
	return out
}
