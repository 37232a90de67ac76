package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/logging"
	"github.com/vthunder/tutor/internal/types"
)

// canonicalEventTypes is the event taxonomy the tap mirrors, since the bus
// only supports per-type subscriptions and has no wildcard listener.
var canonicalEventTypes = []string{
	"init", "student_question", "student_reflection", "expert_answer",
	"goals_ready", "tasks_ready", "organizer_update", "motivation_update",
	"ask_reflection", "reflection_answer", "stage_changed", "lesson_finished",
	"restart", "tts_done", "tts_failed", "error", "warning",
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHub mirrors every canonical bus event to connected observers as a JSON
// record of its ts, type, source and payload keys, for a UI or
// export consumer that wants a live view of the session rather than
// waiting for the end-of-session export.
type WSHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewWSHub builds a hub and subscribes it to every canonical event type on
// bus.
func NewWSHub(bus *eventbus.Bus) *WSHub {
	h := &WSHub{clients: make(map[*websocket.Conn]bool)}
	for _, t := range canonicalEventTypes {
		eventType := t
		bus.Subscribe(eventType, func(ev types.Event) error {
			h.broadcast(ev)
			return nil
		})
	}
	return h
}

// ServeHTTP upgrades the connection and registers it as a broadcast target
// until it disconnects.
func (h *WSHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Info("transport", "websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Drain incoming frames (none expected) until the client disconnects,
	// so the read deadline / close frame is observed and the socket cleans
	// up its goroutine.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *WSHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *WSHub) broadcast(ev types.Event) {
	keys := make([]string, 0, len(ev.Payload))
	for k := range ev.Payload {
		keys = append(keys, k)
	}
	record := struct {
		TS          string   `json:"ts"`
		Type        string   `json:"type"`
		Source      string   `json:"source"`
		PayloadKeys []string `json:"payload_keys"`
	}{
		TS:          ev.TS.Format("2006-01-02T15:04:05.000Z07:00"),
		Type:        ev.Type,
		Source:      ev.Source,
		PayloadKeys: keys,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
