// Package transport bridges the bus to the outside world in the three
// modes Context.mode supports: async (file-backed inbox/outbox polling),
// live (a Discord bridge), and a websocket tap that mirrors the bus log to
// any connected observer. Grounded on the teacher's internal/memory
// inbox/outbox JSONL pattern and internal/effectors Discord delivery loop.
package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/logging"
	"github.com/vthunder/tutor/internal/types"
)

// InboxMessage is one pending student utterance read from the inbox file,
// directly modeled on the teacher's InboxMessage shape.
type InboxMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"` // pending, processed
}

// OutboxMessage is one queued reply, written for a batch-grading process to
// pick up later.
type OutboxMessage struct {
	ID        string    `json:"id"`
	InReplyTo string    `json:"in_reply_to,omitempty"`
	Kind      string    `json:"kind"` // expert_answer, tts_done
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AsyncTransport polls an inbox JSONL file for new student_question events
// and appends expert/tts output to an outbox JSONL file, for Context.mode
// "async" sessions where questions and answers are exchanged out of band.
type AsyncTransport struct {
	bus        *eventbus.Bus
	inboxPath  string
	outboxPath string

	mu         sync.Mutex
	seen       map[string]bool
	lastOffset int64
}

// NewAsyncTransport builds an AsyncTransport and subscribes its outbox
// writer to the bus.
func NewAsyncTransport(bus *eventbus.Bus, inboxPath, outboxPath string) *AsyncTransport {
	a := &AsyncTransport{
		bus:        bus,
		inboxPath:  inboxPath,
		outboxPath: outboxPath,
		seen:       make(map[string]bool),
	}
	bus.Subscribe("expert_answer", a.onExpertAnswer)
	bus.Subscribe("tts_done", a.onTTSDone)
	return a
}

// Poll reads any new lines appended to the inbox file since the last call
// and publishes one student_question per unseen message, returning how
// many were published.
func (a *AsyncTransport) Poll() (int, error) {
	file, err := os.Open(a.inboxPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer file.Close()

	a.mu.Lock()
	offset := a.lastOffset
	a.mu.Unlock()
	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return 0, err
		}
	}

	scanner := bufio.NewScanner(file)
	var pending []string

	a.mu.Lock()
	for scanner.Scan() {
		var msg InboxMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if a.seen[msg.ID] {
			continue
		}
		a.seen[msg.ID] = true
		pending = append(pending, msg.Text)
	}
	newOffset, _ := file.Seek(0, io.SeekCurrent)
	a.lastOffset = newOffset
	a.mu.Unlock()

	// Publish outside the lock: the outbox writer subscribed to
	// expert_answer takes a.mu on this same goroutine.
	for _, text := range pending {
		a.bus.Publish(types.Event{
			Type:   "student_question",
			Source: "transport",
			Payload: map[string]any{"text": text},
		})
	}

	return len(pending), scanner.Err()
}

func (a *AsyncTransport) onExpertAnswer(ev types.Event) error {
	answer, ok := ev.Payload["answer"].(types.Answer)
	if !ok {
		return nil
	}
	return a.appendOutbox(OutboxMessage{
		Kind:      "expert_answer",
		Content:   answer.AnswerEmpathic,
		InReplyTo: answer.Question,
		Timestamp: time.Now(),
	})
}

func (a *AsyncTransport) onTTSDone(ev types.Event) error {
	audio, _ := ev.Payload["audio"].(string)
	return a.appendOutbox(OutboxMessage{
		Kind:      "tts_done",
		Content:   audio,
		Timestamp: time.Now(),
	})
}

func (a *AsyncTransport) appendOutbox(msg OutboxMessage) error {
	msg.ID = fmt.Sprintf("out-%d", time.Now().UnixNano())

	a.mu.Lock()
	defer a.mu.Unlock()
	file, err := os.OpenFile(a.outboxPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logging.Info("transport", "failed to open outbox %s: %v", a.outboxPath, err)
		return err
	}
	defer file.Close()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
