// Package sessionctx holds the per-session shared state every teaching
// component reads and mutates through its own namespaced slot. Slots are
// materialized lazily on first touch, mirroring the lazy-seed pattern the
// teacher's task and idea stores use for their own on-disk state.
package sessionctx

import (
	"sync"
	"time"

	"github.com/vthunder/tutor/internal/types"
)

// CartographerSlot holds the goal map derived from the topic/documents.
type CartographerSlot struct {
	Goals          types.Goals
	KnowledgeTypes types.KnowledgeTypes
	TextMap        string
	DocCount       int
}

// OrganizerSlot holds the tasks derived from the Cartographer's subgoals.
type OrganizerSlot struct {
	Tasks []types.Task
}

// ExpertSlot holds the dialog and the running engagement/confidence/latency
// state the Expert Pipeline maintains across turns.
type ExpertSlot struct {
	DialogHistory      []types.Answer
	LastAnswer         *types.Answer
	Engagement         float64
	Confidence         float64
	LastInteractionTime *time.Time
	LatencyBuffer      []float64
}

// MotivatorSlot holds the student's situational-leadership history.
type MotivatorSlot struct {
	Level      int
	History    []types.MotivationSnapshot
	Last       *types.MotivationSnapshot
	DropCount  int
	LastSeenTS *time.Time
}

// ConductorSlot holds the lesson's lifecycle state.
type ConductorSlot struct {
	Stage      string
	WorkTurns  int
	Summary    map[string]any
	Timestamps map[string]time.Time
}

// EventBusSlot is the slot shape for the bus's exportable state. Nothing in
// the runtime copies the bus's id or log into it; the exporters read
// eventbus.Bus.ID and eventbus.Bus.Log directly.
type EventBusSlot struct {
	ID  string
	Log []EventLogRecord
}

// EventLogRecord is the slot's copy of one bus log entry, kept independent
// of the eventbus package's concrete type so sessionctx has no import on it.
type EventLogRecord struct {
	TS          time.Time
	Type        string
	Source      string
	PayloadKeys []string
}

// ReflectionSlot holds the end-of-lesson question/answer exchange.
type ReflectionSlot struct {
	Asked   []string
	Answers []string
}

// TTSSlot holds the synthesis cache, keyed by input fingerprint.
type TTSSlot struct {
	Cache map[string]types.TTSRecord
	Dir   string
}

// RelationalTunerSlot holds the last empathy framing the Expert Pipeline
// attached, for UI consumers that want to mirror the tutor's tone.
type RelationalTunerSlot struct {
	Last *types.Empathy
}

// Context is the single-session container every component receives a
// reference to (spec §3). Each component mutates only the slot it owns;
// cross-reads are allowed and explicit.
type Context struct {
	mu sync.Mutex

	Discipline   string
	LessonNumber int
	Topic        string
	StudentLevel int
	Mode         string // "live" or "async"
	StudentID    string
	TaskID       string
	InputType    string
	Data         map[string]any

	LastUserQuestion string

	cartographer    *CartographerSlot
	organizer       *OrganizerSlot
	expert          *ExpertSlot
	motivator       *MotivatorSlot
	conductor       *ConductorSlot
	eventBus        *EventBusSlot
	reflection      *ReflectionSlot
	tts             *TTSSlot
	relationalTuner *RelationalTunerSlot
}

// New constructs an empty session Context. Slots are left unmaterialized
// until first accessed.
func New(discipline string, lessonNumber int, topic string, mode string) *Context {
	return &Context{
		Discipline:   discipline,
		LessonNumber: lessonNumber,
		Topic:        topic,
		StudentLevel: 1,
		Mode:         mode,
		Data:         make(map[string]any),
	}
}

// Cartographer returns the Cartographer slot, materializing defaults on
// first access.
func (c *Context) Cartographer() *CartographerSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cartographer == nil {
		c.cartographer = &CartographerSlot{}
	}
	return c.cartographer
}

// Organizer returns the Organizer slot, materializing defaults on first
// access.
func (c *Context) Organizer() *OrganizerSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.organizer == nil {
		c.organizer = &OrganizerSlot{}
	}
	return c.organizer
}

// Expert returns the Expert slot, materializing defaults on first access.
func (c *Context) Expert() *ExpertSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expert == nil {
		c.expert = &ExpertSlot{}
	}
	return c.expert
}

// Motivator returns the Motivator slot, materializing defaults (level 1,
// per the situational model's starting point) on first access.
func (c *Context) Motivator() *MotivatorSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.motivator == nil {
		c.motivator = &MotivatorSlot{Level: 1}
	}
	return c.motivator
}

// Conductor returns the Conductor slot, materializing the `start` stage on
// first access.
func (c *Context) Conductor() *ConductorSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conductor == nil {
		c.conductor = &ConductorSlot{
			Stage:      "start",
			Summary:    make(map[string]any),
			Timestamps: make(map[string]time.Time),
		}
	}
	return c.conductor
}

// EventBus returns the EventBus slot, materializing defaults on first
// access.
func (c *Context) EventBus() *EventBusSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eventBus == nil {
		c.eventBus = &EventBusSlot{}
	}
	return c.eventBus
}

// Reflection returns the Reflection slot, materializing defaults on first
// access.
func (c *Context) Reflection() *ReflectionSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reflection == nil {
		c.reflection = &ReflectionSlot{}
	}
	return c.reflection
}

// TTS returns the TTS slot, materializing defaults on first access.
func (c *Context) TTS() *TTSSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tts == nil {
		c.tts = &TTSSlot{Cache: make(map[string]types.TTSRecord)}
	}
	return c.tts
}

// RelationalTuner returns the RelationalTuner slot, materializing defaults
// on first access.
func (c *Context) RelationalTuner() *RelationalTunerSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.relationalTuner == nil {
		c.relationalTuner = &RelationalTunerSlot{}
	}
	return c.relationalTuner
}

// AppendLatency pushes a latency sample into the Expert slot's ring buffer,
// truncating to window (spec §3 invariant: length <= configured window).
func (e *ExpertSlot) AppendLatency(sample float64, window int) {
	e.LatencyBuffer = append(e.LatencyBuffer, sample)
	if over := len(e.LatencyBuffer) - window; over > 0 {
		e.LatencyBuffer = e.LatencyBuffer[over:]
	}
}

// LatencyAvg returns the mean of the current latency buffer, or 0 if empty.
func (e *ExpertSlot) LatencyAvg() float64 {
	if len(e.LatencyBuffer) == 0 {
		return 0
	}
	var sum float64
	for _, v := range e.LatencyBuffer {
		sum += v
	}
	return sum / float64(len(e.LatencyBuffer))
}

// AppendAnswer appends ans to dialog_history and keeps last_answer in sync
// (spec §3 invariant).
func (e *ExpertSlot) AppendAnswer(ans types.Answer) {
	e.DialogHistory = append(e.DialogHistory, ans)
	last := e.DialogHistory[len(e.DialogHistory)-1]
	e.LastAnswer = &last
}

// ClipEngagement clips Engagement to [0,1].
func (e *ExpertSlot) ClipEngagement() {
	e.Engagement = clip01(e.Engagement)
}

// ClipConfidence clips Confidence to [0,1].
func (e *ExpertSlot) ClipConfidence() {
	e.Confidence = clip01(e.Confidence)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AppendSnapshot records snap into the Motivator's history, capped at
// historyCap entries (spec §3 invariant: length <= 20), and updates Last.
func (m *MotivatorSlot) AppendSnapshot(snap types.MotivationSnapshot, historyCap int) {
	m.History = append(m.History, snap)
	if over := len(m.History) - historyCap; over > 0 {
		m.History = m.History[over:]
	}
	last := m.History[len(m.History)-1]
	m.Last = &last
}

// ResetForFullRestart implements the full-restart lifecycle transition
// (spec §3): clears dialog history, conductor progress and the bus log,
// resets stage to `start`, while preserving Motivator history and the
// Cartographer/Organizer derivations.
func (c *Context) ResetForFullRestart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expert = &ExpertSlot{}
	c.conductor = &ConductorSlot{
		Stage:      "start",
		Summary:    make(map[string]any),
		Timestamps: make(map[string]time.Time),
	}
	c.eventBus = &EventBusSlot{}
}
