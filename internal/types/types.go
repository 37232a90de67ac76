// Package types holds the data shapes shared across the tutoring runtime's
// components so that event bus, expert pipeline, motivation estimator and
// conductor can all refer to the same records without import cycles.
package types

import "time"

// Event is the envelope carried by the event bus (spec §4.1, §6).
type Event struct {
	Type    string
	Source  string
	Payload map[string]any
	TS      time.Time
}

// TaskType classifies an Organizer task by the verb family of its subgoal.
type TaskType string

const (
	TaskText       TaskType = "text"
	TaskAction     TaskType = "action"
	TaskReflection TaskType = "reflection"
)

// TaskStatus is the lifecycle of a single Task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskNeedsReview TaskStatus = "needs_review"
)

// Task is one unit of work derived from a Cartographer subgoal (spec §3).
type Task struct {
	ID                 string     `json:"id"`
	Goal               string     `json:"goal"`
	Type               TaskType   `json:"type"`
	Instruction        string     `json:"instruction"`
	Hints              []string   `json:"hints"`
	EvaluationCriteria []string   `json:"evaluation_criteria"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	Status             TaskStatus `json:"status"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	DurationSec        *float64   `json:"duration_sec,omitempty"`
	IsCompleted        bool       `json:"is_completed"`
	StudentAnswer      *string    `json:"student_answer,omitempty"`
}

// Goals is the Cartographer's pedagogical goal record.
type Goals struct {
	MainGoal string   `json:"main_goal"`
	Subgoals []string `json:"subgoals"`
	Level    string   `json:"level"`
}

// KnowledgeTypes buckets extracted sentences by trigger family.
type KnowledgeTypes struct {
	Facts      []string `json:"facts"`
	Procedures []string `json:"procedures"`
	Meta       []string `json:"meta"`
}

// Empathy describes the framing attached to an Answer (spec §4.3 step 10).
type Empathy struct {
	Situation string `json:"situation"`
	Tone      string `json:"tone"`
	Intro     string `json:"intro,omitempty"`
	Outro     string `json:"outro,omitempty"`
}

// Style is the pace/tone recommendation derived from confidence or
// motivation level (spec §4.3 step 8, §4.4).
type Style struct {
	Style string `json:"style,omitempty"`
	Tone  string `json:"tone"`
	Pace  string `json:"pace"`
}

// Answer is the response envelope the Expert Pipeline produces for one turn
// (spec §3).
type Answer struct {
	Question        string   `json:"question"`
	InReplyTo        string   `json:"in_reply_to,omitempty"`
	Intents          []string `json:"intents"`
	Detail           string   `json:"detail"`
	AnswerText       string   `json:"answer"`
	Explanation      string   `json:"explanation"`
	Sources          []string `json:"sources"`
	NextSteps        []string `json:"next_steps"`
	Pace             string   `json:"pace"`
	Tone             string   `json:"tone"`
	Engagement       float64  `json:"engagement"`
	Confidence       float64  `json:"confidence"`
	Empathy          Empathy  `json:"empathy"`
	AnswerEmpathic   string   `json:"answer_empathic"`
	LatencySec       *float64 `json:"latency_sec,omitempty"`
	LatencyAvgSec    *float64 `json:"latency_avg_sec,omitempty"`
	Status           string   `json:"status,omitempty"` // "dialog_cleared" on reset
}

// MotivationSignals are the boolean triggers observed on one evaluation
// (spec §4.4).
type MotivationSignals struct {
	LowConf bool `json:"low_conf"`
	LowEng  bool `json:"low_eng"`
	Slow    bool `json:"slow"`
	Fast    bool `json:"fast"`
	Success bool `json:"success"`
}

// MotivationMetrics is the input triple the estimator evaluates.
type MotivationMetrics struct {
	Engagement    float64 `json:"engagement"`
	Confidence    float64 `json:"confidence"`
	LatencyAvgSec float64 `json:"latency_avg_sec"`
}

// MotivationContent is the phrase/challenge pair attached to a snapshot.
type MotivationContent struct {
	Phrase    string `json:"phrase"`
	Challenge string `json:"challenge"`
}

// TTSRecord is one cached synthesis result, keyed by input fingerprint.
type TTSRecord struct {
	AudioPath string    `json:"audio_path"`
	Chars     int       `json:"chars"`
	CreatedAt time.Time `json:"created_at"`
}

// MotivationSnapshot is one evaluation result (spec §3).
type MotivationSnapshot struct {
	Level             int               `json:"level"`
	LevelName         string            `json:"level_name"`
	Style             Style             `json:"style"`
	Metrics           MotivationMetrics `json:"metrics"`
	Signals           MotivationSignals `json:"signals"`
	Triggered         []string          `json:"triggered"`
	Reaction          string            `json:"reaction,omitempty"`
	StyleUpdate       *Style            `json:"style_update,omitempty"`
	DropCount         int               `json:"drop_count"`
	Motivation        MotivationContent `json:"motivation"`
	ReflectionQuestion string           `json:"reflection_question,omitempty"`
	TS                time.Time         `json:"ts"`
}
