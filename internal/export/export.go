// Package export writes a session's bus log and module snapshot to disk in
// the three supported formats: JSON, CSV, and a SQLite audit trail (spec
// §6). The SQLite backend follows the teacher's internal/graph.DB dual
// driver strategy: the cgo-backed github.com/mattn/go-sqlite3 when cgo is
// available, falling back to the pure-Go modernc.org/sqlite otherwise.
package export

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/sessionctx"
)

// ModulesSnapshot is the compact per-module state included in the JSON
// export's meta block (spec §6).
type ModulesSnapshot struct {
	ExpertHistoryLen  int    `json:"expert_history_len"`
	LastQuestion      string `json:"last_question,omitempty"`
	LastIntents       []string `json:"last_intents,omitempty"`
	LastDetail        string `json:"last_detail,omitempty"`
	MotivatorLevel    int    `json:"motivator_level"`
	MotivatorDropCount int   `json:"motivator_drop_count"`
	OrganizerTasksCount int  `json:"organizer_tasks_count"`
	ConductorStage    string `json:"conductor_stage"`
	ConductorWorkTurns int   `json:"conductor_work_turns"`
	ConductorSummary  map[string]any `json:"conductor_summary,omitempty"`
}

// Meta is the JSON export's header block (spec §6).
type Meta struct {
	SessionID  string          `json:"session_id"`
	SavedAtTS  int64           `json:"saved_at_ts"`
	SavedAt    string          `json:"saved_at"`
	Discipline string          `json:"discipline"`
	Topic      string          `json:"topic"`
	Lesson     int             `json:"lesson"`
	Modules    ModulesSnapshot `json:"modules"`
}

// Document is the full JSON export payload.
type Document struct {
	Meta        Meta                 `json:"meta"`
	EventbusLog []eventbus.LogRecord `json:"eventbus_log"`
}

func buildMeta(bus *eventbus.Bus, ctx *sessionctx.Context, now time.Time) Meta {
	expert := ctx.Expert()
	motivator := ctx.Motivator()
	conductor := ctx.Conductor()

	var lastQuestion, lastDetail string
	var lastIntents []string
	if expert.LastAnswer != nil {
		lastQuestion = expert.LastAnswer.Question
		lastIntents = expert.LastAnswer.Intents
		lastDetail = expert.LastAnswer.Detail
	}

	return Meta{
		SessionID:  bus.ID(),
		SavedAtTS:  now.Unix(),
		SavedAt:    now.Format(time.RFC3339),
		Discipline: ctx.Discipline,
		Topic:      ctx.Topic,
		Lesson:     ctx.LessonNumber,
		Modules: ModulesSnapshot{
			ExpertHistoryLen:    len(expert.DialogHistory),
			LastQuestion:        lastQuestion,
			LastIntents:         lastIntents,
			LastDetail:          lastDetail,
			MotivatorLevel:      motivator.Level,
			MotivatorDropCount:  motivator.DropCount,
			OrganizerTasksCount: len(ctx.Organizer().Tasks),
			ConductorStage:      conductor.Stage,
			ConductorWorkTurns:  conductor.WorkTurns,
			ConductorSummary:    conductor.Summary,
		},
	}
}

// JSON writes {meta, eventbus_log} to path (spec §6).
func JSON(bus *eventbus.Bus, ctx *sessionctx.Context, path string) error {
	doc := Document{
		Meta:        buildMeta(bus, ctx, time.Now()),
		EventbusLog: bus.Log(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export document: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// CSV writes the bus log as `ts, ts_human, type, source, payload_keys`
// (spec §6).
func CSV(bus *eventbus.Bus, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ts", "ts_human", "type", "source", "payload_keys"}); err != nil {
		return err
	}
	for _, rec := range bus.Log() {
		row := []string{
			strconv.FormatInt(rec.TS.UnixMilli(), 10),
			rec.TS.Format(time.RFC3339),
			rec.Type,
			rec.Source,
			joinKeys(rec.PayloadKeys),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func joinKeys(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ";"
		}
		out += k
	}
	return out
}

// SQLite writes the bus log to a single-table SQLite database at path, for
// an auditable third export format alongside JSON/CSV.
func SQLite(bus *eventbus.Bus, ctx *sessionctx.Context, path string) error {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return fmt.Errorf("open sqlite export: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id TEXT PRIMARY KEY,
			discipline TEXT,
			topic TEXT,
			lesson INTEGER,
			saved_at TEXT
		)
	`); err != nil {
		return fmt.Errorf("create session table: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS event_log (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			ts TEXT,
			type TEXT,
			source TEXT,
			payload_keys TEXT
		)
	`); err != nil {
		return fmt.Errorf("create event_log table: %w", err)
	}

	now := time.Now()
	if _, err := db.Exec(
		`INSERT OR REPLACE INTO session (id, discipline, topic, lesson, saved_at) VALUES (?, ?, ?, ?, ?)`,
		bus.ID(), ctx.Discipline, ctx.Topic, ctx.LessonNumber, now.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert session row: %w", err)
	}

	for _, rec := range bus.Log() {
		if _, err := db.Exec(
			`INSERT INTO event_log (id, session_id, ts, type, source, payload_keys) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), bus.ID(), rec.TS.Format(time.RFC3339), rec.Type, rec.Source, joinKeys(rec.PayloadKeys),
		); err != nil {
			return fmt.Errorf("insert event_log row: %w", err)
		}
	}
	return nil
}
