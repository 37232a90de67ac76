package conductor

import (
	"testing"

	"github.com/vthunder/tutor/internal/cartographer"
	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/expert"
	"github.com/vthunder/tutor/internal/knowledge"
	"github.com/vthunder/tutor/internal/motivation"
	"github.com/vthunder/tutor/internal/organizer"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

func newTestMachine(t *testing.T) (*Machine, *eventbus.Bus, *sessionctx.Context) {
	t.Helper()
	cfg := config.Default()
	idx := knowledge.New()
	idx.LoadDocs([]string{"Дробь это число, состоящее из числителя и знаменателя."}, []string{"doc1"})

	bus := eventbus.New(cfg.EventBus.LogCap)
	ctx := sessionctx.New("math", 1, "дроби", "async")
	m := New(bus, ctx, cfg.Conductor,
		cartographer.New(), organizer.New(),
		expert.New(cfg.Expert, idx), motivation.New(cfg.Motivation),
		"дроби", []string{"Дробь это число, состоящее из числителя и знаменателя."})
	return m, bus, ctx
}

func TestSmoothLessonReachesFinished(t *testing.T) {
	_, bus, ctx := newTestMachine(t)

	bus.Publish(types.Event{Type: "init", Source: "test"})
	if ctx.Conductor().Stage != "work" {
		t.Fatalf("expected stage=work after init/goals_ready/tasks_ready chain, got %s", ctx.Conductor().Stage)
	}

	bus.Publish(types.Event{Type: "student_question", Source: "test", Payload: map[string]any{"text": "С чего начать подготовку данных для инфографики?"}})
	bus.Publish(types.Event{Type: "student_question", Source: "test", Payload: map[string]any{"text": "Как выбрать подходящий тип диаграммы для сравнения?"}})

	if ctx.Conductor().Stage != "reflection" {
		t.Fatalf("expected stage=reflection after min_work_turns reached, got %s", ctx.Conductor().Stage)
	}

	bus.Publish(types.Event{Type: "student_reflection", Source: "test", Payload: map[string]any{"text": "Немного волновался, но стало понятнее."}})

	if ctx.Conductor().Stage != "finished" {
		t.Fatalf("expected stage=finished, got %s", ctx.Conductor().Stage)
	}
	if len(ctx.Expert().DialogHistory) != 2 {
		t.Errorf("expected dialog_history length 2, got %d", len(ctx.Expert().DialogHistory))
	}
	summary := ctx.Conductor().Summary
	if summary["answers_count"] != 2 {
		t.Errorf("expected summary.answers_count=2, got %v", summary["answers_count"])
	}
}

func TestTasksReadyHasTasksTrue(t *testing.T) {
	_, bus, ctx := newTestMachine(t)
	bus.Publish(types.Event{Type: "init", Source: "test"})
	if len(ctx.Organizer().Tasks) == 0 {
		t.Fatalf("expected organizer to have produced tasks")
	}
}

func TestRestartStagePreservesHistoryAndWorkTurns(t *testing.T) {
	_, bus, ctx := newTestMachine(t)
	bus.Publish(types.Event{Type: "init", Source: "test"})
	bus.Publish(types.Event{Type: "student_question", Source: "test", Payload: map[string]any{"text": "Вопрос один"}})

	turnsBefore := ctx.Conductor().WorkTurns
	histBefore := len(ctx.Expert().DialogHistory)

	bus.Publish(types.Event{Type: "restart", Source: "test", Payload: map[string]any{"mode": "stage"}})

	if ctx.Conductor().Stage != "work" {
		t.Errorf("expected stage to remain work after restart{stage}, got %s", ctx.Conductor().Stage)
	}
	if ctx.Conductor().WorkTurns != turnsBefore {
		t.Errorf("expected work_turns unchanged, got %d want %d", ctx.Conductor().WorkTurns, turnsBefore)
	}
	if len(ctx.Expert().DialogHistory) != histBefore {
		t.Errorf("expected dialog_history preserved, got %d want %d", len(ctx.Expert().DialogHistory), histBefore)
	}
}

func TestRestartFullClearsHistoryButKeepsMotivator(t *testing.T) {
	_, bus, ctx := newTestMachine(t)
	bus.Publish(types.Event{Type: "init", Source: "test"})
	bus.Publish(types.Event{Type: "student_question", Source: "test", Payload: map[string]any{"text": "Вопрос один"}})

	levelBefore := ctx.Motivator().Level
	histLenBefore := len(ctx.Motivator().History)

	bus.Publish(types.Event{Type: "restart", Source: "test", Payload: map[string]any{"mode": "full"}})

	if len(ctx.Expert().DialogHistory) != 0 {
		t.Errorf("expected dialog_history cleared, got %d entries", len(ctx.Expert().DialogHistory))
	}
	if ctx.Conductor().Stage != "work" {
		t.Errorf("expected a fresh init to drive stage back to work, got %s", ctx.Conductor().Stage)
	}
	if ctx.Motivator().Level != levelBefore {
		t.Errorf("expected motivator level preserved across full restart, got %d want %d", ctx.Motivator().Level, levelBefore)
	}
	if len(ctx.Motivator().History) != histLenBefore {
		t.Errorf("expected motivator history preserved across full restart, got %d want %d", len(ctx.Motivator().History), histLenBefore)
	}
}

func TestRestartStageFromReflectionRepublishesStageChanged(t *testing.T) {
	_, bus, ctx := newTestMachine(t)
	bus.Publish(types.Event{Type: "init", Source: "test"})
	bus.Publish(types.Event{Type: "ask_reflection", Source: "test", Payload: map[string]any{"reason": "explicit"}})
	if ctx.Conductor().Stage != "reflection" {
		t.Fatalf("expected stage=reflection before restart, got %s", ctx.Conductor().Stage)
	}

	var stageChanged []types.Event
	bus.Subscribe("stage_changed", func(ev types.Event) error {
		stageChanged = append(stageChanged, ev)
		return nil
	})

	bus.Publish(types.Event{Type: "restart", Source: "test", Payload: map[string]any{"mode": "stage"}})

	if ctx.Conductor().Stage != "reflection" {
		t.Errorf("expected stage to remain reflection after restart{stage}, got %s", ctx.Conductor().Stage)
	}
	if len(stageChanged) != 1 {
		t.Fatalf("expected restart{stage} from reflection to republish exactly one stage_changed, got %d", len(stageChanged))
	}
	if reason, _ := stageChanged[0].Payload["reason"].(string); reason != "restart" {
		t.Errorf("expected stage_changed reason=restart, got %q", reason)
	}
}

func TestExplicitAskReflectionForcesTransitionEarly(t *testing.T) {
	_, bus, ctx := newTestMachine(t)
	bus.Publish(types.Event{Type: "init", Source: "test"})

	bus.Publish(types.Event{Type: "ask_reflection", Source: "test", Payload: map[string]any{"reason": "explicit"}})
	if ctx.Conductor().Stage != "reflection" {
		t.Fatalf("expected explicit ask_reflection to transition out of work early, got %s", ctx.Conductor().Stage)
	}
}
