// Package conductor implements the lesson's lifecycle state machine: a
// single `stage` field behind one accessor (the sessionctx Conductor slot),
// advanced by subscribing to the bus and publishing each stage's canonical
// entry event in turn. It replaces the original implementation's split
// between a `conductor.stage` attribute and a `_stage()` accessor method
// with that one accessor, and is grounded on the teacher's session-manager
// state transitions, generalized from session lifecycle to lesson-stage
// lifecycle.
package conductor

import (
	"time"

	"github.com/vthunder/tutor/internal/cartographer"
	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/expert"
	"github.com/vthunder/tutor/internal/logging"
	"github.com/vthunder/tutor/internal/motivation"
	"github.com/vthunder/tutor/internal/organizer"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

const (
	stageStart      = "start"
	stageGoals      = "goals"
	stageTasks      = "tasks"
	stageWork       = "work"
	stageReflection = "reflection"
	stageWrapup     = "wrapup"
	stageFinished   = "finished"
)

// Machine wires the Cartographer, Organizer, Expert Pipeline and Motivation
// Estimator into one lesson lifecycle, driven entirely by bus events.
type Machine struct {
	bus   *eventbus.Bus
	ctx   *sessionctx.Context
	cfg   config.Conductor
	cart  *cartographer.Cartographer
	org   *organizer.Organizer
	exp   *expert.Pipeline
	mot   *motivation.Estimator
	topic string
	docs  []string
}

// New builds a Machine and subscribes its handlers to bus. The Machine does
// not publish `init` itself; the caller does that once wiring is complete.
func New(bus *eventbus.Bus, ctx *sessionctx.Context, cfg config.Conductor, cart *cartographer.Cartographer, org *organizer.Organizer, exp *expert.Pipeline, mot *motivation.Estimator, topic string, docs []string) *Machine {
	m := &Machine{bus: bus, ctx: ctx, cfg: cfg, cart: cart, org: org, exp: exp, mot: mot, topic: topic, docs: docs}
	m.wire()
	return m
}

func (m *Machine) wire() {
	m.bus.Subscribe("init", m.onInit)
	m.bus.Subscribe("goals_ready", m.onGoalsReady)
	m.bus.Subscribe("tasks_ready", m.onTasksReady)
	m.bus.Subscribe("student_question", m.onStudentQuestion)
	m.bus.Subscribe("expert_answer", m.onExpertAnswer)
	m.bus.Subscribe("ask_reflection", m.onAskReflection)
	m.bus.Subscribe("student_reflection", m.onStudentReflection)
	m.bus.Subscribe("reflection_answer", m.onReflectionAnswer)
	m.bus.Subscribe("restart", m.onRestart)
}

func (m *Machine) setStage(stage string) {
	slot := m.ctx.Conductor()
	slot.Stage = stage
	slot.Timestamps["stage:"+stage] = time.Now()
}

func (m *Machine) publishStageChanged(reason string) {
	payload := map[string]any{"stage": m.ctx.Conductor().Stage}
	if reason != "" {
		payload["reason"] = reason
	}
	m.bus.Publish(types.Event{Type: "stage_changed", Source: "conductor", Payload: payload})
}

// onInit runs the goals stage's entry action: derive goals from the topic
// and loaded documents, then advance straight to `goals` and announce them.
func (m *Machine) onInit(ev types.Event) error {
	m.cart.Process(m.ctx, m.topic, m.docs)
	m.setStage(stageGoals)
	m.publishStageChanged("")
	m.bus.Publish(types.Event{
		Type:   "goals_ready",
		Source: "conductor",
		Payload: map[string]any{"goals": m.ctx.Cartographer().Goals},
	})
	return nil
}

// onGoalsReady runs the tasks stage's entry action: derive tasks from the
// goal map's subgoals.
func (m *Machine) onGoalsReady(ev types.Event) error {
	if m.ctx.Conductor().Stage != stageGoals {
		return nil
	}
	tasks := m.org.Process(m.ctx)
	m.setStage(stageTasks)
	m.publishStageChanged("")
	m.bus.Publish(types.Event{
		Type:   "tasks_ready",
		Source: "conductor",
		Payload: map[string]any{"has_tasks": len(tasks) > 0},
	})
	m.bus.Publish(types.Event{
		Type:   "organizer_update",
		Source: "conductor",
		Payload: map[string]any{"organizer": m.ctx.Organizer()},
	})
	return nil
}

// onTasksReady runs the work stage's entry action: there is nothing to
// derive, so it just advances the stage.
func (m *Machine) onTasksReady(ev types.Event) error {
	if m.ctx.Conductor().Stage != stageTasks {
		return nil
	}
	m.setStage(stageWork)
	m.publishStageChanged("")
	return nil
}

// onStudentQuestion runs the Expert Pipeline over a question asked while in
// the work stage and republishes the result as `expert_answer`. Questions
// asked outside `work` (e.g. a stray message while in `reflection`) are
// still answered — the pipeline has no stage awareness — but the work-turn
// bookkeeping below only fires from `work`.
func (m *Machine) onStudentQuestion(ev types.Event) error {
	text, _ := ev.Payload["text"].(string)
	answer := m.exp.Process(m.ctx, text, time.Now())
	m.bus.Publish(types.Event{
		Type:   "expert_answer",
		Source: "conductor",
		Payload: map[string]any{"question": text, "answer": answer},
	})
	return nil
}

// onExpertAnswer evaluates motivation for the turn and, while in `work`,
// advances the work-turn counter toward the reflection threshold.
func (m *Machine) onExpertAnswer(ev types.Event) error {
	question, _ := ev.Payload["question"].(string)
	lastStatus := lastTaskStatus(m.ctx.Organizer().Tasks)
	snap := m.mot.Evaluate(m.ctx, lastStatus, question, time.Now())
	m.bus.Publish(types.Event{
		Type:   "motivation_update",
		Source: "conductor",
		Payload: map[string]any{"last": snap},
	})

	if m.ctx.Conductor().Stage != stageWork {
		return nil
	}
	slot := m.ctx.Conductor()
	slot.WorkTurns++
	if slot.WorkTurns >= m.minWorkTurns() {
		m.bus.Publish(types.Event{
			Type:   "ask_reflection",
			Source: "conductor",
			Payload: map[string]any{"reason": "min_work_turns_reached", "turns": slot.WorkTurns},
		})
	}
	return nil
}

func (m *Machine) minWorkTurns() int {
	if m.cfg.MinWorkTurns <= 0 {
		return 2
	}
	return m.cfg.MinWorkTurns
}

// onAskReflection runs the reflection stage's entry action. It fires both
// when the work-turn threshold is reached and when something external
// explicitly publishes `ask_reflection` to force the transition early.
func (m *Machine) onAskReflection(ev types.Event) error {
	if m.ctx.Conductor().Stage != stageWork {
		return nil
	}
	m.enterReflection("")
	return nil
}

// enterReflection sets the reflection stage and announces it. It is the
// entry action shared by onAskReflection (guarded to only run from `work`)
// and reenterStage's restart{stage} case (which runs while already in
// `reflection`, so it calls this directly rather than through the
// work-only-guarded handler).
func (m *Machine) enterReflection(reason string) {
	m.setStage(stageReflection)
	m.publishStageChanged(reason)
}

// onStudentReflection normalizes a raw reflection utterance into the
// canonical `reflection_answer` event (spec §4.5).
func (m *Machine) onStudentReflection(ev types.Event) error {
	text, _ := ev.Payload["text"].(string)
	m.ctx.Reflection().Answers = append(m.ctx.Reflection().Answers, text)
	m.bus.Publish(types.Event{
		Type:   "reflection_answer",
		Source: "conductor",
		Payload: map[string]any{"text": text},
	})
	return nil
}

// onReflectionAnswer runs the wrapup stage's entry action and immediately
// computes the lesson summary, advancing to `finished` (wrapup has no
// further external trigger; it is an automatic pass-through).
func (m *Machine) onReflectionAnswer(ev types.Event) error {
	if m.ctx.Conductor().Stage != stageReflection {
		return nil
	}
	m.setStage(stageWrapup)
	m.publishStageChanged("")
	m.runWrapup()
	return nil
}

func (m *Machine) runWrapup() {
	slot := m.ctx.Conductor()
	summary := m.computeSummary()
	slot.Summary = summary
	m.setStage(stageFinished)
	m.publishStageChanged("")
	m.bus.Publish(types.Event{
		Type:   "lesson_finished",
		Source: "conductor",
		Payload: map[string]any{"summary": summary},
	})
}

func (m *Machine) computeSummary() map[string]any {
	expertSlot := m.ctx.Expert()
	motivator := m.ctx.Motivator()
	style := types.Style{}
	if motivator.Last != nil {
		style = motivator.Last.Style
	}
	return map[string]any{
		"topic":            m.ctx.Topic,
		"answers_count":    len(expertSlot.DialogHistory),
		"work_turns":       m.ctx.Conductor().WorkTurns,
		"tasks_available":  len(m.ctx.Organizer().Tasks) > 0,
		"motivation_level": motivator.Level,
		"style":            style,
	}
}

// onRestart implements the two restart modes (spec §4.5).
func (m *Machine) onRestart(ev types.Event) error {
	mode, _ := ev.Payload["mode"].(string)
	switch mode {
	case "full":
		logging.Info("conductor", "restart{full} from stage=%s", m.ctx.Conductor().Stage)
		m.ctx.ResetForFullRestart()
		m.setStage(stageStart)
		m.publishStageChanged("restart")
		m.bus.Publish(types.Event{Type: "init", Source: "conductor", Payload: map[string]any{}})
	case "stage":
		logging.Info("conductor", "restart{stage} re-entering stage=%s", m.ctx.Conductor().Stage)
		m.reenterStage()
	default:
		m.bus.Publish(types.Event{
			Type:   "warning",
			Source: "conductor",
			Payload: map[string]any{"msg": "restart published with unknown mode"},
		})
	}
	return nil
}

// reenterStage republishes the canonical entry event for the current
// stage, without touching history (spec §4.5).
func (m *Machine) reenterStage() {
	switch m.ctx.Conductor().Stage {
	case stageGoals:
		m.bus.Publish(types.Event{
			Type:   "goals_ready",
			Source: "conductor",
			Payload: map[string]any{"goals": m.ctx.Cartographer().Goals},
		})
	case stageTasks:
		m.bus.Publish(types.Event{
			Type:   "tasks_ready",
			Source: "conductor",
			Payload: map[string]any{"has_tasks": len(m.ctx.Organizer().Tasks) > 0},
		})
	case stageWork:
		m.publishStageChanged("restart")
	case stageReflection:
		m.bus.Publish(types.Event{
			Type:   "ask_reflection",
			Source: "conductor",
			Payload: map[string]any{"reason": "restart", "turns": m.ctx.Conductor().WorkTurns},
		})
		m.enterReflection("restart")
	case stageWrapup, stageFinished:
		m.runWrapup()
	default:
		m.publishStageChanged("restart")
	}
}

func lastTaskStatus(tasks []types.Task) types.TaskStatus {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].Status != types.TaskNotStarted {
			return tasks[i].Status
		}
	}
	return types.TaskNotStarted
}
