// Package motivation implements the situational-leadership Motivation
// Estimator: a four-level model with hysteresis-bounded transitions and a
// fixed-priority scenario detector chain. State persistence follows the
// teacher's task/idea store shape — a capped, mutex-free in-memory record
// threaded through the session context rather than the teacher's separate
// on-disk JSON file, since motivation state lives and dies with one
// tutoring session.
package motivation

import (
	"math/rand"
	"time"

	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

// Estimator evaluates the student's situational level on each turn.
type Estimator struct {
	cfg config.Motivation
}

// New builds an Estimator against cfg.
func New(cfg config.Motivation) *Estimator {
	return &Estimator{cfg: cfg}
}

// Evaluate runs one evaluation cycle against the Expert slot's current
// metrics and the student's latest utterance, updating the Motivator slot
// and returning the resulting snapshot (spec §4.4).
func (e *Estimator) Evaluate(ctx *sessionctx.Context, lastTaskStatus types.TaskStatus, questionText string, now time.Time) types.MotivationSnapshot {
	expert := ctx.Expert()
	motivator := ctx.Motivator()

	metrics := types.MotivationMetrics{
		Engagement:    expert.Engagement,
		Confidence:    expert.Confidence,
		LatencyAvgSec: expert.LatencyAvg(),
	}

	signals := e.computeSignals(metrics, lastTaskStatus)
	motivator.Level = e.transition(motivator.Level, metrics, signals)

	name, reaction, style, matched := detectScenario(questionText, metrics.Engagement, metrics.Confidence, metrics.LatencyAvgSec, e.cfg.LatSlowSec)

	var triggered []string
	var styleUpdate *types.Style
	if matched {
		triggered = append(triggered, name)
		motivator.DropCount++
		s := style
		styleUpdate = &s
	}

	var reflectionQuestion string
	if motivator.DropCount >= 3 || (signals.LowConf && signals.LowEng) {
		reflectionQuestion = e.pickReflectionQuestion(ctx)
	}

	lib := motivationLibrary[motivator.Level]
	content := types.MotivationContent{}
	if len(lib.Phrases) > 0 {
		content.Phrase = lib.Phrases[rand.Intn(len(lib.Phrases))]
	}
	if len(lib.Challenges) > 0 {
		content.Challenge = lib.Challenges[rand.Intn(len(lib.Challenges))]
	}

	snap := types.MotivationSnapshot{
		Level:              motivator.Level,
		LevelName:          levelName[motivator.Level],
		Style:              levelStyle[motivator.Level],
		Metrics:            metrics,
		Signals:            signals,
		Triggered:          triggered,
		Reaction:           reaction,
		StyleUpdate:        styleUpdate,
		DropCount:          motivator.DropCount,
		Motivation:         content,
		ReflectionQuestion: reflectionQuestion,
		TS:                 now,
	}

	motivator.LastSeenTS = &now
	motivator.AppendSnapshot(snap, e.cfg.HistoryCap)

	if reflectionQuestion != "" {
		ctx.Reflection().Asked = append(ctx.Reflection().Asked, reflectionQuestion)
	}

	return snap
}

func (e *Estimator) computeSignals(m types.MotivationMetrics, lastTaskStatus types.TaskStatus) types.MotivationSignals {
	h := e.cfg.Hysteresis
	return types.MotivationSignals{
		LowConf: m.Confidence < e.cfg.ConfLow-h,
		LowEng:  m.Engagement < e.cfg.EngLow-h,
		Slow:    m.LatencyAvgSec > e.cfg.LatSlowSec,
		Fast:    m.LatencyAvgSec < e.cfg.LatFastSec && m.LatencyAvgSec > 0,
		Success: lastTaskStatus == types.TaskCompleted || m.Confidence > e.cfg.ConfHigh+h,
	}
}

// transition applies the at-most-one-step-per-evaluation rule (spec §4.4).
func (e *Estimator) transition(level int, m types.MotivationMetrics, s types.MotivationSignals) int {
	switch {
	case s.LowConf || s.LowEng || s.Slow:
		if level > 1 {
			return level - 1
		}
		return 1
	case s.Success && (m.Engagement > e.cfg.EngHigh || s.Fast):
		if level < 4 {
			return level + 1
		}
		return 4
	}
	return level
}

// pickReflectionQuestion draws from the fixed pool, avoiding immediate
// repetition of the previous prompt (spec §4.4).
func (e *Estimator) pickReflectionQuestion(ctx *sessionctx.Context) string {
	asked := ctx.Reflection().Asked
	var previous string
	if len(asked) > 0 {
		previous = asked[len(asked)-1]
	}

	candidates := reflectionPool
	if previous != "" {
		filtered := make([]string, 0, len(reflectionPool))
		for _, q := range reflectionPool {
			if q != previous {
				filtered = append(filtered, q)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	return candidates[rand.Intn(len(candidates))]
}
