// Package expert implements the Expert Pipeline: the component that turns
// one student utterance into a full Answer envelope. It replaces the
// original implementation's layering-by-runtime-patching (a base response
// method redefined at import time to add empathy, then redefined again for
// latency bookkeeping) with a fixed pipeline of named stages built once at
// construction time: Reset, Measure, Retrieve, Compose, Frame, Instrument.
package expert

import (
	"strings"
	"time"

	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/knowledge"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

var resetPhrases = map[string]bool{
	"сброс":         true,
	"сбрось диалог": true,
	"очисти диалог": true,
	"начать заново": true,
	"новый диалог":  true,
}

var (
	negativeKeywords = []string{"не понимаю", "сложно", "устал", "плохо"}
	positiveKeywords = []string{"получилось", "спасибо", "понятно", "легко"}
)

// Pipeline is the Expert Pipeline, closing over its tunables and the
// knowledge collaborator it retrieves through.
type Pipeline struct {
	cfg   config.Expert
	index *knowledge.Index
}

// New builds a Pipeline against cfg and index. Both are supplied once at
// construction, the Config-injection pattern replacing the original's
// module-level mutable globals.
func New(cfg config.Expert, index *knowledge.Index) *Pipeline {
	return &Pipeline{cfg: cfg, index: index}
}

// turn carries the per-call working state threaded through the pipeline's
// stages.
type turn struct {
	question    string
	now         time.Time
	latency     float64
	hasLatency  bool
	intents     []string
	detail      string
	query       string
	inReplyTo   string
	baseText    string
	sources     []string
	style       types.Style
	answer      types.Answer
}

// Process runs one student utterance through the pipeline and returns the
// resulting Answer envelope, mutating the Expert slot along the way (spec
// §4.3).
func (p *Pipeline) Process(ctx *sessionctx.Context, question string, now time.Time) types.Answer {
	if isResetPhrase(question) {
		expert := ctx.Expert()
		expert.DialogHistory = nil
		expert.LastAnswer = nil
		return types.Answer{Question: question, Status: "dialog_cleared"}
	}

	t := &turn{question: question, now: now}
	p.measure(ctx, t)
	p.retrieveStage(ctx, t)
	p.compose(ctx, t)
	p.frame(ctx, t)
	p.instrument(ctx, t)
	return t.answer
}

func isResetPhrase(question string) bool {
	return resetPhrases[strings.ToLower(strings.TrimSpace(question))]
}

// measure implements steps 2-3: latency measurement and the semantic
// metric update, without yet advancing last_interaction_time (that happens
// in instrument, step 12, so nested calls see a consistent prior value).
func (p *Pipeline) measure(ctx *sessionctx.Context, t *turn) {
	expert := ctx.Expert()

	if expert.LastInteractionTime != nil {
		lat := t.now.Sub(*expert.LastInteractionTime).Seconds()
		if lat < 0 {
			lat = 0
		}
		t.latency = lat
		t.hasLatency = true
	}

	if t.hasLatency {
		switch {
		case t.latency <= p.cfg.FastLatencySec:
			expert.Engagement += p.cfg.EngagementStep
		case t.latency >= p.cfg.SlowLatencySec:
			expert.Engagement -= p.cfg.EngagementStep
		}
	}

	q := strings.ToLower(t.question)
	if containsAny(q, negativeKeywords) {
		expert.Confidence -= p.cfg.ConfidenceStepDown
	}
	if containsAny(q, positiveKeywords) {
		expert.Confidence += p.cfg.ConfidenceStepUp
	}
	expert.ClipEngagement()
	expert.ClipConfidence()
}

// retrieveStage implements steps 4-7: intent detection, detail detection,
// follow-up augmentation and retrieval itself.
func (p *Pipeline) retrieveStage(ctx *sessionctx.Context, t *turn) {
	expert := ctx.Expert()

	t.intents = detectIntents(t.question)
	t.detail = detectDetailLevel(t.question)

	t.query = t.question
	if len(expert.DialogHistory) > 0 && isFollowUp(t.question) {
		prev := expert.DialogHistory[len(expert.DialogHistory)-1]
		t.query = augmentQuery(prev.Question, prev.AnswerText, t.question)
		t.inReplyTo = prev.Question
	}

	t.baseText, t.sources = p.retrieve(t.query)
}

// compose implements steps 8-9: style selection and composition of the
// answer/explanation/next_steps fields.
func (p *Pipeline) compose(ctx *sessionctx.Context, t *turn) {
	expert := ctx.Expert()
	t.style = selectStyle(expert.Confidence)

	answerText := t.baseText
	if t.detail == "short" {
		answerText = makeBrief(t.baseText, 300)
	}

	tasks := ctx.Organizer().Tasks
	t.answer = types.Answer{
		Question:    t.question,
		InReplyTo:   t.inReplyTo,
		Intents:     t.intents,
		Detail:      t.detail,
		AnswerText:  answerText,
		Explanation: makeExplanation(t.baseText, t.intents, t.detail),
		Sources:     t.sources,
		NextSteps:   buildNextSteps(t.intents, tasks),
		Pace:        t.style.Pace,
		Tone:        t.style.Tone,
		Engagement:  expert.Engagement,
		Confidence:  expert.Confidence,
	}
}

// frame implements step 10: empathy framing. Failures here must not break
// response emission, so any panic is recovered into the documented
// fallback (answer_empathic = answer, empathy = {start, warm}).
func (p *Pipeline) frame(ctx *sessionctx.Context, t *turn) {
	defer func() {
		if recover() != nil {
			t.answer.Empathy = types.Empathy{Situation: situationStart, Tone: "warm"}
			t.answer.AnswerEmpathic = t.answer.AnswerText
		}
	}()

	situation, ok := detectSituationFromTasks(ctx.Organizer().Tasks)
	if !ok && detectFrustrationFromHistory(ctx.Expert().DialogHistory) {
		situation, ok = situationFrustration, true
	}
	if !ok {
		situation = classifySituation(t.question)
	}

	pair := empathyLibrary[situation+"|"+t.style.Tone]
	intro, outro := framingPosition(situation)

	empathy := types.Empathy{Situation: situation, Tone: t.style.Tone}
	var b strings.Builder
	if intro && pair.Intro != "" {
		empathy.Intro = pair.Intro
		b.WriteString(pair.Intro)
		b.WriteString("\n\n")
	}
	b.WriteString(t.answer.AnswerText)
	if outro && pair.Outro != "" {
		empathy.Outro = pair.Outro
		b.WriteString("\n\n")
		b.WriteString(pair.Outro)
	}

	t.answer.Empathy = empathy
	t.answer.AnswerEmpathic = b.String()

	ctx.RelationalTuner().Last = &empathy
}

// instrument implements steps 11-12: latency bookkeeping and finalization.
func (p *Pipeline) instrument(ctx *sessionctx.Context, t *turn) {
	expert := ctx.Expert()

	if t.hasLatency {
		expert.AppendLatency(t.latency, p.cfg.LatencyWindow)
		avg := expert.LatencyAvg()
		t.answer.LatencySec = &t.latency
		t.answer.LatencyAvgSec = &avg
		if avg > p.cfg.SlowLatencySec {
			t.answer.Pace = "упрощённый"
		} else if avg < p.cfg.FastLatencySec {
			t.answer.Pace = "ускоренный"
		}
	}

	now := t.now
	expert.LastInteractionTime = &now
	expert.AppendAnswer(t.answer)
}
