package expert

import (
	"testing"
	"time"

	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/knowledge"
	"github.com/vthunder/tutor/internal/sessionctx"
)

func newTestPipeline() (*Pipeline, *sessionctx.Context) {
	idx := knowledge.New()
	idx.LoadDocs([]string{
		"Диаграмма сравнения показывает относительные величины. Используйте её для сопоставления категорий.",
	}, []string{"charts"})
	p := New(config.Default().Expert, idx)
	ctx := sessionctx.New("design", 1, "инфографика", "async")
	return p, ctx
}

func TestResetOnEmptyHistoryIsNoOp(t *testing.T) {
	p, ctx := newTestPipeline()
	ans := p.Process(ctx, "сброс", time.Now())
	if ans.Status != "dialog_cleared" {
		t.Fatalf("expected dialog_cleared status, got %q", ans.Status)
	}
	if len(ctx.Expert().DialogHistory) != 0 {
		t.Errorf("expected dialog history to remain empty, got %d", len(ctx.Expert().DialogHistory))
	}
}

func TestIntentDefaultsToHowOnEmptyString(t *testing.T) {
	intents := detectIntents("")
	if len(intents) != 1 || intents[0] != "how" {
		t.Errorf("expected default [how], got %v", intents)
	}
}

func TestIntentDefaultsToExamplesForWhatIsStem(t *testing.T) {
	intents := detectIntents("Что такое диаграмма?")
	if len(intents) != 1 || intents[0] != "examples" {
		t.Errorf("expected [examples] for 'что такое' stem, got %v", intents)
	}
}

func TestFollowUpLeavesLongNonFollowUpQueryUnchanged(t *testing.T) {
	p, ctx := newTestPipeline()
	p.Process(ctx, "Как выбрать подходящий тип диаграммы для сравнения данных?", time.Now())

	second := "Расскажи подробно про круговые диаграммы и когда их лучше не использовать вовсе"
	t2 := &turn{question: second}
	p.retrieveStage(ctx, t2)

	if t2.query != second {
		t.Errorf("expected long non-follow-up query left unchanged, got %q", t2.query)
	}
}

func TestFollowUpAugmentsShortQuestion(t *testing.T) {
	p, ctx := newTestPipeline()
	p.Process(ctx, "Как выбрать подходящий тип диаграммы?", time.Now())

	t2 := &turn{question: "а подробнее?"}
	p.retrieveStage(ctx, t2)

	if t2.inReplyTo == "" {
		t.Errorf("expected in_reply_to to be set for a follow-up question")
	}
	if t2.query == t2.question {
		t.Errorf("expected augmented query to differ from the raw follow-up text")
	}
}

func TestRetrievalWithZeroDocumentsReturnsApology(t *testing.T) {
	idx := knowledge.New()
	p := New(config.Default().Expert, idx)
	ctx := sessionctx.New("design", 1, "инфографика", "async")

	ans := p.Process(ctx, "Как подготовить данные?", time.Now())
	if len(ans.Sources) != 0 {
		t.Errorf("expected empty sources on empty index, got %v", ans.Sources)
	}
	if ans.AnswerText != apologyText {
		t.Errorf("expected fixed apology text, got %q", ans.AnswerText)
	}
}

func TestEngagementAndConfidenceStayClipped(t *testing.T) {
	p, ctx := newTestPipeline()
	for i := 0; i < 20; i++ {
		p.Process(ctx, "получилось, спасибо, понятно, легко", time.Now())
	}
	expert := ctx.Expert()
	if expert.Confidence < 0 || expert.Confidence > 1 {
		t.Errorf("expected confidence clipped to [0,1], got %v", expert.Confidence)
	}
	if expert.Engagement < 0 || expert.Engagement > 1 {
		t.Errorf("expected engagement clipped to [0,1], got %v", expert.Engagement)
	}
}

func TestLatencyBufferRespectsConfiguredWindow(t *testing.T) {
	p, ctx := newTestPipeline()
	now := time.Now()
	for i := 0; i < 12; i++ {
		now = now.Add(5 * time.Second)
		p.Process(ctx, "вопрос номер "+string(rune('a'+i)), now)
	}
	if len(ctx.Expert().LatencyBuffer) > 8 {
		t.Errorf("expected latency buffer bounded at 8, got %d", len(ctx.Expert().LatencyBuffer))
	}
}
