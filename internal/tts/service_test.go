package tts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

type fakeSynth struct {
	calls   int
	failN   int
	result  Result
	failErr error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voice, emotion string, rate float64) (Result, error) {
	f.calls++
	if f.calls <= f.failN {
		return Result{}, f.failErr
	}
	return f.result, nil
}

func newTestService(t *testing.T, synth Synthesizer) (*Service, *eventbus.Bus, *sessionctx.Context) {
	t.Helper()
	cfg := config.Default()
	cfg.TTS.SynthTimeoutSec = 1
	bus := eventbus.New(cfg.EventBus.LogCap)
	ctx := sessionctx.New("math", 1, "дроби", "async")
	ctx.TTS().Dir = t.TempDir()

	svc := New(bus, ctx, cfg.TTS, synth)
	svc.sleep = func(time.Duration) {}
	return svc, bus, ctx
}

func publishAnswer(bus *eventbus.Bus, answer types.Answer) []types.Event {
	var captured []types.Event
	bus.Subscribe("tts_done", func(ev types.Event) error {
		captured = append(captured, ev)
		return nil
	})
	bus.Subscribe("tts_failed", func(ev types.Event) error {
		captured = append(captured, ev)
		return nil
	})
	bus.Publish(types.Event{
		Type:   "expert_answer",
		Source: "test",
		Payload: map[string]any{"question": "q", "answer": answer},
	})
	return captured
}

func TestSuccessfulSynthesisPublishesTTSDone(t *testing.T) {
	synth := &fakeSynth{result: Result{SR: 16000, WordTS: []WordTiming{{Word: "привет", T0: 0, T1: 0.3}}}}
	_, bus, _ := newTestService(t, synth)

	events := publishAnswer(bus, types.Answer{AnswerEmpathic: "Привет, давай начнём занятие.", Tone: "нейтральный преподаватель", Pace: "обычный"})

	if len(events) != 1 || events[0].Type != "tts_done" {
		t.Fatalf("expected exactly one tts_done event, got %v", events)
	}
	audio, _ := events[0].Payload["audio"].(string)
	if audio == "" || audio[:7] != "file://" {
		t.Errorf("expected audio path prefixed by file://, got %q", audio)
	}
}

func TestPersistentFailurePublishesTTSFailed(t *testing.T) {
	synth := &fakeSynth{failN: 10, failErr: errors.New("backend unavailable")}
	_, bus, _ := newTestService(t, synth)

	events := publishAnswer(bus, types.Answer{AnswerEmpathic: "Текст ответа.", Tone: "нейтральный преподаватель", Pace: "обычный"})

	if len(events) != 1 || events[0].Type != "tts_failed" {
		t.Fatalf("expected exactly one tts_failed event, got %v", events)
	}
	if _, ok := events[0].Payload["fallback_text"]; !ok {
		t.Errorf("expected fallback_text in tts_failed payload")
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	synth := &fakeSynth{failN: 2, failErr: errors.New("timeout"), result: Result{SR: 16000}}
	_, bus, _ := newTestService(t, synth)

	events := publishAnswer(bus, types.Answer{AnswerEmpathic: "Короткий ответ.", Tone: "нейтральный преподаватель", Pace: "обычный"})

	if len(events) != 1 || events[0].Type != "tts_done" {
		t.Fatalf("expected eventual tts_done after transient failures, got %v", events)
	}
	if synth.calls != 3 {
		t.Errorf("expected 3 attempts (2 failures + 1 success), got %d", synth.calls)
	}
}

func TestCacheHitSkipsSynthesizerOnSecondCall(t *testing.T) {
	synth := &fakeSynth{result: Result{SR: 16000}}
	_, bus, _ := newTestService(t, synth)

	answer := types.Answer{AnswerEmpathic: "Короткий ответ.", Tone: "нейтральный преподаватель", Pace: "обычный"}
	publishAnswer(bus, answer)
	if synth.calls != 1 {
		t.Fatalf("expected 1 call after first publish, got %d", synth.calls)
	}

	publishAnswer(bus, answer)
	if synth.calls != 1 {
		t.Errorf("expected cache hit to avoid a second synthesizer call, got %d calls", synth.calls)
	}
}

func TestLongTextBypassesCache(t *testing.T) {
	synth := &fakeSynth{result: Result{SR: 16000}}
	_, bus, _ := newTestService(t, synth)

	var longText string
	for i := 0; i < 30; i++ {
		longText += "это очень длинный ответ сверх предела кэша "
	}
	answer := types.Answer{AnswerEmpathic: longText, Tone: "нейтральный преподаватель", Pace: "обычный"}

	publishAnswer(bus, answer)
	publishAnswer(bus, answer)

	if synth.calls != 2 {
		t.Errorf("expected no caching for text over the threshold, got %d calls", synth.calls)
	}
}

func TestLocalSynthesizerThroughServicePublishesWordTS(t *testing.T) {
	_, bus, _ := newTestService(t, NewLocalSynthesizer(16000))

	events := publishAnswer(bus, types.Answer{AnswerEmpathic: "Дробь это число", Tone: "нейтральный преподаватель", Pace: "обычный"})

	if len(events) != 1 || events[0].Type != "tts_done" {
		t.Fatalf("expected exactly one tts_done event, got %v", events)
	}
	wordTS, _ := events[0].Payload["word_ts"].([]WordTiming)
	if len(wordTS) == 0 {
		t.Errorf("expected non-empty word_ts from the real LocalSynthesizer, got %v", events[0].Payload["word_ts"])
	}
	emotion, _ := events[0].Payload["emotion"].(string)
	switch emotion {
	case EmotionWarm, EmotionNeutral, EmotionCalm, EmotionExcited:
	default:
		t.Errorf("expected emotion to be one of the known values, got %q", emotion)
	}
}

func TestResetAnswerIsNotSynthesized(t *testing.T) {
	synth := &fakeSynth{result: Result{SR: 16000}}
	_, bus, _ := newTestService(t, synth)

	events := publishAnswer(bus, types.Answer{Status: "dialog_cleared"})
	if len(events) != 0 {
		t.Errorf("expected no tts event for a reset answer, got %v", events)
	}
	if synth.calls != 0 {
		t.Errorf("expected synthesizer not to be called for a reset answer")
	}
}
