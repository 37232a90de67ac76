package tts

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/logging"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

// Service subscribes to `expert_answer` and drives one Synthesizer call per
// turn, caching the result by a blake3 fingerprint over the input tuple and
// skipping the cache for inputs over the configured character threshold
// (spec §5).
type Service struct {
	bus   *eventbus.Bus
	ctx   *sessionctx.Context
	cfg   config.TTS
	synth Synthesizer
	sleep func(time.Duration)
}

// New builds a Service, subscribes it to the bus, and returns it.
func New(bus *eventbus.Bus, ctx *sessionctx.Context, cfg config.TTS, synth Synthesizer) *Service {
	s := &Service{bus: bus, ctx: ctx, cfg: cfg, synth: synth, sleep: time.Sleep}
	bus.Subscribe("expert_answer", s.onExpertAnswer)
	return s
}

func (s *Service) onExpertAnswer(ev types.Event) error {
	answer, ok := ev.Payload["answer"].(types.Answer)
	if !ok {
		return nil
	}
	if answer.Status == "dialog_cleared" {
		return nil
	}

	text := answer.AnswerEmpathic
	if text == "" {
		text = answer.AnswerText
	}
	if text == "" {
		return nil
	}

	emotion := selectEmotion(answer.Empathy.Situation, answer.Tone)
	rate := selectRate(answer.Pace)
	fingerprint := fingerprintFor(text, s.cfg.Voice, emotion, rate)

	cacheable := len([]rune(text)) <= s.cfg.CacheMaxChars
	tts := s.ctx.TTS()
	if cacheable {
		if rec, hit := tts.Cache[fingerprint]; hit {
			s.publishDone(text, rec.AudioPath, emotion, nil, nil)
			return nil
		}
	}

	result, err := s.synthesizeWithRetry(text, emotion, rate)
	if err != nil {
		logging.Info("tts", "synthesis failed for fingerprint %s: %v", fingerprint, err)
		s.bus.Publish(types.Event{
			Type:   "tts_failed",
			Source: "tts",
			Payload: map[string]any{"reason": err.Error(), "fallback_text": text},
		})
		return nil
	}

	path, err := s.writeAudio(fingerprint, result.WAV)
	if err != nil {
		s.bus.Publish(types.Event{
			Type:   "tts_failed",
			Source: "tts",
			Payload: map[string]any{"reason": err.Error(), "fallback_text": text},
		})
		return nil
	}

	if cacheable {
		tts.Cache[fingerprint] = types.TTSRecord{
			AudioPath: path,
			Chars:     len([]rune(text)),
			CreatedAt: time.Now(),
		}
	}

	s.publishDone(text, path, emotion, result.WordTS, result.Phonemes)
	return nil
}

func (s *Service) publishDone(text, audio, emotion string, wordTS []WordTiming, phonemes []string) {
	s.bus.Publish(types.Event{
		Type:   "tts_done",
		Source: "tts",
		Payload: map[string]any{
			"text":     text,
			"audio":    audio,
			"sr":       16000,
			"word_ts":  wordTS,
			"phonemes": phonemes,
			"emotion":  emotion,
		},
	})
}

// synthesizeWithRetry calls the adapter with its own per-attempt timeout,
// retrying transient failures with the teacher's exponential backoff
// (1s, 2s, 4s, ... capped at 60s), up to MaxRetries attempts, so a stuck
// backend surfaces tts_failed instead of blocking the session indefinitely.
func (s *Service) synthesizeWithRetry(text, emotion string, rate float64) (Result, error) {
	maxAttempts := s.cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	timeout := time.Duration(s.cfg.SynthTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		result, err := s.synth.Synthesize(ctx, text, s.cfg.Voice, emotion, rate)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < maxAttempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			s.sleep(backoff)
		}
	}
	return Result{}, fmt.Errorf("tts synthesis failed after %d attempts: %w", maxAttempts, lastErr)
}

func (s *Service) writeAudio(fingerprint string, wav []byte) (string, error) {
	dir := s.ctx.TTS().Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fingerprint+".wav")
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return "", err
	}
	return "file://" + path, nil
}

// fingerprintFor hashes the input tuple with BLAKE3, grounded on the
// teacher's generateShortID convention (internal/graph/episodes.go).
func fingerprintFor(text, voice, emotion string, rate float64) string {
	hash := blake3.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%.2f", text, voice, emotion, rate)))
	return hex.EncodeToString(hash[:])
}
