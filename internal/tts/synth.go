// Package tts implements the Text-to-Speech Service collaborator: it
// subscribes to the bus's answer events, synthesizes audio for the
// empathic answer text, and emits `tts_done` / `tts_failed` (spec §6, §8
// scenario 6). Retry/backoff around the adapter call is grounded on the
// teacher's Discord effector delivery loop, adapted from message delivery
// to speech synthesis calls.
package tts

import (
	"context"
)

// WordTiming is one word's alignment within synthesized audio.
type WordTiming struct {
	Word string  `json:"word"`
	T0   float64 `json:"t0"`
	T1   float64 `json:"t1"`
}

// Result is the raw envelope a Synthesizer returns for one call.
type Result struct {
	WAV      []byte       `json:"-"`
	SR       int          `json:"sr"`
	WordTS   []WordTiming `json:"word_ts"`
	Phonemes []string     `json:"phonemes"`
}

// Synthesizer is the capability interface the Service drives. A concrete
// adapter talks to whatever speech backend is configured; Service owns the
// timeout, retry, caching and event-emission concerns around it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, emotion string, rate float64) (Result, error)
}

// Emotion values the Service assigns to a turn (spec §6, §8 scenario 6).
const (
	EmotionWarm    = "warm"
	EmotionNeutral = "neutral"
	EmotionCalm    = "calm"
	EmotionExcited = "excited"
)

var warmSituations = map[string]bool{
	"frustration": true,
	"error":       true,
	"doubt":       true,
}

// selectEmotion derives the emotion from the empathy situation detected by
// the Expert Pipeline and falls back to the answer's tone when the
// situation doesn't call for extra warmth.
func selectEmotion(situation, tone string) string {
	if warmSituations[situation] {
		return EmotionWarm
	}
	switch tone {
	case "дружелюбный наставник":
		return EmotionCalm
	case "партнёр по проекту":
		return EmotionExcited
	default:
		return EmotionNeutral
	}
}

// selectRate derives a speech-rate multiplier from the pace the Expert
// Pipeline attached to the answer.
func selectRate(pace string) float64 {
	switch pace {
	case "упрощённый":
		return 0.85
	case "ускоренный":
		return 1.15
	default:
		return 1.0
	}
}
