package tts

import (
	"context"
	"testing"
)

func TestLocalSynthesizerProducesValidWAVHeader(t *testing.T) {
	s := NewLocalSynthesizer(16000)
	res, err := s.Synthesize(context.Background(), "Дробь это число", "default", EmotionNeutral, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.WAV) < 44 {
		t.Fatalf("expected at least a 44-byte WAV header, got %d bytes", len(res.WAV))
	}
	if string(res.WAV[0:4]) != "RIFF" || string(res.WAV[8:12]) != "WAVE" {
		t.Errorf("expected RIFF/WAVE header, got %q/%q", res.WAV[0:4], res.WAV[8:12])
	}
	if res.SR != 16000 {
		t.Errorf("expected sample rate 16000, got %d", res.SR)
	}
}

func TestLocalSynthesizerLongerTextProducesLongerClip(t *testing.T) {
	s := NewLocalSynthesizer(16000)
	short, _ := s.Synthesize(context.Background(), "Привет", "default", EmotionNeutral, 1.0)
	long, _ := s.Synthesize(context.Background(), "Дробь это число, состоящее из числителя и знаменателя, записанных через черту.", "default", EmotionNeutral, 1.0)
	if len(long.WAV) <= len(short.WAV) {
		t.Errorf("expected longer text to produce a longer clip: short=%d long=%d", len(short.WAV), len(long.WAV))
	}
}

func TestLocalSynthesizerDefaultsSampleRate(t *testing.T) {
	s := NewLocalSynthesizer(0)
	if s.SampleRate != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", s.SampleRate)
	}
}

func TestLocalSynthesizerProducesWordTimings(t *testing.T) {
	s := NewLocalSynthesizer(16000)
	res, err := s.Synthesize(context.Background(), "Дробь это число", "default", EmotionNeutral, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.WordTS) != 3 {
		t.Fatalf("expected 3 word timings for 3 words, got %d", len(res.WordTS))
	}
	for i, wt := range res.WordTS {
		if wt.T1 <= wt.T0 {
			t.Errorf("word %d: expected T1 > T0, got t0=%v t1=%v", i, wt.T0, wt.T1)
		}
	}
	if res.WordTS[0].Word != "Дробь" {
		t.Errorf("expected first word timing to carry the word text, got %q", res.WordTS[0].Word)
	}
}

func TestLocalSynthesizerEmptyTextProducesNoWordTimings(t *testing.T) {
	s := NewLocalSynthesizer(16000)
	res, err := s.Synthesize(context.Background(), "", "default", EmotionNeutral, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.WordTS) != 0 {
		t.Errorf("expected no word timings for empty text, got %d", len(res.WordTS))
	}
}
