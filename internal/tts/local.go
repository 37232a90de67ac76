package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
)

// LocalSynthesizer is the default Synthesizer: it produces a valid silent
// WAV clip sized to the input text rather than calling out to a real speech
// backend, the same role the teacher's TestEffector plays for Discord when
// no live session is configured.
type LocalSynthesizer struct {
	SampleRate int
}

// NewLocalSynthesizer returns a LocalSynthesizer at the given sample rate,
// defaulting to 16kHz.
func NewLocalSynthesizer(sampleRate int) *LocalSynthesizer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &LocalSynthesizer{SampleRate: sampleRate}
}

// Synthesize returns a silent WAV clip whose duration scales with the
// input's rune count divided by rate, so callers can exercise downstream
// duration-sensitive code (word timing, playback UIs) without a network
// dependency.
func (l *LocalSynthesizer) Synthesize(ctx context.Context, text, voice, emotion string, rate float64) (Result, error) {
	if rate <= 0 {
		rate = 1.0
	}
	seconds := float64(len([]rune(text))) / 12.0 / rate
	if seconds < 0.5 {
		seconds = 0.5
	}
	samples := int(seconds * float64(l.SampleRate))

	wav := writeSilentWAV(l.SampleRate, samples)
	return Result{WAV: wav, SR: l.SampleRate, WordTS: evenWordTimings(text, seconds)}, nil
}

// evenWordTimings divides the clip's duration evenly across the
// whitespace-separated words in text, giving every real adapter's word_ts
// shape without a forced-alignment model.
func evenWordTimings(text string, seconds float64) []WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	per := seconds / float64(len(words))
	timings := make([]WordTiming, len(words))
	for i, w := range words {
		timings[i] = WordTiming{
			Word: w,
			T0:   float64(i) * per,
			T1:   float64(i+1) * per,
		}
	}
	return timings
}

func writeSilentWAV(sampleRate, samples int) []byte {
	const bitsPerSample = 16
	const numChannels = 1
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := samples * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}
