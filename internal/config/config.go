// Package config loads the tutoring runtime's tunable thresholds from a
// YAML file (overlaid on the teacher's own .env-first pattern) so the
// numeric defaults in spec.md §4.3/§4.4 can be tuned per deployment without
// touching code.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Expert holds the Expert Pipeline's tunable bounds (spec §4.3).
type Expert struct {
	FastLatencySec     float64 `yaml:"fast_latency_sec"`
	SlowLatencySec     float64 `yaml:"slow_latency_sec"`
	LatencyWindow      int     `yaml:"latency_window"`
	EngagementStep     float64 `yaml:"engagement_step"`
	ConfidenceStepUp   float64 `yaml:"confidence_step_up"`
	ConfidenceStepDown float64 `yaml:"confidence_step_down"`
}

// Motivation holds the Motivation Estimator's thresholds (spec §4.4).
type Motivation struct {
	ConfLow    float64 `yaml:"conf_low"`
	ConfHigh   float64 `yaml:"conf_high"`
	EngLow     float64 `yaml:"eng_low"`
	EngHigh    float64 `yaml:"eng_high"`
	LatSlowSec float64 `yaml:"lat_slow_sec"`
	LatFastSec float64 `yaml:"lat_fast_sec"`
	Hysteresis float64 `yaml:"hysteresis"`
	HistoryCap int     `yaml:"history_cap"`
}

// Conductor holds lifecycle tuning (spec §4.5).
type Conductor struct {
	MinWorkTurns int `yaml:"min_work_turns"`
}

// TTS holds the text-to-speech adapter's resource limits (spec §5).
type TTS struct {
	CacheMaxChars   int    `yaml:"cache_max_chars"`
	SynthTimeoutSec int    `yaml:"synth_timeout_sec"`
	MaxRetries      int    `yaml:"max_retries"`
	Voice           string `yaml:"voice"`
}

// EventBus holds the bus's bounded-log size (spec §3).
type EventBus struct {
	LogCap int `yaml:"log_cap"`
}

// Config is the full set of tunables for one tutoring session.
type Config struct {
	Expert     Expert     `yaml:"expert"`
	Motivation Motivation `yaml:"motivation"`
	Conductor  Conductor  `yaml:"conductor"`
	TTS        TTS        `yaml:"tts"`
	EventBus   EventBus   `yaml:"event_bus"`
}

// Default returns the spec's documented defaults.
func Default() Config {
	return Config{
		Expert: Expert{
			FastLatencySec:     12,
			SlowLatencySec:     45,
			LatencyWindow:      8,
			EngagementStep:     0.06,
			ConfidenceStepUp:   0.05,
			ConfidenceStepDown: 0.07,
		},
		Motivation: Motivation{
			ConfLow:    0.38,
			ConfHigh:   0.72,
			EngLow:     0.40,
			EngHigh:    0.68,
			LatSlowSec: 45,
			LatFastSec: 12,
			Hysteresis: 0.06,
			HistoryCap: 20,
		},
		Conductor: Conductor{
			MinWorkTurns: 2,
		},
		TTS: TTS{
			CacheMaxChars:   120,
			SynthTimeoutSec: 10,
			MaxRetries:      3,
			Voice:           "default",
		},
		EventBus: EventBus{
			LogCap: 200,
		},
	}
}

// LoadEnv loads a .env file if present; missing files are not an error.
func LoadEnv(path string) {
	_ = godotenv.Load(path)
}

// LoadFile overlays YAML at path onto the spec defaults. A missing file
// returns the defaults unchanged.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
