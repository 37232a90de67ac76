package motivation

import (
	"strings"

	"github.com/vthunder/tutor/internal/types"
)

var frustrationTriggers = []string{"не понимаю", "сложно", "устал", "не получается"}

// detectScenario runs the fixed-priority detector chain (spec §4.4,
// resolving the source's two conflicting variants in favor of the
// priority-ordered one): frustration > low_metrics > slow_response >
// short_replies, first match wins.
func detectScenario(question string, engagement, confidence, effectiveLatency, latSlow float64) (name, reaction string, style types.Style, matched bool) {
	q := strings.ToLower(question)

	if containsAny(q, frustrationTriggers) {
		return "frustration",
			"Замечаю, что тема даётся тяжело — сбавим темп и разберём по шагам.",
			types.Style{Pace: "замедленный", Tone: "warm"},
			true
	}

	if engagement < 0.4 || confidence < 0.4 {
		return "low_metrics",
			"Похоже, уверенность или вовлечённость сейчас снижены — поддержим более простым темпом.",
			types.Style{Tone: "supportive"},
			true
	}

	if effectiveLatency > latSlow {
		return "slow_response",
			"Ответы стали занимать больше времени — возможно, стоит притормозить.",
			types.Style{Pace: "замедленный", Tone: "neutral"},
			true
	}

	if len(strings.Fields(strings.TrimSpace(question))) <= 3 {
		return "short_replies",
			"Короткие ответы могут значить, что сейчас неудобно объяснять подробно.",
			types.Style{Pace: "замедленный", Tone: "warm"},
			true
	}

	return "", "", types.Style{}, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
