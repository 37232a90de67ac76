package expert

import (
	"strings"
	"unicode/utf8"
)

var followUpMarkers = compilePatterns([]string{`подробнее`, `поясни`, `уточни`, `разверни`})

// isFollowUp decides whether question continues the previous turn rather
// than starting a new one (spec §4.3 step 6): short (<=4 tokens), or
// starting with "а"/"и", or containing one of the follow-up markers.
func isFollowUp(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return false
	}
	if startsWithToken(q, "а") || startsWithToken(q, "и") {
		return true
	}
	for _, re := range followUpMarkers {
		if re.MatchString(q) {
			return true
		}
	}
	return len(strings.Fields(q)) <= 4
}

func startsWithToken(q, token string) bool {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return false
	}
	return fields[0] == token
}

// augmentQuery builds the follow-up augmented query (spec §4.3 step 6):
// "<prev_question>. <current>. Контекст: <first 200 chars of prev answer>".
func augmentQuery(prevQuestion, prevAnswer, current string) string {
	ctx := prevAnswer
	if utf8.RuneCountInString(ctx) > 200 {
		r := []rune(ctx)
		ctx = string(r[:200])
	}
	return prevQuestion + ". " + current + ". Контекст: " + ctx
}
