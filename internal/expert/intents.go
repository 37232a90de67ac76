package expert

import (
	"regexp"
	"strings"
)

// intentPatterns mirrors the regex families the original classifier used
// per intent, isolated here as a pure lookup table so detection stays
// testable on its own (per the follow-up/intent REDESIGN FLAGS guidance).
var intentPatterns = map[string][]*regexp.Regexp{
	"why":      compilePatterns([]string{`почему`, `зачем`, `по какой причине`}),
	"how":      compilePatterns([]string{`как`, `каким образом`, `порядок`, `шаг(?:и|ов)`}),
	"what_if":  compilePatterns([]string{`что если`, `а если`}),
	"examples": compilePatterns([]string{`пример(?:ы)?`, `кейсы?`, `иллюстраци(?:я|и)`}),
}

// intentOrder fixes iteration order so detectIntents returns a stable tag
// list regardless of map ordering.
var intentOrder = []string{"why", "how", "what_if", "examples"}

// boundary wraps a word in a non-word lookaround built from Cyrillic and
// Latin letter classes, standing in for \b (Go's RE2 \b is ASCII-only and
// does not recognize Cyrillic as a word character).
func boundary(pattern string) string {
	return `(?:^|[^а-яёa-z0-9])(?:` + pattern + `)(?:$|[^а-яёa-z0-9])`
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	result := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + boundary(p))
		if err == nil {
			result = append(result, re)
		}
	}
	return result
}

// detectIntents tags question against the four regex families, defaulting
// to [examples] for a "что такое" stem or [how] otherwise (spec §4.3 step 4).
func detectIntents(question string) []string {
	q := strings.ToLower(question)
	var hits []string
	for _, name := range intentOrder {
		for _, re := range intentPatterns[name] {
			if re.MatchString(q) {
				hits = append(hits, name)
				break
			}
		}
	}
	if len(hits) == 0 {
		if strings.HasPrefix(q, "что такое") {
			return []string{"examples"}
		}
		return []string{"how"}
	}
	return hits
}

var detailShort = compilePatterns([]string{`кратко`, `коротко`, `в двух словах`})
var detailLong = compilePatterns([]string{`подробно`, `развернуто`, `детально`})

// detectDetailLevel returns "short" or "long" (spec §4.3 step 5, default
// short).
func detectDetailLevel(question string) string {
	q := strings.ToLower(question)
	for _, re := range detailLong {
		if re.MatchString(q) {
			return "long"
		}
	}
	for _, re := range detailShort {
		if re.MatchString(q) {
			return "short"
		}
	}
	return "short"
}
