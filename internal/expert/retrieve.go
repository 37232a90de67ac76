package expert

import (
	"strings"
	"unicode/utf8"
)

const apologyText = "Пока нет подходящих материалов в базе знаний по этому вопросу."

// retrieve queries the knowledge index with top_k=2 and concatenates the
// hits, truncated to 800 characters (spec §4.3 step 7). An empty index
// degrades to the fixed apology with no recorded sources.
func (p *Pipeline) retrieve(query string) (text string, sources []string) {
	hits := p.index.Search(query, 2)
	if len(hits) == 0 {
		return apologyText, nil
	}

	var parts []string
	for _, h := range hits {
		parts = append(parts, strings.TrimSpace(h.Text))
		sources = append(sources, h.Source)
	}
	text = strings.Join(parts, " ")
	if utf8.RuneCountInString(text) > 800 {
		text = string([]rune(text)[:800])
	}
	return text, sources
}
