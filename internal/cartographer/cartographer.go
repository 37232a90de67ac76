// Package cartographer derives pedagogical goals and knowledge-type
// buckets from a topic and its loaded documents, directly porting
// original_source/modules/cartographer.py's generate_goals and
// extract_knowledge_types.
package cartographer

import (
	"strings"

	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

var (
	factTriggers      = []string{"это", "называется", "является", "определяется как"}
	procedureTriggers = []string{"сделайте", "выполните", "используйте", "шаг", "процесс", "алгоритм", "нужно"}
	metaTriggers      = []string{"оцените", "сравните", "выберите", "зачем", "почему", "что лучше", "преимущество"}
)

// Cartographer produces the goal map and knowledge-type buckets that feed
// the Organizer (spec §4.6).
type Cartographer struct{}

// New returns a Cartographer. It holds no state of its own; everything it
// produces is written to the Cartographer slot.
func New() *Cartographer {
	return &Cartographer{}
}

// Process builds the goals, knowledge types and text map for topic against
// docs, and writes them into the Cartographer slot.
func (c *Cartographer) Process(ctx *sessionctx.Context, topic string, docs []string) types.Goals {
	goals := generateGoals(topic)
	knowledgeTypes := extractKnowledgeTypes(docs)
	textMap := generateTextMap(topic, goals, knowledgeTypes)

	slot := ctx.Cartographer()
	slot.Goals = goals
	slot.KnowledgeTypes = knowledgeTypes
	slot.TextMap = textMap
	slot.DocCount = len(docs)

	return goals
}

// generateGoals builds the three pedagogically layered subgoals
// (understanding -> application -> evaluation), ported from generate_goals.
func generateGoals(topic string) types.Goals {
	return types.Goals{
		MainGoal: "Изучить тему: " + topic,
		Subgoals: []string{
			"Объяснить ключевые понятия, связанные с темой «" + topic + "»",
			"Применить знания для выполнения задания по теме",
			"Оценить примеры/результаты на основе полученных знаний",
		},
		Level: "понимание → применение → оценка",
	}
}

// extractKnowledgeTypes buckets sentences from docs by trigger family,
// capped at 5 per kind (spec §4.6), ported from extract_knowledge_types.
func extractKnowledgeTypes(docs []string) types.KnowledgeTypes {
	var facts, procedures, meta []string

	for _, doc := range docs {
		for _, sentence := range splitSentences(doc) {
			s := strings.ToLower(strings.TrimSpace(sentence))
			trimmed := strings.TrimSpace(sentence)
			switch {
			case containsAny(s, factTriggers):
				facts = append(facts, trimmed)
			case containsAny(s, procedureTriggers):
				procedures = append(procedures, trimmed)
			case containsAny(s, metaTriggers):
				meta = append(meta, trimmed)
			}
		}
	}

	return types.KnowledgeTypes{
		Facts:      capAt(facts, 5),
		Procedures: capAt(procedures, 5),
		Meta:       capAt(meta, 5),
	}
}

func splitSentences(doc string) []string {
	return strings.FieldsFunc(doc, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func capAt(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// generateTextMap renders the goal map as a readable summary, ported from
// generate_text_map.
func generateTextMap(topic string, goals types.Goals, kt types.KnowledgeTypes) string {
	var b strings.Builder
	b.WriteString("Главная цель занятия: " + goals.MainGoal + "\n")
	b.WriteString("\nПодцели:\n")
	for i, g := range goals.Subgoals {
		b.WriteString("  " + itoa(i+1) + ". " + g + "\n")
	}
	b.WriteString("\nУровень сложности: " + goals.Level + "\n")

	b.WriteString("\nТипы знаний:\n")
	writeBucket(&b, "Факты", kt.Facts)
	writeBucket(&b, "Процедуры", kt.Procedures)
	writeBucket(&b, "Мета-знания", kt.Meta)

	return strings.TrimRight(b.String(), "\n")
}

func writeBucket(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("  " + label + ":\n")
	for _, item := range items {
		b.WriteString("    - " + item + "\n")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
