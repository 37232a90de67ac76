package expert

import (
	"strings"
	"unicode/utf8"

	"github.com/vthunder/tutor/internal/types"
)

// selectStyle maps confidence to a pace/tone recommendation (spec §4.3
// step 8).
func selectStyle(confidence float64) types.Style {
	switch {
	case confidence < 0.3:
		return types.Style{Pace: "упрощённый", Tone: toneMentor}
	case confidence > 0.7:
		return types.Style{Pace: "ускоренный", Tone: tonePartner}
	default:
		return types.Style{Pace: "обычный", Tone: toneNeutral}
	}
}

// makeBrief truncates text to limit runes, appending an ellipsis if it was
// cut (spec's make_brief helper, ported from original_source/core/__init__.py).
func makeBrief(text string, limit int) string {
	t := strings.ReplaceAll(strings.TrimSpace(text), "\n\n", "\n")
	if utf8.RuneCountInString(t) <= limit {
		return t
	}
	return string([]rune(t)[:limit]) + "…"
}

// formatByIntents assembles the fixed structural section for each intent,
// directly porting _format_by_intents (original_source/core/__init__.py).
func formatByIntents(intents []string) string {
	var sections []string
	for _, it := range intents {
		switch it {
		case "why":
			sections = append(sections, "Почему это важно:\n"+
				"- Связь с целями занятия\n"+
				"- Какие ошибки предотвращает\n"+
				"- Как влияет на результат")
		case "how":
			sections = append(sections, "Как действовать (шаги):\n"+
				"1) Изучите требования\n"+
				"2) Подготовьте данные/материалы\n"+
				"3) Примените правила из материалов занятия\n"+
				"4) Проверьте критерии качества")
		case "what_if":
			sections = append(sections, "Что если (разбор вариантов):\n"+
				"- Если данных мало — используйте минималистичную схему\n"+
				"- Если аудитория не экспертная — упрощайте формулировки\n"+
				"- Если условия нестандартные — проверьте граничные случаи")
		case "examples":
			sections = append(sections, "Примеры/кейсы:\n"+
				"- Разбор похожей задачи из материалов занятия\n"+
				"- Сравнение двух вариантов решения\n"+
				"- Применение на учебном примере")
		}
	}
	return strings.Join(sections, "\n\n")
}

// makeExplanation assembles the explanation field by detail level (spec
// §4.3 step 9), porting make_explanation.
func makeExplanation(base string, intents []string, detail string) string {
	sections := strings.TrimSpace(formatByIntents(intents))
	if detail == "long" {
		if sections == "" {
			return base
		}
		return base + "\n\n" + sections
	}
	if sections == "" {
		return "Ключевая мысль: см. основную часть ответа."
	}
	return sections
}

// buildNextSteps assembles the next_steps list from intents plus an
// action-task pointer (spec §4.3 step 9), porting build_next_steps.
func buildNextSteps(intents []string, tasks []types.Task) []string {
	var steps []string

	for _, t := range tasks {
		if t.Type == types.TaskAction || t.Type == types.TaskText || t.Type == types.TaskReflection {
			steps = append(steps, "Выполни задание: «"+t.Instruction+"»")
			break
		}
	}

	for _, it := range intents {
		switch it {
		case "how":
			steps = append(steps, "Сверься с чек-листом качества из материалов занятия.")
		case "why":
			steps = append(steps, "Выдели 2-3 аргумента, почему это важно именно для тебя.")
		case "examples":
			steps = append(steps, "Найди ещё один пример и кратко сравни его с разобранным.")
		case "what_if":
			steps = append(steps, "Опиши 1-2 альтернативы для своего случая и выбери подходящую.")
		}
	}

	if len(steps) == 0 {
		steps = append(steps, "Задай уточняющий вопрос или перейди к выполнению ближайшего задания.")
	}
	return steps
}
