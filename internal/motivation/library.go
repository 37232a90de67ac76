package motivation

import "github.com/vthunder/tutor/internal/types"

// levelName names the four situational-leadership levels (spec §4.4).
var levelName = map[int]string{
	1: "novice",
	2: "discouraged_learner",
	3: "competent_variable",
	4: "self_directed",
}

// levelStyle is the fixed style record per level, modeled on the
// directing/coaching/supporting/delegating progression of the situational
// leadership model the level numbers are named after.
var levelStyle = map[int]types.Style{
	1: {Style: "директивный", Tone: "mentor", Pace: "упрощённый"},
	2: {Style: "поддерживающий", Tone: "mentor", Pace: "упрощённый"},
	3: {Style: "консультирующий", Tone: "partner", Pace: "обычный"},
	4: {Style: "делегирующий", Tone: "partner", Pace: "ускоренный"},
}

// motivationLibrary holds the phrase/challenge pool per level.
var motivationLibrary = map[int]struct {
	Phrases    []string
	Challenges []string
}{
	1: {
		Phrases: []string{
			"Каждый эксперт когда-то начинал с первого шага.",
			"Ты уже освоил больше, чем кажется — продолжай.",
		},
		Challenges: []string{
			"Попробуй объяснить последний шаг своими словами.",
			"Повтори материал ещё раз медленно, по пунктам.",
		},
	},
	2: {
		Phrases: []string{
			"Сложности сейчас — это нормальная часть обучения.",
			"Ты справляешься лучше, чем думаешь.",
		},
		Challenges: []string{
			"Разбей задачу на два более простых шага.",
			"Попроси пример попроще и сравни его с текущим.",
		},
	},
	3: {
		Phrases: []string{
			"Хороший прогресс — видно уверенное понимание темы.",
			"Твой подход уже достаточно самостоятельный.",
		},
		Challenges: []string{
			"Попробуй решить следующее задание без подсказок.",
			"Сравни два способа решения и выбери лучший.",
		},
	},
	4: {
		Phrases: []string{
			"Ты работаешь уверенно и самостоятельно.",
			"Отличный темп — можно двигаться дальше.",
		},
		Challenges: []string{
			"Предложи собственный пример на эту тему.",
			"Попробуй более сложный вариант задания.",
		},
	},
}

// reflectionPool is the fixed prompt pool reflection questions are drawn
// from (spec §4.4).
var reflectionPool = []string{
	"Что было самым сложным в этом материале?",
	"Что получилось лучше всего?",
	"Какой момент хотелось бы разобрать ещё раз?",
	"Насколько уверенно ты сейчас себя чувствуешь по этой теме?",
}
