package expert

import (
	"strings"

	"github.com/vthunder/tutor/internal/types"
)

const (
	situationStart       = "start"
	situationSuccess     = "success"
	situationError       = "error"
	situationDoubt       = "doubt"
	situationFrustration = "frustration"
	situationHelpRequest = "help_request"
	situationEnd         = "end"
)

var (
	frustrationWords = []string{"не понимаю", "сложно", "устал", "не получается"}
	helpWords        = []string{"помоги", "подскажи", "нужна помощь", "как сделать"}
	doubtWords       = []string{"наверное", "может быть", "не уверен", "сомневаюсь"}
	errorWords       = []string{"ошибка", "не работает", "сломалось"}
	successWords     = []string{"получилось", "спасибо", "понятно", "легко"}
)

// classifySituation is the text-based fallback (spec §4.3 step 10(b)),
// used once the objective signals (completed/needs_review tasks, recent
// short-reply streak) find nothing. Checked in the same priority order the
// motivator's scenario detectors use, since frustration dominates every
// other reading of a turn.
func classifySituation(question string) string {
	q := strings.ToLower(question)
	if containsAny(q, frustrationWords) {
		return situationFrustration
	}
	if containsAny(q, errorWords) {
		return situationError
	}
	if containsAny(q, helpWords) {
		return situationHelpRequest
	}
	if containsAny(q, doubtWords) {
		return situationDoubt
	}
	if containsAny(q, successWords) {
		return situationSuccess
	}
	return situationDoubt
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// detectSituationFromTasks checks the objective signals ahead of the text
// classifier: a completed task means success, a needs_review/error task
// means error.
func detectSituationFromTasks(tasks []types.Task) (string, bool) {
	sawCompleted := false
	for _, t := range tasks {
		if t.Status == types.TaskNeedsReview {
			return situationError, true
		}
		if t.Status == types.TaskCompleted {
			sawCompleted = true
		}
	}
	if sawCompleted {
		return situationSuccess, true
	}
	return "", false
}

// detectFrustrationFromHistory checks the third objective signal: three
// recent turns with at least two short (<=4 token) questions.
func detectFrustrationFromHistory(history []types.Answer) bool {
	if len(history) < 3 {
		return false
	}
	recent := history[len(history)-3:]
	short := 0
	for _, a := range recent {
		if len(strings.Fields(a.Question)) <= 4 {
			short++
		}
	}
	return short >= 2
}

type phrasePair struct {
	Intro string
	Outro string
}

// empathyLibrary is keyed by "situation|tone" where tone is one of the
// three descriptive tones the style-selection stage produces (spec §4.3
// step 8/10).
var empathyLibrary = map[string]phrasePair{
	situationStart + "|" + toneMentor:  {Intro: "Начнём спокойно, шаг за шагом разберёмся."},
	situationStart + "|" + tonePartner: {Intro: "Поехали — разберём это вместе и по делу."},
	situationStart + "|" + toneNeutral: {Intro: "Начнём с сути вопроса."},

	situationSuccess + "|" + toneMentor:  {Outro: "Отлично получилось, продолжай в том же духе."},
	situationSuccess + "|" + tonePartner: {Outro: "Чётко. Это решение уже можно применять на практике."},
	situationSuccess + "|" + toneNeutral: {Outro: "Результат верный."},

	situationError + "|" + toneMentor:  {Intro: "Не страшно, ошибка — это часть пути к пониманию."},
	situationError + "|" + tonePartner: {Intro: "Окей, тут есть нестыковка — разберём, откуда она взялась."},
	situationError + "|" + toneNeutral: {Intro: "Обнаружено несоответствие, уточним детали."},

	situationDoubt + "|" + toneMentor:  {Intro: "Сомнения — это нормально, давай проверим твою мысль вместе."},
	situationDoubt + "|" + tonePartner: {Intro: "Понимаю сомнение — сверим с материалами и решим точно."},
	situationDoubt + "|" + toneNeutral: {Intro: "Уточним детали, чтобы снять сомнение."},

	situationFrustration + "|" + toneMentor:  {Intro: "Вижу, что сейчас тяжело — давай замедлимся и разберём по шагам."},
	situationFrustration + "|" + tonePartner: {Intro: "Тема непростая, но мы справимся — пойдём медленнее."},
	situationFrustration + "|" + toneNeutral: {Intro: "Сбавим темп и разберём вопрос подробнее."},

	situationHelpRequest + "|" + toneMentor:  {Intro: "Конечно помогу, вот что стоит сделать."},
	situationHelpRequest + "|" + tonePartner: {Intro: "Давай разберёмся вместе, вот план действий."},
	situationHelpRequest + "|" + toneNeutral: {Intro: "Вот пошаговая подсказка."},

	situationEnd + "|" + toneMentor:  {Outro: "Хорошего продолжения, до следующего занятия."},
	situationEnd + "|" + tonePartner: {Outro: "На сегодня всё — до связи на следующем занятии."},
	situationEnd + "|" + toneNeutral: {Outro: "Занятие завершено."},
}

const (
	toneMentor  = "дружелюбный наставник"
	tonePartner = "партнёр по проекту"
	toneNeutral = "нейтральный преподаватель"
)

// framingPosition decides whether the selected phrase attaches as intro,
// outro, or both (spec §4.3 step 10 policy).
func framingPosition(situation string) (intro, outro bool) {
	switch situation {
	case situationError, situationDoubt, situationFrustration, situationHelpRequest:
		return true, false
	case situationSuccess, situationEnd:
		return false, true
	default:
		return true, false
	}
}
