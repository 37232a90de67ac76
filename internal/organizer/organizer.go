// Package organizer derives tasks from the Cartographer's subgoals, a pure
// function over the goal list, directly porting
// original_source/modules/organizer.py's generate_tasks.
package organizer

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

var (
	textVerbs       = []string{"объяснить", "описать", "перечислить"}
	actionVerbs     = []string{"применить", "создать", "выполнить", "построить"}
	reflectionVerbs = []string{"оценить", "анализировать", "сравнить", "обосновать"}
)

type taskTemplate struct {
	taskType types.TaskType
	hints    []string
	criteria []string
}

// Organizer derives one Task per subgoal, typed by verb family (spec §4.6).
type Organizer struct{}

// New returns an Organizer. It holds no state; everything it produces is
// written to the Organizer slot.
func New() *Organizer {
	return &Organizer{}
}

// Process reads the Cartographer slot's subgoals and writes one Task per
// subgoal into the Organizer slot.
func (o *Organizer) Process(ctx *sessionctx.Context) []types.Task {
	subgoals := ctx.Cartographer().Goals.Subgoals
	tasks := generateTasks(subgoals)
	ctx.Organizer().Tasks = tasks
	return tasks
}

func generateTasks(subgoals []string) []types.Task {
	tasks := make([]types.Task, 0, len(subgoals))
	for i, subgoal := range subgoals {
		tmpl := classify(subgoal)
		tasks = append(tasks, types.Task{
			ID:                 "task_" + strconv.Itoa(i+1) + "_" + uuid.NewString()[:8],
			Goal:               subgoal,
			Type:               tmpl.taskType,
			Instruction:        "Задание: " + subgoal,
			Hints:              tmpl.hints,
			EvaluationCriteria: tmpl.criteria,
			Status:             types.TaskNotStarted,
			IsCompleted:        false,
		})
	}
	return tasks
}

// classify types a subgoal by its verb family (spec §4.6).
func classify(subgoal string) taskTemplate {
	s := strings.ToLower(subgoal)
	switch {
	case containsAny(s, textVerbs):
		return taskTemplate{
			taskType: types.TaskText,
			hints:    []string{"Используй термины из лекции", "Приведи простой пример"},
			criteria: []string{"Наличие ключевых понятий", "Связность объяснения"},
		}
	case containsAny(s, actionVerbs):
		return taskTemplate{
			taskType: types.TaskAction,
			hints:    []string{"Вспомни алгоритм из материалов", "Сделай по шагам"},
			criteria: []string{"Завершённость работы", "Соответствие требованиям"},
		}
	case containsAny(s, reflectionVerbs):
		return taskTemplate{
			taskType: types.TaskReflection,
			hints:    []string{"Сравни два варианта", "Объясни свой выбор"},
			criteria: []string{"Обоснованность", "Логичность рассуждений"},
		}
	default:
		return taskTemplate{
			taskType: types.TaskText,
			hints:    []string{"Начни с базового объяснения"},
			criteria: []string{"Понятность ответа"},
		}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
