package organizer

import (
	"testing"

	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

func TestProcessTypesTasksByVerbFamily(t *testing.T) {
	ctx := sessionctx.New("math", 1, "дроби", "async")
	ctx.Cartographer().Goals.Subgoals = []string{
		"Объяснить ключевые понятия темы",
		"Применить знания на практике",
		"Оценить результат и сравнить подходы",
	}

	o := New()
	tasks := o.Process(ctx)

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].Type != types.TaskText {
		t.Errorf("expected first task typed text, got %s", tasks[0].Type)
	}
	if tasks[1].Type != types.TaskAction {
		t.Errorf("expected second task typed action, got %s", tasks[1].Type)
	}
	if tasks[2].Type != types.TaskReflection {
		t.Errorf("expected third task typed reflection, got %s", tasks[2].Type)
	}
}

func TestProcessDefaultsUnmatchedVerbToText(t *testing.T) {
	ctx := sessionctx.New("math", 1, "дроби", "async")
	ctx.Cartographer().Goals.Subgoals = []string{"Подумать о теме в целом"}

	tasks := New().Process(ctx)
	if tasks[0].Type != types.TaskText {
		t.Errorf("expected unmatched verb to default to text, got %s", tasks[0].Type)
	}
}

func TestTasksGetUniqueIDs(t *testing.T) {
	ctx := sessionctx.New("math", 1, "дроби", "async")
	ctx.Cartographer().Goals.Subgoals = []string{"Объяснить A", "Объяснить B"}

	tasks := New().Process(ctx)
	if tasks[0].ID == tasks[1].ID {
		t.Errorf("expected unique task ids, got duplicate %q", tasks[0].ID)
	}
}
