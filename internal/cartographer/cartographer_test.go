package cartographer

import (
	"testing"

	"github.com/vthunder/tutor/internal/sessionctx"
)

func TestProcessBuildsThreeLayeredSubgoals(t *testing.T) {
	c := New()
	ctx := sessionctx.New("math", 1, "дроби", "async")

	goals := c.Process(ctx, "дроби", []string{"Дробь это число, состоящее из числителя и знаменателя."})
	if len(goals.Subgoals) != 3 {
		t.Fatalf("expected 3 subgoals, got %d", len(goals.Subgoals))
	}
	if ctx.Cartographer().Goals.MainGoal != goals.MainGoal {
		t.Errorf("expected slot to hold the returned goals")
	}
}

func TestKnowledgeTypesCappedAtFive(t *testing.T) {
	docs := []string{}
	for i := 0; i < 8; i++ {
		docs = append(docs, "Это простое определение понятия в тексте.")
	}
	kt := extractKnowledgeTypes(docs)
	if len(kt.Facts) != 5 {
		t.Errorf("expected facts capped at 5, got %d", len(kt.Facts))
	}
}

func TestDocCountReflectsInputDocuments(t *testing.T) {
	c := New()
	ctx := sessionctx.New("math", 1, "дроби", "async")
	c.Process(ctx, "дроби", []string{"doc one.", "doc two.", "doc three."})

	if ctx.Cartographer().DocCount != 3 {
		t.Errorf("expected doc_count 3, got %d", ctx.Cartographer().DocCount)
	}
}
