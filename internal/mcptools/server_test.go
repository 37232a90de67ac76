package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/expert"
	"github.com/vthunder/tutor/internal/knowledge"
	"github.com/vthunder/tutor/internal/motivation"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	idx := knowledge.New()
	idx.LoadDocs([]string{"Дробь это число, состоящее из числителя и знаменателя."}, []string{"doc1"})
	ctx := sessionctx.New("math", 1, "дроби", "async")
	return New(ctx, expert.New(cfg.Expert, idx), motivation.New(cfg.Motivation))
}

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleAskExpertReturnsAnswerEnvelope(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleAskExpert(context.Background(), callToolRequest(map[string]any{"question": "Что такое дробь?"}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %+v", result)
	}

	text := firstText(t, result)
	var answer types.Answer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		t.Fatalf("expected valid answer JSON: %v", err)
	}
	if answer.Question != "Что такое дробь?" {
		t.Errorf("expected question echoed back, got %q", answer.Question)
	}
}

func TestHandleAskExpertRequiresQuestion(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleAskExpert(context.Background(), callToolRequest(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Errorf("expected error result for missing question")
	}
}

func TestHandleMotivationSnapshotReturnsSnapshot(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleMotivationSnapshot(context.Background(), callToolRequest(map[string]any{"last_question": "не понимаю"}))
	if err != nil {
		t.Fatal(err)
	}
	text := firstText(t, result)
	var snap types.MotivationSnapshot
	if err := json.Unmarshal([]byte(text), &snap); err != nil {
		t.Fatalf("expected valid snapshot JSON: %v", err)
	}
	if snap.Level < 1 || snap.Level > 4 {
		t.Errorf("expected level in [1,4], got %d", snap.Level)
	}
}

func firstText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("expected at least one text content block, got %v", result.Content)
	return ""
}
