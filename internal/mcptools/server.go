// Package mcptools exposes the Expert Pipeline and Motivation Estimator as
// MCP tools, following the teacher's cmd/efficient-notion-mcp server
// construction and tool-registration pattern (NewMCPServer + AddTool, JSON
// results via NewToolResultText/NewToolResultError).
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vthunder/tutor/internal/expert"
	"github.com/vthunder/tutor/internal/motivation"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/types"
)

// Server wires one session's Expert Pipeline and Motivation Estimator
// behind an MCP tool surface.
type Server struct {
	ctx  *sessionctx.Context
	exp  *expert.Pipeline
	mot  *motivation.Estimator
	mcps *server.MCPServer
}

// New builds the MCP server and registers its tools. Call Serve to run it
// over stdio.
func New(ctx *sessionctx.Context, exp *expert.Pipeline, mot *motivation.Estimator) *Server {
	s := &Server{ctx: ctx, exp: exp, mot: mot}
	s.mcps = server.NewMCPServer("tutor-mcp", "1.0.0", server.WithToolCapabilities(true))
	s.mcps.AddTool(askExpertTool(), s.handleAskExpert)
	s.mcps.AddTool(motivationSnapshotTool(), s.handleMotivationSnapshot)
	return s
}

// Serve runs the MCP server over stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcps)
}

func askExpertTool() mcp.Tool {
	return mcp.NewTool("ask_expert",
		mcp.WithDescription("Ask the tutoring expert pipeline a question and get back the full answer envelope (answer text, explanation, sources, next steps, empathy framing)."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The student's question, in the session's working language."),
		),
	)
}

func (s *Server) handleAskExpert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	question, _ := args["question"].(string)
	if question == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	answer := s.exp.Process(s.ctx, question, time.Now())
	data, err := json.Marshal(answer)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal answer: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func motivationSnapshotTool() mcp.Tool {
	return mcp.NewTool("get_motivation_snapshot",
		mcp.WithDescription("Evaluate the student's current situational motivation level (directing/coaching/supporting/delegating) against the session's latest metrics."),
		mcp.WithString("last_question",
			mcp.Description("The student's most recent utterance, used for scenario detection (frustration, short replies, etc.). Optional."),
		),
	)
}

func (s *Server) handleMotivationSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	lastQuestion, _ := args["last_question"].(string)

	snap := s.mot.Evaluate(s.ctx, lastTaskStatus(s.ctx), lastQuestion, time.Now())
	data, err := json.Marshal(snap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal snapshot: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func lastTaskStatus(ctx *sessionctx.Context) types.TaskStatus {
	tasks := ctx.Organizer().Tasks
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].Status != types.TaskNotStarted {
			return tasks[i].Status
		}
	}
	return types.TaskNotStarted
}
