package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"whiteboard/internal/storage"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last committed change"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change"),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Export the whole whiteboard (boards, elements, z-order) as JSON"),
	), s.handleGetState)

	// ── load_state (destructive) ───────────────────────
	s.mcp.AddTool(mcp.NewTool("load_state",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace the whole whiteboard with a state exported by get_state. Requires user approval."),
		mcp.WithString("state", mcp.Description("State JSON"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleLoadState)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return historyStep(s.ws.Undo(ctx), "undo", "Undone")
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return historyStep(s.ws.Redo(ctx), "redo", "Redone")
}

func historyStep(err error, op, done string) (*mcp.CallToolResult, error) {
	if errors.Is(err, storage.ErrNoHistory) {
		return textResult("Nothing to " + op), nil
	}
	if err != nil {
		return nil, err
	}
	return textResult(done), nil
}

func (s *Server) handleGetState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.ws.State())
}

func (s *Server) handleLoadState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := req.GetString("state", "")
	if state == "" {
		return nil, fmt.Errorf("state is required")
	}
	if err := s.confirm("load_state", "Replace the whole whiteboard"); err != nil {
		return nil, err
	}
	if err := s.ws.LoadState(ctx, []byte(state)); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Loaded %d board(s)", len(s.ws.Boards()))), nil
}

