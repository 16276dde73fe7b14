package mcpserver

import (
	"context"
	"fmt"

	"whiteboard/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerBoardTools() {
	// ── list_boards ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List all boards in paint order, with the active board id"),
	), s.handleListBoards)

	// ── list_board_presets ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_board_presets",
		mcp.WithDescription("List the canvas size presets accepted by create_board"),
	), s.handleListBoardPresets)

	// ── create_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_board",
		mcp.WithDescription("Create a board and make it active. Size defaults to 800x600; position defaults to a 50px cascade."),
		mcp.WithString("name", mcp.Description("Board name (optional, defaults to 'Board N')")),
		mcp.WithString("preset", mcp.Description("Size preset name from list_board_presets (optional)")),
		mcp.WithNumber("width", mcp.Description("Width (optional)")),
		mcp.WithNumber("height", mcp.Description("Height (optional)")),
		mcp.WithNumber("x", mcp.Description("X position (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional)")),
		mcp.WithString("backgroundColor", mcp.Description("Fill color or 'transparent' (optional)")),
	), s.handleCreateBoard)

	// ── update_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_board",
		mcp.WithDescription("Rename, resize, move or recolor a board. Only the given fields change."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithNumber("width", mcp.Description("New width")),
		mcp.WithNumber("height", mcp.Description("New height")),
		mcp.WithNumber("x", mcp.Description("New X position")),
		mcp.WithNumber("y", mcp.Description("New Y position")),
		mcp.WithString("backgroundColor", mcp.Description("New fill color or 'transparent'")),
	), s.handleUpdateBoard)

	// ── set_active_board ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_board",
		mcp.WithDescription("Make a board active. New elements are inserted into the active board."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
	), s.handleSetActiveBoard)

	// ── duplicate_board ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_board",
		mcp.WithDescription("Copy a board's size and background to a new board offset by 50/50. Elements are not copied."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
	), s.handleDuplicateBoard)

	// ── delete_board (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_board",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a board and everything on it. Requires user approval."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBoard)

	// ── clear_boards (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_boards",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete every board and its contents. Requires user approval."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearBoards)
}

type boardList struct {
	ActiveBoardID string         `json:"activeBoardId,omitempty"`
	Boards        []domain.Board `json:"boards"`
}

func (s *Server) handleListBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := boardList{Boards: s.ws.Boards()}
	if active, ok := s.ws.ActiveBoard(); ok {
		out.ActiveBoardID = active.ID
	}
	return jsonResult(out)
}

func (s *Server) handleListBoardPresets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(domain.BoardPresets)
}

func (s *Server) handleCreateBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	opts := domain.CreateBoardOptions{
		Name:            req.GetString("name", ""),
		BackgroundColor: req.GetString("backgroundColor", ""),
		X:               optFloat(args, "x"),
		Y:               optFloat(args, "y"),
	}
	if name := req.GetString("preset", ""); name != "" {
		preset, ok := findPreset(name)
		if !ok {
			return nil, fmt.Errorf("unknown board preset %q", name)
		}
		opts.Width, opts.Height = preset.Width, preset.Height
	}
	opts.Width = getFloat(args, "width", opts.Width)
	opts.Height = getFloat(args, "height", opts.Height)

	board := s.ws.CreateBoard(ctx, opts)
	if err := s.ws.SetActiveBoard(ctx, board.ID); err != nil {
		return nil, fmt.Errorf("activate board: %w", err)
	}
	return jsonResult(board)
}

func findPreset(name string) (domain.BoardPreset, bool) {
	for _, p := range domain.BoardPresets {
		if p.Name == name {
			return p, true
		}
	}
	return domain.BoardPreset{}, false
}

func (s *Server) handleUpdateBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID := req.GetString("boardId", "")
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	board, err := s.ws.UpdateBoard(ctx, boardID, domain.UpdateBoardOptions{
		Name:            optString(args, "name"),
		Width:           optFloat(args, "width"),
		Height:          optFloat(args, "height"),
		X:               optFloat(args, "x"),
		Y:               optFloat(args, "y"),
		BackgroundColor: optString(args, "backgroundColor"),
	})
	if err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}
	return jsonResult(board)
}

func (s *Server) handleSetActiveBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID := req.GetString("boardId", "")
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	if err := s.ws.SetActiveBoard(ctx, boardID); err != nil {
		return nil, fmt.Errorf("set active board: %w", err)
	}
	return textResult(fmt.Sprintf("Active board set to %s", boardID)), nil
}

func (s *Server) handleDuplicateBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID := req.GetString("boardId", "")
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	board, err := s.ws.DuplicateBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("duplicate board: %w", err)
	}
	return jsonResult(board)
}

func (s *Server) handleDeleteBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID := req.GetString("boardId", "")
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	objects, err := s.ws.BoardObjects(boardID)
	if err != nil {
		return nil, fmt.Errorf("delete board: %w", err)
	}
	ids := make([]string, len(objects))
	for i, o := range objects {
		ids[i] = o.ID
	}
	desc := fmt.Sprintf("Delete board %s with %d element(s)", boardID, len(objects))
	if err := s.confirm("delete_board", desc, ids...); err != nil {
		return nil, err
	}
	if err := s.ws.DeleteBoard(ctx, boardID); err != nil {
		return nil, fmt.Errorf("delete board: %w", err)
	}
	return textResult(fmt.Sprintf("Board %s deleted", boardID)), nil
}

func (s *Server) handleClearBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := len(s.ws.Boards())
	if n == 0 {
		return textResult("No boards to clear"), nil
	}
	if err := s.confirm("clear_boards", fmt.Sprintf("Delete all %d board(s)", n)); err != nil {
		return nil, err
	}
	s.ws.ClearBoards(ctx)
	return textResult(fmt.Sprintf("Cleared %d board(s)", n)), nil
}
