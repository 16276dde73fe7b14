package mcpserver

import (
	"context"
	"fmt"

	"whiteboard/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGuidelineTools() {
	s.mcp.AddTool(mcp.NewTool("add_guideline",
		mcp.WithDescription("Add a reference line across the whole canvas"),
		mcp.WithString("orientation",
			mcp.Description("horizontal or vertical"),
			mcp.Required(),
			mcp.Enum(string(domain.Horizontal), string(domain.Vertical)),
		),
		mcp.WithNumber("position", mcp.Description("Y for horizontal lines, X for vertical ones"), mcp.Required()),
	), s.handleAddGuideline)

	s.mcp.AddTool(mcp.NewTool("move_guideline",
		mcp.WithDescription("Move a guideline along its axis"),
		mcp.WithString("guidelineId", mcp.Description("Guideline ID"), mcp.Required()),
		mcp.WithNumber("position", mcp.Description("New position"), mcp.Required()),
	), s.handleMoveGuideline)

	s.mcp.AddTool(mcp.NewTool("remove_guideline",
		mcp.WithDescription("Remove one guideline"),
		mcp.WithString("guidelineId", mcp.Description("Guideline ID"), mcp.Required()),
	), s.handleRemoveGuideline)

	s.mcp.AddTool(mcp.NewTool("clear_guidelines",
		mcp.WithDescription("Remove every guideline"),
	), s.handleClearGuidelines)

	s.mcp.AddTool(mcp.NewTool("set_guidelines_visible",
		mcp.WithDescription("Show or hide all guidelines. Hidden guidelines give no snap positions."),
		mcp.WithBoolean("visible", mcp.Description("Visibility"), mcp.Required()),
	), s.handleSetGuidelinesVisible)

	s.mcp.AddTool(mcp.NewTool("list_guidelines",
		mcp.WithDescription("List guidelines and the current snap positions"),
	), s.handleListGuidelines)
}

func (s *Server) handleAddGuideline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	o := domain.Orientation(req.GetString("orientation", ""))
	position := getFloat(req.GetArguments(), "position", 0)
	id, err := s.ws.AddGuideline(ctx, o, position)
	if err != nil {
		return nil, err
	}
	return jsonResult(domain.Guideline{ID: id, Orientation: o, Position: position})
}

func (s *Server) handleMoveGuideline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("guidelineId", "")
	position := getFloat(req.GetArguments(), "position", 0)
	if !s.ws.MoveGuideline(ctx, id, position) {
		return nil, fmt.Errorf("guideline %s not found", id)
	}
	return textResult(fmt.Sprintf("Guideline %s moved to %.0f", id, position)), nil
}

func (s *Server) handleRemoveGuideline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("guidelineId", "")
	if !s.ws.RemoveGuideline(ctx, id) {
		return nil, fmt.Errorf("guideline %s not found", id)
	}
	return textResult(fmt.Sprintf("Guideline %s removed", id)), nil
}

func (s *Server) handleClearGuidelines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ws.ClearGuidelines(ctx)
	return textResult("Guidelines cleared"), nil
}

func (s *Server) handleSetGuidelinesVisible(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	visible := getBool(req.GetArguments(), "visible", true)
	s.ws.SetGuidelinesVisible(ctx, visible)
	return textResult(fmt.Sprintf("Guidelines visible: %t", visible)), nil
}

type guidelineList struct {
	Guidelines []domain.Guideline   `json:"guidelines"`
	Snap       domain.SnapPositions `json:"snap"`
}

func (s *Server) handleListGuidelines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(guidelineList{Guidelines: s.ws.Guidelines(), Snap: s.ws.SnapPositions()})
}
