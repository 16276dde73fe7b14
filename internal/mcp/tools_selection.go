package mcpserver

import (
	"context"
	"fmt"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSelectionTools() {
	// ── select_objects ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_objects",
		mcp.WithDescription("Replace the selection. Selection-based tools (copy, group, lock, delete_selection) act on it."),
		mcp.WithString("objectIds", mcp.Description("Comma-separated object IDs"), mcp.Required()),
	), s.handleSelectObjects)

	s.mcp.AddTool(mcp.NewTool("select_all",
		mcp.WithDescription("Select every element in the current editing context"),
	), s.handleSelectAll)

	s.mcp.AddTool(mcp.NewTool("clear_selection",
		mcp.WithDescription("Deselect everything"),
	), s.handleClearSelection)

	// ── get_selection ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_selection",
		mcp.WithDescription("Get the selected elements and which actions are available for them"),
	), s.handleGetSelection)

	// ── copy / paste ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("copy_selection",
		mcp.WithDescription("Copy the selected elements to the clipboard"),
	), s.handleCopySelection)

	s.mcp.AddTool(mcp.NewTool("paste",
		mcp.WithDescription("Paste the clipboard into the active board, offset from the copied position. Reports entries that could not be pasted."),
	), s.handlePaste)

	// ── delete_selection (destructive) ─────────────────
	s.mcp.AddTool(mcp.NewTool("delete_selection",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete the selected elements, locked ones included. Requires user approval."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteSelection)

	// ── lock / unlock ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("lock_selection",
		mcp.WithDescription("Lock the selected elements against moving and editing"),
	), s.handleLockSelection)

	s.mcp.AddTool(mcp.NewTool("unlock_selection",
		mcp.WithDescription("Unlock the selected elements"),
	), s.handleUnlockSelection)

	s.mcp.AddTool(mcp.NewTool("unlock_object",
		mcp.WithDescription("Unlock one element by id"),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
	), s.handleUnlockObject)

	s.mcp.AddTool(mcp.NewTool("list_locked",
		mcp.WithDescription("List locked elements"),
	), s.handleListLocked)

	// ── group / ungroup ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("group_selection",
		mcp.WithDescription("Group the selected elements. Needs two or more unlocked siblings."),
	), s.handleGroupSelection)

	s.mcp.AddTool(mcp.NewTool("ungroup_selection",
		mcp.WithDescription("Dissolve the selected group, keeping its children in place"),
	), s.handleUngroupSelection)

	// ── z-order / visibility ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_layer",
		mcp.WithDescription("Change an element's stacking order among its siblings"),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithString("op",
			mcp.Description("forward, backward, front or back"),
			mcp.Required(),
			mcp.Enum(string(service.LayerForward), string(service.LayerBackward), string(service.LayerFront), string(service.LayerBack)),
		),
	), s.handleArrangeLayer)

	s.mcp.AddTool(mcp.NewTool("reorder_object",
		mcp.WithDescription("Move an element to a stacking index among its siblings (0 is the bottom)"),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Target index"), mcp.Required()),
	), s.handleReorderObject)

	s.mcp.AddTool(mcp.NewTool("toggle_visibility",
		mcp.WithDescription("Show or hide an element"),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
	), s.handleToggleVisibility)
}

func (s *Server) handleSelectObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitIDs(req.GetString("objectIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("objectIds is required")
	}
	if err := s.ws.Select(ctx, ids...); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return textResult(fmt.Sprintf("Selected %d element(s)", len(ids))), nil
}

func (s *Server) handleSelectAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := s.ws.SelectAll(ctx)
	return textResult(fmt.Sprintf("Selected %d element(s)", n)), nil
}

func (s *Server) handleClearSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ws.ClearSelection(ctx)
	return textResult("Selection cleared"), nil
}

type selectionResult struct {
	Objects []domain.ObjectInfo    `json:"objects"`
	State   service.SelectionState `json:"state"`
}

func (s *Server) handleGetSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(selectionResult{Objects: s.ws.Selection(), State: s.ws.SelectionState()})
}

func (s *Server) handleCopySelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.ws.Copy(ctx)
	if err != nil {
		return nil, fmt.Errorf("copy: %w", err)
	}
	if n == 0 {
		return textResult("Nothing selected to copy"), nil
	}
	return textResult(fmt.Sprintf("Copied %d element(s)", n)), nil
}

func (s *Server) handlePaste(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := s.ws.Paste(ctx)
	if report.IDs == nil {
		report.IDs = []string{}
	}
	return jsonResult(report)
}

func (s *Server) handleDeleteSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selected := s.ws.Selection()
	if len(selected) == 0 {
		return textResult("Nothing selected"), nil
	}
	ids := make([]string, len(selected))
	for i, o := range selected {
		ids[i] = o.ID
	}
	if err := s.confirm("delete_selection", fmt.Sprintf("Delete %d selected element(s)", len(ids)), ids...); err != nil {
		return nil, err
	}
	n := s.ws.DeleteSelection(ctx)
	return textResult(fmt.Sprintf("Deleted %d element(s)", n)), nil
}

func (s *Server) handleLockSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(fmt.Sprintf("Locked %d element(s)", s.ws.Lock(ctx))), nil
}

func (s *Server) handleUnlockSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(fmt.Sprintf("Unlocked %d element(s)", s.ws.Unlock(ctx))), nil
}

func (s *Server) handleUnlockObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("objectId", "")
	if err := s.ws.UnlockObject(ctx, id); err != nil {
		return nil, fmt.Errorf("unlock: %w", err)
	}
	return textResult(fmt.Sprintf("Unlocked %s", id)), nil
}

func (s *Server) handleListLocked(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.ws.LockedObjects())
}

func (s *Server) handleGroupSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group, ok := s.ws.Group(ctx)
	if !ok {
		return nil, fmt.Errorf("cannot group: select two or more unlocked elements that share a parent")
	}
	return jsonResult(group)
}

func (s *Server) handleUngroupSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	children, ok := s.ws.Ungroup(ctx)
	if !ok {
		return nil, fmt.Errorf("cannot ungroup: select exactly one unlocked group")
	}
	return jsonResult(children)
}

func (s *Server) handleArrangeLayer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("objectId", "")
	moved, err := s.ws.Arrange(ctx, id, service.LayerOp(req.GetString("op", "")))
	if err != nil {
		return nil, err
	}
	if !moved {
		return textResult(fmt.Sprintf("%s is already in place", id)), nil
	}
	return s.objectResult(id)
}

func (s *Server) handleReorderObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("objectId", "")
	index := int(getFloat(req.GetArguments(), "index", -1))
	moved, err := s.ws.ReorderObject(ctx, id, index)
	if err != nil {
		return nil, err
	}
	if !moved {
		return textResult(fmt.Sprintf("%s was not moved", id)), nil
	}
	return s.objectResult(id)
}

func (s *Server) handleToggleVisibility(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("objectId", "")
	visible, err := s.ws.ToggleVisibility(ctx, id)
	if err != nil {
		return nil, err
	}
	if visible {
		return textResult(fmt.Sprintf("%s is visible", id)), nil
	}
	return textResult(fmt.Sprintf("%s is hidden", id)), nil
}

func (s *Server) objectResult(id string) (*mcp.CallToolResult, error) {
	info, err := s.ws.Object(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(info)
}
