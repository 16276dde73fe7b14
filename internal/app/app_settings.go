package app

import (
	"fmt"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

// ============================================================
// Settings
// ============================================================

func (a *App) GetToolStyle() service.ToolStyle {
	return a.stack.ws.ToolStyle()
}

// SetToolStyle applies the style to new elements and keeps it for the
// next session.
func (a *App) SetToolStyle(style service.ToolStyle) error {
	a.stack.ws.SetToolStyle(style)
	return a.settings.SaveToolStyle(style)
}

func (a *App) SaveWindowSize(width, height int) error {
	return a.settings.SaveWindowSize(width, height)
}

// ============================================================
// MCP approvals
// ============================================================

// ListPendingMCPActions returns agent actions waiting for an answer.
func (a *App) ListPendingMCPActions() ([]domain.PendingAction, error) {
	return a.approvals.Pending()
}

func (a *App) ApproveMCPAction(id string) error {
	if err := a.approvals.Resolve(id, true); err != nil {
		return fmt.Errorf("approve %s: %w", id, err)
	}
	a.watcher.Forget(id)
	return nil
}

func (a *App) RejectMCPAction(id string) error {
	if err := a.approvals.Resolve(id, false); err != nil {
		return fmt.Errorf("reject %s: %w", id, err)
	}
	a.watcher.Forget(id)
	return nil
}
