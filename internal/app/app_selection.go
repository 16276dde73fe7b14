package app

import (
	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

// ============================================================
// Selection & context menu
// ============================================================

func (a *App) SelectObjects(ids []string) error {
	return a.stack.ws.Select(a.ctx, ids...)
}

func (a *App) SelectAll() int {
	return a.stack.ws.SelectAll(a.ctx)
}

func (a *App) ClearSelection() {
	a.stack.ws.ClearSelection(a.ctx)
}

func (a *App) GetSelection() SelectionView {
	return SelectionView{
		Objects: a.stack.ws.Selection(),
		State:   a.stack.ws.SelectionState(),
	}
}

// DragSelection applies a pointer drag delta to the selection.
func (a *App) DragSelection(dx, dy float64) int {
	return a.stack.ws.DragSelection(a.ctx, dx, dy)
}

func (a *App) ShowContextMenu(x, y, canvasX, canvasY float64) service.MenuState {
	return a.stack.ws.ShowMenu(x, y, canvasX, canvasY)
}

func (a *App) HideContextMenu() {
	a.stack.ws.HideMenu()
}

func (a *App) Copy() (int, error) {
	return a.stack.ws.Copy(a.ctx)
}

func (a *App) Paste() service.PasteReport {
	return a.stack.ws.Paste(a.ctx)
}

func (a *App) DeleteSelection() int {
	return a.stack.ws.DeleteSelection(a.ctx)
}

func (a *App) LockSelection() int {
	return a.stack.ws.Lock(a.ctx)
}

func (a *App) UnlockSelection() int {
	return a.stack.ws.Unlock(a.ctx)
}

func (a *App) ToggleSelectionLock() bool {
	return a.stack.ws.ToggleLock(a.ctx)
}

func (a *App) UnlockObject(id string) error {
	return a.stack.ws.UnlockObject(a.ctx, id)
}

func (a *App) ListLocked() []domain.ObjectInfo {
	return a.stack.ws.LockedObjects()
}

// GroupSelection returns the new group, or nil when the selection cannot
// be grouped.
func (a *App) GroupSelection() *domain.ObjectInfo {
	g, ok := a.stack.ws.Group(a.ctx)
	if !ok {
		return nil
	}
	return &g
}

func (a *App) UngroupSelection() []domain.ObjectInfo {
	children, _ := a.stack.ws.Ungroup(a.ctx)
	return children
}

func (a *App) EnterGroupEdit(id string) error {
	return a.stack.ws.EnterGroupEdit(id)
}

func (a *App) ExitGroupEdit() {
	a.stack.ws.ExitGroupEdit()
}

// ArrangeLayer runs forward, backward, front or back on one element.
func (a *App) ArrangeLayer(id, op string) (bool, error) {
	return a.stack.ws.Arrange(a.ctx, id, service.LayerOp(op))
}

func (a *App) ReorderObject(id string, index int) (bool, error) {
	return a.stack.ws.ReorderObject(a.ctx, id, index)
}

func (a *App) ToggleVisibility(id string) (bool, error) {
	return a.stack.ws.ToggleVisibility(a.ctx, id)
}

func (a *App) ToggleObjectLock(id string) (bool, error) {
	return a.stack.ws.ToggleObjectLock(a.ctx, id)
}
