package app

import (
	"whiteboard/internal/domain"
)

// ============================================================
// Guidelines
// ============================================================

func (a *App) AddGuideline(orientation string, position float64) (string, error) {
	return a.stack.ws.AddGuideline(a.ctx, domain.Orientation(orientation), position)
}

func (a *App) RemoveGuideline(id string) bool {
	return a.stack.ws.RemoveGuideline(a.ctx, id)
}

func (a *App) ClearGuidelines() {
	a.stack.ws.ClearGuidelines(a.ctx)
}

func (a *App) ToggleGuidelines() bool {
	return a.stack.ws.ToggleGuidelines(a.ctx)
}

func (a *App) MoveGuideline(id string, position float64) bool {
	return a.stack.ws.MoveGuideline(a.ctx, id, position)
}

// DragGuideline follows a pointer drag on a guideline line.
func (a *App) DragGuideline(id string, dx, dy float64) bool {
	return a.stack.ws.DragGuideline(a.ctx, id, dx, dy)
}

// DoubleTapGuideline removes the guideline.
func (a *App) DoubleTapGuideline(id string) bool {
	return a.stack.ws.DoubleTapGuideline(a.ctx, id)
}

func (a *App) ListGuidelines() GuidelineView {
	return GuidelineView{
		Guidelines: a.stack.ws.Guidelines(),
		Snap:       a.stack.ws.SnapPositions(),
	}
}
