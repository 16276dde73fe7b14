package app

import (
	"whiteboard/internal/domain"
)

// ============================================================
// Boards
// ============================================================

func (a *App) ListBoards() []domain.Board {
	return a.stack.ws.Boards()
}

func (a *App) BoardPresets() []domain.BoardPreset {
	return domain.BoardPresets
}

func (a *App) CreateBoard(opts domain.CreateBoardOptions) domain.Board {
	return a.stack.ws.CreateBoard(a.ctx, opts)
}

func (a *App) UpdateBoard(id string, opts domain.UpdateBoardOptions) (domain.Board, error) {
	return a.stack.ws.UpdateBoard(a.ctx, id, opts)
}

func (a *App) SetActiveBoard(id string) error {
	return a.stack.ws.SetActiveBoard(a.ctx, id)
}

func (a *App) DuplicateBoard(id string) (domain.Board, error) {
	return a.stack.ws.DuplicateBoard(a.ctx, id)
}

func (a *App) DeleteBoard(id string) error {
	return a.stack.ws.DeleteBoard(a.ctx, id)
}

func (a *App) ClearBoards() {
	a.stack.ws.ClearBoards(a.ctx)
}

// GetBoardObjects lists the elements contained by a board.
func (a *App) GetBoardObjects(boardID string) ([]domain.ObjectInfo, error) {
	return a.stack.ws.BoardObjects(boardID)
}
