package app

import (
	"errors"

	"whiteboard/internal/storage"
)

// ============================================================
// Undo Tree
// ============================================================

// Undo reports false when there is nothing to undo.
func (a *App) Undo() (bool, error) {
	return historyStep(a.stack.ws.Undo(a.ctx))
}

func (a *App) Redo() (bool, error) {
	return historyStep(a.stack.ws.Redo(a.ctx))
}

func historyStep(err error) (bool, error) {
	if errors.Is(err, storage.ErrNoHistory) {
		return false, nil
	}
	return err == nil, err
}

func (a *App) LoadUndoTree() (*storage.UndoTree, error) {
	return a.stack.history.Tree()
}

// SaveNow writes the document immediately instead of waiting for the
// autosave schedule.
func (a *App) SaveNow() (bool, error) {
	return a.stack.autosave.Save(a.ctx)
}

