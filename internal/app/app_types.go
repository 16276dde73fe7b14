package app

import (
	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

// SelectionView is the frontend view of the current selection.
type SelectionView struct {
	Objects []domain.ObjectInfo    `json:"objects"`
	State   service.SelectionState `json:"state"`
}

// GuidelineView pairs the guidelines with the positions elements snap to.
type GuidelineView struct {
	Guidelines []domain.Guideline   `json:"guidelines"`
	Snap       domain.SnapPositions `json:"snap"`
}
