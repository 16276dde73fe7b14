package service

import (
	"errors"
	"fmt"
	"log"

	"whiteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// History: snapshot sink fed once per committed mutation
// ─────────────────────────────────────────────────────────────

// History receives one call per committed logical mutation, after the
// scene, registry and boards agree again.
type History interface {
	AddSnapshot()
}

// MockHistory counts snapshots for tests.
type MockHistory struct {
	Snapshots int
}

func (m *MockHistory) AddSnapshot() { m.Snapshots++ }

// SnapshotSource captures the current editable state as JSON.
type SnapshotSource func() ([]byte, error)

// UndoHistory persists snapshots into an undo tree keyed by document.
type UndoHistory struct {
	store  *storage.UndoStore
	docID  string
	source SnapshotSource
	label  string
}

func NewUndoHistory(store *storage.UndoStore, docID string) *UndoHistory {
	return &UndoHistory{store: store, docID: docID, label: "edit"}
}

// Attach sets the state source and records a baseline entry when the
// document has no history yet.
func (h *UndoHistory) Attach(source SnapshotSource) error {
	h.source = source
	if _, err := h.store.Current(h.docID); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNoHistory) {
		return fmt.Errorf("attach history: %w", err)
	}
	data, err := source()
	if err != nil {
		return fmt.Errorf("attach history: %w", err)
	}
	if _, err := h.store.PushNode(h.docID, "initial", string(data)); err != nil {
		return fmt.Errorf("attach history: %w", err)
	}
	return nil
}

// SetLabel names the entry recorded by the next AddSnapshot.
func (h *UndoHistory) SetLabel(label string) {
	h.label = label
}

func (h *UndoHistory) AddSnapshot() {
	if h.source == nil {
		return
	}
	data, err := h.source()
	if err != nil {
		log.Printf("[HISTORY] capture failed: %v", err)
		return
	}
	if _, err := h.store.PushNode(h.docID, h.label, string(data)); err != nil {
		log.Printf("[HISTORY] push failed: %v", err)
	}
	h.label = "edit"
}

// Undo steps back and returns the snapshot to restore.
func (h *UndoHistory) Undo() ([]byte, error) {
	n, err := h.store.Undo(h.docID)
	if err != nil {
		return nil, err
	}
	return []byte(n.SnapshotJSON), nil
}

// Redo steps forward and returns the snapshot to restore.
func (h *UndoHistory) Redo() ([]byte, error) {
	n, err := h.store.Redo(h.docID)
	if err != nil {
		return nil, err
	}
	return []byte(n.SnapshotJSON), nil
}

// Tree returns the persisted history of the document.
func (h *UndoHistory) Tree() (*storage.UndoTree, error) {
	return h.store.LoadTree(h.docID)
}
