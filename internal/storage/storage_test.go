package storage_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"whiteboard/internal/domain"
	"whiteboard/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "whiteboard.db"), filepath.Join(dir, "data"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_MigrateTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whiteboard.db")

	db, err := storage.New(path, dir)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// ALTER TABLE migrations must tolerate an existing column
	db, err = storage.New(path, dir)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestUndoStore_UndoRedo(t *testing.T) {
	s := storage.NewUndoStore(openDB(t), 0)

	_, err := s.Undo("doc")
	require.ErrorIs(t, err, storage.ErrNoHistory)

	a, err := s.PushNode("doc", "initial", `{"n":0}`)
	require.NoError(t, err)
	require.Nil(t, a.ParentID)

	b, err := s.PushNode("doc", "group", `{"n":1}`)
	require.NoError(t, err)
	require.NotNil(t, b.ParentID)
	require.Equal(t, a.ID, *b.ParentID)

	back, err := s.Undo("doc")
	require.NoError(t, err)
	require.Equal(t, a.ID, back.ID)
	require.Equal(t, `{"n":0}`, back.SnapshotJSON)

	_, err = s.Undo("doc")
	require.True(t, errors.Is(err, storage.ErrNoHistory))

	fwd, err := s.Redo("doc")
	require.NoError(t, err)
	require.Equal(t, b.ID, fwd.ID)

	_, err = s.Redo("doc")
	require.ErrorIs(t, err, storage.ErrNoHistory)
}

func TestUndoStore_BranchRedoFollowsNewest(t *testing.T) {
	s := storage.NewUndoStore(openDB(t), 0)

	_, err := s.PushNode("doc", "initial", "0")
	require.NoError(t, err)
	_, err = s.PushNode("doc", "a", "1")
	require.NoError(t, err)
	_, err = s.Undo("doc")
	require.NoError(t, err)
	c, err := s.PushNode("doc", "b", "2")
	require.NoError(t, err)

	_, err = s.Undo("doc")
	require.NoError(t, err)
	fwd, err := s.Redo("doc")
	require.NoError(t, err)
	require.Equal(t, c.ID, fwd.ID)

	tree, err := s.LoadTree("doc")
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 3)
	require.Equal(t, c.ID, tree.CurrentID)
}

func TestUndoStore_Prune(t *testing.T) {
	s := storage.NewUndoStore(openDB(t), 5)
	var last *storage.UndoNode
	for i := 0; i < 12; i++ {
		n, err := s.PushNode("doc", fmt.Sprintf("step %d", i), fmt.Sprint(i))
		require.NoError(t, err)
		last = n
	}

	tree, err := s.LoadTree("doc")
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 5)
	require.Equal(t, last.ID, tree.CurrentID)

	// the chain stays walkable back to the surviving oldest entry
	steps := 0
	for {
		if _, err := s.Undo("doc"); err != nil {
			require.ErrorIs(t, err, storage.ErrNoHistory)
			break
		}
		steps++
	}
	require.Equal(t, 4, steps)
}

func TestUndoStore_ClearDocument(t *testing.T) {
	s := storage.NewUndoStore(openDB(t), 0)
	_, err := s.PushNode("doc", "initial", "{}")
	require.NoError(t, err)
	_, err = s.PushNode("other", "initial", "{}")
	require.NoError(t, err)

	require.NoError(t, s.ClearDocument("doc"))

	tree, err := s.LoadTree("doc")
	require.NoError(t, err)
	require.Nil(t, tree)

	tree, err = s.LoadTree("other")
	require.NoError(t, err)
	require.NotNil(t, tree)
}

func TestSlotStores(t *testing.T) {
	stores := map[string]domain.SlotStore{
		"sqlite": storage.NewSlotStore(openDB(t)),
		"memory": storage.NewMemorySlots(0),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.GetSlot("clip")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.SetSlot("clip", "first"))
			require.NoError(t, s.SetSlot("clip", "second"))

			v, ok, err := s.GetSlot("clip")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "second", v)
		})
	}
}

func TestDocumentStore(t *testing.T) {
	s := storage.NewDocumentStore(openDB(t))

	_, err := s.GetDocument("missing")
	require.ErrorIs(t, err, storage.ErrDocumentNotFound)

	doc := &domain.Document{ID: "default", Label: "autosave", State: json.RawMessage(`{"boards":[]}`)}
	require.NoError(t, s.SaveDocument(doc))
	doc.State = json.RawMessage(`{"boards":[{"id":"b1"}]}`)
	require.NoError(t, s.SaveDocument(doc))

	got, err := s.GetDocument("default")
	require.NoError(t, err)
	require.JSONEq(t, `{"boards":[{"id":"b1"}]}`, string(got.State))
	require.Equal(t, "autosave", got.Label)

	list, err := s.ListDocuments()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteDocument("default"))
	_, err = s.GetDocument("default")
	require.ErrorIs(t, err, storage.ErrDocumentNotFound)
}
