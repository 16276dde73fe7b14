package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNoHistory is returned when an undo or redo step has nowhere to go.
var ErrNoHistory = errors.New("no history entry")

// DefaultMaxUndoNodes bounds the history kept per document.
const DefaultMaxUndoNodes = 40

// UndoNode represents a single undo history entry.
type UndoNode struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"documentId"`
	ParentID     *string   `json:"parentId"`
	Label        string    `json:"label"`
	SnapshotJSON string    `json:"snapshotJson"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UndoTree is the full history of one document.
type UndoTree struct {
	Nodes     []UndoNode `json:"nodes"`
	CurrentID string     `json:"currentId"`
	RootID    string     `json:"rootId"`
}

// UndoStore manages undo history in SQLite. Pushing under a node that
// already has children starts a new branch; redo follows the newest one.
type UndoStore struct {
	db       *DB
	maxNodes int
}

func NewUndoStore(db *DB, maxNodes int) *UndoStore {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxUndoNodes
	}
	return &UndoStore{db: db, maxNodes: maxNodes}
}

const undoNodeColumns = `id, document_id, parent_id, label, snapshot_json, created_at`

func scanUndoNode(row interface{ Scan(...any) error }) (*UndoNode, error) {
	var n UndoNode
	if err := row.Scan(&n.ID, &n.DocumentID, &n.ParentID, &n.Label, &n.SnapshotJSON, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// LoadTree returns the full undo tree for a document, or nil if it has
// no history yet.
func (s *UndoStore) LoadTree(docID string) (*UndoTree, error) {
	rows, err := s.db.Conn().Query(
		`SELECT `+undoNodeColumns+`
		 FROM undo_nodes WHERE document_id = ? ORDER BY created_at ASC, rowid ASC`, docID,
	)
	if err != nil {
		return nil, fmt.Errorf("load undo nodes: %w", err)
	}
	defer rows.Close()

	var nodes []UndoNode
	var rootID string
	for rows.Next() {
		n, err := scanUndoNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan undo node: %w", err)
		}
		if n.ParentID == nil && rootID == "" {
			rootID = n.ID
		}
		nodes = append(nodes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, nil
	}

	currentID, err := s.currentID(docID)
	if err != nil {
		currentID = rootID
	}

	return &UndoTree{
		Nodes:     nodes,
		CurrentID: currentID,
		RootID:    rootID,
	}, nil
}

// PushNode records a new snapshot as a child of the current node and
// makes it current.
func (s *UndoStore) PushNode(docID, label, snapshotJSON string) (*UndoNode, error) {
	now := time.Now()
	nodeID := uuid.New().String()

	var pID *string
	if cur, err := s.currentID(docID); err == nil {
		pID = &cur
	}

	_, err := s.db.Conn().Exec(
		`INSERT INTO undo_nodes (id, document_id, parent_id, label, snapshot_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nodeID, docID, pID, label, snapshotJSON, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert undo node: %w", err)
	}

	if err := s.GoTo(docID, nodeID); err != nil {
		return nil, fmt.Errorf("update undo state: %w", err)
	}

	s.pruneIfNeeded(docID)

	return &UndoNode{
		ID:           nodeID,
		DocumentID:   docID,
		ParentID:     pID,
		Label:        label,
		SnapshotJSON: snapshotJSON,
		CreatedAt:    now,
	}, nil
}

// Current returns the node the document currently sits on.
func (s *UndoStore) Current(docID string) (*UndoNode, error) {
	id, err := s.currentID(docID)
	if err != nil {
		return nil, err
	}
	return s.node(id)
}

// Undo moves to the parent of the current node and returns it.
func (s *UndoStore) Undo(docID string) (*UndoNode, error) {
	cur, err := s.Current(docID)
	if err != nil {
		return nil, err
	}
	if cur.ParentID == nil {
		return nil, ErrNoHistory
	}
	parent, err := s.node(*cur.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.GoTo(docID, parent.ID); err != nil {
		return nil, err
	}
	return parent, nil
}

// Redo moves to the newest child of the current node and returns it.
func (s *UndoStore) Redo(docID string) (*UndoNode, error) {
	curID, err := s.currentID(docID)
	if err != nil {
		return nil, err
	}
	child, err := scanUndoNode(s.db.Conn().QueryRow(
		`SELECT `+undoNodeColumns+` FROM undo_nodes
		 WHERE document_id = ? AND parent_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, docID, curID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("load redo node: %w", err)
	}
	if err := s.GoTo(docID, child.ID); err != nil {
		return nil, err
	}
	return child, nil
}

// GoTo updates the current position pointer.
func (s *UndoStore) GoTo(docID, nodeID string) error {
	_, err := s.db.Conn().Exec(
		`INSERT INTO undo_state (document_id, current_node_id) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET current_node_id = excluded.current_node_id`,
		docID, nodeID,
	)
	return err
}

// ClearDocument removes all undo data for a document.
func (s *UndoStore) ClearDocument(docID string) error {
	_, _ = s.db.Conn().Exec(`DELETE FROM undo_state WHERE document_id = ?`, docID)
	_, err := s.db.Conn().Exec(`DELETE FROM undo_nodes WHERE document_id = ?`, docID)
	return err
}

func (s *UndoStore) currentID(docID string) (string, error) {
	var id string
	err := s.db.Conn().QueryRow(
		`SELECT current_node_id FROM undo_state WHERE document_id = ?`, docID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoHistory
	}
	return id, err
}

func (s *UndoStore) node(id string) (*UndoNode, error) {
	n, err := scanUndoNode(s.db.Conn().QueryRow(
		`SELECT `+undoNodeColumns+` FROM undo_nodes WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("load undo node: %w", err)
	}
	return n, nil
}

// pruneIfNeeded removes oldest nodes when count exceeds maxNodes.
func (s *UndoStore) pruneIfNeeded(docID string) {
	var count int
	s.db.Conn().QueryRow(`SELECT COUNT(*) FROM undo_nodes WHERE document_id = ?`, docID).Scan(&count)
	if count <= s.maxNodes {
		return
	}

	toDelete := count - s.maxNodes

	// Read current node before opening the rows cursor (single connection)
	currentID, _ := s.currentID(docID)

	rows, err := s.db.Conn().Query(
		`SELECT id FROM undo_nodes WHERE document_id = ?
		 ORDER BY created_at ASC, rowid ASC LIMIT ?`, docID, toDelete,
	)
	if err != nil {
		return
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		if id != currentID {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		var parentID sql.NullString
		s.db.Conn().QueryRow(`SELECT parent_id FROM undo_nodes WHERE id = ?`, id).Scan(&parentID)

		if parentID.Valid {
			s.db.Conn().Exec(
				`UPDATE undo_nodes SET parent_id = ? WHERE parent_id = ?`,
				parentID.String, id,
			)
		} else {
			s.db.Conn().Exec(
				`UPDATE undo_nodes SET parent_id = NULL WHERE parent_id = ?`, id,
			)
		}

		s.db.Conn().Exec(`DELETE FROM undo_nodes WHERE id = ?`, id)
	}
}
