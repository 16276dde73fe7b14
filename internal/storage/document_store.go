package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"whiteboard/internal/domain"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore implements domain.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) SaveDocument(d *domain.Document) error {
	d.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`INSERT INTO documents (id, label, state_json, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label = excluded.label,
		 state_json = excluded.state_json, updated_at = excluded.updated_at`,
		d.ID, d.Label, string(d.State), d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *DocumentStore) GetDocument(id string) (*domain.Document, error) {
	d := &domain.Document{}
	var state string
	err := s.db.conn.QueryRow(
		`SELECT id, label, state_json, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Label, &state, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.State = []byte(state)
	return d, nil
}

func (s *DocumentStore) ListDocuments() ([]domain.Document, error) {
	rows, err := s.db.conn.Query(`SELECT id, label, state_json, updated_at FROM documents ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		var state string
		if err := rows.Scan(&d.ID, &d.Label, &state, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.State = []byte(state)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) DeleteDocument(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}
