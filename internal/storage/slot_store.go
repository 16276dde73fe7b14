package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SlotStore implements domain.SlotStore using SQLite.
type SlotStore struct {
	db *DB
}

func NewSlotStore(db *DB) *SlotStore {
	return &SlotStore{db: db}
}

func (s *SlotStore) GetSlot(key string) (string, bool, error) {
	var value string
	err := s.db.conn.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get slot %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SlotStore) SetSlot(key, value string) error {
	_, err := s.db.conn.Exec(
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}
