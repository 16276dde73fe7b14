package domain

import (
	"encoding/json"
	"time"
)

// SlotStore is a string-keyed single-value store. Set overwrites.
type SlotStore interface {
	GetSlot(key string) (string, bool, error)
	SetSlot(key, value string) error
}

// Document is one persisted snapshot of a whiteboard.
type Document struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	State     json.RawMessage `json:"state"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type DocumentStore interface {
	SaveDocument(d *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments() ([]Document, error)
	DeleteDocument(id string) error
}
