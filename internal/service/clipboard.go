package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ClipboardKey is the slot holding the copied payload.
const ClipboardKey = "whiteboard:clipboard"

// DefaultPasteOffset shifts pasted elements so they do not cover the
// originals exactly.
const DefaultPasteOffset = 20

// Clipboard stores one JSON array of encoded nodes in a single slot.
// Every copy overwrites it.
type Clipboard struct {
	slots  domain.SlotStore
	key    string
	offset float64
}

func NewClipboard(slots domain.SlotStore, offset float64) *Clipboard {
	return &Clipboard{slots: slots, key: ClipboardKey, offset: offset}
}

// Offset is the delta applied to each pasted entry on both axes.
func (c *Clipboard) Offset() float64 { return c.offset }

// SetOffset changes the paste delta (live config reload).
func (c *Clipboard) SetOffset(v float64) { c.offset = v }

// Write encodes nodes and replaces the slot content.
func (c *Clipboard) Write(nodes []*scene.Node) error {
	payload := make([]scene.NodeData, 0, len(nodes))
	for _, n := range nodes {
		payload = append(payload, scene.Encode(n))
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode clipboard: %w", err)
	}
	if err := c.slots.SetSlot(c.key, string(data)); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Read returns the raw entries of the payload. An empty slot yields no
// entries and no error.
func (c *Clipboard) Read() ([]json.RawMessage, error) {
	raw, ok, err := c.slots.GetSlot(c.key)
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse clipboard: %w", err)
	}
	return entries, nil
}
