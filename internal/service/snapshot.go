package service

import (
	"encoding/json"
	"fmt"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// Snapshot is the full editable state: board metadata plus the root
// stack in paint order. Frames carry their board id and their registered
// children; other root entries are registered elements. Guidelines are
// not part of it.
type Snapshot struct {
	ActiveBoardID string           `json:"activeBoardId,omitempty"`
	Boards        []domain.Board   `json:"boards"`
	Root          []scene.NodeData `json:"root"`
}

// capture encodes the current state. Unregistered nodes (guidelines, a
// polygon being drawn) are skipped.
func (w *Workspace) capture() Snapshot {
	snap := Snapshot{ActiveBoardID: w.boards.ActiveID(), Boards: []domain.Board{}, Root: []scene.NodeData{}}
	for _, b := range w.boards.List() {
		snap.Boards = append(snap.Boards, *b)
	}
	for _, n := range w.tree.Root().Children() {
		if b := w.boards.ByFrame(n); b != nil {
			d := scene.Encode(n)
			d.BoardID = b.ID
			d.Children = w.encodeRegistered(n)
			snap.Root = append(snap.Root, d)
			continue
		}
		if obj, ok := w.registry.Lookup(n); ok {
			d := scene.Encode(n)
			d.ID = obj.ID
			snap.Root = append(snap.Root, d)
		}
	}
	return snap
}

func (w *Workspace) encodeRegistered(frame *scene.Node) []scene.NodeData {
	var out []scene.NodeData
	for _, c := range frame.Children() {
		obj, ok := w.registry.Lookup(c)
		if !ok {
			continue
		}
		d := scene.Encode(c)
		d.ID = obj.ID
		out = append(out, d)
	}
	return out
}

func (w *Workspace) captureJSON() ([]byte, error) {
	return json.Marshal(w.capture())
}

// restore rebuilds boards, frames and registered elements from snap,
// keeping registry ids. Selection and group editing are reset.
func (w *Workspace) restore(snap Snapshot) error {
	meta := make(map[string]domain.Board, len(snap.Boards))
	for _, b := range snap.Boards {
		meta[b.ID] = b
	}

	// decode everything before touching live state
	type entry struct {
		node *scene.Node
		data scene.NodeData
	}
	entries := make([]entry, 0, len(snap.Root))
	for i, d := range snap.Root {
		n, err := w.codec.Decode(d)
		if err != nil {
			return fmt.Errorf("restore root entry %d: %w", i, err)
		}
		if d.BoardID != "" {
			if _, ok := meta[d.BoardID]; !ok {
				return fmt.Errorf("restore root entry %d: unknown board %s", i, d.BoardID)
			}
		}
		entries = append(entries, entry{node: n, data: d})
	}

	w.tools.CancelPolygon()
	w.editor.Cancel()
	w.groups.ExitGroupEdit()
	w.menu.Hide()

	root := w.tree.Root()
	for _, n := range root.Children() {
		if w.boards.ByFrame(n) != nil || w.registry.Has(n) {
			root.Remove(n)
		}
	}
	w.registry.Clear()

	frames := make(map[string]*scene.Node)
	for _, e := range entries {
		_ = root.Add(e.node)
		if e.data.BoardID == "" {
			w.registry.RegisterWithID(e.data.ID, e.node)
			continue
		}
		frames[e.data.BoardID] = e.node
		for i, c := range e.node.Children() {
			w.registry.RegisterWithID(e.data.Children[i].ID, c)
		}
	}

	boards := make([]*domain.Board, 0, len(snap.Boards))
	for _, b := range snap.Boards {
		b := b
		b.Frame = frames[b.ID]
		if b.Frame == nil {
			// board without a stored frame: recreate an empty one
			f := scene.NewNode(scene.TagFrame)
			f.X, f.Y, f.Width, f.Height = b.X, b.Y, b.Width, b.Height
			if b.BackgroundColor != domain.TransparentBackground {
				f.Fill = b.BackgroundColor
			}
			_ = root.Add(f)
			b.Frame = f
		}
		boards = append(boards, &b)
	}
	w.boards.restore(boards, snap.ActiveBoardID)
	w.guides.Raise()
	return nil
}
