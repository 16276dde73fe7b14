package service

import (
	"log"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Context Menu: selection-driven commands and derived state
// ─────────────────────────────────────────────────────────────

// MenuState is the context menu as last shown. Flags are captured at
// show time; the live equivalents are the ContextMenu query methods.
type MenuState struct {
	Show           bool        `json:"show"`
	X              float64     `json:"x"`
	Y              float64     `json:"y"`
	ClickX         float64     `json:"clickX"`
	ClickY         float64     `json:"clickY"`
	Target         *scene.Node `json:"-"`
	TargetID       string      `json:"targetId,omitempty"`
	HasSelection   bool        `json:"hasSelection"`
	SelectionCount int         `json:"selectionCount"`
	IsLocked       bool        `json:"isLocked"`
	AllLocked      bool        `json:"allLocked"`
	CanGroup       bool        `json:"canGroup"`
	CanUngroup     bool        `json:"canUngroup"`
}

// PasteFailure describes one clipboard entry that could not be rebuilt.
type PasteFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// PasteReport lists what a paste created and what it skipped.
type PasteReport struct {
	Objects  []*domain.Object `json:"-"`
	IDs      []string         `json:"ids"`
	Failures []PasteFailure   `json:"failures,omitempty"`
}

type ContextMenu struct {
	tree        *scene.Tree
	editor      *scene.Editor
	registry    *ObjectRegistry
	containment *Containment
	groups      *GroupEngine
	layers      *LayerControl
	clipboard   *Clipboard
	codec       *scene.Codec
	history     History

	state MenuState
}

func NewContextMenu(tree *scene.Tree, editor *scene.Editor, registry *ObjectRegistry, containment *Containment,
	groups *GroupEngine, layers *LayerControl, clipboard *Clipboard, codec *scene.Codec, history History) *ContextMenu {
	return &ContextMenu{
		tree:        tree,
		editor:      editor,
		registry:    registry,
		containment: containment,
		groups:      groups,
		layers:      layers,
		clipboard:   clipboard,
		codec:       codec,
		history:     history,
	}
}

// ── Derived state ──

func (m *ContextMenu) SelectionCount() int { return m.editor.Len() }
func (m *ContextMenu) HasSelection() bool  { return m.editor.Len() > 0 }

// IsLocked reports whether any selected node is locked.
func (m *ContextMenu) IsLocked() bool {
	for _, n := range m.editor.List() {
		if !n.Editable {
			return true
		}
	}
	return false
}

// AllLocked reports whether every selected node is locked.
func (m *ContextMenu) AllLocked() bool {
	sel := m.editor.List()
	if len(sel) == 0 {
		return false
	}
	for _, n := range sel {
		if n.Editable {
			return false
		}
	}
	return true
}

func (m *ContextMenu) CanGroup() bool   { return m.groups.CanGroup() }
func (m *ContextMenu) CanUngroup() bool { return m.groups.CanUngroup() }

func (m *ContextMenu) CanBringForward() bool {
	return m.state.Target != nil && m.layers.CanBringForward(m.state.Target)
}

func (m *ContextMenu) CanSendBackward() bool {
	return m.state.Target != nil && m.layers.CanSendBackward(m.state.Target)
}

// ── Menu ──

// Show opens the menu at screen (x, y). The target is the first selected
// node, or the topmost element under the canvas point.
func (m *ContextMenu) Show(x, y, canvasX, canvasY float64) MenuState {
	sel := m.editor.List()
	var target *scene.Node
	if len(sel) > 0 {
		target = sel[0]
	} else {
		target = m.FindElementAtPoint(canvasX, canvasY)
	}

	m.state = MenuState{
		Show:           true,
		X:              x,
		Y:              y,
		ClickX:         canvasX,
		ClickY:         canvasY,
		Target:         target,
		HasSelection:   len(sel) > 0,
		SelectionCount: len(sel),
		IsLocked:       m.IsLocked(),
		AllLocked:      m.AllLocked(),
		CanGroup:       m.CanGroup(),
		CanUngroup:     m.CanUngroup(),
	}
	if obj, ok := m.registry.Lookup(target); ok {
		m.state.TargetID = obj.ID
	}
	return m.state
}

func (m *ContextMenu) Hide() { m.state.Show = false }

func (m *ContextMenu) State() MenuState { return m.state }

// SetTarget points layer commands at n without opening the menu.
func (m *ContextMenu) SetTarget(n *scene.Node) {
	m.state.Target = n
	m.state.TargetID = ""
	if obj, ok := m.registry.Lookup(n); ok {
		m.state.TargetID = obj.ID
	}
}

// FindElementAtPoint returns the topmost visible registered element whose
// rendered box contains the world point.
func (m *ContextMenu) FindElementAtPoint(x, y float64) *scene.Node {
	var hit *scene.Node
	m.tree.Root().Walk(func(n *scene.Node) bool {
		if !n.Visible {
			return false
		}
		if m.registry.Has(n) {
			if n.Bounds().Contains(x, y) {
				hit = n
			}
			return false
		}
		return true
	})
	return hit
}

// ── Commands ──

// Copy writes the selection to the clipboard slot.
func (m *ContextMenu) Copy() (int, error) {
	defer m.Hide()
	sel := m.editor.List()
	if len(sel) == 0 {
		return 0, nil
	}
	if err := m.clipboard.Write(sel); err != nil {
		return 0, err
	}
	return len(sel), nil
}

// Paste rebuilds every clipboard entry offset by the paste delta into the
// insertion container. Bad entries are logged and skipped. One snapshot
// covers the batch when anything was pasted.
func (m *ContextMenu) Paste() PasteReport {
	defer m.Hide()
	var report PasteReport

	entries, err := m.clipboard.Read()
	if err != nil {
		log.Printf("[PASTE] %v", err)
		report.Failures = append(report.Failures, PasteFailure{Index: -1, Error: err.Error()})
		return report
	}
	if len(entries) == 0 {
		return report
	}

	container := m.containment.InsertionContainer()
	offset := m.clipboard.Offset()
	for i, raw := range entries {
		node, _, err := m.codec.DecodeJSON(raw)
		if err != nil {
			log.Printf("[PASTE] skip entry %d: %v", i, err)
			report.Failures = append(report.Failures, PasteFailure{Index: i, Error: err.Error()})
			continue
		}
		if !domain.ElementTypeOf(node).Valid() {
			log.Printf("[PASTE] skip entry %d: %s is not an element", i, node.Tag)
			report.Failures = append(report.Failures, PasteFailure{Index: i, Error: "not an element: " + string(node.Tag)})
			continue
		}
		node.X += offset
		node.Y += offset
		if err := container.Add(node); err != nil {
			log.Printf("[PASTE] skip entry %d: %v", i, err)
			report.Failures = append(report.Failures, PasteFailure{Index: i, Error: err.Error()})
			continue
		}
		obj := m.registry.Register(node)
		report.Objects = append(report.Objects, obj)
		report.IDs = append(report.IDs, obj.ID)
	}

	if len(report.Objects) > 0 {
		m.history.AddSnapshot()
	}
	return report
}

// Delete removes the selected elements from the registry and the scene.
// Selected group children (while editing a group) are detached from their
// group. Board frames are left alone; locked elements are deleted too.
func (m *ContextMenu) Delete() int {
	defer m.Hide()
	sel := m.editor.List()
	if len(sel) == 0 {
		return 0
	}

	removed := 0
	for _, n := range sel {
		if obj, ok := m.registry.Lookup(n); ok {
			m.registry.Delete(obj.ID)
			removed++
			continue
		}
		if IsGroup(n.Parent()) {
			n.Detach()
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	m.editor.Cancel()
	m.history.AddSnapshot()
	return removed
}

// SelectAll selects every registered element.
func (m *ContextMenu) SelectAll() int {
	defer m.Hide()
	nodes := m.registry.Nodes()
	if len(nodes) > 0 {
		m.editor.Select(nodes...)
	}
	return len(nodes)
}

// Lock marks the selection as not editable and clears the selection.
func (m *ContextMenu) Lock() int {
	defer m.Hide()
	sel := m.editor.List()
	if len(sel) == 0 {
		return 0
	}
	for _, n := range sel {
		n.Editable = false
	}
	m.editor.Cancel()
	m.history.AddSnapshot()
	return len(sel)
}

// Unlock marks the selection editable again.
func (m *ContextMenu) Unlock() int {
	defer m.Hide()
	sel := m.editor.List()
	if len(sel) == 0 {
		return 0
	}
	for _, n := range sel {
		n.Editable = true
	}
	m.history.AddSnapshot()
	return len(sel)
}

// ToggleLock unlocks the selection when all of it is locked and locks it
// otherwise. It reports the resulting lock state.
func (m *ContextMenu) ToggleLock() bool {
	if m.AllLocked() {
		m.Unlock()
		return false
	}
	return m.Lock() > 0
}

// UnlockElement unlocks a single element outside the selection.
func (m *ContextMenu) UnlockElement(n *scene.Node) bool {
	if n == nil {
		return false
	}
	n.Editable = true
	m.history.AddSnapshot()
	return true
}

// LockedElements lists the registered elements that are locked.
func (m *ContextMenu) LockedElements() []*domain.Object {
	var out []*domain.Object
	for _, obj := range m.registry.All() {
		if !obj.Node.Editable {
			out = append(out, obj)
		}
	}
	return out
}

func (m *ContextMenu) Group() *scene.Node {
	defer m.Hide()
	return m.groups.Group()
}

func (m *ContextMenu) Ungroup() []*scene.Node {
	defer m.Hide()
	return m.groups.Ungroup()
}

func (m *ContextMenu) BringForward() bool {
	defer m.Hide()
	return m.state.Target != nil && m.layers.BringForward(m.state.Target)
}

func (m *ContextMenu) SendBackward() bool {
	defer m.Hide()
	return m.state.Target != nil && m.layers.SendBackward(m.state.Target)
}

func (m *ContextMenu) BringToFront() bool {
	defer m.Hide()
	return m.state.Target != nil && m.layers.BringToFront(m.state.Target)
}

func (m *ContextMenu) SendToBack() bool {
	defer m.Hide()
	return m.state.Target != nil && m.layers.SendToBack(m.state.Target)
}
