package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
	"whiteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Workspace: the editing context shared by every entry point
// ─────────────────────────────────────────────────────────────

var (
	ErrNotFound = errors.New("not found")
	ErrLocked   = errors.New("element is locked")
)

// Events pushed to the host UI after a mutation.
const (
	EventObjectsChanged    = "objects:changed"
	EventBoardsChanged     = "boards:changed"
	EventSelectionChanged  = "selection:changed"
	EventHistoryChanged    = "history:changed"
	EventGuidelinesChanged = "guidelines:changed"
)

// Undoer steps through recorded snapshots. UndoHistory implements it.
type Undoer interface {
	Undo() ([]byte, error)
	Redo() ([]byte, error)
}

type historyAttacher interface {
	Attach(source SnapshotSource) error
}

type historyLabeler interface {
	SetLabel(label string)
}

type WorkspaceOptions struct {
	Boards            BoardDefaults
	Style             ToolStyle
	PasteOffset       float64
	GuidelinesVisible bool
	// Slots backs the clipboard; an in-memory store is used when nil.
	Slots domain.SlotStore
	// History receives snapshots. When it also implements Undoer the
	// workspace supports Undo and Redo.
	History History
	Emitter EventEmitter
	Tracer  trace.Tracer
}

// snapshotCounter sits between the components and the configured history
// so the workspace can tell whether an operation committed.
type snapshotCounter struct {
	next  History
	count int
}

func (c *snapshotCounter) AddSnapshot() {
	c.count++
	c.next.AddSnapshot()
}

// Workspace wires the editing components around one scene tree and
// serializes access to them.
type Workspace struct {
	mu sync.Mutex

	tree        *scene.Tree
	editor      *scene.Editor
	registry    *ObjectRegistry
	boards      *BoardService
	containment *Containment
	constraint  *ConstraintEngine
	layers      *LayerControl
	groups      *GroupEngine
	groupEdit   *GroupEditState
	clipboard   *Clipboard
	codec       *scene.Codec
	menu        *ContextMenu
	guides      *Guidelines
	props       *PropertyEditor
	tools       *ElementTools
	query       *Query

	history *snapshotCounter
	undo    Undoer
	labeler historyLabeler
	emitter EventEmitter
	tracer  trace.Tracer

	detachConstraint func()

	// revision advances on every committed mutation and on undo/redo
	revision int
}

func NewWorkspace(opts WorkspaceOptions) (*Workspace, error) {
	if opts.History == nil {
		opts.History = &MockHistory{}
	}
	if opts.Slots == nil {
		opts.Slots = storage.NewMemorySlots(0)
	}
	if opts.PasteOffset == 0 {
		opts.PasteOffset = DefaultPasteOffset
	}
	if opts.Style == (ToolStyle{}) {
		opts.Style = DefaultToolStyle
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("whiteboard")
	}

	w := &Workspace{
		tree:      scene.NewTree(),
		editor:    scene.NewEditor(),
		registry:  NewObjectRegistry(),
		codec:     scene.NewCodec(),
		query:     NewQuery(),
		groupEdit: &GroupEditState{},
		history:   &snapshotCounter{next: opts.History},
		emitter:   opts.Emitter,
		tracer:    opts.Tracer,
	}
	w.undo, _ = opts.History.(Undoer)
	w.labeler, _ = opts.History.(historyLabeler)

	h := w.history
	w.boards = NewBoardService(w.tree, w.editor, w.registry, h, opts.Boards)
	w.containment = NewContainment(w.tree, w.boards, w.registry)
	w.constraint = NewConstraintEngine(w.containment)
	w.detachConstraint = w.constraint.Attach(w.editor)
	w.layers = NewLayerControl(h)
	w.groups = NewGroupEngine(w.tree, w.editor, w.registry, w.containment, h, w.groupEdit)
	w.clipboard = NewClipboard(opts.Slots, opts.PasteOffset)
	w.menu = NewContextMenu(w.tree, w.editor, w.registry, w.containment, w.groups, w.layers, w.clipboard, w.codec, h)
	w.guides = NewGuidelines(w.tree, opts.GuidelinesVisible)
	w.props = NewPropertyEditor(h)
	w.tools = NewElementTools(w.editor, w.registry, w.containment, h, opts.Style)

	if a, ok := opts.History.(historyAttacher); ok {
		if err := a.Attach(w.captureJSON); err != nil {
			return nil, fmt.Errorf("new workspace: %w", err)
		}
	}
	return w, nil
}

// Close detaches event subscriptions.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detachConstraint != nil {
		w.detachConstraint()
		w.detachConstraint = nil
	}
}

// mutate runs fn under the lock inside a span and emits the given events
// when fn reports a change. History and selection events are derived.
func (w *Workspace) mutate(ctx context.Context, op string, events []string, fn func() bool) {
	ctx, span := w.tracer.Start(ctx, "whiteboard."+op)
	defer span.End()

	w.mu.Lock()
	before := w.history.count
	selBefore := w.editor.List()
	if w.labeler != nil {
		w.labeler.SetLabel(op)
	}
	changed := fn()
	committed := w.history.count > before
	if committed {
		w.revision++
	}
	if changed && selectionDiffers(selBefore, w.editor.List()) {
		events = append(events, EventSelectionChanged)
	}
	if committed {
		events = append(events, EventHistoryChanged)
	}
	objects := w.registry.Len()
	var payloads []EmittedEvent
	if changed && w.emitter != nil {
		for _, ev := range events {
			payloads = append(payloads, EmittedEvent{Event: ev, Data: w.payload(ev)})
		}
	}
	w.mu.Unlock()

	span.SetAttributes(
		attribute.Bool("whiteboard.changed", changed),
		attribute.Bool("whiteboard.committed", committed),
		attribute.Int("whiteboard.objects", objects),
	)
	for _, p := range payloads {
		w.emitter.Emit(ctx, p.Event, p.Data)
	}
}

func (w *Workspace) payload(event string) any {
	switch event {
	case EventObjectsChanged:
		return w.objects()
	case EventBoardsChanged:
		return w.boardList()
	case EventSelectionChanged:
		return w.selection()
	case EventGuidelinesChanged:
		return w.guides.List()
	}
	return nil
}

func selectionDiffers(a, b []*scene.Node) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

var (
	objectEvents = []string{EventObjectsChanged}
	boardEvents  = []string{EventBoardsChanged, EventObjectsChanged}
	dragEvents   = []string{EventObjectsChanged, EventBoardsChanged}
	guideEvents  = []string{EventGuidelinesChanged}
)

// ── Views ──

func (w *Workspace) info(obj *domain.Object) domain.ObjectInfo {
	info := w.nodeInfo(obj.Node)
	info.ID = obj.ID
	info.Type = obj.Type
	return info
}

func (w *Workspace) nodeInfo(n *scene.Node) domain.ObjectInfo {
	b := n.Bounds()
	info := domain.ObjectInfo{
		Type:    domain.ElementTypeOf(n),
		X:       b.X,
		Y:       b.Y,
		Width:   b.Width,
		Height:  b.Height,
		Index:   w.layers.Index(n),
		Locked:  !n.Editable,
		Visible: n.Visible,
	}
	if IsGroup(n) {
		info.Children = n.ChildCount()
	}
	if board := w.containment.FindOwningBoard(n); board != nil {
		info.BoardID = board.ID
	}
	if obj, ok := w.registry.Lookup(n); ok {
		info.ID = obj.ID
	}
	return info
}

func (w *Workspace) objects() []domain.ObjectInfo {
	out := make([]domain.ObjectInfo, 0, w.registry.Len())
	for _, obj := range w.registry.All() {
		out = append(out, w.info(obj))
	}
	return out
}

func (w *Workspace) selection() []domain.ObjectInfo {
	sel := w.editor.List()
	out := make([]domain.ObjectInfo, 0, len(sel))
	for _, n := range sel {
		out = append(out, w.nodeInfo(n))
	}
	return out
}

func (w *Workspace) boardList() []domain.Board {
	list := w.boards.List()
	out := make([]domain.Board, 0, len(list))
	for _, b := range list {
		out = append(out, *b)
	}
	return out
}

func (w *Workspace) lookup(id string) (*domain.Object, error) {
	obj, ok := w.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, ErrNotFound)
	}
	return obj, nil
}

// ── Boards ──

func (w *Workspace) CreateBoard(ctx context.Context, opts domain.CreateBoardOptions) domain.Board {
	var out domain.Board
	w.mutate(ctx, "board.create", boardEvents, func() bool {
		out = *w.boards.Create(opts)
		return true
	})
	return out
}

func (w *Workspace) DeleteBoard(ctx context.Context, id string) error {
	var ok bool
	w.mutate(ctx, "board.delete", boardEvents, func() bool {
		ok = w.boards.Delete(id)
		return ok
	})
	if !ok {
		return fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	return nil
}

func (w *Workspace) UpdateBoard(ctx context.Context, id string, opts domain.UpdateBoardOptions) (domain.Board, error) {
	var out domain.Board
	var ok bool
	w.mutate(ctx, "board.update", boardEvents, func() bool {
		if ok = w.boards.Update(id, opts); ok {
			out = *w.boards.Get(id)
		}
		return ok
	})
	if !ok {
		return out, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	return out, nil
}

func (w *Workspace) SetActiveBoard(ctx context.Context, id string) error {
	var ok bool
	w.mutate(ctx, "board.activate", []string{EventBoardsChanged}, func() bool {
		ok = w.boards.SetActive(id)
		return ok
	})
	if !ok {
		return fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	return nil
}

func (w *Workspace) DuplicateBoard(ctx context.Context, id string) (domain.Board, error) {
	var out domain.Board
	var ok bool
	w.mutate(ctx, "board.duplicate", boardEvents, func() bool {
		if b := w.boards.Duplicate(id); b != nil {
			out, ok = *b, true
		}
		return ok
	})
	if !ok {
		return out, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	return out, nil
}

// ClearBoards removes every board and the elements inside them.
func (w *Workspace) ClearBoards(ctx context.Context) {
	w.mutate(ctx, "board.clear", boardEvents, func() bool {
		if !w.boards.HasBoards() {
			return false
		}
		w.boards.ClearAll()
		return true
	})
}

func (w *Workspace) Boards() []domain.Board {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.boardList()
}

// ActiveBoard returns the active board and false when there is none.
func (w *Workspace) ActiveBoard() (domain.Board, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b := w.boards.Active(); b != nil {
		return *b, true
	}
	return domain.Board{}, false
}

// BoardObjects lists the elements owned by a board, nested ones included.
func (w *Workspace) BoardObjects(boardID string) ([]domain.ObjectInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.boards.Get(boardID) == nil {
		return nil, fmt.Errorf("board %s: %w", boardID, ErrNotFound)
	}
	objs := w.containment.BoardObjects(boardID)
	out := make([]domain.ObjectInfo, 0, len(objs))
	for _, obj := range objs {
		out = append(out, w.info(obj))
	}
	return out, nil
}

// ── Elements ──

// AddElement inserts a new element into the active board (or the root)
// and selects it.
func (w *Workspace) AddElement(ctx context.Context, spec ElementSpec) (domain.ObjectInfo, error) {
	var out domain.ObjectInfo
	var err error
	w.mutate(ctx, "element.add", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.tools.Insert(spec); err != nil {
			return false
		}
		out = w.info(obj)
		return true
	})
	return out, err
}

func (w *Workspace) AddText(ctx context.Context, x, y float64, text string) domain.ObjectInfo {
	var out domain.ObjectInfo
	w.mutate(ctx, "element.text", objectEvents, func() bool {
		out = w.info(w.tools.PlaceText(x, y, text))
		return true
	})
	return out
}

// InsertImage asks picker for an image and inserts it at the world point.
// The picker runs without holding the workspace lock.
func (w *Workspace) InsertImage(ctx context.Context, x, y float64, picker ImagePicker) (domain.ObjectInfo, error) {
	img, err := picker.PickImage(ctx)
	if err != nil {
		return domain.ObjectInfo{}, fmt.Errorf("insert image: %w", err)
	}
	var out domain.ObjectInfo
	w.mutate(ctx, "element.image", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.tools.InsertImage(x, y, img); err != nil {
			return false
		}
		out = w.info(obj)
		return true
	})
	return out, err
}

// AddPolygonPoint adds a vertex to the polygon being drawn. When the point
// closes the polygon the finished element is returned with true.
func (w *Workspace) AddPolygonPoint(ctx context.Context, x, y float64) (domain.ObjectInfo, bool) {
	var out domain.ObjectInfo
	var done bool
	w.mutate(ctx, "element.polygon", objectEvents, func() bool {
		if obj := w.tools.AddPolygonPoint(x, y); obj != nil {
			out, done = w.info(obj), true
		}
		return done
	})
	return out, done
}

func (w *Workspace) FinishPolygon(ctx context.Context, closePath bool) (domain.ObjectInfo, bool) {
	var out domain.ObjectInfo
	var done bool
	w.mutate(ctx, "element.polygon", objectEvents, func() bool {
		if obj := w.tools.FinishPolygon(closePath); obj != nil {
			out, done = w.info(obj), true
		}
		return done
	})
	return out, done
}

func (w *Workspace) CancelPolygon() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tools.CancelPolygon()
}

func (w *Workspace) PolygonPoints() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tools.PolygonPoints()
}

func (w *Workspace) Objects() []domain.ObjectInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.objects()
}

func (w *Workspace) Object(id string) (domain.ObjectInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	obj, err := w.lookup(id)
	if err != nil {
		return domain.ObjectInfo{}, err
	}
	return w.info(obj), nil
}

// ObjectAt returns the topmost visible element under a world point.
func (w *Workspace) ObjectAt(x, y float64) (domain.ObjectInfo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.menu.FindElementAtPoint(x, y)
	if n == nil {
		return domain.ObjectInfo{}, false
	}
	return w.nodeInfo(n), true
}

// NodeData returns the full encoded form of an element.
func (w *Workspace) NodeData(id string) (scene.NodeData, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	obj, err := w.lookup(id)
	if err != nil {
		return scene.NodeData{}, err
	}
	d := scene.Encode(obj.Node)
	d.ID = obj.ID
	return d, nil
}

// MoveObject translates an element and keeps it inside its board.
func (w *Workspace) MoveObject(ctx context.Context, id string, dx, dy float64) (domain.ObjectInfo, error) {
	var out domain.ObjectInfo
	var err error
	w.mutate(ctx, "element.move", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		if !obj.Node.Editable {
			err = fmt.Errorf("move %s: %w", id, ErrLocked)
			return false
		}
		moved := w.translate(obj.Node, dx, dy)
		if moved {
			w.history.AddSnapshot()
		}
		out = w.info(obj)
		return moved
	})
	return out, err
}

// Move is one translation applied by MoveObjects.
type Move struct {
	ID string
	DX float64
	DY float64
}

// MoveObjects applies several translations as one history entry. Every id
// is checked before anything moves, so a missing or locked element leaves
// the scene untouched.
func (w *Workspace) MoveObjects(ctx context.Context, moves []Move) ([]domain.ObjectInfo, error) {
	var out []domain.ObjectInfo
	var err error
	w.mutate(ctx, "element.move_many", objectEvents, func() bool {
		objs := make([]*domain.Object, len(moves))
		for i, m := range moves {
			if objs[i], err = w.lookup(m.ID); err != nil {
				return false
			}
			if !objs[i].Node.Editable {
				err = fmt.Errorf("move %s: %w", m.ID, ErrLocked)
				return false
			}
		}
		changed := false
		for i, m := range moves {
			if w.translate(objs[i].Node, m.DX, m.DY) {
				changed = true
			}
		}
		if changed {
			w.history.AddSnapshot()
		}
		out = make([]domain.ObjectInfo, len(objs))
		for i, obj := range objs {
			out[i] = w.info(obj)
		}
		return changed
	})
	return out, err
}

// translate moves n by (dx, dy), clamps it to its board and reports
// whether its position changed.
func (w *Workspace) translate(n *scene.Node, dx, dy float64) bool {
	x, y := n.X, n.Y
	n.X += dx
	n.Y += dy
	if b := w.containment.FindOwningBoard(n); b != nil {
		w.constraint.Constrain(n, b)
	}
	return n.X != x || n.Y != y
}

// MoveObjectToBoard reparents an element into a board frame, or to the
// root when boardID is empty, keeping its world position.
func (w *Workspace) MoveObjectToBoard(ctx context.Context, id, boardID string) (domain.ObjectInfo, error) {
	var out domain.ObjectInfo
	var err error
	w.mutate(ctx, "element.reparent", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		if !obj.Node.Editable {
			err = fmt.Errorf("move %s to board: %w", id, ErrLocked)
			return false
		}
		target := w.tree.Root()
		if boardID != "" {
			b := w.boards.Get(boardID)
			if b == nil {
				err = fmt.Errorf("board %s: %w", boardID, ErrNotFound)
				return false
			}
			target = b.Frame
		}
		if obj.Node.Parent() == target {
			out = w.info(obj)
			return false
		}
		if err = scene.Reparent(obj.Node, target); err != nil {
			err = fmt.Errorf("move %s to board: %w", id, err)
			return false
		}
		if b := w.containment.FindOwningBoard(obj.Node); b != nil {
			w.constraint.Constrain(obj.Node, b)
		}
		w.history.AddSnapshot()
		out = w.info(obj)
		return true
	})
	return out, err
}

func (w *Workspace) DeleteObject(ctx context.Context, id string) error {
	var err error
	w.mutate(ctx, "element.delete", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		w.editor.Select(without(w.editor.List(), obj.Node)...)
		if w.groups.EditingGroup() == obj.Node {
			w.groups.ExitGroupEdit()
		}
		w.registry.Delete(id)
		w.history.AddSnapshot()
		return true
	})
	return err
}

func without(list []*scene.Node, n *scene.Node) []*scene.Node {
	out := list[:0:0]
	for _, v := range list {
		if v != n {
			out = append(out, v)
		}
	}
	return out
}

// UpdateProperties applies a style change to one element.
func (w *Workspace) UpdateProperties(ctx context.Context, id string, u PropertyUpdate) ([]Property, error) {
	var done []Property
	var err error
	w.mutate(ctx, "element.style", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		if done, err = w.props.Update(obj.Node, u); err != nil {
			err = fmt.Errorf("update %s: %w", id, err)
			return false
		}
		return true
	})
	return done, err
}

// SelectWhere returns the elements matching an expr predicate.
func (w *Workspace) SelectWhere(expression string) ([]domain.ObjectInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []domain.ObjectInfo
	for _, obj := range w.registry.All() {
		info := w.info(obj)
		ok, err := w.query.Match(expression, info, obj.Node)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, info)
		}
	}
	return out, nil
}

// ── Selection ──

// Select replaces the selection with the given elements.
func (w *Workspace) Select(ctx context.Context, ids ...string) error {
	var err error
	w.mutate(ctx, "select", nil, func() bool {
		nodes := make([]*scene.Node, 0, len(ids))
		for _, id := range ids {
			var obj *domain.Object
			if obj, err = w.lookup(id); err != nil {
				return false
			}
			nodes = append(nodes, obj.Node)
		}
		w.editor.Select(nodes...)
		return true
	})
	return err
}

func (w *Workspace) SelectAll(ctx context.Context) int {
	var n int
	w.mutate(ctx, "select.all", nil, func() bool {
		n = w.menu.SelectAll()
		return n > 0
	})
	return n
}

func (w *Workspace) ClearSelection(ctx context.Context) {
	w.mutate(ctx, "select.clear", nil, func() bool {
		w.editor.Cancel()
		return true
	})
}

func (w *Workspace) Selection() []domain.ObjectInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection()
}

// SelectionState reports the derived flags for the current selection.
type SelectionState struct {
	Count           int    `json:"count"`
	HasSelection    bool   `json:"hasSelection"`
	IsLocked        bool   `json:"isLocked"`
	AllLocked       bool   `json:"allLocked"`
	CanGroup        bool   `json:"canGroup"`
	CanUngroup      bool   `json:"canUngroup"`
	CanBringForward bool   `json:"canBringForward"`
	CanSendBackward bool   `json:"canSendBackward"`
	EditingGroupID  string `json:"editingGroupId,omitempty"`
}

func (w *Workspace) SelectionState() SelectionState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := SelectionState{
		Count:           w.menu.SelectionCount(),
		HasSelection:    w.menu.HasSelection(),
		IsLocked:        w.menu.IsLocked(),
		AllLocked:       w.menu.AllLocked(),
		CanGroup:        w.menu.CanGroup(),
		CanUngroup:      w.menu.CanUngroup(),
		CanBringForward: w.menu.CanBringForward(),
		CanSendBackward: w.menu.CanSendBackward(),
	}
	if g := w.groups.EditingGroup(); g != nil {
		s.EditingGroupID = w.nodeInfo(g).ID
	}
	return s
}

// DragSelection moves the selection the way a pointer drag does; locked
// elements stay put and board members are clamped.
func (w *Workspace) DragSelection(ctx context.Context, dx, dy float64) int {
	var moved int
	w.mutate(ctx, "drag", dragEvents, func() bool {
		for _, n := range w.editor.List() {
			if n.Editable && n.Draggable {
				moved++
			}
		}
		if moved == 0 {
			return false
		}
		w.editor.Move(dx, dy)
		w.boards.syncFrames()
		w.history.AddSnapshot()
		return true
	})
	return moved
}

// ── Context menu ──

func (w *Workspace) ShowMenu(x, y, canvasX, canvasY float64) MenuState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.menu.Show(x, y, canvasX, canvasY)
}

func (w *Workspace) HideMenu() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.menu.Hide()
}

func (w *Workspace) MenuState() MenuState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.menu.State()
}

func (w *Workspace) Copy(ctx context.Context) (int, error) {
	_, span := w.tracer.Start(ctx, "whiteboard.copy")
	defer span.End()
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.menu.Copy()
	span.SetAttributes(attribute.Int("whiteboard.copied", n))
	return n, err
}

func (w *Workspace) Paste(ctx context.Context) PasteReport {
	var report PasteReport
	w.mutate(ctx, "paste", objectEvents, func() bool {
		report = w.menu.Paste()
		return len(report.IDs) > 0
	})
	return report
}

func (w *Workspace) DeleteSelection(ctx context.Context) int {
	var n int
	w.mutate(ctx, "delete", objectEvents, func() bool {
		n = w.menu.Delete()
		return n > 0
	})
	return n
}

func (w *Workspace) Lock(ctx context.Context) int {
	var n int
	w.mutate(ctx, "lock", objectEvents, func() bool {
		n = w.menu.Lock()
		return n > 0
	})
	return n
}

func (w *Workspace) Unlock(ctx context.Context) int {
	var n int
	w.mutate(ctx, "unlock", objectEvents, func() bool {
		n = w.menu.Unlock()
		return n > 0
	})
	return n
}

// ToggleLock flips the lock state of the selection and returns the new
// state.
func (w *Workspace) ToggleLock(ctx context.Context) bool {
	var locked bool
	w.mutate(ctx, "lock.toggle", objectEvents, func() bool {
		if w.menu.SelectionCount() == 0 {
			return false
		}
		locked = w.menu.ToggleLock()
		return true
	})
	return locked
}

func (w *Workspace) UnlockObject(ctx context.Context, id string) error {
	var err error
	w.mutate(ctx, "unlock", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		return w.menu.UnlockElement(obj.Node)
	})
	return err
}

func (w *Workspace) LockedObjects() []domain.ObjectInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []domain.ObjectInfo
	for _, obj := range w.menu.LockedElements() {
		out = append(out, w.info(obj))
	}
	return out
}

// Group folds the selection into a new group element.
func (w *Workspace) Group(ctx context.Context) (domain.ObjectInfo, bool) {
	var out domain.ObjectInfo
	var ok bool
	w.mutate(ctx, "group", objectEvents, func() bool {
		g := w.menu.Group()
		if g == nil {
			return false
		}
		out, ok = w.nodeInfo(g), true
		return true
	})
	return out, ok
}

// Ungroup dissolves the selected group and returns its former children.
func (w *Workspace) Ungroup(ctx context.Context) ([]domain.ObjectInfo, bool) {
	var out []domain.ObjectInfo
	w.mutate(ctx, "ungroup", objectEvents, func() bool {
		children := w.menu.Ungroup()
		for _, c := range children {
			out = append(out, w.nodeInfo(c))
		}
		return len(children) > 0
	})
	return out, len(out) > 0
}

func (w *Workspace) EnterGroupEdit(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	obj, err := w.lookup(id)
	if err != nil {
		return err
	}
	if !w.groups.EnterGroupEdit(obj.Node) {
		return fmt.Errorf("edit group %s: not a group", id)
	}
	return nil
}

func (w *Workspace) ExitGroupEdit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.groups.ExitGroupEdit()
}

// ── Layers ──

// LayerOp is a z-order command on a single element.
type LayerOp string

const (
	LayerForward  LayerOp = "forward"
	LayerBackward LayerOp = "backward"
	LayerFront    LayerOp = "front"
	LayerBack     LayerOp = "back"
)

// Arrange runs a z-order command. It reports whether the order changed.
func (w *Workspace) Arrange(ctx context.Context, id string, op LayerOp) (bool, error) {
	var moved bool
	var err error
	w.mutate(ctx, "layer."+string(op), objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		w.menu.SetTarget(obj.Node)
		switch op {
		case LayerForward:
			moved = w.menu.BringForward()
		case LayerBackward:
			moved = w.menu.SendBackward()
		case LayerFront:
			moved = w.menu.BringToFront()
		case LayerBack:
			moved = w.menu.SendToBack()
		default:
			err = fmt.Errorf("arrange %s: unknown layer op %q", id, op)
		}
		return moved
	})
	return moved, err
}

// ReorderObject moves an element to index among its siblings.
func (w *Workspace) ReorderObject(ctx context.Context, id string, index int) (bool, error) {
	var ok bool
	var err error
	w.mutate(ctx, "layer.reorder", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		before := w.history.count
		ok = w.layers.ReorderTo(obj.Node, index)
		return w.history.count > before
	})
	return ok, err
}

func (w *Workspace) ToggleVisibility(ctx context.Context, id string) (bool, error) {
	var visible bool
	var err error
	w.mutate(ctx, "layer.visibility", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		w.layers.ToggleVisibility(obj.Node)
		visible = w.layers.IsVisible(obj.Node)
		return true
	})
	return visible, err
}

func (w *Workspace) ToggleObjectLock(ctx context.Context, id string) (bool, error) {
	var locked bool
	var err error
	w.mutate(ctx, "layer.lock", objectEvents, func() bool {
		var obj *domain.Object
		if obj, err = w.lookup(id); err != nil {
			return false
		}
		w.layers.ToggleLock(obj.Node)
		locked = w.layers.IsLocked(obj.Node)
		return true
	})
	return locked, err
}

// ── Guidelines ──

func (w *Workspace) AddGuideline(ctx context.Context, o domain.Orientation, position float64) (string, error) {
	var id string
	var err error
	w.mutate(ctx, "guideline.add", guideEvents, func() bool {
		id, err = w.guides.Add(o, position)
		return err == nil
	})
	return id, err
}

func (w *Workspace) RemoveGuideline(ctx context.Context, id string) bool {
	var ok bool
	w.mutate(ctx, "guideline.remove", guideEvents, func() bool {
		ok = w.guides.Remove(id)
		return ok
	})
	return ok
}

func (w *Workspace) ClearGuidelines(ctx context.Context) {
	w.mutate(ctx, "guideline.clear", guideEvents, func() bool {
		w.guides.Clear()
		return true
	})
}

func (w *Workspace) ToggleGuidelines(ctx context.Context) bool {
	var visible bool
	w.mutate(ctx, "guideline.toggle", guideEvents, func() bool {
		visible = w.guides.Toggle()
		return true
	})
	return visible
}

func (w *Workspace) SetGuidelinesVisible(ctx context.Context, visible bool) {
	w.mutate(ctx, "guideline.visible", guideEvents, func() bool {
		if w.guides.Visible() == visible {
			return false
		}
		w.guides.SetVisible(visible)
		return true
	})
}

func (w *Workspace) MoveGuideline(ctx context.Context, id string, position float64) bool {
	var ok bool
	w.mutate(ctx, "guideline.move", guideEvents, func() bool {
		ok = w.guides.UpdatePosition(id, position)
		return ok
	})
	return ok
}

// DragGuideline feeds a pointer drag to the guideline; only the movement
// across its axis sticks.
func (w *Workspace) DragGuideline(ctx context.Context, id string, dx, dy float64) bool {
	var ok bool
	w.mutate(ctx, "guideline.drag", guideEvents, func() bool {
		ok = w.guides.Drag(id, dx, dy)
		return ok
	})
	return ok
}

// DoubleTapGuideline removes the guideline, as a double tap on it does.
func (w *Workspace) DoubleTapGuideline(ctx context.Context, id string) bool {
	var ok bool
	w.mutate(ctx, "guideline.tap", guideEvents, func() bool {
		ok = w.guides.DoubleTap(id)
		return ok
	})
	return ok
}

func (w *Workspace) Guidelines() []domain.Guideline {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.guides.List()
}

func (w *Workspace) SnapPositions() domain.SnapPositions {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.guides.SnapPositions()
}

// ── History & state ──

// Undo restores the previous snapshot. It returns storage.ErrNoHistory
// when there is nothing to undo or no undo-capable history is configured.
func (w *Workspace) Undo(ctx context.Context) error {
	return w.step(ctx, "undo", func() ([]byte, error) { return w.undo.Undo() })
}

func (w *Workspace) Redo(ctx context.Context) error {
	return w.step(ctx, "redo", func() ([]byte, error) { return w.undo.Redo() })
}

func (w *Workspace) step(ctx context.Context, op string, next func() ([]byte, error)) error {
	if w.undo == nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNoHistory)
	}
	var err error
	w.mutate(ctx, op, []string{EventObjectsChanged, EventBoardsChanged, EventHistoryChanged}, func() bool {
		var data []byte
		if data, err = next(); err != nil {
			err = fmt.Errorf("%s: %w", op, err)
			return false
		}
		var snap Snapshot
		if err = json.Unmarshal(data, &snap); err != nil {
			err = fmt.Errorf("%s: decode snapshot: %w", op, err)
			return false
		}
		if err = w.restore(snap); err != nil {
			err = fmt.Errorf("%s: %w", op, err)
			return false
		}
		w.revision++
		return true
	})
	return err
}

// State returns the current snapshot.
func (w *Workspace) State() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.capture()
}

func (w *Workspace) StateJSON() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.captureJSON()
}

// LoadState replaces the whole workspace with a stored snapshot and
// records it as one history entry.
func (w *Workspace) LoadState(ctx context.Context, data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	var err error
	w.mutate(ctx, "load", boardEvents, func() bool {
		if err = w.restore(snap); err != nil {
			err = fmt.Errorf("load state: %w", err)
			return false
		}
		w.history.AddSnapshot()
		return true
	})
	return err
}

// Revision counts committed mutations, undo and redo included, since the
// workspace was created.
func (w *Workspace) Revision() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.revision
}

// ── Settings ──

func (w *Workspace) SetPasteOffset(offset float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clipboard.SetOffset(offset)
}

func (w *Workspace) ToolStyle() ToolStyle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tools.Style()
}

func (w *Workspace) SetToolStyle(style ToolStyle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tools.SetStyle(style)
}
