package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Board Service: ordered boards, each owning a scene frame
// ─────────────────────────────────────────────────────────────

// BoardDefaults fills in options omitted at creation.
type BoardDefaults struct {
	Width      float64
	Height     float64
	Background string
}

// BoardService manages boards and the active board id.
type BoardService struct {
	tree     *scene.Tree
	editor   *scene.Editor
	registry *ObjectRegistry
	history  History
	defaults BoardDefaults
	now      func() time.Time

	boards   []*domain.Board
	activeID string
}

func NewBoardService(tree *scene.Tree, editor *scene.Editor, registry *ObjectRegistry, history History, defaults BoardDefaults) *BoardService {
	if defaults.Width <= 0 {
		defaults.Width = domain.DefaultBoardSize.Width
	}
	if defaults.Height <= 0 {
		defaults.Height = domain.DefaultBoardSize.Height
	}
	if defaults.Background == "" {
		defaults.Background = "#ffffff"
	}
	return &BoardService{
		tree:     tree,
		editor:   editor,
		registry: registry,
		history:  history,
		defaults: defaults,
		now:      time.Now,
	}
}

// Create adds a board with its frame on top of the root. The first board
// becomes active.
func (s *BoardService) Create(opts domain.CreateBoardOptions) *domain.Board {
	b := s.create(opts)
	s.history.AddSnapshot()
	return b
}

func (s *BoardService) create(opts domain.CreateBoardOptions) *domain.Board {
	offset := float64(len(s.boards)) * 50
	x, y := offset, offset
	if opts.X != nil {
		x = *opts.X
	}
	if opts.Y != nil {
		y = *opts.Y
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = s.defaults.Width
	}
	if height <= 0 {
		height = s.defaults.Height
	}
	bg := opts.BackgroundColor
	if bg == "" {
		bg = s.defaults.Background
	}
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("Board %d", len(s.boards)+1)
	}

	frame := scene.NewNode(scene.TagFrame)
	frame.X, frame.Y = x, y
	frame.Width, frame.Height = width, height
	if bg != domain.TransparentBackground {
		frame.Fill = bg
	}
	_ = s.tree.Root().Add(frame)

	now := s.now()
	b := &domain.Board{
		ID:              uuid.New().String(),
		Name:            name,
		Width:           width,
		Height:          height,
		X:               x,
		Y:               y,
		BackgroundColor: bg,
		Frame:           frame,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.boards = append(s.boards, b)
	if s.activeID == "" {
		s.activeID = b.ID
	}
	return b
}

// Delete removes the board, its frame and every object registered on it.
// The active board falls back to the first remaining board.
func (s *BoardService) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	b := s.boards[i]
	s.dropFrame(b)
	s.boards = append(s.boards[:i], s.boards[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
		if len(s.boards) > 0 {
			s.activeID = s.boards[0].ID
		}
	}
	s.history.AddSnapshot()
	return true
}

// dropFrame unregisters the board's objects, clears any selection inside
// it and detaches the frame.
func (s *BoardService) dropFrame(b *domain.Board) {
	if b.Frame == nil {
		return
	}
	for _, obj := range s.registry.All() {
		if obj.Node == b.Frame || b.Frame.IsAncestorOf(obj.Node) {
			s.registry.Unregister(obj.ID)
		}
	}
	for _, n := range s.editor.List() {
		if n == b.Frame || b.Frame.IsAncestorOf(n) {
			s.editor.Cancel()
			break
		}
	}
	b.Frame.Detach()
}

// Update applies a partial update and writes size and position through
// to the frame.
func (s *BoardService) Update(id string, opts domain.UpdateBoardOptions) bool {
	b := s.Get(id)
	if b == nil {
		return false
	}
	if opts.Name != nil {
		b.Name = *opts.Name
	}
	if opts.Width != nil {
		b.Width = *opts.Width
		b.Frame.Width = *opts.Width
	}
	if opts.Height != nil {
		b.Height = *opts.Height
		b.Frame.Height = *opts.Height
	}
	if opts.X != nil {
		b.X = *opts.X
		b.Frame.X = *opts.X
	}
	if opts.Y != nil {
		b.Y = *opts.Y
		b.Frame.Y = *opts.Y
	}
	if opts.BackgroundColor != nil {
		b.BackgroundColor = *opts.BackgroundColor
		b.Frame.Fill = *opts.BackgroundColor
		if b.BackgroundColor == domain.TransparentBackground {
			b.Frame.Fill = ""
		}
	}
	b.UpdatedAt = s.now()
	s.history.AddSnapshot()
	return true
}

// SetActive switches the insertion target and selects the board frame.
// It is not recorded in history.
func (s *BoardService) SetActive(id string) bool {
	b := s.Get(id)
	if b == nil {
		return false
	}
	s.activeID = id
	if b.Frame != nil {
		s.editor.Select(b.Frame)
	}
	return true
}

// Duplicate creates an empty board with the same size and background,
// offset by 50 on both axes.
func (s *BoardService) Duplicate(id string) *domain.Board {
	src := s.Get(id)
	if src == nil {
		return nil
	}
	x, y := src.X+50, src.Y+50
	b := s.create(domain.CreateBoardOptions{
		Name:            src.Name + " copy",
		Width:           src.Width,
		Height:          src.Height,
		X:               &x,
		Y:               &y,
		BackgroundColor: src.BackgroundColor,
	})
	s.history.AddSnapshot()
	return b
}

// ClearAll removes every board and its contents.
func (s *BoardService) ClearAll() {
	for _, b := range s.boards {
		s.dropFrame(b)
	}
	s.boards = nil
	s.activeID = ""
	s.history.AddSnapshot()
}

func (s *BoardService) Get(id string) *domain.Board {
	if i := s.index(id); i >= 0 {
		return s.boards[i]
	}
	return nil
}

// ByFrame returns the board owning frame.
func (s *BoardService) ByFrame(frame *scene.Node) *domain.Board {
	for _, b := range s.boards {
		if b.Frame == frame {
			return b
		}
	}
	return nil
}

func (s *BoardService) List() []*domain.Board {
	out := make([]*domain.Board, len(s.boards))
	copy(out, s.boards)
	return out
}

// Active looks the active board up by id.
func (s *BoardService) Active() *domain.Board {
	if s.activeID == "" {
		return nil
	}
	return s.Get(s.activeID)
}

func (s *BoardService) ActiveID() string { return s.activeID }
func (s *BoardService) Count() int       { return len(s.boards) }
func (s *BoardService) HasBoards() bool  { return len(s.boards) > 0 }

func (s *BoardService) index(id string) int {
	for i, b := range s.boards {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// syncFrames copies frame positions back into board records after the
// editor moved a selected frame.
func (s *BoardService) syncFrames() {
	for _, b := range s.boards {
		if b.Frame.X == b.X && b.Frame.Y == b.Y {
			continue
		}
		b.X, b.Y = b.Frame.X, b.Frame.Y
		b.UpdatedAt = s.now()
	}
}

// restore replaces the board list wholesale (undo/redo). Frames must
// already be attached.
func (s *BoardService) restore(boards []*domain.Board, activeID string) {
	s.boards = boards
	s.activeID = ""
	if s.Get(activeID) != nil {
		s.activeID = activeID
	}
}
