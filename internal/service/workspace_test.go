package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
)

func newWorkspace(t *testing.T) (*service.Workspace, *service.MockHistory) {
	t.Helper()
	hist := &service.MockHistory{}
	ws, err := service.NewWorkspace(service.WorkspaceOptions{History: hist})
	require.NoError(t, err)
	t.Cleanup(ws.Close)
	return ws, hist
}

func origin() *float64 {
	v := 0.0
	return &v
}

func addRect(t *testing.T, ws *service.Workspace, x, y, w, h float64) domain.ObjectInfo {
	t.Helper()
	info, err := ws.AddElement(context.Background(), service.ElementSpec{
		Type: domain.ElementRect, X: x, Y: y, Width: w, Height: h,
	})
	require.NoError(t, err)
	return info
}

func objectByID(t *testing.T, ws *service.Workspace, id string) domain.ObjectInfo {
	t.Helper()
	info, err := ws.Object(id)
	require.NoError(t, err)
	return info
}

// ─────────────────────────────────────────────────────────────
// Grouping
// ─────────────────────────────────────────────────────────────

func TestWorkspace_GroupUngroupOnBoard(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)

	board := ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 800, Height: 600, X: origin(), Y: origin()})
	r1 := addRect(t, ws, 100, 100, 50, 50)
	r2 := addRect(t, ws, 300, 300, 80, 80)
	require.Equal(t, board.ID, r1.BoardID)
	require.Equal(t, 3, hist.Snapshots)

	require.NoError(t, ws.Select(ctx, r1.ID, r2.ID))
	group, ok := ws.Group(ctx)
	require.True(t, ok)
	require.Equal(t, 4, hist.Snapshots)

	require.Equal(t, domain.ElementGroup, group.Type)
	require.Equal(t, board.ID, group.BoardID)
	require.Equal(t, 2, group.Children)
	require.Equal(t, 100.0, group.X)
	require.Equal(t, 100.0, group.Y)
	require.Equal(t, 280.0, group.Width)
	require.Equal(t, 280.0, group.Height)

	objs := ws.Objects()
	require.Len(t, objs, 1, "members leave the registry")
	_, err := ws.Object(r1.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	data, err := ws.NodeData(group.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0, data.X)
	require.Len(t, data.Children, 2)
	require.Equal(t, 0.0, data.Children[0].X)
	require.Equal(t, 0.0, data.Children[0].Y)
	require.Equal(t, 200.0, data.Children[1].X)
	require.Equal(t, 200.0, data.Children[1].Y)

	sel := ws.Selection()
	require.Len(t, sel, 1)
	require.Equal(t, group.ID, sel[0].ID)

	children, ok := ws.Ungroup(ctx)
	require.True(t, ok)
	require.Len(t, children, 2)
	require.Equal(t, 5, hist.Snapshots)

	require.Equal(t, 100.0, children[0].X)
	require.Equal(t, 100.0, children[0].Y)
	require.Equal(t, 300.0, children[1].X)
	require.Equal(t, 300.0, children[1].Y)
	require.NotEqual(t, r1.ID, children[0].ID, "ungrouped children get fresh ids")
	for _, c := range children {
		require.Equal(t, board.ID, c.BoardID)
	}
	_, err = ws.Object(group.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.Len(t, ws.Objects(), 2)
	require.Len(t, ws.Selection(), 2)
}

func TestWorkspace_GroupPreconditionsLeaveStateAlone(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	ws.CreateBoard(ctx, domain.CreateBoardOptions{})
	r1 := addRect(t, ws, 10, 10, 20, 20)
	before := hist.Snapshots

	// single element
	require.NoError(t, ws.Select(ctx, r1.ID))
	_, ok := ws.Group(ctx)
	require.False(t, ok)

	// ungroup of a non-group
	_, ok = ws.Ungroup(ctx)
	require.False(t, ok)

	require.Equal(t, before, hist.Snapshots)
	require.Len(t, ws.Objects(), 1)
	sel := ws.Selection()
	require.Len(t, sel, 1)
	require.Equal(t, r1.ID, sel[0].ID)
}

func TestWorkspace_GroupEditStateClearedByUngroup(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)
	a := addRect(t, ws, 0, 0, 10, 10)
	b := addRect(t, ws, 50, 50, 10, 10)
	require.NoError(t, ws.Select(ctx, a.ID, b.ID))
	g, ok := ws.Group(ctx)
	require.True(t, ok)

	require.NoError(t, ws.EnterGroupEdit(g.ID))
	require.Equal(t, g.ID, ws.SelectionState().EditingGroupID)

	_, ok = ws.Ungroup(ctx)
	require.True(t, ok)
	require.Empty(t, ws.SelectionState().EditingGroupID)

	require.Error(t, ws.EnterGroupEdit(ws.Objects()[0].ID))
}

// ─────────────────────────────────────────────────────────────
// Boards and insertion
// ─────────────────────────────────────────────────────────────

func TestWorkspace_DeleteOnlyBoardInsertsIntoRoot(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)

	b := ws.CreateBoard(ctx, domain.CreateBoardOptions{})
	inBoard := addRect(t, ws, 10, 10, 20, 20)
	require.Equal(t, b.ID, inBoard.BoardID)

	require.NoError(t, ws.DeleteBoard(ctx, b.ID))
	_, ok := ws.ActiveBoard()
	require.False(t, ok)
	require.Empty(t, ws.Objects(), "board contents go with the board")

	loose := addRect(t, ws, 10, 10, 20, 20)
	require.Empty(t, loose.BoardID)

	snap := ws.State()
	require.Empty(t, snap.Boards)
	require.Len(t, snap.Root, 1)
	require.Equal(t, loose.ID, snap.Root[0].ID)
}

func TestWorkspace_BoardDefaultsAndDuplicate(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)

	first := ws.CreateBoard(ctx, domain.CreateBoardOptions{})
	second := ws.CreateBoard(ctx, domain.CreateBoardOptions{BackgroundColor: domain.TransparentBackground})
	require.Equal(t, "Board 1", first.Name)
	require.Equal(t, 800.0, first.Width)
	require.Equal(t, 600.0, first.Height)
	require.Equal(t, 50.0, second.X)
	require.Equal(t, 50.0, second.Y)

	active, ok := ws.ActiveBoard()
	require.True(t, ok)
	require.Equal(t, first.ID, active.ID, "first board stays active")

	snaps := hist.Snapshots
	require.NoError(t, ws.SetActiveBoard(ctx, second.ID))
	require.Equal(t, snaps, hist.Snapshots, "activation is not recorded")

	dup, err := ws.DuplicateBoard(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, "Board 2 copy", dup.Name)
	require.Equal(t, 100.0, dup.X)
	require.Equal(t, domain.TransparentBackground, dup.BackgroundColor)
	require.Equal(t, snaps+1, hist.Snapshots)

	name := "Renamed"
	updated, err := ws.UpdateBoard(ctx, first.ID, domain.UpdateBoardOptions{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)

	require.ErrorIs(t, ws.DeleteBoard(ctx, "missing"), service.ErrNotFound)

	ws.ClearBoards(ctx)
	require.Empty(t, ws.Boards())
}

func TestWorkspace_MoveObjectClampsAndRespectsLock(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)
	ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 400, Height: 300, X: origin(), Y: origin()})
	r := addRect(t, ws, 10, 10, 100, 100)

	moved, err := ws.MoveObject(ctx, r.ID, 1000, -1000)
	require.NoError(t, err)
	require.Equal(t, 300.0, moved.X)
	require.Equal(t, 0.0, moved.Y)

	_, err = ws.ToggleObjectLock(ctx, r.ID)
	require.NoError(t, err)
	_, err = ws.MoveObject(ctx, r.ID, -10, 0)
	require.ErrorIs(t, err, service.ErrLocked)
}

func TestWorkspace_MoveObjectAtEdgeRecordsNothing(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 400, Height: 300, X: origin(), Y: origin()})
	r := addRect(t, ws, 300, 0, 100, 100)
	rev := ws.Revision()
	before := hist.Snapshots

	for _, d := range [][2]float64{{0, 0}, {50, 0}, {0, -20}} {
		moved, err := ws.MoveObject(ctx, r.ID, d[0], d[1])
		require.NoError(t, err)
		require.Equal(t, 300.0, moved.X)
		require.Equal(t, 0.0, moved.Y)
	}
	require.Equal(t, before, hist.Snapshots, "clamped back to the same spot")
	require.Equal(t, rev, ws.Revision())

	_, err := ws.MoveObject(ctx, r.ID, -10, 0)
	require.NoError(t, err)
	require.Equal(t, before+1, hist.Snapshots)
}

func TestWorkspace_MoveObjectsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 800, Height: 600, X: origin(), Y: origin()})
	a := addRect(t, ws, 0, 0, 50, 50)
	b := addRect(t, ws, 100, 0, 50, 50)
	c := addRect(t, ws, 200, 0, 50, 50)
	_, err := ws.ToggleObjectLock(ctx, b.ID)
	require.NoError(t, err)
	before := hist.Snapshots

	_, err = ws.MoveObjects(ctx, []service.Move{
		{ID: a.ID, DX: 10, DY: 10},
		{ID: b.ID, DX: 10, DY: 10},
		{ID: c.ID, DX: 10, DY: 10},
	})
	require.ErrorIs(t, err, service.ErrLocked)
	require.Equal(t, 0.0, objectByID(t, ws, a.ID).X, "nothing moves when one id is locked")
	require.Equal(t, before, hist.Snapshots)

	_, err = ws.MoveObjects(ctx, []service.Move{{ID: a.ID, DX: 10}, {ID: "missing", DX: 10}})
	require.ErrorIs(t, err, service.ErrNotFound)
	require.Equal(t, 0.0, objectByID(t, ws, a.ID).X)

	moved, err := ws.MoveObjects(ctx, []service.Move{
		{ID: a.ID, DX: 10, DY: 10},
		{ID: c.ID, DX: 10, DY: 10},
	})
	require.NoError(t, err)
	require.Len(t, moved, 2)
	require.Equal(t, 10.0, moved[0].X)
	require.Equal(t, 210.0, moved[1].X)
	require.Equal(t, before+1, hist.Snapshots, "one entry for the whole batch")
}

func TestWorkspace_MoveObjectToBoardRespectsLock(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	b := ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 800, Height: 600, X: origin(), Y: origin()})
	require.NoError(t, ws.DeleteBoard(ctx, b.ID))
	loose := addRect(t, ws, 900, 900, 50, 50)
	b = ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 800, Height: 600, X: origin(), Y: origin()})

	_, err := ws.ToggleObjectLock(ctx, loose.ID)
	require.NoError(t, err)
	before := hist.Snapshots

	_, err = ws.MoveObjectToBoard(ctx, loose.ID, b.ID)
	require.ErrorIs(t, err, service.ErrLocked)
	got := objectByID(t, ws, loose.ID)
	require.Empty(t, got.BoardID)
	require.Equal(t, 900.0, got.X)
	require.Equal(t, 900.0, got.Y)
	require.Equal(t, before, hist.Snapshots)
}

func TestWorkspace_MoveObjectToBoardKeepsWorldPosition(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)
	x := 500.0
	b := ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 400, Height: 400, X: &x, Y: origin()})
	require.NoError(t, ws.DeleteBoard(ctx, b.ID))
	loose := addRect(t, ws, 600, 100, 20, 20)

	b = ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 400, Height: 400, X: &x, Y: origin()})
	moved, err := ws.MoveObjectToBoard(ctx, loose.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, moved.BoardID)
	require.Equal(t, 600.0, moved.X)

	data, err := ws.NodeData(loose.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0, data.X, "local to the frame")

	back, err := ws.MoveObjectToBoard(ctx, loose.ID, "")
	require.NoError(t, err)
	require.Empty(t, back.BoardID)
	require.Equal(t, 600.0, back.X)
}

// ─────────────────────────────────────────────────────────────
// Clipboard
// ─────────────────────────────────────────────────────────────

func TestWorkspace_CopyPasteTwice(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	ws.CreateBoard(ctx, domain.CreateBoardOptions{X: origin(), Y: origin()})
	r := addRect(t, ws, 100, 100, 50, 50)

	require.NoError(t, ws.Select(ctx, r.ID))
	n, err := ws.Copy(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	before := hist.Snapshots
	first := ws.Paste(ctx)
	second := ws.Paste(ctx)
	require.Len(t, first.IDs, 1)
	require.Len(t, second.IDs, 1)
	require.Empty(t, first.Failures)
	require.Equal(t, before+2, hist.Snapshots)

	ids := map[string]bool{r.ID: true}
	for _, id := range []string{first.IDs[0], second.IDs[0]} {
		require.False(t, ids[id], "paste ids are fresh")
		ids[id] = true
		info := objectByID(t, ws, id)
		require.Equal(t, 120.0, info.X)
		require.Equal(t, 120.0, info.Y)
	}
	require.Len(t, ws.Objects(), 3)
}

func TestWorkspace_PasteSkipsBadEntries(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemorySlots(0)
	hist := &service.MockHistory{}
	ws, err := service.NewWorkspace(service.WorkspaceOptions{History: hist, Slots: slots})
	require.NoError(t, err)

	require.NoError(t, slots.SetSlot(service.ClipboardKey,
		`[{"tag":"Rect","x":1,"width":5,"height":5},{"tag":"Nope"},{"tag":"Frame"},{"x":3}]`))

	report := ws.Paste(ctx)
	require.Len(t, report.IDs, 1)
	require.Len(t, report.Failures, 3)
	require.Equal(t, 1, report.Failures[0].Index)
	require.Equal(t, 1, hist.Snapshots)

	info := objectByID(t, ws, report.IDs[0])
	require.Equal(t, 21.0, info.X)
	require.Equal(t, 20.0, info.Y, "missing numeric fields decode as zero")

	require.NoError(t, slots.SetSlot(service.ClipboardKey, `not json`))
	report = ws.Paste(ctx)
	require.Empty(t, report.IDs)
	require.Len(t, report.Failures, 1)
	require.Equal(t, 1, hist.Snapshots)
}

func TestWorkspace_DeleteAndLockSelection(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	a := addRect(t, ws, 0, 0, 10, 10)
	b := addRect(t, ws, 20, 20, 10, 10)
	c := addRect(t, ws, 40, 40, 10, 10)

	ws.ClearSelection(ctx)
	require.Equal(t, 0, ws.DeleteSelection(ctx), "empty selection is a no-op")

	require.NoError(t, ws.Select(ctx, a.ID, b.ID))
	require.Equal(t, 2, ws.Lock(ctx))
	require.Empty(t, ws.Selection(), "lock clears the selection")
	require.Len(t, ws.LockedObjects(), 2)

	require.NoError(t, ws.Select(ctx, a.ID, b.ID))
	require.True(t, ws.SelectionState().AllLocked)
	require.Equal(t, 0, ws.DragSelection(ctx, 5, 5), "locked elements do not drag")
	require.False(t, ws.ToggleLock(ctx), "all locked toggles to unlocked")
	require.Empty(t, ws.LockedObjects())

	before := hist.Snapshots
	require.Equal(t, 2, ws.DeleteSelection(ctx))
	require.Equal(t, before+1, hist.Snapshots, "one snapshot per batch")
	require.Empty(t, ws.Selection())

	objs := ws.Objects()
	require.Len(t, objs, 1)
	require.Equal(t, c.ID, objs[0].ID)
}

func TestWorkspace_DeleteSelectionRemovesLocked(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)
	r := addRect(t, ws, 0, 0, 10, 10)
	_, err := ws.ToggleObjectLock(ctx, r.ID)
	require.NoError(t, err)

	require.Equal(t, 1, ws.SelectAll(ctx))
	require.Equal(t, 1, ws.DeleteSelection(ctx))
	require.Empty(t, ws.Objects())
}

func TestWorkspace_DraggingActiveBoardMovesItsRecord(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)
	b := ws.CreateBoard(ctx, domain.CreateBoardOptions{Width: 400, Height: 300, X: origin(), Y: origin()})
	r := addRect(t, ws, 10, 10, 20, 20)

	require.NoError(t, ws.SetActiveBoard(ctx, b.ID))
	require.Equal(t, 1, ws.DragSelection(ctx, 100, 0))

	boards := ws.Boards()
	require.Len(t, boards, 1)
	require.Equal(t, 100.0, boards[0].X)
	require.Equal(t, 0.0, boards[0].Y)
	require.Equal(t, 100.0, ws.State().Boards[0].X)
	require.Equal(t, 110.0, objectByID(t, ws, r.ID).X, "members travel with the frame")

	width := 500.0
	updated, err := ws.UpdateBoard(ctx, b.ID, domain.UpdateBoardOptions{Width: &width})
	require.NoError(t, err)
	require.Equal(t, 100.0, updated.X)
}

// ─────────────────────────────────────────────────────────────
// Layers, menu, properties
// ─────────────────────────────────────────────────────────────

func TestWorkspace_ArrangeAndMenu(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	a := addRect(t, ws, 0, 0, 100, 100)
	b := addRect(t, ws, 10, 10, 100, 100)

	before := hist.Snapshots
	moved, err := ws.Arrange(ctx, b.ID, service.LayerFront)
	require.NoError(t, err)
	require.False(t, moved)
	require.Equal(t, before, hist.Snapshots)

	moved, err = ws.Arrange(ctx, a.ID, service.LayerFront)
	require.NoError(t, err)
	require.True(t, moved)
	require.Equal(t, before+1, hist.Snapshots)
	require.Equal(t, 1, objectByID(t, ws, a.ID).Index)

	ok, err := ws.ReorderObject(ctx, a.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, before+1, hist.Snapshots)

	ws.ClearSelection(ctx)
	state := ws.ShowMenu(300, 200, 50, 50)
	require.True(t, state.Show)
	require.Equal(t, a.ID, state.TargetID, "topmost element under the point")
	require.False(t, state.HasSelection)

	hit, ok := ws.ObjectAt(105, 105)
	require.True(t, ok)
	require.Equal(t, b.ID, hit.ID)

	ws.HideMenu()
	require.False(t, ws.MenuState().Show)

	_, err = ws.Arrange(ctx, "missing", service.LayerBack)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestWorkspace_UpdateProperties(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)
	line, err := ws.AddElement(ctx, service.ElementSpec{Type: domain.ElementLine, Points: []float64{0, 0, 50, 50}})
	require.NoError(t, err)

	red := "#ff0000"
	done, err := ws.UpdateProperties(ctx, line.ID, service.PropertyUpdate{Stroke: &red, EndArrow: &red})
	require.NoError(t, err)
	require.Equal(t, []service.Property{service.PropStroke}, done, "plain lines ignore arrowheads")

	before := hist.Snapshots
	_, err = ws.UpdateProperties(ctx, line.ID, service.PropertyUpdate{TextColor: &red})
	require.ErrorIs(t, err, service.ErrUnsupportedProperty)
	require.Equal(t, before, hist.Snapshots)
}

// ─────────────────────────────────────────────────────────────
// Tools, guidelines, query
// ─────────────────────────────────────────────────────────────

func TestWorkspace_PolygonClosesNearStart(t *testing.T) {
	ctx := context.Background()
	ws, hist := newWorkspace(t)

	for _, p := range [][2]float64{{0, 0}, {100, 0}, {100, 100}} {
		_, done := ws.AddPolygonPoint(ctx, p[0], p[1])
		require.False(t, done)
	}
	require.Equal(t, []float64{0, 0, 100, 0, 100, 100}, ws.PolygonPoints())
	require.Empty(t, ws.Objects(), "preview is not registered")
	require.Equal(t, 0, hist.Snapshots)

	poly, done := ws.AddPolygonPoint(ctx, 5, 5)
	require.True(t, done)
	require.Equal(t, domain.ElementPolygon, poly.Type)
	require.Equal(t, 1, hist.Snapshots)

	data, err := ws.NodeData(poly.ID)
	require.NoError(t, err)
	require.Equal(t, "M 0 0 L 100 0 L 100 100 Z", data.Path)

	// fewer than two vertices cancels
	_, done = ws.AddPolygonPoint(ctx, 0, 0)
	require.False(t, done)
	_, done = ws.FinishPolygon(ctx, true)
	require.False(t, done)
	require.Empty(t, ws.PolygonPoints())
	require.Len(t, ws.Objects(), 1)
}

type stubPicker struct {
	img service.ImageFile
	err error
}

func (p stubPicker) PickImage(context.Context) (service.ImageFile, error) { return p.img, p.err }

func TestWorkspace_InsertImageAndText(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)

	_, err := ws.InsertImage(ctx, 0, 0, stubPicker{err: service.ErrNoImage})
	require.ErrorIs(t, err, service.ErrNoImage)
	require.Empty(t, ws.Objects())

	img, err := ws.InsertImage(ctx, 10, 20, stubPicker{img: service.ImageFile{URL: "file:///a.png", Width: 40, Height: 30}})
	require.NoError(t, err)
	require.Equal(t, domain.ElementImage, img.Type)
	require.Equal(t, 40.0, img.Width)

	txt := ws.AddText(ctx, 5, 5, "")
	require.Equal(t, domain.ElementText, txt.Type)
	data, err := ws.NodeData(txt.ID)
	require.NoError(t, err)
	require.Equal(t, "Double-click to edit", data.Text)
	require.Equal(t, service.DefaultToolStyle.TextColor, data.Fill)
}

func TestWorkspace_Guidelines(t *testing.T) {
	ctx := context.Background()
	emitter := &service.MockEmitter{}
	ws, err := service.NewWorkspace(service.WorkspaceOptions{GuidelinesVisible: true, Emitter: emitter})
	require.NoError(t, err)

	h, err := ws.AddGuideline(ctx, domain.Horizontal, 100)
	require.NoError(t, err)
	v, err := ws.AddGuideline(ctx, domain.Vertical, 50)
	require.NoError(t, err)
	_, err = ws.AddGuideline(ctx, "diagonal", 1)
	require.Error(t, err)

	snap := ws.SnapPositions()
	require.Equal(t, []float64{100}, snap.Horizontal)
	require.Equal(t, []float64{50}, snap.Vertical)

	require.True(t, ws.DragGuideline(ctx, h, 30, 40))
	require.True(t, ws.MoveGuideline(ctx, v, 75))
	lines := ws.Guidelines()
	require.Equal(t, 140.0, lines[0].Position)
	require.Equal(t, 75.0, lines[1].Position)

	require.False(t, ws.ToggleGuidelines(ctx))
	require.Empty(t, ws.SnapPositions().Horizontal)

	require.True(t, ws.DoubleTapGuideline(ctx, h))
	require.Len(t, ws.Guidelines(), 1)
	require.Empty(t, ws.Objects(), "guidelines are not elements")
	require.Empty(t, ws.State().Root, "guidelines are not captured")

	var guideEvents int
	for _, ev := range emitter.Events {
		if ev.Event == service.EventGuidelinesChanged {
			guideEvents++
		}
	}
	require.Equal(t, 6, guideEvents)
}

func TestWorkspace_SelectWhere(t *testing.T) {
	ctx := context.Background()
	ws, _ := newWorkspace(t)
	wide := addRect(t, ws, 0, 0, 200, 100)
	addRect(t, ws, 0, 0, 50, 50)
	_, err := ws.AddElement(ctx, service.ElementSpec{Type: domain.ElementCircle, X: 10, Y: 10, Width: 300, Height: 300})
	require.NoError(t, err)

	got, err := ws.SelectWhere(`type == "rect" && width > 100`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, wide.ID, got[0].ID)

	_, err = ws.SelectWhere(`type ==`)
	require.Error(t, err)
}

func TestWorkspace_EmitsChangeEvents(t *testing.T) {
	ctx := context.Background()
	emitter := &service.MockEmitter{}
	ws, err := service.NewWorkspace(service.WorkspaceOptions{Emitter: emitter})
	require.NoError(t, err)

	addRect(t, ws, 0, 0, 10, 10)
	var names []string
	for _, ev := range emitter.Events {
		names = append(names, ev.Event)
	}
	require.Equal(t, []string{
		service.EventObjectsChanged,
		service.EventSelectionChanged,
		service.EventHistoryChanged,
	}, names)

	emitter.Events = nil
	ws.ClearBoards(ctx)
	require.Empty(t, emitter.Events, "no-op emits nothing")
}

// ─────────────────────────────────────────────────────────────
// Undo / redo over sqlite
// ─────────────────────────────────────────────────────────────

func TestWorkspace_UndoRedo(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "wb.db"), filepath.Join(dir, "docs"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hist := service.NewUndoHistory(storage.NewUndoStore(db, storage.DefaultMaxUndoNodes), "doc")
	ws, err := service.NewWorkspace(service.WorkspaceOptions{History: hist})
	require.NoError(t, err)

	require.ErrorIs(t, ws.Undo(ctx), storage.ErrNoHistory, "baseline has no parent")

	board := ws.CreateBoard(ctx, domain.CreateBoardOptions{})
	r := addRect(t, ws, 10, 10, 20, 20)

	require.NoError(t, ws.Undo(ctx))
	require.Empty(t, ws.Objects())
	require.Len(t, ws.Boards(), 1)

	require.NoError(t, ws.Undo(ctx))
	require.Empty(t, ws.Boards())

	require.NoError(t, ws.Redo(ctx))
	require.NoError(t, ws.Redo(ctx))
	active, ok := ws.ActiveBoard()
	require.True(t, ok)
	require.Equal(t, board.ID, active.ID)
	restored := objectByID(t, ws, r.ID)
	require.Equal(t, board.ID, restored.BoardID)
	require.Equal(t, 10.0, restored.X)

	require.ErrorIs(t, ws.Redo(ctx), storage.ErrNoHistory)

	tree, err := hist.Tree()
	require.NoError(t, err)
	require.NotNil(t, tree)
}

func TestWorkspace_LoadState(t *testing.T) {
	ctx := context.Background()
	src, _ := newWorkspace(t)
	b := src.CreateBoard(ctx, domain.CreateBoardOptions{})
	r := addRect(t, src, 30, 30, 10, 10)
	data, err := src.StateJSON()
	require.NoError(t, err)

	dst, hist := newWorkspace(t)
	require.NoError(t, dst.LoadState(ctx, data))
	require.Equal(t, 1, hist.Snapshots)
	require.Len(t, dst.Boards(), 1)
	got := objectByID(t, dst, r.ID)
	require.Equal(t, b.ID, got.BoardID)

	require.Error(t, dst.LoadState(ctx, []byte(`{"root":[{"tag":"Nope"}]}`)))
	require.Len(t, dst.Objects(), 1, "failed load keeps the old state")
}
