package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) (*Server, *service.Workspace) {
	t.Helper()
	ws, err := service.NewWorkspace(service.WorkspaceOptions{Emitter: &service.MockEmitter{}})
	require.NoError(t, err)
	t.Cleanup(ws.Close)
	return New(context.Background(), Deps{Workspace: ws, Emitter: &recordingEmitter{}}), ws
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// call runs h and returns the text of its result.
func call(t *testing.T, h toolHandler, args map[string]any) string {
	t.Helper()
	res, err := h(context.Background(), toolRequest(args))
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func callJSON[T any](t *testing.T, h toolHandler, args map[string]any) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(call(t, h, args)), &out))
	return out
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
	onEmit func(event string, data any)
}

func (e *recordingEmitter) Emit(_ context.Context, event string, data any) {
	e.mu.Lock()
	e.events = append(e.events, event)
	hook := e.onEmit
	e.mu.Unlock()
	if hook != nil {
		hook(event, data)
	}
}

func (e *recordingEmitter) Events() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

func TestCreateBoardAndAutoLayout(t *testing.T) {
	s, ws := newTestServer(t)

	board := callJSON[domain.Board](t, s.handleCreateBoard, map[string]any{"name": "Arch", "preset": "1280x720"})
	require.Equal(t, "Arch", board.Name)
	require.Equal(t, 1280.0, board.Width)
	require.Equal(t, 720.0, board.Height)
	active, ok := ws.ActiveBoard()
	require.True(t, ok)
	require.Equal(t, board.ID, active.ID)

	first := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{"type": "rect", "width": 100.0, "height": 100.0})
	require.Equal(t, board.ID, first.BoardID)
	require.Equal(t, 0.0, first.X)
	require.Equal(t, 0.0, first.Y)

	second := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{"type": "rect", "width": 100.0, "height": 100.0})
	require.Equal(t, 120.0, second.X, "placed right of the first rect with padding")
	require.Equal(t, 0.0, second.Y)

	placed := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{
		"type": "circle", "x": 400.0, "y": 300.0, "width": 50.0, "height": 50.0,
	})
	require.Equal(t, domain.ElementCircle, placed.Type)
	require.Equal(t, 400.0, placed.X)
	require.Equal(t, 300.0, placed.Y)

	list := callJSON[boardList](t, s.handleListBoards, nil)
	require.Equal(t, board.ID, list.ActiveBoardID)
	require.Len(t, list.Boards, 1)
}

func TestAddElementRejectsBadInput(t *testing.T) {
	s, _ := newTestServer(t)
	for _, args := range []map[string]any{
		{"type": "hexagon"},
		{"type": "group"},
		{"type": "line", "x": 0.0, "y": 0.0, "points": "not json"},
		{"type": "rect", "x": 0.0, "y": 0.0},
		{"type": "rect", "boardId": "missing"},
	} {
		_, err := s.handleAddElement(context.Background(), toolRequest(args))
		require.Error(t, err, "args %v", args)
	}
	_, err := s.handleCreateBoard(context.Background(), toolRequest(map[string]any{"preset": "Letter"}))
	require.Error(t, err)
}

func TestMoveQueryAndGroup(t *testing.T) {
	s, _ := newTestServer(t)
	callJSON[domain.Board](t, s.handleCreateBoard, nil)
	a := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{"type": "rect", "x": 10.0, "y": 10.0, "width": 50.0, "height": 50.0})
	b := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{"type": "rect", "x": 100.0, "y": 10.0, "width": 200.0, "height": 50.0})

	moved := callJSON[domain.ObjectInfo](t, s.handleMoveObject, map[string]any{"objectId": a.ID, "x": 200.0, "y": 300.0})
	require.Equal(t, 200.0, moved.X)
	require.Equal(t, 300.0, moved.Y)
	moved = callJSON[domain.ObjectInfo](t, s.handleMoveObject, map[string]any{"objectId": a.ID, "dx": -10.0})
	require.Equal(t, 190.0, moved.X)

	matches := callJSON[[]domain.ObjectInfo](t, s.handleQueryObjects, map[string]any{"expression": "width > 100", "select": true})
	require.Len(t, matches, 1)
	require.Equal(t, b.ID, matches[0].ID)
	sel := callJSON[selectionResult](t, s.handleGetSelection, nil)
	require.Equal(t, 1, sel.State.Count)

	call(t, s.handleSelectObjects, map[string]any{"objectIds": a.ID + ", " + b.ID})
	group := callJSON[domain.ObjectInfo](t, s.handleGroupSelection, nil)
	require.Equal(t, domain.ElementGroup, group.Type)
	require.Equal(t, 2, group.Children)

	children := callJSON[[]domain.ObjectInfo](t, s.handleUngroupSelection, nil)
	require.Len(t, children, 2)

	_, err := s.handleUngroupSelection(context.Background(), toolRequest(nil))
	require.Error(t, err, "children are selected, not a group")
}

func TestArrangeObjectsIsOneStep(t *testing.T) {
	s, ws := newTestServer(t)
	callJSON[domain.Board](t, s.handleCreateBoard, nil)
	var ids []string
	for _, pos := range [][2]float64{{0, 0}, {300, 300}, {500, 100}} {
		info := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{
			"type": "rect", "x": pos[0], "y": pos[1], "width": 50.0, "height": 50.0,
		})
		ids = append(ids, info.ID)
	}
	args := map[string]any{"objectIds": strings.Join(ids, ",")}

	_, err := ws.ToggleObjectLock(context.Background(), ids[1])
	require.NoError(t, err)
	rev := ws.Revision()
	_, err = s.handleArrangeObjects(context.Background(), toolRequest(args))
	require.ErrorIs(t, err, service.ErrLocked)
	require.Equal(t, rev, ws.Revision(), "a locked id leaves the scene untouched")

	_, err = ws.ToggleObjectLock(context.Background(), ids[1])
	require.NoError(t, err)
	rev = ws.Revision()
	moved := callJSON[[]domain.ObjectInfo](t, s.handleArrangeObjects, args)
	require.Len(t, moved, 3)
	require.Equal(t, rev+1, ws.Revision(), "one history entry per arrange")
	require.Equal(t, moved[0].Y, moved[1].Y, "laid out on one row")
}

func TestCopyPasteAndLayers(t *testing.T) {
	s, _ := newTestServer(t)
	callJSON[domain.Board](t, s.handleCreateBoard, nil)
	a := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{"type": "rect", "x": 100.0, "y": 100.0, "width": 50.0, "height": 50.0})

	require.Equal(t, "Copied 1 element(s)", call(t, s.handleCopySelection, nil))
	report := callJSON[service.PasteReport](t, s.handlePaste, nil)
	require.Len(t, report.IDs, 1)
	require.NotEqual(t, a.ID, report.IDs[0])

	// the pasted copy sits on top; sending it back swaps the order
	pasted := callJSON[domain.ObjectInfo](t, s.handleArrangeLayer, map[string]any{"objectId": report.IDs[0], "op": "back"})
	require.Equal(t, 0, pasted.Index)
	require.Contains(t, call(t, s.handleArrangeLayer, map[string]any{"objectId": report.IDs[0], "op": "back"}), "already in place")
	_, err := s.handleArrangeLayer(context.Background(), toolRequest(map[string]any{"objectId": a.ID, "op": "sideways"}))
	require.Error(t, err)

	require.Contains(t, call(t, s.handleToggleVisibility, map[string]any{"objectId": a.ID}), "hidden")
}

func TestDrawPolygon(t *testing.T) {
	s, _ := newTestServer(t)
	info := callJSON[domain.ObjectInfo](t, s.handleDrawPolygon, map[string]any{"points": "[0,0,100,0,100,100]"})
	require.Equal(t, domain.ElementPolygon, info.Type)
	require.Equal(t, 100.0, info.Width)

	_, err := s.handleDrawPolygon(context.Background(), toolRequest(map[string]any{"points": "[0,0,1,1]"}))
	require.Error(t, err)
}

func TestGuidelineTools(t *testing.T) {
	s, _ := newTestServer(t)
	gl := callJSON[domain.Guideline](t, s.handleAddGuideline, map[string]any{"orientation": "horizontal", "position": 50.0})
	require.NotEmpty(t, gl.ID)

	_, err := s.handleAddGuideline(context.Background(), toolRequest(map[string]any{"orientation": "diagonal", "position": 1.0}))
	require.Error(t, err)

	call(t, s.handleMoveGuideline, map[string]any{"guidelineId": gl.ID, "position": 80.0})
	call(t, s.handleSetGuidelinesVisible, map[string]any{"visible": true})
	list := callJSON[guidelineList](t, s.handleListGuidelines, nil)
	require.Equal(t, []float64{80}, list.Snap.Horizontal)

	call(t, s.handleSetGuidelinesVisible, map[string]any{"visible": false})
	list = callJSON[guidelineList](t, s.handleListGuidelines, nil)
	require.Empty(t, list.Snap.Horizontal, "hidden guidelines give no snap positions")

	call(t, s.handleRemoveGuideline, map[string]any{"guidelineId": gl.ID})
	_, err = s.handleRemoveGuideline(context.Background(), toolRequest(map[string]any{"guidelineId": gl.ID}))
	require.Error(t, err)
}

func TestHistoryToolsWithoutUndo(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, "Nothing to undo", call(t, s.handleUndo, nil))
	require.Equal(t, "Nothing to redo", call(t, s.handleRedo, nil))

	callJSON[domain.Board](t, s.handleCreateBoard, map[string]any{"name": "Saved"})
	state := call(t, s.handleGetState, nil)

	call(t, s.handleClearBoards, nil)
	require.Equal(t, "Loaded 1 board(s)", call(t, s.handleLoadState, map[string]any{"state": state}))
}

func TestDestructiveToolsWaitForApproval(t *testing.T) {
	ws, err := service.NewWorkspace(service.WorkspaceOptions{})
	require.NoError(t, err)
	t.Cleanup(ws.Close)

	emitter := &recordingEmitter{}
	s := New(context.Background(), Deps{Workspace: ws, Emitter: emitter, RequireApproval: true})

	approve := true
	emitter.onEmit = func(event string, data any) {
		if event != EventApprovalRequired {
			return
		}
		action := data.(domain.PendingAction)
		go func() {
			if approve {
				s.Approve(action.ID)
			} else {
				s.Reject(action.ID)
			}
		}()
	}

	callJSON[domain.Board](t, s.handleCreateBoard, nil)
	obj := callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{"type": "rect", "width": 40.0, "height": 40.0})

	approve = false
	_, err = s.handleDeleteObject(context.Background(), toolRequest(map[string]any{"objectId": obj.ID}))
	require.ErrorContains(t, err, "rejected")
	_, err = ws.Object(obj.ID)
	require.NoError(t, err, "rejected delete leaves the object")

	approve = true
	call(t, s.handleDeleteObject, map[string]any{"objectId": obj.ID})
	_, err = ws.Object(obj.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.Equal(t, []string{EventApprovalRequired, EventApprovalRequired}, emitter.Events())
}

func TestBoardObjectsResource(t *testing.T) {
	s, _ := newTestServer(t)
	board := callJSON[domain.Board](t, s.handleCreateBoard, nil)
	callJSON[domain.ObjectInfo](t, s.handleAddElement, map[string]any{"type": "text", "text": "hello"})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = boardURIPrefix + board.ID + "/objects"
	contents, err := s.handleBoardObjectsResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents)
	var objects []domain.ObjectInfo
	require.NoError(t, json.Unmarshal([]byte(text.Text), &objects))
	require.Len(t, objects, 1)
	require.Equal(t, domain.ElementText, objects[0].Type)

	req.Params.URI = boardURIPrefix + "nope/objects"
	_, err = s.handleBoardObjectsResource(context.Background(), req)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestExtractBoardIDFromURI(t *testing.T) {
	tests := []struct {
		uri, want string
	}{
		{"whiteboard://board/abc-123/objects", "abc-123"},
		{"whiteboard://board//objects", ""},
		{"whiteboard://board/a/b/objects", ""},
		{"whiteboard://boards", ""},
		{"notes://board/abc/objects", ""},
	}
	for _, tt := range tests {
		if got := extractBoardIDFromURI(tt.uri); got != tt.want {
			t.Errorf("extractBoardIDFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestTidyBoardPrompt(t *testing.T) {
	s, _ := newTestServer(t)
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"boardId": "b-1"}
	res, err := s.handleTidyBoardPrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	require.Contains(t, res.Messages[0].Content.(mcp.TextContent).Text, "whiteboard://board/b-1/objects")
}
