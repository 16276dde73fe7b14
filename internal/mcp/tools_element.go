package mcpserver

import (
	"context"
	"fmt"
	"math"
	"strings"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
	"whiteboard/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerElementTools() {
	// ── add_element ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add an element to the active board (or boardId). Position is auto-calculated on the board if x/y are omitted."),
		mcp.WithString("type",
			mcp.Description("Element type: rect, circle, line, arrow, pen, text, image, polygon"),
			mcp.Required(),
		),
		mcp.WithString("boardId", mcp.Description("Board to insert into (optional, becomes active)")),
		mcp.WithNumber("x", mcp.Description("World X (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("World Y (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (rect, circle, image)")),
		mcp.WithNumber("height", mcp.Description("Height (rect, circle, image)")),
		mcp.WithString("points", mcp.Description("JSON array of x,y pairs relative to x/y, e.g. [0,0,120,40] (line, arrow, pen, polygon)")),
		mcp.WithString("text", mcp.Description("Text content (text)")),
		mcp.WithNumber("fontSize", mcp.Description("Font size (text)")),
		mcp.WithString("url", mcp.Description("Image source (image)")),
		mcp.WithString("fill", mcp.Description("Fill color, or text color for text")),
		mcp.WithString("stroke", mcp.Description("Stroke color")),
		mcp.WithNumber("strokeWidth", mcp.Description("Stroke width")),
		mcp.WithString("startArrow", mcp.Description("Start arrowhead (arrow): none, arrow, triangle, circle")),
		mcp.WithString("endArrow", mcp.Description("End arrowhead (arrow)")),
	), s.handleAddElement)

	// ── draw_polygon ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("draw_polygon",
		mcp.WithDescription("Draw a polygon vertex by vertex in world coordinates, like the polygon tool"),
		mcp.WithString("points", mcp.Description("JSON array of world x,y pairs"), mcp.Required()),
		mcp.WithBoolean("close", mcp.Description("Close the path (default true)")),
	), s.handleDrawPolygon)

	// ── list_objects ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_objects",
		mcp.WithDescription("List elements, optionally only those on one board"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional)")),
		mcp.WithString("type", mcp.Description("Filter by element type (optional)")),
	), s.handleListObjects)

	// ── get_object ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_object",
		mcp.WithDescription("Get an element's summary and its full node data"),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
	), s.handleGetObject)

	// ── object_at ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("object_at",
		mcp.WithDescription("Find the topmost element under a world point"),
		mcp.WithNumber("x", mcp.Description("World X"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("World Y"), mcp.Required()),
	), s.handleObjectAt)

	// ── query_objects ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("query_objects",
		mcp.WithDescription("Find elements matching an expression over id, type, boardId, x, y, width, height, locked, visible, fill, stroke, text, e.g. \"type == 'rect' && width > 100\""),
		mcp.WithString("expression", mcp.Description("Boolean expression"), mcp.Required()),
		mcp.WithBoolean("select", mcp.Description("Also replace the selection with the matches")),
	), s.handleQueryObjects)

	// ── move_object ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_object",
		mcp.WithDescription("Move an element by a delta, or to an absolute world position when x/y are given. Elements stay inside their board."),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal delta")),
		mcp.WithNumber("dy", mcp.Description("Vertical delta")),
		mcp.WithNumber("x", mcp.Description("Target world X")),
		mcp.WithNumber("y", mcp.Description("Target world Y")),
	), s.handleMoveObject)

	// ── move_object_to_board ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_object_to_board",
		mcp.WithDescription("Reparent an element into another board keeping its world position. Empty boardId moves it to the root canvas."),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithString("boardId", mcp.Description("Target board ID (empty for root)")),
	), s.handleMoveObjectToBoard)

	// ── arrange_objects ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_objects",
		mcp.WithDescription("Lay elements out in a grid, wrapping rows at rowWidth"),
		mcp.WithString("objectIds", mcp.Description("Comma-separated object IDs"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Grid origin X (default: first object's X)")),
		mcp.WithNumber("y", mcp.Description("Grid origin Y (default: first object's Y)")),
		mcp.WithNumber("rowWidth", mcp.Description("Row width before wrapping (default: board width)")),
	), s.handleArrangeObjects)

	// ── update_properties ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_properties",
		mcp.WithDescription("Change style properties of an element. Each element kind accepts its own subset; unsupported fields are ignored."),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithString("fill", mcp.Description("Fill color")),
		mcp.WithString("stroke", mcp.Description("Stroke color")),
		mcp.WithNumber("strokeWidth", mcp.Description("Stroke width")),
		mcp.WithString("dashPattern", mcp.Description("JSON array of dash lengths, [] for solid")),
		mcp.WithString("startArrow", mcp.Description("Start arrowhead (arrows)")),
		mcp.WithString("endArrow", mcp.Description("End arrowhead (arrows)")),
		mcp.WithString("textColor", mcp.Description("Text color (text)")),
		mcp.WithNumber("fontSize", mcp.Description("Font size (text)")),
		mcp.WithNumber("width", mcp.Description("Width (images)")),
		mcp.WithNumber("height", mcp.Description("Height (images)")),
		mcp.WithBoolean("keepAspectRatio", mcp.Description("Scale the other image side along (images)")),
		mcp.WithString("url", mcp.Description("Image source (images)")),
	), s.handleUpdateProperties)

	// ── delete_object (destructive) ────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_object",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete an element (a group goes with its children). Requires user approval."),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteObject)
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	elType := domain.ElementType(req.GetString("type", ""))
	if !elType.Valid() || elType == domain.ElementGroup {
		return nil, fmt.Errorf("invalid element type %q", elType)
	}

	board, onBoard, err := s.resolveBoard(args)
	if err != nil {
		return nil, err
	}
	if onBoard {
		if active, ok := s.ws.ActiveBoard(); !ok || active.ID != board.ID {
			if err := s.ws.SetActiveBoard(ctx, board.ID); err != nil {
				return nil, fmt.Errorf("activate board: %w", err)
			}
		}
	}

	points, err := parseNumbers(req.GetString("points", ""))
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	spec := service.ElementSpec{
		Type:        elType,
		Width:       getFloat(args, "width", 0),
		Height:      getFloat(args, "height", 0),
		Points:      points,
		Text:        req.GetString("text", ""),
		FontSize:    getFloat(args, "fontSize", 0),
		URL:         req.GetString("url", ""),
		Fill:        req.GetString("fill", ""),
		Stroke:      req.GetString("stroke", ""),
		StrokeWidth: getFloat(args, "strokeWidth", 0),
		StartArrow:  req.GetString("startArrow", ""),
		EndArrow:    req.GetString("endArrow", ""),
	}

	_, hasX := args["x"].(float64)
	_, hasY := args["y"].(float64)
	if hasX && hasY {
		spec.X, spec.Y = getFloat(args, "x", 0), getFloat(args, "y", 0)
	} else {
		w, h := footprint(spec)
		area := Area{Width: MaxRowW}
		var existing []domain.ObjectInfo
		if onBoard {
			area = BoardArea(board)
			existing, _ = s.ws.BoardObjects(board.ID)
		} else {
			existing = s.ws.Objects()
		}
		spec.X, spec.Y = s.layout.NextPosition(area, existing, w, h)
		spec.X = getFloat(args, "x", spec.X)
		spec.Y = getFloat(args, "y", spec.Y)
	}

	info, err := s.ws.AddElement(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("add element: %w", err)
	}
	return jsonResult(info)
}

// footprint estimates the size an element will occupy for auto layout.
func footprint(spec service.ElementSpec) (float64, float64) {
	if len(spec.Points) >= 2 {
		var maxX, maxY float64
		for i := 0; i+1 < len(spec.Points); i += 2 {
			maxX = math.Max(maxX, spec.Points[i])
			maxY = math.Max(maxY, spec.Points[i+1])
		}
		return maxX, maxY
	}
	if spec.Type == domain.ElementText {
		size := spec.FontSize
		if size <= 0 {
			size = service.DefaultToolStyle.FontSize
		}
		return float64(len(spec.Text)) * size * 0.6, size * 1.2
	}
	return spec.Width, spec.Height
}

func (s *Server) handleDrawPolygon(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	points, err := parseNumbers(req.GetString("points", ""))
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	if len(points) < 6 || len(points)%2 != 0 {
		return nil, fmt.Errorf("points: need at least three x,y pairs")
	}
	closePath := getBool(req.GetArguments(), "close", true)

	s.ws.CancelPolygon()
	for i := 0; i+1 < len(points); i += 2 {
		if info, done := s.ws.AddPolygonPoint(ctx, points[i], points[i+1]); done {
			// a vertex landed on the start point and closed the shape
			return jsonResult(info)
		}
	}
	info, ok := s.ws.FinishPolygon(ctx, closePath)
	if !ok {
		return nil, fmt.Errorf("polygon was not created")
	}
	return jsonResult(info)
}

func (s *Server) handleListObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var objects []domain.ObjectInfo
	if boardID := req.GetString("boardId", ""); boardID != "" {
		var err error
		if objects, err = s.ws.BoardObjects(boardID); err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
	} else {
		objects = s.ws.Objects()
	}

	if typeFilter := req.GetString("type", ""); typeFilter != "" {
		filtered := make([]domain.ObjectInfo, 0, len(objects))
		for _, o := range objects {
			if string(o.Type) == typeFilter {
				filtered = append(filtered, o)
			}
		}
		objects = filtered
	}
	return jsonResult(objects)
}

type objectDetail struct {
	domain.ObjectInfo
	Node scene.NodeData `json:"node"`
}

func (s *Server) handleGetObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("objectId", "")
	info, err := s.ws.Object(id)
	if err != nil {
		return nil, err
	}
	data, err := s.ws.NodeData(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(objectDetail{ObjectInfo: info, Node: data})
}

func (s *Server) handleObjectAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	x, y := getFloat(args, "x", 0), getFloat(args, "y", 0)
	info, ok := s.ws.ObjectAt(x, y)
	if !ok {
		return textResult(fmt.Sprintf("No element at (%.0f, %.0f)", x, y)), nil
	}
	return jsonResult(info)
}

func (s *Server) handleQueryObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expression := req.GetString("expression", "")
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("expression is required")
	}
	matches, err := s.ws.SelectWhere(expression)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	if getBool(req.GetArguments(), "select", false) {
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		if err := s.ws.Select(ctx, ids...); err != nil {
			return nil, fmt.Errorf("select matches: %w", err)
		}
	}
	if matches == nil {
		matches = []domain.ObjectInfo{}
	}
	return jsonResult(matches)
}

func (s *Server) handleMoveObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id := req.GetString("objectId", "")
	current, err := s.ws.Object(id)
	if err != nil {
		return nil, err
	}
	dx := getFloat(args, "x", current.X+getFloat(args, "dx", 0)) - current.X
	dy := getFloat(args, "y", current.Y+getFloat(args, "dy", 0)) - current.Y

	info, err := s.ws.MoveObject(ctx, id, dx, dy)
	if err != nil {
		return nil, fmt.Errorf("move object: %w", err)
	}
	return jsonResult(info)
}

func (s *Server) handleMoveObjectToBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.ws.MoveObjectToBoard(ctx, req.GetString("objectId", ""), req.GetString("boardId", ""))
	if err != nil {
		return nil, fmt.Errorf("move object to board: %w", err)
	}
	return jsonResult(info)
}

func (s *Server) handleArrangeObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(req.GetString("objectIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("objectIds is required")
	}
	objects := make([]domain.ObjectInfo, 0, len(ids))
	for _, id := range ids {
		info, err := s.ws.Object(id)
		if err != nil {
			return nil, err
		}
		objects = append(objects, info)
	}

	rowW := getFloat(args, "rowWidth", 0)
	if rowW <= 0 {
		if board, ok, _ := s.resolveBoard(map[string]any{"boardId": objects[0].BoardID}); ok {
			rowW = board.Width
		}
	}
	startX := getFloat(args, "x", objects[0].X)
	startY := getFloat(args, "y", objects[0].Y)

	placements := s.layout.ArrangeGrid(objects, startX, startY, rowW)
	moves := make([]service.Move, len(placements))
	for i, p := range placements {
		moves[i] = service.Move{ID: p.ID, DX: p.X - objects[i].X, DY: p.Y - objects[i].Y}
	}
	moved, err := s.ws.MoveObjects(ctx, moves)
	if err != nil {
		return nil, fmt.Errorf("arrange objects: %w", err)
	}
	return jsonResult(moved)
}

func (s *Server) handleUpdateProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	u := service.PropertyUpdate{
		Fill:            optString(args, "fill"),
		Stroke:          optString(args, "stroke"),
		StrokeWidth:     optFloat(args, "strokeWidth"),
		StartArrow:      optString(args, "startArrow"),
		EndArrow:        optString(args, "endArrow"),
		TextColor:       optString(args, "textColor"),
		FontSize:        optFloat(args, "fontSize"),
		Width:           optFloat(args, "width"),
		Height:          optFloat(args, "height"),
		KeepAspectRatio: getBool(args, "keepAspectRatio", false),
		URL:             optString(args, "url"),
	}
	if raw := req.GetString("dashPattern", ""); raw != "" {
		dash, err := parseNumbers(raw)
		if err != nil {
			return nil, fmt.Errorf("dashPattern: %w", err)
		}
		if dash == nil {
			dash = []float64{}
		}
		u.DashPattern = &dash
	}

	changed, err := s.ws.UpdateProperties(ctx, req.GetString("objectId", ""), u)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return textResult("No applicable properties for this element"), nil
	}
	return jsonResult(changed)
}

func (s *Server) handleDeleteObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("objectId", "")
	info, err := s.ws.Object(id)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Delete %s %s", info.Type, id)
	if info.Children > 0 {
		desc += fmt.Sprintf(" and its %d child element(s)", info.Children)
	}
	if err := s.confirm("delete_object", desc, id); err != nil {
		return nil, err
	}
	if err := s.ws.DeleteObject(ctx, id); err != nil {
		return nil, fmt.Errorf("delete object: %w", err)
	}
	return textResult(fmt.Sprintf("Deleted %s", id)), nil
}
