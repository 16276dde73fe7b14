package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	boardsURI      = "whiteboard://boards"
	objectsURI     = "whiteboard://objects"
	stateURI       = "whiteboard://state"
	boardURIPrefix = "whiteboard://board/"
)

func (s *Server) registerResources() {
	// ── whiteboard://boards ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		boardsURI,
		"All Boards",
		mcp.WithMIMEType("application/json"),
	), s.handleBoardsResource)

	// ── whiteboard://objects ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		objectsURI,
		"All Elements",
		mcp.WithMIMEType("application/json"),
	), s.handleObjectsResource)

	// ── whiteboard://state ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		stateURI,
		"Whiteboard State",
		mcp.WithMIMEType("application/json"),
	), s.handleStateResource)

	// ── whiteboard://board/{boardId}/objects ───────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			boardURIPrefix+"{boardId}/objects",
			"Elements on a Board",
		),
		s.handleBoardObjectsResource,
	)
}

func (s *Server) handleBoardsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out := boardList{Boards: s.ws.Boards()}
	if active, ok := s.ws.ActiveBoard(); ok {
		out.ActiveBoardID = active.ID
	}
	return jsonResource(boardsURI, out)
}

func (s *Server) handleObjectsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(objectsURI, s.ws.Objects())
}

func (s *Server) handleStateResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(stateURI, s.ws.State())
}

func (s *Server) handleBoardObjectsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	boardID := extractBoardIDFromURI(uri)
	if boardID == "" {
		return nil, fmt.Errorf("could not extract boardId from URI: %s", uri)
	}
	objects, err := s.ws.BoardObjects(boardID)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, objects)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractBoardIDFromURI extracts the board ID from
// "whiteboard://board/{id}/objects".
func extractBoardIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, boardURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/objects")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
