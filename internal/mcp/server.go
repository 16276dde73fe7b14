package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for the whiteboard. It exposes tools, resources
// and prompts so AI agents can edit boards and elements.
type Server struct {
	mcp      *server.MCPServer
	ws       *service.Workspace
	emitter  EventEmitter
	approval *ApprovalQueue // nil: destructive tools run without asking
	layout   *LayoutEngine
}

// Deps holds everything the host passes to the MCP server.
type Deps struct {
	Workspace *service.Workspace
	Emitter   EventEmitter
	// RequireApproval gates destructive tools behind the approval queue.
	RequireApproval bool
	// ApprovalDB switches approvals to the mcp_approvals table (standalone mode).
	ApprovalDB *sql.DB
}

// New creates and configures a new MCP server with all tools, resources
// and prompts registered.
func New(ctx context.Context, deps Deps) *Server {
	s := &Server{
		ws:      deps.Workspace,
		emitter: deps.Emitter,
		layout:  NewLayoutEngine(),
	}
	if deps.RequireApproval {
		s.approval = NewApprovalQueue(ctx, deps.Emitter)
		if deps.ApprovalDB != nil {
			s.approval.SetDB(deps.ApprovalDB)
		}
	}

	s.mcp = server.NewMCPServer(
		"whiteboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBoardTools()
	s.registerElementTools()
	s.registerSelectionTools()
	s.registerGuidelineTools()
	s.registerHistoryTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) bool {
	if s.approval == nil {
		return false
	}
	return s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) bool {
	if s.approval == nil {
		return false
	}
	return s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// confirm asks the user before a destructive tool runs. ids are passed
// along so the UI can highlight what would be affected.
func (s *Server) confirm(tool, description string, ids ...string) error {
	if s.approval == nil {
		return nil
	}
	meta := ""
	if len(ids) > 0 {
		data, _ := marshalJSON(map[string][]string{"objectIds": ids})
		meta = string(data)
	}
	if _, err := s.approval.Request(tool, description, meta); err != nil {
		return err
	}
	return nil
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// resolveBoard returns the board named by boardId, falling back to the
// active board. ok is false when neither exists.
func (s *Server) resolveBoard(args map[string]any) (domain.Board, bool, error) {
	if id, _ := args["boardId"].(string); id != "" {
		for _, b := range s.ws.Boards() {
			if b.ID == id {
				return b, true, nil
			}
		}
		return domain.Board{}, false, fmt.Errorf("board %s: %w", id, service.ErrNotFound)
	}
	b, ok := s.ws.ActiveBoard()
	return b, ok, nil
}
