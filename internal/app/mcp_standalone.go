package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"whiteboard/internal/config"
	mcpserver "whiteboard/internal/mcp"
	"whiteboard/internal/service"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// saveOnChange writes the document after every committed mutation so a
// running desktop app sees agent edits on its next poll.
type saveOnChange struct {
	autosave *service.Autosave
}

func (e *saveOnChange) Emit(ctx context.Context, event string, _ any) {
	switch event {
	case service.EventObjectsChanged, service.EventBoardsChanged, service.EventGuidelinesChanged:
	default:
		return
	}
	if e.autosave == nil {
		return
	}
	if _, err := e.autosave.Save(ctx); err != nil {
		log.Printf("[MCP] %v", err)
	}
}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// Destructive tools wait for approval from the desktop app through the
// shared database.
func ServeMCP(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	emitter := &saveOnChange{}
	st, err := openStack(ctx, cfg, emitter)
	if err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}
	defer st.close(context.Background())
	emitter.autosave = st.autosave

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Workspace:       st.ws,
		Emitter:         noopEmitter{},
		RequireApproval: true,
		ApprovalDB:      st.db.Conn(), // Enable SQLite-based approval IPC
	})

	if err := mcpSrv.ServeStdio(); err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}
