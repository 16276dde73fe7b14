package app

import (
	"context"
	"fmt"
	"log"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"whiteboard/internal/config"
	"whiteboard/internal/domain"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
	"whiteboard/internal/tracing"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx        context.Context
	cfg        config.Config
	configPath string

	stack     *stack
	settings  *service.SettingsService
	approvals *storage.ApprovalStore
	watcher   *documentWatcher
	picker    service.ImagePicker
}

// New creates a new App. configPath is watched for live changes when set.
func New(cfg config.Config, configPath string) *App {
	return &App{cfg: cfg, configPath: configPath}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	st, err := openStack(ctx, a.cfg, wailsEmitter{ctx: ctx})
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open workspace: %v", err)
		return
	}
	a.stack = st
	a.settings = service.NewSettingsService(storage.NewSlotStore(st.db))
	a.approvals = storage.NewApprovalStore(st.db)
	a.picker = dialogImagePicker{ctx: ctx}

	st.ws.SetToolStyle(a.settings.LoadToolStyle())

	if a.configPath != "" {
		if err := config.Watch(ctx, a.configPath, a.applyConfig); err != nil {
			wailsRuntime.LogErrorf(ctx, "Failed to watch config: %v", err)
		}
	}

	a.watcher = newDocumentWatcher(ctx, st.autosave, a.approvals, wailsEmitter{ctx: ctx})
	a.watcher.Start()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.settings != nil && a.stack != nil {
		if err := a.settings.SaveToolStyle(a.stack.ws.ToolStyle()); err != nil {
			log.Printf("[APP] %v", err)
		}
	}
	if a.stack != nil {
		a.stack.close(ctx)
	}
}

// applyConfig picks up the settings that can change while running.
func (a *App) applyConfig(cfg config.Config) {
	a.stack.ws.SetPasteOffset(cfg.Clipboard.PasteOffset)
	a.stack.ws.SetGuidelinesVisible(a.ctx, cfg.Guidelines.Visible)
}

// ─────────────────────────────────────────────────────────────
// stack: storage, history, workspace and autosave for one process
// ─────────────────────────────────────────────────────────────

type stack struct {
	db       *storage.DB
	ws       *service.Workspace
	history  *service.UndoHistory
	autosave *service.Autosave
	tracing  *tracing.Provider
}

// openStack opens the database, restores the last saved document and
// starts autosave. Both the desktop app and the standalone MCP server run
// on it.
func openStack(ctx context.Context, cfg config.Config, emitter service.EventEmitter) (*stack, error) {
	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		tp.Shutdown(ctx)
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	var slots domain.SlotStore
	switch cfg.Clipboard.Backend {
	case "sqlite":
		slots = storage.NewSlotStore(db)
	default:
		slots = storage.NewMemorySlots(0)
	}

	history := service.NewUndoHistory(storage.NewUndoStore(db, cfg.History.MaxNodes), cfg.History.Document)
	ws, err := service.NewWorkspace(service.WorkspaceOptions{
		Boards: service.BoardDefaults{
			Width:      cfg.Board.DefaultWidth,
			Height:     cfg.Board.DefaultHeight,
			Background: cfg.Board.Background,
		},
		PasteOffset:       cfg.Clipboard.PasteOffset,
		GuidelinesVisible: cfg.Guidelines.Visible,
		Slots:             slots,
		History:           history,
		Emitter:           emitter,
		Tracer:            tp.Tracer(),
	})
	if err != nil {
		db.Close()
		tp.Shutdown(ctx)
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	st := &stack{db: db, ws: ws, history: history, tracing: tp}
	st.autosave = service.NewAutosave(ws, storage.NewDocumentStore(db), cfg.History.Document, emitter)
	if _, err := st.autosave.Restore(ctx); err != nil {
		log.Printf("[APP] %v", err)
	}
	if cfg.Autosave.Enabled {
		if err := st.autosave.Start(ctx, cfg.Autosave.Schedule); err != nil {
			st.close(ctx)
			return nil, fmt.Errorf("open workspace: %w", err)
		}
	}
	return st, nil
}

// close stops autosave after a final save, then releases the database and
// flushes spans.
func (s *stack) close(ctx context.Context) {
	if err := s.autosave.Stop(ctx); err != nil {
		log.Printf("[AUTOSAVE] final save: %v", err)
	}
	s.ws.Close()
	if err := s.db.Close(); err != nil {
		log.Printf("[APP] close db: %v", err)
	}
	if err := s.tracing.Shutdown(ctx); err != nil {
		log.Printf("[APP] flush traces: %v", err)
	}
}

// wailsEmitter forwards workspace events to the frontend.
type wailsEmitter struct {
	ctx context.Context
}

func (e wailsEmitter) Emit(_ context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.ctx, event, data)
}
