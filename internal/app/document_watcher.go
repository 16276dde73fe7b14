package app

import (
	"context"
	"log"
	"sync"
	"time"

	mcpserver "whiteboard/internal/mcp"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
)

const (
	EventDocumentReloaded = "document:reloaded"
	EventMCPActivity      = "mcp:activity"

	watchInterval = 2 * time.Second
)

// documentWatcher polls the database for writes made by a standalone MCP
// process: document saves are reloaded into the workspace and queued
// approvals are forwarded to the frontend.
type documentWatcher struct {
	ctx       context.Context
	autosave  *service.Autosave
	approvals *storage.ApprovalStore
	emitter   service.EventEmitter

	mu     sync.Mutex
	stopCh chan struct{}
	// approval ids already sent, so each one is emitted once
	emittedApprovals map[string]bool
}

func newDocumentWatcher(ctx context.Context, autosave *service.Autosave, approvals *storage.ApprovalStore, emitter service.EventEmitter) *documentWatcher {
	return &documentWatcher{
		ctx:              ctx,
		autosave:         autosave,
		approvals:        approvals,
		emitter:          emitter,
		emittedApprovals: map[string]bool{},
	}
}

// Start begins the polling loop. Should be called once on app startup.
func (w *documentWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *documentWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

// Forget drops an answered approval from the sent set.
func (w *documentWatcher) Forget(id string) {
	w.mu.Lock()
	delete(w.emittedApprovals, id)
	w.mu.Unlock()
}

func (w *documentWatcher) pollLoop() {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	stop := w.stopCh
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *documentWatcher) check() {
	// ── Document written by another process ─────────────
	reloaded, err := w.autosave.Refresh(w.ctx)
	if err != nil {
		log.Printf("[WATCH] %v", err)
	}
	if reloaded {
		w.emitter.Emit(w.ctx, EventDocumentReloaded, nil)
	}

	// ── Pending MCP approvals (cross-process IPC) ───────
	pending, err := w.approvals.Pending()
	if err != nil {
		log.Printf("[WATCH] %v", err)
		return
	}
	live := make(map[string]bool, len(pending))
	for _, action := range pending {
		live[action.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[action.ID]
		w.emittedApprovals[action.ID] = true
		w.mu.Unlock()
		if alreadySent {
			continue
		}
		w.emitter.Emit(w.ctx, EventMCPActivity, map[string]any{"changes": 1})
		w.emitter.Emit(w.ctx, mcpserver.EventApprovalRequired, action)
	}

	// resolved or expired rows are deleted by the requesting process
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !live[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}
