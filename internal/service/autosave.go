package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"whiteboard/internal/domain"
	"whiteboard/internal/storage"
)

const EventDocumentSaved = "document:saved"

// ─────────────────────────────────────────────────────────────
// Autosave: scheduled persistence of the workspace state
// ─────────────────────────────────────────────────────────────

// Autosave writes the workspace snapshot to a DocumentStore on a cron
// schedule. A save is skipped when nothing was committed since the last
// one.
type Autosave struct {
	ws      *Workspace
	docs    domain.DocumentStore
	docID   string
	emitter EventEmitter
	saving  runningSaves

	mu        sync.Mutex
	sched     *cron.Cron
	savedRev  int
	everSaved bool
	seenAt    time.Time // updated_at of the last document written or read
}

func NewAutosave(ws *Workspace, docs domain.DocumentStore, docID string, emitter EventEmitter) *Autosave {
	return &Autosave{ws: ws, docs: docs, docID: docID, emitter: emitter}
}

// Restore loads the stored document into the workspace. It reports false
// when no document has been saved yet.
func (a *Autosave) Restore(ctx context.Context) (bool, error) {
	doc, err := a.docs.GetDocument(a.docID)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore %s: %w", a.docID, err)
	}
	if err := a.ws.LoadState(ctx, doc.State); err != nil {
		return false, fmt.Errorf("restore %s: %w", a.docID, err)
	}
	a.markSaved(a.ws.Revision(), doc.UpdatedAt)
	log.Printf("[AUTOSAVE] restored %s (%s)", a.docID, doc.Label)
	return true, nil
}

// Refresh reloads the stored document when another process wrote it after
// this one last saved or restored it. Local edits made since then are
// replaced.
func (a *Autosave) Refresh(ctx context.Context) (bool, error) {
	if !a.saving.TryLock(a.docID) {
		return false, nil
	}
	defer a.saving.Unlock(a.docID)

	doc, err := a.docs.GetDocument(a.docID)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("refresh %s: %w", a.docID, err)
	}
	a.mu.Lock()
	seen := a.seenAt
	a.mu.Unlock()
	if !doc.UpdatedAt.After(seen) {
		return false, nil
	}
	if err := a.ws.LoadState(ctx, doc.State); err != nil {
		return false, fmt.Errorf("refresh %s: %w", a.docID, err)
	}
	a.markSaved(a.ws.Revision(), doc.UpdatedAt)
	log.Printf("[AUTOSAVE] reloaded %s after external write", a.docID)
	return true, nil
}

// Save writes the current state if it changed since the last save. It
// reports whether a document was written.
func (a *Autosave) Save(ctx context.Context) (bool, error) {
	if !a.saving.TryLock(a.docID) {
		return false, nil
	}
	defer a.saving.Unlock(a.docID)

	rev := a.ws.Revision()
	a.mu.Lock()
	clean := a.everSaved && rev == a.savedRev
	a.mu.Unlock()
	if clean {
		return false, nil
	}

	state, err := a.ws.StateJSON()
	if err != nil {
		return false, fmt.Errorf("save %s: %w", a.docID, err)
	}
	doc := &domain.Document{
		ID:    a.docID,
		Label: fmt.Sprintf("%d board(s), %d element(s)", len(a.ws.Boards()), len(a.ws.Objects())),
		State: state,
	}
	if err := a.docs.SaveDocument(doc); err != nil {
		return false, fmt.Errorf("save %s: %w", a.docID, err)
	}
	a.markSaved(rev, doc.UpdatedAt)
	if a.emitter != nil {
		a.emitter.Emit(ctx, EventDocumentSaved, doc.ID)
	}
	return true, nil
}

func (a *Autosave) markSaved(rev int, at time.Time) {
	a.mu.Lock()
	a.savedRev, a.everSaved = rev, true
	a.seenAt = at.Round(0)
	a.mu.Unlock()
}

// Start schedules Save with a cron spec such as "@every 30s".
func (a *Autosave) Start(ctx context.Context, spec string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sched != nil {
		return fmt.Errorf("autosave %s: already started", a.docID)
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		saved, err := a.Save(ctx)
		if err != nil {
			log.Printf("[AUTOSAVE] %v", err)
			return
		}
		if saved {
			log.Printf("[AUTOSAVE] saved %s", a.docID)
		}
	}); err != nil {
		return fmt.Errorf("autosave schedule %q: %w", spec, err)
	}
	c.Start()
	a.sched = c
	log.Printf("[AUTOSAVE] scheduled %s (%s)", a.docID, spec)
	return nil
}

// Stop halts the schedule, waits for a running save and writes any
// unsaved changes one last time.
func (a *Autosave) Stop(ctx context.Context) error {
	a.mu.Lock()
	c := a.sched
	a.sched = nil
	a.mu.Unlock()
	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	a.saving.WaitAll(ctx)
	_, err := a.Save(ctx)
	return err
}
