package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// runningSaves: one in-flight save per document
// ─────────────────────────────────────────────────────────────

// runningSaves keeps a scheduled save from starting while the previous
// save of the same document is still writing, and lets shutdown wait for
// in-flight saves.
type runningSaves struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks docID as saving. It returns false if a save is already
// running for it.
func (g *runningSaves) TryLock(docID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[docID]; ok {
		return false
	}
	g.running[docID] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock must follow a successful TryLock.
func (g *runningSaves) Unlock(docID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, docID)
	g.wg.Done()
}

// WaitAll blocks until in-flight saves finish or ctx is done.
func (g *runningSaves) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
