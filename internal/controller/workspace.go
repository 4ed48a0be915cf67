package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arcanaoficial/arcana-server/internal/store"
)

// ContentStore is what a workspace needs from the content layer.
type ContentStore interface {
	store.ContentLibraryStore
	store.RichContentStore
}

// Workspace is one admin session's pair of tables.
type Workspace struct {
	Library *LibraryController
	Rich    *RichController

	mu       sync.Mutex
	lastUsed time.Time
}

// NewWorkspace creates both controllers over st.
func NewWorkspace(st ContentStore, logger *slog.Logger) *Workspace {
	return &Workspace{
		Library:  NewLibraryController(st, logger.With("table", "content_library")),
		Rich:     NewRichController(st, logger.With("table", "rich_content")),
		lastUsed: time.Now(),
	}
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// Registry holds the workspaces of live admin sessions.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	store      ContentStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(st ContentStore, logger *slog.Logger) *Registry {
	return &Registry{
		workspaces: make(map[string]*Workspace),
		store:      st,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the workspace of sessionID, creating it on first use.
func (r *Registry) Get(sessionID string) *Workspace {
	now := r.now()

	r.mu.Lock()
	ws, ok := r.workspaces[sessionID]
	if !ok {
		ws = NewWorkspace(r.store, r.logger.With("session_id", sessionID))
		r.workspaces[sessionID] = ws
	}
	r.mu.Unlock()

	ws.touch(now)
	if !ok {
		r.logger.Debug("workspace created", "session_id", sessionID)
	}
	return ws
}

// Remove drops the workspace of sessionID.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, sessionID)
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Prune drops workspaces unused for longer than idle and returns how many
// were dropped.
func (r *Registry) Prune(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, ws := range r.workspaces {
		if ws.idleSince().Before(cutoff) {
			delete(r.workspaces, id)
			dropped++
		}
	}
	return dropped
}

// Run prunes idle workspaces every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(idle); n > 0 {
				r.logger.Info("pruned idle workspaces", "count", n)
			}
		}
	}
}
