package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/controller"
	"github.com/arcanaoficial/arcana-server/internal/logger"
	"github.com/arcanaoficial/arcana-server/internal/service"
)

// WorkspaceRegistryHandle wraps the workspace registry and its pruning loop.
type WorkspaceRegistryHandle struct {
	*controller.Registry
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *WorkspaceRegistryHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideWorkspaceRegistry provides the per-session admin workspaces and
// starts pruning idle ones.
func ProvideWorkspaceRegistry(i do.Injector) (*WorkspaceRegistryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	content := do.MustInvoke[*service.ContentService](i)

	registry := controller.NewRegistry(content, log.WithComponent("workspaces").Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go registry.Run(ctx, cfg.Workspace.PruneInterval, cfg.Workspace.IdleTimeout)

	log.Info("Workspace pruning started",
		"interval", cfg.Workspace.PruneInterval,
		"idle_timeout", cfg.Workspace.IdleTimeout,
	)

	return &WorkspaceRegistryHandle{Registry: registry, cancel: cancel}, nil
}
