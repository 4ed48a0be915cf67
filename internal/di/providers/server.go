package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/arcanaoficial/arcana-server/internal/api"
	"github.com/arcanaoficial/arcana-server/internal/auth"
	"github.com/arcanaoficial/arcana-server/internal/checkout"
	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/leads"
	"github.com/arcanaoficial/arcana-server/internal/logger"
	"github.com/arcanaoficial/arcana-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessionHandle := do.MustInvoke[*SessionStoreHandle](i)
	searchHandle := do.MustInvoke[*SearchHandle](i)
	workspaces := do.MustInvoke[*WorkspaceRegistryHandle](i)

	services := &api.Services{
		Store:      storeHandle.Store,
		Sessions:   sessionHandle.Store,
		Auth:       do.MustInvoke[*auth.Service](i),
		Content:    do.MustInvoke[*service.ContentService](i),
		Dashboard:  do.MustInvoke[*service.DashboardService](i),
		Workspaces: workspaces.Registry,
		Search:     searchHandle.Service,
		Leads:      do.MustInvoke[*leads.Service](i),
		Checkout:   do.MustInvoke[*checkout.Client](i),
	}

	handler := api.NewServer(cfg, services, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
