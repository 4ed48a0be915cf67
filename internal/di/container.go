// Package di provides dependency injection configuration for the Arcana server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/arcanaoficial/arcana-server/internal/auth"
	"github.com/arcanaoficial/arcana-server/internal/checkout"
	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/di/providers"
	"github.com/arcanaoficial/arcana-server/internal/leads"
	"github.com/arcanaoficial/arcana-server/internal/logger"
	"github.com/arcanaoficial/arcana-server/internal/service"
	"github.com/arcanaoficial/arcana-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSessionStore)
	do.Provide(injector, providers.ProvideSearch)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthService)

	// Business services
	do.Provide(injector, providers.ProvideContentService)
	do.Provide(injector, providers.ProvideDashboardService)
	do.Provide(injector, providers.ProvideLeadService)
	do.Provide(injector, providers.ProvideCheckoutClient)

	// Workers
	do.Provide(injector, providers.ProvideWorkspaceRegistry)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// Services are lazy, so invoking them in order surfaces the first failing
// backend as an error instead of a panic.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SessionStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*auth.Service](injector)
	_ = do.MustInvoke[*service.ContentService](injector)
	_ = do.MustInvoke[*service.DashboardService](injector)
	_ = do.MustInvoke[*leads.Service](injector)
	_ = do.MustInvoke[*checkout.Client](injector)

	// Workers and server
	_ = do.MustInvoke[*providers.WorkspaceRegistryHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.ReindexSearch(injector)

	return nil
}
