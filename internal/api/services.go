package api

import (
	"github.com/arcanaoficial/arcana-server/internal/auth"
	"github.com/arcanaoficial/arcana-server/internal/checkout"
	"github.com/arcanaoficial/arcana-server/internal/controller"
	"github.com/arcanaoficial/arcana-server/internal/leads"
	"github.com/arcanaoficial/arcana-server/internal/search"
	"github.com/arcanaoficial/arcana-server/internal/service"
	"github.com/arcanaoficial/arcana-server/internal/session"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// Services groups the dependencies used by the API server.
type Services struct {
	Store      store.Store             // health checks only; handlers go through Content
	Sessions   session.Store           // health checks only
	Auth       *auth.Service
	Content    *service.ContentService // indexes on every write
	Dashboard  *service.DashboardService
	Workspaces *controller.Registry
	Search     *search.Service
	Leads      *leads.Service
	Checkout   *checkout.Client
}
