// Package api provides the HTTP API server and handlers for the Arcana
// back office and its public forms.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arcanaoficial/arcana-server/internal/config"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/http/response"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

var bearerAuth = []map[string][]string{{"bearer": {}}}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
	loginLimiter  *RateLimiter
	publicLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, services *Services, logger *slog.Logger) *Server {
	s := &Server{
		services:      services,
		router:        chi.NewRouter(),
		logger:        logger,
		loginLimiter:  NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst),
		publicLimiter: NewRateLimiter(cfg.Leads.Rate, cfg.Leads.Burst),
	}

	s.setupMiddleware(cfg.Server.CORSOrigins)
	s.api = humachi.New(s.router, newHumaConfig())
	RegisterErrorHandler()
	s.setupRoutes()

	return s
}

func newHumaConfig() huma.Config {
	humaConfig := huma.DefaultConfig("Arcana API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	return humaConfig
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops the rate limiter sweepers.
func (s *Server) Close() {
	s.loginLimiter.Stop()
	s.publicLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.loginLimiter, s.logger,
		limitedRoute{http.MethodPost, "/api/v1/admin/login"},
	))
	s.router.Use(RateLimitMiddleware(s.publicLimiter, s.logger,
		limitedRoute{http.MethodPost, "/api/v1/leads"},
		limitedRoute{http.MethodPost, "/api/v1/leads/early-access"},
		limitedRoute{http.MethodPost, "/api/v1/checkout"},
	))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, domainerrors.CodeNotFound, "Route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, domainerrors.CodeValidation, "Method not allowed", s.logger)
	})
}

// setupRoutes registers every operation.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAdminAuthRoutes()
	s.registerContentLibraryRoutes()
	s.registerRichContentRoutes()
	s.registerLibraryWorkspaceRoutes()
	s.registerRichWorkspaceRoutes()
	s.registerDashboardRoutes()
	s.registerSearchRoutes()
	s.registerLeadRoutes()
	s.registerCheckoutRoutes()
}
