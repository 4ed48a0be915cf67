package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/service"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSubscribers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "Subscriber dashboard",
		Description: "Returns one page of app users joined with their subscriptions, plus population stats",
		Tags:        []string{"Users"},
		Security:    bearerAuth,
	}, s.handleListSubscribers)
}

// ListSubscribersInput contains the dashboard filters.
type ListSubscribersInput struct {
	Authorization string `header:"Authorization"`
	Search        string `query:"search" doc:"Matches name, email, phone or user id"`
	Status        string `query:"status" enum:"all,active,none" default:"all" doc:"Subscription status filter"`
	Arcana        string `query:"arcana" enum:"all,yes,no" default:"all" doc:"Arcana membership filter"`
	Page          int    `query:"page" default:"1" doc:"1-based page"`
}

// SubscribersOutput wraps a dashboard page for Huma.
type SubscribersOutput struct {
	Body *service.SubscriberPage
}

func (s *Server) handleListSubscribers(ctx context.Context, input *ListSubscribersInput) (*SubscribersOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	page, err := s.services.Dashboard.Query(ctx, service.SubscriberQuery{
		Search: input.Search,
		Status: input.Status,
		Arcana: input.Arcana,
		Page:   input.Page,
	})
	if err != nil {
		return nil, err
	}
	return &SubscribersOutput{Body: page}, nil
}
