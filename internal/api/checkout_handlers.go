package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/checkout"
	"github.com/arcanaoficial/arcana-server/internal/domain"
)

func (s *Server) registerCheckoutRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPlans",
		Method:      http.MethodGet,
		Path:        "/api/v1/checkout/plans",
		Summary:     "List plans",
		Tags:        []string{"Checkout"},
	}, s.handleListPlans)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCheckoutSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/checkout",
		Summary:     "Start checkout",
		Description: "Opens a hosted checkout session and returns its URL",
		Tags:        []string{"Checkout"},
	}, s.handleCreateCheckout)
}

// PlansOutput wraps the plan list for Huma.
type PlansOutput struct {
	Body struct {
		Plans []domain.Plan `json:"plans"`
	}
}

// CheckoutRequest selects a plan for a user.
type CheckoutRequest struct {
	Plan   string `json:"plan,omitempty" doc:"basic, premium or premium-annual"`
	UserID string `json:"user_id,omitempty" doc:"App user id"`
}

// CheckoutInput wraps the checkout request for Huma.
type CheckoutInput struct {
	Body CheckoutRequest
}

// CheckoutOutput wraps the opened session for Huma.
type CheckoutOutput struct {
	Body *checkout.Session
}

func (s *Server) handleListPlans(_ context.Context, _ *struct{}) (*PlansOutput, error) {
	out := &PlansOutput{}
	out.Body.Plans = s.services.Checkout.Plans()
	return out, nil
}

func (s *Server) handleCreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	sess, err := s.services.Checkout.CreateSession(ctx, input.Body.UserID, input.Body.Plan)
	if err != nil {
		return nil, err
	}
	return &CheckoutOutput{Body: sess}, nil
}
