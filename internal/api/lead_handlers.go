package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/leads"
)

func (s *Server) registerLeadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "registerLead",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads",
		Summary:     "Pre-registration",
		Description: "Forwards a pre-registration to the lead sheet. Duplicate email or WhatsApp answers 409.",
		Tags:        []string{"Leads"},
	}, s.handleRegisterLead)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestEarlyAccess",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/early-access",
		Summary:     "Early access request",
		Description: "Forwards a Gmail address to the early-access list",
		Tags:        []string{"Leads"},
	}, s.handleEarlyAccess)
}

// LeadRequest is the pre-registration form. Fields are validated by the
// lead service so errors carry friendly messages.
type LeadRequest struct {
	Name     string `json:"name,omitempty" doc:"Full name"`
	Email    string `json:"email,omitempty" doc:"Contact email"`
	WhatsApp string `json:"whatsapp,omitempty" doc:"WhatsApp number"`
}

// LeadInput wraps the pre-registration for Huma.
type LeadInput struct {
	Body LeadRequest
}

// EarlyAccessInput wraps the early-access form for Huma.
type EarlyAccessInput struct {
	Body struct {
		Email string `json:"email,omitempty" doc:"Gmail address"`
	}
}

// LeadOutput wraps the submission result for Huma.
type LeadOutput struct {
	Body *leads.Submission
}

func (s *Server) handleRegisterLead(ctx context.Context, input *LeadInput) (*LeadOutput, error) {
	result, err := s.services.Leads.Register(ctx, leads.RegisterRequest{
		Name:     input.Body.Name,
		Email:    input.Body.Email,
		WhatsApp: input.Body.WhatsApp,
	})
	if err != nil {
		return nil, err
	}
	return &LeadOutput{Body: result}, nil
}

func (s *Server) handleEarlyAccess(ctx context.Context, input *EarlyAccessInput) (*LeadOutput, error) {
	result, err := s.services.Leads.RequestEarlyAccess(ctx, leads.EarlyAccessRequest{Email: input.Body.Email})
	if err != nil {
		return nil, err
	}
	return &LeadOutput{Body: result}, nil
}
