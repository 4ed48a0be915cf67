package leads

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/validation"
)

// User-facing messages.
const (
	MsgDuplicateEmail    = "Este email ya está registrado"
	MsgDuplicateWhatsApp = "Este WhatsApp ya está registrado"
	MsgSubmitFailed      = "Error al enviar el formulario. Intenta de nuevo."
	MsgNotConfigured     = "El registro no está disponible en este momento"
)

// RegisterRequest is the pre-registration form.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,contactemail"`
	WhatsApp string `json:"whatsapp" validate:"required,whatsapp"`
}

// EarlyAccessRequest is the early-access form.
type EarlyAccessRequest struct {
	Email string `json:"email" validate:"required,gmail"`
}

// Submission reports an accepted submission.
type Submission struct {
	Outcome domain.LeadOutcome `json:"outcome"`
}

type submitter interface {
	Submit(ctx context.Context, lead domain.Lead) (domain.LeadOutcome, error)
	SubmitEarlyAccess(ctx context.Context, email string) (domain.LeadOutcome, error)
}

// Service validates public form submissions and forwards them.
type Service struct {
	client    submitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService creates a lead service.
func NewService(client *Client, validator *validation.Validator, logger *slog.Logger) *Service {
	return &Service{client: client, validator: validator, logger: logger}
}

// Register validates and forwards a pre-registration.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Submission, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.WhatsApp = strings.TrimSpace(req.WhatsApp)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	outcome, err := s.client.Submit(ctx, domain.Lead{
		Name:     req.Name,
		Email:    req.Email,
		WhatsApp: req.WhatsApp,
	})
	return s.result(outcome, err)
}

// RequestEarlyAccess validates and forwards an early-access request.
func (s *Service) RequestEarlyAccess(ctx context.Context, req EarlyAccessRequest) (*Submission, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	outcome, err := s.client.SubmitEarlyAccess(ctx, req.Email)
	return s.result(outcome, err)
}

func (s *Service) result(outcome domain.LeadOutcome, err error) (*Submission, error) {
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, domainerrors.Unavailable(MsgNotConfigured)
		}
		s.logger.Error("lead submission failed", "error", err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, MsgSubmitFailed)
	}

	switch outcome {
	case domain.LeadAccepted, domain.LeadAssumedAccepted:
		return &Submission{Outcome: outcome}, nil
	case domain.LeadDuplicateEmail:
		return nil, domainerrors.AlreadyExists(MsgDuplicateEmail).WithDetails(map[string]string{"email": MsgDuplicateEmail})
	case domain.LeadDuplicateWhatsApp:
		return nil, domainerrors.AlreadyExists(MsgDuplicateWhatsApp).WithDetails(map[string]string{"whatsapp": MsgDuplicateWhatsApp})
	default:
		return nil, domainerrors.Upstream(MsgSubmitFailed)
	}
}
