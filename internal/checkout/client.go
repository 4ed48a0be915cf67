// Package checkout opens Stripe checkout sessions through the hosted
// create-checkout-session function.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
)

const (
	functionPath   = "/functions/v1/create-checkout-session"
	defaultTimeout = 15 * time.Second
)

// Plan ids accepted by CreateSession.
const (
	PlanBasic         = "basic"
	PlanPremium       = "premium"
	PlanPremiumAnnual = "premium-annual"
)

// MsgCheckoutFailed is shown when no checkout url could be obtained.
const MsgCheckoutFailed = "No se pudo abrir la página de pago. Por favor, inténtalo de nuevo."

// ErrMissingURL is returned when the function replies without a checkout url.
var ErrMissingURL = errors.New("checkout: missing checkout url")

// Config configures the client.
type Config struct {
	SupabaseURL string
	AnonKey     string
	SiteURL     string
	SuccessPath string
	CancelPath  string

	ProductBasic         string
	ProductPremium       string
	ProductPremiumAnnual string

	Timeout time.Duration
}

// Session is an opened checkout session.
type Session struct {
	URL            string      `json:"url"`
	Plan           domain.Plan `json:"plan"`
	IdempotencyKey string      `json:"idempotency_key"`
}

// Client invokes the checkout function.
type Client struct {
	http       *http.Client
	endpoint   string
	anonKey    string
	successURL string
	cancelURL  string
	plans      map[string]domain.Plan
	logger     *slog.Logger
}

// New creates a client.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var endpoint string
	if base := strings.TrimRight(cfg.SupabaseURL, "/"); base != "" {
		endpoint = base + functionPath
	}
	site := strings.TrimRight(cfg.SiteURL, "/")

	return &Client{
		http:       &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		anonKey:    cfg.AnonKey,
		successURL: site + cfg.SuccessPath,
		cancelURL:  site + cfg.CancelPath,
		plans: map[string]domain.Plan{
			PlanBasic:         {ID: PlanBasic, Tier: "basic", StripeProductID: cfg.ProductBasic},
			PlanPremium:       {ID: PlanPremium, Tier: "premium", StripeProductID: cfg.ProductPremium},
			PlanPremiumAnnual: {ID: PlanPremiumAnnual, Tier: "premium", StripeProductID: cfg.ProductPremiumAnnual},
		},
		logger: logger,
	}
}

// Enabled reports whether the function endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Plans returns the purchasable plans in display order.
func (c *Client) Plans() []domain.Plan {
	return []domain.Plan{c.plans[PlanBasic], c.plans[PlanPremium], c.plans[PlanPremiumAnnual]}
}

// Plan looks up a plan by id.
func (c *Client) Plan(id string) (domain.Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

type sessionRequest struct {
	UserID          string `json:"userId"`
	Tier            string `json:"tier"`
	StripeProductID string `json:"stripeProductId"`
	SuccessURL      string `json:"successUrl"`
	CancelURL       string `json:"cancelUrl"`
}

// The url comes back either at the top level or nested under data.
type sessionResponse struct {
	URL  string `json:"url"`
	Data *struct {
		URL string `json:"url"`
	} `json:"data"`
	Error string `json:"error"`
}

// CreateSession opens a checkout session for userID on planID.
func (c *Client) CreateSession(ctx context.Context, userID, planID string) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"user_id": "is required"})
	}
	plan, ok := c.plans[planID]
	if !ok {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"plan": "must be one of: basic premium premium-annual"})
	}
	if !c.Enabled() {
		return nil, domainerrors.Unavailable("El pago no está disponible en este momento")
	}

	body, err := json.Marshal(sessionRequest{
		UserID:          userID,
		Tier:            plan.Tier,
		StripeProductID: plan.StripeProductID,
		SuccessURL:      c.successURL,
		CancelURL:       c.cancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	key := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", key)
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	url, err := c.do(req)
	if err != nil {
		c.logger.Error("create checkout session failed",
			"plan", plan.ID,
			"user_id", userID,
			"error", err,
		)
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, MsgCheckoutFailed)
	}

	c.logger.Info("checkout session created", "plan", plan.ID, "user_id", userID)
	return &Session{URL: url, Plan: plan, IdempotencyKey: key}, nil
}

func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded sessionResponse
	jsonErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if jsonErr == nil && decoded.Error != "" {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, decoded.Error)
		}
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if jsonErr != nil {
		return "", fmt.Errorf("decode response: %w", jsonErr)
	}

	url := decoded.URL
	if url == "" && decoded.Data != nil {
		url = decoded.Data.URL
	}
	if url == "" {
		return "", ErrMissingURL
	}
	return url, nil
}
