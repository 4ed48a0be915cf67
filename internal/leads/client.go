// Package leads forwards the public pre-registration and early-access forms
// to the hosted spreadsheet script.
package leads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second

	// Replies larger than this are not inspected for sentinels.
	maxReplyBytes = 64 << 10
)

// Sentinel errors for script submissions.
var (
	ErrNotConfigured = errors.New("leads: script url not configured")
	ErrUnreachable   = errors.New("leads: script unreachable")
	ErrStatus        = errors.New("leads: unexpected status")
)

// Config configures the script client.
type Config struct {
	ScriptURL string
	// AssumeOpaqueSuccess reports a transport failure as
	// LeadAssumedAccepted instead of an error. The script answers without
	// CORS headers, so the browser form used to see such failures even when
	// the row was written.
	AssumeOpaqueSuccess bool
	Timeout             time.Duration
}

// Client posts form submissions to the script.
type Client struct {
	http         *http.Client
	scriptURL    string
	assumeOpaque bool
	logger       *slog.Logger
}

// New creates a client. An empty ScriptURL yields a client whose
// submissions fail with ErrNotConfigured.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:         &http.Client{Timeout: timeout},
		scriptURL:    cfg.ScriptURL,
		assumeOpaque: cfg.AssumeOpaqueSuccess,
		logger:       logger,
	}
}

// Enabled reports whether a script url is configured.
func (c *Client) Enabled() bool {
	return c.scriptURL != ""
}

// Submit sends a pre-registration.
func (c *Client) Submit(ctx context.Context, lead domain.Lead) (domain.LeadOutcome, error) {
	return c.post(ctx, []field{
		{"name", lead.Name},
		{"email", lead.Email},
		{"whatsapp", lead.WhatsApp},
	})
}

// SubmitEarlyAccess sends an early-access request, which carries only the email.
func (c *Client) SubmitEarlyAccess(ctx context.Context, email string) (domain.LeadOutcome, error) {
	return c.post(ctx, []field{{"email", email}})
}

type field struct {
	name, value string
}

func (c *Client) post(ctx context.Context, fields []field) (domain.LeadOutcome, error) {
	if !c.Enabled() {
		return domain.LeadRejected, ErrNotConfigured
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return domain.LeadRejected, fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return domain.LeadRejected, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, &buf)
	if err != nil {
		return domain.LeadRejected, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		if c.assumeOpaque && ctx.Err() == nil {
			c.logger.Warn("lead script unreachable, assuming success", "error", err)
			return domain.LeadAssumedAccepted, nil
		}
		return domain.LeadRejected, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return domain.LeadRejected, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("lead script returned error status",
			"status", resp.StatusCode,
			"body", truncate(string(body), 200),
		)
		return domain.LeadRejected, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	outcome := Classify(string(body))
	c.logger.Debug("lead submitted", "outcome", outcome)
	return outcome, nil
}

// Classify maps a script reply to an outcome. The reply is free text; the
// duplicate markers win over ERROR, and a reply without any marker counts
// as accepted.
func Classify(body string) domain.LeadOutcome {
	upper := strings.ToUpper(body)
	switch {
	case strings.Contains(upper, "DUPLICATE_EMAIL"):
		return domain.LeadDuplicateEmail
	case strings.Contains(upper, "DUPLICATE_WHATSAPP"):
		return domain.LeadDuplicateWhatsApp
	case strings.Contains(upper, "ERROR"):
		return domain.LeadRejected
	default:
		return domain.LeadAccepted
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
