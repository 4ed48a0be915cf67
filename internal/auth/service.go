package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/id"
	"github.com/arcanaoficial/arcana-server/internal/session"
)

// msgInvalidCredentials is shown for unknown emails and wrong passwords alike.
const msgInvalidCredentials = "Email o contraseña incorrectos"

// Config configures the admin allow-list.
type Config struct {
	AdminEmails  []string // lowercase
	PasswordHash string   // argon2id PHC string
	TokenTTL     time.Duration
}

// LoginRequest carries credentials and client metadata.
type LoginRequest struct {
	Email     string
	Password  string
	ClientIP  string
	UserAgent string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken string
	Session     *domain.AdminSession
}

// Service authenticates admins against the allow-list.
type Service struct {
	cfg      Config
	tokens   *TokenService
	sessions session.Store
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates the admin auth service.
func NewService(cfg Config, tokens *TokenService, sessions session.Store, logger *slog.Logger) *Service {
	if cfg.PasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is not set; admin login is disabled")
	}
	return &Service{cfg: cfg, tokens: tokens, sessions: sessions, logger: logger, now: time.Now}
}

// IsAdmin reports whether email is allow-listed.
func (s *Service) IsAdmin(email string) bool {
	return slices.Contains(s.cfg.AdminEmails, normalizeEmail(email))
}

// Login verifies credentials, persists a session and issues its token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)

	// The password is checked even for unknown emails so both paths cost the same.
	passwordOK := s.cfg.PasswordHash != "" && VerifyPassword(s.cfg.PasswordHash, req.Password)
	if !s.IsAdmin(email) || !passwordOK {
		s.logger.Info("admin login rejected", "email", email, "client_ip", req.ClientIP)
		return nil, domainerrors.InvalidCredentials(msgInvalidCredentials)
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not create session")
	}

	now := s.now().UTC()
	sess := &domain.AdminSession{
		ID:        sessionID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		ClientIP:  req.ClientIP,
		UserAgent: req.UserAgent,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not save session")
	}

	token, err := s.tokens.Issue(sess)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not issue token")
	}

	s.logger.Info("admin logged in", "email", email, "session_id", sess.ID)
	return &LoginResult{AccessToken: token, Session: sess}, nil
}

// Authenticate resolves a bearer token to its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.AdminSession, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, domainerrors.Unauthorized("session expired or revoked")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load session")
	}

	// Admins removed from the allow-list lose access immediately.
	if sess.Email != claims.Email || !s.IsAdmin(sess.Email) {
		return nil, domainerrors.Forbidden("not an administrator")
	}
	return sess, nil
}

// Logout revokes a session.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "could not revoke session")
	}
	s.logger.Info("admin logged out", "session_id", sessionID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
