package api

import (
	"context"
	"strings"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the
// admin session it carries.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.AdminSession, error) {
	if authHeader == "" {
		return nil, domainerrors.Unauthorized("Missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return nil, domainerrors.Unauthorized("Invalid authorization header format")
	}

	return s.services.Auth.Authenticate(ctx, token)
}

// clientIP picks the client address from proxy headers.
func clientIP(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	return realIP
}
