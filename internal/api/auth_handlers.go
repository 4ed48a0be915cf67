package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/auth"
)

func (s *Server) registerAdminAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminLogin",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/login",
		Summary:     "Admin login",
		Description: "Authenticates an allow-listed admin and returns an access token",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminLogout",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/logout",
		Summary:       "Logout",
		Description:   "Revokes the current session and drops its workspace",
		Tags:          []string{"Authentication"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/session",
		Summary:     "Current session",
		Description: "Returns the admin session of the bearer token",
		Tags:        []string{"Authentication"},
		Security:    bearerAuth,
	}, s.handleGetSession)
}

// === DTOs ===

// AuthInput carries the bearer token of admin-only operations.
type AuthInput struct {
	Authorization string `header:"Authorization"`
}

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Email    string `json:"email" maxLength:"254" doc:"Admin email"`
	Password string `json:"password" maxLength:"1024" doc:"Shared admin password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

// SessionResponse describes an admin session.
type SessionResponse struct {
	SessionID string    `json:"session_id" doc:"Session ID"`
	Email     string    `json:"email" doc:"Admin email"`
	CreatedAt time.Time `json:"created_at" doc:"Login time"`
	ExpiresAt time.Time `json:"expires_at" doc:"Expiry time"`
}

// LoginResponse contains the access token and its session.
type LoginResponse struct {
	AccessToken string          `json:"access_token" doc:"PASETO access token"`
	TokenType   string          `json:"token_type" doc:"Always Bearer"`
	Session     SessionResponse `json:"session"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginResponse
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// === Handlers ===

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	result, err := s.services.Auth.Login(ctx, auth.LoginRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		ClientIP:  clientIP(input.XForwardedFor, input.XRealIP),
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	sess := result.Session
	return &LoginOutput{Body: LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		Session: SessionResponse{
			SessionID: sess.ID,
			Email:     sess.Email,
			CreatedAt: sess.CreatedAt,
			ExpiresAt: sess.ExpiresAt,
		},
	}}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *AuthInput) (*struct{}, error) {
	sess, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.Logout(ctx, sess.ID); err != nil {
		return nil, err
	}
	s.services.Workspaces.Remove(sess.ID)
	return nil, nil
}

func (s *Server) handleGetSession(ctx context.Context, input *AuthInput) (*SessionOutput, error) {
	sess, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: SessionResponse{
		SessionID: sess.ID,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}}, nil
}
