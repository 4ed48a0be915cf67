package auth

import "time"

// AccessClaims are the claims encrypted into an admin access token.
type AccessClaims struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
