// Package session persists admin sessions in Redis, or in an embedded
// Badger database when Redis is not configured.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

// Errors returned by every Store.
var (
	ErrNotFound = errors.New("session not found or expired")
	ErrExpired  = errors.New("session already expired")
)

const keyPrefix = "arcana:admin_session:"

// Store persists admin sessions until they expire.
type Store interface {
	// Save stores s until s.ExpiresAt, replacing any session with the same id.
	Save(ctx context.Context, s *domain.AdminSession) error
	// Get returns ErrNotFound for unknown, revoked and expired sessions.
	Get(ctx context.Context, id string) (*domain.AdminSession, error)
	// Delete revokes a session. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

func ttlFor(s *domain.AdminSession, now time.Time) (time.Duration, error) {
	ttl := s.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, ErrExpired
	}
	return ttl, nil
}
