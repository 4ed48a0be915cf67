package postgres

import (
	"context"
	"database/sql"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

// ListProfiles returns every profile, newest first.
func (s *Store) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, user_id::text, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(arcana, FALSE), created_at
		FROM profile
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Arcana, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ListSubscriptions returns every subscription row.
func (s *Store) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id::text, COALESCE(tier, ''), COALESCE(status, ''), COALESCE(platform, ''), expires_at
		FROM user_subscriptions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		var (
			sub     domain.Subscription
			expires sql.NullTime
		)
		if err := rows.Scan(&sub.UserID, &sub.Tier, &sub.Status, &sub.Platform, &expires); err != nil {
			return nil, err
		}
		if expires.Valid {
			t := expires.Time
			sub.ExpiresAt = &t
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
