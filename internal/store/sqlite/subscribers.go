package sqlite

import (
	"context"
	"database/sql"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

// ListProfiles returns every profile, newest first.
func (s *Store) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, first_name, last_name, arcana, created_at
		FROM profile
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		var (
			p         domain.Profile
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Arcana, &createdAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ListSubscriptions returns every subscription row.
func (s *Store) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, tier, status, platform, expires_at FROM user_subscriptions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		var (
			sub     domain.Subscription
			expires sql.NullString
		)
		if err := rows.Scan(&sub.UserID, &sub.Tier, &sub.Status, &sub.Platform, &expires); err != nil {
			return nil, err
		}
		if expires.Valid && expires.String != "" {
			t, err := parseTime(expires.String)
			if err != nil {
				return nil, err
			}
			sub.ExpiresAt = &t
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SaveProfile inserts or replaces a profile. Used by seeding and tests.
func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, user_id, first_name, last_name, arcana, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			arcana = excluded.arcana`,
		p.ID, p.UserID, p.FirstName, p.LastName, p.Arcana, formatTime(p.CreatedAt))
	return err
}

// SaveSubscription inserts or replaces a subscription. Used by seeding and tests.
func (s *Store) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	var expires sql.NullString
	if sub.ExpiresAt != nil {
		expires = sql.NullString{String: formatTime(*sub.ExpiresAt), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_subscriptions (user_id, tier, status, platform, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			tier = excluded.tier,
			status = excluded.status,
			platform = excluded.platform,
			expires_at = excluded.expires_at`,
		sub.UserID, sub.Tier, sub.Status, sub.Platform, expires)
	return err
}
