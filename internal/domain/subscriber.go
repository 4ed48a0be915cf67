package domain

import "time"

// Subscription statuses.
const (
	SubscriptionActive = "active"
)

// Profile is a registered app user.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Arcana    bool      `json:"arcana"` // member of the Arcana circle
	CreatedAt time.Time `json:"created_at"`
}

// Subscription is a user's paid plan.
type Subscription struct {
	UserID    string     `json:"user_id"`
	Tier      string     `json:"tier"`
	Status    string     `json:"status"`
	Platform  string     `json:"platform"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Subscriber joins a profile with its subscription, when it has one.
type Subscriber struct {
	Profile
	Subscription *Subscription `json:"subscription"`
}

// HasActiveSubscription reports whether the subscriber currently pays.
func (s Subscriber) HasActiveSubscription() bool {
	return s.Subscription != nil && s.Subscription.Status == SubscriptionActive
}

// FullName returns "first last" without stray spaces.
func (s Subscriber) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}

// SubscriberStats summarises the dashboard population.
type SubscriberStats struct {
	Total            int `json:"total"`
	WithSubscription int `json:"with_subscription"`
	ArcanaMembers    int `json:"arcana_members"`
}
