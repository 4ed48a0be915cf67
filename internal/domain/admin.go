package domain

import "time"

// AdminSession is an authenticated back-office session.
type AdminSession struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// Expired reports whether the session is past its expiry at now.
func (s *AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Lead is a public pre-registration submission.
type Lead struct {
	Name     string
	Email    string
	WhatsApp string
}

// LeadOutcome classifies the lead capture endpoint's reply.
type LeadOutcome string

// Lead outcomes.
const (
	LeadAccepted          LeadOutcome = "success"
	LeadDuplicateEmail    LeadOutcome = "duplicate_email"
	LeadDuplicateWhatsApp LeadOutcome = "duplicate_whatsapp"
	LeadRejected          LeadOutcome = "error"
	LeadAssumedAccepted   LeadOutcome = "assumed_success"
)

// Plan is a purchasable subscription plan.
type Plan struct {
	ID              string `json:"id"`
	Tier            string `json:"tier"`
	StripeProductID string `json:"stripe_product_id"`
}
