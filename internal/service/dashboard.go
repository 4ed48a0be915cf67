package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/listing"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// Subscription status filters.
const (
	StatusAll    = "all"
	StatusActive = "active"
	StatusNone   = "none"
)

// Arcana membership filters.
const (
	ArcanaAll = "all"
	ArcanaYes = "yes"
	ArcanaNo  = "no"
)

// SubscriberQuery selects a page of the subscriber table.
type SubscriberQuery struct {
	Search string
	Status string
	Arcana string
	Page   int
}

// SubscriberPage is one page of the dashboard table plus the population
// stats, which ignore the filters.
type SubscriberPage struct {
	listing.Page[domain.Subscriber]
	Pages []int                 `json:"pages"`
	Stats domain.SubscriberStats `json:"stats"`
}

// DashboardService joins app users with their subscriptions.
type DashboardService struct {
	store  store.SubscriberStore
	logger *slog.Logger
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(st store.SubscriberStore, logger *slog.Logger) *DashboardService {
	return &DashboardService{store: st, logger: logger}
}

// Subscribers returns every profile joined with its subscription, newest
// profile first.
func (s *DashboardService) Subscribers(ctx context.Context) ([]domain.Subscriber, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		s.logger.Error("list profiles", "error", err)
		return nil, err
	}

	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return nil, err
	}

	byUser := make(map[string]domain.Subscription, len(subs))
	for _, sub := range subs {
		byUser[sub.UserID] = sub
	}

	out := make([]domain.Subscriber, 0, len(profiles))
	for _, p := range profiles {
		row := domain.Subscriber{Profile: p}
		if sub, ok := byUser[p.UserID]; ok {
			row.Subscription = &sub
		}
		out = append(out, row)
	}
	return out, nil
}

// Stats counts the population.
func Stats(subscribers []domain.Subscriber) domain.SubscriberStats {
	stats := domain.SubscriberStats{Total: len(subscribers)}
	for _, s := range subscribers {
		if s.HasActiveSubscription() {
			stats.WithSubscription++
		}
		if s.Arcana {
			stats.ArcanaMembers++
		}
	}
	return stats
}

// Query filters, searches and paginates the subscriber table.
func (s *DashboardService) Query(ctx context.Context, q SubscriberQuery) (*SubscriberPage, error) {
	all, err := s.Subscribers(ctx)
	if err != nil {
		return nil, err
	}

	filtered := listing.Filter(all, strings.TrimSpace(q.Search), listing.MatchSubscriber)
	filtered = filterSubscribers(filtered, q.Status, q.Arcana)

	page := listing.Paginate(filtered, q.Page, listing.PageSize)
	return &SubscriberPage{
		Page:  page,
		Pages: listing.PageRange(page.Page, page.TotalPages),
		Stats: Stats(all),
	}, nil
}

func filterSubscribers(in []domain.Subscriber, status, arcana string) []domain.Subscriber {
	if (status == "" || status == StatusAll) && (arcana == "" || arcana == ArcanaAll) {
		return in
	}
	out := make([]domain.Subscriber, 0, len(in))
	for _, s := range in {
		switch status {
		case StatusActive:
			if !s.HasActiveSubscription() {
				continue
			}
		case StatusNone:
			if s.Subscription != nil && s.Subscription.Status != "" {
				continue
			}
		}
		switch arcana {
		case ArcanaYes:
			if !s.Arcana {
				continue
			}
		case ArcanaNo:
			if s.Arcana {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
