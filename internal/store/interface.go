// Package store defines the persistence interfaces for Arcana content and
// the helpers shared by the backends.
package store

import (
	"context"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

// ContentLibraryStore persists content library items. Listings are ordered
// by order ascending (nulls last), then newest first.
type ContentLibraryStore interface {
	ListContentLibrary(ctx context.Context, filter domain.ContentFilter) ([]domain.ContentLibraryItem, error)
	GetContentLibrary(ctx context.Context, id int64) (*domain.ContentLibraryItem, error)
	CreateContentLibrary(ctx context.Context, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error)
	// UpdateContentLibrary replaces every writable column. It returns
	// ErrUpdateTargetMissing when id does not exist.
	UpdateContentLibrary(ctx context.Context, id int64, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error)
	DeleteContentLibrary(ctx context.Context, id int64) error
	ContentLibrarySections(ctx context.Context) ([]string, error)
	ContentLibraryCategories(ctx context.Context, section string) ([]string, error)
}

// RichContentStore persists rich content items, newest first.
type RichContentStore interface {
	ListRichContent(ctx context.Context, filter domain.ContentFilter) ([]domain.RichContentItem, error)
	GetRichContent(ctx context.Context, id int64) (*domain.RichContentItem, error)
	CreateRichContent(ctx context.Context, in domain.RichContentInput) (*domain.RichContentItem, error)
	UpdateRichContent(ctx context.Context, id int64, in domain.RichContentInput) (*domain.RichContentItem, error)
	DeleteRichContent(ctx context.Context, id int64) error
	RichContentSections(ctx context.Context) ([]string, error)
	RichContentCategories(ctx context.Context, section string) ([]string, error)
}

// SubscriberStore reads app users and their subscriptions for the dashboard.
type SubscriberStore interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}

// Store is implemented by every backend.
type Store interface {
	ContentLibraryStore
	RichContentStore
	SubscriberStore

	Ping(ctx context.Context) error
	Close() error
}
