package service

import (
	"context"
	"log/slog"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/richtext"
	"github.com/arcanaoficial/arcana-server/internal/search"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// ContentStore is the store surface the content service wraps.
type ContentStore interface {
	store.ContentLibraryStore
	store.RichContentStore
}

// Indexer receives content changes for the search index.
type Indexer interface {
	Index(doc search.Document)
	Delete(t domain.ContentType, id int64)
}

var (
	_ store.ContentLibraryStore = (*ContentService)(nil)
	_ store.RichContentStore    = (*ContentService)(nil)
)

// ContentService fronts the content store for the controllers and the
// stateless API. Store errors are logged and returned unchanged; writes are
// mirrored into the search index.
type ContentService struct {
	store   ContentStore
	indexer Indexer
	logger  *slog.Logger
}

// NewContentService creates a content service. indexer may be nil.
func NewContentService(st ContentStore, indexer Indexer, logger *slog.Logger) *ContentService {
	return &ContentService{store: st, indexer: indexer, logger: logger}
}

func (s *ContentService) fail(op string, err error, attrs ...any) error {
	s.logger.Error("content store error", append([]any{"op", op, "error", err}, attrs...)...)
	return err
}

// ListContentLibrary returns the library items matching filter.
func (s *ContentService) ListContentLibrary(ctx context.Context, filter domain.ContentFilter) ([]domain.ContentLibraryItem, error) {
	items, err := s.store.ListContentLibrary(ctx, filter)
	if err != nil {
		return nil, s.fail("list content_library", err, "section", filter.Section, "category", filter.Category)
	}
	return items, nil
}

// GetContentLibrary returns one library item.
func (s *ContentService) GetContentLibrary(ctx context.Context, id int64) (*domain.ContentLibraryItem, error) {
	item, err := s.store.GetContentLibrary(ctx, id)
	if err != nil {
		return nil, s.fail("get content_library", err, "id", id)
	}
	return item, nil
}

// CreateContentLibrary inserts a library item.
func (s *ContentService) CreateContentLibrary(ctx context.Context, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	in.Tag = domain.NormalizeTags(in.Tag)
	item, err := s.store.CreateContentLibrary(ctx, in)
	if err != nil {
		return nil, s.fail("create content_library", err)
	}
	s.logger.Info("content_library item created", "id", item.ID, "section", item.Section, "category", item.Category)
	s.index(search.FromLibrary(*item))
	return item, nil
}

// UpdateContentLibrary replaces a library item.
func (s *ContentService) UpdateContentLibrary(ctx context.Context, id int64, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	in.Tag = domain.NormalizeTags(in.Tag)
	item, err := s.store.UpdateContentLibrary(ctx, id, in)
	if err != nil {
		return nil, s.fail("update content_library", err, "id", id)
	}
	s.logger.Info("content_library item updated", "id", id)
	s.index(search.FromLibrary(*item))
	return item, nil
}

// DeleteContentLibrary removes a library item.
func (s *ContentService) DeleteContentLibrary(ctx context.Context, id int64) error {
	if err := s.store.DeleteContentLibrary(ctx, id); err != nil {
		return s.fail("delete content_library", err, "id", id)
	}
	s.logger.Info("content_library item deleted", "id", id)
	s.unindex(domain.ContentLibrary, id)
	return nil
}

// ContentLibrarySections returns the distinct library sections.
func (s *ContentService) ContentLibrarySections(ctx context.Context) ([]string, error) {
	values, err := s.store.ContentLibrarySections(ctx)
	if err != nil {
		return nil, s.fail("content_library sections", err)
	}
	return values, nil
}

// ContentLibraryCategories returns the distinct library categories of section.
func (s *ContentService) ContentLibraryCategories(ctx context.Context, section string) ([]string, error) {
	values, err := s.store.ContentLibraryCategories(ctx, section)
	if err != nil {
		return nil, s.fail("content_library categories", err, "section", section)
	}
	return values, nil
}

// ContentLibraryKeys returns the sorted union of data keys over the items
// matching filter. An unconstrained filter yields no keys.
func (s *ContentService) ContentLibraryKeys(ctx context.Context, filter domain.ContentFilter) ([]string, error) {
	if filter.IsZero() {
		return []string{}, nil
	}
	items, err := s.ListContentLibrary(ctx, filter)
	if err != nil {
		return nil, err
	}
	return LibraryKeys(items), nil
}

// LibraryKeys returns the sorted union of data keys over items.
func LibraryKeys(items []domain.ContentLibraryItem) []string {
	records := make([]*domain.Record, len(items))
	for i := range items {
		records[i] = &items[i].Data
	}
	return domain.UnionKeys(records...)
}

// ListRichContent returns the rich items matching filter.
func (s *ContentService) ListRichContent(ctx context.Context, filter domain.ContentFilter) ([]domain.RichContentItem, error) {
	items, err := s.store.ListRichContent(ctx, filter)
	if err != nil {
		return nil, s.fail("list rich_content", err, "section", filter.Section, "category", filter.Category)
	}
	return items, nil
}

// GetRichContent returns one rich item.
func (s *ContentService) GetRichContent(ctx context.Context, id int64) (*domain.RichContentItem, error) {
	item, err := s.store.GetRichContent(ctx, id)
	if err != nil {
		return nil, s.fail("get rich_content", err, "id", id)
	}
	return item, nil
}

// CreateRichContent inserts a rich item, deriving plain_text from the
// markup when none was given.
func (s *ContentService) CreateRichContent(ctx context.Context, in domain.RichContentInput) (*domain.RichContentItem, error) {
	in = prepareRich(in)
	item, err := s.store.CreateRichContent(ctx, in)
	if err != nil {
		return nil, s.fail("create rich_content", err)
	}
	s.logger.Info("rich_content item created", "id", item.ID, "section", item.Section, "category", item.Category)
	s.index(search.FromRich(*item))
	return item, nil
}

// UpdateRichContent replaces a rich item.
func (s *ContentService) UpdateRichContent(ctx context.Context, id int64, in domain.RichContentInput) (*domain.RichContentItem, error) {
	in = prepareRich(in)
	item, err := s.store.UpdateRichContent(ctx, id, in)
	if err != nil {
		return nil, s.fail("update rich_content", err, "id", id)
	}
	s.logger.Info("rich_content item updated", "id", id)
	s.index(search.FromRich(*item))
	return item, nil
}

// DeleteRichContent removes a rich item.
func (s *ContentService) DeleteRichContent(ctx context.Context, id int64) error {
	if err := s.store.DeleteRichContent(ctx, id); err != nil {
		return s.fail("delete rich_content", err, "id", id)
	}
	s.logger.Info("rich_content item deleted", "id", id)
	s.unindex(domain.RichContent, id)
	return nil
}

// RichContentSections returns the distinct rich sections.
func (s *ContentService) RichContentSections(ctx context.Context) ([]string, error) {
	values, err := s.store.RichContentSections(ctx)
	if err != nil {
		return nil, s.fail("rich_content sections", err)
	}
	return values, nil
}

// RichContentCategories returns the distinct rich categories of section.
func (s *ContentService) RichContentCategories(ctx context.Context, section string) ([]string, error) {
	values, err := s.store.RichContentCategories(ctx, section)
	if err != nil {
		return nil, s.fail("rich_content categories", err, "section", section)
	}
	return values, nil
}

// SearchDocuments builds the search documents for every stored item.
func (s *ContentService) SearchDocuments(ctx context.Context) ([]search.Document, error) {
	library, err := s.ListContentLibrary(ctx, domain.ContentFilter{})
	if err != nil {
		return nil, err
	}
	rich, err := s.ListRichContent(ctx, domain.ContentFilter{})
	if err != nil {
		return nil, err
	}

	docs := make([]search.Document, 0, len(library)+len(rich))
	for _, item := range library {
		docs = append(docs, search.FromLibrary(item))
	}
	for _, item := range rich {
		docs = append(docs, search.FromRich(item))
	}
	return docs, nil
}

func (s *ContentService) index(doc search.Document) {
	if s.indexer != nil {
		s.indexer.Index(doc)
	}
}

func (s *ContentService) unindex(t domain.ContentType, id int64) {
	if s.indexer != nil {
		s.indexer.Delete(t, id)
	}
}

func prepareRich(in domain.RichContentInput) domain.RichContentInput {
	in.Tag = domain.NormalizeTags(in.Tag)
	if in.PlainText == nil {
		if text := richtext.PlainText(in.HTML); text != "" {
			in.PlainText = &text
		}
	}
	return in
}
