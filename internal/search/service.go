package search

import (
	"context"
	"log/slog"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

// remote is the subset of Meili the service uses.
type remote interface {
	Healthy() bool
	Search(ctx context.Context, q Query) (*Result, error)
	IndexDocuments(docs []Document) error
	DeleteDocument(id string) error
	Close()
}

// Service keeps both engines in sync and answers queries from Meilisearch
// when it is healthy, falling back to the local index otherwise.
type Service struct {
	local  *Index
	remote remote
	logger *slog.Logger
}

// NewService creates the search facade. meili may be nil.
func NewService(local *Index, m *Meili, logger *slog.Logger) *Service {
	s := &Service{local: local, logger: logger}
	if m != nil {
		s.remote = m
	}
	return s
}

// Search answers q.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	if s.remote != nil && s.remote.Healthy() {
		res, err := s.remote.Search(ctx, q)
		if err == nil {
			return res, nil
		}
		s.logger.Warn("meilisearch error, falling back to local index", "error", err)
	}
	return s.local.Search(ctx, q)
}

// Index adds or replaces doc. The local index is updated synchronously,
// Meilisearch in the background.
func (s *Service) Index(doc Document) {
	if err := s.local.IndexDocument(doc); err != nil {
		s.logger.Error("index document", "id", doc.ID, "error", err)
	}
	if s.remote == nil || !s.remote.Healthy() {
		return
	}
	go func() {
		if err := s.remote.IndexDocuments([]Document{doc}); err != nil {
			s.logger.Warn("meilisearch index document", "id", doc.ID, "error", err)
		}
	}()
}

// Delete removes an item from both engines.
func (s *Service) Delete(t domain.ContentType, id int64) {
	docID := DocumentID(t, id)
	if err := s.local.DeleteDocument(docID); err != nil {
		s.logger.Error("delete document", "id", docID, "error", err)
	}
	if s.remote == nil || !s.remote.Healthy() {
		return
	}
	go func() {
		if err := s.remote.DeleteDocument(docID); err != nil {
			s.logger.Warn("meilisearch delete document", "id", docID, "error", err)
		}
	}()
}

// Reindex replaces the local index contents with docs and pushes them to
// Meilisearch when it is healthy.
func (s *Service) Reindex(docs []Document) error {
	if err := s.local.Rebuild(); err != nil {
		return err
	}
	if err := s.local.IndexDocuments(docs); err != nil {
		return err
	}
	if s.remote != nil && s.remote.Healthy() {
		if err := s.remote.IndexDocuments(docs); err != nil {
			s.logger.Warn("meilisearch reindex", "error", err)
		}
	}
	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}

// Engine reports which engine currently answers queries.
func (s *Service) Engine() string {
	if s.remote != nil && s.remote.Healthy() {
		return EngineMeili
	}
	return EngineBleve
}

// Close releases both engines.
func (s *Service) Close() error {
	if s.remote != nil {
		s.remote.Close()
	}
	return s.local.Close()
}

func domainType(s string) domain.ContentType {
	switch domain.ContentType(s) {
	case domain.ContentLibrary, domain.RichContent:
		return domain.ContentType(s)
	}
	return ""
}

// DocumentCount returns the number of documents in the local index.
func (s *Service) DocumentCount() (uint64, error) {
	return s.local.DocumentCount()
}
