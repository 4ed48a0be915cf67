package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/search",
		Summary:     "Search content",
		Description: "Full-text search over both collections. Uses Meilisearch when it is healthy, the local index otherwise.",
		Tags:        []string{"Search"},
		Security:    bearerAuth,
	}, s.handleSearch)
}

// SearchInput contains search parameters.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search text"`
	Type          string `query:"type" enum:"content_library,rich_content," doc:"Restrict to one collection"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Max hits"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Query)
	if text == "" {
		return nil, domainerrors.Validation("q es requerido")
	}

	result, err := s.services.Search.Search(ctx, search.Query{
		Text:   text,
		Type:   domain.ContentType(input.Type),
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
