package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/editor"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/listing"
	"github.com/arcanaoficial/arcana-server/internal/service"
)

const msgDataNotObject = "data debe ser un objeto JSON"

func (s *Server) registerContentLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listContentLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/content-library",
		Summary:     "List content library",
		Description: "Returns one page of library items matching the filters and search term",
		Tags:        []string{"Content Library"},
		Security:    bearerAuth,
	}, s.handleListContentLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "contentLibrarySections",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/content-library/sections",
		Summary:     "List library sections",
		Tags:        []string{"Content Library"},
		Security:    bearerAuth,
	}, s.handleContentLibrarySections)

	huma.Register(s.api, huma.Operation{
		OperationID: "contentLibraryCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/content-library/categories",
		Summary:     "List library categories",
		Description: "Returns the categories of a section, or of every section",
		Tags:        []string{"Content Library"},
		Security:    bearerAuth,
	}, s.handleContentLibraryCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "contentLibraryKeys",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/content-library/keys",
		Summary:     "List data keys",
		Description: "Returns the sorted union of data keys of the filtered items; empty without a filter",
		Tags:        []string{"Content Library"},
		Security:    bearerAuth,
	}, s.handleContentLibraryKeys)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContentLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/content-library/{id}",
		Summary:     "Get library item",
		Tags:        []string{"Content Library"},
		Security:    bearerAuth,
	}, s.handleGetContentLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createContentLibrary",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/content-library",
		Summary:       "Create library item",
		Description:   "Accepts either editor rows (fields) or a data object",
		Tags:          []string{"Content Library"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateContentLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateContentLibrary",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/content-library/{id}",
		Summary:     "Replace library item",
		Tags:        []string{"Content Library"},
		Security:    bearerAuth,
	}, s.handleUpdateContentLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteContentLibrary",
		Method:        http.MethodDelete,
		Path:          "/api/v1/admin/content-library/{id}",
		Summary:       "Delete library item",
		Tags:          []string{"Content Library"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteContentLibrary)
}

func (s *Server) registerRichContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRichContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/rich-content",
		Summary:     "List rich content",
		Tags:        []string{"Rich Content"},
		Security:    bearerAuth,
	}, s.handleListRichContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "richContentSections",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/rich-content/sections",
		Summary:     "List rich content sections",
		Tags:        []string{"Rich Content"},
		Security:    bearerAuth,
	}, s.handleRichContentSections)

	huma.Register(s.api, huma.Operation{
		OperationID: "richContentCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/rich-content/categories",
		Summary:     "List rich content categories",
		Tags:        []string{"Rich Content"},
		Security:    bearerAuth,
	}, s.handleRichContentCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRichContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/rich-content/{id}",
		Summary:     "Get rich content item",
		Tags:        []string{"Rich Content"},
		Security:    bearerAuth,
	}, s.handleGetRichContent)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRichContent",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/rich-content",
		Summary:       "Create rich content item",
		Description:   "plain_text is derived from the markup when omitted",
		Tags:          []string{"Rich Content"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRichContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRichContent",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/rich-content/{id}",
		Summary:     "Replace rich content item",
		Tags:        []string{"Rich Content"},
		Security:    bearerAuth,
	}, s.handleUpdateRichContent)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRichContent",
		Method:        http.MethodDelete,
		Path:          "/api/v1/admin/rich-content/{id}",
		Summary:       "Delete rich content item",
		Tags:          []string{"Rich Content"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRichContent)
}

// === DTOs ===

// ListContentInput contains filters, search and page for a listing.
type ListContentInput struct {
	Authorization string `header:"Authorization"`
	Section       string `query:"section" doc:"Exact section"`
	Category      string `query:"category" doc:"Exact category"`
	Search        string `query:"search" doc:"Case-insensitive search term"`
	Page          int    `query:"page" default:"1" doc:"1-based page, clamped to the last page"`
}

func (in *ListContentInput) filter() domain.ContentFilter {
	return domain.ContentFilter{Section: in.Section, Category: in.Category}
}

// PageResponse is one page of a listing plus the page links to show.
type PageResponse[T any] struct {
	listing.Page[T]
	Pages []int `json:"pages" doc:"Page numbers to show around the current page"`
}

// PageOutput wraps a page for Huma.
type PageOutput[T any] struct {
	Body PageResponse[T]
}

func paginate[T any](items []T, term string, page int, match listing.Matcher[T]) *PageOutput[T] {
	p := listing.Paginate(listing.Filter(items, term, match), page, listing.PageSize)
	return &PageOutput[T]{Body: PageResponse[T]{Page: p, Pages: listing.PageRange(p.Page, p.TotalPages)}}
}

// ItemInput identifies an item.
type ItemInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Item ID"`
}

// ItemOutput wraps an item for Huma.
type ItemOutput[T any] struct {
	Body T
}

// CategoriesInput selects a section.
type CategoriesInput struct {
	Authorization string `header:"Authorization"`
	Section       string `query:"section" doc:"Section; empty lists every category"`
}

// ValuesResponse is a sorted list of distinct values.
type ValuesResponse struct {
	Values []string `json:"values" doc:"Distinct values, sorted"`
}

// ValuesOutput wraps a value list for Huma.
type ValuesOutput struct {
	Body ValuesResponse
}

func values(v []string) *ValuesOutput {
	if v == nil {
		v = []string{}
	}
	return &ValuesOutput{Body: ValuesResponse{Values: v}}
}

// KeysInput selects the items whose keys are listed.
type KeysInput struct {
	Authorization string `header:"Authorization"`
	Section       string `query:"section"`
	Category      string `query:"category"`
}

// LibraryItemRequest is a library write. Either fields (editor rows) or
// data is required; fields wins when both are sent.
type LibraryItemRequest struct {
	Section      string          `json:"section,omitempty" doc:"Section (required)"`
	Category     string          `json:"category,omitempty" doc:"Category (required)"`
	Order        *int            `json:"order,omitempty" doc:"Display order; lower first, absent last"`
	Fields       []editor.Row    `json:"fields,omitempty" doc:"Editor rows; values are typed by content"`
	Data         json.RawMessage `json:"data,omitempty" doc:"Data object, used when fields is empty"`
	ExistingTags []string        `json:"existing_tags,omitempty" doc:"Tags kept from the stored item"`
	Tag          []string        `json:"tag,omitempty" doc:"Tags, used with data"`
	NewTagInput  string          `json:"new_tag_input,omitempty" doc:"Comma separated tags to append"`
}

func (r LibraryItemRequest) input() (domain.ContentLibraryInput, error) {
	form := service.LibraryForm{
		Section:      r.Section,
		Category:     r.Category,
		Order:        r.Order,
		Fields:       r.Fields,
		ExistingTags: r.ExistingTags,
		NewTagInput:  r.NewTagInput,
		Tag:          r.Tag,
	}
	if len(r.Fields) == 0 {
		if raw := bytes.TrimSpace(r.Data); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			rec, err := domain.ParseRecord(raw)
			if err != nil {
				return domain.ContentLibraryInput{}, domainerrors.Validation(msgDataNotObject).WithCause(err)
			}
			form.Data = rec
		}
	}
	return form.Input()
}

// LibraryItemInput wraps a library write for Huma.
type LibraryItemInput struct {
	Authorization string `header:"Authorization"`
	Body          LibraryItemRequest
}

// UpdateLibraryItemInput wraps a library replace for Huma.
type UpdateLibraryItemInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Item ID"`
	Body          LibraryItemRequest
}

// RichItemRequest is a rich content write.
type RichItemRequest struct {
	Section      string   `json:"section,omitempty" doc:"Section (required)"`
	Category     string   `json:"category,omitempty" doc:"Category (required)"`
	HTML         string   `json:"html,omitempty" doc:"Markup (required, not just an empty paragraph)"`
	PlainText    string   `json:"plain_text,omitempty" doc:"Listing text; derived from html when empty"`
	ExistingTags []string `json:"existing_tags,omitempty" doc:"Tags kept from the stored item"`
	Tag          []string `json:"tag,omitempty" doc:"Tags"`
	NewTagInput  string   `json:"new_tag_input,omitempty" doc:"Comma separated tags to append"`
}

func (r RichItemRequest) input() (domain.RichContentInput, error) {
	return service.RichForm{
		Section:      r.Section,
		Category:     r.Category,
		HTML:         r.HTML,
		PlainText:    r.PlainText,
		ExistingTags: append(slices.Clone(r.ExistingTags), r.Tag...),
		NewTagInput:  r.NewTagInput,
	}.Input()
}

// RichItemInput wraps a rich content write for Huma.
type RichItemInput struct {
	Authorization string `header:"Authorization"`
	Body          RichItemRequest
}

// UpdateRichItemInput wraps a rich content replace for Huma.
type UpdateRichItemInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Item ID"`
	Body          RichItemRequest
}

// === Content library handlers ===

func (s *Server) handleListContentLibrary(ctx context.Context, input *ListContentInput) (*PageOutput[domain.ContentLibraryItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	items, err := s.services.Content.ListContentLibrary(ctx, input.filter())
	if err != nil {
		return nil, err
	}
	return paginate(items, input.Search, input.Page, listing.MatchContentLibrary), nil
}

func (s *Server) handleContentLibrarySections(ctx context.Context, input *AuthInput) (*ValuesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	v, err := s.services.Content.ContentLibrarySections(ctx)
	if err != nil {
		return nil, err
	}
	return values(v), nil
}

func (s *Server) handleContentLibraryCategories(ctx context.Context, input *CategoriesInput) (*ValuesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	v, err := s.services.Content.ContentLibraryCategories(ctx, input.Section)
	if err != nil {
		return nil, err
	}
	return values(v), nil
}

func (s *Server) handleContentLibraryKeys(ctx context.Context, input *KeysInput) (*ValuesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	keys, err := s.services.Content.ContentLibraryKeys(ctx, domain.ContentFilter{Section: input.Section, Category: input.Category})
	if err != nil {
		return nil, err
	}
	return values(keys), nil
}

func (s *Server) handleGetContentLibrary(ctx context.Context, input *ItemInput) (*ItemOutput[domain.ContentLibraryItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	item, err := s.services.Content.GetContentLibrary(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput[domain.ContentLibraryItem]{Body: *item}, nil
}

func (s *Server) handleCreateContentLibrary(ctx context.Context, input *LibraryItemInput) (*ItemOutput[domain.ContentLibraryItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}
	item, err := s.services.Content.CreateContentLibrary(ctx, in)
	if err != nil {
		return nil, err
	}
	return &ItemOutput[domain.ContentLibraryItem]{Body: *item}, nil
}

func (s *Server) handleUpdateContentLibrary(ctx context.Context, input *UpdateLibraryItemInput) (*ItemOutput[domain.ContentLibraryItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}
	item, err := s.services.Content.UpdateContentLibrary(ctx, input.ID, in)
	if err != nil {
		return nil, err
	}
	return &ItemOutput[domain.ContentLibraryItem]{Body: *item}, nil
}

func (s *Server) handleDeleteContentLibrary(ctx context.Context, input *ItemInput) (*struct{}, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	return nil, s.services.Content.DeleteContentLibrary(ctx, input.ID)
}

// === Rich content handlers ===

func (s *Server) handleListRichContent(ctx context.Context, input *ListContentInput) (*PageOutput[domain.RichContentItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	items, err := s.services.Content.ListRichContent(ctx, input.filter())
	if err != nil {
		return nil, err
	}
	return paginate(items, input.Search, input.Page, listing.MatchRichContent), nil
}

func (s *Server) handleRichContentSections(ctx context.Context, input *AuthInput) (*ValuesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	v, err := s.services.Content.RichContentSections(ctx)
	if err != nil {
		return nil, err
	}
	return values(v), nil
}

func (s *Server) handleRichContentCategories(ctx context.Context, input *CategoriesInput) (*ValuesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	v, err := s.services.Content.RichContentCategories(ctx, input.Section)
	if err != nil {
		return nil, err
	}
	return values(v), nil
}

func (s *Server) handleGetRichContent(ctx context.Context, input *ItemInput) (*ItemOutput[domain.RichContentItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	item, err := s.services.Content.GetRichContent(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput[domain.RichContentItem]{Body: *item}, nil
}

func (s *Server) handleCreateRichContent(ctx context.Context, input *RichItemInput) (*ItemOutput[domain.RichContentItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}
	item, err := s.services.Content.CreateRichContent(ctx, in)
	if err != nil {
		return nil, err
	}
	return &ItemOutput[domain.RichContentItem]{Body: *item}, nil
}

func (s *Server) handleUpdateRichContent(ctx context.Context, input *UpdateRichItemInput) (*ItemOutput[domain.RichContentItem], error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}
	item, err := s.services.Content.UpdateRichContent(ctx, input.ID, in)
	if err != nil {
		return nil, err
	}
	return &ItemOutput[domain.RichContentItem]{Body: *item}, nil
}

func (s *Server) handleDeleteRichContent(ctx context.Context, input *ItemInput) (*struct{}, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	return nil, s.services.Content.DeleteRichContent(ctx, input.ID)
}
