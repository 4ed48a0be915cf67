package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/controller"
)

const workspacePrefix = "/api/v1/admin/workspace/"

// table is the part of a controller shared by both collections.
type table interface {
	EnsureLoaded(ctx context.Context)
	LoadData(ctx context.Context)
	OnSectionChange(ctx context.Context, section string)
	OnCategoryChange(ctx context.Context, category string)
	ClearFilters(ctx context.Context)
	SetSearch(term string)
	ChangePage(n int) bool
	OnModalSectionChange(ctx context.Context, section string)
	SetFormCategory(category string)
	SetNewTagInput(input string)
	RemoveExistingTag(tag string)
	OpenCreateModal()
	OpenEditModal(id int64) error
	CloseFormModal()
	OpenDeleteModal(id int64)
	CloseDeleteModal()
	ConfirmDelete(ctx context.Context) error
	SaveItem(ctx context.Context) error
}

// workspaceTable binds one collection's controller to its routes.
type workspaceTable[S any] struct {
	name   string // path segment
	opID   string // operation id prefix
	tag    string
	pick   func(*controller.Workspace) table
	state  func(*controller.Workspace) S
	server *Server
}

// === DTOs ===

// StateOutput wraps a controller snapshot for Huma.
type StateOutput[S any] struct {
	Body S
}

// BodyInput is an authenticated request with a body.
type BodyInput[B any] struct {
	Authorization string `header:"Authorization"`
	Body          B
}

// WorkspaceItemInput identifies a loaded row.
type WorkspaceItemInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Item ID"`
}

// TagInput names a tag of the form.
type TagInput struct {
	Authorization string `header:"Authorization"`
	Tag           string `path:"tag" doc:"Tag to remove"`
}

// SectionRequest selects a section; empty clears it.
type SectionRequest struct {
	Section string `json:"section,omitempty"`
}

// CategoryRequest selects a category; empty clears it.
type CategoryRequest struct {
	Category string `json:"category,omitempty"`
}

// SearchRequest sets the search term.
type SearchRequest struct {
	Term string `json:"term,omitempty"`
}

// PageRequest moves to a page. Out of range pages are ignored.
type PageRequest struct {
	Page int `json:"page" doc:"1-based page"`
}

// TagsRequest sets the comma separated new tags.
type TagsRequest struct {
	Input string `json:"input,omitempty"`
}

// === Shared routes ===

func (t workspaceTable[S]) op(id, method, path, summary string) huma.Operation {
	return huma.Operation{
		OperationID: t.opID + id,
		Method:      method,
		Path:        workspacePrefix + t.name + path,
		Summary:     summary,
		Tags:        []string{t.tag},
		Security:    bearerAuth,
	}
}

// run resolves the caller's workspace, applies fn and returns the new state.
func (t workspaceTable[S]) run(ctx context.Context, auth string, fn func(table, *controller.Workspace) error) (*StateOutput[S], error) {
	sess, err := t.server.authenticateRequest(ctx, auth)
	if err != nil {
		return nil, err
	}
	ws := t.server.services.Workspaces.Get(sess.ID)
	tbl := t.pick(ws)
	tbl.EnsureLoaded(ctx)
	if err := fn(tbl, ws); err != nil {
		return nil, err
	}
	return &StateOutput[S]{Body: t.state(ws)}, nil
}

func (t workspaceTable[S]) register() {
	api := t.server.api

	huma.Register(api, t.op("State", http.MethodGet, "", "Get table state"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(table, *controller.Workspace) error { return nil })
		})

	huma.Register(api, t.op("Reload", http.MethodPost, "/reload", "Reload rows"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.LoadData(ctx)
				return nil
			})
		})

	huma.Register(api, t.op("Section", http.MethodPut, "/section", "Filter by section"),
		func(ctx context.Context, in *BodyInput[SectionRequest]) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.OnSectionChange(ctx, in.Body.Section)
				return nil
			})
		})

	huma.Register(api, t.op("Category", http.MethodPut, "/category", "Filter by category"),
		func(ctx context.Context, in *BodyInput[CategoryRequest]) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.OnCategoryChange(ctx, in.Body.Category)
				return nil
			})
		})

	huma.Register(api, t.op("ClearFilters", http.MethodDelete, "/filters", "Clear filters and search"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.ClearFilters(ctx)
				return nil
			})
		})

	huma.Register(api, t.op("Search", http.MethodPut, "/search", "Search loaded rows"),
		func(ctx context.Context, in *BodyInput[SearchRequest]) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.SetSearch(in.Body.Term)
				return nil
			})
		})

	huma.Register(api, t.op("Page", http.MethodPut, "/page", "Change page"),
		func(ctx context.Context, in *BodyInput[PageRequest]) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.ChangePage(in.Body.Page)
				return nil
			})
		})

	huma.Register(api, t.op("OpenCreate", http.MethodPost, "/modal/create", "Open the create form"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.OpenCreateModal()
				return nil
			})
		})

	huma.Register(api, t.op("OpenEdit", http.MethodPost, "/modal/edit/{id}", "Open the edit form for a loaded row"),
		func(ctx context.Context, in *WorkspaceItemInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				return tbl.OpenEditModal(in.ID)
			})
		})

	huma.Register(api, t.op("CloseForm", http.MethodDelete, "/modal", "Close the form without saving"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.CloseFormModal()
				return nil
			})
		})

	huma.Register(api, t.op("FormSection", http.MethodPut, "/form/section", "Set the form section"),
		func(ctx context.Context, in *BodyInput[SectionRequest]) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.OnModalSectionChange(ctx, in.Body.Section)
				return nil
			})
		})

	huma.Register(api, t.op("FormCategory", http.MethodPut, "/form/category", "Set the form category"),
		func(ctx context.Context, in *BodyInput[CategoryRequest]) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.SetFormCategory(in.Body.Category)
				return nil
			})
		})

	huma.Register(api, t.op("FormNewTags", http.MethodPut, "/form/new-tags", "Set the new tags input"),
		func(ctx context.Context, in *BodyInput[TagsRequest]) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.SetNewTagInput(in.Body.Input)
				return nil
			})
		})

	huma.Register(api, t.op("FormRemoveTag", http.MethodDelete, "/form/tags/{tag}", "Remove a stored tag"),
		func(ctx context.Context, in *TagInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.RemoveExistingTag(in.Tag)
				return nil
			})
		})

	huma.Register(api, t.op("Save", http.MethodPost, "/save", "Save the form"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			// Failures stay in the form error; the modal remains open.
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				_ = tbl.SaveItem(ctx)
				return nil
			})
		})

	huma.Register(api, t.op("OpenDelete", http.MethodPost, "/delete/{id}", "Ask to delete a row"),
		func(ctx context.Context, in *WorkspaceItemInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.OpenDeleteModal(in.ID)
				return nil
			})
		})

	huma.Register(api, t.op("CancelDelete", http.MethodDelete, "/delete", "Cancel a pending delete"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				tbl.CloseDeleteModal()
				return nil
			})
		})

	huma.Register(api, t.op("ConfirmDelete", http.MethodPost, "/delete", "Delete the pending row"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[S], error) {
			// Failures stay in the table error.
			return t.run(ctx, in.Authorization, func(tbl table, _ *controller.Workspace) error {
				_ = tbl.ConfirmDelete(ctx)
				return nil
			})
		})
}

// === Content library workspace ===

// OrderRequest sets the display order; null clears it.
type OrderRequest struct {
	Order *int `json:"order,omitempty" nullable:"true"`
}

// FieldInput addresses a data row of the form.
type FieldInput struct {
	Authorization string `header:"Authorization"`
	Index         int    `path:"index" doc:"0-based row index"`
}

// FieldRequest edits a data row. Absent members are left unchanged.
type FieldRequest struct {
	Key   *string `json:"key,omitempty" doc:"Key; only rows added in this form can be renamed"`
	Value *string `json:"value,omitempty" doc:"Raw value, typed on save"`
}

// UpdateFieldInput wraps a field edit for Huma.
type UpdateFieldInput struct {
	Authorization string `header:"Authorization"`
	Index         int    `path:"index" doc:"0-based row index"`
	Body          FieldRequest
}

func (s *Server) registerLibraryWorkspaceRoutes() {
	t := workspaceTable[controller.LibraryState]{
		name:   "content-library",
		opID:   "libraryWorkspace",
		tag:    "Content Library Workspace",
		pick:   func(ws *controller.Workspace) table { return ws.Library },
		state:  func(ws *controller.Workspace) controller.LibraryState { return ws.Library.State() },
		server: s,
	}
	t.register()

	huma.Register(s.api, t.op("FormOrder", http.MethodPut, "/form/order", "Set the display order"),
		func(ctx context.Context, in *BodyInput[OrderRequest]) (*StateOutput[controller.LibraryState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				ws.Library.SetFormOrder(in.Body.Order)
				return nil
			})
		})

	huma.Register(s.api, t.op("AddField", http.MethodPost, "/form/fields", "Add an empty data row"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[controller.LibraryState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				ws.Library.AddField()
				return nil
			})
		})

	huma.Register(s.api, t.op("RemoveField", http.MethodDelete, "/form/fields/{index}", "Remove a data row"),
		func(ctx context.Context, in *FieldInput) (*StateOutput[controller.LibraryState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				ws.Library.RemoveField(in.Index)
				return nil
			})
		})

	huma.Register(s.api, t.op("UpdateField", http.MethodPut, "/form/fields/{index}", "Edit a data row"),
		func(ctx context.Context, in *UpdateFieldInput) (*StateOutput[controller.LibraryState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				if in.Body.Key != nil {
					if err := ws.Library.SetFieldKey(in.Index, *in.Body.Key); err != nil {
						return err
					}
				}
				if in.Body.Value != nil {
					ws.Library.SetFieldValue(in.Index, *in.Body.Value)
				}
				return nil
			})
		})
}

// === Rich content workspace ===

// HTMLRequest carries editor markup.
type HTMLRequest struct {
	HTML string `json:"html,omitempty"`
}

// PlainTextRequest carries the listing text.
type PlainTextRequest struct {
	PlainText string `json:"plain_text,omitempty"`
}

func (s *Server) registerRichWorkspaceRoutes() {
	t := workspaceTable[controller.RichState]{
		name:   "rich-content",
		opID:   "richWorkspace",
		tag:    "Rich Content Workspace",
		pick:   func(ws *controller.Workspace) table { return ws.Rich },
		state:  func(ws *controller.Workspace) controller.RichState { return ws.Rich.State() },
		server: s,
	}
	t.register()

	huma.Register(s.api, t.op("FormHTML", http.MethodPut, "/form/html", "Set the form markup"),
		func(ctx context.Context, in *BodyInput[HTMLRequest]) (*StateOutput[controller.RichState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				ws.Rich.SetHTML(in.Body.HTML)
				return nil
			})
		})

	huma.Register(s.api, t.op("FormPlainText", http.MethodPut, "/form/plain-text", "Set the form plain text"),
		func(ctx context.Context, in *BodyInput[PlainTextRequest]) (*StateOutput[controller.RichState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				ws.Rich.SetPlainText(in.Body.PlainText)
				return nil
			})
		})

	huma.Register(s.api, t.op("OpenPreview", http.MethodPost, "/preview", "Preview markup"),
		func(ctx context.Context, in *BodyInput[HTMLRequest]) (*StateOutput[controller.RichState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				ws.Rich.OpenPreview(in.Body.HTML)
				return nil
			})
		})

	huma.Register(s.api, t.op("ClosePreview", http.MethodDelete, "/preview", "Close the preview"),
		func(ctx context.Context, in *AuthInput) (*StateOutput[controller.RichState], error) {
			return t.run(ctx, in.Authorization, func(_ table, ws *controller.Workspace) error {
				ws.Rich.ClosePreview()
				return nil
			})
		})
}
