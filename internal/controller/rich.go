package controller

import (
	"context"
	"log/slog"
	"slices"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/listing"
	"github.com/arcanaoficial/arcana-server/internal/service"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// RichForm is the rich content modal.
type RichForm struct {
	FormBase
	HTML      string `json:"html"`
	PlainText string `json:"plain_text"`
}

// RichState is a snapshot of a RichController.
type RichState struct {
	View[domain.RichContentItem]
	Form    RichForm `json:"form"`
	Preview string   `json:"preview,omitempty"`
}

// RichController drives the rich content table.
type RichController struct {
	*board[domain.RichContentItem]
	store store.RichContentStore

	html      string
	plainText string
	preview   string
}

// NewRichController creates a controller over st.
func NewRichController(st store.RichContentStore, logger *slog.Logger) *RichController {
	return &RichController{
		board: newBoard(source[domain.RichContentItem]{
			list:       st.ListRichContent,
			sections:   st.RichContentSections,
			categories: st.RichContentCategories,
			remove:     st.DeleteRichContent,
		}, listing.MatchRichContent, func(item domain.RichContentItem) int64 { return item.ID }, logger),
		store: st,
	}
}

// OpenCreateModal opens an empty form classified like the current filter.
func (c *RichController) OpenCreateModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openForm(0, FormBase{Section: c.section, Category: c.category})
	c.html = ""
	c.plainText = ""
}

// OpenEditModal opens the form for a loaded row.
func (c *RichController) OpenEditModal(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.find(id)
	if !ok {
		return domainerrors.NotFound(MsgItemNotFound)
	}
	c.openForm(id, FormBase{
		Section:      item.Section,
		Category:     item.Category,
		ExistingTags: slices.Clone(item.Tag),
	})
	c.html = item.HTML
	c.plainText = ""
	if item.PlainText != nil {
		c.plainText = *item.PlainText
	}
	return nil
}

// SetHTML sets the editor markup.
func (c *RichController) SetHTML(html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.html = html
}

// SetPlainText sets the plain text shown in listings.
func (c *RichController) SetPlainText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plainText = text
}

// OpenPreview shows html in the preview dialog.
func (c *RichController) OpenPreview(html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = html
	c.modal = ModalPreview
}

// ClosePreview closes the preview dialog.
func (c *RichController) ClosePreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = ""
	if c.modal == ModalPreview {
		c.modal = ModalIdle
	}
}

// SaveItem validates the form and creates or updates the row.
func (c *RichController) SaveItem(ctx context.Context) error {
	base, editingID := c.beginSave()
	c.mu.Lock()
	form := service.RichForm{
		Section:      base.Section,
		Category:     base.Category,
		HTML:         c.html,
		PlainText:    c.plainText,
		ExistingTags: base.ExistingTags,
		NewTagInput:  base.NewTagInput,
	}
	c.mu.Unlock()

	in, err := form.Input()
	if err != nil {
		return c.failSave(err)
	}

	c.setLoading(true)
	if editingID != 0 {
		_, err = c.store.UpdateRichContent(ctx, editingID, in)
	} else {
		_, err = c.store.CreateRichContent(ctx, in)
	}
	if err != nil {
		return c.failSave(err)
	}

	c.finishSave(ctx)
	return nil
}

// State returns a snapshot for rendering.
func (c *RichController) State() RichState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RichState{
		View: c.view(),
		Form: RichForm{
			FormBase:  c.form.clone(),
			HTML:      c.html,
			PlainText: c.plainText,
		},
		Preview: c.preview,
	}
}
