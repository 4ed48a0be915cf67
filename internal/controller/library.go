package controller

import (
	"context"
	"log/slog"
	"slices"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/editor"
	"github.com/arcanaoficial/arcana-server/internal/listing"
	"github.com/arcanaoficial/arcana-server/internal/service"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// LibraryForm is the content library modal.
type LibraryForm struct {
	FormBase
	Order  *int         `json:"order"`
	Fields []editor.Row `json:"fields"`
}

// LibraryState is a snapshot of a LibraryController.
type LibraryState struct {
	View[domain.ContentLibraryItem]
	JSONKeys []string    `json:"json_keys"`
	Form     LibraryForm `json:"form"`
}

// LibraryController drives the content library table.
type LibraryController struct {
	*board[domain.ContentLibraryItem]
	store store.ContentLibraryStore

	jsonKeys []string
	order    *int
	fields   []editor.Row
}

// NewLibraryController creates a controller over st.
func NewLibraryController(st store.ContentLibraryStore, logger *slog.Logger) *LibraryController {
	c := &LibraryController{
		board: newBoard(source[domain.ContentLibraryItem]{
			list:       st.ListContentLibrary,
			sections:   st.ContentLibrarySections,
			categories: st.ContentLibraryCategories,
			remove:     st.DeleteContentLibrary,
		}, listing.MatchContentLibrary, func(item domain.ContentLibraryItem) int64 { return item.ID }, logger),
		store: st,
	}
	c.onLoad = c.deriveKeys
	return c
}

// deriveKeys lists the data keys of the loaded rows, but only while a
// section or category narrows the table.
func (c *LibraryController) deriveKeys(items []domain.ContentLibraryItem, filter domain.ContentFilter) {
	if filter.IsZero() {
		c.jsonKeys = nil
		return
	}
	c.jsonKeys = service.LibraryKeys(items)
}

// OpenCreateModal opens an empty form classified like the current filter.
func (c *LibraryController) OpenCreateModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openForm(0, FormBase{Section: c.section, Category: c.category})
	c.order = nil
	c.fields = []editor.Row{editor.NewRow()}
}

// OpenEditModal opens the form for a loaded row.
func (c *LibraryController) OpenEditModal(id int64) error {
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
	c.order = cloneInt(item.Order)
	c.fields = editor.RowsFromRecord(&item.Data)
	return nil
}

// SetFormOrder sets the display order; nil clears it.
func (c *LibraryController) SetFormOrder(order *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = cloneInt(order)
}

// AddField appends an empty data row.
func (c *LibraryController) AddField() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = editor.AddField(c.fields)
}

// RemoveField drops the data row at index.
func (c *LibraryController) RemoveField(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = editor.RemoveField(c.fields, index)
}

// SetFieldKey renames a new data row. Keys loaded from the stored record
// are locked.
func (c *LibraryController) SetFieldKey(index int, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.fields) {
		return nil
	}
	if !c.fields[index].IsNew {
		return ErrKeyLocked
	}
	c.fields[index].Key = key
	return nil
}

// SetFieldValue sets the raw value of a data row.
func (c *LibraryController) SetFieldValue(index int, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.fields) {
		return
	}
	c.fields[index].Value = value
}

// SaveItem validates the form and creates or updates the row. On success
// the modal closes and the table reloads; on failure the form error is set
// and the modal stays open.
func (c *LibraryController) SaveItem(ctx context.Context) error {
	base, editingID := c.beginSave()
	c.mu.Lock()
	form := service.LibraryForm{
		Section:      base.Section,
		Category:     base.Category,
		Order:        cloneInt(c.order),
		Fields:       slices.Clone(c.fields),
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
		_, err = c.store.UpdateContentLibrary(ctx, editingID, in)
	} else {
		_, err = c.store.CreateContentLibrary(ctx, in)
	}
	if err != nil {
		return c.failSave(err)
	}

	c.finishSave(ctx)
	return nil
}

// State returns a snapshot for rendering.
func (c *LibraryController) State() LibraryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return LibraryState{
		View:     c.view(),
		JSONKeys: slices.Clone(c.jsonKeys),
		Form: LibraryForm{
			FormBase: c.form.clone(),
			Order:    cloneInt(c.order),
			Fields:   slices.Clone(c.fields),
		},
	}
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
