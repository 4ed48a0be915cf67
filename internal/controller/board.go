// Package controller holds the server-side view models behind the admin
// content tables. Each admin session owns one controller per collection;
// a controller keeps the filters, the loaded rows, the visible page and the
// modal form, and talks to the content store on the admin's behalf.
//
// Controllers are safe for concurrent use. The mutex is never held across a
// store call, and every LoadData takes a request token so a slow response
// cannot overwrite a newer one.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/editor"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/listing"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// Messages shown when the store gives none.
const (
	MsgLoadFailed   = "Error al cargar los datos"
	MsgSaveFailed   = "Error al guardar"
	MsgDeleteFailed = "Error al eliminar"
	MsgItemNotFound = "Registro no encontrado"
	MsgKeyLocked    = "Las claves existentes no se pueden editar"
)

// Modal is the open dialog of a table.
type Modal string

// Modals.
const (
	ModalIdle          Modal = "idle"
	ModalCreate        Modal = "create"
	ModalEdit          Modal = "edit"
	ModalDeleteConfirm Modal = "delete_confirm"
	ModalPreview       Modal = "preview"
)

// ErrKeyLocked is returned when editing the key of a stored field.
var ErrKeyLocked = domainerrors.Validation(MsgKeyLocked)

// FormBase holds the modal fields shared by both collections.
type FormBase struct {
	Section      string   `json:"section"`
	Category     string   `json:"category"`
	ExistingTags []string `json:"existing_tags"`
	NewTagInput  string   `json:"new_tag_input"`
}

func (f FormBase) clone() FormBase {
	f.ExistingTags = slices.Clone(f.ExistingTags)
	return f
}

// View is the table state common to both collections.
type View[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	TotalItems int    `json:"total_items"`
	Pages      []int  `json:"pages"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`

	Section    string   `json:"section"`
	Category   string   `json:"category"`
	Search     string   `json:"search"`
	Sections   []string `json:"sections"`
	Categories []string `json:"categories"`

	Modal          Modal    `json:"modal"`
	EditingID      int64    `json:"editing_id,omitempty"`
	DeletingID     int64    `json:"deleting_id,omitempty"`
	FormError      string   `json:"form_error,omitempty"`
	FormCategories []string `json:"form_categories"`
}

// source is the slice of a content store a board reads and deletes through.
type source[T any] struct {
	list       func(ctx context.Context, filter domain.ContentFilter) ([]T, error)
	sections   func(ctx context.Context) ([]string, error)
	categories func(ctx context.Context, section string) ([]string, error)
	remove     func(ctx context.Context, id int64) error
}

// board is the collection-independent half of a controller.
type board[T any] struct {
	mu     sync.Mutex
	src    source[T]
	match  listing.Matcher[T]
	idOf   func(T) int64
	logger *slog.Logger

	// onLoad runs under mu after a successful, current load.
	onLoad func(items []T, filter domain.ContentFilter)

	items       []T
	page        listing.Page[T]
	current     int
	loading     bool
	err         string
	token       uint64
	initialized bool

	section    string
	category   string
	search     string
	sections   []string
	categories []string

	modal          Modal
	editingID      int64
	deletingID     int64
	formErr        string
	form           FormBase
	formCategories []string
}

func newBoard[T any](src source[T], match listing.Matcher[T], idOf func(T) int64, logger *slog.Logger) *board[T] {
	b := &board[T]{
		src:     src,
		match:   match,
		idOf:    idOf,
		logger:  logger,
		current: 1,
		modal:   ModalIdle,
	}
	b.recompute()
	return b
}

// EnsureLoaded loads sections and data the first time it is called.
func (b *board[T]) EnsureLoaded(ctx context.Context) {
	b.mu.Lock()
	done := b.initialized
	b.initialized = true
	b.mu.Unlock()
	if done {
		return
	}
	b.LoadSections(ctx)
	b.LoadData(ctx)
}

// LoadSections refreshes the section options. Failures are logged and the
// previous options kept.
func (b *board[T]) LoadSections(ctx context.Context) {
	values, err := b.src.sections(ctx)
	if err != nil {
		b.logger.Warn("load sections", "error", err)
		return
	}
	b.mu.Lock()
	b.sections = values
	b.mu.Unlock()
}

// LoadCategories refreshes the category options for the selected section.
func (b *board[T]) LoadCategories(ctx context.Context) {
	b.mu.Lock()
	section := b.section
	b.mu.Unlock()

	values, err := b.src.categories(ctx, section)
	if err != nil {
		b.logger.Warn("load categories", "section", section, "error", err)
		return
	}
	b.mu.Lock()
	b.categories = values
	b.mu.Unlock()
}

// LoadData fetches the rows for the current filter and recomputes the
// visible page. On failure the error is recorded and the previous rows are
// kept.
func (b *board[T]) LoadData(ctx context.Context) {
	b.mu.Lock()
	b.token++
	token := b.token
	filter := domain.ContentFilter{Section: b.section, Category: b.category}
	b.loading = true
	b.err = ""
	b.mu.Unlock()

	items, err := b.src.list(ctx, filter)

	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.token {
		b.logger.Debug("discarding stale load", "token", token, "latest", b.token)
		return
	}
	b.loading = false
	if err != nil {
		b.err = userMessage(err, MsgLoadFailed)
		return
	}
	b.items = items
	if b.onLoad != nil {
		b.onLoad(items, filter)
	}
	b.recompute()
}

// recompute re-runs search and pagination. Callers hold mu.
func (b *board[T]) recompute() {
	filtered := listing.Filter(b.items, b.search, b.match)
	b.page = listing.Paginate(filtered, b.current, listing.PageSize)
	b.current = b.page.Page
}

// OnSectionChange selects section, clears the category and reloads.
func (b *board[T]) OnSectionChange(ctx context.Context, section string) {
	b.mu.Lock()
	b.section = section
	b.category = ""
	b.mu.Unlock()

	b.LoadCategories(ctx)
	b.LoadData(ctx)
}

// OnCategoryChange selects category and reloads.
func (b *board[T]) OnCategoryChange(ctx context.Context, category string) {
	b.mu.Lock()
	b.category = category
	b.mu.Unlock()

	b.LoadData(ctx)
}

// ClearFilters resets every filter and reloads.
func (b *board[T]) ClearFilters(ctx context.Context) {
	b.mu.Lock()
	b.section = ""
	b.category = ""
	b.search = ""
	b.categories = nil
	b.current = 1
	b.mu.Unlock()

	b.LoadData(ctx)
}

// SetSearch applies a search term to the loaded rows and returns to the
// first page.
func (b *board[T]) SetSearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = term
	b.current = 1
	b.recompute()
}

// ChangePage moves to page n. Pages outside [1, TotalPages] are ignored.
func (b *board[T]) ChangePage(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 1 || n > b.page.TotalPages {
		return false
	}
	b.current = n
	b.recompute()
	return true
}

// SetFormSection sets the modal section.
func (b *board[T]) SetFormSection(section string) {
	b.mu.Lock()
	b.form.Section = section
	b.mu.Unlock()
}

// SetFormCategory sets the modal category.
func (b *board[T]) SetFormCategory(category string) {
	b.mu.Lock()
	b.form.Category = category
	b.mu.Unlock()
}

// SetNewTagInput sets the comma separated new tags.
func (b *board[T]) SetNewTagInput(input string) {
	b.mu.Lock()
	b.form.NewTagInput = input
	b.mu.Unlock()
}

// RemoveExistingTag unlocks and drops a stored tag from the form.
func (b *board[T]) RemoveExistingTag(tag string) {
	b.mu.Lock()
	b.form.ExistingTags = editor.RemoveTag(b.form.ExistingTags, tag)
	b.mu.Unlock()
}

// OnModalSectionChange sets the modal section, clears its category and
// reloads the modal's category options for that section.
func (b *board[T]) OnModalSectionChange(ctx context.Context, section string) {
	b.mu.Lock()
	b.form.Section = section
	b.form.Category = ""
	b.mu.Unlock()

	values, err := b.src.categories(ctx, section)
	if err != nil {
		b.logger.Warn("load modal categories", "section", section, "error", err)
		return
	}
	b.mu.Lock()
	b.formCategories = values
	b.mu.Unlock()
}

// CloseFormModal closes the create/edit modal without saving.
func (b *board[T]) CloseFormModal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeForm()
}

// closeForm resets the modal. Callers hold mu.
func (b *board[T]) closeForm() {
	if b.modal == ModalCreate || b.modal == ModalEdit {
		b.modal = ModalIdle
	}
	b.editingID = 0
	b.formErr = ""
}

// openForm enters create (editingID 0) or edit mode. Callers hold mu.
func (b *board[T]) openForm(editingID int64, form FormBase) {
	b.modal = ModalCreate
	if editingID != 0 {
		b.modal = ModalEdit
	}
	b.editingID = editingID
	b.form = form
	b.formErr = ""
	b.formCategories = slices.Clone(b.categories)
}

// find returns the loaded row with id. Callers hold mu.
func (b *board[T]) find(id int64) (T, bool) {
	for _, item := range b.items {
		if b.idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// OpenDeleteModal asks for confirmation before deleting id.
func (b *board[T]) OpenDeleteModal(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modal = ModalDeleteConfirm
	b.deletingID = id
}

// CloseDeleteModal cancels a pending delete.
func (b *board[T]) CloseDeleteModal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.modal == ModalDeleteConfirm {
		b.modal = ModalIdle
	}
	b.deletingID = 0
}

// ConfirmDelete deletes the pending row and reloads. Without a pending row
// it does nothing.
func (b *board[T]) ConfirmDelete(ctx context.Context) error {
	b.mu.Lock()
	id := b.deletingID
	if id == 0 {
		b.mu.Unlock()
		return nil
	}
	b.loading = true
	b.mu.Unlock()

	if err := b.src.remove(ctx, id); err != nil {
		b.mu.Lock()
		b.err = userMessage(err, MsgDeleteFailed)
		b.loading = false
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	b.modal = ModalIdle
	b.deletingID = 0
	b.mu.Unlock()

	b.LoadData(ctx)
	return nil
}

// beginSave clears the form error and returns the form and target.
func (b *board[T]) beginSave() (FormBase, int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.formErr = ""
	return b.form.clone(), b.editingID
}

// failSave records a save failure; the modal stays open.
func (b *board[T]) failSave(err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.formErr = userMessage(err, MsgSaveFailed)
	b.loading = false
	return err
}

// finishSave closes the modal and reloads.
func (b *board[T]) finishSave(ctx context.Context) {
	b.mu.Lock()
	b.closeForm()
	b.loading = false
	b.mu.Unlock()

	b.LoadData(ctx)
}

func (b *board[T]) setLoading(v bool) {
	b.mu.Lock()
	b.loading = v
	b.mu.Unlock()
}

// view snapshots the shared state. Callers hold mu.
func (b *board[T]) view() View[T] {
	return View[T]{
		Items:          slices.Clone(b.page.Items),
		Page:           b.page.Page,
		TotalPages:     b.page.TotalPages,
		TotalItems:     b.page.TotalItems,
		Pages:          listing.PageRange(b.page.Page, b.page.TotalPages),
		Loading:        b.loading,
		Error:          b.err,
		Section:        b.section,
		Category:       b.category,
		Search:         b.search,
		Sections:       slices.Clone(b.sections),
		Categories:     slices.Clone(b.categories),
		Modal:          b.modal,
		EditingID:      b.editingID,
		DeletingID:     b.deletingID,
		FormError:      b.formErr,
		FormCategories: slices.Clone(b.formCategories),
	}
}

// userMessage returns the message of a store or domain error, or fallback
// for anything else. Backends turn database-raised failures into store
// errors carrying the database's message, so only transport failures fall
// back.
func userMessage(err error, fallback string) string {
	var se *store.Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var de *domainerrors.Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
