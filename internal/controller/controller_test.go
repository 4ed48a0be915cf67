package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/editor"
	"github.com/arcanaoficial/arcana-server/internal/service"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// memStore is an in-memory ContentStore that counts calls.
type memStore struct {
	mu     sync.Mutex
	lib    []domain.ContentLibraryItem
	rich   []domain.RichContentItem
	nextID int64
	calls  map[string]int

	listErr  error
	writeErr error

	// gate, when set, runs inside ListContentLibrary before it answers.
	gate func(filter domain.ContentFilter)
}

func newMemStore() *memStore {
	return &memStore{calls: map[string]int{}}
}

func (m *memStore) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memStore) hit(op string) {
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
}

func matches(f domain.ContentFilter, section, category string) bool {
	return (f.Section == "" || f.Section == section) && (f.Category == "" || f.Category == category)
}

func (m *memStore) addLibrary(section, category string, data *domain.Record, tags ...string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.lib = append(m.lib, domain.ContentLibraryItem{
		ID: m.nextID, Data: *data, Section: section, Category: category, Tag: domain.NormalizeTags(tags),
	})
	return m.nextID
}

func (m *memStore) ListContentLibrary(_ context.Context, f domain.ContentFilter) ([]domain.ContentLibraryItem, error) {
	m.hit("list")
	if m.gate != nil {
		m.gate(f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.ContentLibraryItem{}
	for _, item := range m.lib {
		if matches(f, item.Section, item.Category) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStore) GetContentLibrary(_ context.Context, id int64) (*domain.ContentLibraryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.lib {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateContentLibrary(_ context.Context, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	m.hit("create")
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	id := m.addLibrary(in.Section, in.Category, in.Data, in.Tag...)
	m.mu.Lock()
	m.lib[len(m.lib)-1].Order = in.Order
	m.mu.Unlock()
	return m.GetContentLibrary(context.Background(), id)
}

func (m *memStore) UpdateContentLibrary(_ context.Context, id int64, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	m.hit("update")
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lib {
		if m.lib[i].ID == id {
			m.lib[i].Data = *in.Data
			m.lib[i].Section, m.lib[i].Category = in.Section, in.Category
			m.lib[i].Order, m.lib[i].Tag = in.Order, in.Tag
			item := m.lib[i]
			return &item, nil
		}
	}
	return nil, store.ErrUpdateTargetMissing
}

func (m *memStore) DeleteContentLibrary(_ context.Context, id int64) error {
	m.hit("delete")
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lib {
		if m.lib[i].ID == id {
			m.lib = append(m.lib[:i], m.lib[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) ContentLibrarySections(context.Context) ([]string, error) {
	m.hit("sections")
	m.mu.Lock()
	defer m.mu.Unlock()
	var values []string
	for _, item := range m.lib {
		values = append(values, item.Section)
	}
	return store.DistinctSorted(values), nil
}

func (m *memStore) ContentLibraryCategories(_ context.Context, section string) ([]string, error) {
	m.hit("categories")
	m.mu.Lock()
	defer m.mu.Unlock()
	var values []string
	for _, item := range m.lib {
		if section == "" || item.Section == section {
			values = append(values, item.Category)
		}
	}
	return store.DistinctSorted(values), nil
}

func (m *memStore) ListRichContent(_ context.Context, f domain.ContentFilter) ([]domain.RichContentItem, error) {
	m.hit("rich_list")
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.RichContentItem{}
	for _, item := range m.rich {
		if matches(f, item.Section, item.Category) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStore) GetRichContent(_ context.Context, id int64) (*domain.RichContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.rich {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateRichContent(_ context.Context, in domain.RichContentInput) (*domain.RichContentItem, error) {
	m.hit("rich_create")
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item := domain.RichContentItem{ID: m.nextID, HTML: in.HTML, PlainText: in.PlainText, Section: in.Section, Category: in.Category, Tag: in.Tag}
	m.rich = append(m.rich, item)
	return &item, nil
}

func (m *memStore) UpdateRichContent(_ context.Context, id int64, in domain.RichContentInput) (*domain.RichContentItem, error) {
	m.hit("rich_update")
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rich {
		if m.rich[i].ID == id {
			m.rich[i] = domain.RichContentItem{ID: id, HTML: in.HTML, PlainText: in.PlainText, Section: in.Section, Category: in.Category, Tag: in.Tag}
			item := m.rich[i]
			return &item, nil
		}
	}
	return nil, store.ErrUpdateTargetMissing
}

func (m *memStore) DeleteRichContent(context.Context, int64) error {
	m.hit("rich_delete")
	return nil
}

func (m *memStore) RichContentSections(context.Context) ([]string, error) {
	return nil, errors.New("sections unavailable")
}

func (m *memStore) RichContentCategories(context.Context, string) ([]string, error) {
	return []string{"news"}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(pairs ...string) *domain.Record {
	r := domain.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], domain.NewString(pairs[i+1]))
	}
	return r
}

func seededLibrary(t *testing.T, n int) (*LibraryController, *memStore) {
	t.Helper()
	st := newMemStore()
	for i := 1; i <= n; i++ {
		section := "tarot"
		if i%2 == 0 {
			section = "runas"
		}
		st.addLibrary(section, "cat", rec("title", fmt.Sprintf("item %d", i), "idx", fmt.Sprint(i)))
	}
	c := NewLibraryController(st, discard())
	c.EnsureLoaded(context.Background())
	return c, st
}

func TestLibrary_LoadAndPaginate(t *testing.T) {
	c, st := seededLibrary(t, 23)

	s := c.State()
	assert.Equal(t, 23, s.TotalItems)
	assert.Equal(t, 3, s.TotalPages)
	assert.Len(t, s.Items, 10)
	assert.Equal(t, []string{"runas", "tarot"}, s.Sections)
	assert.Empty(t, s.JSONKeys, "no keys without a filter")
	assert.False(t, s.Loading)

	assert.True(t, c.ChangePage(3))
	assert.Len(t, c.State().Items, 3)
	assert.False(t, c.ChangePage(4))
	assert.False(t, c.ChangePage(0))
	assert.Equal(t, 3, c.State().Page)

	c.SetSearch("ITEM 2")
	s = c.State()
	assert.Equal(t, 1, s.Page)
	// item 2, item 20..23
	assert.Equal(t, 5, s.TotalItems)

	c.EnsureLoaded(context.Background())
	assert.Equal(t, 1, st.count("sections"), "EnsureLoaded runs once")
}

func TestLibrary_ReloadClampsPage(t *testing.T) {
	c, st := seededLibrary(t, 21)
	require.True(t, c.ChangePage(3))

	st.mu.Lock()
	st.lib = st.lib[:5]
	st.mu.Unlock()

	c.LoadData(context.Background())
	s := c.State()
	assert.Equal(t, 1, s.TotalPages)
	assert.Equal(t, 1, s.Page)
}

func TestLibrary_SectionChangeResetsCategoryAndDerivesKeys(t *testing.T) {
	c, _ := seededLibrary(t, 4)
	ctx := context.Background()

	c.OnCategoryChange(ctx, "cat")
	assert.Equal(t, "cat", c.State().Category)

	c.OnSectionChange(ctx, "tarot")
	s := c.State()
	assert.Equal(t, "", s.Category)
	assert.Equal(t, []string{"cat"}, s.Categories)
	assert.Equal(t, 2, s.TotalItems)
	assert.Equal(t, []string{"idx", "title"}, s.JSONKeys)

	c.SetSearch("x")
	c.ClearFilters(ctx)
	s = c.State()
	assert.Equal(t, "", s.Section)
	assert.Equal(t, "", s.Search)
	assert.Empty(t, s.Categories)
	assert.Empty(t, s.JSONKeys)
	assert.Equal(t, 4, s.TotalItems)
}

func TestLibrary_LoadFailureKeepsData(t *testing.T) {
	c, st := seededLibrary(t, 3)

	st.mu.Lock()
	st.listErr = store.ErrInvalidInput.WithMessage("permission denied for table content_library")
	st.mu.Unlock()
	c.LoadData(context.Background())

	s := c.State()
	assert.Equal(t, "permission denied for table content_library", s.Error)
	assert.Equal(t, 3, s.TotalItems)
	assert.False(t, s.Loading)

	st.mu.Lock()
	st.listErr = errors.New("dial tcp: connection refused")
	st.mu.Unlock()
	c.LoadData(context.Background())
	assert.Equal(t, MsgLoadFailed, c.State().Error)
}

// optionsDown fails every sections and categories query.
type optionsDown struct {
	*memStore
}

func (optionsDown) ContentLibrarySections(context.Context) ([]string, error) {
	return nil, errors.New("sections unavailable")
}

func (optionsDown) ContentLibraryCategories(context.Context, string) ([]string, error) {
	return nil, errors.New("categories unavailable")
}

func TestLibrary_OptionFailuresAreSwallowed(t *testing.T) {
	st := newMemStore()
	st.addLibrary("tarot", "mayores", rec("title", "La Luna"))
	st.addLibrary("runas", "futhark", rec("title", "Fehu"))
	c := NewLibraryController(optionsDown{st}, discard())
	ctx := context.Background()

	c.EnsureLoaded(ctx)
	s := c.State()
	assert.Empty(t, s.Error)
	assert.Empty(t, s.Sections)
	assert.Equal(t, 2, s.TotalItems, "rows load even without options")

	c.OnSectionChange(ctx, "tarot")
	s = c.State()
	assert.Empty(t, s.Error)
	assert.Empty(t, s.Categories)
	assert.Equal(t, "tarot", s.Section)
	assert.Equal(t, 1, s.TotalItems)

	c.OpenCreateModal()
	c.OnModalSectionChange(ctx, "runas")
	s = c.State()
	assert.Empty(t, s.FormError)
	assert.Empty(t, s.FormCategories)
	assert.Equal(t, "runas", s.Form.Section)
}

func TestLibrary_StaleLoadIsDiscarded(t *testing.T) {
	c, st := seededLibrary(t, 6)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	st.mu.Lock()
	st.gate = func(f domain.ContentFilter) {
		if f.Section == "" {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
	}
	st.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.LoadData(ctx)
	}()
	<-entered

	c.OnSectionChange(ctx, "tarot")
	assert.Equal(t, 3, c.State().TotalItems)

	close(release)
	<-done

	s := c.State()
	assert.Equal(t, 3, s.TotalItems, "older unfiltered response must not win")
	assert.False(t, s.Loading)
}

func TestLibrary_SaveRequiresClassification(t *testing.T) {
	c, st := seededLibrary(t, 1)

	c.OpenCreateModal()
	c.SetFieldKey(0, "title")
	c.SetFieldValue(0, "La Luna")
	err := c.SaveItem(context.Background())
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, service.MsgClassificationRequired, s.FormError)
	assert.Equal(t, ModalCreate, s.Modal)
	assert.Equal(t, 0, st.count("create"))
}

func TestLibrary_SaveRequiresDataField(t *testing.T) {
	c, st := seededLibrary(t, 1)

	c.OpenCreateModal()
	c.SetFormSection("tarot")
	c.SetFormCategory("major")
	c.SetFieldKey(0, "title")
	require.Error(t, c.SaveItem(context.Background()))
	assert.Equal(t, editor.MsgNoDataFields, c.State().FormError)
	assert.Equal(t, 0, st.count("create"))
}

func TestLibrary_CreateItem(t *testing.T) {
	c, st := seededLibrary(t, 0)
	ctx := context.Background()

	c.OnSectionChange(ctx, "tarot")
	c.OpenCreateModal()
	s := c.State()
	assert.Equal(t, "tarot", s.Form.Section, "defaults from the filter")
	require.Len(t, s.Form.Fields, 1)
	assert.True(t, s.Form.Fields[0].IsNew)

	c.SetFormCategory("major")
	c.SetFieldKey(0, "numero")
	c.SetFieldValue(0, "18")
	c.AddField()
	c.SetFieldKey(1, "activo")
	c.SetFieldValue(1, "true")
	c.SetNewTagInput("luna, noche, ")
	seven := 7
	c.SetFormOrder(&seven)

	require.NoError(t, c.SaveItem(ctx))

	s = c.State()
	assert.Equal(t, ModalIdle, s.Modal)
	assert.Empty(t, s.FormError)
	require.Equal(t, 1, s.TotalItems)

	saved := s.Items[0]
	assert.Equal(t, `{"numero":18,"activo":true}`, saved.Data.JSON())
	assert.Equal(t, []string{"luna", "noche"}, saved.Tag)
	assert.Equal(t, 7, *saved.Order)
	assert.Equal(t, 1, st.count("create"))
}

func TestLibrary_EditItem(t *testing.T) {
	c, st := seededLibrary(t, 0)
	ctx := context.Background()
	id := st.addLibrary("tarot", "major", rec("title", "El Sol"), "love")
	c.LoadData(ctx)

	require.Error(t, c.OpenEditModal(999))
	require.NoError(t, c.OpenEditModal(id))

	s := c.State()
	assert.Equal(t, ModalEdit, s.Modal)
	assert.Equal(t, id, s.EditingID)
	assert.Equal(t, []string{"love"}, s.Form.ExistingTags)
	require.Len(t, s.Form.Fields, 1)
	assert.False(t, s.Form.Fields[0].IsNew)

	assert.ErrorIs(t, c.SetFieldKey(0, "renamed"), ErrKeyLocked)
	c.SetFieldValue(0, "El Sol XIX")
	c.RemoveExistingTag("love")
	c.SetNewTagInput("luck, luck")
	require.NoError(t, c.SaveItem(ctx))

	item, err := st.GetContentLibrary(ctx, id)
	require.NoError(t, err)
	v, _ := item.Data.Get("title")
	assert.Equal(t, "El Sol XIX", v.String())
	assert.Equal(t, []string{"luck", "luck"}, item.Tag)
	assert.Equal(t, 1, st.count("update"))
}

func TestLibrary_SaveFailureKeepsModalOpen(t *testing.T) {
	c, st := seededLibrary(t, 2)
	ctx := context.Background()

	st.mu.Lock()
	st.writeErr = store.ErrUpdateTargetMissing
	st.mu.Unlock()

	require.NoError(t, c.OpenEditModal(1))
	listsBefore := st.count("list")
	require.Error(t, c.SaveItem(ctx))

	s := c.State()
	assert.Equal(t, ModalEdit, s.Modal)
	assert.Equal(t, "No se encontró el registro para actualizar", s.FormError)
	assert.False(t, s.Loading)
	assert.Equal(t, listsBefore, st.count("list"), "no reload after a failed save")

	st.mu.Lock()
	st.writeErr = errors.New("pq: deadlock")
	st.mu.Unlock()
	require.Error(t, c.SaveItem(ctx))
	assert.Equal(t, MsgSaveFailed, c.State().FormError)

	st.mu.Lock()
	st.writeErr = store.DatabaseError(http.StatusBadRequest,
		`null value in column "section" violates not-null constraint`, "update content_library", errors.New("23502"))
	st.mu.Unlock()
	require.Error(t, c.SaveItem(ctx))
	assert.Equal(t, `null value in column "section" violates not-null constraint`, c.State().FormError)

	c.OpenCreateModal()
	assert.Empty(t, c.State().FormError, "opening a modal resets the form error")
}

func TestLibrary_Delete(t *testing.T) {
	c, st := seededLibrary(t, 2)
	ctx := context.Background()

	require.NoError(t, c.ConfirmDelete(ctx))
	assert.Equal(t, 0, st.count("delete"), "no target, no call")

	c.OpenDeleteModal(1)
	assert.Equal(t, ModalDeleteConfirm, c.State().Modal)
	c.CloseDeleteModal()
	require.NoError(t, c.ConfirmDelete(ctx))
	assert.Equal(t, 0, st.count("delete"))

	c.OpenDeleteModal(1)
	require.NoError(t, c.ConfirmDelete(ctx))
	s := c.State()
	assert.Equal(t, ModalIdle, s.Modal)
	assert.Zero(t, s.DeletingID)
	assert.Equal(t, 1, s.TotalItems)

	st.mu.Lock()
	st.writeErr = errors.New("boom")
	st.mu.Unlock()
	c.OpenDeleteModal(2)
	require.Error(t, c.ConfirmDelete(ctx))
	s = c.State()
	assert.Equal(t, MsgDeleteFailed, s.Error)
	assert.Equal(t, ModalDeleteConfirm, s.Modal)
}

func TestLibrary_ModalSectionChange(t *testing.T) {
	c, st := seededLibrary(t, 0)
	st.addLibrary("tarot", "major", rec("a", "b"))
	st.addLibrary("runas", "futhark", rec("a", "b"))
	ctx := context.Background()

	c.OnSectionChange(ctx, "tarot")
	c.OpenCreateModal()
	c.SetFormCategory("major")
	c.OnModalSectionChange(ctx, "runas")

	s := c.State()
	assert.Equal(t, "runas", s.Form.Section)
	assert.Equal(t, "", s.Form.Category)
	assert.Equal(t, []string{"futhark"}, s.FormCategories)
	assert.Equal(t, []string{"major"}, s.Categories, "page filter options untouched")
}

func TestLibrary_StateIsSnapshot(t *testing.T) {
	c, _ := seededLibrary(t, 1)
	c.OpenCreateModal()

	s := c.State()
	s.Form.Fields[0].Key = "mutated"
	s.Sections[0] = "mutated"

	again := c.State()
	assert.Equal(t, "", again.Form.Fields[0].Key)
	assert.NotEqual(t, "mutated", again.Sections[0])
}

func TestRich_SaveAndPreview(t *testing.T) {
	st := newMemStore()
	c := NewRichController(st, discard())
	ctx := context.Background()
	c.EnsureLoaded(ctx)
	assert.Empty(t, c.State().Sections, "section failures are swallowed")
	assert.Empty(t, c.State().Error)

	c.OpenCreateModal()
	c.SetFormSection("blog")
	c.SetFormCategory("news")
	c.SetHTML("<p><br></p>")
	require.Error(t, c.SaveItem(ctx))
	assert.Equal(t, service.MsgEmptyHTML, c.State().FormError)
	assert.Equal(t, 0, st.count("rich_create"))

	c.SetHTML("<p>Luna nueva</p>")
	c.SetPlainText("Luna nueva")
	c.SetNewTagInput("luna")
	require.NoError(t, c.SaveItem(ctx))

	s := c.State()
	require.Equal(t, 1, s.TotalItems)
	assert.Equal(t, []string{"luna"}, s.Items[0].Tag)
	assert.Equal(t, "Luna nueva", *s.Items[0].PlainText)

	require.NoError(t, c.OpenEditModal(s.Items[0].ID))
	assert.Equal(t, "<p>Luna nueva</p>", c.State().Form.HTML)
	c.CloseFormModal()

	c.OpenPreview("<h1>x</h1>")
	s = c.State()
	assert.Equal(t, ModalPreview, s.Modal)
	assert.Equal(t, "<h1>x</h1>", s.Preview)
	c.ClosePreview()
	assert.Equal(t, ModalIdle, c.State().Modal)
	assert.Empty(t, c.State().Preview)
}

func TestRegistry(t *testing.T) {
	st := newMemStore()
	r := NewRegistry(st, discard())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	a := r.Get("sess_a")
	assert.Same(t, a, r.Get("sess_a"))
	r.Get("sess_b")
	assert.Equal(t, 2, r.Len())

	r.Remove("sess_b")
	assert.Equal(t, 1, r.Len())

	now = now.Add(2 * time.Hour)
	r.Get("sess_c")
	assert.Equal(t, 1, r.Prune(time.Hour))
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.Get("sess_a"), "pruned workspace is recreated")
}
