package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaoficial/arcana-server/internal/auth"
	"github.com/arcanaoficial/arcana-server/internal/checkout"
	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/controller"
	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/http/response"
	"github.com/arcanaoficial/arcana-server/internal/leads"
	"github.com/arcanaoficial/arcana-server/internal/search"
	"github.com/arcanaoficial/arcana-server/internal/service"
	"github.com/arcanaoficial/arcana-server/internal/session"
	"github.com/arcanaoficial/arcana-server/internal/store/sqlite"
	"github.com/arcanaoficial/arcana-server/internal/validation"
)

const (
	testAdminEmail    = "admin@arcanaoficial.com"
	testAdminPassword = "ArcanaAdmin2025!"
)

var testPasswordHash = sync.OnceValue(func() string {
	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		panic(err)
	}
	return hash
})

// testEnvelope mirrors response.Envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int                 `json:"v"`
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
}

// newUpstream starts a fake upstream answering every request with status and reply.
func newUpstream(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	script := newUpstream(t, http.StatusOK, "SUCCESS")
	function := newUpstream(t, http.StatusOK, `{"url":"https://checkout.stripe.com/c/pay/cs_1"}`)

	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"*"}},
		Auth: config.AuthConfig{
			AdminEmails:       []string{testAdminEmail},
			AdminPasswordHash: testPasswordHash(),
			TokenTTL:          time.Hour,
			LoginRate:         100,
			LoginBurst:        100,
		},
		Leads: config.LeadsConfig{
			ScriptURL: script.URL,
			Rate:      100,
			Burst:     100,
		},
		Checkout: config.CheckoutConfig{
			SupabaseURL:          function.URL,
			AnonKey:              "anon",
			SiteURL:              "https://arcanaoficial.com",
			SuccessPath:          "/payment/success",
			CancelPath:           "/payment/cancel",
			ProductBasic:         "prod_basic",
			ProductPremium:       "prod_premium",
			ProductPremiumAnnual: "prod_annual",
		},
	}
	for _, fn := range configure {
		fn(cfg)
	}

	st, err := sqlite.Open(filepath.Join(dir, "arcana.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := session.OpenBadger(filepath.Join(dir, "sessions"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	index, err := search.NewIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	searchService := search.NewService(index, nil, logger)
	t.Cleanup(func() { _ = searchService.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	content := service.NewContentService(st, searchService, logger)
	validator := validation.New()

	services := &Services{
		Store:    st,
		Sessions: sessions,
		Auth: auth.NewService(auth.Config{
			AdminEmails:  cfg.Auth.AdminEmails,
			PasswordHash: cfg.Auth.AdminPasswordHash,
			TokenTTL:     cfg.Auth.TokenTTL,
		}, tokens, sessions, logger),
		Content:    content,
		Dashboard:  service.NewDashboardService(st, logger),
		Workspaces: controller.NewRegistry(content, logger),
		Search:     searchService,
		Leads: leads.NewService(leads.New(leads.Config{
			ScriptURL:           cfg.Leads.ScriptURL,
			AssumeOpaqueSuccess: cfg.Leads.AssumeOpaqueSuccess,
		}, logger), validator, logger),
		Checkout: checkout.New(checkout.Config{
			SupabaseURL:          cfg.Checkout.SupabaseURL,
			AnonKey:              cfg.Checkout.AnonKey,
			SiteURL:              cfg.Checkout.SiteURL,
			SuccessPath:          cfg.Checkout.SuccessPath,
			CancelPath:           cfg.Checkout.CancelPath,
			ProductBasic:         cfg.Checkout.ProductBasic,
			ProductPremium:       cfg.Checkout.ProductPremium,
			ProductPremiumAnnual: cfg.Checkout.ProductPremiumAnnual,
		}, logger),
	}

	s := NewServer(cfg, services, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

// login signs the test admin in and returns the Authorization header.
func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/admin/login", map[string]any{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	env := decode[LoginResponse](t, resp)
	require.NotEmpty(t, env.Data.AccessToken)
	return "Authorization: Bearer " + env.Data.AccessToken
}

func TestNewServer_RegistersEveryOperation(t *testing.T) {
	ts := setupTestServer(t)
	doc := ts.API().OpenAPI()

	for _, path := range []string{
		"/health",
		"/api/v1/admin/login",
		"/api/v1/admin/content-library",
		"/api/v1/admin/rich-content/{id}",
		"/api/v1/admin/workspace/content-library/form/fields/{index}",
		"/api/v1/admin/workspace/rich-content/preview",
		"/api/v1/admin/users",
		"/api/v1/admin/search",
		"/api/v1/leads",
		"/api/v1/leads/early-access",
		"/api/v1/checkout",
	} {
		assert.Contains(t, doc.Paths, path)
	}

	schemas := doc.Components.Schemas.Map()
	assert.Contains(t, schemas, "Submission", "lead responses")
	assert.Contains(t, schemas, "Result", "search responses")
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, response.Version, env.Version)
	assert.Equal(t, statusHealthy, env.Data.Status)
	assert.Equal(t, statusHealthy, env.Data.Components["store"].Status)
	assert.Equal(t, statusHealthy, env.Data.Components["sessions"].Status)
	assert.Contains(t, env.Data.Components["search"].Message, search.EngineBleve)
}

func TestAdminLogin(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("wrong password", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/login", map[string]any{
			"email":    testAdminEmail,
			"password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)

		env := decode[any](t, resp)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
		assert.Equal(t, "Email o contraseña incorrectos", env.Error.Message)
	})

	t.Run("email outside the allow-list", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/login", map[string]any{
			"email":    "someone@example.com",
			"password": testAdminPassword,
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("session round trip", func(t *testing.T) {
		authz := ts.login(t)

		resp := ts.api.Get("/api/v1/admin/session", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		env := decode[SessionResponse](t, resp)
		assert.Equal(t, testAdminEmail, env.Data.Email)
		assert.NotEmpty(t, env.Data.SessionID)

		resp = ts.api.Post("/api/v1/admin/logout", authz)
		assert.Equal(t, http.StatusNoContent, resp.Code)

		resp = ts.api.Get("/api/v1/admin/session", authz)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := setupTestServer(t)

	paths := []string{
		"/api/v1/admin/content-library",
		"/api/v1/admin/rich-content",
		"/api/v1/admin/workspace/content-library",
		"/api/v1/admin/users",
		"/api/v1/admin/search?q=luna",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp := ts.api.Get(path)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			resp = ts.api.Get(path, "Authorization: Basic abc")
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			resp = ts.api.Get(path, "Authorization: Bearer not-a-token")
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
		})
	}
}

func TestContentLibraryCRUD(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)

	resp := ts.api.Post("/api/v1/admin/content-library", authz, "Content-Type: application/json",
		strings.NewReader(`{"section":"tarot","category":"mayores","order":3,`+
			`"data":{"title":"La Luna","numero":18},"tag":["noche"]}`))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	created := decode[domain.ContentLibraryItem](t, resp)
	require.NotZero(t, created.Data.ID)
	assert.Equal(t, "tarot", created.Data.Section)
	assert.Equal(t, []string{"noche"}, created.Data.Tag)
	require.NotNil(t, created.Data.Order)
	assert.Equal(t, 3, *created.Data.Order)
	assert.Equal(t, []string{"title", "numero"}, created.Data.Data.Keys())

	id := created.Data.ID
	itemPath := "/api/v1/admin/content-library/" + itoa(id)

	t.Run("get", func(t *testing.T) {
		resp := ts.api.Get(itemPath, authz)
		require.Equal(t, http.StatusOK, resp.Code)
		env := decode[domain.ContentLibraryItem](t, resp)
		v, ok := env.Data.Data.Get("numero")
		require.True(t, ok)
		assert.Equal(t, "18", v.String())
	})

	t.Run("update with editor rows", func(t *testing.T) {
		resp := ts.api.Put(itemPath, authz, map[string]any{
			"section":  "tarot",
			"category": "mayores",
			"fields": []map[string]any{
				{"key": "title", "value": "La Luna"},
				{"key": "activo", "value": "true"},
			},
			"existing_tags": []string{"noche"},
			"new_tag_input": "agua, noche",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		env := decode[domain.ContentLibraryItem](t, resp)
		assert.Equal(t, []string{"title", "activo"}, env.Data.Data.Keys())
		assert.Equal(t, []string{"noche", "agua", "noche"}, env.Data.Tag, "new tags are appended as typed")
		assert.Nil(t, env.Data.Order)
	})

	t.Run("sections and categories", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/admin/content-library/sections", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []string{"tarot"}, decode[ValuesResponse](t, resp).Data.Values)

		resp = ts.api.Get("/api/v1/admin/content-library/categories?section=tarot", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []string{"mayores"}, decode[ValuesResponse](t, resp).Data.Values)
	})

	t.Run("keys need a filter", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/admin/content-library/keys", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decode[ValuesResponse](t, resp).Data.Values)

		resp = ts.api.Get("/api/v1/admin/content-library/keys?section=tarot", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []string{"activo", "title"}, decode[ValuesResponse](t, resp).Data.Values)
	})

	t.Run("missing classification", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/content-library", authz, map[string]any{
			"data": map[string]any{"title": "x"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		env := decode[any](t, resp)
		assert.Equal(t, "VALIDATION", env.Error.Code)
	})

	t.Run("data must be an object", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/content-library", authz, map[string]any{
			"section":  "tarot",
			"category": "mayores",
			"data":     []int{1, 2},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, msgDataNotObject, decode[any](t, resp).Error.Message)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		resp := ts.api.Delete(itemPath, authz)
		assert.Equal(t, http.StatusNoContent, resp.Code)

		resp = ts.api.Delete(itemPath, authz)
		assert.Equal(t, http.StatusNoContent, resp.Code)

		resp = ts.api.Get(itemPath, authz)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.False(t, decode[any](t, resp).Success)
	})
}

func TestContentLibraryList_Paginates(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)
	ctx := context.Background()

	for i := range 25 {
		rec := domain.NewRecord()
		rec.Set("title", domain.NewString("carta "+itoa(int64(i))))
		section := "runas"
		if i%2 == 1 {
			section = "tarot"
		}
		_, err := ts.store.CreateContentLibrary(ctx, domain.ContentLibraryInput{
			Section:  section,
			Category: "cat",
			Data:     rec,
		})
		require.NoError(t, err)
	}

	resp := ts.api.Get("/api/v1/admin/content-library?page=2", authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decode[PageResponse[domain.ContentLibraryItem]](t, resp).Data
	assert.Equal(t, 25, page.TotalItems)
	assert.Equal(t, 2, page.Page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, []int{1, 2, 3}, page.Pages)

	resp = ts.api.Get("/api/v1/admin/content-library?section=tarot&page=9", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	page = decode[PageResponse[domain.ContentLibraryItem]](t, resp).Data
	assert.Equal(t, 12, page.TotalItems)
	assert.Equal(t, 2, page.Page.Page, "page is clamped")
	assert.Len(t, page.Items, 2)

	resp = ts.api.Get("/api/v1/admin/content-library?search=CARTA%2024", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	page = decode[PageResponse[domain.ContentLibraryItem]](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, "runas", page.Items[0].Section)
}

func TestRichContentCRUD(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)

	resp := ts.api.Post("/api/v1/admin/rich-content", authz, map[string]any{
		"section":  "blog",
		"category": "rituales",
		"html":     "<p>Ritual de <strong>luna llena</strong></p>",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[domain.RichContentItem](t, resp).Data
	require.NotNil(t, created.PlainText)
	assert.Equal(t, "Ritual de luna llena", *created.PlainText)

	t.Run("cleared editor markup is rejected", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/rich-content", authz, map[string]any{
			"section":  "blog",
			"category": "rituales",
			"html":     domain.EmptyParagraph,
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("list and sections", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/admin/rich-content?section=blog", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		page := decode[PageResponse[domain.RichContentItem]](t, resp).Data
		require.Len(t, page.Items, 1)
		assert.Equal(t, created.ID, page.Items[0].ID)

		resp = ts.api.Get("/api/v1/admin/rich-content/sections", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []string{"blog"}, decode[ValuesResponse](t, resp).Data.Values)
	})

	t.Run("update missing item", func(t *testing.T) {
		resp := ts.api.Put("/api/v1/admin/rich-content/9999", authz, map[string]any{
			"section":  "blog",
			"category": "rituales",
			"html":     "<p>x</p>",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("search finds it", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/admin/search?q=ritual", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		res := decode[search.Result](t, resp).Data
		require.NotEmpty(t, res.Hits)
		assert.Equal(t, search.DocumentID(domain.RichContent, created.ID), res.Hits[0].ID)
		assert.Equal(t, search.EngineBleve, res.Engine)
	})

	t.Run("delete removes it from search", func(t *testing.T) {
		resp := ts.api.Delete("/api/v1/admin/rich-content/"+itoa(created.ID), authz)
		require.Equal(t, http.StatusNoContent, resp.Code)

		resp = ts.api.Get("/api/v1/admin/search?q=ritual", authz)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decode[search.Result](t, resp).Data.Hits)
	})
}

func TestSearch_RequiresQuery(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)

	resp := ts.api.Get("/api/v1/admin/search?q=%20", authz)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "q es requerido", decode[any](t, resp).Error.Message)
}

func TestLibraryWorkspace_CreateFlow(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)
	base := "/api/v1/admin/workspace/content-library"

	state := func(resp *httptest.ResponseRecorder) controller.LibraryState {
		t.Helper()
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		return decode[controller.LibraryState](t, resp).Data
	}

	st := state(ts.api.Get(base, authz))
	assert.Empty(t, st.Items)
	assert.Equal(t, controller.ModalIdle, st.Modal)

	st = state(ts.api.Post(base+"/modal/create", authz))
	assert.Equal(t, controller.ModalCreate, st.Modal)

	st = state(ts.api.Post(base+"/save", authz))
	assert.Equal(t, controller.ModalCreate, st.Modal, "modal stays open on validation failure")
	assert.NotEmpty(t, st.FormError)

	state(ts.api.Put(base+"/form/section", authz, map[string]any{"section": "tarot"}))
	state(ts.api.Put(base+"/form/category", authz, map[string]any{"category": "mayores"}))
	state(ts.api.Put(base+"/form/order", authz, map[string]any{"order": 2}))
	st = state(ts.api.Post(base+"/form/fields", authz))
	require.Len(t, st.Form.Fields, 2, "create starts with one empty row")
	st = state(ts.api.Delete(base+"/form/fields/1", authz))
	require.Len(t, st.Form.Fields, 1)
	st = state(ts.api.Put(base+"/form/fields/0", authz, map[string]any{"key": "title", "value": "El Sol"}))
	require.Len(t, st.Form.Fields, 1)
	assert.Equal(t, "title", st.Form.Fields[0].Key)
	state(ts.api.Put(base+"/form/new-tags", authz, map[string]any{"input": "luz, dia"}))

	st = state(ts.api.Post(base+"/save", authz))
	assert.Equal(t, controller.ModalIdle, st.Modal)
	assert.Empty(t, st.FormError)
	require.Len(t, st.Items, 1)
	item := st.Items[0]
	assert.Equal(t, []string{"luz", "dia"}, item.Tag)
	require.NotNil(t, item.Order)
	assert.Equal(t, 2, *item.Order)

	t.Run("stored keys are locked", func(t *testing.T) {
		st := state(ts.api.Post(base+"/modal/edit/"+itoa(item.ID), authz))
		assert.Equal(t, controller.ModalEdit, st.Modal)

		resp := ts.api.Put(base+"/form/fields/0", authz, map[string]any{"key": "nombre"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, controller.MsgKeyLocked, decode[any](t, resp).Error.Message)

		state(ts.api.Delete(base+"/modal", authz))
	})

	t.Run("edit of an unloaded row fails", func(t *testing.T) {
		resp := ts.api.Post(base+"/modal/edit/9999", authz)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("filters", func(t *testing.T) {
		st := state(ts.api.Put(base+"/section", authz, map[string]any{"section": "runas"}))
		assert.Empty(t, st.Items)
		assert.Equal(t, "runas", st.Section)

		st = state(ts.api.Delete(base+"/filters", authz))
		assert.Len(t, st.Items, 1)
		assert.Empty(t, st.Section)
	})

	t.Run("delete", func(t *testing.T) {
		st := state(ts.api.Post(base+"/delete/"+itoa(item.ID), authz))
		assert.Equal(t, controller.ModalDeleteConfirm, st.Modal)

		st = state(ts.api.Post(base+"/delete", authz))
		assert.Equal(t, controller.ModalIdle, st.Modal)
		assert.Empty(t, st.Items)
	})
}

func TestRichWorkspace_Preview(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)
	base := "/api/v1/admin/workspace/rich-content"

	resp := ts.api.Post(base+"/preview", authz, map[string]any{"html": "<h1>Hola</h1>"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	st := decode[controller.RichState](t, resp).Data
	assert.Equal(t, controller.ModalPreview, st.Modal)
	assert.Equal(t, "<h1>Hola</h1>", st.Preview)

	resp = ts.api.Delete(base+"/preview", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	st = decode[controller.RichState](t, resp).Data
	assert.Equal(t, controller.ModalIdle, st.Modal)
	assert.Empty(t, st.Preview)
}

func TestWorkspaces_ArePerSession(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.login(t)
	second := ts.login(t)
	base := "/api/v1/admin/workspace/content-library"

	resp := ts.api.Put(base+"/search", first, map[string]any{"term": "sol"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "sol", decode[controller.LibraryState](t, resp).Data.Search)

	resp = ts.api.Get(base, second)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[controller.LibraryState](t, resp).Data.Search)
	assert.Equal(t, 2, ts.services.Workspaces.Len())

	resp = ts.api.Post("/api/v1/admin/logout", first)
	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, 1, ts.services.Workspaces.Len())
}

func TestSubscriberDashboard(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, ts.store.SaveProfile(ctx, domain.Profile{ID: "p1", UserID: "u1", FirstName: "Luna", LastName: "Rivas", Arcana: true, CreatedAt: now}))
	require.NoError(t, ts.store.SaveProfile(ctx, domain.Profile{ID: "p2", UserID: "u2", FirstName: "Sol", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, ts.store.SaveSubscription(ctx, domain.Subscription{UserID: "u1", Tier: "premium", Status: domain.SubscriptionActive, Platform: "stripe"}))

	resp := ts.api.Get("/api/v1/admin/users?status=active", authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decode[service.SubscriberPage](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].UserID)
	require.NotNil(t, page.Items[0].Subscription)
	assert.Equal(t, domain.SubscriberStats{Total: 2, WithSubscription: 1, ArcanaMembers: 1}, page.Stats)

	resp = ts.api.Get("/api/v1/admin/users?arcana=no", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	page = decode[service.SubscriberPage](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u2", page.Items[0].UserID)

	resp = ts.api.Get("/api/v1/admin/users?status=expired", authz)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestLeads(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		ts := setupTestServer(t)
		resp := ts.api.Post("/api/v1/leads", map[string]any{
			"name":     "Luna Rivas",
			"email":    "luna@example.com",
			"whatsapp": "+5491155551234",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Equal(t, domain.LeadAccepted, decode[leads.Submission](t, resp).Data.Outcome)
	})

	t.Run("duplicate email", func(t *testing.T) {
		ts := setupTestServer(t, func(cfg *config.Config) {
			cfg.Leads.ScriptURL = newUpstream(t, http.StatusOK, "DUPLICATE_EMAIL").URL
		})
		resp := ts.api.Post("/api/v1/leads", map[string]any{
			"name":     "Luna Rivas",
			"email":    "luna@example.com",
			"whatsapp": "+5491155551234",
		})
		assert.Equal(t, http.StatusConflict, resp.Code)
		env := decode[any](t, resp)
		assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
		assert.Equal(t, leads.MsgDuplicateEmail, env.Error.Message)
	})

	t.Run("invalid form", func(t *testing.T) {
		ts := setupTestServer(t)
		resp := ts.api.Post("/api/v1/leads", map[string]any{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION", decode[any](t, resp).Error.Code)
	})

	t.Run("script not configured", func(t *testing.T) {
		ts := setupTestServer(t, func(cfg *config.Config) { cfg.Leads.ScriptURL = "" })
		resp := ts.api.Post("/api/v1/leads/early-access", map[string]any{"email": "luna@gmail.com"})
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})

	t.Run("early access", func(t *testing.T) {
		ts := setupTestServer(t)
		resp := ts.api.Post("/api/v1/leads/early-access", map[string]any{"email": "luna@gmail.com"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	})
}

func TestCheckout(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/checkout/plans")
	require.Equal(t, http.StatusOK, resp.Code)
	plans := decode[map[string][]domain.Plan](t, resp).Data
	assert.Len(t, plans["plans"], 3)

	resp = ts.api.Post("/api/v1/checkout", map[string]any{"plan": checkout.PlanPremium, "user_id": "u1"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	sess := decode[checkout.Session](t, resp).Data
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", sess.URL)
	assert.Equal(t, "prod_premium", sess.Plan.StripeProductID)
	assert.NotEmpty(t, sess.IdempotencyKey)

	resp = ts.api.Post("/api/v1/checkout", map[string]any{"plan": "gold", "user_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLoginRateLimit(t *testing.T) {
	ts := setupTestServer(t, func(cfg *config.Config) {
		cfg.Auth.LoginRate = 0.001
		cfg.Auth.LoginBurst = 2
	})

	body := map[string]any{"email": testAdminEmail, "password": "nope"}
	for range 2 {
		resp := ts.api.Post("/api/v1/admin/login", body)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/v1/admin/login", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	env := decode[any](t, resp)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	// Other routes are not limited.
	resp = ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
