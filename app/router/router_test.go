package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"origen-dotacion/app/controller"
	"origen-dotacion/models"
	"origen-dotacion/repository"
	"origen-dotacion/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	storage *repository.MemoryStorage
	session string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop().Sugar()

	catalog := service.NewCatalogStore(service.DefaultCatalog(), nil, logger)
	storage := repository.NewMemoryStorage()
	sessions := service.NewCartSessions(storage, logger)
	optimizer := service.NewImageOptimizer(t.TempDir(), "http://localhost:8080", nil, logger)
	brochure := service.NewBrochureService(catalog, "http://localhost:8080", "", "3001234567", "", logger)

	controllers := &Controllers{
		Catalog:  controller.NewCatalogController(catalog, time.Second, logger),
		Image:    controller.NewImageController(catalog, optimizer, logger),
		Warmup:   controller.NewImageWarmupController(service.NewImageWarmupService(catalog, optimizer, logger), logger),
		Brochure: controller.NewBrochureController(brochure, logger),
		Cart:     controller.NewCartController(sessions, catalog, logger),
		Quote:    controller.NewQuoteController(sessions, "+57 300 123 4567", "", logger),
	}
	return &testServer{
		handler: SetupRoutes(controllers, "", logger),
		storage: storage,
		session: uuid.NewString(),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if s.session != "" {
		req.Header.Set(controller.CartSessionHeader, s.session)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/ping", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cat := decode[controller.CatalogResponse](t, rec)
	assert.Equal(t, "ok", cat.Status)
	assert.Len(t, cat.Products, 14)

	rec = s.do(t, http.MethodGet, "/catalog/categories?all=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]models.Category](t, rec)
	require.Len(t, cats, 7)
	assert.Equal(t, "todos", cats[0].Slug)

	rec = s.do(t, http.MethodGet, "/catalog/categories?tree=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.CategoryNode](t, rec), 6)

	rec = s.do(t, http.MethodGet, "/catalog/banners", "")
	require.Equal(t, http.StatusOK, rec.Code)
	banners := decode[[]models.Banner](t, rec)
	require.Len(t, banners, 3)
	assert.Equal(t, "b1", banners[0].ID)
	assert.Equal(t, "b3", banners[1].ID)

	rec = s.do(t, http.MethodGet, "/catalog/featured?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/catalog/featured?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryPageRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/catalog/categories/antifluido", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.CategoryPage](t, rec)
	assert.Equal(t, "Antifluido", page.Category.Name)
	assert.Len(t, page.Products, 3)

	rec = s.do(t, http.MethodGet, "/catalog/categories/todos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[models.CategoryPage](t, rec)
	assert.Len(t, page.Sections, 6)
	assert.Equal(t, "cat-industrial", page.Sections[0].AnchorID)

	rec = s.do(t, http.MethodGet, "/catalog/categories/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductAndSearchRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/catalog/products/bata-antifluido-clasica", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ORI-AF-001", decode[models.Product](t, rec).Ref)

	rec = s.do(t, http.MethodGet, "/catalog/products/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/catalog/search?q=enfermeria", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.SearchResult](t, rec)
	assert.NotEmpty(t, res.Categories)
	assert.Len(t, res.Products, 2)

	rec = s.do(t, http.MethodGet, "/catalog/selection/industrial", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sel := decode[controller.SelectionResponse](t, rec)
	require.Len(t, sel.Products, 3)
	assert.Equal(t, "overol-industrial-ripstop", sel.Products[0].Slug)
}

func TestRefreshWithoutSource(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/admin/catalog/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	rec = s.do(t, http.MethodGet, "/admin/catalog/refresh", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)

	rec = s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"overol-industrial-ripstop","size":"M","qty":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"overol-industrial-ripstop","size":" M ","qty":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decode[models.CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Qty)
	assert.Equal(t, 5, cart.TotalItems)
	assert.Equal(t, "M", cart.Items[0].Size)
	assert.NotEmpty(t, cart.Items[0].ImageURL)
	lineID := cart.Items[0].LineID

	raw, ok, err := s.storage.Get(t.Context(), service.StorageKey(s.session))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, lineID)

	rec = s.do(t, http.MethodPatch, "/cart/items/"+lineID, `{"qty":7,"note":"  Logo  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decode[models.CartResponse](t, rec)
	assert.Equal(t, 7, cart.Items[0].Qty)
	assert.Equal(t, "Logo", cart.Items[0].Note)

	rec = s.do(t, http.MethodPatch, "/cart/items/unknown", `{"qty":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/cart/items/"+lineID, `{"qty":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)

	s.do(t, http.MethodPost, "/cart/items", `{"productId":"p-af-003"}`)
	rec = s.do(t, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[models.CartResponse](t, rec).TotalItems)
}

func TestCartAddDefaultsFirstOption(t *testing.T) {
	s := newTestServer(t)
	product := service.DefaultCatalog().Products[0]

	rec := s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"`+product.Slug+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	line := decode[models.CartResponse](t, rec).Items[0]
	assert.Equal(t, product.Sizes[0], line.Size)
	assert.Equal(t, product.Colors[0], line.Color)
	assert.Equal(t, 1, line.Qty)
}

func TestCartAddErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/cart/items", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRemove(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"gorro-antifluido-clinico"}`)
	lineID := decode[models.CartResponse](t, rec).Items[0].LineID

	rec = s.do(t, http.MethodDelete, "/cart/items/"+lineID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)

	rec = s.do(t, http.MethodDelete, "/cart/items/"+lineID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"gorro-antifluido-clinico"}`)

	s.session = uuid.NewString()
	rec := s.do(t, http.MethodGet, "/cart", "")
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)
}

func TestCartIssuesSessionCookieOnAdd(t *testing.T) {
	s := newTestServer(t)
	s.session = ""

	rec := s.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)

	rec = s.do(t, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = s.do(t, http.MethodPost, "/quote", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"gorro-antifluido-clinico"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, controller.CartSessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	_, err := uuid.Parse(cookies[0].Value)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.CartResponse](t, rec).TotalItems)
}

func TestCartIgnoresInvalidSession(t *testing.T) {
	s := newTestServer(t)
	s.session = "not-a-uuid"

	rec := s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"gorro-antifluido-clinico"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "not-a-uuid", cookies[0].Value)

	_, ok, err := s.storage.Get(t.Context(), service.StorageKey("not-a-uuid"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.storage.Get(t.Context(), service.StorageKey(cookies[0].Value))
	require.NoError(t, err)
	assert.True(t, ok)

	rec = s.do(t, http.MethodGet, "/cart", "")
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)

	rec = s.do(t, http.MethodPatch, "/cart/items/whatever", `{"qty":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartSeesClearFromAnotherProcess(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"overol-industrial-ripstop","size":"M"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cli := service.NewCartStore(s.storage, service.StorageKey(s.session), zap.NewNop().Sugar())
	cli.Hydrate(t.Context())
	require.NoError(t, cli.Clear(t.Context()))

	rec = s.do(t, http.MethodGet, "/cart", "")
	assert.Empty(t, decode[models.CartResponse](t, rec).Items)

	rec = s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"gorro-antifluido-clinico"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[models.CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "gorro-antifluido-clinico", cart.Items[0].ProductSlug)
}

func TestQuoteRoute(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/cart/items", `{"productSlug":"gorro-antifluido-clinico","size":"Única","color":"Azul","qty":4}`)

	rec := s.do(t, http.MethodPost, "/quote", `{"company":"Acme","phone":"300"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	quote := decode[models.QuoteResponse](t, rec)
	assert.Contains(t, quote.Message, "1. Gorro antifluido clínico (ORI-AF-003) — x4 • Talla: Única • Color: Azul")
	assert.Contains(t, quote.Message, "Empresa: Acme")
	assert.NotContains(t, quote.Message, "Contacto:")
	assert.True(t, strings.HasPrefix(quote.WhatsAppHref, "https://wa.me/573001234567?text="))
	assert.True(t, strings.HasPrefix(quote.MailtoHref, "mailto:ventas@origen.com?subject="))
	assert.Equal(t, 1, quote.ItemCount)
	assert.Equal(t, 4, quote.TotalItems)

	rec = s.do(t, http.MethodPost, "/quote", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactLinkRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/contact/whatsapp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decode[map[string]string](t, rec)["href"], "https://wa.me/573001234567?text=Hola%20"))
}

func TestBrochureRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/catalog/brochure/render?category=enfermeria", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Filipina enfermería premium")

	rec = s.do(t, http.MethodGet, "/catalog/brochure?category=enfermeria&format=html", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/catalog/brochure?format=doc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/catalog/brochure/render?category=nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductImageNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/catalog/products/nope/image", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/catalog/products/gorro-antifluido-clinico/image?index=99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/catalog/products/gorro-antifluido-clinico/image?index=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
