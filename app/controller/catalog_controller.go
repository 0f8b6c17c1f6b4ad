package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"origen-dotacion/models"
	"origen-dotacion/service"

	"go.uber.org/zap"
)

// CatalogResponse is returned by GET /catalog
type CatalogResponse struct {
	*models.Catalog
	Status    string `json:"status"`
	LastError string `json:"lastError,omitempty"`
}

// SelectionResponse is returned by GET /catalog/selection/{slug}
type SelectionResponse struct {
	Slug     string           `json:"slug"`
	Products []models.Product `json:"products"`
	Featured []models.Product `json:"featured"`
}

// CatalogController handles HTTP requests for the catalog
type CatalogController struct {
	catalog        service.CatalogStoreInterface
	refreshTimeout time.Duration
	logger         *zap.SugaredLogger
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalog service.CatalogStoreInterface, refreshTimeout time.Duration, logger *zap.SugaredLogger) *CatalogController {
	return &CatalogController{
		catalog:        catalog,
		refreshTimeout: refreshTimeout,
		logger:         logger,
	}
}

// GetCatalog handles GET /catalog
func (c *CatalogController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetCatalog", http.MethodGet) {
		return
	}

	resp := CatalogResponse{
		Catalog: c.catalog.Snapshot(),
		Status:  c.catalog.Status(),
	}
	if err := c.catalog.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp, c.logger, "GetCatalog")
}

// GetCategories handles GET /catalog/categories?all=1&tree=1
// all prepends the "Todos" category; tree nests children under their parent.
func (c *CatalogController) GetCategories(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetCategories", http.MethodGet) {
		return
	}

	includeAll := queryBool(r, "all")
	if queryBool(r, "tree") {
		writeJSON(w, http.StatusOK, c.catalog.CategoryTree(includeAll), c.logger, "GetCategories")
		return
	}

	categories := c.catalog.Categories()
	if includeAll {
		categories = service.WithAllCategory(categories)
	}
	writeJSON(w, http.StatusOK, categories, c.logger, "GetCategories")
}

// GetCategoryPage handles GET /catalog/categories/{slug}
func (c *CatalogController) GetCategoryPage(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetCategoryPage", http.MethodGet) {
		return
	}

	slug := strings.TrimSpace(r.PathValue("slug"))
	page := c.catalog.CategoryPage(slug)
	if page.Category == nil {
		c.logger.Infof("⚠️  GetCategoryPage: Category not found: %s", slug)
		http.Error(w, fmt.Sprintf("Category not found: %s", slug), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, page, c.logger, "GetCategoryPage")
}

// GetProduct handles GET /catalog/products/{slug}
func (c *CatalogController) GetProduct(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetProduct", http.MethodGet) {
		return
	}

	slug := r.PathValue("slug")
	product, ok := c.catalog.ProductBySlug(slug)
	if !ok {
		c.logger.Infof("⚠️  GetProduct: Product not found: %s", slug)
		http.Error(w, fmt.Sprintf("Product not found: %s", slug), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product, c.logger, "GetProduct")
}

// GetFeatured handles GET /catalog/featured?limit=12
func (c *CatalogController) GetFeatured(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetFeatured", http.MethodGet) {
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, c.catalog.Featured(limit), c.logger, "GetFeatured")
}

// GetSelection handles GET /catalog/selection/{slug}
// Used by the mega menu: products of one category plus its featured ones.
func (c *CatalogController) GetSelection(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetSelection", http.MethodGet) {
		return
	}

	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		slug = models.AllCategorySlug
	}
	writeJSON(w, http.StatusOK, SelectionResponse{
		Slug:     slug,
		Products: c.catalog.ProductsInSelection(slug, 0),
		Featured: c.catalog.FeaturedInSelection(slug, 0),
	}, c.logger, "GetSelection")
}

// Search handles GET /catalog/search?q=
func (c *CatalogController) Search(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "Search", http.MethodGet) {
		return
	}

	q := r.URL.Query().Get("q")
	result := c.catalog.Search(q)
	c.logger.Debugf("🔎 Search: q=%q categories=%d products=%d", q, len(result.Categories), len(result.Products))
	writeJSON(w, http.StatusOK, result, c.logger, "Search")
}

// GetBanners handles GET /catalog/banners
func (c *CatalogController) GetBanners(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetBanners", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, c.catalog.Banners(), c.logger, "GetBanners")
}

// Refresh handles POST /admin/catalog/refresh
func (c *CatalogController) Refresh(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "Refresh", http.MethodPost) {
		return
	}

	ctx := r.Context()
	if c.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.refreshTimeout)
		defer cancel()
	}

	if err := c.catalog.Refresh(ctx); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		http.Error(w, fmt.Sprintf("Failed to refresh catalog: %v", err), status)
		return
	}

	snap := c.catalog.Snapshot()
	resp := map[string]any{
		"status":     c.catalog.Status(),
		"updatedAt":  snap.UpdatedAt,
		"categories": len(snap.Categories),
		"products":   len(snap.Products),
		"banners":    len(snap.Banners),
	}
	if err := c.catalog.LastError(); err != nil {
		resp["lastError"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp, c.logger, "Refresh")
}

func queryBool(r *http.Request, key string) bool {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	return v == "1" || v == "true" || v == "yes"
}

func queryLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return limit, nil
}
