package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"origen-dotacion/models"
	"origen-dotacion/utils"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog status values
const (
	CatalogStatusOK    = "ok"
	CatalogStatusStale = "stale"
)

// Default limits of the derived views
const (
	FeaturedLimit           = 12
	FeaturedSelectionLimit  = 8
	SelectionLimit          = 10
	SearchCategoryLimit     = 10
	SearchProductLimit      = 16
	allCategoryID           = "virtual-todos"
	allCategoryName         = "Todos"
	allCategoryDescription  = "Ver todo el catálogo"
	allCategoryIcon         = "CategoryOutlined"
	allCategoryOrder        = -9999
	categorySectionIDPrefix = "cat-"
)

// CatalogStore holds the catalog snapshot shared by every request.
// The snapshot is replaced wholesale; readers never see a partial catalog.
type CatalogStore struct {
	snapshot atomic.Pointer[models.Catalog]
	source   CatalogSource
	now      func() time.Time
	logger   *zap.SugaredLogger

	statusMu  sync.RWMutex
	status    string
	lastError error
}

// NewCatalogStore creates a store seeded with initial. source may be nil,
// in which case Refresh does nothing.
func NewCatalogStore(initial *models.Catalog, source CatalogSource, logger *zap.SugaredLogger) *CatalogStore {
	s := &CatalogStore{
		source: source,
		now:    time.Now,
		logger: logger,
		status: CatalogStatusOK,
	}
	if initial == nil {
		initial = &models.Catalog{}
	}
	s.snapshot.Store(NormalizeCatalog(initial, s.now()))
	return s
}

var _ CatalogStoreInterface = (*CatalogStore)(nil)

// Refresh replaces the snapshot with a fresh copy from the source.
// A non-success status leaves the snapshot untouched and is not reported;
// transport and decode failures are returned.
func (s *CatalogStore) Refresh(ctx context.Context) error {
	if s.source == nil {
		return nil
	}

	fetched, err := s.source.Fetch(ctx)
	if err != nil {
		s.markStale(err)
		if errors.Is(err, ErrCatalogStatus) {
			s.logger.Warnf("⚠️  CatalogStore.Refresh: Keeping current snapshot: %v", err)
			return nil
		}
		s.logger.Errorf("❌ CatalogStore.Refresh: %v", err)
		return err
	}

	next := NormalizeCatalog(fetched, s.now())
	s.snapshot.Store(next)

	s.statusMu.Lock()
	s.status = CatalogStatusOK
	s.lastError = nil
	s.statusMu.Unlock()

	s.logger.Infof("✓ CatalogStore.Refresh: Snapshot replaced (updatedAt=%s, %d products)", next.UpdatedAt, len(next.Products))
	return nil
}

// Watch refreshes the snapshot every interval until ctx is done.
// Failures are logged by Refresh and the previous snapshot keeps serving.
func (s *CatalogStore) Watch(ctx context.Context, interval time.Duration) {
	if s.source == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

func (s *CatalogStore) markStale(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status = CatalogStatusStale
	s.lastError = err
}

// Status returns "ok" or "stale" (the last refresh failed)
func (s *CatalogStore) Status() string {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// LastError returns the error of the last failed refresh, if the store is stale
func (s *CatalogStore) LastError() error {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.lastError
}

// Snapshot returns the raw current catalog. Callers must not mutate it.
func (s *CatalogStore) Snapshot() *models.Catalog {
	return s.snapshot.Load()
}

// Categories returns the categories sorted by order, missing order last
func (s *CatalogStore) Categories() []models.Category {
	return sortCategories(s.snapshot.Load().Categories)
}

// Banners returns the banners sorted by order, missing order last
func (s *CatalogStore) Banners() []models.Banner {
	out := slices.Clone(s.snapshot.Load().Banners)
	slices.SortStableFunc(out, func(a, b models.Banner) int {
		return cmp.Compare(a.SortOrder(), b.SortOrder())
	})
	return nonNil(out)
}

// Products returns the products in catalog order
func (s *CatalogStore) Products() []models.Product {
	return nonNil(slices.Clone(s.snapshot.Load().Products))
}

// ProductBySlug finds a product by exact slug
func (s *CatalogStore) ProductBySlug(slug string) (models.Product, bool) {
	for _, p := range s.snapshot.Load().Products {
		if p.Slug == slug {
			return p, true
		}
	}
	return models.Product{}, false
}

// ProductByID finds a product by id
func (s *CatalogStore) ProductByID(id string) (models.Product, bool) {
	for _, p := range s.snapshot.Load().Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// CategoryBySlug finds a category by exact slug, including the synthetic one
func (s *CatalogStore) CategoryBySlug(slug string) (models.Category, bool) {
	for _, c := range WithAllCategory(s.Categories()) {
		if c.Slug == slug {
			return c, true
		}
	}
	return models.Category{}, false
}

// AllCategory returns the synthetic aggregate category
func AllCategory() models.Category {
	order := float64(allCategoryOrder)
	return models.Category{
		ID:          allCategoryID,
		Slug:        models.AllCategorySlug,
		Name:        allCategoryName,
		Description: allCategoryDescription,
		Icon:        allCategoryIcon,
		Order:       &order,
	}
}

// WithAllCategory prepends the synthetic "todos" category unless a category
// with that slug already exists. The input is not modified.
func WithAllCategory(categories []models.Category) []models.Category {
	for _, c := range categories {
		if c.Slug == models.AllCategorySlug {
			return categories
		}
	}
	out := make([]models.Category, 0, len(categories)+1)
	out = append(out, AllCategory())
	return append(out, categories...)
}

// CategoryTree returns the root categories with their sorted children.
// Children whose parent does not exist are not part of the tree.
func (s *CatalogStore) CategoryTree(includeAll bool) []models.CategoryNode {
	categories := s.Categories()
	if includeAll {
		categories = WithAllCategory(categories)
	}
	parents, children := splitTree(categories)

	nodes := make([]models.CategoryNode, 0, len(parents))
	for _, p := range parents {
		nodes = append(nodes, models.CategoryNode{
			Category: p,
			Children: nonNil(children[p.Slug]),
		})
	}
	return nodes
}

// CategoryPage assembles the category screen for slug.
// "todos" yields one section per real root category.
func (s *CatalogStore) CategoryPage(slug string) models.CategoryPage {
	categories := WithAllCategory(s.Categories())
	products := s.snapshot.Load().Products
	parents, children := splitTree(categories)

	page := models.CategoryPage{
		Slug:     slug,
		Children: []models.Category{},
		Products: []models.Product{},
	}

	if utils.NormalizeText(slug) == models.AllCategorySlug {
		all := AllCategory()
		page.Category = &all
		page.Sections = []models.CategorySection{}
		for _, parent := range parents {
			if parent.Slug == models.AllCategorySlug {
				continue
			}
			kids := nonNil(children[parent.Slug])
			page.Sections = append(page.Sections, models.CategorySection{
				Parent:   parent,
				Children: kids,
				Products: filterProducts(products, slugSet(parent, kids)),
				AnchorID: categorySectionIDPrefix + parent.Slug,
			})
		}
		return page
	}

	idx := slices.IndexFunc(categories, func(c models.Category) bool { return c.Slug == slug })
	if idx < 0 {
		return page
	}
	current := categories[idx]
	page.Category = &current
	page.Children = nonNil(children[current.Slug])
	page.Products = filterProducts(products, slugSet(current, page.Children))
	return page
}

// Featured returns up to limit featured products in catalog order
func (s *CatalogStore) Featured(limit int) []models.Product {
	if limit <= 0 {
		limit = FeaturedLimit
	}
	out := []models.Product{}
	for _, p := range s.snapshot.Load().Products {
		if !p.Featured {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// FeaturedInSelection returns featured products tagged with slug ("todos" means any)
func (s *CatalogStore) FeaturedInSelection(slug string, limit int) []models.Product {
	if limit <= 0 {
		limit = FeaturedSelectionLimit
	}
	out := []models.Product{}
	for _, p := range s.snapshot.Load().Products {
		if !p.Featured {
			continue
		}
		if slug != models.AllCategorySlug && !slices.Contains(p.CategorySlugs, slug) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// ProductsInSelection returns the products directly tagged with slug
// ("todos" means all), featured first and then by name.
func (s *CatalogStore) ProductsInSelection(slug string, limit int) []models.Product {
	if limit <= 0 {
		limit = SelectionLimit
	}

	var list []models.Product
	for _, p := range s.snapshot.Load().Products {
		if slug == models.AllCategorySlug || slices.Contains(p.CategorySlugs, slug) {
			list = append(list, p)
		}
	}

	col := collate.New(language.Spanish)
	slices.SortStableFunc(list, func(a, b models.Product) int {
		if a.Featured != b.Featured {
			if a.Featured {
				return -1
			}
			return 1
		}
		return col.CompareString(a.Name, b.Name)
	})

	if len(list) > limit {
		list = list[:limit]
	}
	return nonNil(list)
}

// Search matches query against categories and products, ignoring case and accents.
// An empty query matches nothing.
func (s *CatalogStore) Search(query string) models.SearchResult {
	result := models.SearchResult{
		Query:      query,
		Categories: []models.Category{},
		Products:   []models.Product{},
	}

	q := utils.NormalizeText(query)
	if q == "" {
		return result
	}

	categories := WithAllCategory(s.Categories())
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, ok := names[c.Slug]; !ok {
			names[c.Slug] = c.Name
		}
	}

	for _, c := range categories {
		if len(result.Categories) == SearchCategoryLimit {
			break
		}
		if containsNormalized(q, c.Name, c.Description, c.Slug) {
			result.Categories = append(result.Categories, c)
		}
	}

	for _, p := range s.snapshot.Load().Products {
		if len(result.Products) == SearchProductLimit {
			break
		}
		if productMatches(p, q, names) {
			result.Products = append(result.Products, p)
		}
	}
	return result
}

func productMatches(p models.Product, q string, categoryNames map[string]string) bool {
	fields := []string{p.Name, p.Ref, p.Description}
	fields = append(fields, p.Tags...)
	fields = append(fields, p.CategorySlugs...)
	for _, slug := range p.CategorySlugs {
		if name := categoryNames[slug]; name != "" {
			fields = append(fields, name)
		}
	}
	return containsNormalized(q, fields...)
}

func containsNormalized(q string, fields ...string) bool {
	return strings.Contains(utils.NormalizeText(strings.Join(fields, " ")), q)
}

func sortCategories(in []models.Category) []models.Category {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b models.Category) int {
		return cmp.Compare(a.SortOrder(), b.SortOrder())
	})
	return nonNil(out)
}

// splitTree separates sorted categories into roots and children keyed by parent slug.
// Children of missing parents are dropped.
func splitTree(sorted []models.Category) ([]models.Category, map[string][]models.Category) {
	parents := []models.Category{}
	known := make(map[string]bool)
	for _, c := range sorted {
		if c.IsRoot() {
			parents = append(parents, c)
			known[c.Slug] = true
		}
	}

	children := make(map[string][]models.Category)
	for _, c := range sorted {
		if c.IsRoot() || !known[*c.ParentSlug] {
			continue
		}
		children[*c.ParentSlug] = append(children[*c.ParentSlug], c)
	}
	return parents, children
}

func slugSet(parent models.Category, children []models.Category) map[string]bool {
	set := map[string]bool{parent.Slug: true}
	for _, c := range children {
		set[c.Slug] = true
	}
	return set
}

func filterProducts(products []models.Product, slugs map[string]bool) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if p.InAnyCategory(slugs) {
			out = append(out, p)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
