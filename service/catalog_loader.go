package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"origen-dotacion/models"

	"go.uber.org/zap"
)

// ErrCatalogStatus is returned by a source when the endpoint answers with a non-2xx status
var ErrCatalogStatus = errors.New("catalog endpoint returned non-success status")

//go:embed data/default_catalog.json
var defaultCatalogJSON []byte

// DefaultCatalog returns a fresh copy of the bundled catalog
func DefaultCatalog() *models.Catalog {
	var c models.Catalog
	if err := json.Unmarshal(defaultCatalogJSON, &c); err != nil {
		// the bundled file is part of the binary; failing here is a build problem
		panic(fmt.Sprintf("invalid bundled catalog: %v", err))
	}
	return NormalizeCatalog(&c, time.Now())
}

// NormalizeCatalog defaults missing arrays to empty and a missing updatedAt to now
func NormalizeCatalog(c *models.Catalog, now time.Time) *models.Catalog {
	out := models.Catalog{
		UpdatedAt:  c.UpdatedAt,
		Categories: c.Categories,
		Products:   c.Products,
		Banners:    c.Banners,
	}
	if out.UpdatedAt == "" {
		out.UpdatedAt = now.UTC().Format(time.RFC3339)
	}
	if out.Categories == nil {
		out.Categories = []models.Category{}
	}
	if out.Products == nil {
		out.Products = []models.Product{}
	}
	if out.Banners == nil {
		out.Banners = []models.Banner{}
	}
	return &out
}

// decodeCatalog parses a catalog document. Array fields holding something
// other than an array are treated as missing.
func decodeCatalog(data []byte) (*models.Catalog, error) {
	var raw struct {
		UpdatedAt  string          `json:"updatedAt"`
		Categories json.RawMessage `json:"categories"`
		Products   json.RawMessage `json:"products"`
		Banners    json.RawMessage `json:"banners"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := &models.Catalog{UpdatedAt: raw.UpdatedAt}
	if err := decodeArray(raw.Categories, &c.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if err := decodeArray(raw.Products, &c.Products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	if err := decodeArray(raw.Banners, &c.Banners); err != nil {
		return nil, fmt.Errorf("failed to decode banners: %w", err)
	}
	return c, nil
}

func decodeArray[T any](raw json.RawMessage, dst *[]T) error {
	if len(raw) == 0 || raw[0] != '[' {
		*dst = nil
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// HTTPCatalogSource fetches the catalog document from a URL
type HTTPCatalogSource struct {
	url    string
	client *http.Client
}

// NewHTTPCatalogSource creates a source for url. A nil client uses http.DefaultClient.
func NewHTTPCatalogSource(url string, client *http.Client) *HTTPCatalogSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCatalogSource{url: url, client: client}
}

var _ CatalogSource = (*HTTPCatalogSource)(nil)

// Fetch downloads and decodes the catalog. No caching happens here.
func (s *HTTPCatalogSource) Fetch(ctx context.Context) (*models.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrCatalogStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	return decodeCatalog(data)
}

// String names the source in logs
func (s *HTTPCatalogSource) String() string {
	return s.url
}

// CatalogLoader produces the catalog the application starts with: the source's
// catalog when it can be fetched, the bundled one otherwise. Periodic
// revalidation is CatalogStore.Watch's job.
type CatalogLoader struct {
	source CatalogSource
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewCatalogLoader creates a loader. source may be nil (bundled catalog only).
func NewCatalogLoader(source CatalogSource, logger *zap.SugaredLogger) *CatalogLoader {
	return &CatalogLoader{
		source: source,
		now:    time.Now,
		logger: logger,
	}
}

// Load fetches the catalog, falling back to the bundled one. It never fails.
func (l *CatalogLoader) Load(ctx context.Context) *models.Catalog {
	if l.source == nil {
		l.logger.Infof("📦 CatalogLoader: No catalog source configured, using bundled catalog")
		return DefaultCatalog()
	}

	fetched, err := l.source.Fetch(ctx)
	if err != nil {
		l.logger.Warnf("⚠️  CatalogLoader: Fetch failed, using bundled catalog: %v", err)
		return DefaultCatalog()
	}

	c := NormalizeCatalog(fetched, l.now())
	l.logger.Infof("✓ CatalogLoader: Loaded %d categories, %d products, %d banners",
		len(c.Categories), len(c.Products), len(c.Banners))
	return c
}
