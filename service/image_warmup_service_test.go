package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"origen-dotacion/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestImageWarmupService_WarmAll(t *testing.T) {
	var hits atomic.Int32
	img := pngBytes(t, 400, 400)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	catalog := NewCatalogStore(&models.Catalog{Products: []models.Product{
		{ID: "a", Slug: "a", Images: []models.ProductImage{{URL: "/a.png"}, {URL: ""}}},
		{ID: "b", Slug: "b", Images: []models.ProductImage{{URL: "/missing.png"}}},
		{ID: "c", Slug: "c"},
	}}, nil, zap.NewNop().Sugar())
	optimizer := NewImageOptimizer(t.TempDir(), srv.URL, srv.Client(), zap.NewNop().Sugar())
	warmup := NewImageWarmupService(catalog, optimizer, zap.NewNop().Sugar())

	report, err := warmup.WarmAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Optimized)
	assert.Equal(t, 0, report.Cached)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.Errors, 2)

	before := hits.Load()
	report, err = warmup.WarmAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Cached)
	assert.Equal(t, 0, report.Optimized)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, before+2, hits.Load())
}

func TestImageWarmupService_Cancelled(t *testing.T) {
	catalog := NewCatalogStore(&models.Catalog{}, nil, zap.NewNop().Sugar())
	warmup := NewImageWarmupService(catalog, NewImageOptimizer(t.TempDir(), "", nil, zap.NewNop().Sugar()), zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := warmup.WarmAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
