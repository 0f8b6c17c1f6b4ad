package service

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const yamlCatalog = `
updatedAt: "2024-03-01T00:00:00Z"
categories:
  - id: cat-ind
    slug: industrial
    name: Industrial
    order: 1
products:
  - id: p1
    slug: overol
    ref: IND-1
    name: Overol
    categorySlugs: [industrial]
    showPrice: true
    price: 99000
    currency: COP
banners: nope
`

func TestFileCatalogSource_FetchJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products":[{"id":"x","slug":"x","ref":"X1","name":"X"}]}`), 0644))

	c, err := NewFileCatalogSource(path, zap.NewNop().Sugar()).Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, c.Products, 1)
	assert.Equal(t, "X1", c.Products[0].Ref)
	assert.NotEmpty(t, c.UpdatedAt)
}

func TestFileCatalogSource_FetchYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlCatalog), 0644))

	c, err := NewFileCatalogSource(path, zap.NewNop().Sugar()).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01T00:00:00Z", c.UpdatedAt)
	require.Len(t, c.Categories, 1)
	assert.Equal(t, 1.0, c.Categories[0].SortOrder())
	require.Len(t, c.Products, 1)
	require.NotNil(t, c.Products[0].Price)
	assert.Equal(t, 99000.0, *c.Products[0].Price)
	assert.Equal(t, []string{"industrial"}, c.Products[0].CategorySlugs)
	assert.Nil(t, c.Banners)
}

func TestFileCatalogSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileCatalogSource(filepath.Join(dir, "missing.json"), zap.NewNop().Sugar()).Fetch(context.Background())
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("products: [unclosed"), 0644))
	_, err = NewFileCatalogSource(bad, zap.NewNop().Sugar()).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFileCatalogSource_WatchRefreshesOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	src := NewFileCatalogSource(path, zap.NewNop().Sugar())
	store := NewCatalogStore(nil, src, zap.NewNop().Sugar())

	var refreshes atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, func(ctx context.Context) error {
			refreshes.Add(1)
			return store.Refresh(ctx)
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"products":[{"id":"a","slug":"a","ref":"A","name":"A"}]}`), 0644))

	assert.Eventually(t, func() bool {
		return len(store.Products()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, refreshes.Load(), int32(1))
}
