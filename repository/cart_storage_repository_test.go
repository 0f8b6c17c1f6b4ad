package repository

import (
	"context"
	"path/filepath"
	"testing"

	"origen-dotacion/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteRepo(t *testing.T) *CartStorageRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.EnsureCartSchema(ctx, conn))

	return NewCartStorageRepository(conn, db.DriverSQLite, zap.NewNop().Sugar())
}

func TestCartStorageRepository_GetMissing(t *testing.T) {
	repo := newSQLiteRepo(t)

	v, ok, err := repo.Get(context.Background(), "origen_cart_v1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestCartStorageRepository_SetOverwrites(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "origen_cart_v1", `[{"lineId":"a"}]`))
	require.NoError(t, repo.Set(ctx, "origen_cart_v1", `[]`))
	require.NoError(t, repo.Set(ctx, "origen_cart_v1:other", `[{"lineId":"b"}]`))

	v, ok, err := repo.Get(ctx, "origen_cart_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	v, ok, err = repo.Get(ctx, "origen_cart_v1:other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"lineId":"b"}]`, v)
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v"))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
