package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/infrastructure/cache"
)

// ─── helpers ──────────────────────────────────────────────────────────────────

type countingReader struct {
	skus  map[string]entity.SKU
	calls int
	err   error
}

func (r *countingReader) Lookup(_ context.Context, code string) (*entity.SKU, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.skus[code]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func newCache(t *testing.T, next *countingReader) (*cache.CatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCatalogCache(client, next, time.Minute, zerolog.Nop()), mr
}

// ─── Lookup ───────────────────────────────────────────────────────────────────

func TestCatalogCache_SegundaLecturaDesdeRedis(t *testing.T) {
	next := &countingReader{skus: map[string]entity.SKU{
		"HB-GR": {Code: "HB-GR", Name: "Huevo blanco grande", UnitsPerBox: 180, UnitsPerTray: 30},
	}}
	c, mr := newCache(t, next)
	ctx := context.Background()

	first, err := c.Lookup(ctx, " hb-gr ")
	require.NoError(t, err)
	second, err := c.Lookup(ctx, "HB-GR")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "Huevo blanco grande", second.Name)
	assert.True(t, mr.Exists("catalog:sku:HB-GR"))
	assert.Equal(t, time.Minute, mr.TTL("catalog:sku:HB-GR"))
}

func TestCatalogCache_SkuInexistenteSeCachea(t *testing.T) {
	next := &countingReader{skus: map[string]entity.SKU{}}
	c, _ := newCache(t, next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sku, err := c.Lookup(ctx, "XYZ")
		require.NoError(t, err)
		assert.Nil(t, sku)
	}
	assert.Equal(t, 1, next.calls)
}

func TestCatalogCache_Invalidate(t *testing.T) {
	next := &countingReader{skus: map[string]entity.SKU{"HB-GR": {Code: "HB-GR", Name: "Grande"}}}
	c, _ := newCache(t, next)
	ctx := context.Background()

	_, err := c.Lookup(ctx, "HB-GR")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "hb-gr"))
	_, err = c.Lookup(ctx, "HB-GR")
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestCatalogCache_RedisCaidoLeeFuente(t *testing.T) {
	next := &countingReader{skus: map[string]entity.SKU{"HB-GR": {Code: "HB-GR", Name: "Grande"}}}
	c, mr := newCache(t, next)
	mr.Close()

	sku, err := c.Lookup(context.Background(), "HB-GR")
	require.NoError(t, err)
	require.NotNil(t, sku)
	assert.Equal(t, "Grande", sku.Name)
}

func TestCatalogCache_ErrorDeFuenteNoSeCachea(t *testing.T) {
	next := &countingReader{err: errors.New("db caída")}
	c, mr := newCache(t, next)

	_, err := c.Lookup(context.Background(), "HB-GR")
	assert.Error(t, err)
	assert.False(t, mr.Exists("catalog:sku:HB-GR"))
}
