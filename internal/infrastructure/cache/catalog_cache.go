// Package cache decora lecturas del catálogo con un caché JSON en Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.CatalogReader = (*CatalogCache)(nil)

const (
	keyPrefix  = "catalog:sku"
	defaultTTL = 10 * time.Minute
)

// cachedSKU valor guardado; Missing marca un SKU inexistente para no consultar de nuevo la fuente.
type cachedSKU struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	UnitsPerBox  int64  `json:"unitsPerBox"`
	UnitsPerTray int64  `json:"unitsPerTray"`
	Missing      bool   `json:"missing,omitempty"`
}

// CatalogCache CatalogReader que consulta Redis antes de la fuente. Si Redis falla se lee
// directo de la fuente.
type CatalogCache struct {
	client *redis.Client
	next   repository.CatalogReader
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCatalogCache construye el decorador. ttl <= 0 usa 10 minutos.
func NewCatalogCache(client *redis.Client, next repository.CatalogReader, ttl time.Duration, log zerolog.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CatalogCache{client: client, next: next, ttl: ttl, log: log}
}

// Lookup devuelve el SKU desde el caché o la fuente (nil, nil si no existe).
func (c *CatalogCache) Lookup(ctx context.Context, skuCode string) (*entity.SKU, error) {
	code := inventory.NormalizeSkuCode(skuCode)
	if c.client == nil {
		return c.next.Lookup(ctx, code)
	}
	key := skuKey(code)
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v cachedSKU
		if err := json.Unmarshal(payload, &v); err == nil {
			return v.toEntity(), nil
		}
		c.log.Warn().Str("key", key).Msg("entrada de caché corrupta, se descarta")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("redis no disponible, se lee el catálogo directo")
		return c.next.Lookup(ctx, code)
	}

	sku, err := c.next.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	v := cachedSKU{Code: code, Missing: true}
	if sku != nil {
		v = cachedSKU{Code: sku.Code, Name: sku.Name, UnitsPerBox: sku.UnitsPerBox, UnitsPerTray: sku.UnitsPerTray}
	}
	raw, err := json.Marshal(v)
	if err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("no se pudo escribir el caché")
		}
	}
	return sku, nil
}

// Invalidate elimina las entradas de los SKUs dados.
func (c *CatalogCache) Invalidate(ctx context.Context, skuCodes ...string) error {
	if c.client == nil || len(skuCodes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(skuCodes))
	for _, code := range skuCodes {
		keys = append(keys, skuKey(inventory.NormalizeSkuCode(code)))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (v cachedSKU) toEntity() *entity.SKU {
	if v.Missing {
		return nil
	}
	return &entity.SKU{Code: v.Code, Name: v.Name, UnitsPerBox: v.UnitsPerBox, UnitsPerTray: v.UnitsPerTray}
}

func skuKey(code string) string {
	return strings.Join([]string{keyPrefix, code}, ":")
}
