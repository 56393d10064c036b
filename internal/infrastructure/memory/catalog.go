package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.CatalogReader = (*Catalog)(nil)

// Catalog catálogo de SKUs en memoria.
type Catalog struct {
	mu   sync.RWMutex
	skus map[string]entity.SKU
}

// NewCatalog crea el catálogo con los SKUs dados.
func NewCatalog(skus ...entity.SKU) *Catalog {
	c := &Catalog{skus: make(map[string]entity.SKU, len(skus))}
	for _, s := range skus {
		c.Put(s)
	}
	return c
}

// Put agrega o reemplaza un SKU.
func (c *Catalog) Put(s entity.SKU) {
	s.Code = inventory.NormalizeSkuCode(s.Code)
	c.mu.Lock()
	c.skus[s.Code] = s
	c.mu.Unlock()
}

// Lookup devuelve el SKU o nil si no existe.
func (c *Catalog) Lookup(_ context.Context, skuCode string) (*entity.SKU, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.skus[inventory.NormalizeSkuCode(skuCode)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}
