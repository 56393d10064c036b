package repository

import (
	"context"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// CatalogReader lectura del catálogo maestro de SKUs. Lookup devuelve nil, nil si el SKU no existe.
type CatalogReader interface {
	Lookup(ctx context.Context, skuCode string) (*entity.SKU, error)
}
