package ledger

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

// Catalog resuelve SKUs contra el catálogo sin fallar: un SKU desconocido (o un catálogo caído)
// usa el código como nombre y la conversión por defecto.
type Catalog struct {
	reader   repository.CatalogReader
	fallback entity.UnitConversion
	log      zerolog.Logger
}

// NewCatalog construye el resolvedor. reader puede ser nil.
func NewCatalog(reader repository.CatalogReader, fallback entity.UnitConversion, log zerolog.Logger) *Catalog {
	if fallback.UnitsPerBox <= 0 && fallback.UnitsPerTray <= 0 {
		fallback = inventory.DefaultConversion()
	}
	return &Catalog{reader: reader, fallback: fallback, log: log}
}

// Resolve devuelve el SKU con nombre y conversión.
func (c *Catalog) Resolve(ctx context.Context, code string) entity.SKU {
	code = inventory.NormalizeSkuCode(code)
	if c == nil {
		conv := inventory.DefaultConversion()
		return entity.SKU{Code: code, Name: code, UnitsPerBox: conv.UnitsPerBox, UnitsPerTray: conv.UnitsPerTray}
	}
	sku := entity.SKU{Code: code, Name: code, UnitsPerBox: c.fallback.UnitsPerBox, UnitsPerTray: c.fallback.UnitsPerTray}
	if c.reader == nil {
		return sku
	}
	found, err := c.reader.Lookup(ctx, code)
	if err != nil {
		c.log.Warn().Err(err).Str("sku", code).Msg("catálogo no disponible, se usa conversión por defecto")
		return sku
	}
	if found == nil {
		return sku
	}
	if found.Name != "" {
		sku.Name = found.Name
	}
	if found.UnitsPerBox > 0 {
		sku.UnitsPerBox = found.UnitsPerBox
	}
	if found.UnitsPerTray > 0 {
		sku.UnitsPerTray = found.UnitsPerTray
	}
	return sku
}
