package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.CatalogReader = (*CatalogRepo)(nil)

// CatalogRepo catálogo maestro de SKUs (tabla sku_catalog).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// Lookup busca un SKU por código (nil, nil si no existe).
func (r *CatalogRepo) Lookup(ctx context.Context, code string) (*entity.SKU, error) {
	var s entity.SKU
	err := r.q.QueryRow(ctx, `SELECT code, name, units_per_box, units_per_tray FROM sku_catalog WHERE code = $1`, code).
		Scan(&s.Code, &s.Name, &s.UnitsPerBox, &s.UnitsPerTray)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup sku: %w", err)
	}
	return &s, nil
}

// Upsert agrega o actualiza un SKU del catálogo.
func (r *CatalogRepo) Upsert(ctx context.Context, s entity.SKU) error {
	query := `
		INSERT INTO sku_catalog (code, name, units_per_box, units_per_tray, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, units_per_box = EXCLUDED.units_per_box,
			units_per_tray = EXCLUDED.units_per_tray, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, s.Code, s.Name, s.UnitsPerBox, s.UnitsPerTray); err != nil {
		return fmt.Errorf("upsert sku: %w", err)
	}
	return nil
}
