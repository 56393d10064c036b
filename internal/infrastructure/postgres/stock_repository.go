package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// Tablas de saldos; el nombre nunca viene del usuario.
const (
	tableStock      = "stock"
	tableStockSalaL = "stock_sala_l"
)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q     Querier
	table string
	ns    entity.StockNamespace
}

// NewStockRepository construye el adaptador de saldos para table (stock o stock_sala_l).
func NewStockRepository(q Querier, table string) *StockRepo {
	ns := entity.NamespaceStock
	if table == tableStockSalaL {
		ns = entity.NamespaceSalaL
	} else {
		table = tableStock
	}
	return &StockRepo{q: q, table: table, ns: ns}
}

// GetForUpdate obtiene el saldo y bloquea la fila para update (SELECT FOR UPDATE).
// Si no existe devuelve un registro en cero.
func (r *StockRepo) GetForUpdate(ctx context.Context, skuCode string) (*entity.StockRecord, error) {
	query := `
		SELECT sku_code, sku_name, quantity, created_at, updated_at
		FROM ` + r.table + ` WHERE sku_code = $1
		FOR UPDATE`
	s := entity.StockRecord{Namespace: r.ns}
	err := r.q.QueryRow(ctx, query, skuCode).Scan(&s.SkuCode, &s.SkuName, &s.Quantity, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRecord{Namespace: r.ns, SkuCode: skuCode}, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// GetManyForUpdate bloquea en orden de SKU todas las filas pedidas en una sola consulta.
func (r *StockRepo) GetManyForUpdate(ctx context.Context, skuCodes []string) (map[string]*entity.StockRecord, error) {
	out := make(map[string]*entity.StockRecord, len(skuCodes))
	for _, code := range skuCodes {
		out[code] = &entity.StockRecord{Namespace: r.ns, SkuCode: code}
	}
	if len(skuCodes) == 0 {
		return out, nil
	}
	query := `
		SELECT sku_code, sku_name, quantity, created_at, updated_at
		FROM ` + r.table + ` WHERE sku_code = ANY($1)
		ORDER BY sku_code
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, skuCodes)
	if err != nil {
		return nil, fmt.Errorf("get stock batch for update: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s := &entity.StockRecord{Namespace: r.ns}
		if err := rows.Scan(&s.SkuCode, &s.SkuName, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out[s.SkuCode] = s
	}
	return out, rows.Err()
}

// Upsert inserta o actualiza el saldo del SKU. created_at solo se fija en la primera escritura.
func (r *StockRepo) Upsert(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO ` + r.table + ` (sku_code, sku_name, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sku_code)
		DO UPDATE SET sku_name = EXCLUDED.sku_name, quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	_, err := r.q.Exec(ctx, query, rec.SkuCode, rec.SkuName, rec.Quantity, createdAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", r.table, err)
	}
	return nil
}

// List todos los saldos ordenados por SKU.
func (r *StockRepo) List(ctx context.Context) ([]*entity.StockRecord, error) {
	query := `
		SELECT sku_code, sku_name, quantity, created_at, updated_at
		FROM ` + r.table + ` ORDER BY sku_code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		s := &entity.StockRecord{Namespace: r.ns}
		if err := rows.Scan(&s.SkuCode, &s.SkuName, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
