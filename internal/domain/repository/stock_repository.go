package repository

import (
	"context"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// StockRepository puerto de saldos materializados de un namespace (stock o stockSalaL).
// Dentro de una transacción todas las lecturas deben preceder a las escrituras.
type StockRepository interface {
	// GetForUpdate devuelve el saldo del SKU; si no existe devuelve un registro con cantidad 0
	// y CreatedAt en cero.
	GetForUpdate(ctx context.Context, skuCode string) (*entity.StockRecord, error)
	// GetManyForUpdate lee en una sola pasada varios SKUs (misma semántica que GetForUpdate).
	GetManyForUpdate(ctx context.Context, skuCodes []string) (map[string]*entity.StockRecord, error)
	Upsert(ctx context.Context, rec *entity.StockRecord) error
	List(ctx context.Context) ([]*entity.StockRecord, error)
}
