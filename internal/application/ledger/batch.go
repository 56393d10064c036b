package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

type pendingDelta struct {
	skuName string
	delta   int64
}

// DeltaBatch acumula los deltas de stock de una operación para aplicarlos en bloque:
// Load lee todos los saldos afectados y LoadedBatch.Write escribe después.
type DeltaBatch struct {
	order  []string
	deltas map[string]*pendingDelta
}

// NewDeltaBatch crea un lote vacío.
func NewDeltaBatch() *DeltaBatch {
	return &DeltaBatch{deltas: make(map[string]*pendingDelta)}
}

// Add suma delta al SKU. Varias líneas del mismo SKU se agregan en un solo registro.
func (b *DeltaBatch) Add(skuCode, skuName string, delta int64) {
	d, ok := b.deltas[skuCode]
	if !ok {
		d = &pendingDelta{skuName: skuName}
		b.deltas[skuCode] = d
		b.order = append(b.order, skuCode)
	}
	if d.skuName == "" {
		d.skuName = skuName
	}
	d.delta += delta
}

// SkuCodes SKUs afectados en orden de inserción.
func (b *DeltaBatch) SkuCodes() []string {
	return append([]string(nil), b.order...)
}

// Len cantidad de SKUs distintos.
func (b *DeltaBatch) Len() int { return len(b.order) }

// Load lee todos los saldos afectados. Ninguna escritura de la transacción debe preceder a Load.
func (b *DeltaBatch) Load(ctx context.Context, repo repository.StockRepository) (*LoadedBatch, error) {
	current := map[string]*entity.StockRecord{}
	if len(b.order) > 0 {
		var err error
		current, err = repo.GetManyForUpdate(ctx, b.order)
		if err != nil {
			return nil, err
		}
	}
	return &LoadedBatch{batch: b, repo: repo, current: current}, nil
}

// LoadedBatch lote con los saldos ya leídos, listo para escribir.
type LoadedBatch struct {
	batch   *DeltaBatch
	repo    repository.StockRepository
	current map[string]*entity.StockRecord
}

// Current saldo leído (antes de aplicar deltas).
func (l *LoadedBatch) Current(skuCode string) int64 {
	if rec := l.current[skuCode]; rec != nil {
		return rec.Quantity
	}
	return 0
}

// Write aplica los deltas y devuelve el nuevo saldo por SKU.
// No hay control de límites: los saldos negativos se guardan tal cual.
func (l *LoadedBatch) Write(ctx context.Context, now time.Time) (map[string]int64, error) {
	out := make(map[string]int64, len(l.batch.order))
	for _, code := range l.batch.order {
		d := l.batch.deltas[code]
		// Current sigue devolviendo el saldo leído.
		rec := &entity.StockRecord{SkuCode: code}
		if cur := l.current[code]; cur != nil {
			cp := *cur
			rec = &cp
		}
		rec.Quantity += d.delta
		if d.skuName != "" {
			rec.SkuName = d.skuName
		}
		if rec.SkuName == "" {
			rec.SkuName = code
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if err := l.repo.Upsert(ctx, rec); err != nil {
			return nil, err
		}
		out[code] = rec.Quantity
	}
	return out, nil
}

// ApplyDelta aplica un único delta (siempre dentro de una transacción abierta por el llamador):
// lee el saldo actual (0 si no existe), suma delta y escribe.
func ApplyDelta(ctx context.Context, repo repository.StockRepository, skuCode, skuName string, delta int64, now time.Time) (int64, error) {
	b := NewDeltaBatch()
	b.Add(skuCode, skuName, delta)
	loaded, err := b.Load(ctx, repo)
	if err != nil {
		return 0, err
	}
	out, err := loaded.Write(ctx, now)
	if err != nil {
		return 0, err
	}
	return out[skuCode], nil
}
