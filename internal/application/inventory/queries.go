package inventory

import (
	"context"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

const (
	defaultMovementLimit = 100
	maxMovementLimit     = 1000
)

// StockView saldo con su desglose en cajas, bandejas y unidades.
type StockView struct {
	entity.StockRecord
	Breakdown entity.CBU
}

// ListStock saldos de un namespace ordenados por SKU.
func (uc *UseCase) ListStock(ctx context.Context, ns entity.StockNamespace) ([]StockView, error) {
	if !ns.Valid() {
		return nil, domain.Invalid("namespace", "namespace desconocido %q", ns)
	}
	var recs []*entity.StockRecord
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		var err error
		recs, err = stockRepo(r, ns).List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]StockView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, uc.view(ctx, rec))
	}
	return out, nil
}

// GetStock saldo de un SKU; un SKU sin registro se informa con cantidad 0.
func (uc *UseCase) GetStock(ctx context.Context, ns entity.StockNamespace, skuCode string) (*StockView, error) {
	if !ns.Valid() {
		return nil, domain.Invalid("namespace", "namespace desconocido %q", ns)
	}
	code := inventory.NormalizeSkuCode(skuCode)
	if code == "" {
		return nil, domain.Invalid("skuCodigo", "SKU requerido")
	}
	var rec *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		var err error
		rec, err = stockRepo(r, ns).GetForUpdate(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rec.SkuName == "" {
		rec.SkuName = uc.catalog.Resolve(ctx, code).Name
	}
	v := uc.view(ctx, rec)
	return &v, nil
}

// ListMovements movimientos más recientes primero.
func (uc *UseCase) ListMovements(ctx context.Context, f entity.MovementFilter) ([]*entity.MovementEntry, error) {
	if f.Limit <= 0 {
		f.Limit = defaultMovementLimit
	}
	if f.Limit > maxMovementLimit {
		f.Limit = maxMovementLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.SkuCode != "" {
		f.SkuCode = inventory.NormalizeSkuCode(f.SkuCode)
	}
	var out []*entity.MovementEntry
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		var err error
		out, err = r.Movements.List(ctx, f)
		return err
	})
	return out, err
}

func (uc *UseCase) view(ctx context.Context, rec *entity.StockRecord) StockView {
	conv := uc.catalog.Resolve(ctx, rec.SkuCode).Conversion()
	return StockView{StockRecord: *rec, Breakdown: inventory.Breakdown(rec.Quantity, conv)}
}

func stockRepo(r ledger.Repos, ns entity.StockNamespace) repository.StockRepository {
	if ns == entity.NamespaceSalaL {
		return r.SalaL
	}
	return r.Stock
}
