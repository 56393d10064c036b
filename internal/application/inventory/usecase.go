package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// UseCase ajustes manuales de stock y consultas de saldos y movimientos.
type UseCase struct {
	txRunner ledger.TxRunner
	catalog  *ledger.Catalog
	clock    ledger.Clock
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ledger.TxRunner, catalog *ledger.Catalog, clock ledger.Clock, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, catalog: catalog, clock: clock, log: log}
}

// AdjustInput ajuste con signo sobre un SKU del stock principal.
type AdjustInput struct {
	SkuCode string
	Delta   int64
	Reason  string
	Who     entity.Identity
}

// Adjustment resultado de un ajuste.
type Adjustment struct {
	ID         string
	SkuCode    string
	SkuName    string
	Delta      int64
	Previous   int64
	Quantity   int64
	Reason     string
	MovementID string
}

// Adjust aplica una corrección compensatoria: lee el saldo, suma el delta y registra un
// movimiento de ajuste validado en la misma transacción. Es la vía para corregir etapas
// ya confirmadas sin reabrirlas.
func (uc *UseCase) Adjust(ctx context.Context, in AdjustInput) (*Adjustment, error) {
	if err := ledger.ValidateIdentity(in.Who); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.SkuCode) == "" {
		return nil, domain.Invalid("skuCodigo", "SKU requerido")
	}
	if in.Delta == 0 {
		return nil, domain.Invalid("cantidad", "el ajuste no puede ser cero")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("motivo", "el motivo del ajuste es obligatorio")
	}
	sku := uc.catalog.Resolve(ctx, in.SkuCode)

	var out *Adjustment
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		b := ledger.NewDeltaBatch()
		b.Add(sku.Code, sku.Name, in.Delta)
		loaded, err := b.Load(ctx, r.Stock)
		if err != nil {
			return err
		}
		now := uc.clock.Current()
		balances, err := loaded.Write(ctx, now)
		if err != nil {
			return err
		}
		id := uuid.New().String()
		m := ledger.NewMovement(uc.clock, ledger.DocRef{
			ID:     id,
			Kind:   entity.DocAdjustment,
			Status: entity.StatusValidado,
			Ref:    reason,
		}, in.Who, now, ledger.MovementSpec{
			Kind:     entity.MovementAjuste,
			SkuCode:  sku.Code,
			SkuName:  sku.Name,
			Quantity: in.Delta,
			Origin:   "Ajuste manual",
		})
		if err := r.Movements.Append(ctx, m); err != nil {
			return err
		}
		out = &Adjustment{
			ID:         id,
			SkuCode:    sku.Code,
			SkuName:    sku.Name,
			Delta:      in.Delta,
			Previous:   loaded.Current(sku.Code),
			Quantity:   balances[sku.Code],
			Reason:     reason,
			MovementID: m.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku", out.SkuCode).Int64("delta", out.Delta).Int64("saldo", out.Quantity).Str("motivo", reason).Str("usuario", in.Who.UserID).Msg("ajuste de stock registrado")
	return out, nil
}
