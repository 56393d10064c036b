package vale

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
)

// UseCase máquina de estados de vales: creación, validación y rechazo.
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

// LineInput línea solicitada en cajas/bandejas/unidades.
type LineInput struct {
	SkuCode string
	Boxes   int64
	Trays   int64
	Units   int64
}

// CreateInput datos para crear un vale.
type CreateInput struct {
	Kind            entity.ValeKind
	OriginID        string
	OriginName      string
	DestinationID   string
	DestinationName string
	CarrierID       string
	CarrierName     string
	Lines           []LineInput
	Comment         string
	Who             entity.Identity
}

func sequenceScope(kind entity.ValeKind) string { return "vale:" + string(kind) }

// Create valida la entrada y crea el vale en una transacción. Egreso y reingreso se liquidan
// en el acto (stock y movimientos); ingreso queda pendiente y no toca el stock.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Vale, error) {
	if err := ledger.ValidateIdentity(in.Who); err != nil {
		return nil, err
	}
	if !in.Kind.Valid() {
		return nil, domain.Invalid("tipo", "tipo de vale desconocido %q", in.Kind)
	}
	if strings.TrimSpace(in.OriginID) == "" && strings.TrimSpace(in.OriginName) == "" {
		return nil, domain.Invalid("origen", "origen requerido")
	}
	if strings.TrimSpace(in.DestinationID) == "" && strings.TrimSpace(in.DestinationName) == "" {
		return nil, domain.Invalid("destino", "destino requerido")
	}
	lines, total, err := uc.buildLines(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	status := in.Kind.InitialStatus()
	var created *entity.Vale
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		now := uc.clock.Current()
		date := uc.clock.BusinessDate(now)

		seq, err := ledger.ReadSequence(ctx, r, sequenceScope(in.Kind), date)
		if err != nil {
			return err
		}
		var loaded *ledger.LoadedBatch
		if status == entity.StatusValidado {
			if loaded, err = linesBatch(lines, in.Kind.Sign()).Load(ctx, r.Stock); err != nil {
				return err
			}
		}

		v := &entity.Vale{
			ID:                  uuid.New().String(),
			Kind:                in.Kind,
			Status:              status,
			Reference:           seq.Reference(in.Kind.Prefix()),
			DailySequenceNumber: seq.Value(),
			BusinessDate:        date,
			OriginID:            in.OriginID,
			OriginName:          labelOr(in.OriginName, in.OriginID),
			DestinationID:       in.DestinationID,
			DestinationName:     labelOr(in.DestinationName, in.DestinationID),
			CarrierID:           in.CarrierID,
			CarrierName:         labelOr(in.CarrierName, in.CarrierID),
			Lines:               lines,
			TotalUnits:          total,
			Comment:             strings.TrimSpace(in.Comment),
			CreatorID:           in.Who.UserID,
			CreatorName:         in.Who.UserName,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if status == entity.StatusValidado {
			v.ValidatorID = in.Who.UserID
			v.ValidatorName = in.Who.UserName
			v.ValidatedAt = &now
		}

		if err := seq.Commit(ctx, r); err != nil {
			return err
		}
		if err := r.Vales.Create(ctx, v); err != nil {
			return err
		}
		if loaded != nil {
			if err := settle(ctx, r, uc.clock, loaded, v, in.Who, now); err != nil {
				return err
			}
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("vale", created.Reference).
		Str("tipo", string(created.Kind)).
		Str("estado", string(created.Status)).
		Int64("unidades", created.TotalUnits).
		Str("usuario", in.Who.UserID).
		Msg("vale creado")
	return created, nil
}

// Validate liquida un vale de ingreso pendiente. El estado se relee dentro de la transacción,
// por lo que un segundo intento sobre un vale ya validado falla sin duplicar movimientos.
func (uc *UseCase) Validate(ctx context.Context, id string, who entity.Identity) (*entity.Vale, error) {
	if err := ledger.ValidateIdentity(who); err != nil {
		return nil, err
	}
	var validated *entity.Vale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		v, err := pendingIngreso(ctx, r, id)
		if err != nil {
			return err
		}
		loaded, err := linesBatch(v.Lines, v.Kind.Sign()).Load(ctx, r.Stock)
		if err != nil {
			return err
		}

		now := uc.clock.Current()
		v.Status = entity.StatusValidado
		v.ValidatorID = who.UserID
		v.ValidatorName = who.UserName
		v.ValidatedAt = &now
		v.UpdatedAt = now
		if err := settle(ctx, r, uc.clock, loaded, v, who, now); err != nil {
			return err
		}
		if err := r.Vales.Update(ctx, v); err != nil {
			return err
		}
		validated = v
		return nil
	})
	if err != nil {
		uc.logRejected(err, id, "validar")
		return nil, err
	}
	uc.log.Info().Str("vale", validated.Reference).Int64("unidades", validated.TotalUnits).Str("usuario", who.UserID).Msg("vale validado")
	return validated, nil
}

// Reject pasa un vale de ingreso pendiente a rechazado; no afecta el stock y es terminal.
func (uc *UseCase) Reject(ctx context.Context, id, reason string, who entity.Identity) (*entity.Vale, error) {
	if err := ledger.ValidateIdentity(who); err != nil {
		return nil, err
	}
	var rejected *entity.Vale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		v, err := pendingIngreso(ctx, r, id)
		if err != nil {
			return err
		}
		v.Status = entity.StatusRechazado
		v.ValidatorID = who.UserID
		v.ValidatorName = who.UserName
		v.RejectionReason = strings.TrimSpace(reason)
		v.UpdatedAt = uc.clock.Current()
		if err := r.Vales.Update(ctx, v); err != nil {
			return err
		}
		rejected = v
		return nil
	})
	if err != nil {
		uc.logRejected(err, id, "rechazar")
		return nil, err
	}
	uc.log.Info().Str("vale", rejected.Reference).Str("usuario", who.UserID).Msg("vale rechazado")
	return rejected, nil
}

// Get obtiene un vale por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Vale, error) {
	var out *entity.Vale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		v, err := r.Vales.Get(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrNotFound
		}
		out = v
		return nil
	})
	return out, err
}

func (uc *UseCase) logRejected(err error, id, op string) {
	if domain.IsStatePrecondition(err) {
		uc.log.Warn().Err(err).Str("vale", id).Str("operacion", op).Msg("operación de vale rechazada")
	}
}

func pendingIngreso(ctx context.Context, r ledger.Repos, id string) (*entity.Vale, error) {
	v, err := r.Vales.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if v.Kind != entity.ValeIngreso {
		return nil, fmt.Errorf("vale %s (%s): %w", v.Reference, v.Kind, domain.ErrValeKindNotValidatable)
	}
	if !v.Pending() {
		return nil, fmt.Errorf("vale %s en estado %s: %w", v.Reference, v.Status, domain.ErrValeNotPending)
	}
	return v, nil
}

// buildLines resuelve SKUs, calcula totales y rechaza vales vacíos o en cero.
func (uc *UseCase) buildLines(ctx context.Context, in []LineInput) ([]entity.ValeLine, int64, error) {
	if len(in) == 0 {
		return nil, 0, domain.Invalid("lineas", "el vale debe tener al menos una línea")
	}
	lines := make([]entity.ValeLine, 0, len(in))
	var total int64
	for i, l := range in {
		field := fmt.Sprintf("lineas[%d]", i)
		if strings.TrimSpace(l.SkuCode) == "" {
			return nil, 0, domain.Invalid(field, "SKU requerido")
		}
		if l.Boxes < 0 || l.Trays < 0 || l.Units < 0 {
			return nil, 0, domain.Invalid(field, "cantidades negativas no permitidas")
		}
		sku := uc.catalog.Resolve(ctx, l.SkuCode)
		cbu, err := inventory.NewCBU(l.Boxes, l.Trays, l.Units, sku.Conversion())
		if err != nil {
			return nil, 0, inventory.OutOfRange(field)
		}
		if cbu.TotalUnits <= 0 {
			return nil, 0, domain.Invalid(field, "la línea no tiene unidades")
		}
		lines = append(lines, entity.ValeLine{
			SkuCode:    sku.Code,
			SkuName:    sku.Name,
			Boxes:      cbu.Boxes,
			Trays:      cbu.Trays,
			Units:      cbu.Units,
			TotalUnits: cbu.TotalUnits,
		})
		if total > inventory.MaxUnits-cbu.TotalUnits {
			return nil, 0, inventory.OutOfRange("totalUnidades")
		}
		total += cbu.TotalUnits
	}
	if total <= 0 {
		return nil, 0, domain.Invalid("totalUnidades", "el vale no tiene unidades")
	}
	return lines, total, nil
}

func linesBatch(lines []entity.ValeLine, sign int64) *ledger.DeltaBatch {
	b := ledger.NewDeltaBatch()
	for _, l := range lines {
		b.Add(l.SkuCode, l.SkuName, sign*l.TotalUnits)
	}
	return b
}

// settle escribe saldos y un movimiento por línea con estado validado.
func settle(ctx context.Context, r ledger.Repos, clock ledger.Clock, loaded *ledger.LoadedBatch, v *entity.Vale, who entity.Identity, now time.Time) error {
	if _, err := loaded.Write(ctx, now); err != nil {
		return err
	}
	doc := ledger.DocRef{ID: v.ID, Kind: entity.DocVale, Status: entity.StatusValidado, Ref: v.Reference}
	sign := v.Kind.Sign()
	for _, l := range v.Lines {
		m := ledger.NewMovement(clock, doc, who, now, ledger.MovementSpec{
			Kind:        v.Kind.MovementKind(),
			SkuCode:     l.SkuCode,
			SkuName:     l.SkuName,
			Quantity:    sign * l.TotalUnits,
			Origin:      v.OriginName,
			Destination: v.DestinationName,
		})
		if err := r.Movements.Append(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func labelOr(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(id)
}
