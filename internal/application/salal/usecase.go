package salal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
)

const sequenceScope = "lote"

// Settings parámetros de planta del pipeline.
type Settings struct {
	GramsPerUnit   decimal.Decimal // gramos por unidad para convertir kg de descarte
	WasteSkuCode   string          // SKU que acumula el descarte (DES)
	SalaLLabel     string          // etiqueta de origen en los movimientos
	WarehouseLabel string          // etiqueta de destino en los movimientos
	CleanSkus      *inventory.CleanSkuTable
}

// DefaultSettings 60 g/unidad, descarte en DES y tabla BLA/COL.
func DefaultSettings() Settings {
	return Settings{
		GramsPerUnit:   decimal.NewFromInt(60),
		WasteSkuCode:   "DES",
		SalaLLabel:     "Sala L",
		WarehouseLabel: "Bodega",
		CleanSkus:      inventory.DefaultCleanSkuTable(),
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if !s.GramsPerUnit.IsPositive() {
		s.GramsPerUnit = d.GramsPerUnit
	}
	if strings.TrimSpace(s.WasteSkuCode) == "" {
		s.WasteSkuCode = d.WasteSkuCode
	}
	s.WasteSkuCode = inventory.NormalizeSkuCode(s.WasteSkuCode)
	if s.SalaLLabel == "" {
		s.SalaLLabel = d.SalaLLabel
	}
	if s.WarehouseLabel == "" {
		s.WarehouseLabel = d.WarehouseLabel
	}
	if s.CleanSkus == nil {
		s.CleanSkus = d.CleanSkus
	}
	return s
}

// UseCase pipeline de lotes de Sala L: ingreso, lavado, calibración y cierre.
type UseCase struct {
	txRunner ledger.TxRunner
	catalog  *ledger.Catalog
	clock    ledger.Clock
	settings Settings
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ledger.TxRunner, catalog *ledger.Catalog, clock ledger.Clock, settings Settings, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, catalog: catalog, clock: clock, settings: settings.withDefaults(), log: log}
}

// Quantity cantidad en cajas/bandejas/unidades.
type Quantity struct {
	Boxes int64
	Trays int64
	Units int64
}

func (q Quantity) negative() bool { return q.Boxes < 0 || q.Trays < 0 || q.Units < 0 }

// CreateInput ingreso de material sucio a Sala L.
type CreateInput struct {
	OriginID     string
	OriginName   string
	DirtySkuCode string
	Quantity     Quantity
	Comment      string
	Who          entity.Identity
}

// LavadoInput resultado observado del lavado.
type LavadoInput struct {
	Clean   Quantity
	WasteKg decimal.Decimal
	Comment string
	Who     entity.Identity
}

// CalibrationLineInput salida calibrada hacia un SKU.
type CalibrationLineInput struct {
	SkuCode  string
	Quantity Quantity
}

// CalibrationInput líneas calibradas más el descarte de bodega.
type CalibrationInput struct {
	Lines   []CalibrationLineInput
	WasteKg decimal.Decimal
	Who     entity.Identity
}

// CreateLote registra el lote en EN_SALA. Acredita stockSalaL con el ingreso sucio y no
// toca el stock principal.
func (uc *UseCase) CreateLote(ctx context.Context, in CreateInput) (*entity.Lote, error) {
	if err := ledger.ValidateIdentity(in.Who); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.DirtySkuCode) == "" {
		return nil, domain.Invalid("skuSucio", "SKU sucio requerido")
	}
	if in.Quantity.negative() {
		return nil, domain.Invalid("ingreso", "cantidades negativas no permitidas")
	}
	dirty := uc.catalog.Resolve(ctx, in.DirtySkuCode)
	ingreso, err := inventory.NewCBU(in.Quantity.Boxes, in.Quantity.Trays, in.Quantity.Units, dirty.Conversion())
	if err != nil {
		return nil, inventory.OutOfRange("ingreso")
	}
	if ingreso.TotalUnits <= 0 {
		return nil, domain.Invalid("ingreso", "el ingreso no tiene unidades")
	}
	cleanCode := uc.settings.CleanSkus.Resolve(dirty.Code)
	if strings.TrimSpace(cleanCode) == "" {
		return nil, domain.Invalid("skuSucio", "no hay SKU limpio configurado para %s", dirty.Code)
	}
	clean := uc.catalog.Resolve(ctx, cleanCode)

	var created *entity.Lote
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		now := uc.clock.Current()
		seq, err := ledger.ReadSequence(ctx, r, sequenceScope, uc.clock.BusinessDate(now))
		if err != nil {
			return err
		}
		salaL := ledger.NewDeltaBatch()
		salaL.Add(dirty.Code, dirty.Name, ingreso.TotalUnits)
		loaded, err := salaL.Load(ctx, r.SalaL)
		if err != nil {
			return err
		}

		l := &entity.Lote{
			ID:           uuid.New().String(),
			LoteCode:     seq.Reference("L"),
			Status:       entity.LoteEnSala,
			OriginID:     in.OriginID,
			OriginName:   strings.TrimSpace(in.OriginName),
			DirtySkuCode: dirty.Code,
			DirtySkuName: dirty.Name,
			CleanSkuCode: clean.Code,
			CleanSkuName: clean.Name,
			Ingreso:      ingreso,
			Comment:      strings.TrimSpace(in.Comment),
			CreatorID:    in.Who.UserID,
			CreatorName:  in.Who.UserName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := seq.Commit(ctx, r); err != nil {
			return err
		}
		if err := r.Lotes.Create(ctx, l); err != nil {
			return err
		}
		if _, err := loaded.Write(ctx, now); err != nil {
			return err
		}
		if err := r.Lotes.AppendEvent(ctx, newEvent(l.ID, entity.EventIngresoRegistrado, in.Who, now, map[string]any{
			"skuSucio":      dirty.Code,
			"totalUnidades": ingreso.TotalUnits,
		})); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lote", created.LoteCode).Str("sku", created.DirtySkuCode).Int64("unidades", created.Ingreso.TotalUnits).Str("usuario", in.Who.UserID).Msg("lote ingresado a Sala L")
	return created, nil
}

// ConfirmLavado confirma el lavado una sola vez: acredita el SKU limpio y el descarte,
// descuenta stockSalaL y guarda las métricas de conciliación. Que limpio + descarte no cuadre
// con el ingreso no bloquea la confirmación.
func (uc *UseCase) ConfirmLavado(ctx context.Context, id string, in LavadoInput) (*entity.Lote, error) {
	if err := ledger.ValidateIdentity(in.Who); err != nil {
		return nil, err
	}
	if in.Clean.negative() {
		return nil, domain.Invalid("lavado", "cantidades negativas no permitidas")
	}
	if in.WasteKg.IsNegative() {
		return nil, domain.Invalid("descarteKg", "el descarte no puede ser negativo")
	}
	wasteUnits, err := inventory.WasteUnits(in.WasteKg, uc.settings.GramsPerUnit)
	if err != nil {
		return nil, inventory.OutOfRange("descarteKg")
	}

	var confirmed *entity.Lote
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		l, err := getLote(ctx, r, id)
		if err != nil {
			return err
		}
		switch l.Status {
		case entity.LoteEnSala:
		case entity.LoteCerrado:
			return fmt.Errorf("lote %s: %w", l.LoteCode, domain.ErrLoteClosed)
		default:
			return fmt.Errorf("lote %s en estado %s: %w", l.LoteCode, l.Status, domain.ErrLoteAlreadyConfirmed)
		}

		clean := uc.catalog.Resolve(ctx, l.CleanSkuCode)
		lavado, err := inventory.NewCBU(in.Clean.Boxes, in.Clean.Trays, in.Clean.Units, clean.Conversion())
		if err != nil {
			return inventory.OutOfRange("limpio")
		}
		if lavado.TotalUnits <= 0 && wasteUnits <= 0 {
			return domain.Invalid("lavado", "el lavado no tiene unidades ni descarte")
		}
		waste := uc.catalog.Resolve(ctx, uc.settings.WasteSkuCode)

		stock := ledger.NewDeltaBatch()
		stock.Add(clean.Code, clean.Name, lavado.TotalUnits)
		if wasteUnits > 0 {
			stock.Add(waste.Code, waste.Name, wasteUnits)
		}
		loadedStock, err := stock.Load(ctx, r.Stock)
		if err != nil {
			return err
		}
		salaL := ledger.NewDeltaBatch()
		salaL.Add(l.DirtySkuCode, l.DirtySkuName, -l.Ingreso.TotalUnits)
		loadedSalaL, err := salaL.Load(ctx, r.SalaL)
		if err != nil {
			return err
		}

		now := uc.clock.Current()
		metrics := inventory.LavadoMetrics(l.Ingreso.TotalUnits, lavado.TotalUnits, wasteUnits)
		l.Status = entity.LoteLavadoOK
		l.CleanSkuCode = clean.Code
		l.CleanSkuName = clean.Name
		l.Lavado = &lavado
		l.WasteKg = in.WasteKg
		l.WasteUnits = wasteUnits
		l.Metrics = &metrics
		l.LavadoBy = in.Who.UserID
		l.LavadoByName = in.Who.UserName
		l.LavadoAt = &now
		l.UpdatedAt = now
		if c := strings.TrimSpace(in.Comment); c != "" {
			l.Comment = c
		}

		if _, err := loadedStock.Write(ctx, now); err != nil {
			return err
		}
		if _, err := loadedSalaL.Write(ctx, now); err != nil {
			return err
		}
		doc := loteDoc(l)
		if err := r.Movements.Append(ctx, ledger.NewMovement(uc.clock, doc, in.Who, now, ledger.MovementSpec{
			Kind:        entity.MovementIngreso,
			SkuCode:     clean.Code,
			SkuName:     clean.Name,
			Quantity:    lavado.TotalUnits,
			Origin:      uc.settings.SalaLLabel,
			Destination: uc.settings.WarehouseLabel,
		})); err != nil {
			return err
		}
		if wasteUnits > 0 {
			if err := r.Movements.Append(ctx, ledger.NewMovement(uc.clock, doc, in.Who, now, ledger.MovementSpec{
				Kind:        entity.MovementIngreso,
				SkuCode:     waste.Code,
				SkuName:     waste.Name,
				Quantity:    wasteUnits,
				Origin:      uc.settings.SalaLLabel,
				Destination: uc.settings.WarehouseLabel,
			})); err != nil {
				return err
			}
		}
		if err := r.Lotes.Update(ctx, l); err != nil {
			return err
		}
		detail := map[string]any{
			"limpioUnidades":     lavado.TotalUnits,
			"descarteKg":         in.WasteKg.String(),
			"descarteUnidades":   wasteUnits,
			"porcentajeLimpio":   metrics.CleanPct.String(),
			"porcentajeDescarte": metrics.WastePct.String(),
			"diferencia":         metrics.Difference,
		}
		if err := r.Lotes.AppendEvent(ctx, newEvent(l.ID, entity.EventLavadoRegistrado, in.Who, now, detail)); err != nil {
			return err
		}
		if err := r.Lotes.AppendEvent(ctx, newEvent(l.ID, entity.EventSalaLConfirmado, in.Who, now, map[string]any{
			"skuLimpio": clean.Code,
		})); err != nil {
			return err
		}
		confirmed = l
		return nil
	})
	if err != nil {
		uc.logRejected(err, id, "lavado")
		return nil, err
	}
	ev := uc.log.Info().Str("lote", confirmed.LoteCode).Int64("limpio", confirmed.Lavado.TotalUnits).Int64("descarte", confirmed.WasteUnits).Str("usuario", in.Who.UserID)
	if confirmed.Metrics.Difference != 0 {
		ev = ev.Int64("diferencia", confirmed.Metrics.Difference)
	}
	ev.Msg("lavado confirmado")
	return confirmed, nil
}

// ConfirmCalibration consume completo el limpio producido por el lavado y lo reparte entre los
// SKUs calibrados más el descarte de bodega. Solo puede ejecutarse una vez por lote.
func (uc *UseCase) ConfirmCalibration(ctx context.Context, id string, in CalibrationInput) (*entity.Lote, error) {
	if err := ledger.ValidateIdentity(in.Who); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lineas", "la calibración debe tener al menos una línea")
	}
	if in.WasteKg.IsNegative() {
		return nil, domain.Invalid("descarteKg", "el descarte no puede ser negativo")
	}
	lines := make([]entity.CalibrationLine, 0, len(in.Lines))
	for i, li := range in.Lines {
		field := fmt.Sprintf("lineas[%d]", i)
		if strings.TrimSpace(li.SkuCode) == "" {
			return nil, domain.Invalid(field, "SKU requerido")
		}
		if li.Quantity.negative() {
			return nil, domain.Invalid(field, "cantidades negativas no permitidas")
		}
		sku := uc.catalog.Resolve(ctx, li.SkuCode)
		total, err := inventory.TotalUnits(li.Quantity.Boxes, li.Quantity.Trays, li.Quantity.Units, sku.Conversion())
		if err != nil {
			return nil, inventory.OutOfRange(field)
		}
		if total <= 0 {
			return nil, domain.Invalid(field, "la línea no tiene unidades")
		}
		lines = append(lines, entity.CalibrationLine{SkuCode: sku.Code, SkuName: sku.Name, Units: total})
	}
	wasteUnits, err := inventory.WasteUnits(in.WasteKg, uc.settings.GramsPerUnit)
	if err != nil {
		return nil, inventory.OutOfRange("descarteKg")
	}
	waste := uc.catalog.Resolve(ctx, uc.settings.WasteSkuCode)

	var calibrated *entity.Lote
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		l, err := getLote(ctx, r, id)
		if err != nil {
			return err
		}
		switch {
		case l.Calibrated():
			return fmt.Errorf("lote %s: %w", l.LoteCode, domain.ErrLoteAlreadyCalibrated)
		case l.Status == entity.LoteCerrado:
			return fmt.Errorf("lote %s: %w", l.LoteCode, domain.ErrLoteClosed)
		case l.Status != entity.LoteLavadoOK || l.Lavado == nil:
			return fmt.Errorf("lote %s en estado %s: %w", l.LoteCode, l.Status, domain.ErrLoteNotWashed)
		}

		source := l.Lavado.TotalUnits
		stock := ledger.NewDeltaBatch()
		stock.Add(l.CleanSkuCode, l.CleanSkuName, -source)
		for _, cl := range lines {
			stock.Add(cl.SkuCode, cl.SkuName, cl.Units)
		}
		if wasteUnits > 0 {
			stock.Add(waste.Code, waste.Name, wasteUnits)
		}
		loaded, err := stock.Load(ctx, r.Stock)
		if err != nil {
			return err
		}

		now := uc.clock.Current()
		cal := &entity.Calibration{
			Lines:       lines,
			SourceUnits: source,
			WasteKg:     in.WasteKg,
			WasteUnits:  wasteUnits,
			Timestamp:   &now,
			UserID:      in.Who.UserID,
			UserName:    in.Who.UserName,
		}
		inventory.CalibrationMetrics(cal)
		l.Calibration = cal
		l.UpdatedAt = now

		if _, err := loaded.Write(ctx, now); err != nil {
			return err
		}
		doc := loteDoc(l)
		specs := make([]ledger.MovementSpec, 0, len(lines)+2)
		specs = append(specs, ledger.MovementSpec{
			Kind:        entity.MovementEgreso,
			SkuCode:     l.CleanSkuCode,
			SkuName:     l.CleanSkuName,
			Quantity:    -source,
			Origin:      uc.settings.WarehouseLabel,
			Destination: uc.settings.SalaLLabel,
		})
		for _, cl := range lines {
			specs = append(specs, ledger.MovementSpec{
				Kind:        entity.MovementIngreso,
				SkuCode:     cl.SkuCode,
				SkuName:     cl.SkuName,
				Quantity:    cl.Units,
				Origin:      uc.settings.SalaLLabel,
				Destination: uc.settings.WarehouseLabel,
			})
		}
		if wasteUnits > 0 {
			specs = append(specs, ledger.MovementSpec{
				Kind:        entity.MovementIngreso,
				SkuCode:     waste.Code,
				SkuName:     waste.Name,
				Quantity:    wasteUnits,
				Origin:      uc.settings.SalaLLabel,
				Destination: uc.settings.WarehouseLabel,
			})
		}
		for _, s := range specs {
			if err := r.Movements.Append(ctx, ledger.NewMovement(uc.clock, doc, in.Who, now, s)); err != nil {
				return err
			}
		}
		if err := r.Lotes.Update(ctx, l); err != nil {
			return err
		}
		if err := r.Lotes.AppendEvent(ctx, newEvent(l.ID, entity.EventCalibracionConfirmada, in.Who, now, map[string]any{
			"unidadesOrigen":      cal.SourceUnits,
			"totalCalibrado":      cal.TotalCalibratedUnits,
			"descarteUnidades":    cal.WasteUnits,
			"porcentajeCalibrado": cal.CalibratedPct.String(),
			"porcentajeDescarte":  cal.WastePct.String(),
			"diferencia":          cal.Difference,
		})); err != nil {
			return err
		}
		calibrated = l
		return nil
	})
	if err != nil {
		uc.logRejected(err, id, "calibracion")
		return nil, err
	}
	uc.log.Info().Str("lote", calibrated.LoteCode).Int64("origen", calibrated.Calibration.SourceUnits).Int64("calibrado", calibrated.Calibration.TotalCalibratedUnits).Str("usuario", in.Who.UserID).Msg("calibración confirmada")
	return calibrated, nil
}

// Close cierre administrativo del lote. No mueve stock principal; si el lote seguía en sala
// libera su saldo de stockSalaL.
func (uc *UseCase) Close(ctx context.Context, id, comment string, who entity.Identity) (*entity.Lote, error) {
	if err := ledger.ValidateIdentity(who); err != nil {
		return nil, err
	}
	var closed *entity.Lote
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		l, err := getLote(ctx, r, id)
		if err != nil {
			return err
		}
		if l.Status == entity.LoteCerrado {
			return fmt.Errorf("lote %s: %w", l.LoteCode, domain.ErrLoteClosed)
		}
		var loaded *ledger.LoadedBatch
		if l.Status == entity.LoteEnSala {
			salaL := ledger.NewDeltaBatch()
			salaL.Add(l.DirtySkuCode, l.DirtySkuName, -l.Ingreso.TotalUnits)
			if loaded, err = salaL.Load(ctx, r.SalaL); err != nil {
				return err
			}
		}

		now := uc.clock.Current()
		previous := l.Status
		l.Status = entity.LoteCerrado
		l.ClosedBy = who.UserID
		l.ClosedByName = who.UserName
		l.ClosedAt = &now
		l.UpdatedAt = now

		if loaded != nil {
			if _, err := loaded.Write(ctx, now); err != nil {
				return err
			}
		}
		if err := r.Lotes.Update(ctx, l); err != nil {
			return err
		}
		detail := map[string]any{"estadoAnterior": string(previous)}
		if c := strings.TrimSpace(comment); c != "" {
			detail["comentario"] = c
		}
		if err := r.Lotes.AppendEvent(ctx, newEvent(l.ID, entity.EventLoteCerrado, who, now, detail)); err != nil {
			return err
		}
		closed = l
		return nil
	})
	if err != nil {
		uc.logRejected(err, id, "cierre")
		return nil, err
	}
	uc.log.Info().Str("lote", closed.LoteCode).Str("usuario", who.UserID).Msg("lote cerrado")
	return closed, nil
}

// Get obtiene un lote por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Lote, error) {
	var out *entity.Lote
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		l, err := getLote(ctx, r, id)
		out = l
		return err
	})
	return out, err
}

// Events eventos del lote en orden de registro.
func (uc *UseCase) Events(ctx context.Context, id string) ([]*entity.LoteEvent, error) {
	var out []*entity.LoteEvent
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		if _, err := getLote(ctx, r, id); err != nil {
			return err
		}
		evs, err := r.Lotes.ListEvents(ctx, id)
		out = evs
		return err
	})
	return out, err
}

// ListByStatus lotes en un estado.
func (uc *UseCase) ListByStatus(ctx context.Context, status entity.LoteStatus) ([]*entity.Lote, error) {
	if !status.Valid() {
		return nil, domain.Invalid("estado", "estado de lote desconocido %q", status)
	}
	var out []*entity.Lote
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		ls, err := r.Lotes.ListByStatus(ctx, status)
		out = ls
		return err
	})
	return out, err
}

func (uc *UseCase) logRejected(err error, id, op string) {
	if domain.IsStatePrecondition(err) {
		uc.log.Warn().Err(err).Str("lote", id).Str("operacion", op).Msg("operación de lote rechazada")
	}
}

func getLote(ctx context.Context, r ledger.Repos, id string) (*entity.Lote, error) {
	l, err := r.Lotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func loteDoc(l *entity.Lote) ledger.DocRef {
	return ledger.DocRef{ID: l.ID, Kind: entity.DocLote, Status: entity.StatusValidado, Ref: l.LoteCode}
}

func newEvent(loteID string, t entity.LoteEventType, who entity.Identity, at time.Time, detail map[string]any) *entity.LoteEvent {
	return &entity.LoteEvent{
		ID:        uuid.New().String(),
		LoteID:    loteID,
		Type:      t,
		Detail:    detail,
		UserID:    who.UserID,
		UserName:  who.UserName,
		CreatedAt: at,
	}
}
