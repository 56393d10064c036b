package salal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/application/salal"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
	"github.com/jhoicas/salal-stock/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var operador = entity.Identity{UserID: "u-1", UserName: "Operador Sala L"}

func fixedClock() ledger.Clock {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return ledger.Clock{Now: func() time.Time { return t0 }, Location: time.UTC}
}

func catalog() *ledger.Catalog {
	return ledger.NewCatalog(memory.NewCatalog(
		entity.SKU{Code: "BLA MAN", Name: "Blanco manchado", UnitsPerBox: 180, UnitsPerTray: 30},
		entity.SKU{Code: "BLA SINCAL", Name: "Blanco sin calibrar", UnitsPerBox: 180, UnitsPerTray: 30},
		entity.SKU{Code: "DES", Name: "Descarte", UnitsPerBox: 180, UnitsPerTray: 30},
	), entity.UnitConversion{}, zerolog.Nop())
}

func newUseCase(runner ledger.TxRunner) *salal.UseCase {
	return salal.NewUseCase(runner, catalog(), fixedClock(), salal.DefaultSettings(), zerolog.Nop())
}

func createLote(t *testing.T, uc *salal.UseCase, sku string, units int64) *entity.Lote {
	t.Helper()
	l, err := uc.CreateLote(context.Background(), salal.CreateInput{
		OriginID:     "pab-3",
		OriginName:   "Pabellón 3",
		DirtySkuCode: sku,
		Quantity:     salal.Quantity{Units: units},
		Who:          operador,
	})
	require.NoError(t, err)
	return l
}

func lavar(t *testing.T, uc *salal.UseCase, id string, clean int64, kg string) *entity.Lote {
	t.Helper()
	l, err := uc.ConfirmLavado(context.Background(), id, salal.LavadoInput{
		Clean:   salal.Quantity{Units: clean},
		WasteKg: decimal.RequireFromString(kg),
		Who:     operador,
	})
	require.NoError(t, err)
	return l
}

func calibrationInput() salal.CalibrationInput {
	return salal.CalibrationInput{
		Lines: []salal.CalibrationLineInput{
			{SkuCode: "BLA 1", Quantity: salal.Quantity{Units: 600}},
			{SkuCode: "BLA 2", Quantity: salal.Quantity{Units: 250}},
		},
		WasteKg: decimal.NewFromInt(3),
		Who:     operador,
	}
}

func assertConservation(t *testing.T, store *memory.Store) {
	t.Helper()
	sums := map[string]int64{}
	for _, m := range store.Movements() {
		if m.Settled() {
			sums[m.SkuCode] += m.Quantity
		}
	}
	for sku, sum := range sums {
		assert.Equal(t, sum, store.Quantity(entity.NamespaceStock, sku), "sku %s", sku)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ingreso
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateLote_EnSalaConStockSalaL(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)

	l := createLote(t, uc, "bla man", 1000)

	assert.Equal(t, entity.LoteEnSala, l.Status)
	assert.Equal(t, "L-20260310-001", l.LoteCode)
	assert.Equal(t, "BLA MAN", l.DirtySkuCode)
	assert.Equal(t, "BLA SINCAL", l.CleanSkuCode)
	assert.Equal(t, int64(1000), l.Ingreso.TotalUnits)
	assert.Equal(t, int64(1000), store.Quantity(entity.NamespaceSalaL, "BLA MAN"))
	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceStock, "BLA MAN"))
	assert.Empty(t, store.Movements(), "el ingreso no toca el stock principal")

	evs, err := uc.Events(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.EventIngresoRegistrado, evs[0].Type)

	second := createLote(t, uc, "BLA MAN", 10)
	assert.Equal(t, "L-20260310-002", second.LoteCode)
}

func TestCreateLote_ResuelveSkuLimpio(t *testing.T) {
	uc := newUseCase(memory.New())

	assert.Equal(t, "COL SINCAL", createLote(t, uc, "COL MAN", 5).CleanSkuCode)
	assert.Equal(t, "BLA SINCAL", createLote(t, uc, "XYZ", 5).CleanSkuCode, "prefijo desconocido usa el respaldo BLA")
}

func TestCreateLote_Validaciones(t *testing.T) {
	uc := newUseCase(memory.New())
	ctx := context.Background()

	_, err := uc.CreateLote(ctx, salal.CreateInput{DirtySkuCode: "BLA MAN", Who: operador})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateLote(ctx, salal.CreateInput{DirtySkuCode: "", Quantity: salal.Quantity{Units: 1}, Who: operador})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateLote(ctx, salal.CreateInput{DirtySkuCode: "BLA MAN", Quantity: salal.Quantity{Units: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateLote_SinSkuLimpioConfigurado(t *testing.T) {
	store := memory.New()
	settings := salal.DefaultSettings()
	settings.CleanSkus = inventory.NewCleanSkuTable(nil, []inventory.PrefixRule{{Prefix: "COL", CleanSku: "COL SINCAL"}}, "")
	uc := salal.NewUseCase(store, catalog(), fixedClock(), settings, zerolog.Nop())

	_, err := uc.CreateLote(context.Background(), salal.CreateInput{
		DirtySkuCode: "XYZ MAN",
		Quantity:     salal.Quantity{Units: 100},
		Who:          operador,
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "skuSucio", ve.Field)

	lotes, err := uc.ListByStatus(context.Background(), entity.LoteEnSala)
	require.NoError(t, err)
	assert.Empty(t, lotes)
	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceSalaL, "XYZ MAN"))
}

func TestPipeline_CantidadesFueraDeRango(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	ctx := context.Background()

	_, err := uc.CreateLote(ctx, salal.CreateInput{
		DirtySkuCode: "BLA MAN",
		Quantity:     salal.Quantity{Boxes: inventory.MaxUnits},
		Who:          operador,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	l := createLote(t, uc, "BLA MAN", 1000)
	_, err = uc.ConfirmLavado(ctx, l.ID, salal.LavadoInput{
		Clean:   salal.Quantity{Trays: inventory.MaxUnits},
		WasteKg: decimal.Zero,
		Who:     operador,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ConfirmLavado(ctx, l.ID, salal.LavadoInput{
		Clean:   salal.Quantity{Units: 900},
		WasteKg: decimal.RequireFromString("1e20"),
		Who:     operador,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	lavar(t, uc, l.ID, 900, "6")
	in := calibrationInput()
	in.Lines[0].Quantity = salal.Quantity{Boxes: 184467440737095517}
	_, err = uc.ConfirmCalibration(ctx, l.ID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LoteLavadoOK, got.Status)
	assert.Equal(t, int64(900), store.Quantity(entity.NamespaceStock, "BLA SINCAL"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lavado
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmLavado_AcreditaLimpioYDescarte(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	l := createLote(t, uc, "BLA MAN", 1000)

	got := lavar(t, uc, l.ID, 900, "6")

	assert.Equal(t, entity.LoteLavadoOK, got.Status)
	assert.Equal(t, int64(900), got.Lavado.TotalUnits)
	assert.Equal(t, int64(100), got.WasteUnits)
	require.NotNil(t, got.Metrics)
	assert.Equal(t, int64(0), got.Metrics.Difference)
	assert.True(t, decimal.NewFromInt(90).Equal(got.Metrics.CleanPct), got.Metrics.CleanPct.String())
	assert.True(t, decimal.NewFromInt(10).Equal(got.Metrics.WastePct), got.Metrics.WastePct.String())

	assert.Equal(t, int64(900), store.Quantity(entity.NamespaceStock, "BLA SINCAL"))
	assert.Equal(t, int64(100), store.Quantity(entity.NamespaceStock, "DES"))
	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceSalaL, "BLA MAN"))

	movs := store.Movements()
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.DocLote, m.CausingDocKind)
		assert.Equal(t, entity.StatusValidado, m.CausingDocStatus)
		assert.Equal(t, "Sala L", m.OriginLabel)
		assert.Equal(t, l.ID, m.CausingDocID)
	}
	assertConservation(t, store)

	evs, err := uc.Events(context.Background(), l.ID)
	require.NoError(t, err)
	types := make([]entity.LoteEventType, 0, len(evs))
	for _, ev := range evs {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []entity.LoteEventType{entity.EventIngresoRegistrado, entity.EventLavadoRegistrado, entity.EventSalaLConfirmado}, types)
}

func TestConfirmLavado_DiferenciaNoBloquea(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	l := createLote(t, uc, "BLA MAN", 1000)

	got := lavar(t, uc, l.ID, 850, "3")

	assert.Equal(t, int64(50), got.WasteUnits)
	assert.Equal(t, int64(-100), got.Metrics.Difference)
	assert.Equal(t, int64(850), store.Quantity(entity.NamespaceStock, "BLA SINCAL"))
}

func TestConfirmLavado_SinDescarteUnSoloMovimiento(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	l := createLote(t, uc, "BLA MAN", 100)

	lavar(t, uc, l.ID, 100, "0")
	assert.Len(t, store.Movements(), 1)
	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceStock, "DES"))
}

func TestConfirmLavado_SoloUnaVez(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	l := createLote(t, uc, "BLA MAN", 1000)
	lavar(t, uc, l.ID, 900, "6")

	_, err := uc.ConfirmLavado(context.Background(), l.ID, salal.LavadoInput{Clean: salal.Quantity{Units: 900}, Who: operador})
	assert.ErrorIs(t, err, domain.ErrLoteAlreadyConfirmed)
	assert.Equal(t, int64(900), store.Quantity(entity.NamespaceStock, "BLA SINCAL"))
	assert.Len(t, store.Movements(), 2)
}

func TestConfirmLavado_DescarteNegativo(t *testing.T) {
	uc := newUseCase(memory.New())
	l := createLote(t, uc, "BLA MAN", 10)

	_, err := uc.ConfirmLavado(context.Background(), l.ID, salal.LavadoInput{
		Clean:   salal.Quantity{Units: 10},
		WasteKg: decimal.NewFromInt(-1),
		Who:     operador,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Calibración
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmCalibration_ConsumeLimpioYRepartes(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	ctx := context.Background()
	l := createLote(t, uc, "BLA MAN", 1000)
	lavar(t, uc, l.ID, 900, "6")

	got, err := uc.ConfirmCalibration(ctx, l.ID, calibrationInput())
	require.NoError(t, err)

	require.True(t, got.Calibrated())
	assert.Equal(t, entity.LoteLavadoOK, got.Status, "la calibración no cambia el estado")
	cal := got.Calibration
	assert.Equal(t, int64(900), cal.SourceUnits)
	assert.Equal(t, int64(50), cal.WasteUnits)
	assert.Equal(t, int64(850), cal.TotalCalibratedUnits)
	assert.Equal(t, int64(900), cal.TotalOutputUnits)
	assert.Equal(t, int64(0), cal.Difference)

	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceStock, "BLA SINCAL"))
	assert.Equal(t, int64(600), store.Quantity(entity.NamespaceStock, "BLA 1"))
	assert.Equal(t, int64(250), store.Quantity(entity.NamespaceStock, "BLA 2"))
	assert.Equal(t, int64(150), store.Quantity(entity.NamespaceStock, "DES"))
	assert.Len(t, store.Movements(), 6)
	assertConservation(t, store)

	before := len(store.Movements())
	_, err = uc.ConfirmCalibration(ctx, l.ID, calibrationInput())
	assert.ErrorIs(t, err, domain.ErrLoteAlreadyCalibrated)
	assert.Len(t, store.Movements(), before)
	assert.Equal(t, int64(600), store.Quantity(entity.NamespaceStock, "BLA 1"))
	assert.Equal(t, int64(150), store.Quantity(entity.NamespaceStock, "DES"))
}

func TestConfirmCalibration_RequiereLavado(t *testing.T) {
	uc := newUseCase(memory.New())
	l := createLote(t, uc, "BLA MAN", 1000)

	_, err := uc.ConfirmCalibration(context.Background(), l.ID, calibrationInput())
	assert.ErrorIs(t, err, domain.ErrLoteNotWashed)
}

func TestConfirmCalibration_LoteCerrado(t *testing.T) {
	uc := newUseCase(memory.New())
	ctx := context.Background()
	l := createLote(t, uc, "BLA MAN", 1000)
	lavar(t, uc, l.ID, 900, "6")
	_, err := uc.Close(ctx, l.ID, "", operador)
	require.NoError(t, err)

	_, err = uc.ConfirmCalibration(ctx, l.ID, calibrationInput())
	assert.ErrorIs(t, err, domain.ErrLoteClosed)
}

func TestConfirmCalibration_SinLineas(t *testing.T) {
	uc := newUseCase(memory.New())
	_, err := uc.ConfirmCalibration(context.Background(), "x", salal.CalibrationInput{Who: operador})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type abortingRunner struct{ inner ledger.TxRunner }

var errAbort = errors.New("abort")

func (a abortingRunner) Run(ctx context.Context, fn func(context.Context, ledger.Repos) error) error {
	return a.inner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		if err := fn(ctx, r); err != nil {
			return err
		}
		return errAbort
	})
}

func TestConfirmCalibration_AbortoSinAplicacionParcial(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	failing := newUseCase(abortingRunner{inner: store})
	ctx := context.Background()
	l := createLote(t, uc, "BLA MAN", 1000)
	lavar(t, uc, l.ID, 900, "6")

	in := calibrationInput()
	in.Lines = append(in.Lines, salal.CalibrationLineInput{SkuCode: "BLA 3", Quantity: salal.Quantity{Units: 40}})
	_, err := failing.ConfirmCalibration(ctx, l.ID, in)
	require.ErrorIs(t, err, errAbort)

	assert.Equal(t, int64(900), store.Quantity(entity.NamespaceStock, "BLA SINCAL"))
	for _, sku := range []string{"BLA 1", "BLA 2", "BLA 3"} {
		assert.Equal(t, int64(0), store.Quantity(entity.NamespaceStock, sku), sku)
	}
	assert.Equal(t, int64(100), store.Quantity(entity.NamespaceStock, "DES"))

	stored, err := uc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, stored.Calibrated())

	_, err = uc.ConfirmCalibration(ctx, l.ID, in)
	require.NoError(t, err, "reintentar desde cero es seguro")
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestClose_SoloUnaVezSinStockPrincipal(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store)
	ctx := context.Background()
	l := createLote(t, uc, "BLA MAN", 300)

	got, err := uc.Close(ctx, l.ID, "material contaminado", operador)
	require.NoError(t, err)
	assert.Equal(t, entity.LoteCerrado, got.Status)
	require.NotNil(t, got.ClosedAt)
	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceSalaL, "BLA MAN"))
	assert.Empty(t, store.Movements())

	_, err = uc.Close(ctx, l.ID, "", operador)
	assert.ErrorIs(t, err, domain.ErrLoteClosed)

	_, err = uc.ConfirmLavado(ctx, l.ID, salal.LavadoInput{Clean: salal.Quantity{Units: 1}, Who: operador})
	assert.ErrorIs(t, err, domain.ErrLoteClosed)

	cerrados, err := uc.ListByStatus(ctx, entity.LoteCerrado)
	require.NoError(t, err)
	require.Len(t, cerrados, 1)
	assert.Equal(t, l.ID, cerrados[0].ID)
}

func TestGet_NoExiste(t *testing.T) {
	uc := newUseCase(memory.New())
	_, err := uc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
