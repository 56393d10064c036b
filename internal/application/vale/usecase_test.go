package vale_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/application/vale"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/inventory"
	"github.com/jhoicas/salal-stock/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	operador   = entity.Identity{UserID: "u-1", UserName: "Operador"}
	supervisor = entity.Identity{UserID: "u-2", UserName: "Supervisor"}
)

func fixedClock() ledger.Clock {
	t0 := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	return ledger.Clock{Now: func() time.Time { return t0 }, Location: time.UTC}
}

func newUseCase(t *testing.T) (*vale.UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	catalog := ledger.NewCatalog(memory.NewCatalog(
		entity.SKU{Code: "X", Name: "Producto X", UnitsPerBox: 100, UnitsPerTray: 10},
		entity.SKU{Code: "Y", Name: "Producto Y", UnitsPerBox: 100, UnitsPerTray: 10},
	), entity.UnitConversion{}, zerolog.Nop())
	return vale.NewUseCase(store, catalog, fixedClock(), zerolog.Nop()), store
}

func input(kind entity.ValeKind, sku string, units int64) vale.CreateInput {
	return vale.CreateInput{
		Kind:            kind,
		OriginID:        "pab-1",
		OriginName:      "Pabellón 1",
		DestinationID:   "bod-1",
		DestinationName: "Bodega",
		Lines:           []vale.LineInput{{SkuCode: sku, Units: units}},
		Who:             operador,
	}
}

func settledSum(store *memory.Store, sku string) int64 {
	var sum int64
	for _, m := range store.Movements() {
		if m.SkuCode == sku && m.Settled() {
			sum += m.Quantity
		}
	}
	return sum
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_EgresoDescuentaStockYRegistraMovimiento(t *testing.T) {
	uc, store := newUseCase(t)
	store.PutStock(entity.NamespaceStock, "X", "Producto X", 1000)

	v, err := uc.Create(context.Background(), input(entity.ValeEgreso, "X", 500))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusValidado, v.Status)
	assert.Equal(t, int64(500), store.Quantity(entity.NamespaceStock, "X"))

	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, "X", movs[0].SkuCode)
	assert.Equal(t, int64(-500), movs[0].Quantity)
	assert.Equal(t, entity.StatusValidado, movs[0].CausingDocStatus)
	assert.Equal(t, entity.MovementEgreso, movs[0].Kind)
	assert.Equal(t, v.ID, movs[0].CausingDocID)
	assert.Equal(t, "Pabellón 1", movs[0].OriginLabel)
	assert.Equal(t, "2026-03-10", movs[0].BusinessDate)
	assert.Equal(t, "14:30:00", movs[0].BusinessTime)
}

func TestCreate_ReingresoSumaStock(t *testing.T) {
	uc, store := newUseCase(t)

	_, err := uc.Create(context.Background(), input(entity.ValeReingreso, "X", 120))
	require.NoError(t, err)
	assert.Equal(t, int64(120), store.Quantity(entity.NamespaceStock, "X"))
	assert.Equal(t, settledSum(store, "X"), store.Quantity(entity.NamespaceStock, "X"))
}

func TestCreate_EgresoPermiteSaldoNegativo(t *testing.T) {
	uc, store := newUseCase(t)

	_, err := uc.Create(context.Background(), input(entity.ValeEgreso, "X", 30))
	require.NoError(t, err)
	assert.Equal(t, int64(-30), store.Quantity(entity.NamespaceStock, "X"))
}

func TestCreate_IngresoQuedaPendienteSinEfecto(t *testing.T) {
	uc, store := newUseCase(t)
	store.PutStock(entity.NamespaceStock, "Y", "Producto Y", 40)

	v, err := uc.Create(context.Background(), input(entity.ValeIngreso, "Y", 300))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPendiente, v.Status)
	assert.Nil(t, v.ValidatedAt)
	assert.Equal(t, int64(40), store.Quantity(entity.NamespaceStock, "Y"))
	assert.Empty(t, store.Movements())
}

func TestCreate_CalculaTotalesConCatalogo(t *testing.T) {
	uc, _ := newUseCase(t)
	in := input(entity.ValeIngreso, "x", 0)
	in.Lines = []vale.LineInput{{SkuCode: "x", Boxes: 2, Trays: 3, Units: 4}, {SkuCode: "DESCONOCIDO", Boxes: 1}}

	v, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, "X", v.Lines[0].SkuCode, "el código se normaliza")
	assert.Equal(t, int64(234), v.Lines[0].TotalUnits)
	assert.Equal(t, "DESCONOCIDO", v.Lines[1].SkuName, "SKU desconocido usa el código como nombre")
	assert.Equal(t, int64(180), v.Lines[1].TotalUnits, "SKU desconocido usa 180 unidades por caja")
	assert.Equal(t, int64(414), v.TotalUnits)
}

func TestCreate_LineasDelMismoSkuSeAgreganEnStock(t *testing.T) {
	uc, store := newUseCase(t)
	in := input(entity.ValeReingreso, "X", 0)
	in.Lines = []vale.LineInput{{SkuCode: "X", Units: 10}, {SkuCode: "X", Units: 15}}

	_, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(25), store.Quantity(entity.NamespaceStock, "X"))
	assert.Len(t, store.Movements(), 2, "un movimiento por línea")
}

func TestCreate_NumeracionDiariaPorTipo(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	a, err := uc.Create(ctx, input(entity.ValeEgreso, "X", 1))
	require.NoError(t, err)
	b, err := uc.Create(ctx, input(entity.ValeEgreso, "X", 1))
	require.NoError(t, err)
	c, err := uc.Create(ctx, input(entity.ValeIngreso, "X", 1))
	require.NoError(t, err)

	assert.Equal(t, 1, a.DailySequenceNumber)
	assert.Equal(t, 2, b.DailySequenceNumber)
	assert.Equal(t, 1, c.DailySequenceNumber, "cada tipo tiene su propio contador")
	assert.Equal(t, "EGR-20260310-002", b.Reference)
	assert.Equal(t, "ING-20260310-001", c.Reference)
}

func TestCreate_NumeracionConcurrenteSinDuplicados(t *testing.T) {
	uc, _ := newUseCase(t)
	const n = 20
	var wg sync.WaitGroup
	seqs := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := uc.Create(context.Background(), input(entity.ValeReingreso, "X", 1))
			if err == nil {
				seqs <- v.DailySequenceNumber
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := map[int]bool{}
	for s := range seqs {
		assert.False(t, seen[s], "número %d repetido", s)
		seen[s] = true
	}
}

func TestCreate_ValidacionesAntesDeLaTransaccion(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()

	cases := map[string]vale.CreateInput{
		"sin lineas":  func() vale.CreateInput { in := input(entity.ValeEgreso, "X", 1); in.Lines = nil; return in }(),
		"total cero":  input(entity.ValeEgreso, "X", 0),
		"negativo":    input(entity.ValeEgreso, "X", -5),
		"sin sku":     input(entity.ValeEgreso, " ", 5),
		"tipo":        input(entity.ValeKind("traspaso"), "X", 5),
		"sin usuario": func() vale.CreateInput { in := input(entity.ValeEgreso, "X", 1); in.Who = entity.Identity{}; return in }(),
		"sin destino": func() vale.CreateInput {
			in := input(entity.ValeEgreso, "X", 1)
			in.DestinationID, in.DestinationName = "", ""
			return in
		}(),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
	assert.Empty(t, store.Movements())
}

func TestCreate_CantidadFueraDeRangoNoMueveStock(t *testing.T) {
	uc, store := newUseCase(t)
	store.PutStock(entity.NamespaceStock, "X", "Producto X", 1000)
	ctx := context.Background()

	// 184467440737095517 cajas * 100 desborda int64 y daría 84 unidades
	in := input(entity.ValeEgreso, "X", 0)
	in.Lines = []vale.LineInput{{SkuCode: "X", Boxes: 184467440737095517}}
	_, err := uc.Create(ctx, in)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "lineas[0]", ve.Field)

	// cada línea en rango pero el total del vale no
	in.Lines = []vale.LineInput{{SkuCode: "X", Units: inventory.MaxUnits}, {SkuCode: "Y", Units: 1}}
	_, err = uc.Create(ctx, in)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "totalUnidades", ve.Field)

	assert.Equal(t, int64(1000), store.Quantity(entity.NamespaceStock, "X"))
	assert.Empty(t, store.Movements())
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y rechazo
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_IngresoSumaStockUnaSolaVez(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	store.PutStock(entity.NamespaceStock, "Y", "Producto Y", 0)

	v, err := uc.Create(ctx, input(entity.ValeIngreso, "Y", 300))
	require.NoError(t, err)

	got, err := uc.Validate(ctx, v.ID, supervisor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusValidado, got.Status)
	assert.Equal(t, "u-2", got.ValidatorID)
	require.NotNil(t, got.ValidatedAt)
	assert.Equal(t, int64(300), store.Quantity(entity.NamespaceStock, "Y"))
	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, int64(300), movs[0].Quantity)
	assert.Equal(t, "u-2", movs[0].UserID)

	_, err = uc.Validate(ctx, v.ID, supervisor)
	assert.ErrorIs(t, err, domain.ErrValeNotPending)
	assert.Equal(t, int64(300), store.Quantity(entity.NamespaceStock, "Y"))
	assert.Len(t, store.Movements(), 1)
}

func TestValidate_ConcurrenteSoloUnoLiquida(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	v, err := uc.Create(ctx, input(entity.ValeIngreso, "Y", 50))
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Validate(ctx, v.ID, supervisor); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(50), store.Quantity(entity.NamespaceStock, "Y"))
	assert.Len(t, store.Movements(), 1)
}

func TestValidate_EgresoNoSeValida(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	v, err := uc.Create(ctx, input(entity.ValeEgreso, "X", 5))
	require.NoError(t, err)

	_, err = uc.Validate(ctx, v.ID, supervisor)
	assert.ErrorIs(t, err, domain.ErrValeKindNotValidatable)
}

func TestValidate_NoExiste(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Validate(context.Background(), "nope", supervisor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReject_TerminalSinEfecto(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	v, err := uc.Create(ctx, input(entity.ValeIngreso, "Y", 70))
	require.NoError(t, err)

	got, err := uc.Reject(ctx, v.ID, "cantidad no coincide", supervisor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRechazado, got.Status)
	assert.Equal(t, "cantidad no coincide", got.RejectionReason)
	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceStock, "Y"))

	_, err = uc.Validate(ctx, v.ID, supervisor)
	assert.ErrorIs(t, err, domain.ErrValeNotPending)
	_, err = uc.Reject(ctx, v.ID, "", supervisor)
	assert.ErrorIs(t, err, domain.ErrValeNotPending)
	assert.Empty(t, store.Movements())

	stored, err := uc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRechazado, stored.Status)
}

type abortingRunner struct {
	inner ledger.TxRunner
}

var errAbort = errors.New("abort")

func (a abortingRunner) Run(ctx context.Context, fn func(context.Context, ledger.Repos) error) error {
	return a.inner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		if err := fn(ctx, r); err != nil {
			return err
		}
		return errAbort
	})
}

func TestValidate_AbortoDejaValePendiente(t *testing.T) {
	store := memory.New()
	catalog := ledger.NewCatalog(nil, entity.UnitConversion{}, zerolog.Nop())
	ok := vale.NewUseCase(store, catalog, fixedClock(), zerolog.Nop())
	failing := vale.NewUseCase(abortingRunner{inner: store}, catalog, fixedClock(), zerolog.Nop())
	ctx := context.Background()

	v, err := ok.Create(ctx, input(entity.ValeIngreso, "Y", 10))
	require.NoError(t, err)

	_, err = failing.Validate(ctx, v.ID, supervisor)
	require.ErrorIs(t, err, errAbort)

	stored, err := ok.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendiente, stored.Status)
	assert.Empty(t, store.Movements())
	assert.Equal(t, int64(0), store.Quantity(entity.NamespaceStock, "Y"))

	_, err = ok.Validate(ctx, v.ID, supervisor)
	require.NoError(t, err, "reintentar desde cero es seguro")
	assert.Equal(t, int64(10), store.Quantity(entity.NamespaceStock, "Y"))
}
