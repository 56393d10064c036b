package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/salal-stock/internal/application/inventory"
	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/infrastructure/memory"
)

var admin = entity.Identity{UserID: "adm", UserName: "Administrador"}

func newUseCase() (*inventory.UseCase, *memory.Store) {
	store := memory.New()
	clock := ledger.Clock{Now: func() time.Time { return time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC) }, Location: time.UTC}
	catalog := ledger.NewCatalog(memory.NewCatalog(
		entity.SKU{Code: "BLA 1", Name: "Blanco primera", UnitsPerBox: 180, UnitsPerTray: 30},
	), entity.UnitConversion{}, zerolog.Nop())
	return inventory.NewUseCase(store, catalog, clock, zerolog.Nop()), store
}

func TestAdjust_RegistraMovimientoDeAjuste(t *testing.T) {
	uc, store := newUseCase()
	store.PutStock(entity.NamespaceStock, "BLA 1", "Blanco primera", 40)

	adj, err := uc.Adjust(context.Background(), inventory.AdjustInput{SkuCode: "bla 1", Delta: -55, Reason: "conteo físico", Who: admin})
	require.NoError(t, err)

	assert.Equal(t, int64(40), adj.Previous)
	assert.Equal(t, int64(-15), adj.Quantity, "se permite saldo negativo")
	assert.Equal(t, int64(-15), store.Quantity(entity.NamespaceStock, "BLA 1"))

	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementAjuste, movs[0].Kind)
	assert.Equal(t, entity.DocAdjustment, movs[0].CausingDocKind)
	assert.Equal(t, entity.StatusValidado, movs[0].CausingDocStatus)
	assert.Equal(t, int64(-55), movs[0].Quantity)
	assert.Equal(t, adj.MovementID, movs[0].ID)
}

func TestAdjust_Validaciones(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	cases := map[string]inventory.AdjustInput{
		"delta cero":  {SkuCode: "X", Delta: 0, Reason: "r", Who: admin},
		"sin motivo":  {SkuCode: "X", Delta: 3, Reason: "  ", Who: admin},
		"sin sku":     {SkuCode: "", Delta: 3, Reason: "r", Who: admin},
		"sin usuario": {SkuCode: "X", Delta: 3, Reason: "r"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Adjust(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, store.Movements())
}

func TestGetStock_DesgloseYSkuSinRegistro(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()
	store.PutStock(entity.NamespaceStock, "BLA 1", "Blanco primera", 400)

	v, err := uc.GetStock(ctx, entity.NamespaceStock, "BLA 1")
	require.NoError(t, err)
	assert.Equal(t, entity.CBU{Boxes: 2, Trays: 1, Units: 10, TotalUnits: 400}, v.Breakdown)

	empty, err := uc.GetStock(ctx, entity.NamespaceStock, "NUEVO")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Quantity)
	assert.Equal(t, "NUEVO", empty.SkuName)

	_, err = uc.GetStock(ctx, entity.StockNamespace("otro"), "BLA 1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListStockYMovimientos(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()
	store.PutStock(entity.NamespaceSalaL, "BLA MAN", "Blanco manchado", 90)
	for _, d := range []int64{5, -2, 7} {
		_, err := uc.Adjust(ctx, inventory.AdjustInput{SkuCode: "BLA 1", Delta: d, Reason: "r", Who: admin})
		require.NoError(t, err)
	}

	salaL, err := uc.ListStock(ctx, entity.NamespaceSalaL)
	require.NoError(t, err)
	require.Len(t, salaL, 1)
	assert.Equal(t, "BLA MAN", salaL[0].SkuCode)

	movs, err := uc.ListMovements(ctx, entity.MovementFilter{SkuCode: "bla 1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, int64(7), movs[0].Quantity, "más reciente primero")
	assert.Equal(t, int64(-2), movs[1].Quantity)
}
