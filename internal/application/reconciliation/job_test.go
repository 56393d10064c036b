package reconciliation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/application/reconciliation"
	"github.com/jhoicas/salal-stock/internal/application/salal"
	"github.com/jhoicas/salal-stock/internal/application/vale"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/infrastructure/memory"
)

var who = entity.Identity{UserID: "u-1", UserName: "Operador"}

type fixture struct {
	store *memory.Store
	vales *vale.UseCase
	lotes *salal.UseCase
	job   *reconciliation.Job
}

func newFixture() fixture {
	store := memory.New()
	clock := ledger.Clock{Now: func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }, Location: time.UTC}
	catalog := ledger.NewCatalog(nil, entity.UnitConversion{}, zerolog.Nop())
	return fixture{
		store: store,
		vales: vale.NewUseCase(store, catalog, clock, zerolog.Nop()),
		lotes: salal.NewUseCase(store, catalog, clock, salal.DefaultSettings(), zerolog.Nop()),
		job:   reconciliation.NewJob(store, clock, zerolog.Nop()),
	}
}

func (f fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.vales.Create(ctx, vale.CreateInput{
		Kind: entity.ValeReingreso, OriginName: "Cliente", DestinationName: "Bodega",
		Lines: []vale.LineInput{{SkuCode: "X", Units: 1000}}, Who: who,
	})
	require.NoError(t, err)
	_, err = f.vales.Create(ctx, vale.CreateInput{
		Kind: entity.ValeEgreso, OriginName: "Bodega", DestinationName: "Cliente",
		Lines: []vale.LineInput{{SkuCode: "X", Units: 500}}, Who: who,
	})
	require.NoError(t, err)
	_, err = f.vales.Create(ctx, vale.CreateInput{
		Kind: entity.ValeIngreso, OriginName: "Pabellón", DestinationName: "Bodega",
		Lines: []vale.LineInput{{SkuCode: "Y", Units: 300}}, Who: who,
	})
	require.NoError(t, err)

	washed, err := f.lotes.CreateLote(ctx, salal.CreateInput{DirtySkuCode: "BLA MAN", Quantity: salal.Quantity{Units: 1000}, Who: who})
	require.NoError(t, err)
	_, err = f.lotes.ConfirmLavado(ctx, washed.ID, salal.LavadoInput{Clean: salal.Quantity{Units: 900}, WasteKg: decimal.NewFromInt(6), Who: who})
	require.NoError(t, err)
	_, err = f.lotes.CreateLote(ctx, salal.CreateInput{DirtySkuCode: "COL MAN", Quantity: salal.Quantity{Units: 70}, Who: who})
	require.NoError(t, err)
}

func TestRun_RestauraSaldoCorrupto(t *testing.T) {
	f := newFixture()
	f.seed(t)
	f.store.PutStock(entity.NamespaceStock, "X", "X", 12345)
	f.store.PutStock(entity.NamespaceSalaL, "COL MAN", "COL MAN", 1)

	rep, err := f.job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(500), f.store.Quantity(entity.NamespaceStock, "X"))
	assert.Equal(t, int64(70), f.store.Quantity(entity.NamespaceSalaL, "COL MAN"))
	assert.Equal(t, []reconciliation.Drift{
		{Namespace: entity.NamespaceStock, SkuCode: "X", Previous: 12345, Rebuilt: 500},
		{Namespace: entity.NamespaceSalaL, SkuCode: "COL MAN", Previous: 1, Rebuilt: 70},
	}, rep.Drifts)
	assert.Equal(t, int64(0), f.store.Quantity(entity.NamespaceStock, "Y"), "el ingreso pendiente no cuenta")
	assert.Equal(t, int64(900), f.store.Quantity(entity.NamespaceStock, "BLA SINCAL"))
	assert.Equal(t, int64(100), f.store.Quantity(entity.NamespaceStock, "DES"))
}

func TestRun_SkuSinMovimientosQuedaEnCero(t *testing.T) {
	f := newFixture()
	f.store.PutStock(entity.NamespaceStock, "HUERFANO", "Huérfano", 42)

	rep, err := f.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.store.Quantity(entity.NamespaceStock, "HUERFANO"))
	require.Len(t, rep.Drifts, 1)
	assert.Equal(t, int64(42), rep.Drifts[0].Previous)
}

func TestRun_Idempotente(t *testing.T) {
	f := newFixture()
	f.seed(t)
	f.store.PutStock(entity.NamespaceStock, "DES", "DES", -3)
	ctx := context.Background()

	_, err := f.job.Run(ctx)
	require.NoError(t, err)
	first := map[string]int64{}
	for _, sku := range []string{"X", "Y", "BLA SINCAL", "DES"} {
		first[sku] = f.store.Quantity(entity.NamespaceStock, sku)
	}

	rep, err := f.job.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, rep.Drifts)
	for sku, q := range first {
		assert.Equal(t, q, f.store.Quantity(entity.NamespaceStock, sku), sku)
	}
}

func TestRun_ConcurrenteConsistente(t *testing.T) {
	f := newFixture()
	f.seed(t)
	f.store.PutStock(entity.NamespaceStock, "X", "X", 0)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.job.Run(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(500), f.store.Quantity(entity.NamespaceStock, "X"))
}

// gatedRunner retiene la primera transacción hasta cerrar release y falla si ctx ya terminó.
type gatedRunner struct {
	next    ledger.TxRunner
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedRunner) Run(ctx context.Context, fn func(context.Context, ledger.Repos) error) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.next.Run(ctx, fn)
}

func TestRun_CancelarUnLlamadorNoAbortaAlGrupo(t *testing.T) {
	f := newFixture()
	f.seed(t)
	f.store.PutStock(entity.NamespaceStock, "X", "X", 0)
	gate := &gatedRunner{next: f.store, entered: make(chan struct{}), release: make(chan struct{})}
	job := reconciliation.NewJob(gate, ledger.SystemClock(nil), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := job.Run(ctx)
		first <- err
	}()
	<-gate.entered

	type result struct {
		rep *reconciliation.Report
		err error
	}
	second := make(chan result, 1)
	go func() {
		rep, err := job.Run(context.Background())
		second <- result{rep, err}
	}()

	cancel()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("el llamador cancelado sigue esperando")
	}
	// el segundo llamador se suma a la ejecución retenida
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	res := <-second
	require.NoError(t, res.err)
	require.NotNil(t, res.rep)
	assert.Equal(t, int64(500), f.store.Quantity(entity.NamespaceStock, "X"))
}
