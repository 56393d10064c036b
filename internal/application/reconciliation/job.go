package reconciliation

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

// Drift diferencia encontrada entre el saldo guardado y el reconstruido.
type Drift struct {
	Namespace entity.StockNamespace `json:"namespace"`
	SkuCode   string                `json:"skuCodigo"`
	Previous  int64                 `json:"anterior"`
	Rebuilt   int64                 `json:"reconstruido"`
}

// Report resultado de una reconstrucción.
type Report struct {
	Movements  int       `json:"movimientos"`
	Skus       int       `json:"skus"`
	Drifts     []Drift   `json:"diferencias"`
	StartedAt  time.Time `json:"inicio"`
	FinishedAt time.Time `json:"fin"`
	Shared     bool      `json:"compartido"`
}

// Job reconstruye los saldos desde el libro de movimientos. Es la vía de recuperación cuando
// stock y movimientos divergen.
type Job struct {
	txRunner ledger.TxRunner
	clock    ledger.Clock
	log      zerolog.Logger
	group    singleflight.Group
}

// NewJob construye el job.
func NewJob(txRunner ledger.TxRunner, clock ledger.Clock, log zerolog.Logger) *Job {
	return &Job{txRunner: txRunner, clock: clock, log: log}
}

// Run ejecuta la reconciliación. Las ejecuciones concurrentes se agrupan en una sola; la
// cancelación de ctx libera solo a este llamador y no aborta la ejecución compartida.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	ch := j.group.DoChan("reconcile", func() (any, error) {
		return j.run(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rep := *res.Val.(*Report)
		rep.Shared = res.Shared
		return &rep, nil
	}
}

type total struct {
	name     string
	quantity int64
}

func (j *Job) run(ctx context.Context) (*Report, error) {
	rep := &Report{StartedAt: j.clock.Current()}
	err := j.txRunner.Run(ctx, func(ctx context.Context, r ledger.Repos) error {
		rep.Movements, rep.Skus, rep.Drifts = 0, 0, nil

		// Lecturas.
		stockTotals := map[string]*total{}
		if err := r.Movements.Each(ctx, func(m *entity.MovementEntry) error {
			if !m.Settled() {
				return nil
			}
			rep.Movements++
			t, ok := stockTotals[m.SkuCode]
			if !ok {
				t = &total{name: m.SkuName}
				stockTotals[m.SkuCode] = t
			}
			t.quantity += m.Quantity
			return nil
		}); err != nil {
			return err
		}
		stock, err := r.Stock.List(ctx)
		if err != nil {
			return err
		}
		enSala, err := r.Lotes.ListByStatus(ctx, entity.LoteEnSala)
		if err != nil {
			return err
		}
		salaTotals := map[string]*total{}
		for _, l := range enSala {
			t, ok := salaTotals[l.DirtySkuCode]
			if !ok {
				t = &total{name: l.DirtySkuName}
				salaTotals[l.DirtySkuCode] = t
			}
			t.quantity += l.Ingreso.TotalUnits
		}
		salaL, err := r.SalaL.List(ctx)
		if err != nil {
			return err
		}

		// Escrituras.
		now := j.clock.Current()
		d1, err := rebuild(ctx, r.Stock, entity.NamespaceStock, stock, stockTotals, now)
		if err != nil {
			return err
		}
		d2, err := rebuild(ctx, r.SalaL, entity.NamespaceSalaL, salaL, salaTotals, now)
		if err != nil {
			return err
		}
		rep.Skus = len(stockTotals)
		rep.Drifts = append(d1, d2...)
		return nil
	})
	if err != nil {
		j.log.Error().Err(err).Msg("reconciliación fallida")
		return nil, err
	}
	rep.FinishedAt = j.clock.Current()
	ev := j.log.Info()
	if len(rep.Drifts) > 0 {
		ev = j.log.Warn()
	}
	ev.Int("movimientos", rep.Movements).Int("skus", rep.Skus).Int("diferencias", len(rep.Drifts)).Msg("reconciliación de stock completada")
	return rep, nil
}

// rebuild deja cada saldo igual al total reconstruido; los SKUs sin total quedan en 0.
// Solo escribe los registros que difieren o que aún no existen.
func rebuild(ctx context.Context, repo repository.StockRepository, ns entity.StockNamespace, current []*entity.StockRecord, totals map[string]*total, now time.Time) ([]Drift, error) {
	existing := make(map[string]*entity.StockRecord, len(current))
	for _, rec := range current {
		existing[rec.SkuCode] = rec
	}
	codes := make([]string, 0, len(totals)+len(existing))
	for code := range totals {
		codes = append(codes, code)
	}
	for code := range existing {
		if _, ok := totals[code]; !ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	var drifts []Drift
	for _, code := range codes {
		var want int64
		name := code
		if t, ok := totals[code]; ok {
			want = t.quantity
			if t.name != "" {
				name = t.name
			}
		}
		rec, ok := existing[code]
		if ok && rec.Quantity == want {
			continue
		}
		if !ok {
			rec = &entity.StockRecord{Namespace: ns, SkuCode: code, SkuName: name, CreatedAt: now}
		}
		if rec.Quantity != want {
			drifts = append(drifts, Drift{Namespace: ns, SkuCode: code, Previous: rec.Quantity, Rebuilt: want})
		}
		rec.Quantity = want
		rec.UpdatedAt = now
		if rec.SkuName == "" {
			rec.SkuName = name
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			return nil, err
		}
	}
	return drifts, nil
}
