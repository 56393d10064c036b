package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

type tx struct {
	st      *state
	wrote   bool
	changes []entity.Change
}

func (t *tx) repos() ledger.Repos {
	return ledger.Repos{
		Stock:     &stockRepo{tx: t, ns: entity.NamespaceStock},
		SalaL:     &stockRepo{tx: t, ns: entity.NamespaceSalaL},
		Movements: &movementRepo{tx: t},
		Vales:     &valeRepo{tx: t},
		Lotes:     &loteRepo{tx: t},
		Sequences: &sequenceRepo{tx: t},
	}
}

func (t *tx) read() error {
	if t.wrote {
		return ErrReadAfterWrite
	}
	return nil
}

func (t *tx) write(collection, key string) {
	t.wrote = true
	t.changes = append(t.changes, entity.Change{Collection: collection, Key: key})
}

func collectionFor(ns entity.StockNamespace) string {
	if ns == entity.NamespaceSalaL {
		return entity.CollectionSalaL
	}
	return entity.CollectionStock
}

type stockRepo struct {
	tx *tx
	ns entity.StockNamespace
}

func (r *stockRepo) GetForUpdate(_ context.Context, skuCode string) (*entity.StockRecord, error) {
	if err := r.tx.read(); err != nil {
		return nil, err
	}
	rec, ok := r.tx.st.stock[r.ns][skuCode]
	if !ok {
		return &entity.StockRecord{Namespace: r.ns, SkuCode: skuCode}, nil
	}
	return &rec, nil
}

func (r *stockRepo) GetManyForUpdate(ctx context.Context, skuCodes []string) (map[string]*entity.StockRecord, error) {
	out := make(map[string]*entity.StockRecord, len(skuCodes))
	for _, code := range skuCodes {
		rec, err := r.GetForUpdate(ctx, code)
		if err != nil {
			return nil, err
		}
		out[code] = rec
	}
	return out, nil
}

func (r *stockRepo) Upsert(_ context.Context, rec *entity.StockRecord) error {
	cp := *rec
	cp.Namespace = r.ns
	r.tx.st.stock[r.ns][rec.SkuCode] = cp
	r.tx.write(collectionFor(r.ns), rec.SkuCode)
	return nil
}

func (r *stockRepo) List(_ context.Context) ([]*entity.StockRecord, error) {
	if err := r.tx.read(); err != nil {
		return nil, err
	}
	recs := r.tx.st.stock[r.ns]
	out := make([]*entity.StockRecord, 0, len(recs))
	for _, v := range recs {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkuCode < out[j].SkuCode })
	return out, nil
}

type movementRepo struct{ tx *tx }

func (r *movementRepo) Append(_ context.Context, m *entity.MovementEntry) error {
	r.tx.st.movements = append(r.tx.st.movements, *m)
	r.tx.write(entity.CollectionMovements, m.ID)
	return nil
}

func (r *movementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.MovementEntry, error) {
	if err := r.tx.read(); err != nil {
		return nil, err
	}
	var out []*entity.MovementEntry
	for i := len(r.tx.st.movements) - 1; i >= 0; i-- {
		m := r.tx.st.movements[i]
		if f.SkuCode != "" && m.SkuCode != f.SkuCode {
			continue
		}
		if f.CausingDocID != "" && m.CausingDocID != f.CausingDocID {
			continue
		}
		out = append(out, &m)
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *movementRepo) Each(_ context.Context, fn func(*entity.MovementEntry) error) error {
	if err := r.tx.read(); err != nil {
		return err
	}
	for _, m := range r.tx.st.movements {
		m := m
		if err := fn(&m); err != nil {
			return err
		}
	}
	return nil
}

type valeRepo struct{ tx *tx }

func (r *valeRepo) Create(_ context.Context, v *entity.Vale) error {
	if _, ok := r.tx.st.vales[v.ID]; ok {
		return fmt.Errorf("vale %s ya existe", v.ID)
	}
	r.tx.st.vales[v.ID] = cloneVale(*v)
	r.tx.write(entity.CollectionVales, v.ID)
	return nil
}

func (r *valeRepo) Get(_ context.Context, id string) (*entity.Vale, error) {
	if err := r.tx.read(); err != nil {
		return nil, err
	}
	v, ok := r.tx.st.vales[id]
	if !ok {
		return nil, nil
	}
	cp := cloneVale(v)
	return &cp, nil
}

func (r *valeRepo) Update(_ context.Context, v *entity.Vale) error {
	if _, ok := r.tx.st.vales[v.ID]; !ok {
		return domain.ErrNotFound
	}
	r.tx.st.vales[v.ID] = cloneVale(*v)
	r.tx.write(entity.CollectionVales, v.ID)
	return nil
}

func cloneVale(v entity.Vale) entity.Vale {
	v.Lines = append([]entity.ValeLine(nil), v.Lines...)
	return v
}

type loteRepo struct{ tx *tx }

func (r *loteRepo) Create(_ context.Context, l *entity.Lote) error {
	if _, ok := r.tx.st.lotes[l.ID]; ok {
		return fmt.Errorf("lote %s ya existe", l.ID)
	}
	r.tx.st.lotes[l.ID] = cloneLote(*l)
	r.tx.write(entity.CollectionLotes, l.ID)
	return nil
}

func (r *loteRepo) Get(_ context.Context, id string) (*entity.Lote, error) {
	if err := r.tx.read(); err != nil {
		return nil, err
	}
	l, ok := r.tx.st.lotes[id]
	if !ok {
		return nil, nil
	}
	cp := cloneLote(l)
	return &cp, nil
}

func (r *loteRepo) Update(_ context.Context, l *entity.Lote) error {
	if _, ok := r.tx.st.lotes[l.ID]; !ok {
		return domain.ErrNotFound
	}
	r.tx.st.lotes[l.ID] = cloneLote(*l)
	r.tx.write(entity.CollectionLotes, l.ID)
	return nil
}

func (r *loteRepo) ListByStatus(_ context.Context, status entity.LoteStatus) ([]*entity.Lote, error) {
	if err := r.tx.read(); err != nil {
		return nil, err
	}
	var out []*entity.Lote
	for _, l := range r.tx.st.lotes {
		if l.Status != status {
			continue
		}
		cp := cloneLote(l)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *loteRepo) AppendEvent(_ context.Context, ev *entity.LoteEvent) error {
	r.tx.st.events[ev.LoteID] = append(r.tx.st.events[ev.LoteID], *ev)
	r.tx.write(entity.CollectionLoteEvents, ev.ID)
	return nil
}

func (r *loteRepo) ListEvents(_ context.Context, loteID string) ([]*entity.LoteEvent, error) {
	if err := r.tx.read(); err != nil {
		return nil, err
	}
	evs := r.tx.st.events[loteID]
	out := make([]*entity.LoteEvent, 0, len(evs))
	for _, ev := range evs {
		ev := ev
		out = append(out, &ev)
	}
	return out, nil
}

// cloneLote copia los punteros para que el estado confirmado no se altere desde fuera.
func cloneLote(l entity.Lote) entity.Lote {
	if l.Lavado != nil {
		lv := *l.Lavado
		l.Lavado = &lv
	}
	if l.Metrics != nil {
		m := *l.Metrics
		l.Metrics = &m
	}
	if l.Calibration != nil {
		c := *l.Calibration
		c.Lines = append([]entity.CalibrationLine(nil), c.Lines...)
		l.Calibration = &c
	}
	return l
}

type sequenceRepo struct{ tx *tx }

func seqKey(scope, date string) string { return date + ":" + scope }

func (r *sequenceRepo) Current(_ context.Context, scope, businessDate string) (int, error) {
	if err := r.tx.read(); err != nil {
		return 0, err
	}
	return r.tx.st.sequences[seqKey(scope, businessDate)], nil
}

func (r *sequenceRepo) Set(_ context.Context, scope, businessDate string, value int) error {
	key := seqKey(scope, businessDate)
	r.tx.st.sequences[key] = value
	r.tx.write(entity.CollectionSequences, key)
	return nil
}
