// Package memory implementa el Store del libro de stock en memoria con control de
// concurrencia optimista: cada transacción trabaja sobre una copia del estado y solo
// confirma si nadie confirmó antes; si no, se reintenta desde cero.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

var _ ledger.Store = (*Store)(nil)

// ErrReadAfterWrite se devuelve cuando una transacción lee después de haber escrito.
var ErrReadAfterWrite = errors.New("memory: lectura después de escritura en la transacción")

const defaultMaxRetries = 10

type state struct {
	stock     map[entity.StockNamespace]map[string]entity.StockRecord
	movements []entity.MovementEntry
	vales     map[string]entity.Vale
	lotes     map[string]entity.Lote
	events    map[string][]entity.LoteEvent
	sequences map[string]int
}

func newState() *state {
	return &state{
		stock: map[entity.StockNamespace]map[string]entity.StockRecord{
			entity.NamespaceStock: {},
			entity.NamespaceSalaL: {},
		},
		vales:     map[string]entity.Vale{},
		lotes:     map[string]entity.Lote{},
		events:    map[string][]entity.LoteEvent{},
		sequences: map[string]int{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for ns, recs := range s.stock {
		m := make(map[string]entity.StockRecord, len(recs))
		for k, v := range recs {
			m[k] = v
		}
		c.stock[ns] = m
	}
	c.movements = append([]entity.MovementEntry(nil), s.movements...)
	for k, v := range s.vales {
		c.vales[k] = v
	}
	for k, v := range s.lotes {
		c.lotes[k] = v
	}
	for k, v := range s.events {
		c.events[k] = append([]entity.LoteEvent(nil), v...)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// Option configura el Store.
type Option func(*Store)

// WithMaxRetries reintentos ante conflicto antes de devolver domain.ErrConflict.
func WithMaxRetries(n int) Option {
	return func(s *Store) { s.maxRetries = n }
}

// Store almacenamiento en memoria.
type Store struct {
	mu         sync.Mutex
	st         *state
	version    uint64
	maxRetries int

	watchMu  sync.Mutex
	watchers map[int]func(entity.Change)
	nextID   int
}

// New crea un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{st: newState(), maxRetries: defaultMaxRetries, watchers: map[int]func(entity.Change){}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run ejecuta fn sobre una copia del estado y la confirma si no hubo commits concurrentes.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r ledger.Repos) error) error {
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.Lock()
		tx := &tx{st: s.st.clone()}
		base := s.version
		s.mu.Unlock()

		if err := fn(ctx, tx.repos()); err != nil {
			return err
		}
		if len(tx.changes) == 0 {
			return nil
		}

		s.mu.Lock()
		if s.version != base {
			s.mu.Unlock()
			continue
		}
		s.st = tx.st
		s.version++
		s.mu.Unlock()
		s.notify(tx.changes)
		return nil
	}
	return fmt.Errorf("memory: %d reintentos agotados: %w", s.maxRetries, domain.ErrConflict)
}

// Watch registra fn para recibir los cambios confirmados. Se cancela con la función
// devuelta o al terminar ctx.
func (s *Store) Watch(ctx context.Context, fn func(entity.Change)) (func(), error) {
	if fn == nil {
		return nil, errors.New("memory: callback requerido")
	}
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			s.watchMu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return unsubscribe, nil
}

func (s *Store) notify(changes []entity.Change) {
	s.watchMu.Lock()
	ids := make([]int, 0, len(s.watchers))
	for id := range s.watchers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(entity.Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.watchers[id])
	}
	s.watchMu.Unlock()
	for _, c := range changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// PutStock escribe un saldo directamente, sin movimiento asociado. Se usa para cargas
// iniciales y para simular correcciones manuales de datos.
func (s *Store) PutStock(ns entity.StockNamespace, skuCode, skuName string, quantity int64) {
	now := time.Now()
	s.mu.Lock()
	rec, ok := s.st.stock[ns][skuCode]
	if !ok {
		rec = entity.StockRecord{Namespace: ns, SkuCode: skuCode, CreatedAt: now}
	}
	rec.SkuName = skuName
	rec.Quantity = quantity
	rec.UpdatedAt = now
	s.st.stock[ns][skuCode] = rec
	s.version++
	s.mu.Unlock()
}

// Quantity saldo confirmado de un SKU (0 si no existe).
func (s *Store) Quantity(ns entity.StockNamespace, skuCode string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.stock[ns][skuCode].Quantity
}

// Movements copia de todos los movimientos confirmados en orden de escritura.
func (s *Store) Movements() []entity.MovementEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.MovementEntry(nil), s.st.movements...)
}
