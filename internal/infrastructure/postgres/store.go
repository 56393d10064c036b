package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

var _ ledger.Store = (*Store)(nil)

// Store libro de stock sobre PostgreSQL: transacciones vía TxRunner y avisos vía LISTEN/NOTIFY.
type Store struct {
	*TxRunner
	listener *Listener
}

// NewStore construye el Store. Listen debe arrancarse para recibir avisos.
func NewStore(pool *pgxpool.Pool, maxRetries int, log zerolog.Logger) *Store {
	return &Store{
		TxRunner: NewTxRunner(pool, maxRetries, log),
		listener: NewListener(pool, log),
	}
}

// Listen bloquea escuchando cambios hasta que ctx termine.
func (s *Store) Listen(ctx context.Context) error {
	return s.listener.Run(ctx)
}

// Watch registra fn para los cambios confirmados.
func (s *Store) Watch(ctx context.Context, fn func(entity.Change)) (func(), error) {
	return s.listener.Subscribe(ctx, fn)
}
