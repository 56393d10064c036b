package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

const (
	defaultMaxRetries = 5
	baseBackoff       = 10 * time.Millisecond
	maxBackoff        = 500 * time.Millisecond
)

// TxRunner ejecuta callbacks dentro de una transacción SERIALIZABLE de PostgreSQL.
// Ante fallas de serialización o deadlock la transacción se reintenta desde cero.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	log        zerolog.Logger
}

// NewTxRunner construye el runner con el pool. maxRetries <= 0 usa el valor por defecto.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, log zerolog.Logger) *TxRunner {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries, log: log}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		r.log.Debug().Err(err).Int("intento", attempt+1).Msg("conflicto de serialización, reintentando transacción")
	}
	return fmt.Errorf("%d reintentos agotados: %w: %w", r.maxRetries, domain.ErrConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func reposFor(q Querier) ledger.Repos {
	return ledger.Repos{
		Stock:     NewStockRepository(q, tableStock),
		SalaL:     NewStockRepository(q, tableStockSalaL),
		Movements: NewMovementRepository(q),
		Vales:     NewValeRepository(q),
		Lotes:     NewLoteRepository(q),
		Sequences: NewSequenceRepository(q),
	}
}

// backoff espera exponencial acotada entre reintentos.
func backoff(attempt int) time.Duration {
	d := baseBackoff << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
