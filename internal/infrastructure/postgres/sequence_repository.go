package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores por (ámbito, fecha). Dos creaciones concurrentes del mismo día
// chocan en la transacción serializable y una de ellas se reintenta.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Current valor actual (0 si no existe) con la fila bloqueada.
func (r *SequenceRepo) Current(ctx context.Context, scope, businessDate string) (int, error) {
	var value int
	err := r.q.QueryRow(ctx, `SELECT valor FROM secuencias WHERE scope = $1 AND fecha = $2 FOR UPDATE`, scope, businessDate).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get secuencia: %w", err)
	}
	return value, nil
}

// Set fija el contador.
func (r *SequenceRepo) Set(ctx context.Context, scope, businessDate string, value int) error {
	query := `
		INSERT INTO secuencias (scope, fecha, valor) VALUES ($1, $2, $3)
		ON CONFLICT (scope, fecha) DO UPDATE SET valor = EXCLUDED.valor`
	if _, err := r.q.Exec(ctx, query, scope, businessDate, value); err != nil {
		return fmt.Errorf("set secuencia: %w", err)
	}
	return nil
}
