package repository

import (
	"context"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// MovementRepository libro de movimientos: solo se agrega, nunca se modifica.
type MovementRepository interface {
	Append(ctx context.Context, m *entity.MovementEntry) error
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.MovementEntry, error)
	// Each recorre todo el libro sin orden garantizado.
	Each(ctx context.Context, fn func(*entity.MovementEntry) error) error
}
