package repository

import (
	"context"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// LoteRepository persistencia de lotes de Sala L y su subcolección de eventos.
// Get devuelve nil, nil si no existe.
type LoteRepository interface {
	Create(ctx context.Context, l *entity.Lote) error
	Get(ctx context.Context, id string) (*entity.Lote, error)
	Update(ctx context.Context, l *entity.Lote) error
	ListByStatus(ctx context.Context, status entity.LoteStatus) ([]*entity.Lote, error)
	AppendEvent(ctx context.Context, ev *entity.LoteEvent) error
	ListEvents(ctx context.Context, loteID string) ([]*entity.LoteEvent, error)
}
