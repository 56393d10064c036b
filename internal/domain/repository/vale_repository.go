package repository

import (
	"context"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// ValeRepository persistencia de vales. Get devuelve nil, nil si no existe.
type ValeRepository interface {
	Create(ctx context.Context, v *entity.Vale) error
	Get(ctx context.Context, id string) (*entity.Vale, error)
	Update(ctx context.Context, v *entity.Vale) error
}
