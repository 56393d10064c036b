package ledger

import (
	"context"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Stock     repository.StockRepository // colección stock
	SalaL     repository.StockRepository // colección stockSalaL
	Movements repository.MovementRepository
	Vales     repository.ValeRepository
	Lotes     repository.LoteRepository
	Sequences repository.SequenceRepository
}

// TxRunner ejecuta fn dentro de una transacción serializable. Si la persistencia detecta un
// conflicto de escritura, fn se vuelve a ejecutar desde cero; por eso fn debe releer todo
// lo que necesita y no depender de estado capturado fuera de la transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// Watcher entrega cambios de documentos tras cada commit. La función devuelta cancela la suscripción.
type Watcher interface {
	Watch(ctx context.Context, fn func(entity.Change)) (func(), error)
}

// Store interfaz de repositorio de la que depende el núcleo: lecturas y escrituras vía Run, avisos vía Watch.
type Store interface {
	TxRunner
	Watcher
}
