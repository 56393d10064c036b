package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// DocRef documento causante de un movimiento.
type DocRef struct {
	ID     string
	Kind   entity.DocKind
	Status entity.DocStatus
	Ref    string
}

// MovementSpec datos variables de un movimiento.
type MovementSpec struct {
	Kind        entity.MovementKind
	SkuCode     string
	SkuName     string
	Quantity    int64
	Origin      string
	Destination string
}

// NewMovement arma una entrada del libro con fecha y hora de negocio según clock.
func NewMovement(clock Clock, doc DocRef, who entity.Identity, at time.Time, s MovementSpec) *entity.MovementEntry {
	return &entity.MovementEntry{
		ID:               uuid.New().String(),
		Kind:             s.Kind,
		SkuCode:          s.SkuCode,
		SkuName:          s.SkuName,
		Quantity:         s.Quantity,
		CausingDocID:     doc.ID,
		CausingDocKind:   doc.Kind,
		CausingDocStatus: doc.Status,
		CausingDocRef:    doc.Ref,
		OriginLabel:      s.Origin,
		DestinationLabel: s.Destination,
		UserID:           who.UserID,
		UserName:         who.UserName,
		BusinessDate:     clock.BusinessDate(at),
		BusinessTime:     clock.BusinessTime(at),
		CreatedAt:        at,
	}
}

// ValidateIdentity exige usuario en toda mutación.
func ValidateIdentity(who entity.Identity) error {
	if who.UserID == "" {
		return domain.Invalid("usuarioId", "usuario requerido")
	}
	return nil
}
