package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.ValeRepository = (*ValeRepo)(nil)

// ValeRepo persistencia de vales; las líneas se guardan como JSONB.
type ValeRepo struct {
	q Querier
}

// NewValeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewValeRepository(q Querier) *ValeRepo {
	return &ValeRepo{q: q}
}

const valeColumns = `id, tipo, estado, referencia, correlativo, fecha, origen_id, origen_nombre,
	destino_id, destino_nombre, transportista_id, transportista_nombre, lineas, total_unidades,
	comentario, creador_id, creador_nombre, validador_id, validador_nombre, motivo_rechazo,
	created_at, validated_at, updated_at`

// Create inserta el vale.
func (r *ValeRepo) Create(ctx context.Context, v *entity.Vale) error {
	lines, err := json.Marshal(v.Lines)
	if err != nil {
		return fmt.Errorf("marshal lineas: %w", err)
	}
	query := `INSERT INTO vales (` + valeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err = r.q.Exec(ctx, query,
		v.ID, string(v.Kind), string(v.Status), v.Reference, v.DailySequenceNumber, v.BusinessDate,
		v.OriginID, v.OriginName, v.DestinationID, v.DestinationName, v.CarrierID, v.CarrierName,
		lines, v.TotalUnits, v.Comment, v.CreatorID, v.CreatorName,
		v.ValidatorID, v.ValidatorName, v.RejectionReason,
		v.CreatedAt, v.ValidatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create vale: %w", err)
	}
	return nil
}

// Get obtiene un vale por ID (nil, nil si no existe).
func (r *ValeRepo) Get(ctx context.Context, id string) (*entity.Vale, error) {
	var (
		v            entity.Vale
		kind, status string
		lines        []byte
		validatedAt  *time.Time
	)
	err := r.q.QueryRow(ctx, `SELECT `+valeColumns+` FROM vales WHERE id = $1`, id).Scan(
		&v.ID, &kind, &status, &v.Reference, &v.DailySequenceNumber, &v.BusinessDate,
		&v.OriginID, &v.OriginName, &v.DestinationID, &v.DestinationName, &v.CarrierID, &v.CarrierName,
		&lines, &v.TotalUnits, &v.Comment, &v.CreatorID, &v.CreatorName,
		&v.ValidatorID, &v.ValidatorName, &v.RejectionReason,
		&v.CreatedAt, &validatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vale: %w", err)
	}
	if err := json.Unmarshal(lines, &v.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal lineas: %w", err)
	}
	v.Kind = entity.ValeKind(kind)
	v.Status = entity.DocStatus(status)
	v.ValidatedAt = validatedAt
	return &v, nil
}

// Update guarda el estado y los datos del validador.
func (r *ValeRepo) Update(ctx context.Context, v *entity.Vale) error {
	query := `
		UPDATE vales SET estado = $2, validador_id = $3, validador_nombre = $4, motivo_rechazo = $5,
			validated_at = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, v.ID, string(v.Status), v.ValidatorID, v.ValidatorName, v.RejectionReason, v.ValidatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update vale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
