package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.LoteRepository = (*LoteRepo)(nil)

// LoteRepo persistencia de lotes de Sala L y su tabla de eventos.
type LoteRepo struct {
	q Querier
}

// NewLoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLoteRepository(q Querier) *LoteRepo {
	return &LoteRepo{q: q}
}

const loteColumns = `id, codigo, estado, origen_id, origen_nombre, sku_sucio, sku_sucio_nombre,
	sku_limpio, sku_limpio_nombre, ingreso, lavado, descarte_kg, descarte_unidades, metricas, calibracion,
	comentario, creador_id, creador_nombre, lavado_por, lavado_por_nombre, lavado_at,
	cerrado_por, cerrado_por_nombre, cerrado_at, created_at, updated_at`

// loteJSON columnas JSONB ya serializadas. Los punteros nil se guardan como NULL.
type loteJSON struct {
	ingreso, lavado, metrics, calibration []byte
}

func encodeLote(l *entity.Lote) (loteJSON, error) {
	var out loteJSON
	var err error
	if out.ingreso, err = json.Marshal(l.Ingreso); err != nil {
		return out, err
	}
	if out.lavado, err = marshalOptional(l.Lavado); err != nil {
		return out, err
	}
	if out.metrics, err = marshalOptional(l.Metrics); err != nil {
		return out, err
	}
	out.calibration, err = marshalOptional(l.Calibration)
	return out, err
}

func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalOptional[T any](raw []byte) (*T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserta el lote.
func (r *LoteRepo) Create(ctx context.Context, l *entity.Lote) error {
	enc, err := encodeLote(l)
	if err != nil {
		return fmt.Errorf("marshal lote: %w", err)
	}
	query := `INSERT INTO lotes_limpieza (` + loteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err = r.q.Exec(ctx, query,
		l.ID, l.LoteCode, string(l.Status), l.OriginID, l.OriginName, l.DirtySkuCode, l.DirtySkuName,
		l.CleanSkuCode, l.CleanSkuName, enc.ingreso, enc.lavado, l.WasteKg, l.WasteUnits, enc.metrics, enc.calibration,
		l.Comment, l.CreatorID, l.CreatorName, l.LavadoBy, l.LavadoByName, l.LavadoAt,
		l.ClosedBy, l.ClosedByName, l.ClosedAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lote: %w", err)
	}
	return nil
}

// Get obtiene un lote por ID (nil, nil si no existe).
func (r *LoteRepo) Get(ctx context.Context, id string) (*entity.Lote, error) {
	l, err := scanLote(r.q.QueryRow(ctx, `SELECT `+loteColumns+` FROM lotes_limpieza WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lote: %w", err)
	}
	return l, nil
}

// Update reemplaza los campos mutables del lote.
func (r *LoteRepo) Update(ctx context.Context, l *entity.Lote) error {
	enc, err := encodeLote(l)
	if err != nil {
		return fmt.Errorf("marshal lote: %w", err)
	}
	query := `
		UPDATE lotes_limpieza SET estado = $2, sku_limpio = $3, sku_limpio_nombre = $4, lavado = $5,
			descarte_kg = $6, descarte_unidades = $7, metricas = $8, calibracion = $9, comentario = $10,
			lavado_por = $11, lavado_por_nombre = $12, lavado_at = $13,
			cerrado_por = $14, cerrado_por_nombre = $15, cerrado_at = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		l.ID, string(l.Status), l.CleanSkuCode, l.CleanSkuName, enc.lavado,
		l.WasteKg, l.WasteUnits, enc.metrics, enc.calibration, l.Comment,
		l.LavadoBy, l.LavadoByName, l.LavadoAt,
		l.ClosedBy, l.ClosedByName, l.ClosedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStatus lotes en un estado, más antiguos primero.
func (r *LoteRepo) ListByStatus(ctx context.Context, status entity.LoteStatus) ([]*entity.Lote, error) {
	rows, err := r.q.Query(ctx, `SELECT `+loteColumns+` FROM lotes_limpieza WHERE estado = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list lotes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lote
	for rows.Next() {
		l, err := scanLote(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// AppendEvent agrega un evento de auditoría.
func (r *LoteRepo) AppendEvent(ctx context.Context, ev *entity.LoteEvent) error {
	detail := ev.Detail
	if detail == nil {
		detail = map[string]any{}
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal detalle: %w", err)
	}
	query := `
		INSERT INTO lote_eventos (id, lote_id, tipo, detalle, usuario_id, usuario_nombre, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, ev.ID, ev.LoteID, string(ev.Type), raw, ev.UserID, ev.UserName, ev.CreatedAt); err != nil {
		return fmt.Errorf("append evento: %w", err)
	}
	return nil
}

// ListEvents eventos del lote en orden de registro.
func (r *LoteRepo) ListEvents(ctx context.Context, loteID string) ([]*entity.LoteEvent, error) {
	query := `
		SELECT id, lote_id, tipo, detalle, usuario_id, usuario_nombre, created_at
		FROM lote_eventos WHERE lote_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, loteID)
	if err != nil {
		return nil, fmt.Errorf("list eventos: %w", err)
	}
	defer rows.Close()
	list := []*entity.LoteEvent{}
	for rows.Next() {
		var (
			ev   entity.LoteEvent
			tipo string
			raw  []byte
		)
		if err := rows.Scan(&ev.ID, &ev.LoteID, &tipo, &raw, &ev.UserID, &ev.UserName, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Type = entity.LoteEventType(tipo)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &ev.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal detalle: %w", err)
			}
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}

func scanLote(row pgx.Row) (*entity.Lote, error) {
	var (
		l                                     entity.Lote
		status                                string
		ingreso, lavado, metrics, calibration []byte
	)
	err := row.Scan(
		&l.ID, &l.LoteCode, &status, &l.OriginID, &l.OriginName, &l.DirtySkuCode, &l.DirtySkuName,
		&l.CleanSkuCode, &l.CleanSkuName, &ingreso, &lavado, &l.WasteKg, &l.WasteUnits, &metrics, &calibration,
		&l.Comment, &l.CreatorID, &l.CreatorName, &l.LavadoBy, &l.LavadoByName, &l.LavadoAt,
		&l.ClosedBy, &l.ClosedByName, &l.ClosedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LoteStatus(status)
	if err := json.Unmarshal(ingreso, &l.Ingreso); err != nil {
		return nil, fmt.Errorf("unmarshal ingreso: %w", err)
	}
	if l.Lavado, err = unmarshalOptional[entity.CBU](lavado); err != nil {
		return nil, fmt.Errorf("unmarshal lavado: %w", err)
	}
	if l.Metrics, err = unmarshalOptional[entity.LavadoMetrics](metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metricas: %w", err)
	}
	if l.Calibration, err = unmarshalOptional[entity.Calibration](calibration); err != nil {
		return nil, fmt.Errorf("unmarshal calibracion: %w", err)
	}
	return &l, nil
}
