package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (solo INSERT).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, tipo, sku_codigo, sku_nombre, cantidad, documento_id, documento_tipo, documento_estado,
	documento_referencia, origen_nombre, destino_nombre, usuario_id, usuario_nombre, fecha, hora, created_at`

// Append persiste un movimiento.
func (r *MovementRepo) Append(ctx context.Context, m *entity.MovementEntry) error {
	query := `INSERT INTO movimientos (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		m.ID, string(m.Kind), m.SkuCode, m.SkuName, m.Quantity,
		m.CausingDocID, string(m.CausingDocKind), string(m.CausingDocStatus), m.CausingDocRef,
		m.OriginLabel, m.DestinationLabel, m.UserID, m.UserName,
		m.BusinessDate, m.BusinessTime, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append movimiento: %w", err)
	}
	return nil
}

// List movimientos más recientes primero, filtrados por SKU y/o documento.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.MovementEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.SkuCode != "" {
		args = append(args, f.SkuCode)
		where = append(where, fmt.Sprintf("sku_codigo = $%d", len(args)))
	}
	if f.CausingDocID != "" {
		args = append(args, f.CausingDocID)
		where = append(where, fmt.Sprintf("documento_id = $%d", len(args)))
	}
	query := `SELECT ` + movementColumns + ` FROM movimientos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEntry
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Each recorre todo el libro en orden de inserción.
func (r *MovementRepo) Each(ctx context.Context, fn func(*entity.MovementEntry) error) error {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movimientos ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("scan movimientos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var (
		m                        entity.MovementEntry
		kind, docKind, docStatus string
	)
	err := row.Scan(
		&m.ID, &kind, &m.SkuCode, &m.SkuName, &m.Quantity,
		&m.CausingDocID, &docKind, &docStatus, &m.CausingDocRef,
		&m.OriginLabel, &m.DestinationLabel, &m.UserID, &m.UserName,
		&m.BusinessDate, &m.BusinessTime, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.CausingDocKind = entity.DocKind(docKind)
	m.CausingDocStatus = entity.DocStatus(docStatus)
	return &m, nil
}
