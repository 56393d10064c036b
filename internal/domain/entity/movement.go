package entity

import "time"

// MovementKind tipo de movimiento del libro de stock.
type MovementKind string

const (
	MovementIngreso   MovementKind = "ingreso"
	MovementEgreso    MovementKind = "egreso"
	MovementReingreso MovementKind = "reingreso"
	MovementAjuste    MovementKind = "ajuste"
)

// Valid indica si el tipo es conocido.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementIngreso, MovementEgreso, MovementReingreso, MovementAjuste:
		return true
	}
	return false
}

// DocKind tipo del documento que causa un movimiento.
type DocKind string

const (
	DocVale       DocKind = "vale"
	DocLote       DocKind = "lote"
	DocAdjustment DocKind = "adjustment"
)

// DocStatus estado de liquidación de un documento; solo validado afecta el stock.
type DocStatus string

const (
	StatusPendiente DocStatus = "pendiente"
	StatusValidado  DocStatus = "validado"
	StatusRechazado DocStatus = "rechazado"
)

// Valid indica si el estado es conocido.
func (s DocStatus) Valid() bool {
	switch s {
	case StatusPendiente, StatusValidado, StatusRechazado:
		return true
	}
	return false
}

// MovementEntry entrada inmutable del libro de movimientos (delta con signo).
type MovementEntry struct {
	ID               string
	Kind             MovementKind
	SkuCode          string
	SkuName          string
	Quantity         int64
	CausingDocID     string
	CausingDocKind   DocKind
	CausingDocStatus DocStatus // copia del estado del documento al momento de escribir
	CausingDocRef    string
	OriginLabel      string
	DestinationLabel string
	UserID           string
	UserName         string
	BusinessDate     string // YYYY-MM-DD en la zona horaria del negocio
	BusinessTime     string // HH:MM:SS
	CreatedAt        time.Time
}

// Settled indica si el movimiento cuenta para el saldo.
func (m MovementEntry) Settled() bool {
	return m.CausingDocStatus == StatusValidado
}

// MovementFilter filtros para listar movimientos.
type MovementFilter struct {
	SkuCode      string
	CausingDocID string
	Limit        int
	Offset       int
}
