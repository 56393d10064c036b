package entity

import "time"

// ValeKind tipo de vale (unión cerrada: ingreso | egreso | reingreso).
type ValeKind string

const (
	ValeIngreso   ValeKind = "ingreso"
	ValeEgreso    ValeKind = "egreso"
	ValeReingreso ValeKind = "reingreso"
)

// Valid indica si el tipo es conocido.
func (k ValeKind) Valid() bool {
	switch k {
	case ValeIngreso, ValeEgreso, ValeReingreso:
		return true
	}
	return false
}

// InitialStatus estado con el que nace el vale: ingreso queda pendiente de verificación,
// egreso y reingreso se liquidan al crearse.
func (k ValeKind) InitialStatus() DocStatus {
	switch k {
	case ValeIngreso:
		return StatusPendiente
	case ValeEgreso, ValeReingreso:
		return StatusValidado
	}
	return ""
}

// Sign signo del delta de stock aplicado por línea.
func (k ValeKind) Sign() int64 {
	switch k {
	case ValeEgreso:
		return -1
	case ValeIngreso, ValeReingreso:
		return 1
	}
	return 0
}

// MovementKind tipo de movimiento que produce el vale.
func (k ValeKind) MovementKind() MovementKind {
	switch k {
	case ValeIngreso:
		return MovementIngreso
	case ValeEgreso:
		return MovementEgreso
	case ValeReingreso:
		return MovementReingreso
	}
	return ""
}

// Prefix prefijo de la referencia correlativa del vale.
func (k ValeKind) Prefix() string {
	switch k {
	case ValeIngreso:
		return "ING"
	case ValeEgreso:
		return "EGR"
	case ValeReingreso:
		return "REI"
	}
	return "VAL"
}

// ValeLine línea de un vale, expresada en cajas/bandejas/unidades.
type ValeLine struct {
	SkuCode    string `json:"skuCodigo"`
	SkuName    string `json:"skuNombre"`
	Boxes      int64  `json:"cajas"`
	Trays      int64  `json:"bandejas"`
	Units      int64  `json:"unidades"`
	TotalUnits int64  `json:"totalUnidades"`
}

// Vale documento de autorización de traslado que mueve stock.
type Vale struct {
	ID                  string
	Kind                ValeKind
	Status              DocStatus
	Reference           string
	DailySequenceNumber int
	BusinessDate        string
	OriginID            string
	OriginName          string
	DestinationID       string
	DestinationName     string
	CarrierID           string
	CarrierName         string
	Lines               []ValeLine
	TotalUnits          int64
	Comment             string
	CreatorID           string
	CreatorName         string
	ValidatorID         string
	ValidatorName       string
	RejectionReason     string
	CreatedAt           time.Time
	ValidatedAt         *time.Time
	UpdatedAt           time.Time
}

// Pending indica si el vale aún espera validación.
func (v Vale) Pending() bool { return v.Status == StatusPendiente }
