package dto

import "time"

// CreateValeRequest body para POST /api/vales.
type CreateValeRequest struct {
	Kind            string            `json:"tipo" validate:"required,oneof=ingreso egreso reingreso"`
	OriginID        string            `json:"origenId"`
	OriginName      string            `json:"origenNombre" validate:"required_without=OriginID"`
	DestinationID   string            `json:"destinoId"`
	DestinationName string            `json:"destinoNombre" validate:"required_without=DestinationID"`
	CarrierID       string            `json:"transportistaId,omitempty"`
	CarrierName     string            `json:"transportistaNombre,omitempty"`
	Lines           []ValeLineRequest `json:"lineas" validate:"required,min=1,dive"`
	Comment         string            `json:"comentario,omitempty" validate:"max=500"`
}

// ValeLineRequest línea del vale.
type ValeLineRequest struct {
	SkuCode string `json:"skuCodigo" validate:"required"`
	Boxes   int64  `json:"cajas" validate:"min=0,max=1000000000000"`
	Trays   int64  `json:"bandejas" validate:"min=0,max=1000000000000"`
	Units   int64  `json:"unidades" validate:"min=0,max=1000000000000"`
}

// RejectValeRequest body para POST /api/vales/:id/reject.
type RejectValeRequest struct {
	Reason string `json:"motivo" validate:"max=500"`
}

// ValeLineResponse línea con su total calculado.
type ValeLineResponse struct {
	SkuCode    string `json:"skuCodigo"`
	SkuName    string `json:"skuNombre"`
	Boxes      int64  `json:"cajas"`
	Trays      int64  `json:"bandejas"`
	Units      int64  `json:"unidades"`
	TotalUnits int64  `json:"totalUnidades"`
}

// ValeResponse vale completo.
type ValeResponse struct {
	ID                  string             `json:"id"`
	Kind                string             `json:"tipo"`
	Status              string             `json:"estado"`
	Reference           string             `json:"referencia"`
	DailySequenceNumber int                `json:"correlativoDiario"`
	BusinessDate        string             `json:"fecha"`
	OriginID            string             `json:"origenId,omitempty"`
	OriginName          string             `json:"origenNombre"`
	DestinationID       string             `json:"destinoId,omitempty"`
	DestinationName     string             `json:"destinoNombre"`
	CarrierID           string             `json:"transportistaId,omitempty"`
	CarrierName         string             `json:"transportistaNombre,omitempty"`
	Lines               []ValeLineResponse `json:"lineas"`
	TotalUnits          int64              `json:"totalUnidades"`
	Comment             string             `json:"comentario,omitempty"`
	CreatorID           string             `json:"creadorId"`
	CreatorName         string             `json:"creadorNombre"`
	ValidatorID         string             `json:"validadorId,omitempty"`
	ValidatorName       string             `json:"validadorNombre,omitempty"`
	RejectionReason     string             `json:"motivoRechazo,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	ValidatedAt         *time.Time         `json:"validatedAt,omitempty"`
}
