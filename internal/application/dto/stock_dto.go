package dto

import "time"

// AdjustmentRequest body para POST /api/stock/adjustments.
type AdjustmentRequest struct {
	SkuCode string `json:"skuCodigo" validate:"required"`
	Delta   int64  `json:"cantidad" validate:"required"`
	Reason  string `json:"motivo" validate:"required,max=500"`
}

// AdjustmentResponse resultado del ajuste.
type AdjustmentResponse struct {
	ID         string `json:"id"`
	SkuCode    string `json:"skuCodigo"`
	SkuName    string `json:"skuNombre"`
	Delta      int64  `json:"cantidad"`
	Previous   int64  `json:"saldoAnterior"`
	Quantity   int64  `json:"saldo"`
	Reason     string `json:"motivo"`
	MovementID string `json:"movimientoId"`
}

// StockResponse saldo con desglose.
type StockResponse struct {
	Namespace string    `json:"namespace"`
	SkuCode   string    `json:"skuCode"`
	SkuName   string    `json:"skuName"`
	Quantity  int64     `json:"quantity"`
	Breakdown CBUDTO    `json:"desglose"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID               string    `json:"id"`
	Kind             string    `json:"tipo"`
	SkuCode          string    `json:"skuCodigo"`
	SkuName          string    `json:"skuNombre"`
	Quantity         int64     `json:"cantidad"`
	OriginLabel      string    `json:"origenNombre"`
	DestinationLabel string    `json:"destinoNombre"`
	CausingDocID     string    `json:"documentoId"`
	CausingDocKind   string    `json:"documentoTipo"`
	CausingDocStatus string    `json:"documentoEstado"`
	CausingDocRef    string    `json:"documentoReferencia,omitempty"`
	ValeID           string    `json:"valeId,omitempty"`
	ValeRef          string    `json:"valeReferencia,omitempty"`
	ValeStatus       string    `json:"valeEstado,omitempty"`
	LoteID           string    `json:"loteId,omitempty"`
	BusinessDate     string    `json:"fecha"`
	BusinessTime     string    `json:"hora"`
	UserID           string    `json:"usuarioId"`
	UserName         string    `json:"usuarioNombre"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MovementListRequest filtros de GET /api/movements.
type MovementListRequest struct {
	PageRequest
	SkuCode      string `query:"sku"`
	CausingDocID string `query:"documento"`
}
