package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLoteRequest body para POST /api/lotes.
type CreateLoteRequest struct {
	OriginID     string `json:"origenId"`
	OriginName   string `json:"origenNombre"`
	DirtySkuCode string `json:"skuSucio" validate:"required"`
	Ingreso      CBUDTO `json:"ingreso"`
	Comment      string `json:"comentario,omitempty" validate:"max=500"`
}

// LavadoRequest body para POST /api/lotes/:id/lavado.
type LavadoRequest struct {
	Clean   CBUDTO          `json:"limpio"`
	WasteKg decimal.Decimal `json:"descarteKg"`
	Comment string          `json:"comentario,omitempty" validate:"max=500"`
}

// CalibrationLineRequest salida calibrada.
type CalibrationLineRequest struct {
	SkuCode string `json:"skuCodigo" validate:"required"`
	Boxes   int64  `json:"cajas" validate:"min=0,max=1000000000000"`
	Trays   int64  `json:"bandejas" validate:"min=0,max=1000000000000"`
	Units   int64  `json:"unidades" validate:"min=0,max=1000000000000"`
}

// CalibrationRequest body para POST /api/lotes/:id/calibration.
type CalibrationRequest struct {
	Lines   []CalibrationLineRequest `json:"lineas" validate:"required,min=1,dive"`
	WasteKg decimal.Decimal          `json:"descarteKg"`
}

// CloseLoteRequest body para POST /api/lotes/:id/close.
type CloseLoteRequest struct {
	Comment string `json:"comentario,omitempty" validate:"max=500"`
}

// LavadoMetricsResponse conciliación informativa del lavado.
type LavadoMetricsResponse struct {
	CleanPct   decimal.Decimal `json:"porcentajeLimpio"`
	WastePct   decimal.Decimal `json:"porcentajeDescarte"`
	Difference int64           `json:"diferencia"`
}

// CalibrationLineResponse línea calibrada.
type CalibrationLineResponse struct {
	SkuCode string `json:"skuCodigo"`
	SkuName string `json:"skuNombre"`
	Units   int64  `json:"unidades"`
}

// CalibrationResponse calibración registrada.
type CalibrationResponse struct {
	Lines                []CalibrationLineResponse `json:"lineas"`
	SourceUnits          int64                     `json:"unidadesOrigen"`
	WasteKg              decimal.Decimal           `json:"descarteKg"`
	WasteUnits           int64                     `json:"descarteUnidades"`
	TotalCalibratedUnits int64                     `json:"totalCalibrado"`
	TotalOutputUnits     int64                     `json:"totalSalida"`
	CalibratedPct        decimal.Decimal           `json:"porcentajeCalibrado"`
	WastePct             decimal.Decimal           `json:"porcentajeDescarte"`
	Difference           int64                     `json:"diferencia"`
	Timestamp            *time.Time                `json:"timestamp,omitempty"`
	UserID               string                    `json:"usuarioId"`
	UserName             string                    `json:"usuarioNombre"`
}

// LoteResponse lote de Sala L.
type LoteResponse struct {
	ID           string                 `json:"id"`
	LoteCode     string                 `json:"codigo"`
	Status       string                 `json:"estado"`
	OriginID     string                 `json:"origenId,omitempty"`
	OriginName   string                 `json:"origenNombre,omitempty"`
	DirtySkuCode string                 `json:"skuSucio"`
	DirtySkuName string                 `json:"skuSucioNombre"`
	CleanSkuCode string                 `json:"skuLimpio"`
	CleanSkuName string                 `json:"skuLimpioNombre"`
	Ingreso      CBUDTO                 `json:"ingreso"`
	Lavado       *CBUDTO                `json:"lavado,omitempty"`
	WasteKg      decimal.Decimal        `json:"descarteKg"`
	WasteUnits   int64                  `json:"descarteUnidades"`
	Metrics      *LavadoMetricsResponse `json:"metricas,omitempty"`
	Calibration  *CalibrationResponse   `json:"calibracion,omitempty"`
	Calibrated   bool                   `json:"calibrado"`
	Comment      string                 `json:"comentario,omitempty"`
	CreatorID    string                 `json:"creadorId"`
	CreatorName  string                 `json:"creadorNombre"`
	LavadoAt     *time.Time             `json:"lavadoAt,omitempty"`
	ClosedAt     *time.Time             `json:"closedAt,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// LoteEventResponse evento de auditoría.
type LoteEventResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"tipo"`
	Detail    map[string]any `json:"detalle,omitempty"`
	UserID    string         `json:"usuarioId"`
	UserName  string         `json:"usuarioNombre"`
	CreatedAt time.Time      `json:"createdAt"`
}
