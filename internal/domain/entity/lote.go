package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoteStatus estado de un lote de Sala L (unión cerrada).
type LoteStatus string

const (
	LoteEnSala   LoteStatus = "EN_SALA"
	LoteLavadoOK LoteStatus = "LAVADO_OK"
	LoteCerrado  LoteStatus = "CERRADO"
)

// Valid indica si el estado es conocido.
func (s LoteStatus) Valid() bool {
	switch s {
	case LoteEnSala, LoteLavadoOK, LoteCerrado:
		return true
	}
	return false
}

// CBU cantidad desglosada en cajas, bandejas y unidades con su total en unidades.
type CBU struct {
	Boxes      int64 `json:"cajas"`
	Trays      int64 `json:"bandejas"`
	Units      int64 `json:"unidades"`
	TotalUnits int64 `json:"totalUnidades"`
}

// LavadoMetrics métricas informativas de conciliación del lavado; no bloquean la confirmación.
type LavadoMetrics struct {
	CleanPct   decimal.Decimal `json:"porcentajeLimpio"`
	WastePct   decimal.Decimal `json:"porcentajeDescarte"`
	Difference int64           `json:"diferencia"` // (limpio + descarte) - sucio
}

// CalibrationLine salida calibrada hacia un SKU.
type CalibrationLine struct {
	SkuCode string `json:"skuCodigo"`
	SkuName string `json:"skuNombre"`
	Units   int64  `json:"unidades"`
}

// Calibration resultado de la calibración; inmutable una vez que Timestamp está definido.
type Calibration struct {
	Lines                []CalibrationLine `json:"lineas"`
	SourceUnits          int64             `json:"unidadesOrigen"`
	WasteKg              decimal.Decimal   `json:"descarteKg"`
	WasteUnits           int64             `json:"descarteUnidades"`
	TotalCalibratedUnits int64             `json:"totalCalibrado"`
	TotalOutputUnits     int64             `json:"totalSalida"`
	CalibratedPct        decimal.Decimal   `json:"porcentajeCalibrado"`
	WastePct             decimal.Decimal   `json:"porcentajeDescarte"`
	Difference           int64             `json:"diferencia"` // salida total - unidades origen
	Timestamp            *time.Time        `json:"timestamp,omitempty"`
	UserID               string            `json:"usuarioId"`
	UserName             string            `json:"usuarioNombre"`
}

// Lote lote de material sucio que recorre lavado y calibración en Sala L.
type Lote struct {
	ID           string
	LoteCode     string
	Status       LoteStatus
	OriginID     string // pabellón de producción
	OriginName   string
	DirtySkuCode string
	DirtySkuName string
	CleanSkuCode string
	CleanSkuName string
	Ingreso      CBU
	Lavado       *CBU
	WasteKg      decimal.Decimal
	WasteUnits   int64
	Metrics      *LavadoMetrics
	Calibration  *Calibration
	Comment      string
	CreatorID    string
	CreatorName  string
	LavadoBy     string
	LavadoByName string
	LavadoAt     *time.Time
	ClosedBy     string
	ClosedByName string
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Calibrated indica si la calibración ya fue registrada.
func (l Lote) Calibrated() bool {
	return l.Calibration != nil && l.Calibration.Timestamp != nil
}

// LoteEventType tipo de evento de auditoría de un lote.
type LoteEventType string

const (
	EventIngresoRegistrado     LoteEventType = "INGRESO_REGISTRADO"
	EventLavadoRegistrado      LoteEventType = "LAVADO_REGISTRADO"
	EventSalaLConfirmado       LoteEventType = "SALA_L_CONFIRMADO"
	EventCalibracionConfirmada LoteEventType = "CALIBRACION_CONFIRMADA"
	EventLoteCerrado           LoteEventType = "LOTE_CERRADO"
)

// LoteEvent entrada inmutable de la subcolección eventos de un lote.
type LoteEvent struct {
	ID        string
	LoteID    string
	Type      LoteEventType
	Detail    map[string]any
	UserID    string
	UserName  string
	CreatedAt time.Time
}
