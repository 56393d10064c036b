package http

import (
	"github.com/jhoicas/salal-stock/internal/application/dto"
	"github.com/jhoicas/salal-stock/internal/application/inventory"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

func toValeResponse(v *entity.Vale) dto.ValeResponse {
	lines := make([]dto.ValeLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, dto.ValeLineResponse{
			SkuCode:    l.SkuCode,
			SkuName:    l.SkuName,
			Boxes:      l.Boxes,
			Trays:      l.Trays,
			Units:      l.Units,
			TotalUnits: l.TotalUnits,
		})
	}
	return dto.ValeResponse{
		ID:                  v.ID,
		Kind:                string(v.Kind),
		Status:              string(v.Status),
		Reference:           v.Reference,
		DailySequenceNumber: v.DailySequenceNumber,
		BusinessDate:        v.BusinessDate,
		OriginID:            v.OriginID,
		OriginName:          v.OriginName,
		DestinationID:       v.DestinationID,
		DestinationName:     v.DestinationName,
		CarrierID:           v.CarrierID,
		CarrierName:         v.CarrierName,
		Lines:               lines,
		TotalUnits:          v.TotalUnits,
		Comment:             v.Comment,
		CreatorID:           v.CreatorID,
		CreatorName:         v.CreatorName,
		ValidatorID:         v.ValidatorID,
		ValidatorName:       v.ValidatorName,
		RejectionReason:     v.RejectionReason,
		CreatedAt:           v.CreatedAt,
		ValidatedAt:         v.ValidatedAt,
	}
}

func toCBU(c entity.CBU) dto.CBUDTO {
	return dto.CBUDTO{Boxes: c.Boxes, Trays: c.Trays, Units: c.Units, TotalUnits: c.TotalUnits}
}

func toLoteResponse(l *entity.Lote) dto.LoteResponse {
	out := dto.LoteResponse{
		ID:           l.ID,
		LoteCode:     l.LoteCode,
		Status:       string(l.Status),
		OriginID:     l.OriginID,
		OriginName:   l.OriginName,
		DirtySkuCode: l.DirtySkuCode,
		DirtySkuName: l.DirtySkuName,
		CleanSkuCode: l.CleanSkuCode,
		CleanSkuName: l.CleanSkuName,
		Ingreso:      toCBU(l.Ingreso),
		WasteKg:      l.WasteKg,
		WasteUnits:   l.WasteUnits,
		Calibrated:   l.Calibrated(),
		Comment:      l.Comment,
		CreatorID:    l.CreatorID,
		CreatorName:  l.CreatorName,
		LavadoAt:     l.LavadoAt,
		ClosedAt:     l.ClosedAt,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.Lavado != nil {
		lav := toCBU(*l.Lavado)
		out.Lavado = &lav
	}
	if l.Metrics != nil {
		out.Metrics = &dto.LavadoMetricsResponse{
			CleanPct:   l.Metrics.CleanPct,
			WastePct:   l.Metrics.WastePct,
			Difference: l.Metrics.Difference,
		}
	}
	if cal := l.Calibration; cal != nil {
		lines := make([]dto.CalibrationLineResponse, 0, len(cal.Lines))
		for _, cl := range cal.Lines {
			lines = append(lines, dto.CalibrationLineResponse{SkuCode: cl.SkuCode, SkuName: cl.SkuName, Units: cl.Units})
		}
		out.Calibration = &dto.CalibrationResponse{
			Lines:                lines,
			SourceUnits:          cal.SourceUnits,
			WasteKg:              cal.WasteKg,
			WasteUnits:           cal.WasteUnits,
			TotalCalibratedUnits: cal.TotalCalibratedUnits,
			TotalOutputUnits:     cal.TotalOutputUnits,
			CalibratedPct:        cal.CalibratedPct,
			WastePct:             cal.WastePct,
			Difference:           cal.Difference,
			Timestamp:            cal.Timestamp,
			UserID:               cal.UserID,
			UserName:             cal.UserName,
		}
	}
	return out
}

func toLoteEventResponse(ev *entity.LoteEvent) dto.LoteEventResponse {
	return dto.LoteEventResponse{
		ID:        ev.ID,
		Type:      string(ev.Type),
		Detail:    ev.Detail,
		UserID:    ev.UserID,
		UserName:  ev.UserName,
		CreatedAt: ev.CreatedAt,
	}
}

func toStockResponse(v inventory.StockView) dto.StockResponse {
	return dto.StockResponse{
		Namespace: string(v.Namespace),
		SkuCode:   v.SkuCode,
		SkuName:   v.SkuName,
		Quantity:  v.Quantity,
		Breakdown: toCBU(v.Breakdown),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toMovementResponse(m *entity.MovementEntry) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:               m.ID,
		Kind:             string(m.Kind),
		SkuCode:          m.SkuCode,
		SkuName:          m.SkuName,
		Quantity:         m.Quantity,
		OriginLabel:      m.OriginLabel,
		DestinationLabel: m.DestinationLabel,
		CausingDocID:     m.CausingDocID,
		CausingDocKind:   string(m.CausingDocKind),
		CausingDocStatus: string(m.CausingDocStatus),
		CausingDocRef:    m.CausingDocRef,
		BusinessDate:     m.BusinessDate,
		BusinessTime:     m.BusinessTime,
		UserID:           m.UserID,
		UserName:         m.UserName,
		CreatedAt:        m.CreatedAt,
	}
	switch m.CausingDocKind {
	case entity.DocVale:
		out.ValeID, out.ValeRef, out.ValeStatus = m.CausingDocID, m.CausingDocRef, string(m.CausingDocStatus)
	case entity.DocLote:
		out.LoteID = m.CausingDocID
	}
	return out
}
