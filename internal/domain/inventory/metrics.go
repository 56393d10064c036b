package inventory

import (
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WasteUnits convierte kilos de descarte a unidades: round(kg * 1000 / gramosPorUnidad).
// Más de MaxUnits devuelve ErrQuantityOutOfRange.
func WasteUnits(wasteKg decimal.Decimal, gramsPerUnit decimal.Decimal) (int64, error) {
	if !gramsPerUnit.IsPositive() || !wasteKg.IsPositive() {
		return 0, nil
	}
	u := wasteKg.Mul(decimal.NewFromInt(1000)).Div(gramsPerUnit).Round(0)
	if u.GreaterThan(decimal.NewFromInt(MaxUnits)) {
		return 0, ErrQuantityOutOfRange
	}
	return u.IntPart(), nil
}

// Percentage part/whole*100 con dos decimales; 0 si whole no es positivo.
func Percentage(part, whole int64) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(2)
}

// LavadoMetrics calcula la conciliación informativa del lavado contra el ingreso sucio.
func LavadoMetrics(dirty, clean, waste int64) entity.LavadoMetrics {
	return entity.LavadoMetrics{
		CleanPct:   Percentage(clean, dirty),
		WastePct:   Percentage(waste, dirty),
		Difference: (clean + waste) - dirty,
	}
}

// CalibrationMetrics completa totales y porcentajes de una calibración contra el limpio consumido.
func CalibrationMetrics(c *entity.Calibration) {
	var calibrated int64
	for _, l := range c.Lines {
		calibrated += l.Units
	}
	c.TotalCalibratedUnits = calibrated
	c.TotalOutputUnits = calibrated + c.WasteUnits
	c.CalibratedPct = Percentage(calibrated, c.SourceUnits)
	c.WastePct = Percentage(c.WasteUnits, c.SourceUnits)
	c.Difference = c.TotalOutputUnits - c.SourceUnits
}
