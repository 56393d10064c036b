package inventory

import (
	"fmt"

	"github.com/jhoicas/salal-stock/internal/domain"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// Conversión por defecto cuando el SKU no existe en el catálogo.
const (
	DefaultUnitsPerBox  int64 = 180
	DefaultUnitsPerTray int64 = 30
)

// DefaultConversion devuelve la conversión documentada para SKUs desconocidos.
func DefaultConversion() entity.UnitConversion {
	return entity.UnitConversion{UnitsPerBox: DefaultUnitsPerBox, UnitsPerTray: DefaultUnitsPerTray}
}

// MaxUnits tope de unidades de una cantidad capturada (y de cada componente convertido).
const MaxUnits int64 = 1_000_000_000_000

// ErrQuantityOutOfRange cantidad negativa o mayor que MaxUnits. Envuelve domain.ErrInvalidInput.
var ErrQuantityOutOfRange = fmt.Errorf("%w: cantidad fuera de rango", domain.ErrInvalidInput)

// TotalUnits convierte cajas/bandejas/unidades a unidades sin desbordar int64.
func TotalUnits(boxes, trays, units int64, conv entity.UnitConversion) (int64, error) {
	b, ok := mulUnits(boxes, conv.UnitsPerBox)
	if !ok {
		return 0, ErrQuantityOutOfRange
	}
	t, ok := mulUnits(trays, conv.UnitsPerTray)
	if !ok {
		return 0, ErrQuantityOutOfRange
	}
	if units < 0 || units > MaxUnits {
		return 0, ErrQuantityOutOfRange
	}
	// cada término <= MaxUnits: la suma no desborda.
	total := b + t + units
	if total > MaxUnits {
		return 0, ErrQuantityOutOfRange
	}
	return total, nil
}

func mulUnits(n, per int64) (int64, bool) {
	if n == 0 || per == 0 {
		return 0, true
	}
	if n < 0 || per < 0 || n > MaxUnits/per {
		return 0, false
	}
	return n * per, true
}

// NewCBU arma el desglose con su total calculado.
func NewCBU(boxes, trays, units int64, conv entity.UnitConversion) (entity.CBU, error) {
	total, err := TotalUnits(boxes, trays, units, conv)
	if err != nil {
		return entity.CBU{}, err
	}
	return entity.CBU{
		Boxes:      boxes,
		Trays:      trays,
		Units:      units,
		TotalUnits: total,
	}, nil
}

// OutOfRange error de validación de campo para una cantidad fuera de rango.
func OutOfRange(field string) error {
	return domain.Invalid(field, "cantidad fuera de rango (máximo %d unidades)", MaxUnits)
}

// Breakdown desglosa un total de unidades en cajas, bandejas y unidades sueltas.
// Los totales negativos se desglosan por su valor absoluto y conservan el signo en cada componente.
func Breakdown(total int64, conv entity.UnitConversion) entity.CBU {
	sign := int64(1)
	rest := total
	if rest < 0 {
		sign, rest = -1, -rest
	}
	var boxes, trays int64
	if conv.UnitsPerBox > 0 {
		boxes = rest / conv.UnitsPerBox
		rest -= boxes * conv.UnitsPerBox
	}
	if conv.UnitsPerTray > 0 {
		trays = rest / conv.UnitsPerTray
		rest -= trays * conv.UnitsPerTray
	}
	return entity.CBU{
		Boxes:      sign * boxes,
		Trays:      sign * trays,
		Units:      sign * rest,
		TotalUnits: total,
	}
}
