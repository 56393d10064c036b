package entity

// SKU metadatos de catálogo consumidos (no administrados) por el motor de stock.
type SKU struct {
	Code         string
	Name         string
	UnitsPerBox  int64
	UnitsPerTray int64
}

// Conversion devuelve la conversión de unidades del SKU.
func (s SKU) Conversion() UnitConversion {
	return UnitConversion{UnitsPerBox: s.UnitsPerBox, UnitsPerTray: s.UnitsPerTray}
}

// UnitConversion unidades por caja y por bandeja (CBU).
type UnitConversion struct {
	UnitsPerBox  int64
	UnitsPerTray int64
}
