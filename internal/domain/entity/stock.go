package entity

import "time"

// StockNamespace identifica la colección de saldos sobre la que opera un registro de stock.
type StockNamespace string

const (
	NamespaceStock StockNamespace = "stock"      // bodega principal
	NamespaceSalaL StockNamespace = "stockSalaL" // saldos locales de Sala L
)

// Valid indica si el namespace es conocido.
func (n StockNamespace) Valid() bool {
	switch n {
	case NamespaceStock, NamespaceSalaL:
		return true
	}
	return false
}

// StockRecord representa el saldo materializado de un SKU (una fila por SKU y namespace).
// Quantity puede ser negativo: las diferencias operacionales se registran, no se bloquean.
type StockRecord struct {
	Namespace StockNamespace
	SkuCode   string
	SkuName   string
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
