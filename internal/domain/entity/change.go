package entity

// Colecciones persistidas.
const (
	CollectionStock      = "stock"
	CollectionSalaL      = "stockSalaL"
	CollectionMovements  = "movimientos"
	CollectionVales      = "vales"
	CollectionLotes      = "lotesLimpieza"
	CollectionLoteEvents = "eventos"
	CollectionSequences  = "secuencias"
)

// Change notifica que un documento fue escrito por una transacción confirmada.
type Change struct {
	Collection string `json:"collection"`
	Key        string `json:"key"`
}
