package repository

import "context"

// SequenceRepository contadores por (ámbito, fecha) leídos y escritos dentro de la misma
// transacción que crea el documento numerado, reemplazando el conteo previo de documentos.
type SequenceRepository interface {
	// Current valor actual del contador (0 si no existe). Es una lectura.
	Current(ctx context.Context, scope, businessDate string) (int, error)
	// Set fija el contador. Es una escritura.
	Set(ctx context.Context, scope, businessDate string, value int) error
}
