// Package jobs encola y procesa la reconciliación de stock con asynq.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/application/reconciliation"
)

const (
	// QueueDefault cola de trabajos de stock.
	QueueDefault = "default"
	// TaskReconcile reconstruye saldos desde el libro de movimientos.
	TaskReconcile = "stock:reconcile"
)

// ReconcilePayload quién pidió la reconciliación.
type ReconcilePayload struct {
	RequestedBy string `json:"requestedBy"`
}

// NewReconcileTask construye la tarea asynq.
func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcile, data), nil
}

// Reconciler ejecuta una reconciliación (implementado por reconciliation.Job).
type Reconciler interface {
	Run(ctx context.Context) (*reconciliation.Report, error)
}

// NewReconcileHandler handler de TaskReconcile. Un payload ilegible no se reintenta.
func NewReconcileHandler(rec Reconciler, log zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReconcilePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			log.Warn().Err(err).Msg("payload de reconciliación inválido")
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		rep, err := rec.Run(ctx)
		if err != nil {
			log.Error().Err(err).Str("solicitante", payload.RequestedBy).Msg("reconciliación fallida")
			return err
		}
		log.Info().
			Str("solicitante", payload.RequestedBy).
			Int("movimientos", rep.Movements).
			Int("skus", rep.Skus).
			Int("diferencias", len(rep.Drifts)).
			Msg("reconciliación completada")
		return nil
	}
}
