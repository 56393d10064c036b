package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Precondiciones de estado de vales.
	ErrValeNotPending         = errors.New("el vale no está pendiente")
	ErrValeKindNotValidatable = errors.New("solo los vales de ingreso se validan o rechazan")

	// Precondiciones de estado de lotes (Sala L).
	ErrLoteAlreadyConfirmed  = errors.New("el lavado del lote ya fue confirmado")
	ErrLoteNotWashed         = errors.New("el lote aún no tiene lavado confirmado")
	ErrLoteAlreadyCalibrated = errors.New("el lote ya fue calibrado")
	ErrLoteClosed            = errors.New("el lote está cerrado")
)

// ValidationError describe un campo inválido detectado antes de abrir la transacción.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap permite comparar con ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsStatePrecondition indica si err corresponde a un estado de documento no apto para la operación.
func IsStatePrecondition(err error) bool {
	switch {
	case errors.Is(err, ErrValeNotPending),
		errors.Is(err, ErrValeKindNotValidatable),
		errors.Is(err, ErrLoteAlreadyConfirmed),
		errors.Is(err, ErrLoteNotWashed),
		errors.Is(err, ErrLoteAlreadyCalibrated),
		errors.Is(err, ErrLoteClosed):
		return true
	}
	return false
}
