package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/salal-stock/internal/application/dto"
	"github.com/jhoicas/salal-stock/internal/domain"
)

// stateCodes código por precondición de estado.
var stateCodes = []struct {
	err  error
	code string
}{
	{domain.ErrValeNotPending, "VALE_NOT_PENDING"},
	{domain.ErrValeKindNotValidatable, "VALE_KIND_NOT_VALIDATABLE"},
	{domain.ErrLoteAlreadyConfirmed, "LOTE_ALREADY_CONFIRMED"},
	{domain.ErrLoteNotWashed, "LOTE_NOT_WASHED"},
	{domain.ErrLoteAlreadyCalibrated, "LOTE_ALREADY_CALIBRATED"},
	{domain.ErrLoteClosed, "LOTE_CLOSED"},
}

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: ve.Error(),
			Fields:  []dto.FieldError{{Field: ve.Field, Message: ve.Message}},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case domain.IsStatePrecondition(err):
		for _, sc := range stateCodes {
			if errors.Is(err, sc.err) {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: sc.code, Message: sc.err.Error()})
			}
		}
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "operación concurrente, reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
