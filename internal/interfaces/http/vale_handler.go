package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/salal-stock/internal/application/dto"
	"github.com/jhoicas/salal-stock/internal/application/vale"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// ValePrinter genera el documento imprimible de un vale.
type ValePrinter interface {
	GenerateValePDF(ctx context.Context, v *entity.Vale) ([]byte, error)
}

// ValeHandler maneja las peticiones HTTP de vales.
type ValeHandler struct {
	uc      *vale.UseCase
	printer ValePrinter
}

// NewValeHandler construye el handler.
func NewValeHandler(uc *vale.UseCase, printer ValePrinter) *ValeHandler {
	return &ValeHandler{uc: uc, printer: printer}
}

// Create godoc
// @Summary      Crear vale
// @Description  Ingreso queda pendiente; egreso y reingreso mueven stock al crearse.
// @Tags         vales
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateValeRequest  true  "tipo, origen, destino y líneas"
// @Success      201   {object}  dto.ValeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/vales [post]
func (h *ValeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateValeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	lines := make([]vale.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, vale.LineInput{SkuCode: l.SkuCode, Boxes: l.Boxes, Trays: l.Trays, Units: l.Units})
	}
	v, err := h.uc.Create(c.UserContext(), vale.CreateInput{
		Kind:            entity.ValeKind(in.Kind),
		OriginID:        in.OriginID,
		OriginName:      in.OriginName,
		DestinationID:   in.DestinationID,
		DestinationName: in.DestinationName,
		CarrierID:       in.CarrierID,
		CarrierName:     in.CarrierName,
		Lines:           lines,
		Comment:         in.Comment,
		Who:             GetIdentity(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toValeResponse(v))
}

// GetByID godoc
// @Summary      Obtener vale
// @Tags         vales
// @Produce      json
// @Param        id   path  string  true  "ID del vale"
// @Success      200  {object}  dto.ValeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vales/{id} [get]
func (h *ValeHandler) GetByID(c *fiber.Ctx) error {
	v, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toValeResponse(v))
}

// Validate godoc
// @Summary      Validar vale de ingreso
// @Tags         vales
// @Produce      json
// @Param        id   path  string  true  "ID del vale"
// @Success      200  {object}  dto.ValeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/vales/{id}/validate [post]
func (h *ValeHandler) Validate(c *fiber.Ctx) error {
	v, err := h.uc.Validate(c.UserContext(), c.Params("id"), GetIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toValeResponse(v))
}

// Reject godoc
// @Summary      Rechazar vale de ingreso
// @Tags         vales
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true   "ID del vale"
// @Param        body  body  dto.RejectValeRequest  false  "motivo"
// @Success      200   {object}  dto.ValeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/vales/{id}/reject [post]
func (h *ValeHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectValeRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	v, err := h.uc.Reject(c.UserContext(), c.Params("id"), in.Reason, GetIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toValeResponse(v))
}

// PDF godoc
// @Summary      Vale imprimible
// @Tags         vales
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del vale"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vales/{id}/pdf [get]
func (h *ValeHandler) PDF(c *fiber.Ctx) error {
	v, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.printer.GenerateValePDF(c.UserContext(), v)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+v.Reference+`.pdf"`)
	return c.Send(doc)
}
