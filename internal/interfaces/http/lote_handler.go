package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/salal-stock/internal/application/dto"
	"github.com/jhoicas/salal-stock/internal/application/salal"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// LoteHandler maneja el pipeline de lotes de Sala L.
type LoteHandler struct {
	uc *salal.UseCase
}

// NewLoteHandler construye el handler.
func NewLoteHandler(uc *salal.UseCase) *LoteHandler {
	return &LoteHandler{uc: uc}
}

func quantityOf(q dto.CBUDTO) salal.Quantity {
	return salal.Quantity{Boxes: q.Boxes, Trays: q.Trays, Units: q.Units}
}

// Create godoc
// @Summary      Registrar ingreso de lote a Sala L
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLoteRequest  true  "SKU sucio y cantidad"
// @Success      201   {object}  dto.LoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/lotes [post]
func (h *LoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLoteRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	l, err := h.uc.CreateLote(c.UserContext(), salal.CreateInput{
		OriginID:     in.OriginID,
		OriginName:   in.OriginName,
		DirtySkuCode: in.DirtySkuCode,
		Quantity:     quantityOf(in.Ingreso),
		Comment:      in.Comment,
		Who:          GetIdentity(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLoteResponse(l))
}

// List godoc
// @Summary      Listar lotes por estado
// @Tags         lotes
// @Produce      json
// @Param        estado  query  string  false  "EN_SALA (por defecto), LAVADO_OK o CERRADO"
// @Success      200  {array}   dto.LoteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lotes [get]
func (h *LoteHandler) List(c *fiber.Ctx) error {
	status := entity.LoteStatus(c.Query("estado", string(entity.LoteEnSala)))
	list, err := h.uc.ListByStatus(c.UserContext(), status)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LoteResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLoteResponse(l))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lotes
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lotes/{id} [get]
func (h *LoteHandler) GetByID(c *fiber.Ctx) error {
	l, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLoteResponse(l))
}

// Events godoc
// @Summary      Eventos de auditoría del lote
// @Tags         lotes
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}   dto.LoteEventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lotes/{id}/events [get]
func (h *LoteHandler) Events(c *fiber.Ctx) error {
	events, err := h.uc.Events(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LoteEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toLoteEventResponse(ev))
	}
	return c.JSON(out)
}

// Lavado godoc
// @Summary      Confirmar lavado
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote"
// @Param        body  body  dto.LavadoRequest  true  "cantidad limpia y kg de descarte"
// @Success      200   {object}  dto.LoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lotes/{id}/lavado [post]
func (h *LoteHandler) Lavado(c *fiber.Ctx) error {
	var in dto.LavadoRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	l, err := h.uc.ConfirmLavado(c.UserContext(), c.Params("id"), salal.LavadoInput{
		Clean:   quantityOf(in.Clean),
		WasteKg: in.WasteKg,
		Comment: in.Comment,
		Who:     GetIdentity(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLoteResponse(l))
}

// Calibration godoc
// @Summary      Confirmar calibración
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.CalibrationRequest  true  "líneas calibradas y kg de descarte"
// @Success      200   {object}  dto.LoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lotes/{id}/calibration [post]
func (h *LoteHandler) Calibration(c *fiber.Ctx) error {
	var in dto.CalibrationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	lines := make([]salal.CalibrationLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, salal.CalibrationLineInput{
			SkuCode:  l.SkuCode,
			Quantity: salal.Quantity{Boxes: l.Boxes, Trays: l.Trays, Units: l.Units},
		})
	}
	l, err := h.uc.ConfirmCalibration(c.UserContext(), c.Params("id"), salal.CalibrationInput{
		Lines:   lines,
		WasteKg: in.WasteKg,
		Who:     GetIdentity(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLoteResponse(l))
}

// Close godoc
// @Summary      Cerrar lote
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Param        id    path  string                true   "ID del lote"
// @Param        body  body  dto.CloseLoteRequest  false  "comentario"
// @Success      200   {object}  dto.LoteResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lotes/{id}/close [post]
func (h *LoteHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseLoteRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	l, err := h.uc.Close(c.UserContext(), c.Params("id"), in.Comment, GetIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLoteResponse(l))
}
