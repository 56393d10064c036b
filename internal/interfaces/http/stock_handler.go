package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/salal-stock/internal/application/dto"
	"github.com/jhoicas/salal-stock/internal/application/inventory"
	"github.com/jhoicas/salal-stock/internal/application/reconciliation"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
	"github.com/jhoicas/salal-stock/internal/infrastructure/jobs"
)

// Reconciler reconstruye saldos en línea.
type Reconciler interface {
	Run(ctx context.Context) (*reconciliation.Report, error)
}

// ReconcileQueue encola la reconciliación para el worker.
type ReconcileQueue interface {
	EnqueueReconcile(ctx context.Context, payload jobs.ReconcilePayload) (*asynq.TaskInfo, error)
}

// StockHandler saldos, movimientos, ajustes y reconciliación.
type StockHandler struct {
	uc    *inventory.UseCase
	job   Reconciler
	queue ReconcileQueue
}

// NewStockHandler construye el handler. queue puede ser nil: la reconciliación corre en línea.
func NewStockHandler(uc *inventory.UseCase, job Reconciler, queue ReconcileQueue) *StockHandler {
	return &StockHandler{uc: uc, job: job, queue: queue}
}

func namespaceOf(c *fiber.Ctx) entity.StockNamespace {
	return entity.StockNamespace(c.Query("namespace", string(entity.NamespaceStock)))
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "SKU, delta con signo y motivo"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	adj, err := h.uc.Adjust(c.UserContext(), inventory.AdjustInput{
		SkuCode: in.SkuCode,
		Delta:   in.Delta,
		Reason:  in.Reason,
		Who:     GetIdentity(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustmentResponse{
		ID:         adj.ID,
		SkuCode:    adj.SkuCode,
		SkuName:    adj.SkuName,
		Delta:      adj.Delta,
		Previous:   adj.Previous,
		Quantity:   adj.Quantity,
		Reason:     adj.Reason,
		MovementID: adj.MovementID,
	})
}

// List godoc
// @Summary      Saldos de stock
// @Tags         stock
// @Produce      json
// @Param        namespace  query  string  false  "stock (por defecto) o stockSalaL"
// @Success      200  {array}   dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	views, err := h.uc.ListStock(c.UserContext(), namespaceOf(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toStockResponse(v))
	}
	return c.JSON(out)
}

// GetBySku godoc
// @Summary      Saldo de un SKU
// @Tags         stock
// @Produce      json
// @Param        sku        path   string  true   "código de SKU"
// @Param        namespace  query  string  false  "stock (por defecto) o stockSalaL"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{sku} [get]
func (h *StockHandler) GetBySku(c *fiber.Ctx) error {
	v, err := h.uc.GetStock(c.UserContext(), namespaceOf(c), c.Params("sku"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(*v))
}

// Movements godoc
// @Summary      Libro de movimientos
// @Tags         stock
// @Produce      json
// @Param        sku        query  string  false  "filtrar por SKU"
// @Param        documento  query  string  false  "filtrar por documento causante"
// @Param        limit      query  int     false  "máximo 1000"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementListRequest
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validate.Struct(&q); err != nil {
		return validationResponse(c, err)
	}
	q.DefaultPage()
	list, err := h.uc.ListMovements(c.UserContext(), entity.MovementFilter{
		SkuCode:      q.SkuCode,
		CausingDocID: q.CausingDocID,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar stock desde el libro de movimientos
// @Description  Con cola configurada encola stock:reconcile (202); si no, corre en línea (200).
// @Tags         stock
// @Produce      json
// @Success      200  {object}  reconciliation.Report
// @Success      202  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/reconcile [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	who := GetIdentity(c)
	if h.queue != nil {
		info, err := h.queue.EnqueueReconcile(c.UserContext(), jobs.ReconcilePayload{RequestedBy: who.UserID})
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "reconciliación ya encolada"})
		}
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "reconciliación encolada", "taskId": info.ID})
	}
	rep, err := h.job.Run(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rep)
}
