package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/application/inventory"
	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/application/salal"
	"github.com/jhoicas/salal-stock/internal/application/vale"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ValeUC      *vale.UseCase
	SalaLUC     *salal.UseCase
	InventoryUC *inventory.UseCase
	Reconciler  Reconciler
	Queue       ReconcileQueue // opcional
	Watcher     ledger.Watcher
	Printer     ValePrinter // opcional: sin él no se expone /pdf
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Todas las rutas de /api requieren identidad.
	api := app.Group("/api", RequestLogger(deps.Log), IdentityMiddleware())

	vales := api.Group("/vales")
	valeHandler := NewValeHandler(deps.ValeUC, deps.Printer)
	vales.Post("/", valeHandler.Create)
	vales.Get("/:id", valeHandler.GetByID)
	if deps.Printer != nil {
		vales.Get("/:id/pdf", valeHandler.PDF)
	}
	vales.Post("/:id/validate", valeHandler.Validate)
	vales.Post("/:id/reject", valeHandler.Reject)

	lotes := api.Group("/lotes")
	loteHandler := NewLoteHandler(deps.SalaLUC)
	lotes.Post("/", loteHandler.Create)
	lotes.Get("/", loteHandler.List)
	lotes.Get("/:id", loteHandler.GetByID)
	lotes.Get("/:id/events", loteHandler.Events)
	lotes.Post("/:id/lavado", loteHandler.Lavado)
	lotes.Post("/:id/calibration", loteHandler.Calibration)
	lotes.Post("/:id/close", loteHandler.Close)

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.InventoryUC, deps.Reconciler, deps.Queue)
	streamHandler := NewStreamHandler(deps.Watcher, deps.Log)
	stock.Get("/", stockHandler.List)
	stock.Post("/adjustments", stockHandler.Adjust)
	stock.Post("/reconcile", stockHandler.Reconcile)
	stock.Get("/stream", streamHandler.Stream)
	stock.Get("/:sku", stockHandler.GetBySku)
	api.Get("/movements", stockHandler.Movements)
}
