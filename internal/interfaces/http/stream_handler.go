package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/application/ledger"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

const (
	streamBuffer    = 64
	streamHeartbeat = 15 * time.Second
)

// StreamHandler expone los cambios confirmados como Server-Sent Events.
type StreamHandler struct {
	watcher ledger.Watcher
	log     zerolog.Logger
}

// NewStreamHandler construye el handler.
func NewStreamHandler(watcher ledger.Watcher, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{watcher: watcher, log: log}
}

// Stream godoc
// @Summary      Cambios de stock en tiempo real (SSE)
// @Tags         stock
// @Produce      text/event-stream
// @Param        collection  query  string  false  "filtrar por colección (stock, stockSalaL, vales, ...)"
// @Success      200
// @Router       /api/stock/stream [get]
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	filter := c.Query("collection")
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan entity.Change, streamBuffer)
	unsubscribe, err := h.watcher.Watch(ctx, func(ch entity.Change) {
		if filter != "" && ch.Collection != filter {
			return
		}
		select {
		case changes <- ch:
		default:
			// Cliente lento: se descarta el aviso.
		}
	})
	if err != nil {
		cancel()
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()
		ticker := time.NewTicker(streamHeartbeat)
		defer ticker.Stop()

		if err := writeFrame(w, ": conectado\n\n"); err != nil {
			return
		}
		for {
			select {
			case ch := <-changes:
				raw, err := json.Marshal(ch)
				if err != nil {
					continue
				}
				if err := writeFrame(w, fmt.Sprintf("event: change\ndata: %s\n\n", raw)); err != nil {
					h.log.Debug().Err(err).Msg("cliente SSE desconectado")
					return
				}
			case <-ticker.C:
				if err := writeFrame(w, ": ping\n\n"); err != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeFrame(w *bufio.Writer, frame string) error {
	if _, err := w.WriteString(frame); err != nil {
		return err
	}
	return w.Flush()
}
