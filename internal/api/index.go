package api

import (
	"context"
	"errors"

	"github.com/basekick-labs/pqdif/internal/indexer"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// IndexSchedulerInterface defines the scheduler operations the API exposes
type IndexSchedulerInterface interface {
	Status() map[string]interface{}
	TriggerNow(ctx context.Context) (*indexer.Result, error)
}

// IndexHandler triggers and reports catalog indexing
type IndexHandler struct {
	scheduler IndexSchedulerInterface
	logger    zerolog.Logger
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(scheduler IndexSchedulerInterface, logger zerolog.Logger) *IndexHandler {
	return &IndexHandler{
		scheduler: scheduler,
		logger:    logger.With().Str("component", "index-handler").Logger(),
	}
}

// RegisterRoutes registers index API routes
func (h *IndexHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/index", h.handleTrigger)
	app.Get("/api/v1/index/status", h.handleStatus)
}

// handleTrigger runs an indexing pass and waits for its result
func (h *IndexHandler) handleTrigger(c *fiber.Ctx) error {
	res, err := h.scheduler.TriggerNow(c.UserContext())
	if errors.Is(err, indexer.ErrAlreadyRunning) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Manual indexing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"result": res,
		})
	}

	h.logger.Info().
		Int("indexed", res.Indexed).
		Int("failed", res.Failed).
		Msg("Manual indexing completed")
	return c.JSON(res)
}

func (h *IndexHandler) handleStatus(c *fiber.Ctx) error {
	return c.JSON(h.scheduler.Status())
}
