package api

import (
	"strconv"
	"time"

	"github.com/basekick-labs/pqdif/internal/catalog"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	defaultSearchLimit = 100
	maxSearchLimit     = 10000
)

// CatalogHandler serves indexed files and observation search
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(c *catalog.Catalog, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
		logger:  logger.With().Str("component", "catalog-handler").Logger(),
	}
}

// RegisterRoutes registers catalog API routes
func (h *CatalogHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/files", h.handleListFiles)
	app.Get("/api/v1/observations", h.handleSearch)
}

func (h *CatalogHandler) handleListFiles(c *fiber.Ctx) error {
	files, err := h.catalog.Files(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list files")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list files",
		})
	}

	return c.JSON(fiber.Map{
		"count": len(files),
		"files": files,
	})
}

// handleSearch filters observations by name, data_source, file and a
// from/to RFC3339 start time range.
func (h *CatalogHandler) handleSearch(c *fiber.Ctx) error {
	filter := catalog.Filter{
		Name:       c.Query("name"),
		DataSource: c.Query("data_source"),
		File:       c.Query("file"),
		Limit:      defaultSearchLimit,
	}

	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 || limit > maxSearchLimit {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be between 1 and 10000",
			})
		}
		filter.Limit = limit
	}

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": p.name + " must be an RFC3339 timestamp",
			})
		}
		*p.dst = t
	}

	observations, err := h.catalog.Search(c.UserContext(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to search observations")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search observations",
		})
	}

	return c.JSON(fiber.Map{
		"count":        len(observations),
		"limit":        filter.Limit,
		"observations": observations,
	})
}
