package api

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/basekick-labs/pqdif/internal/config"
	"github.com/basekick-labs/pqdif/internal/export"
	"github.com/basekick-labs/pqdif/internal/metrics"
	"github.com/basekick-labs/pqdif/internal/storage"
	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ExportHandler converts a stored PQDIF file into a columnar download
type ExportHandler struct {
	backend       storage.Backend
	maxObjectSize int64
	defaults      config.ExportConfig
	logger        zerolog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(backend storage.Backend, maxObjectSize int64, defaults config.ExportConfig, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		backend:       backend,
		maxObjectSize: maxObjectSize,
		defaults:      defaults,
		logger:        logger.With().Str("component", "export-handler").Logger(),
	}
}

// RegisterRoutes registers export API routes
func (h *ExportHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/export", h.handleExport)
}

// handleExport reads ?path= from storage and answers with its observations
// encoded per ?format= (msgpack, arrow) and ?compression= (none, gzip, zstd).
func (h *ExportHandler) handleExport(c *fiber.Ctx) error {
	objectPath := c.Query("path")
	if objectPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "path is required",
		})
	}
	format := c.Query("format", h.defaults.Format)
	compression := strings.ToLower(c.Query("compression", h.defaults.Compression))

	enc, err := export.NewEncoder(format, h.defaults.Measurement, h.logger)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	switch compression {
	case "none", "gzip", "zstd":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unsupported compression %q (use none, gzip or zstd)", compression),
		})
	}

	rs, err := storage.Open(c.UserContext(), h.backend, objectPath, h.maxObjectSize)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.Error().Err(err).Str("path", objectPath).Msg("Failed to open object")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to open object",
		})
	}

	p, err := logical.NewParser(rs, false, h.logger)
	if err != nil {
		rs.Close()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	defer p.Close()

	tables, res, err := export.ReadTables(p, h.logger)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, enc, compression, tables); err != nil {
		h.logger.Error().Err(err).Str("path", objectPath).Msg("Failed to encode export")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode export",
		})
	}

	metrics.Get().RecordExport(res.Observations, res.Failed, res.Rows, int64(buf.Len()))

	name := strings.TrimSuffix(path.Base(objectPath), path.Ext(objectPath)) +
		enc.Extension() + export.CompressionExtension(compression)

	c.Set(fiber.HeaderContentType, exportContentType(format, compression))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Set("X-PQDIF-Observations", strconv.Itoa(res.Observations))
	c.Set("X-PQDIF-Failed", strconv.Itoa(res.Failed))
	c.Set("X-PQDIF-Rows", strconv.Itoa(res.Rows))
	return c.Send(buf.Bytes())
}

func exportContentType(format, compression string) string {
	switch compression {
	case "gzip":
		return "application/gzip"
	case "zstd":
		return "application/zstd"
	}
	if format == "arrow" {
		return "application/vnd.apache.arrow.stream"
	}
	return "application/msgpack"
}
