package api

import (
	"context"
	"fmt"
	"time"

	"github.com/basekick-labs/pqdif/internal/config"
	"github.com/basekick-labs/pqdif/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Server represents the HTTP API server
type Server struct {
	app    *fiber.App
	logger zerolog.Logger
	config *config.ServerConfig
}

// NewServer creates a new HTTP server with Fiber
func NewServer(cfg *config.ServerConfig, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "PQDIF Catalog",
		ReadTimeout:           time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Use(securityHeaders())
	app.Use(requestLogger(logger))

	s := &Server{
		app:    app,
		logger: logger.With().Str("component", "api-server").Logger(),
		config: cfg,
	}
	s.app.Get("/health", s.healthHandler)
	s.app.Get("/ready", s.readyHandler)
	s.app.Get("/metrics", s.metricsHandler)
	return s
}

var startTime = time.Now()

// healthHandler returns server health status
func (s *Server) healthHandler(c *fiber.Ctx) error {
	uptime := time.Since(startTime)
	return c.JSON(fiber.Map{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"uptime":     uptime.String(),
		"uptime_sec": uptime.Seconds(),
	})
}

// readyHandler returns server readiness status (for Kubernetes readiness probes)
func (s *Server) readyHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ready",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"uptime_sec": time.Since(startTime).Seconds(),
	})
}

// metricsHandler returns metrics in Prometheus format or JSON
func (s *Server) metricsHandler(c *fiber.Ctx) error {
	m := metrics.Get()
	if c.Get(fiber.HeaderAccept) == fiber.MIMEApplicationJSON {
		return c.JSON(m.Snapshot())
	}

	c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4; charset=utf-8")
	return c.SendString(m.PrometheusFormat())
}

// Start validates TLS settings and serves in the background. Listener
// failures are sent on the returned channel.
func (s *Server) Start() (<-chan error, error) {
	if err := s.config.ValidateTLS(); err != nil {
		return nil, err
	}

	addr := s.config.Addr()
	s.logger.Info().
		Str("addr", addr).
		Bool("tls", s.config.TLSEnabled).
		Msg("Starting PQDIF HTTP server")

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.config.TLSEnabled {
			err = s.app.ListenTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.app.Listen(addr)
		}
		if err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server gracefully...")

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

// GetApp returns the underlying Fiber app (for registering handlers)
func (s *Server) GetApp() *fiber.App {
	return s.app
}

// customErrorHandler handles Fiber errors
func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("Request error")

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// securityHeaders adds security headers to all responses
func securityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// API-only service
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		return c.Next()
	}
}

// requestLogger records request metrics and logs failed requests
func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		metrics.Get().RecordHTTPRequest(status, duration.Microseconds())

		if status < 400 {
			return err
		}

		logEvent := logger.Warn()
		if status >= 500 {
			logEvent = logger.Error()
		}
		logEvent.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration_ms", duration).
			Str("ip", c.IP()).
			Msg("HTTP request error")

		return err
	}
}
