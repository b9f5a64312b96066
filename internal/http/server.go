// Package http provides the HTTP API for extractd.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/luachlabs/extractd/internal/extraction"
)

// Extractor is the part of the extraction orchestrator the HTTP layer
// needs. Tests substitute a stub.
type Extractor interface {
	Extract(ctx context.Context, text string, intent extraction.Intent, timezone string) (extraction.Result, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	DefaultTimezone string
}

// Server provides HTTP endpoints for extractd.
type Server struct {
	echo      *echo.Echo
	extractor Extractor
	logger    *zap.Logger
	config    *Config
}

// NewServer creates a new HTTP server.
func NewServer(extractor Extractor, logger *zap.Logger, cfg *Config) (*Server, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:            "localhost",
			Port:            8620,
			DefaultTimezone: "Asia/Jerusalem",
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:      e,
		extractor: extractor,
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()
	return s, nil
}

// Use appends middleware, e.g. the metrics middleware, before Start.
func (s *Server) Use(mw echo.MiddlewareFunc) {
	s.echo.Use(mw)
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/extract", s.handleExtract)
}

// ExtractRequest is the request body for POST /api/v1/extract.
type ExtractRequest struct {
	Text     string `json:"text"`
	Intent   string `json:"intent"`
	Timezone string `json:"timezone,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleExtract runs one extraction. The response body is the
// orchestrator result verbatim: entities, warnings and the model-used
// flag.
func (s *Server) handleExtract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid extract request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}
	intent, err := extraction.ParseIntent(req.Intent)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = s.config.DefaultTimezone
	}

	result, err := s.extractor.Extract(c.Request().Context(), req.Text, intent, timezone)
	if err != nil {
		// The orchestrator errors only on an unresolvable timezone.
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.logger.Debug("extraction served",
		zap.String("intent", string(intent)),
		zap.Int("entities", result.EntityCount),
		zap.Bool("model_used", result.ModelUsed),
	)

	return c.JSON(http.StatusOK, result)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
