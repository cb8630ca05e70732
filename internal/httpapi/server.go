// Package httpapi exposes pending approvals over HTTP so an external
// surface (a dashboard, a chat bot) can answer them.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/cortexd/internal/cortex"
	"github.com/fyrsmithlabs/cortexd/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server provides the cortexd approval API.
type Server struct {
	echo    *echo.Echo
	machine *cortex.Machine
	logger  *logging.Logger
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates the approval API server.
func NewServer(machine *cortex.Machine, logger *logging.Logger, cfg *Config) (*Server, error) {
	if machine == nil {
		return nil, fmt.Errorf("machine cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9090,
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

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		machine: machine,
		logger:  logger,
		config:  cfg,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)

	v1 := s.echo.Group("/v1")
	v1.GET("/approvals", s.handleListApprovals)
	v1.POST("/approvals/:id", s.handleRespond)
}

// HealthResponse is the response body for GET /healthz.
type HealthResponse struct {
	Status string       `json:"status"`
	Phase  cortex.Phase `json:"phase"`
}

// ApprovalsResponse is the response body for GET /v1/approvals.
type ApprovalsResponse struct {
	Approvals []cortex.ApprovalRequest `json:"approvals"`
}

// RespondRequest is the request body for POST /v1/approvals/:id.
type RespondRequest struct {
	Option string `json:"option"`
}

// RespondResponse is the response body for POST /v1/approvals/:id.
type RespondResponse struct {
	ID       string `json:"id"`
	Option   string `json:"option"`
	Resolved bool   `json:"resolved"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Phase:  s.machine.Phase(),
	})
}

func (s *Server) handleListApprovals(c echo.Context) error {
	pending := s.machine.PendingApprovals()
	if pending == nil {
		pending = []cortex.ApprovalRequest{}
	}
	return c.JSON(http.StatusOK, ApprovalsResponse{Approvals: pending})
}

func (s *Server) handleRespond(c echo.Context) error {
	id := c.Param("id")

	var req RespondRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Option == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "option field is required")
	}

	if s.machine.RespondToApproval(id, req.Option) {
		s.logger.Info(c.Request().Context(), "approval resolved",
			zap.String("approval_id", id),
			zap.String("option", req.Option))
		return c.JSON(http.StatusOK, RespondResponse{ID: id, Option: req.Option, Resolved: true})
	}

	// Distinguish a vanished request from a bad option so callers can
	// stop retrying expired approvals.
	for _, pending := range s.machine.PendingApprovals() {
		if pending.ID == id {
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("option %q is not offered by approval %s", req.Option, id))
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "approval not found or already resolved")
}

// Handler returns the underlying handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting approval api", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down approval api")
	return s.echo.Shutdown(ctx)
}
