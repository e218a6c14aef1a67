// Package http provides the REST API for frogpad.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"frogpad/internal/service"
)

// Server exposes the task, auth and admin APIs over HTTP.
type Server struct {
	echo    *echo.Echo
	tasks   TaskAPI
	auth    AuthAPI
	admin   AdminAPI
	logger  *zap.Logger
	metrics *Metrics
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// DefaultUserID is attributed to completion events when a request
	// carries no explicit userId. This fallback lives only at the HTTP
	// boundary; the services always take an explicit user id.
	DefaultUserID int64
}

// NewServer creates a new HTTP server.
func NewServer(tasks TaskAPI, auth AuthAPI, admin AdminAPI, logger *zap.Logger, cfg *Config) (*Server, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:          "localhost",
			Port:          8080,
			DefaultUserID: 1,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	metrics := NewMetrics()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
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
		echo:    e,
		tasks:   tasks,
		auth:    auth,
		admin:   admin,
		logger:  logger,
		metrics: metrics,
		config:  cfg,
	}

	e.HTTPErrorHandler = s.errorHandler

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := s.echo.Group("/api")
	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks", s.handleCreateTask)
	api.GET("/tasks/:id", s.handleGetTask)
	api.PATCH("/tasks/:id", s.handleUpdateTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)
	api.GET("/tasks/:id/weekly-stats", s.handleWeeklyStats)

	api.GET("/tags", s.handleListTags)
	api.POST("/tags", s.handleUpsertTag)
	api.GET("/comments", s.handleListComments)
	api.POST("/comments", s.handleCreateComment)
	api.GET("/export", s.handleExport)

	api.POST("/signup", s.handleSignUp)
	api.POST("/login", s.handleLogin)

	admin := s.echo.Group("/admin")
	admin.GET("", s.handleAdminTables)
	admin.GET("/:table", s.handleAdminListRows)
	admin.DELETE("/:table/:id", s.handleAdminDeleteRow)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// respondError maps service errors onto the HTTP error taxonomy.
func (s *Server) respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotWeekly):
		isWeekly := false
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), IsWeekly: &isWeekly})
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("internal error",
			zap.Error(err),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// errorHandler renders framework-level errors (bad routes, bind failures)
// with the same {error} payload the handlers use.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		msg = fmt.Sprintf("%v", httpErr.Message)
	} else {
		s.logger.Error("unhandled error", zap.Error(err))
	}

	if jsonErr := c.JSON(status, ErrorResponse{Error: msg}); jsonErr != nil {
		s.logger.Error("failed to write error response", zap.Error(jsonErr))
	}
}

// userID resolves the acting user for a request, falling back to the
// configured default identity.
func (s *Server) userID(explicit *int64) int64 {
	if explicit != nil {
		return *explicit
	}
	return s.config.DefaultUserID
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

// requestValidator adapts go-playground/validator to echo's Validator hook.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
