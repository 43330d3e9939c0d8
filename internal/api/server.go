// Package api exposes the health snapshot over HTTP for consumers that
// prefer polling an endpoint to reading the status file. The server is
// optional and read-only.
package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/slsksticky/slsksticky/internal/config"
	"github.com/slsksticky/slsksticky/internal/health"
	"github.com/slsksticky/slsksticky/internal/pkg/logger"
)

// Server serves the status API
type Server struct {
	app   *fiber.App
	cfg   *config.APIConfig
	state *health.State
	log   *logger.Logger
}

// New creates a status API server reading from state
func New(cfg *config.APIConfig, state *health.State, log *logger.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "slsksticky status API",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())

	s := &Server{
		app:   app,
		cfg:   cfg,
		state: state,
		log:   log.Component("api"),
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")
	api.Get("/health", s.handleHealth)
}

// handleHealth serves the current snapshot. Unhealthy snapshots answer
// 503 so the endpoint can back a container healthcheck directly.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	snap := s.state.Current()

	code := fiber.StatusOK
	if !snap.Healthy {
		code = fiber.StatusServiceUnavailable
	}
	return SuccessResp(c, code, snap)
}

// Start starts the server and blocks until it is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%d", s.cfg.Port)
	s.log.Info("starting status API server", "addr", addr)
	return s.app.Listen(addr)
}

// Stop gracefully stops the server
func (s *Server) Stop() error {
	s.log.Info("stopping status API server")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing)
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return ErrorResp(c, code, message)
}
