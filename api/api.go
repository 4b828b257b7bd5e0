package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	apimcp "github.com/clipperhq/clipper/api/mcp"
	"github.com/clipperhq/clipper/pkg/research"
)

// Server is the API server for clipper's research session.
type Server struct {
	config  Config
	session *research.Session
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server over the given session.
// The session is injected to allow sharing with other surfaces
// (e.g., the MCP endpoint, which answers over the same knowledge base).
func NewServer(config Config, session *research.Session, mcpServer *apimcp.Server, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		session: session,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/status", s.handleStatus)
	app.Post("/v1/ingest", s.handleIngest)
	app.Get("/v1/ask", s.handleAsk)
	app.Get("/v1/search", s.handleSearch)

	if mcpServer != nil && mcpServer.Enabled() {
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
