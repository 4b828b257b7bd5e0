package api

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse describes the current state of the knowledge base.
type StatusResponse struct {
	Ready      bool `json:"ready"`
	ChunkCount int  `json:"chunk_count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStatus reports whether the session can answer questions yet.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Ready:      s.session.Ready(),
		ChunkCount: s.session.ChunkCount(),
	})
}
