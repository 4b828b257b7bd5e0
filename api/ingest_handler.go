package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clipperhq/clipper/pkg/fetch"
	"github.com/clipperhq/clipper/pkg/knowledge"
)

// IngestRequest is the JSON body for POST /v1/ingest.
type IngestRequest struct {
	URLs []string `json:"urls"`
}

// IngestResponse summarizes a completed ingestion run.
type IngestResponse struct {
	URLs       []string `json:"urls"`
	ChunkCount int      `json:"chunk_count"`
	DurationMS int64    `json:"duration_ms"`
}

// handleIngest handles POST /v1/ingest requests. The request blocks until
// the knowledge base has been replaced; questions asked meanwhile are
// answered against the previous build.
func (s *Server) handleIngest(c *fiber.Ctx) error {
	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	summary, err := s.session.Ingest(c.Context(), req.URLs, nil)
	if err != nil {
		var fetchErr *fetch.Error

		switch {
		case errors.Is(err, knowledge.ErrEmptyInput):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		case errors.As(err, &fetchErr):
			s.logger.Error("ingest fetch failed", "url", fetchErr.URL, "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
		default:
			s.logger.Error("ingest failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	return c.JSON(IngestResponse{
		URLs:       summary.URLs,
		ChunkCount: summary.ChunkCount,
		DurationMS: summary.Duration.Milliseconds(),
	})
}
