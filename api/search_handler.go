package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clipperhq/clipper/pkg/knowledge"
)

// SearchResult is a single retrieved chunk.
type SearchResult struct {
	Text      string  `json:"text"`
	SourceURL string  `json:"source_url"`
	Sequence  int     `json:"sequence"`
	Score     float32 `json:"score"`
}

// SearchOutput is the response body for GET /v1/search.
type SearchOutput struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// handleSearch handles GET /v1/search requests: retrieval without
// generation. Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default from config): number of results to return
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := 0
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	ranked, err := s.session.Retrieve(c.Context(), query, topK)
	if err != nil {
		switch {
		case errors.Is(err, knowledge.ErrNotReady):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, knowledge.ErrEmptyInput), errors.Is(err, knowledge.ErrConfiguration):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		default:
			s.logger.Error("search failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	results := make([]SearchResult, len(ranked))
	for i, r := range ranked {
		results[i] = SearchResult{
			Text:      r.Text,
			SourceURL: r.SourceURL,
			Sequence:  r.Sequence,
			Score:     r.Score,
		}
	}

	return c.JSON(SearchOutput{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}
