package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/clipperhq/clipper/pkg/knowledge"
	"github.com/clipperhq/clipper/pkg/notify"
)

// handleAsk handles GET /v1/ask requests, streaming the answer as
// server-sent events. Query parameters:
//   - question (required): the question to answer
//
// The stream carries one "token" event per generated token, a "sources"
// event with the citation list, and a terminal "done" event. Failures after
// streaming has begun are reported as an "error" event.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	question := c.Query("question")
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "question parameter is required",
		})
	}

	if !s.session.Ready() {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error: knowledge.ErrNotReady.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// Use io.Pipe + SetBodyStream so every event is flushed to the socket
	// as it is written: pw.Write blocks until fasthttp's chunked writer has
	// consumed the frame, giving per-token streaming with backpressure.
	//
	// The answer goroutine gets context.Background() instead of c.Context()
	// because fasthttp recycles its RequestCtx after the handler returns,
	// while the goroutine keeps running until the stream ends.
	pr, pw := io.Pipe()
	go s.streamAnswer(context.Background(), question, pw)

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// streamAnswer runs the question through the session and writes the
// resulting SSE frames to the pipe.
func (s *Server) streamAnswer(ctx context.Context, question string, pw *io.PipeWriter) {
	defer pw.Close()

	n := &sseNotifier{w: pw}

	if _, err := s.session.Answer(ctx, question, n); err != nil {
		s.logger.Error("answer failed", "error", err)
		n.writeEvent("error", ErrorResponse{Error: err.Error()})
		return
	}

	n.writeEvent("done", struct{}{})
}

// sseNotifier forwards answer progress to an SSE stream. A write failure
// means the client went away; the error is propagated so the session stops
// streaming.
type sseNotifier struct {
	w io.Writer
}

type tokenEvent struct {
	Text string `json:"text"`
}

type sourcesEvent struct {
	Sources []string `json:"sources"`
}

func (n *sseNotifier) IngestComplete(_ context.Context, _ *notify.IngestSummary) error {
	return nil
}

func (n *sseNotifier) AnswerToken(_ context.Context, token string) error {
	return n.writeEvent("token", tokenEvent{Text: token})
}

func (n *sseNotifier) AnswerComplete(_ context.Context, sources []string) error {
	return n.writeEvent("sources", sourcesEvent{Sources: sources})
}

func (n *sseNotifier) Close() error {
	return nil
}

func (n *sseNotifier) writeEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(n.w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
