package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apimcp "github.com/clipperhq/clipper/api/mcp"
	"github.com/clipperhq/clipper/pkg/logger"
	"github.com/clipperhq/clipper/pkg/research"
	testutils "github.com/clipperhq/clipper/pkg/utils/test"
	"github.com/clipperhq/clipper/pkg/vector"
	"github.com/clipperhq/clipper/pkg/vector/inmemory"
)

// newTestServer builds a server over a session wired with the shared fakes.
func newTestServer(fetcher *testutils.MockFetcher, embedder *testutils.MockEmbedder, client *testutils.MockLLMClient) (*Server, *research.Session) {
	session, err := research.NewSession(&research.SessionOpts{
		Fetcher:  fetcher,
		Embedder: embedder,
		Client:   client,
		Factory: func() (vector.Driver, error) {
			return inmemory.NewDriver(), nil
		},
		Logger: logger.Nop(),
	})
	Expect(err).NotTo(HaveOccurred())

	server := NewServer(Config{ListenAddr: ":0"}, session, nil, logger.Nop())
	return server, session
}

var _ = Describe("Server", func() {
	var (
		server   *Server
		fetcher  *testutils.MockFetcher
		embedder *testutils.MockEmbedder
		client   *testutils.MockLLMClient
	)

	BeforeEach(func() {
		fetcher = testutils.NewMockFetcher()
		fetcher.Pages["https://example.com/alpha"] = "alpha content"

		embedder = testutils.NewMockEmbedder()
		client = testutils.NewMockLLMClient("Alpha", " is", " first.")

		server, _ = newTestServer(fetcher, embedder, client)
	})

	Describe("the /mcp mount", func() {
		It("is not mounted when MCP is disabled", func() {
			noop, err := apimcp.NewServer(apimcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())

			_, session := newTestServer(fetcher, embedder, client)
			disabled := NewServer(Config{ListenAddr: ":0"}, session, noop, logger.Nop())

			body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
			req, err := http.NewRequest(http.MethodPost, "/mcp", body)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := disabled.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("pong"))
		})
	})

	Describe("GET /v1/status", func() {
		It("reports not ready before any ingestion", func() {
			req, err := http.NewRequest(http.MethodGet, "/v1/status", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var status StatusResponse
			Expect(json.NewDecoder(resp.Body).Decode(&status)).To(Succeed())
			Expect(status.Ready).To(BeFalse())
			Expect(status.ChunkCount).To(BeZero())
		})

		It("reports readiness and chunk count after ingestion", func() {
			ingestURLs(server, "https://example.com/alpha")

			req, err := http.NewRequest(http.MethodGet, "/v1/status", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())

			var status StatusResponse
			Expect(json.NewDecoder(resp.Body).Decode(&status)).To(Succeed())
			Expect(status.Ready).To(BeTrue())
			Expect(status.ChunkCount).To(Equal(1))
		})
	})
})
