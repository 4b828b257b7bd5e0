package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	testutils "github.com/clipperhq/clipper/pkg/utils/test"
)

// ingestURLs posts the given URLs to /v1/ingest and asserts success.
func ingestURLs(server *Server, urls ...string) {
	GinkgoHelper()

	body, err := json.Marshal(IngestRequest{URLs: urls})
	Expect(err).NotTo(HaveOccurred())

	req, err := http.NewRequest(http.MethodPost, "/v1/ingest", bytes.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.app.Test(req)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
}

var _ = Describe("handleIngest", func() {
	var (
		server   *Server
		fetcher  *testutils.MockFetcher
		embedder *testutils.MockEmbedder
		client   *testutils.MockLLMClient
	)

	BeforeEach(func() {
		fetcher = testutils.NewMockFetcher()
		fetcher.Pages["https://example.com/alpha"] = "alpha content"
		fetcher.Pages["https://example.com/beta"] = "beta content"

		embedder = testutils.NewMockEmbedder()
		client = testutils.NewMockLLMClient("answer")

		server, _ = newTestServer(fetcher, embedder, client)
	})

	postIngest := func(body []byte) *http.Response {
		req, err := http.NewRequest(http.MethodPost, "/v1/ingest", bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("ingests the given URLs and returns a summary", func() {
		body, err := json.Marshal(IngestRequest{
			URLs: []string{"https://example.com/alpha", "https://example.com/beta"},
		})
		Expect(err).NotTo(HaveOccurred())

		resp := postIngest(body)
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var result IngestResponse
		Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
		Expect(result.URLs).To(Equal([]string{"https://example.com/alpha", "https://example.com/beta"}))
		Expect(result.ChunkCount).To(Equal(2))
	})

	It("returns 400 for a malformed body", func() {
		resp := postIngest([]byte("{not json"))
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("returns 400 for an empty URL list", func() {
		body, err := json.Marshal(IngestRequest{})
		Expect(err).NotTo(HaveOccurred())

		resp := postIngest(body)
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))

		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(respBody)).To(ContainSubstring("no URLs"))
	})

	It("returns 502 when a URL cannot be fetched", func() {
		body, err := json.Marshal(IngestRequest{
			URLs: []string{"https://example.com/missing"},
		})
		Expect(err).NotTo(HaveOccurred())

		resp := postIngest(body)
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadGateway))

		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(respBody)).To(ContainSubstring("https://example.com/missing"))
	})
})
