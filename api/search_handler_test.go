package api

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	testutils "github.com/clipperhq/clipper/pkg/utils/test"
)

var _ = Describe("handleSearch", func() {
	var (
		server   *Server
		fetcher  *testutils.MockFetcher
		embedder *testutils.MockEmbedder
	)

	BeforeEach(func() {
		fetcher = testutils.NewMockFetcher()
		fetcher.Pages["https://example.com/alpha"] = "alpha content"
		fetcher.Pages["https://example.com/beta"] = "beta content"

		embedder = testutils.NewMockEmbedder()
		embedder.Embeddings["alpha content"] = []float32{1, 0, 0}
		embedder.Embeddings["beta content"] = []float32{0, 1, 0}
		embedder.Embeddings["about alpha"] = []float32{1, 0, 0}

		server, _ = newTestServer(fetcher, embedder, testutils.NewMockLLMClient())
	})

	search := func(target string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("returns 400 when the query is missing", func() {
		resp := search("/v1/search")
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("returns 400 for a non-positive top_k", func() {
		resp := search("/v1/search?query=x&top_k=0")
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))

		resp = search("/v1/search?query=x&top_k=nope")
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("returns 409 before any ingestion", func() {
		resp := search("/v1/search?query=about+alpha")
		Expect(resp.StatusCode).To(Equal(fiber.StatusConflict))
	})

	Context("with an ingested knowledge base", func() {
		BeforeEach(func() {
			ingestURLs(server, "https://example.com/alpha", "https://example.com/beta")
		})

		It("returns the most relevant chunks first", func() {
			resp := search("/v1/search?query=about+alpha")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var output SearchOutput
			Expect(json.NewDecoder(resp.Body).Decode(&output)).To(Succeed())
			Expect(output.Query).To(Equal("about alpha"))
			Expect(output.Count).To(Equal(2))
			Expect(output.Results[0].SourceURL).To(Equal("https://example.com/alpha"))
			Expect(output.Results[0].Text).To(Equal("alpha content"))
		})

		It("honors an explicit top_k", func() {
			resp := search("/v1/search?query=about+alpha&top_k=1")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var output SearchOutput
			Expect(json.NewDecoder(resp.Body).Decode(&output)).To(Succeed())
			Expect(output.Results).To(HaveLen(1))
		})
	})
})
