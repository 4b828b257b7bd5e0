package research_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clipperhq/clipper/pkg/fetch"
	"github.com/clipperhq/clipper/pkg/knowledge"
	"github.com/clipperhq/clipper/pkg/llm"
	"github.com/clipperhq/clipper/pkg/logger"
	"github.com/clipperhq/clipper/pkg/research"
	testutils "github.com/clipperhq/clipper/pkg/utils/test"
	"github.com/clipperhq/clipper/pkg/vector"
	"github.com/clipperhq/clipper/pkg/vector/inmemory"
)

var _ = Describe("Session", func() {
	var (
		ctx      context.Context
		fetcher  *testutils.MockFetcher
		embedder *testutils.MockEmbedder
		client   *testutils.MockLLMClient
		notifier *testutils.RecordingNotifier
		session  *research.Session
	)

	newSession := func(cfg research.Config) *research.Session {
		s, err := research.NewSession(&research.SessionOpts{
			Config:   cfg,
			Fetcher:  fetcher,
			Embedder: embedder,
			Client:   client,
			Factory: func() (vector.Driver, error) {
				return inmemory.NewDriver(), nil
			},
			Logger: logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	BeforeEach(func() {
		ctx = context.Background()

		fetcher = testutils.NewMockFetcher()
		fetcher.Pages["https://example.com/alpha"] = "alpha content"
		fetcher.Pages["https://example.com/beta"] = "beta content"

		embedder = testutils.NewMockEmbedder()
		embedder.Embeddings["alpha content"] = []float32{1, 0, 0}
		embedder.Embeddings["beta content"] = []float32{0, 1, 0}
		embedder.Embeddings["about alpha"] = []float32{1, 0, 0}
		embedder.Embeddings["about beta"] = []float32{0, 1, 0}

		client = testutils.NewMockLLMClient("Alpha", " is", " first.")
		notifier = testutils.NewRecordingNotifier()

		session = newSession(research.Config{})
	})

	AfterEach(func() {
		Expect(session.Close()).To(Succeed())
	})

	Describe("NewSession", func() {
		It("rejects invalid chunking configuration", func() {
			_, err := research.NewSession(&research.SessionOpts{
				Config: research.Config{ChunkSize: 100, ChunkOverlap: 100},
			})
			Expect(err).To(MatchError(knowledge.ErrConfiguration))
		})

		It("rejects a negative top-k", func() {
			_, err := research.NewSession(&research.SessionOpts{
				Config: research.Config{TopK: -1},
			})
			Expect(err).To(MatchError(knowledge.ErrConfiguration))
		})
	})

	Describe("Ingest", func() {
		It("rejects an empty URL list", func() {
			_, err := session.Ingest(ctx, nil, notifier)
			Expect(err).To(MatchError(knowledge.ErrEmptyInput))
		})

		It("rejects a list of blank URLs", func() {
			_, err := session.Ingest(ctx, []string{"", "   "}, notifier)
			Expect(err).To(MatchError(knowledge.ErrEmptyInput))
		})

		It("builds a queryable knowledge base", func() {
			summary, err := session.Ingest(ctx, []string{
				"https://example.com/alpha",
				"https://example.com/beta",
			}, notifier)
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.ChunkCount).To(Equal(2))
			Expect(summary.URLs).To(Equal([]string{
				"https://example.com/alpha",
				"https://example.com/beta",
			}))

			Expect(session.Ready()).To(BeTrue())
			Expect(session.ChunkCount()).To(Equal(2))
		})

		It("notifies completion with the summary", func() {
			_, err := session.Ingest(ctx, []string{"https://example.com/alpha"}, notifier)
			Expect(err).NotTo(HaveOccurred())

			Expect(notifier.Summaries).To(HaveLen(1))
			Expect(notifier.Summaries[0].ChunkCount).To(Equal(1))
		})

		It("trims whitespace from URLs before fetching", func() {
			_, err := session.Ingest(ctx, []string{"  https://example.com/alpha  "}, notifier)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetcher.Calls).To(Equal([]string{"https://example.com/alpha"}))
		})

		Context("when a fetch fails", func() {
			It("returns an error naming the URL and builds nothing", func() {
				fetcher.FailOn = "https://example.com/beta"

				_, err := session.Ingest(ctx, []string{
					"https://example.com/alpha",
					"https://example.com/beta",
				}, notifier)
				Expect(err).To(HaveOccurred())

				var fetchErr *fetch.Error
				Expect(err).To(BeAssignableToTypeOf(fetchErr))
				Expect(err.Error()).To(ContainSubstring("https://example.com/beta"))

				Expect(session.Ready()).To(BeFalse())
			})

			It("keeps the previous knowledge base intact", func() {
				_, err := session.Ingest(ctx, []string{"https://example.com/alpha"}, notifier)
				Expect(err).NotTo(HaveOccurred())

				fetcher.FailOn = "https://example.com/beta"
				_, err = session.Ingest(ctx, []string{"https://example.com/beta"}, notifier)
				Expect(err).To(HaveOccurred())

				chunks, err := session.Retrieve(ctx, "about alpha", 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(chunks).To(HaveLen(1))
				Expect(chunks[0].Text).To(Equal("alpha content"))
			})
		})

		Context("when embedding fails", func() {
			It("keeps the previous knowledge base intact", func() {
				_, err := session.Ingest(ctx, []string{"https://example.com/alpha"}, notifier)
				Expect(err).NotTo(HaveOccurred())

				embedder.FailOn = "beta content"
				_, err = session.Ingest(ctx, []string{"https://example.com/beta"}, notifier)
				Expect(err).To(HaveOccurred())

				Expect(session.ChunkCount()).To(Equal(1))
				chunks, err := session.Retrieve(ctx, "about alpha", 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(chunks[0].Text).To(Equal("alpha content"))
			})
		})

		It("replaces the knowledge base wholesale on re-ingest", func() {
			_, err := session.Ingest(ctx, []string{"https://example.com/alpha"}, notifier)
			Expect(err).NotTo(HaveOccurred())

			_, err = session.Ingest(ctx, []string{"https://example.com/beta"}, notifier)
			Expect(err).NotTo(HaveOccurred())

			// Content from the first build is gone, whatever the query.
			chunks, err := session.Retrieve(ctx, "about alpha", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].Text).To(Equal("beta content"))
		})
	})

	Describe("Retrieve", func() {
		It("fails before the first ingest", func() {
			_, err := session.Retrieve(ctx, "anything", 0)
			Expect(err).To(MatchError(knowledge.ErrNotReady))
		})

		It("rejects an empty query", func() {
			_, err := session.Retrieve(ctx, "   ", 0)
			Expect(err).To(MatchError(knowledge.ErrEmptyInput))
		})

		It("rejects a negative k", func() {
			_, err := session.Retrieve(ctx, "anything", -3)
			Expect(err).To(MatchError(knowledge.ErrConfiguration))
		})

		Context("with an ingested knowledge base", func() {
			BeforeEach(func() {
				_, err := session.Ingest(ctx, []string{
					"https://example.com/alpha",
					"https://example.com/beta",
				}, notifier)
				Expect(err).NotTo(HaveOccurred())
			})

			It("ranks the most similar chunk first", func() {
				chunks, err := session.Retrieve(ctx, "about alpha", 0)
				Expect(err).NotTo(HaveOccurred())

				Expect(chunks).To(HaveLen(2))
				Expect(chunks[0].Text).To(Equal("alpha content"))
				Expect(chunks[0].SourceURL).To(Equal("https://example.com/alpha"))
				Expect(chunks[0].Score).To(BeNumerically(">", chunks[1].Score))
			})

			It("honors an explicit k", func() {
				chunks, err := session.Retrieve(ctx, "about beta", 1)
				Expect(err).NotTo(HaveOccurred())

				Expect(chunks).To(HaveLen(1))
				Expect(chunks[0].Text).To(Equal("beta content"))
			})

			It("returns everything when k exceeds the knowledge base", func() {
				chunks, err := session.Retrieve(ctx, "about alpha", 50)
				Expect(err).NotTo(HaveOccurred())
				Expect(chunks).To(HaveLen(2))
			})

			It("ranks identically across repeated retrievals", func() {
				first, err := session.Retrieve(ctx, "about alpha", 0)
				Expect(err).NotTo(HaveOccurred())

				second, err := session.Retrieve(ctx, "about alpha", 0)
				Expect(err).NotTo(HaveOccurred())

				Expect(second).To(HaveLen(len(first)))
				for i := range first {
					Expect(second[i].ID).To(Equal(first[i].ID))
				}
			})
		})
	})

	Describe("Answer", func() {
		It("fails before the first ingest", func() {
			_, err := session.Answer(ctx, "anything", notifier)
			Expect(err).To(MatchError(knowledge.ErrNotReady))
		})

		Context("with an ingested knowledge base", func() {
			BeforeEach(func() {
				_, err := session.Ingest(ctx, []string{
					"https://example.com/alpha",
					"https://example.com/beta",
				}, notifier)
				Expect(err).NotTo(HaveOccurred())
			})

			It("streams tokens to the notifier in order", func() {
				answer, err := session.Answer(ctx, "about alpha", notifier)
				Expect(err).NotTo(HaveOccurred())

				Expect(notifier.Tokens).To(Equal([]string{"Alpha", " is", " first."}))
				Expect(answer.Text).To(Equal("Alpha is first."))
			})

			It("cites the sources of the retrieved chunks", func() {
				answer, err := session.Answer(ctx, "about alpha", notifier)
				Expect(err).NotTo(HaveOccurred())

				Expect(answer.Sources).To(Equal([]string{
					"https://example.com/alpha",
					"https://example.com/beta",
				}))
				Expect(notifier.Sources).To(HaveLen(1))
				Expect(notifier.Sources[0]).To(Equal(answer.Sources))
			})

			It("grounds the prompt in the retrieved chunks", func() {
				_, err := session.Answer(ctx, "about alpha", notifier)
				Expect(err).NotTo(HaveOccurred())

				Expect(client.Requests).To(HaveLen(1))
				messages := client.Requests[0]
				Expect(messages).To(HaveLen(2))

				Expect(messages[0].Role).To(Equal(llm.RoleSystem))
				Expect(messages[0].Content).To(ContainSubstring("based ONLY on the provided context"))

				Expect(messages[1].Role).To(Equal(llm.RoleUser))
				Expect(messages[1].Content).To(ContainSubstring("alpha content\n\nbeta content"))
				Expect(messages[1].Content).To(ContainSubstring("Question: about alpha"))
			})

			Context("when generation fails mid-stream", func() {
				BeforeEach(func() {
					client.FailAfter = 2
				})

				It("preserves the tokens that made it out", func() {
					_, err := session.Answer(ctx, "about alpha", notifier)
					Expect(err).To(HaveOccurred())

					var genErr *research.GenerationError
					Expect(err).To(BeAssignableToTypeOf(genErr))
					Expect(err.(*research.GenerationError).Partial).To(Equal("Alpha is"))
					Expect(err).To(MatchError(llm.ErrGeneration))

					Expect(notifier.Tokens).To(Equal([]string{"Alpha", " is"}))
				})
			})

			Context("when the notifier rejects a token", func() {
				BeforeEach(func() {
					notifier.FailTokens = true
				})

				It("stops streaming and reports the partial answer", func() {
					_, err := session.Answer(ctx, "about alpha", notifier)
					Expect(err).To(HaveOccurred())

					var genErr *research.GenerationError
					Expect(err).To(BeAssignableToTypeOf(genErr))
					Expect(err.(*research.GenerationError).Partial).To(Equal("Alpha"))
				})
			})

			Context("when the stream completes without producing anything", func() {
				BeforeEach(func() {
					client.Tokens = nil
				})

				It("reports a generation error", func() {
					_, err := session.Answer(ctx, "about alpha", notifier)
					Expect(err).To(MatchError(llm.ErrGeneration))

					var genErr *research.GenerationError
					Expect(err).To(BeAssignableToTypeOf(genErr))
				})
			})

			Context("when the chat request itself fails", func() {
				BeforeEach(func() {
					client.FailChat = true
				})

				It("reports a generation error with no partial text", func() {
					_, err := session.Answer(ctx, "about alpha", notifier)
					Expect(err).To(MatchError(llm.ErrGeneration))

					var genErr *research.GenerationError
					Expect(err).To(BeAssignableToTypeOf(genErr))
					Expect(err.(*research.GenerationError).Partial).To(BeEmpty())
				})
			})
		})

		Context("when one source contributes several chunks", func() {
			BeforeEach(func() {
				fetcher.Pages["https://example.com/long"] = strings.Repeat("s. ", 40)

				var err error
				session = newSession(research.Config{ChunkSize: 40, ChunkOverlap: 5})
				_, err = session.Ingest(ctx, []string{
					"https://example.com/long",
					"https://example.com/beta",
				}, notifier)
				Expect(err).NotTo(HaveOccurred())
				Expect(session.ChunkCount()).To(BeNumerically(">", 2))
			})

			It("deduplicates citations in first-seen order", func() {
				answer, err := session.Answer(ctx, "anything at all", notifier)
				Expect(err).NotTo(HaveOccurred())

				Expect(answer.Sources).To(Equal([]string{
					"https://example.com/long",
					"https://example.com/beta",
				}))
			})
		})
	})
})
