// Package researchcmder provides the research command: ingest article URLs
// and ask questions over them interactively.
package researchcmder

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipperhq/clipper/pkg/cliui"
	"github.com/clipperhq/clipper/pkg/config"
	"github.com/clipperhq/clipper/pkg/dotdir"
	embeddingutils "github.com/clipperhq/clipper/pkg/embeddings/utils"
	"github.com/clipperhq/clipper/pkg/fetch"
	llmutils "github.com/clipperhq/clipper/pkg/llm/utils"
	"github.com/clipperhq/clipper/pkg/logger"
	"github.com/clipperhq/clipper/pkg/notify"
	"github.com/clipperhq/clipper/pkg/research"
	"github.com/clipperhq/clipper/pkg/utils"
	vectorutils "github.com/clipperhq/clipper/pkg/vector/utils"
)

type researchCommander struct {
	chunkSize    int
	chunkOverlap int
	topK         int
	parallelism  int

	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	embeddingDims     uint
	embeddingAPIKey   string

	llmProvider string
	llmTarget   string
	llmModel    string
	llmAPIKey   string

	vectorProvider string
	vectorTarget   string

	fetchTimeout   int
	fetchUserAgent string

	configDir string
	render    bool
	debug     bool

	logger *slog.Logger
}

const researchLongDesc string = `Ingest article URLs and ask questions over them.

Each run builds a fresh in-memory knowledge base from the given URLs, then
drops into an interactive loop where answers stream token by token, cited
back to their source URLs.

When run without URLs, the previous reading list (saved in .clipper/) is
ingested again.

Examples:
  clipper research https://example.com/article
  clipper research https://a.com/one https://b.com/two --top-k 3
  clipper research`

const researchShortDesc string = "Ingest articles and ask questions over them"

func NewResearchCmd() *cobra.Command {
	cmder := &researchCommander{}

	cmd := &cobra.Command{
		Use:   "research [url ...]",
		Short: researchShortDesc,
		Long:  researchLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.ClipperFlags, config.SessionFlagKeys)

			cmder.chunkSize = v.GetInt("chunking.size")
			cmder.chunkOverlap = v.GetInt("chunking.overlap")
			cmder.topK = v.GetInt("retrieval.top_k")
			cmder.parallelism = v.GetInt("retrieval.parallelism")
			cmder.embeddingProvider = v.GetString("embedding.provider")
			cmder.embeddingTarget = v.GetString("embedding.target")
			cmder.embeddingModel = v.GetString("embedding.model")
			cmder.embeddingDims = v.GetUint("embedding.dimensions")
			cmder.embeddingAPIKey = v.GetString("embedding.api_key")
			cmder.llmProvider = v.GetString("llm.provider")
			cmder.llmTarget = v.GetString("llm.target")
			cmder.llmModel = v.GetString("llm.model")
			cmder.llmAPIKey = v.GetString("llm.api_key")
			cmder.vectorProvider = v.GetString("vector_store.provider")
			cmder.vectorTarget = v.GetString("vector_store.target")
			cmder.fetchTimeout = v.GetInt("fetch.timeout_seconds")
			cmder.fetchUserAgent = v.GetString("fetch.user_agent")

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(args)
		},
	}

	addRegisteredFlags(cmd, cmder)
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Render answers as markdown instead of streaming tokens")

	return cmd
}

// addRegisteredFlags registers the research flag set on the command.
func addRegisteredFlags(cmd *cobra.Command, cmder *researchCommander) {
	config.AddIntFlag(cmd, config.ClipperFlags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddIntFlag(cmd, config.ClipperFlags, config.FlagChunkOverlap, &cmder.chunkOverlap)
	config.AddIntFlag(cmd, config.ClipperFlags, config.FlagTopK, &cmder.topK)
	config.AddIntFlag(cmd, config.ClipperFlags, config.FlagParallelism, &cmder.parallelism)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.ClipperFlags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagLLMProv, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagLLMTgt, &cmder.llmTarget)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagLLMModel, &cmder.llmModel)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
}

func (c *researchCommander) run(urls []string) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	ctx := context.Background()

	// Resolve the reading list: explicit URLs, or the saved history.
	ddm := dotdir.NewManager()
	resumed := false
	if len(urls) == 0 {
		history, err := ddm.LoadHistory(c.configDir)
		if err != nil {
			return fmt.Errorf("loading reading history: %w", err)
		}
		if history == nil {
			return fmt.Errorf("no URLs given and no previous reading list to resume")
		}
		urls = history.URLs
		resumed = true
	}

	session, err := c.buildSession()
	if err != nil {
		return err
	}
	defer session.Close()

	fmt.Println()
	if resumed {
		fmt.Printf("  %s Resuming reading list %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d URLs)", len(urls))),
		)
	}

	var chunkCount int
	err = cliui.Step(os.Stdout, fmt.Sprintf("Reading %d article(s)", len(urls)), func() error {
		summary, err := session.Ingest(ctx, urls, nil)
		if err != nil {
			return err
		}
		chunkCount = summary.ChunkCount
		return nil
	})
	if err != nil {
		return fmt.Errorf("ingesting articles: %w", err)
	}

	if err := ddm.SaveHistory(&dotdir.HistoryState{URLs: urls, IngestedAt: time.Now()}, c.configDir); err != nil {
		c.logger.Warn("saving reading history", "error", err)
	}

	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Knowledge base:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d chunks from %d article(s)", chunkCount, len(urls))),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Ask a question and press Enter. /exit or Ctrl+D to quit."))

	return c.questionLoop(ctx, session)
}

// questionLoop reads questions from stdin and streams answers until EOF
// or /exit.
func (c *researchCommander) questionLoop(ctx context.Context, session *research.Session) error {
	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := cliui.PromptStyle.Render("you> ")
	answerPrompt := cliui.DimStyle.Render("answer> ")

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		c.logger.Debug("asking", "question", utils.Truncate(input, 80))

		// With --render the tokens are held back and the finished answer
		// is printed as formatted markdown instead.
		var n notify.Notifier
		if !c.render {
			fmt.Print(answerPrompt)
			n = &stdoutNotifier{}
		}

		answer, err := session.Answer(ctx, input, n)
		if err != nil {
			fmt.Println()
			fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
			continue
		}

		fmt.Println()
		if c.render {
			rendered, rerr := cliui.RenderMarkdown(answer.Text)
			if rerr != nil {
				rendered = answer.Text
			}
			fmt.Print(rendered)
		}
		fmt.Println(cliui.RenderSources(answer.Sources))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// buildSession wires the configured providers into a research session.
func (c *researchCommander) buildSession() (*research.Session, error) {
	fetcher := fetch.NewHTTPFetcher(fetch.HTTPConfig{
		Timeout:   time.Duration(c.fetchTimeout) * time.Second,
		UserAgent: c.fetchUserAgent,
	})

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProvider,
		TargetURL:    c.embeddingTarget,
		Model:        c.embeddingModel,
		APIKey:       c.embeddingAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	client, err := llmutils.NewClient(&llmutils.NewClientOpts{
		ProviderType: c.llmProvider,
		TargetURL:    c.llmTarget,
		Model:        c.llmModel,
		APIKey:       c.llmAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	factory := vectorutils.NewFactory(&vectorutils.NewDriverOpts{
		ProviderType: c.vectorProvider,
		TargetURL:    c.vectorTarget,
		Dimensions:   c.embeddingDims,
		Logger:       c.logger,
	})

	return research.NewSession(&research.SessionOpts{
		Config: research.Config{
			ChunkSize:    c.chunkSize,
			ChunkOverlap: c.chunkOverlap,
			TopK:         c.topK,
			Parallelism:  c.parallelism,
		},
		Fetcher:  fetcher,
		Embedder: embedder,
		Client:   client,
		Factory:  factory,
		Logger:   c.logger,
	})
}
