// Package servecmder provides the serve command for running the clipper
// HTTP API and MCP server.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipperhq/clipper/api"
	apimcp "github.com/clipperhq/clipper/api/mcp"
	"github.com/clipperhq/clipper/pkg/config"
	embeddingutils "github.com/clipperhq/clipper/pkg/embeddings/utils"
	"github.com/clipperhq/clipper/pkg/fetch"
	llmutils "github.com/clipperhq/clipper/pkg/llm/utils"
	"github.com/clipperhq/clipper/pkg/logger"
	"github.com/clipperhq/clipper/pkg/research"
	vectorutils "github.com/clipperhq/clipper/pkg/vector/utils"
)

type serveCommander struct {
	listen string
	noMCP  bool

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
	debug     bool

	logger *slog.Logger
}

const serveLongDesc string = `Run the clipper HTTP API server.

The server exposes the research session over HTTP:
  POST /v1/ingest     Ingest article URLs
  GET  /v1/ask        Stream an answer as server-sent events
  GET  /v1/search     Retrieve chunks without generating an answer
  GET  /v1/status     Knowledge base readiness and chunk count
  /mcp                MCP endpoint with ingest and ask tools

Examples:
  clipper serve
  clipper serve --listen :9090 --llm-model llama3.2`

const serveShortDesc string = "Run the clipper API and MCP server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			keys := append([]string{config.FlagAPIListen}, config.SessionFlagKeys...)
			config.BindRegisteredFlags(v, cmd, config.ClipperFlags, keys)

			cmder.listen = v.GetString("api.listen")
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
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagAPIListen, &cmder.listen)
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
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
	)

	session, err := c.buildSession()
	if err != nil {
		return err
	}
	defer session.Close()

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Session: session,
		Noop:    c.noMCP,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer := api.NewServer(api.Config{ListenAddr: c.listen}, session, mcpServer, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return apiServer.Shutdown()
	}
}

// buildSession wires the configured providers into a research session.
func (c *serveCommander) buildSession() (*research.Session, error) {
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
