package config

const (
	defaultFetchTimeoutSeconds = 30
	defaultFetchUserAgent      = "clipper/1.0"

	defaultChunkSize    = 1000
	defaultChunkOverlap = 200

	defaultTopK        = 5
	defaultParallelism = 4

	defaultProvider = "ollama"
	defaultTarget   = "http://localhost:11434"

	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultLLMModel = "llama3.2"

	defaultVectorProvider = "memory"

	defaultAPIListen       = ":8080"
	defaultClientAPITarget = "http://localhost:8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Fetch: FetchConfig{
			TimeoutSeconds: defaultFetchTimeoutSeconds,
			UserAgent:      defaultFetchUserAgent,
		},
		Chunking: ChunkingConfig{
			Size:    defaultChunkSize,
			Overlap: defaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK:        defaultTopK,
			Parallelism: defaultParallelism,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultProvider,
			Target:     defaultTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider: defaultProvider,
			Target:   defaultTarget,
			Model:    defaultLLMModel,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
	}
}
