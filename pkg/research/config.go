package research

const (
	// DefaultTopK is how many chunks a question retrieves when the caller
	// doesn't say otherwise.
	DefaultTopK = 5

	// DefaultParallelism bounds concurrent embedding calls during ingest.
	DefaultParallelism = 4

	// embedBatchSize is how many chunks each embedding call carries.
	embedBatchSize = 16
)

// Config holds the tunable parameters of a research session.
type Config struct {
	// ChunkSize is the maximum chunk length in characters.
	// Defaults to knowledge.DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is how many characters consecutive chunks share.
	// Defaults to knowledge.DefaultChunkOverlap if ChunkSize is also zero,
	// otherwise it is taken as given.
	ChunkOverlap int

	// TopK is the retrieval depth for answering.
	// Defaults to DefaultTopK if zero.
	TopK int

	// Parallelism bounds concurrent embedding calls during ingest.
	// Defaults to DefaultParallelism if zero.
	Parallelism int
}
