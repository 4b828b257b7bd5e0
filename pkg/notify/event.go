// Package notify carries progress events from long-running research
// operations to whoever is watching: the REPL, the API's SSE stream, or
// nobody at all.
package notify

import "time"

// IngestSummary describes a completed ingestion run.
type IngestSummary struct {
	// URLs that were ingested, in the order they were given.
	URLs []string `json:"urls"`

	// ChunkCount is the number of chunks now in the knowledge base.
	ChunkCount int `json:"chunk_count"`

	// Duration is the wall-clock time the run took.
	Duration time.Duration `json:"duration_ms"`
}
