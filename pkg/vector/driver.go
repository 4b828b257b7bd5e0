// Package vector provides interfaces and implementations for similarity
// indexing of embedded article chunks.
package vector

import "context"

// Document is a stored chunk with its embedding and source metadata.
type Document struct {
	// ID is a unique identifier for the chunk.
	ID string

	// SourceURL is the URL of the article the chunk came from.
	SourceURL string

	// Text is the chunk content.
	Text string

	// Sequence is the chunk's position within its source document.
	Sequence int

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// QueryResult is a search hit with its similarity score.
type QueryResult struct {
	Document

	// Score is the similarity to the query (higher = more similar).
	Score float32
}

// Driver handles storage and nearest-neighbor retrieval of embedded chunks.
// One Driver instance backs one knowledge base build; a re-ingestion creates
// a fresh instance rather than mutating an existing one.
type Driver interface {
	// Add stores documents with their embeddings. Insertion order is
	// preserved for tie-breaking in Query.
	Add(ctx context.Context, docs []Document) error

	// Query returns the topK most similar documents to the embedding,
	// ordered by descending score. If fewer than topK documents are stored,
	// all of them are returned.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Count reports the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}
