// Package knowledge holds the core domain types for clipper's article
// knowledge base: fetched documents, the chunks derived from them, and the
// ranked chunks produced by retrieval.
package knowledge

// Document is the raw text of one fetched article. Documents are produced
// once per URL by the fetch capability and discarded after chunking.
type Document struct {
	// SourceURL is the URL the document was fetched from.
	SourceURL string

	// Text is the extracted plain text content.
	Text string
}

// Chunk is a bounded contiguous slice of a document's text. Chunks are the
// atomic unit of retrieval.
type Chunk struct {
	// ID is a unique identifier for the chunk.
	ID string

	// Text is the chunk content, at most the configured chunk size except
	// possibly the final chunk of a document.
	Text string

	// SourceURL is inherited from the originating document.
	SourceURL string

	// Sequence is the chunk's position within its document. Chunks from one
	// document are contiguous and ordered by Sequence.
	Sequence int
}

// RankedChunk is a chunk paired with its relevance score for a query.
// Results are ordered by descending score, ties broken by insertion order.
type RankedChunk struct {
	Chunk

	// Score is the cosine similarity to the query (higher = more relevant).
	Score float32
}

// Sources returns the distinct source URLs among the given chunks in
// first-seen order. This is the citation set for an answer grounded on them.
func Sources(chunks []Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	sources := make([]string, 0, len(chunks))

	for _, c := range chunks {
		if seen[c.SourceURL] {
			continue
		}
		seen[c.SourceURL] = true
		sources = append(sources, c.SourceURL)
	}

	return sources
}
