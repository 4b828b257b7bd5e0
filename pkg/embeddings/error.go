package embeddings

import "errors"

// ErrEmbedding indicates text could not be converted into a vector,
// whether for a single query or a batch of chunks.
var ErrEmbedding = errors.New("embedding failed")
