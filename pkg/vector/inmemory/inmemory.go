// Package inmemory provides an in-process implementation of vector.Driver
// using brute-force cosine similarity. It is the default index for clipper's
// single-session knowledge base.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/clipperhq/clipper/pkg/vector"
)

// Driver implements vector.Driver with an in-process slice of documents.
//
// The similarity metric is cosine. Query results are ordered by descending
// score with ties broken by insertion order.
type Driver struct {
	mu   sync.RWMutex
	docs []vector.Document
	dim  int
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Add stores documents with their embeddings. The first added document fixes
// the index dimensionality; later documents must match it.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if d.dim == 0 {
			d.dim = len(doc.Embedding)
		}
		if len(doc.Embedding) != d.dim {
			return fmt.Errorf("%w: got %d, index holds %d",
				vector.ErrDimensionMismatch, len(doc.Embedding), d.dim)
		}
		d.docs = append(d.docs, doc)
	}

	return nil
}

// Query returns the topK most similar documents by cosine similarity.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.docs) > 0 && len(embedding) != d.dim {
		return nil, fmt.Errorf("%w: query has %d, index holds %d",
			vector.ErrDimensionMismatch, len(embedding), d.dim)
	}

	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, doc := range d.docs {
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    cosine(embedding, doc.Embedding),
		})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}

// Count reports the number of stored documents.
func (d *Driver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs), nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ vector.Driver = (*Driver)(nil)
