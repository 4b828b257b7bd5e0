// Package fetch retrieves article content from URLs and reduces it to
// readable plain text.
package fetch

import (
	"context"
	"fmt"

	"github.com/clipperhq/clipper/pkg/knowledge"
)

// Fetcher retrieves the readable text of a single URL.
type Fetcher interface {
	// Fetch downloads the URL and returns its content as a plain-text
	// document. HTML markup is stripped; paragraph structure survives as
	// blank lines so downstream chunking can split on it.
	Fetch(ctx context.Context, url string) (knowledge.Document, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Error reports a failure to retrieve a specific URL.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
