package testutils

import (
	"context"
	"fmt"

	"github.com/clipperhq/clipper/pkg/fetch"
	"github.com/clipperhq/clipper/pkg/knowledge"
)

// MockFetcher is a test fetcher that serves canned page text by URL.
type MockFetcher struct {
	// Pages maps URL to the text returned for it.
	Pages map[string]string

	// FailOn causes Fetch to return an error when the URL matches.
	FailOn string

	// Calls records every URL fetched, in order.
	Calls []string
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Pages: make(map[string]string),
	}
}

func (m *MockFetcher) Fetch(_ context.Context, url string) (knowledge.Document, error) {
	m.Calls = append(m.Calls, url)

	if m.FailOn != "" && url == m.FailOn {
		return knowledge.Document{}, &fetch.Error{URL: url, Err: fmt.Errorf("mock fetch failure")}
	}

	text, ok := m.Pages[url]
	if !ok {
		return knowledge.Document{}, &fetch.Error{URL: url, Err: fmt.Errorf("no page configured")}
	}

	return knowledge.Document{SourceURL: url, Text: text}, nil
}

func (m *MockFetcher) Close() error {
	return nil
}
