package testutils

import (
	"context"
	"fmt"
	"io"

	"github.com/clipperhq/clipper/pkg/llm"
)

// MockLLMClient is a test chat client that streams scripted tokens.
type MockLLMClient struct {
	// Tokens are streamed one per Next call before io.EOF.
	Tokens []string

	// FailAfter, when >= 0, makes the stream fail after that many tokens
	// instead of finishing.
	FailAfter int

	// FailChat causes Chat itself to fail before any stream exists.
	FailChat bool

	// Requests records the messages from every Chat call.
	Requests [][]llm.Message
}

func NewMockLLMClient(tokens ...string) *MockLLMClient {
	return &MockLLMClient{
		Tokens:    tokens,
		FailAfter: -1,
	}
}

func (m *MockLLMClient) Chat(_ context.Context, messages []llm.Message) (llm.Stream, error) {
	m.Requests = append(m.Requests, messages)

	if m.FailChat {
		return nil, fmt.Errorf("%w: mock chat failure", llm.ErrGeneration)
	}

	return &mockStream{tokens: m.Tokens, failAfter: m.FailAfter}, nil
}

func (m *MockLLMClient) Close() error {
	return nil
}

type mockStream struct {
	tokens    []string
	failAfter int
	pos       int
	closed    bool
}

func (s *mockStream) Next() (llm.Token, error) {
	if s.failAfter >= 0 && s.pos == s.failAfter {
		return llm.Token{}, fmt.Errorf("%w: mock stream failure", llm.ErrGeneration)
	}

	if s.pos >= len(s.tokens) {
		return llm.Token{}, io.EOF
	}

	tok := llm.Token{Text: s.tokens[s.pos]}
	s.pos++
	return tok, nil
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}
