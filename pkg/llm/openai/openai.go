// Package openai implements pkg/llm's Client for OpenAI's chat completions
// API and compatible servers.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/clipperhq/clipper/pkg/llm"
	"github.com/clipperhq/clipper/pkg/sse"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"
)

// Client wraps OpenAI's streaming chat completions API.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty, which
	// makes OpenAI-compatible servers usable by pointing it elsewhere.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string

	// APIKey is the bearer token sent with each request.
	APIKey string
}

// NewClient creates a new streaming chat client for OpenAI.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  cfg.APIKey,
		// No client timeout: answer streams are open-ended and cancellation
		// comes from the request context.
		httpClient: &http.Client{},
	}, nil
}

// Chat sends the conversation to OpenAI and returns a token stream.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (llm.Stream, error) {
	msgs := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}

	reqBody := chatRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", llm.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", llm.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", llm.ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: openai returned status %d: %s", llm.ErrGeneration, resp.StatusCode, string(body))
	}

	return &stream{
		body:   resp.Body,
		reader: sse.NewReader(resp.Body),
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

// stream decodes the SSE chat completion stream into tokens.
type stream struct {
	body   io.ReadCloser
	reader *sse.Reader
	done   bool
}

// Next returns the next generated token, or io.EOF once the provider sends
// its [DONE] marker. A stream that ends without the marker was cut short and
// is reported as a generation failure.
func (s *stream) Next() (llm.Token, error) {
	if s.done {
		return llm.Token{}, io.EOF
	}

	for {
		ev, err := s.reader.Next()
		if err != nil {
			return llm.Token{}, fmt.Errorf("%w: reading stream: %v", llm.ErrGeneration, err)
		}
		if ev == nil {
			return llm.Token{}, fmt.Errorf("%w: stream ended before completion", llm.ErrGeneration)
		}

		if ev.Data == "[DONE]" {
			s.done = true
			return llm.Token{}, io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			return llm.Token{}, fmt.Errorf("%w: decoding chunk: %v", llm.ErrGeneration, err)
		}

		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			// Role-only deltas and the finish_reason chunk carry no text.
			continue
		}

		return llm.Token{Text: chunk.Choices[0].Delta.Content}, nil
	}
}

// Close closes the underlying response body.
func (s *stream) Close() error {
	return s.body.Close()
}

var _ llm.Client = (*Client)(nil)
