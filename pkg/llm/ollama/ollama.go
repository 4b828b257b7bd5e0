// Package ollama implements pkg/llm's Client for Ollama's chat API.
//
// Ollama streams chat completions as newline-delimited JSON rather than SSE;
// each line is a complete JSON object with a partial message and a done flag.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/clipperhq/clipper/pkg/llm"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Client wraps Ollama's streaming chat API.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// ClientConfig holds configuration for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string
}

// NewClient creates a new streaming chat client for Ollama.
func NewClient(cfg ClientConfig) (*Client, error) {
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
		// No client timeout: answer streams are open-ended and cancellation
		// comes from the request context.
		httpClient: &http.Client{},
	}, nil
}

// Chat sends the conversation to Ollama and returns a token stream.
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

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", llm.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", llm.ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrGeneration, resp.StatusCode, string(body))
	}

	return &stream{
		body:    resp.Body,
		decoder: json.NewDecoder(resp.Body),
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

// stream decodes Ollama's NDJSON chat stream into tokens.
type stream struct {
	body    io.ReadCloser
	decoder *json.Decoder
	done    bool
}

// Next returns the next generated token, or io.EOF once Ollama reports the
// final chunk. A stream that ends without a done chunk was cut short and is
// reported as a generation failure.
func (s *stream) Next() (llm.Token, error) {
	if s.done {
		return llm.Token{}, io.EOF
	}

	for {
		var chunk chatResponse
		if err := s.decoder.Decode(&chunk); err != nil {
			if err == io.EOF {
				return llm.Token{}, fmt.Errorf("%w: stream ended before completion", llm.ErrGeneration)
			}
			return llm.Token{}, fmt.Errorf("%w: decoding stream: %v", llm.ErrGeneration, err)
		}

		if chunk.Error != "" {
			return llm.Token{}, fmt.Errorf("%w: %s", llm.ErrGeneration, chunk.Error)
		}

		if chunk.Done {
			s.done = true
			// The final chunk occasionally carries trailing content.
			if chunk.Message.Content != "" {
				return llm.Token{Text: chunk.Message.Content}, nil
			}
			return llm.Token{}, io.EOF
		}

		if chunk.Message.Content == "" {
			continue
		}

		return llm.Token{Text: chunk.Message.Content}, nil
	}
}

// Close closes the underlying response body.
func (s *stream) Close() error {
	return s.body.Close()
}

var _ llm.Client = (*Client)(nil)
