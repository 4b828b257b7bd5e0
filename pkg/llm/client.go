package llm

import "context"

// Client is a streaming chat completion client.
type Client interface {
	// Chat sends the conversation to the provider and returns a Stream of
	// generated tokens. The caller must Close the stream when done, whether
	// or not it was fully consumed.
	Chat(ctx context.Context, messages []Message) (Stream, error)

	// Close releases any resources held by the client.
	Close() error
}
