package llm

// Token is a single increment of generated answer text.
type Token struct {
	// Text is the token content. May span more than one word; providers
	// chunk their output however they like.
	Text string
}

// Stream yields generated tokens one at a time.
//
// Next returns io.EOF once the provider has finished generating. Any other
// error means generation failed partway; tokens already returned remain
// valid.
type Stream interface {
	Next() (Token, error)
	Close() error
}
