package notify

import "context"

// Notifier receives progress events from research operations.
//
// AnswerToken is called once per generated token, in order. An error from
// any method tells the caller its audience is gone and the operation should
// stop streaming.
type Notifier interface {
	// IngestComplete is called after an ingestion run replaces the
	// knowledge base.
	IngestComplete(ctx context.Context, summary *IngestSummary) error

	// AnswerToken is called with each token of a streamed answer as it
	// arrives.
	AnswerToken(ctx context.Context, token string) error

	// AnswerComplete is called after the final token with the sources the
	// answer drew on.
	AnswerComplete(ctx context.Context, sources []string) error

	// Close releases any resources held by the notifier.
	Close() error
}
