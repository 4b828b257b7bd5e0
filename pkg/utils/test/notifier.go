package testutils

import (
	"context"
	"fmt"

	"github.com/clipperhq/clipper/pkg/notify"
)

// RecordingNotifier is a test notifier that records everything it is told.
type RecordingNotifier struct {
	Summaries []*notify.IngestSummary
	Tokens    []string
	Sources   [][]string

	// FailTokens causes AnswerToken to return an error, simulating a
	// consumer that has gone away.
	FailTokens bool
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (r *RecordingNotifier) IngestComplete(_ context.Context, summary *notify.IngestSummary) error {
	if summary == nil {
		return notify.ErrNilSummary
	}
	r.Summaries = append(r.Summaries, summary)
	return nil
}

func (r *RecordingNotifier) AnswerToken(_ context.Context, token string) error {
	if r.FailTokens {
		return fmt.Errorf("mock notifier failure")
	}
	r.Tokens = append(r.Tokens, token)
	return nil
}

func (r *RecordingNotifier) AnswerComplete(_ context.Context, sources []string) error {
	r.Sources = append(r.Sources, sources)
	return nil
}

func (r *RecordingNotifier) Close() error {
	return nil
}
