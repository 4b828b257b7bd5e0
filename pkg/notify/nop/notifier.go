package nop

import (
	"context"

	"github.com/clipperhq/clipper/pkg/notify"
)

// Notifier is a no-op notifier used for tests and callers that don't
// stream progress anywhere.
type Notifier struct{}

// NewNotifier creates a new no-op notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// IngestComplete validates input and otherwise does nothing.
func (n *Notifier) IngestComplete(_ context.Context, summary *notify.IngestSummary) error {
	if summary == nil {
		return notify.ErrNilSummary
	}

	return nil
}

// AnswerToken does nothing.
func (n *Notifier) AnswerToken(_ context.Context, _ string) error {
	return nil
}

// AnswerComplete does nothing.
func (n *Notifier) AnswerComplete(_ context.Context, _ []string) error {
	return nil
}

// Close is a no-op.
func (n *Notifier) Close() error {
	return nil
}

var _ notify.Notifier = (*Notifier)(nil)
