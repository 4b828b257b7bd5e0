package researchcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/clipperhq/clipper/pkg/notify"
)

// stdoutNotifier prints answer tokens to stdout as they stream in. The
// sources are rendered by the question loop after the full answer, so
// AnswerComplete is a no-op here.
type stdoutNotifier struct{}

func (n *stdoutNotifier) IngestComplete(_ context.Context, _ *notify.IngestSummary) error {
	return nil
}

func (n *stdoutNotifier) AnswerToken(_ context.Context, token string) error {
	_, err := fmt.Fprint(os.Stdout, token)
	return err
}

func (n *stdoutNotifier) AnswerComplete(_ context.Context, _ []string) error {
	return nil
}

func (n *stdoutNotifier) Close() error {
	return nil
}
