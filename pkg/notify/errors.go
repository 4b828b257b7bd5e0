package notify

import "errors"

// ErrNilSummary indicates a nil ingest summary was passed to a notifier.
var ErrNilSummary = errors.New("nil ingest summary")
