package llm

import "errors"

// ErrGeneration indicates the provider failed to produce or finish an
// answer. Streams wrap mid-stream failures with this sentinel so callers
// can distinguish generation faults from their own read errors.
var ErrGeneration = errors.New("generation failed")
