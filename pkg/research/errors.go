package research

import "fmt"

// GenerationError reports an answer that failed partway through streaming.
// Tokens already delivered are preserved in Partial so callers can show what
// arrived before the failure.
type GenerationError struct {
	Partial string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
