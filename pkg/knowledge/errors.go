package knowledge

import "errors"

var (
	// ErrConfiguration is returned for invalid chunking parameters
	// (chunk size not positive, or overlap not smaller than chunk size).
	ErrConfiguration = errors.New("invalid chunking configuration")

	// ErrEmptyInput is returned when no URLs or no question were provided.
	ErrEmptyInput = errors.New("no input provided")

	// ErrNotReady is returned when a query is attempted before a successful
	// ingestion has built the knowledge base.
	ErrNotReady = errors.New("knowledge base not ready: ingest some URLs first")
)
