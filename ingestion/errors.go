package ingestion

import "errors"

var (
	// ErrSinkRequired is returned when a vector sink is not provided.
	ErrSinkRequired = errors.New("vector sink required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSourcesRequired is returned when no sources are provided.
	ErrSourcesRequired = errors.New("at least one source required")

	// ErrTrackerRequired is returned when an identity tracker is not provided.
	ErrTrackerRequired = errors.New("identity tracker required")

	// ErrInvalidBatchSize is returned for a batch size below one.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
)
