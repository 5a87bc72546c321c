package storage

import (
	"context"

	"github.com/poiesic/bookvec/core"
)

// VectorSink receives batches of points keyed by id.
// Upsert is all-or-nothing: either every point in the call is written or none is.
type VectorSink interface {
	// Upsert inserts or replaces points by ID.
	// Points with a non-empty vector must match the index dimension.
	// Returns ErrDimensionMismatch or ErrInvalidPoint without writing anything.
	Upsert(ctx context.Context, points ...core.Point) error
}

// VectorRepository is a VectorSink that can also read back what it stored.
// Implementations must be thread-safe and support concurrent access.
type VectorRepository interface {
	VectorSink

	// GetPoint retrieves a single point by ID.
	// Returns ErrNotFound if the point doesn't exist.
	GetPoint(ctx context.Context, id string) (*core.Point, error)

	// CountPoints returns the number of points stored in the index.
	CountPoints(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

// IndexRepository provisions and describes vector indexes.
type IndexRepository interface {
	// EnsureIndex creates the index if it doesn't exist and returns the stored spec.
	// Returns ErrIndexMismatch if an index with the same name exists with a
	// different dimension or metric.
	EnsureIndex(ctx context.Context, spec *core.IndexSpec) (*core.IndexSpec, error)

	// LoadIndex retrieves an index spec by name.
	// Returns ErrNotFound if no such index was provisioned.
	LoadIndex(ctx context.Context, name string) (*core.IndexSpec, error)
}
