package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/storage"
)

// DefaultBatchSize is the number of records written per sink call.
const DefaultBatchSize = 100

// Accumulator buffers accepted records and writes them to a sink in batches.
// Records keep their insertion order across batches.
type Accumulator struct {
	sink    storage.VectorSink
	size    int
	pending []*core.BookRecord
	batches int
	written int
	logger  *slog.Logger
}

// NewAccumulator creates an accumulator releasing batches of size records.
func NewAccumulator(sink storage.VectorSink, size int, logger *slog.Logger) (*Accumulator, error) {
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if size < 1 {
		return nil, ErrInvalidBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Accumulator{
		sink:   sink,
		size:   size,
		logger: logger.With("component", "accumulator"),
	}, nil
}

// Add appends records to the pending list.
func (a *Accumulator) Add(records ...*core.BookRecord) {
	a.pending = append(a.pending, records...)
}

// Pending returns the number of records not yet written.
func (a *Accumulator) Pending() int {
	return len(a.pending)
}

// Release writes full batches while at least one batch is pending.
// The remainder stays pending.
func (a *Accumulator) Release(ctx context.Context) error {
	for len(a.pending) >= a.size {
		if err := a.write(ctx, a.size); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes every pending record in one call. Nothing is written when
// the pending list is empty.
func (a *Accumulator) Flush(ctx context.Context) error {
	if len(a.pending) == 0 {
		return nil
	}
	return a.write(ctx, len(a.pending))
}

// Batches returns the number of successful sink calls.
func (a *Accumulator) Batches() int {
	return a.batches
}

// Written returns the number of records written to the sink.
func (a *Accumulator) Written() int {
	return a.written
}

// write upserts the first n pending records and drops them from the list on success.
func (a *Accumulator) write(ctx context.Context, n int) error {
	points := make([]core.Point, n)
	for i, record := range a.pending[:n] {
		points[i] = record.Point()
	}

	if err := a.sink.Upsert(ctx, points...); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}

	a.pending = a.pending[n:]
	a.batches++
	a.written += n
	a.logger.Info("upserted batch", "batch", a.batches, "records", n, "pending", len(a.pending))
	return nil
}
