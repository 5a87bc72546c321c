package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/storage"
)

// PointRepository implements storage.VectorRepository for BadgerDB.
// Points are stored under the index named by the spec it was created with.
type PointRepository struct {
	backend *Backend
	index   string
	dim     int
}

var _ storage.VectorRepository = (*PointRepository)(nil)

// NewPointRepository creates a repository writing into the index described by spec.
// The spec's dimension is enforced on every upsert.
func NewPointRepository(backend *Backend, spec *core.IndexSpec) (storage.VectorRepository, error) {
	return newPointRepository(backend, spec)
}

func newPointRepository(backend *Backend, spec *core.IndexSpec) (*PointRepository, error) {
	if err := core.ValidateIndexSpec(spec); err != nil {
		return nil, err
	}
	return &PointRepository{
		backend: backend,
		index:   spec.Name,
		dim:     spec.Dimension,
	}, nil
}

// Upsert writes every point in one transaction, replacing existing points with the same ID.
func (r *PointRepository) Upsert(ctx context.Context, points ...core.Point) error {
	if len(points) == 0 {
		return nil
	}
	if err := storage.CheckPoints(r.dim, points); err != nil {
		return err
	}

	now := time.Now().UTC()
	err := r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		for i := range points {
			p := points[i]
			p.UpdatedAt = now
			if err := tx.Set(makePointKey(r.index, p.Key()), storage.MarshalPoint(&p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.backend.logger.Debug("upserted points", "index", r.index, "count", len(points))
	return nil
}

// GetPoint retrieves a single point by ID.
func (r *PointRepository) GetPoint(ctx context.Context, id string) (*core.Point, error) {
	var result *core.Point
	err := r.backend.WithView(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get(makePointKey(r.index, core.IDFromContent(id)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalPoint(val)
			return unmarshalErr
		})
	})
	if err != nil {
		return nil, err
	}
	// Distinct IDs can share a hashed key.
	if result.ID != id {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// CountPoints returns the number of points stored in the index.
func (r *PointRepository) CountPoints(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithView(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePointPrefix(r.index)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close is a no-op; the backend is owned and closed by the caller.
func (r *PointRepository) Close() error {
	return nil
}
