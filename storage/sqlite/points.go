package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/storage"
)

const upsertPoint = `
INSERT INTO points (index_name, id, vector, metadata, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (index_name, id) DO UPDATE SET
	vector     = excluded.vector,
	metadata   = excluded.metadata,
	updated_at = excluded.updated_at`

// PointRepository implements storage.VectorRepository for SQLite.
// Metadata is stored as JSON so it can be inspected with the sqlite3 shell.
type PointRepository struct {
	backend *Backend
	index   string
	dim     int
}

var _ storage.VectorRepository = (*PointRepository)(nil)

// NewPointRepository creates a repository writing into the index described by spec.
func NewPointRepository(backend *Backend, spec *core.IndexSpec) (storage.VectorRepository, error) {
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

	now := time.Now().UTC().UnixMicro()
	err := r.backend.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertPoint)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range points {
			p := &points[i]
			metadata, err := json.Marshal(p.Metadata)
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
			if _, err := stmt.ExecContext(ctx, r.index, p.ID, storage.MarshalVector(p.Values), string(metadata), now); err != nil {
				return fmt.Errorf("failed to upsert point %s: %w", p.ID, err)
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
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var (
		vector   []byte
		metadata string
		updated  int64
	)
	err := r.backend.db.QueryRowContext(ctx,
		"SELECT vector, metadata, updated_at FROM points WHERE index_name = ? AND id = ?", r.index, id,
	).Scan(&vector, &metadata, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load point: %w", err)
	}

	values, err := storage.UnmarshalVector(vector)
	if err != nil {
		return nil, err
	}
	point := &core.Point{
		ID:        id,
		Values:    values,
		Metadata:  map[string]string{},
		UpdatedAt: time.UnixMicro(updated).UTC(),
	}
	if err := json.Unmarshal([]byte(metadata), &point.Metadata); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return point, nil
}

// CountPoints returns the number of points stored in the index.
func (r *PointRepository) CountPoints(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	var count int
	err := r.backend.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM points WHERE index_name = ?", r.index,
	).Scan(&count)
	return count, err
}

// Close is a no-op; the backend is owned and closed by the caller.
func (r *PointRepository) Close() error {
	return nil
}
