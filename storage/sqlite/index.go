package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/storage"
)

// IndexRepository implements storage.IndexRepository for SQLite.
type IndexRepository struct {
	backend *Backend
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) *IndexRepository {
	return &IndexRepository{backend: backend}
}

// EnsureIndex persists spec unless an index with the same name already exists.
func (r *IndexRepository) EnsureIndex(ctx context.Context, spec *core.IndexSpec) (*core.IndexSpec, error) {
	if err := core.ValidateIndexSpec(spec); err != nil {
		return nil, err
	}

	var result *core.IndexSpec
	err := r.backend.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := loadIndex(ctx, tx, spec.Name)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if existing != nil {
			result = existing
			return storage.MatchIndex(existing, spec)
		}

		created := *spec
		created.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
		_, err = tx.ExecContext(ctx,
			"INSERT INTO indexes (name, dimension, metric, created_at) VALUES (?, ?, ?, ?)",
			created.Name, created.Dimension, created.Metric, created.CreatedAt.UnixMicro())
		if err != nil {
			return fmt.Errorf("failed to insert index: %w", err)
		}
		result = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LoadIndex retrieves the spec of a provisioned index.
func (r *IndexRepository) LoadIndex(ctx context.Context, name string) (*core.IndexSpec, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return loadIndex(ctx, r.backend.db, name)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadIndex(ctx context.Context, q queryer, name string) (*core.IndexSpec, error) {
	var (
		spec    core.IndexSpec
		created int64
	)
	err := q.QueryRowContext(ctx,
		"SELECT name, dimension, metric, created_at FROM indexes WHERE name = ?", name,
	).Scan(&spec.Name, &spec.Dimension, &spec.Metric, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	spec.CreatedAt = time.UnixMicro(created).UTC()
	return &spec, nil
}
