// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package sqlite stores vector points in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/poiesic/bookvec/storage"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS indexes (
	name       TEXT PRIMARY KEY,
	dimension  INTEGER NOT NULL,
	metric     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS points (
	index_name TEXT NOT NULL,
	id         TEXT NOT NULL,
	vector     BLOB,
	metadata   TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (index_name, id)
);`

// Backend wraps a SQLite connection.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
	closed atomic.Bool
}

// OpenBackend opens (or creates) the database at path and applies the schema.
func OpenBackend(path string) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writes serialized and an in-memory database shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Backend{
		db:     db,
		logger: slog.Default().With("component", "sqlite"),
	}, nil
}

// Close closes the database connection.
func (b *Backend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.closed.Load()
}

// withTx runs fn in a transaction that is committed only if fn succeeds.
func (b *Backend) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if b.closed.Load() {
		return storage.ErrStorageClosed
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit is expected to fail
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
