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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
type IndexRepository struct {
	backend *Backend
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) *IndexRepository {
	return &IndexRepository{
		backend: backend,
	}
}

// EnsureIndex persists spec unless an index with the same name already exists.
func (r *IndexRepository) EnsureIndex(ctx context.Context, spec *core.IndexSpec) (*core.IndexSpec, error) {
	if err := core.ValidateIndexSpec(spec); err != nil {
		return nil, err
	}

	var result *core.IndexSpec
	err := r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		key := makeIndexKey(spec.Name)
		existing, err := readIndexSpec(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return storage.MatchIndex(existing, spec)
		}

		created := *spec
		created.CreatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalIndexSpec(&created)); err != nil {
			return err
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
	var spec *core.IndexSpec
	err := r.backend.WithView(ctx, func(tx *badger.Txn) error {
		var err error
		spec, err = readIndexSpec(tx, makeIndexKey(name))
		if err != nil {
			return err
		}
		if spec == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return spec, err
}

// readIndexSpec returns nil, nil if the key doesn't exist.
func readIndexSpec(tx *badger.Txn, key []byte) (*core.IndexSpec, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var spec *core.IndexSpec
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		spec, unmarshalErr = storage.UnmarshalIndexSpec(val)
		return unmarshalErr
	})
	return spec, err
}
