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


// Package storage provides the vector sink abstraction for bookvec.
//
// The ingestion pipeline only needs to write: VectorSink accepts batches of
// points keyed by id and either stores all of them or none. VectorRepository
// adds enough of a read side to inspect a run (point lookup and count), and
// IndexRepository provisions the index a sink writes into.
//
// # Backends
//
//   - badger: embedded BadgerDB, values encoded with mus-go (default)
//   - sqlite: a single SQLite file via modernc.org/sqlite
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces so callers do not couple to a backend:
//
//	repo, err := badger.NewPointRepository(backend, spec)  // returns storage.VectorRepository
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	spec, err := badger.NewIndexRepository(backend).EnsureIndex(ctx, &core.IndexSpec{
//	    Name: "books", Dimension: 768, Metric: core.MetricCosine,
//	})
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository(spec)
//
// # Dimension Checks
//
// A point with a vector must match the index dimension; a batch containing
// any mismatched point fails with ErrDimensionMismatch and writes nothing.
// Points without a vector (books with no description) are stored with
// metadata only.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
