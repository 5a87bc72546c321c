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


// Package bookvec wires the book sources, the embedder and the vector store
// described by a config.Config into a ready-to-run ingestion pipeline.
package bookvec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/poiesic/bookvec/ai"
	"github.com/poiesic/bookvec/ai/gemini"
	"github.com/poiesic/bookvec/ai/openai"
	"github.com/poiesic/bookvec/config"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/ingestion"
	"github.com/poiesic/bookvec/sources"
	"github.com/poiesic/bookvec/sources/googlebooks"
	"github.com/poiesic/bookvec/sources/nyt"
	"github.com/poiesic/bookvec/sources/openlibrary"
	"github.com/poiesic/bookvec/storage"
	"github.com/poiesic/bookvec/storage/badger"
	"github.com/poiesic/bookvec/storage/sqlite"
)

// Store is an opened vector store together with its provisioned index.
type Store struct {
	Points storage.VectorRepository
	Index  *core.IndexSpec
	close  func() error
}

// Close releases the repository and the underlying database.
func (s *Store) Close() error {
	if err := s.Points.Close(); err != nil {
		return err
	}
	return s.close()
}

// backendHandle is an opened backend whose index has not been resolved yet.
type backendHandle struct {
	indexes storage.IndexRepository
	points  func(*core.IndexSpec) (storage.VectorRepository, error)
	close   func() error
}

func openBackend(cfg *config.Config) (*backendHandle, error) {
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		backend, err := sqlite.OpenBackend(cfg.StorePath())
		if err != nil {
			return nil, err
		}
		return &backendHandle{
			indexes: sqlite.NewIndexRepository(backend),
			points: func(spec *core.IndexSpec) (storage.VectorRepository, error) {
				return sqlite.NewPointRepository(backend, spec)
			},
			close: backend.Close,
		}, nil
	case config.StoreBadger:
		backend, err := badger.OpenBackend(cfg.StorePath(), false)
		if err != nil {
			return nil, err
		}
		return &backendHandle{
			indexes: badger.NewIndexRepository(backend),
			points: func(spec *core.IndexSpec) (storage.VectorRepository, error) {
				return badger.NewPointRepository(backend, spec)
			},
			close: backend.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// attach opens the point repository for spec, closing the backend on failure.
func (h *backendHandle) attach(spec *core.IndexSpec) (*Store, error) {
	points, err := h.points(spec)
	if err != nil {
		_ = h.close()
		return nil, err
	}
	return &Store{Points: points, Index: spec, close: h.close}, nil
}

// OpenStore opens the configured backend and provisions the configured index.
// It fails with storage.ErrIndexMismatch when the index already exists with a
// different dimension or metric.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	h, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	spec, err := h.indexes.EnsureIndex(ctx, cfg.IndexSpec())
	if err != nil {
		_ = h.close()
		return nil, fmt.Errorf("provision index %s: %w", cfg.Index.Name, err)
	}
	return h.attach(spec)
}

// InspectStore opens an existing store and its already provisioned index.
// Nothing is created: a missing store path or index fails with
// storage.ErrNotFound. The returned Index is the stored spec, not the
// configured one.
func InspectStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	path := cfg.StorePath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no store at %s", storage.ErrNotFound, path)
		}
		return nil, err
	}

	h, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	spec, err := h.indexes.LoadIndex(ctx, cfg.Index.Name)
	if err != nil {
		_ = h.close()
		return nil, fmt.Errorf("load index %s: %w", cfg.Index.Name, err)
	}
	return h.attach(spec)
}

// NewEmbedder creates the embedder selected by config.Provider, wrapped for
// unit-length output when config.UnitVectors is set.
func NewEmbedder(ctx context.Context, config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		embedder ai.Embedder
		err      error
	)
	switch config.Provider {
	case ai.ProviderGemini:
		embedder, err = gemini.NewEmbedder(ctx, config)
	default:
		embedder, err = openai.NewEmbedder(config)
	}
	if err != nil {
		return nil, err
	}

	if config.UnitVectors {
		embedder = ai.WithNormalization(embedder)
	}
	return embedder, nil
}

// NewSources creates every enabled source in a fixed order: the catalog
// sources first, then the bestseller list.
func NewSources(cfg *config.Config, opts ...sources.RequesterOption) []sources.Source {
	var srcs []sources.Source
	if c := cfg.Sources.GoogleBooks; c.Enabled {
		srcs = append(srcs, googlebooks.New(c.Client(), opts...))
	}
	if c := cfg.Sources.OpenLibrary; c.Enabled {
		srcs = append(srcs, openlibrary.New(c.Client(), opts...))
	}
	if c := cfg.Sources.NYT; c.Enabled {
		srcs = append(srcs, nyt.New(c.Client(), c.List, opts...))
	}
	return srcs
}

// Library bundles everything an ingestion run needs.
type Library struct {
	cfg      *config.Config
	store    *Store
	embedder ai.Embedder
	sources  []sources.Source
	logger   *slog.Logger
}

// Option configures a Library.
type Option func(*libraryOptions)

type libraryOptions struct {
	embedder   ai.Embedder
	sources    []sources.Source
	httpClient *http.Client
	logger     *slog.Logger
}

// WithEmbedder replaces the configured embedder.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *libraryOptions) {
		o.embedder = embedder
	}
}

// WithSources replaces the configured sources.
func WithSources(srcs ...sources.Source) Option {
	return func(o *libraryOptions) {
		o.sources = srcs
	}
}

// WithHTTPClient sets the HTTP client used by the configured sources.
func WithHTTPClient(client *http.Client) Option {
	return func(o *libraryOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the logger passed to the sources and the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(o *libraryOptions) {
		o.logger = logger
	}
}

// Open validates cfg and opens the store, the embedder and the sources it describes.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Library, error) {
	options := &libraryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = NewEmbedder(ctx, cfg.AIConfig())
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
	}

	srcs := options.sources
	if len(srcs) == 0 {
		requesterOpts := []sources.RequesterOption{sources.WithLogger(options.logger)}
		if options.httpClient != nil {
			requesterOpts = append(requesterOpts, sources.WithHTTPClient(options.httpClient))
		}
		srcs = NewSources(cfg, requesterOpts...)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Library{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		sources:  srcs,
		logger:   options.logger,
	}, nil
}

// Store returns the opened vector store.
func (l *Library) Store() *Store {
	return l.store
}

// Sources returns the sources in traversal order.
func (l *Library) Sources() []sources.Source {
	return l.sources
}

// NewPipeline creates an ingestion pipeline over the library's sources and
// store, configured from the library's config. Options given here are
// applied last.
func (l *Library) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithFacets(l.cfg.Facets...),
		ingestion.WithBatchSize(l.cfg.BatchSize),
		ingestion.WithLogger(l.logger),
	}
	if l.cfg.PoolSize > 0 {
		base = append(base, ingestion.WithPoolSize(l.cfg.PoolSize))
	}
	return ingestion.NewPipeline(l.store.Points, l.embedder, l.sources, append(base, opts...)...)
}

// Close releases the store.
func (l *Library) Close() error {
	if err := l.store.Close(); err != nil {
		l.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}
