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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/bookvec/ai"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/identity"
	"github.com/poiesic/bookvec/sources"
	"github.com/poiesic/bookvec/storage"
)

// Pipeline drives ingestion runs over a fixed set of sources and facets.
type Pipeline struct {
	sink      storage.VectorSink
	embedder  ai.Embedder
	sources   []sources.Source
	facets    []core.Facet
	batchSize int
	poolSize  int
	fetchPool *ants.Pool
	progress  io.Writer
	logger    *slog.Logger
}

// Stats summarizes a completed run.
type Stats struct {
	Facets      int
	Fetched     int
	FailedFetch int
	Accepted    int
	Rejected    map[Reason]int
	Batches     int
	Written     int
	Identities  int
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of records per sink call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithFacets sets the facets traversed by each run, in order.
// Default is core.DefaultFacets().
func WithFacets(facets ...core.Facet) Option {
	return func(p *Pipeline) error {
		for _, f := range facets {
			if err := core.ValidateFacet(f); err != nil {
				return err
			}
		}
		p.facets = append([]core.Facet(nil), facets...)
		return nil
	}
}

// WithPoolSize sets the number of concurrent source fetches.
// Default is one worker per source. Output does not depend on the pool size.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithProgress writes facet progress to w during each run.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(sink storage.VectorSink, embedder ai.Embedder, srcs []sources.Source, opts ...Option) (*Pipeline, error) {
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if len(srcs) == 0 {
		return nil, ErrSourcesRequired
	}

	p := &Pipeline{
		sink:      sink,
		embedder:  embedder,
		sources:   append([]sources.Source(nil), srcs...),
		facets:    core.DefaultFacets(),
		batchSize: DefaultBatchSize,
		poolSize:  len(srcs),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	pool, err := ants.NewPool(p.poolSize)
	if err != nil {
		return nil, err
	}
	p.fetchPool = pool

	return p, nil
}

// fetchResult is the outcome of one source fetch for one facet.
type fetchResult struct {
	candidates []sources.Candidate
	err        error
}

// Run executes one ingestion pass over every facet and source.
// Each run starts with an empty identity tracker.
func (p *Pipeline) Run(ctx context.Context) error {
	_, err := p.RunWithStats(ctx)
	return err
}

// RunWithStats is Run, also returning a summary of what happened.
// The summary is returned even when the run fails.
func (p *Pipeline) RunWithStats(ctx context.Context) (*Stats, error) {
	tracker := identity.NewTracker()
	normalizer, err := NewNormalizer(tracker, p.embedder, p.logger)
	if err != nil {
		return nil, err
	}
	acc, err := NewAccumulator(p.sink, p.batchSize, p.logger)
	if err != nil {
		return nil, err
	}

	var progress *ProgressTracker
	if p.progress != nil {
		progress = NewProgressTracker(p.progress, len(p.facets))
		progress.Start()
	}

	stats := &Stats{}
	defer func() {
		stats.Accepted = normalizer.Accepted()
		stats.Rejected = normalizer.Rejected()
		stats.Batches = acc.Batches()
		stats.Written = acc.Written()
		stats.Identities = tracker.Len()
	}()

	for _, facet := range p.facets {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		p.logger.Info("processing facet", "facet", facet.String())

		results, err := p.fetchAll(ctx, facet)
		if err != nil {
			return stats, err
		}

		for i, src := range p.sources {
			result := results[i]
			if result.err != nil {
				if err := p.tolerateFetchError(ctx, src.Name(), facet, result.err); err != nil {
					return stats, err
				}
				stats.FailedFetch++
				continue
			}
			stats.Fetched += len(result.candidates)

			for _, candidate := range result.candidates {
				record, err := normalizer.Normalize(ctx, src.Name(), candidate)
				if err != nil {
					return stats, err
				}
				if record != nil {
					acc.Add(record)
				}
			}
		}

		if err := acc.Release(ctx); err != nil {
			return stats, err
		}
		stats.Facets++
		if progress != nil {
			progress.Advance(normalizer.Accepted())
		}
	}

	if err := acc.Flush(ctx); err != nil {
		return stats, err
	}
	if progress != nil {
		progress.Finish()
	}

	p.logger.Info("ingestion complete",
		"facets", stats.Facets,
		"accepted", normalizer.Accepted(),
		"written", acc.Written(),
		"batches", acc.Batches(),
		"failed_fetches", stats.FailedFetch)
	return stats, nil
}

// fetchAll fetches facet from every source on the pool and returns the
// results indexed by source position.
func (p *Pipeline) fetchAll(ctx context.Context, facet core.Facet) ([]fetchResult, error) {
	results := make([]fetchResult, len(p.sources))

	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		err := p.fetchPool.Submit(func() {
			defer wg.Done()
			candidates, err := src.Fetch(ctx, facet)
			results[i] = fetchResult{candidates: candidates, err: err}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit fetch for %s: %w", src.Name(), err)
		}
	}
	wg.Wait()

	return results, nil
}

// tolerateFetchError decides whether a failed fetch ends the run.
// Unavailable sources count as zero records. Cancellation and any other
// error are returned.
func (p *Pipeline) tolerateFetchError(ctx context.Context, source string, facet core.Facet, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, sources.ErrUnavailable) {
		p.logger.Warn("source unavailable, continuing without it",
			"source", source, "facet", facet.String(), "err", err)
		return nil
	}
	return fmt.Errorf("fetch %s: %w", source, err)
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.fetchPool != nil {
		p.fetchPool.Release()
	}
}
