package ingestion

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
)

// recordingSink captures every Upsert call.
type recordingSink struct {
	mu    sync.Mutex
	calls [][]core.Point
	err   error
}

func (s *recordingSink) Upsert(ctx context.Context, points ...core.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	batch := make([]core.Point, len(points))
	copy(batch, points)
	s.calls = append(s.calls, batch)
	return nil
}

func (s *recordingSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, batch := range s.calls {
		for _, p := range batch {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (s *recordingSink) sizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sizes := make([]int, len(s.calls))
	for i, batch := range s.calls {
		sizes[i] = len(batch)
	}
	return sizes
}

// staticSource returns the same candidates, or error, for every facet.
type staticSource struct {
	name       string
	candidates []sources.Candidate
	err        error

	mu     sync.Mutex
	facets []core.Facet
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Fetch(ctx context.Context, facet core.Facet) ([]sources.Candidate, error) {
	s.mu.Lock()
	s.facets = append(s.facets, facet)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

// facetSource returns different candidates per facet value.
type facetSource struct {
	name     string
	byFacet  map[string][]sources.Candidate
	failures map[string]error
}

func (s *facetSource) Name() string { return s.name }

func (s *facetSource) Fetch(ctx context.Context, facet core.Facet) ([]sources.Candidate, error) {
	if err := s.failures[facet.Value]; err != nil {
		return nil, err
	}
	return s.byFacet[facet.Value], nil
}

func unavailable(source string) error {
	return &sources.FetchError{Source: source, URL: "http://test", StatusCode: 503}
}

func book(natural, isbn, description string) sources.Candidate {
	return sources.Candidate{
		NaturalID:   natural,
		ISBN:        isbn,
		Title:       "Title " + natural,
		Authors:     []string{"Author"},
		Description: description,
	}
}

func books(prefix string, n int) []sources.Candidate {
	out := make([]sources.Candidate, n)
	for i := range out {
		id := fmt.Sprintf("%s-%03d", prefix, i)
		out[i] = book(id, "isbn-"+id, "description of "+id)
	}
	return out
}
