// Package openlibrary fetches works from the Open Library search API.
package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
)

const (
	// Name identifies this source in logs, metadata and identity keys.
	Name = "openlibrary"

	DefaultBaseURL  = "https://openlibrary.org"
	DefaultPageSize = 100
)

// Source runs a free-text search using the facet value as the query.
type Source struct {
	cfg       sources.Config
	requester *sources.Requester
}

var _ sources.Source = (*Source)(nil)

// New creates an Open Library source. Zero config fields take the package defaults.
func New(cfg sources.Config, opts ...sources.RequesterOption) *Source {
	cfg = cfg.WithDefaults(DefaultBaseURL, DefaultPageSize)
	return &Source{
		cfg:       cfg,
		requester: sources.NewRequester(Name, cfg, opts...),
	}
}

// Name returns "openlibrary".
func (s *Source) Name() string {
	return Name
}

// Fetch searches for facet.Value and maps the first page of works.
func (s *Source) Fetch(ctx context.Context, facet core.Facet) ([]sources.Candidate, error) {
	var resp searchResponse
	if err := s.requester.GetJSON(ctx, s.url(facet), &resp); err != nil {
		return nil, err
	}

	candidates := make([]sources.Candidate, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		candidates = append(candidates, toCandidate(d))
	}

	s.requester.Logger().Info("fetched works", "facet", facet.String(), "items", len(candidates), "found", resp.NumFound)
	return candidates, nil
}

func (s *Source) url(facet core.Facet) string {
	params := url.Values{}
	params.Set("q", facet.Value)
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(s.cfg.PageSize))
	params.Set("fields", searchFields)
	return fmt.Sprintf("%s/search.json?%s", s.cfg.BaseURL, params.Encode())
}
