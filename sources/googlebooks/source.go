// Package googlebooks fetches fiction volumes from the Google Books API.
package googlebooks

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
	Name = "googlebooks"

	DefaultBaseURL  = "https://www.googleapis.com/books/v1"
	DefaultPageSize = 40

	// subject fixes the genre of every query.
	subject = "fiction"
)

// Source queries /volumes for fiction ordered by the facet value.
type Source struct {
	cfg       sources.Config
	requester *sources.Requester
}

var _ sources.Source = (*Source)(nil)

// New creates a Google Books source. Zero config fields take the package defaults.
func New(cfg sources.Config, opts ...sources.RequesterOption) *Source {
	cfg = cfg.WithDefaults(DefaultBaseURL, DefaultPageSize)
	return &Source{
		cfg:       cfg,
		requester: sources.NewRequester(Name, cfg, opts...),
	}
}

// Name returns "googlebooks".
func (s *Source) Name() string {
	return Name
}

// Fetch requests the first page of fiction volumes ordered by facet.Value.
func (s *Source) Fetch(ctx context.Context, facet core.Facet) ([]sources.Candidate, error) {
	var resp volumesResponse
	if err := s.requester.GetJSON(ctx, s.url(facet), &resp); err != nil {
		return nil, err
	}

	candidates := make([]sources.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		candidates = append(candidates, toCandidate(item))
	}

	s.requester.Logger().Info("fetched volumes", "facet", facet.String(), "items", len(candidates))
	return candidates, nil
}

func (s *Source) url(facet core.Facet) string {
	params := url.Values{}
	params.Set("q", "subject:"+subject)
	// The API accepts only relevance and newest; other values fail with 400.
	params.Set("orderBy", facet.Value)
	params.Set("startIndex", "0")
	params.Set("maxResults", strconv.Itoa(s.cfg.PageSize))
	if s.cfg.APIKey != "" {
		params.Set("key", s.cfg.APIKey)
	}
	return fmt.Sprintf("%s/volumes?%s", s.cfg.BaseURL, params.Encode())
}
