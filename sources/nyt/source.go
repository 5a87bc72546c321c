// Package nyt fetches a current bestseller list from the New York Times Books API.
package nyt

import (
	"context"
	"fmt"
	"net/url"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
)

const (
	// Name identifies this source in logs, metadata and identity keys.
	Name = "nyt"

	DefaultBaseURL = "https://api.nytimes.com/svc/books/v3"
	DefaultList    = "hardcover-fiction"
)

// Source fetches one bestseller list. The list has no query parameter, so
// every facet receives the same books.
type Source struct {
	cfg       sources.Config
	list      string
	requester *sources.Requester
}

var _ sources.Source = (*Source)(nil)

// New creates a bestseller source for list. An empty list selects DefaultList.
func New(cfg sources.Config, list string, opts ...sources.RequesterOption) *Source {
	cfg = cfg.WithDefaults(DefaultBaseURL, 0)
	if list == "" {
		list = DefaultList
	}
	return &Source{
		cfg:       cfg,
		list:      list,
		requester: sources.NewRequester(Name, cfg, opts...),
	}
}

// Name returns "nyt".
func (s *Source) Name() string {
	return Name
}

// Fetch requests the current list. The facet only appears in logs.
func (s *Source) Fetch(ctx context.Context, facet core.Facet) ([]sources.Candidate, error) {
	var resp listResponse
	if err := s.requester.GetJSON(ctx, s.url(), &resp); err != nil {
		return nil, err
	}

	candidates := make([]sources.Candidate, 0, len(resp.Results.Books))
	for _, b := range resp.Results.Books {
		candidates = append(candidates, toCandidate(b))
	}

	s.requester.Logger().Info("fetched bestsellers", "facet", facet.String(), "list", s.list, "items", len(candidates))
	return candidates, nil
}

func (s *Source) url() string {
	params := url.Values{}
	params.Set("api-key", s.cfg.APIKey)
	return fmt.Sprintf("%s/lists/current/%s.json?%s", s.cfg.BaseURL, url.PathEscape(s.list), params.Encode())
}
