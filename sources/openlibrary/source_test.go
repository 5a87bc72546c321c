package openlibrary

import (
	"context"
	"net/http"
	"testing"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
	"github.com/poiesic/bookvec/sources/sourcestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
	"numFound": 2,
	"start": 0,
	"docs": [
		{
			"key": "/works/OL45804W",
			"title": "Fantastic Mr Fox",
			"author_name": ["Roald Dahl"],
			"isbn": ["0140328726", "978-0-14-032872-1"],
			"first_sentence": ["Down in the valley there were three farms."],
			"first_publish_year": 1970
		},
		{
			"key": "/works/OL1W",
			"title": "Subtitled",
			"subtitle": "A story of foxes",
			"isbn": ["0140328726"]
		}
	]
}`

func TestFetch_BuildsRequest(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "popular", q.Get("q"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, searchFields, q.Get("fields"))
		_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
	}))

	candidates, err := New(sources.Config{BaseURL: server.URL}).Fetch(context.Background(), core.Facet{Type: "popularity", Value: "popular"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFetch_MapsDocs(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	}))

	candidates, err := New(sources.Config{BaseURL: server.URL}).Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "/works/OL45804W", first.NaturalID)
	assert.Equal(t, "9780140328721", first.ISBN)
	assert.Equal(t, "Down in the valley there were three farms.", first.Description)
	assert.Equal(t, []string{"Roald Dahl"}, first.Authors)
	assert.Equal(t, "1970", first.PublishedDate)
	assert.False(t, first.DescriptionOptional)

	second := candidates[1]
	assert.Equal(t, "9780140328721", second.ISBN)
	assert.Equal(t, "A story of foxes", second.Description)
	assert.Empty(t, second.PublishedDate)
}

func TestFetch_Unavailable(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	candidates, err := New(sources.Config{BaseURL: server.URL}).Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	assert.ErrorIs(t, err, sources.ErrUnavailable)
	assert.Nil(t, candidates)
}
