package googlebooks

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

const volumesBody = `{
	"totalItems": 3,
	"items": [
		{
			"id": "PCDengEACAAJ",
			"volumeInfo": {
				"title": "The Catcher in the Rye",
				"authors": ["J.D. Salinger"],
				"publishedDate": "1991-05-01",
				"description": "The hero-narrator of The Catcher in the Rye...",
				"industryIdentifiers": [
					{"type": "ISBN_10", "identifier": "0316769487"},
					{"type": "ISBN_13", "identifier": "978-0-316-76948-8"}
				]
			}
		},
		{
			"id": "noisbn",
			"volumeInfo": {
				"title": "Self Published",
				"description": "A novel without identifiers",
				"industryIdentifiers": [{"type": "OTHER", "identifier": "UOM:39015"}]
			}
		},
		{
			"id": "isbn10only",
			"volumeInfo": {
				"authors": ["A", "B"],
				"industryIdentifiers": [{"type": "ISBN_10", "identifier": "0-14-118776-6"}]
			}
		}
	]
}`

func TestFetch_BuildsRequest(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "subject:fiction", q.Get("q"))
		assert.Equal(t, "newest", q.Get("orderBy"))
		assert.Equal(t, "0", q.Get("startIndex"))
		assert.Equal(t, "10", q.Get("maxResults"))
		assert.Equal(t, "secret", q.Get("key"))
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	}))

	src := New(sources.Config{BaseURL: server.URL, APIKey: "secret", PageSize: 10})
	candidates, err := src.Fetch(context.Background(), core.Facet{Type: "date", Value: "newest"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFetch_OmitsEmptyKey(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["key"]
		assert.False(t, ok)
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := New(sources.Config{BaseURL: server.URL}).Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	require.NoError(t, err)
}

func TestFetch_MapsVolumes(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(volumesBody))
	}))

	candidates, err := New(sources.Config{BaseURL: server.URL}).Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	first := candidates[0]
	assert.Equal(t, "PCDengEACAAJ", first.NaturalID)
	assert.Equal(t, "9780316769488", first.ISBN, "ISBN-13 preferred and normalized")
	assert.Equal(t, "The Catcher in the Rye", first.Title)
	assert.Equal(t, []string{"J.D. Salinger"}, first.Authors)
	assert.Equal(t, "1991-05-01", first.PublishedDate)
	assert.NotEmpty(t, first.Description)
	assert.False(t, first.DescriptionOptional)

	assert.Empty(t, candidates[1].ISBN)
	assert.Equal(t, "9780141187761", candidates[2].ISBN)
	assert.Empty(t, candidates[2].Description)
}

func TestFetch_Unavailable(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	candidates, err := New(sources.Config{BaseURL: server.URL}).Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	assert.ErrorIs(t, err, sources.ErrUnavailable)
	assert.Empty(t, candidates)
}

func TestFetch_UnsupportedOrderByIsUnavailable(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("orderBy") != "relevance" && r.URL.Query().Get("orderBy") != "newest" {
			http.Error(w, `{"error":{"code":400,"message":"Invalid value at 'order_by'"}}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(volumesBody))
	}))
	source := New(sources.Config{BaseURL: server.URL})

	candidates, err := source.Fetch(context.Background(), core.Facet{Type: "popularity", Value: "popular"})
	assert.ErrorIs(t, err, sources.ErrUnavailable)
	assert.Empty(t, candidates)

	candidates, err = source.Fetch(context.Background(), core.Facet{Type: "date", Value: "newest"})
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}

func TestName(t *testing.T) {
	assert.Equal(t, "googlebooks", New(sources.Config{}).Name())
}
