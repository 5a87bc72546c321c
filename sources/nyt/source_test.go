package nyt

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
	"github.com/poiesic/bookvec/sources/sourcestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listBody = `{
	"status": "OK",
	"num_results": 3,
	"results": {
		"list_name": "Hardcover Fiction",
		"books": [
			{
				"rank": 1,
				"primary_isbn13": "9780593321201",
				"primary_isbn10": "0593321200",
				"title": "TOMORROW, AND TOMORROW, AND TOMORROW",
				"author": "Gabrielle Zevin",
				"description": "Two friends find their partnership challenged in the world of video game design.",
				"book_image": "https://storage.googleapis.com/du-prd/books/images/9780593321201.jpg"
			},
			{
				"rank": 2,
				"primary_isbn13": "",
				"primary_isbn10": "0385550367",
				"title": "NO THIRTEEN",
				"author": ""
			},
			{
				"rank": 3,
				"primary_isbn13": "9780385550369",
				"title": "NO DESCRIPTION",
				"author": "Someone"
			}
		]
	}
}`

func TestFetch_BuildsRequest(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/current/hardcover-fiction.json", r.URL.Path)
		assert.Equal(t, "nyt-key", r.URL.Query().Get("api-key"))
		_, _ = w.Write([]byte(`{"status":"OK","results":{"books":[]}}`))
	}))

	src := New(sources.Config{BaseURL: server.URL, APIKey: "nyt-key"}, "")
	candidates, err := src.Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFetch_IgnoresFacet(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.String())
		mu.Unlock()
		_, _ = w.Write([]byte(listBody))
	}))

	src := New(sources.Config{BaseURL: server.URL}, "paperback-fiction")
	a, err := src.Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	require.NoError(t, err)
	b, err := src.Fetch(context.Background(), core.Facet{Type: "date", Value: "newest"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, paths, 2)
	assert.Equal(t, paths[0], paths[1])
}

func TestFetch_MapsBooks(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listBody))
	}))

	candidates, err := New(sources.Config{BaseURL: server.URL}, "").Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	first := candidates[0]
	assert.Equal(t, "9780593321201", first.NaturalID)
	assert.Equal(t, "9780593321201", first.ISBN)
	assert.Equal(t, []string{"Gabrielle Zevin"}, first.Authors)
	assert.Contains(t, first.Thumbnail, "9780593321201.jpg")
	assert.True(t, first.DescriptionOptional)

	second := candidates[1]
	assert.Empty(t, second.NaturalID, "natural key is the ISBN-13 only")
	assert.Equal(t, "9780385550369", second.ISBN)
	assert.Nil(t, second.Authors)

	third := candidates[2]
	assert.Empty(t, third.Description)
	assert.True(t, third.DescriptionOptional)
}

func TestFetch_Unavailable(t *testing.T) {
	server := sourcestest.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := New(sources.Config{BaseURL: server.URL}, "").Fetch(context.Background(), core.Facet{Type: "rating", Value: "high"})
	assert.ErrorIs(t, err, sources.ErrUnavailable)
}
